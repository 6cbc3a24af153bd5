package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
)

// HeaderName is the header carrying the API key.
const HeaderName = "X-API-Key"

// Config configures the API key middleware.
type Config struct {
	// ApiKey is the expected key. An empty key disables the check.
	ApiKey string
	// SkipPrefixes lists path prefixes that stay public.
	SkipPrefixes []string
}

// New returns a middleware that rejects requests without the configured key.
// The key is read from X-API-Key or from an "Authorization: Bearer" header.
func New(cfg Config) fiber.Handler {
	if cfg.ApiKey == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	expected := []byte(cfg.ApiKey)
	base := keyauth.Config{
		Next: func(c *fiber.Ctx) bool {
			path := c.Path()
			for _, prefix := range cfg.SkipPrefixes {
				if strings.HasPrefix(path, prefix) {
					return true
				}
			}
			return false
		},
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or missing API key"})
		},
	}

	header := base
	header.KeyLookup = "header:" + HeaderName
	bearer := base
	bearer.KeyLookup = "header:" + fiber.HeaderAuthorization
	bearer.AuthScheme = "Bearer"

	byHeader, byBearer := keyauth.New(header), keyauth.New(bearer)
	return func(c *fiber.Ctx) error {
		if c.Get(HeaderName) == "" && c.Get(fiber.HeaderAuthorization) != "" {
			return byBearer(c)
		}
		return byHeader(c)
	}
}
