package cloudvision

import (
	"net"
	"strconv"
	"strings"
)

// Config holds configuration for the CloudVision connection.
type Config struct {
	// Host is the on-prem CVP address. Empty selects CVaaS.
	Host string `mapstructure:"host" default:""`
	// Port is the on-prem CVP HTTPS port.
	Port int `mapstructure:"port" default:"443" validate:"gte=1,lte=65535"`
	// CVaaSURL is the cloud endpoint used when Host is empty.
	CVaaSURL string `mapstructure:"cvaas_url" default:"www.arista.io:443" validate:"required"`
	// Token is a service account token. It takes precedence over User/Password.
	Token string `mapstructure:"token" default:""`
	// User and Password log in to on-prem CVP when no token is set.
	User     string `mapstructure:"user" default:""`
	Password string `mapstructure:"password" default:""`
	// Verify enables TLS certificate verification.
	Verify bool `mapstructure:"verify" default:"true"`
	// ImportActive limits the device import to streaming devices.
	ImportActive bool `mapstructure:"import_active" default:"false"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" validate:"gte=0"`
	// RetryMax is the number of retries for transient failures.
	RetryMax int `mapstructure:"retry_max" default:"3" validate:"gte=0"`
	// BreakerFailures opens the circuit after this many consecutive failures.
	BreakerFailures uint32 `mapstructure:"breaker_failures" default:"5"`
	// BreakerTimeoutSeconds is how long an open circuit rejects requests.
	BreakerTimeoutSeconds int `mapstructure:"breaker_timeout_seconds" default:"30" validate:"gte=0"`
}

// IsCVaaS reports whether the cloud service is targeted.
func (c Config) IsCVaaS() bool {
	return c.Host == ""
}

// BaseURL returns the https base URL of the API.
func (c Config) BaseURL() string {
	if c.IsCVaaS() {
		host := strings.TrimPrefix(strings.TrimPrefix(c.CVaaSURL, "https://"), "http://")
		return "https://" + strings.TrimSuffix(host, "/")
	}
	if strings.HasPrefix(c.Host, "http://") || strings.HasPrefix(c.Host, "https://") {
		return strings.TrimSuffix(c.Host, "/")
	}
	port := c.Port
	if port == 0 {
		port = 443
	}
	return "https://" + net.JoinHostPort(c.Host, strconv.Itoa(port))
}
