package config

import (
	"fmt"
	"reflect"
	"strings"

	"cvsync/core/database"
	"cvsync/core/logger"
	"cvsync/core/messaging"
	"cvsync/core/server"
	"cvsync/core/storage"
	"cvsync/core/validation"
	"cvsync/feature/cloudvision"
	"cvsync/feature/nautobot"
	cvsync "cvsync/feature/sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the Nautobot database connection.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the report archive.
	Storage storage.Config `mapstructure:"storage"`
	// Messaging holds configuration for report publishing.
	Messaging messaging.Config `mapstructure:"messaging"`
	// CloudVision holds configuration for the CloudVision API.
	CloudVision cloudvision.Config `mapstructure:"cloudvision"`
	// Nautobot holds the defaults for imported devices.
	Nautobot nautobot.Config `mapstructure:"nautobot"`
	// Sync holds the reconciliation policy.
	Sync cvsync.Config `mapstructure:"sync"`
}

// LoadConfig loads configuration from environment variables and the .env
// file in path, then validates it.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." || path == "" {
		envPath = ".env"
	}

	// A missing .env is normal outside development.
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Register every key with its default so AutomaticEnv can see it.
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. CLOUDVISION_TOKEN -> cloudvision.token)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validation.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// bindValues walks the struct and sets viper defaults from the 'default' and
// 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Set even empty defaults so the key is known to AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
