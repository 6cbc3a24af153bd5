// Package config provides configuration management for cvsync.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (loaded with godotenv). Defaults come from the
// `default` struct tags of every section and are registered by reflection, so
// any key can be overridden with its upper-cased, underscore-joined name, e.g.
// CLOUDVISION_TOKEN or SYNC_DELETE_ON_SYNC. Slices accept comma-separated
// values.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP listen address and API key
//   - Log: logging level and format
//   - Database: Nautobot database connection
//   - Storage: S3/MinIO report archive
//   - Messaging: NATS report publishing
//   - CloudVision: API endpoint, credentials and resilience settings
//   - Nautobot: default site, role, status and import tag
//   - Sync: delete policy, port import and tag-to-field policy
//
// The loaded struct is validated with the `validate` tags before it is
// returned.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Server.Port)
package config
