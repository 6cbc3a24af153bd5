package messaging

// Config holds configuration for the NATS connection.
type Config struct {
	// Enabled turns report publishing on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// URL is the NATS server URL.
	URL string `mapstructure:"url" default:"nats://localhost:4222"`
	// SubjectPrefix is prepended to every subject, joined with ".".
	SubjectPrefix string `mapstructure:"subject_prefix" default:"cvsync.reports"`
	// User and Password authenticate the connection when set.
	User     string `mapstructure:"user" default:""`
	Password string `mapstructure:"password" default:""`
	// TimeoutSeconds bounds the connection attempt and flushes.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5" validate:"gte=0"`
}
