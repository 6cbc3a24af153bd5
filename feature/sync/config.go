package sync

import (
	"cvsync/feature/inventory"
)

// Config holds the reconciliation policy.
type Config struct {
	// DeleteOnSync allows deleting devices and ports missing from the source.
	DeleteOnSync bool `mapstructure:"delete_on_sync" default:"false"`
	// ImportPorts adds interfaces to the device sync.
	ImportPorts bool `mapstructure:"import_ports" default:"false"`
	// FieldPrefix prefixes every custom field derived from a tag label.
	FieldPrefix string `mapstructure:"field_prefix" default:"arista" validate:"required,slug"`
	// ExcludedLabels are tag labels that never become custom fields.
	ExcludedLabels []string `mapstructure:"excluded_labels" default:"hostname,serialnumber,Container"`
	// Backfill lists "label:placeholder" pairs synthesized when absent.
	Backfill []string `mapstructure:"backfill" default:"topology_type:-"`
	// PlatformLabel drives the Nautobot platform association.
	PlatformLabel string `mapstructure:"platform_label" default:"model" validate:"required"`
	// RunTimeoutSeconds bounds one run; 0 means no limit.
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds" default:"0" validate:"gte=0"`
}

// TagPolicy builds the tag policy from the configuration.
func (c Config) TagPolicy() inventory.TagPolicy {
	policy := inventory.TagPolicy{
		Prefix:        c.FieldPrefix,
		Excluded:      append([]string(nil), c.ExcludedLabels...),
		Backfill:      make(map[string]string, len(c.Backfill)),
		PlatformLabel: c.PlatformLabel,
	}
	for _, entry := range c.Backfill {
		pair := inventory.ParseTagName(entry)
		if pair.Label != "" {
			policy.Backfill[pair.Label] = pair.Value
		}
	}
	return policy
}
