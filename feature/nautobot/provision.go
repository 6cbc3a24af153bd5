package nautobot

import (
	"context"
	"fmt"

	"cvsync/core/database"
	"cvsync/feature/inventory"
	"cvsync/feature/nautobot/models"

	"go.uber.org/zap"
)

// FieldDefinition describes one custom field seeded at install time. Label
// is the CloudVision tag label the field mirrors.
type FieldDefinition struct {
	Label       string
	DisplayName string
	Boolean     bool
}

// DefaultFields lists the custom fields CloudVision system tags map onto.
var DefaultFields = []FieldDefinition{
	{Label: "eostrain", DisplayName: "EOS Train"},
	{Label: "eos", DisplayName: "EOS Version"},
	{Label: "ztp", DisplayName: "ztp", Boolean: true},
	{Label: "pimbidir", DisplayName: "pimbidir"},
	{Label: "pim", DisplayName: "pim"},
	{Label: "bgp", DisplayName: "bgp"},
	{Label: "mpls", DisplayName: "mpls", Boolean: true},
	{Label: "systype", DisplayName: "systype"},
	{Label: "mlag", DisplayName: "mlag"},
	{Label: "tapagg", DisplayName: "TAP Aggregation"},
	{Label: "sflow", DisplayName: "sFlow"},
	{Label: "terminattr", DisplayName: "TerminAttr Version"},
	{Label: "topology_network_type", DisplayName: "Topology Network Type"},
	{Label: "topology_type", DisplayName: "Topology Type"},
}

// ExpectedColumns lists, per table, the columns the sync reads or writes.
var ExpectedColumns = map[string][]string{
	"dcim_manufacturer":  {"id", "name", "slug"},
	"dcim_devicetype":    {"id", "manufacturer_id", "model", "slug"},
	"dcim_platform":      {"id", "name", "slug", "manufacturer_id"},
	"dcim_devicerole":    {"id", "name", "slug", "color"},
	"extras_status":      {"id", "name", "slug", "color"},
	"dcim_site":          {"id", "name", "slug", "status_id"},
	"extras_tag":         {"id", "name", "slug", "color"},
	"extras_taggeditem":  {"object_id", "tag_id"},
	"extras_customfield": {"id", "name", "label", "type"},
	"dcim_device": {
		"id", "name", "device_type_id", "device_role_id", "site_id", "status_id",
		"platform_id", "serial", "_custom_field_data",
	},
	"dcim_interface": {
		"id", "device_id", "name", "type", "enabled", "mtu", "mac_address", "mode", "status_id",
	},
}

// ProvisionResult reports what Provision did.
type ProvisionResult struct {
	Fields  []string            `json:"fields"`
	Missing map[string][]string `json:"missing_columns,omitempty"`
}

// Provision prepares a Nautobot database for the sync. With migrate set the
// schema is auto-migrated first. It seeds the manufacturer and the custom
// field definitions, then reports expected columns that are still missing.
func Provision(ctx context.Context, store *Store, policy inventory.TagPolicy, migrate bool, logger *zap.Logger) (*ProvisionResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if migrate {
		if err := store.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		logger.Info("Schema migrated", zap.Int("tables", len(models.All())))
	}

	if _, err := store.EnsureManufacturer(ctx); err != nil {
		return nil, err
	}

	result := &ProvisionResult{}
	for _, def := range DefaultFields {
		typ := "text"
		if def.Boolean {
			typ = "boolean"
		}
		name := policy.FieldName(def.Label)
		if _, err := store.EnsureCustomField(ctx, name, def.DisplayName, typ); err != nil {
			return nil, fmt.Errorf("failed to define custom field %s: %w", name, err)
		}
		result.Fields = append(result.Fields, name)
	}

	missing, err := database.MissingColumns(store.db.WithContext(ctx), ExpectedColumns)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		result.Missing = missing
		for table, cols := range missing {
			logger.Warn("Table is missing columns", zap.String("table", table), zap.Strings("columns", cols))
		}
	}
	return result, nil
}
