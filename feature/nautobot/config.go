package nautobot

// Config holds the defaults applied to devices imported from CloudVision.
type Config struct {
	// Manufacturer is the manufacturer whose devices are synced.
	Manufacturer string `mapstructure:"manufacturer" default:"Arista" validate:"required"`
	// Site receives every imported device.
	Site string `mapstructure:"site" default:"cloudvision_imported" validate:"required"`
	// Role and RoleColor describe the default device role.
	Role      string `mapstructure:"role" default:"network" validate:"required"`
	RoleColor string `mapstructure:"role_color" default:"ff0000" validate:"color"`
	// Status and StatusColor describe the default device status.
	Status      string `mapstructure:"status" default:"cloudvision_imported" validate:"required"`
	StatusColor string `mapstructure:"status_color" default:"ff0000" validate:"color"`
	// ApplyImportTag tags every imported device with ImportTag.
	ApplyImportTag bool   `mapstructure:"apply_import_tag" default:"false"`
	ImportTag      string `mapstructure:"import_tag" default:"cloudvision_imported" validate:"required"`
	ImportTagColor string `mapstructure:"import_tag_color" default:"ff0000" validate:"color"`
}
