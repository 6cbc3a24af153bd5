package models

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the UUID primary key shared by every Nautobot table.
type Base struct {
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
}

// BeforeCreate assigns a UUID to rows created without one.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Manufacturer represents the 'dcim_manufacturer' table.
type Manufacturer struct {
	Base
	Name string `gorm:"column:name;size:100;uniqueIndex" validate:"required,max=100"`
	Slug string `gorm:"column:slug;size:100" validate:"required,slug"`
}

// TableName overrides the table name.
func (Manufacturer) TableName() string { return "dcim_manufacturer" }

// DeviceType represents the 'dcim_devicetype' table.
type DeviceType struct {
	Base
	ManufacturerID string       `gorm:"column:manufacturer_id;type:varchar(36);index" validate:"required"`
	Manufacturer   Manufacturer `gorm:"foreignKey:ManufacturerID" validate:"-"`
	Model          string       `gorm:"column:model;size:100" validate:"required,max=100"`
	Slug           string       `gorm:"column:slug;size:100" validate:"required,slug"`
}

func (DeviceType) TableName() string { return "dcim_devicetype" }

// Platform represents the 'dcim_platform' table.
type Platform struct {
	Base
	Name           string  `gorm:"column:name;size:100;uniqueIndex" validate:"required,max=100"`
	Slug           string  `gorm:"column:slug;size:100" validate:"required,slug"`
	ManufacturerID *string `gorm:"column:manufacturer_id;type:varchar(36)"`
}

func (Platform) TableName() string { return "dcim_platform" }

// DeviceRole represents the 'dcim_devicerole' table.
type DeviceRole struct {
	Base
	Name  string `gorm:"column:name;size:100;uniqueIndex" validate:"required,max=100"`
	Slug  string `gorm:"column:slug;size:100" validate:"required,slug"`
	Color string `gorm:"column:color;size:6" validate:"color"`
}

func (DeviceRole) TableName() string { return "dcim_devicerole" }

// Status represents the 'extras_status' table.
type Status struct {
	Base
	Name  string `gorm:"column:name;size:50" validate:"required,max=50"`
	Slug  string `gorm:"column:slug;size:50;uniqueIndex" validate:"required,slug"`
	Color string `gorm:"column:color;size:6" validate:"color"`
}

func (Status) TableName() string { return "extras_status" }

// Site represents the 'dcim_site' table.
type Site struct {
	Base
	Name     string `gorm:"column:name;size:100;uniqueIndex" validate:"required,max=100"`
	Slug     string `gorm:"column:slug;size:100" validate:"required,slug"`
	StatusID string `gorm:"column:status_id;type:varchar(36)" validate:"required"`
}

func (Site) TableName() string { return "dcim_site" }

// Tag represents the 'extras_tag' table.
type Tag struct {
	Base
	Name  string `gorm:"column:name;size:100;uniqueIndex" validate:"required,max=100"`
	Slug  string `gorm:"column:slug;size:100" validate:"required,slug"`
	Color string `gorm:"column:color;size:6" validate:"color"`
}

func (Tag) TableName() string { return "extras_tag" }

// Device represents the 'dcim_device' table. Custom field values live in a
// JSON document keyed by field name.
type Device struct {
	Base
	Name            string         `gorm:"column:name;size:64;index" validate:"required,max=64"`
	DeviceTypeID    string         `gorm:"column:device_type_id;type:varchar(36);index" validate:"required"`
	DeviceType      DeviceType     `gorm:"foreignKey:DeviceTypeID" validate:"-"`
	RoleID          string         `gorm:"column:device_role_id;type:varchar(36)" validate:"required"`
	SiteID          string         `gorm:"column:site_id;type:varchar(36)" validate:"required"`
	StatusID        string         `gorm:"column:status_id;type:varchar(36)" validate:"required"`
	PlatformID      *string        `gorm:"column:platform_id;type:varchar(36)"`
	Platform        *Platform      `gorm:"foreignKey:PlatformID" validate:"-"`
	Serial          string         `gorm:"column:serial;size:255" validate:"max=255"`
	CustomFieldData map[string]any `gorm:"column:_custom_field_data;serializer:json"`
	Tags            []Tag          `gorm:"many2many:extras_taggeditem;joinForeignKey:object_id;joinReferences:tag_id" validate:"-"`
	Interfaces      []Interface    `gorm:"foreignKey:DeviceID" validate:"-"`
}

func (Device) TableName() string { return "dcim_device" }

// Interface represents the 'dcim_interface' table.
type Interface struct {
	Base
	DeviceID   string  `gorm:"column:device_id;type:varchar(36);index" validate:"required"`
	Name       string  `gorm:"column:name;size:64" validate:"required,max=64"`
	Type       string  `gorm:"column:type;size:50" validate:"required"`
	Enabled    bool    `gorm:"column:enabled"`
	MTU        *int    `gorm:"column:mtu" validate:"omitempty,gte=1,lte=65536"`
	MACAddress *string `gorm:"column:mac_address;size:18" validate:"omitempty,mac"`
	Mode       *string `gorm:"column:mode;size:50"`
	StatusID   string  `gorm:"column:status_id;type:varchar(36)" validate:"required"`
	Status     Status  `gorm:"foreignKey:StatusID" validate:"-"`
}

func (Interface) TableName() string { return "dcim_interface" }

// CustomField represents the 'extras_customfield' table.
type CustomField struct {
	Base
	Name  string `gorm:"column:name;size:50;uniqueIndex" validate:"required,max=50"`
	Label string `gorm:"column:label;size:50"`
	Type  string `gorm:"column:type;size:50" validate:"oneof=text boolean"`
}

func (CustomField) TableName() string { return "extras_customfield" }

// All lists every model in migration order.
func All() []any {
	return []any{
		&Manufacturer{}, &DeviceType{}, &Platform{}, &DeviceRole{}, &Status{},
		&Site{}, &Tag{}, &Device{}, &Interface{}, &CustomField{},
	}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slugify derives a slug from a display name.
func Slugify(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}
