package nautobot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cvsync/core/reconcile"
	"cvsync/feature/inventory"
	"cvsync/feature/nautobot/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var portStatusColors = map[string]string{
	inventory.PortStatusActive:  "4caf50",
	inventory.PortStatusPlanned: "00bcd4",
}

// DeviceBackend writes devices, custom fields and interfaces to Nautobot.
type DeviceBackend struct {
	store  *Store
	policy inventory.TagPolicy
	logger *zap.Logger
}

// NewDeviceBackend creates the backend.
func NewDeviceBackend(store *Store, policy inventory.TagPolicy, logger *zap.Logger) *DeviceBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceBackend{store: store, policy: policy, logger: logger}
}

// Name implements reconcile.Backend.
func (b *DeviceBackend) Name() string { return "nautobot" }

// Ops implements reconcile.Backend.
func (b *DeviceBackend) Ops(t reconcile.Type) (reconcile.RecordOps, bool) {
	switch t {
	case inventory.TypeDevice:
		return deviceOps{b}, true
	case inventory.TypeCustomField:
		return fieldOps{b}, true
	case inventory.TypePort:
		return portOps{b}, true
	}
	return nil, false
}

// device loads the device row behind a device record of target.
func (b *DeviceBackend) device(ctx context.Context, target *reconcile.Container, name string) (*models.Device, error) {
	if target != nil {
		if rec, err := target.Lookup(inventory.TypeDevice, inventory.DeviceKey(name)); err == nil && rec.Ref != "" {
			var row models.Device
			if err := b.store.db.WithContext(ctx).Preload("Platform").First(&row, "id = ?", rec.Ref).Error; err != nil {
				return nil, translate(err)
			}
			return &row, nil
		}
	}
	return b.store.DeviceByName(ctx, name)
}

func str(v reconcile.Value) string {
	s, _ := v.Str()
	return s
}

type deviceOps struct{ b *DeviceBackend }

func (o deviceOps) Create(ctx context.Context, _ *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	s := o.b.store
	name := rec.ID("name")
	if existing, err := s.DeviceByName(ctx, name); err == nil {
		rec.Ref = existing.ID
		return rec, fmt.Errorf("%w: device %s", reconcile.ErrAlreadyExists, name)
	} else if !errors.Is(err, reconcile.ErrNotFound) {
		return nil, err
	}

	site, err := s.EnsureSite(ctx)
	if err != nil {
		return nil, err
	}
	role, err := s.EnsureRole(ctx)
	if err != nil {
		return nil, err
	}
	status, err := s.EnsureDefaultStatus(ctx)
	if err != nil {
		return nil, err
	}
	dt, err := s.EnsureDeviceType(ctx, str(rec.Attr(inventory.AttrDeviceModel)))
	if err != nil {
		return nil, err
	}

	row := &models.Device{
		Name:            name,
		DeviceTypeID:    dt.ID,
		RoleID:          role.ID,
		SiteID:          site.ID,
		StatusID:        status.ID,
		Serial:          str(rec.Attr(inventory.AttrSerial)),
		CustomFieldData: map[string]any{},
	}
	if err := s.create(ctx, s.db, row); err != nil {
		return nil, err
	}
	if s.cfg.ApplyImportTag {
		tag, err := s.EnsureImportTag(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Model(row).Association("Tags").Append(tag); err != nil {
			return nil, fmt.Errorf("failed to tag device %s: %w", name, err)
		}
	}
	rec.Ref = row.ID
	return rec, nil
}

func (o deviceOps) Update(ctx context.Context, target *reconcile.Container, rec *reconcile.Record, attrs reconcile.Attributes) (*reconcile.Record, error) {
	row, err := o.b.device(ctx, target, rec.ID("name"))
	if err != nil {
		return nil, err
	}
	if v, ok := attrs[inventory.AttrDeviceModel]; ok {
		dt, err := o.b.store.EnsureDeviceType(ctx, str(v))
		if err != nil {
			return nil, err
		}
		row.DeviceTypeID = dt.ID
	}
	if v, ok := attrs[inventory.AttrSerial]; ok {
		row.Serial = str(v)
	}
	if err := o.b.store.save(ctx, o.b.store.db, row); err != nil {
		return nil, err
	}
	return rec, nil
}

func (o deviceOps) Delete(ctx context.Context, target *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	row, err := o.b.device(ctx, target, rec.ID("name"))
	if err != nil {
		return nil, err
	}
	err = o.b.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", row.ID).Delete(&models.Interface{}).Error; err != nil {
			return err
		}
		if err := tx.Model(row).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(row).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return rec, nil
}

type fieldOps struct{ b *DeviceBackend }

func (o fieldOps) Create(ctx context.Context, target *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	return rec, o.set(ctx, target, rec, rec.Attr(inventory.AttrValue))
}

func (o fieldOps) Update(ctx context.Context, target *reconcile.Container, rec *reconcile.Record, attrs reconcile.Attributes) (*reconcile.Record, error) {
	return rec, o.set(ctx, target, rec, attrs.Get(inventory.AttrValue))
}

func (o fieldOps) Delete(ctx context.Context, target *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	return rec, o.set(ctx, target, rec, reconcile.Null)
}

// set writes one custom field value. Null clears it. The platform field
// repoints the platform association instead.
func (o fieldOps) set(ctx context.Context, target *reconcile.Container, rec *reconcile.Record, v reconcile.Value) error {
	s := o.b.store
	name := rec.ID("name")
	row, err := o.b.device(ctx, target, rec.ID("device_name"))
	if err != nil {
		return err
	}

	if name == o.b.policy.PlatformField() {
		row.PlatformID = nil
		if platform := str(v); !v.IsNull() && platform != "" {
			p, err := s.EnsurePlatform(ctx, platform)
			if err != nil {
				return err
			}
			row.PlatformID = &p.ID
		}
		row.Platform = nil
		return s.save(ctx, s.db, row)
	}

	defined, err := s.CustomFieldDefined(ctx, name)
	if err != nil {
		return err
	}
	if !defined {
		return fmt.Errorf("%w: custom field %s is not defined", reconcile.ErrValidation, name)
	}
	if row.CustomFieldData == nil {
		row.CustomFieldData = map[string]any{}
	}
	row.CustomFieldData[name] = v.Interface()
	return s.save(ctx, s.db, row)
}

type portOps struct{ b *DeviceBackend }

func (o portOps) Create(ctx context.Context, target *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	device, err := o.b.device(ctx, target, rec.ID("device"))
	if err != nil {
		return nil, err
	}
	row := &models.Interface{DeviceID: device.ID, Name: rec.ID("name")}
	if err := o.apply(ctx, row, rec.Attrs); err != nil {
		return nil, err
	}
	if err := o.b.store.create(ctx, o.b.store.db, row); err != nil {
		return nil, err
	}
	rec.Ref = row.ID
	return rec, nil
}

func (o portOps) Update(ctx context.Context, _ *reconcile.Container, rec *reconcile.Record, attrs reconcile.Attributes) (*reconcile.Record, error) {
	row, err := o.row(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := o.apply(ctx, row, attrs); err != nil {
		return nil, err
	}
	if err := o.b.store.save(ctx, o.b.store.db, row); err != nil {
		return nil, err
	}
	return rec, nil
}

func (o portOps) Delete(ctx context.Context, _ *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	row, err := o.row(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := o.b.store.db.WithContext(ctx).Delete(row).Error; err != nil {
		return nil, translate(err)
	}
	return rec, nil
}

func (o portOps) row(ctx context.Context, rec *reconcile.Record) (*models.Interface, error) {
	var row models.Interface
	db := o.b.store.db.WithContext(ctx)
	var err error
	if rec.Ref != "" {
		err = db.First(&row, "id = ?", rec.Ref).Error
	} else {
		device, derr := o.b.store.DeviceByName(ctx, rec.ID("device"))
		if derr != nil {
			return nil, derr
		}
		err = db.First(&row, "device_id = ? AND name = ?", device.ID, rec.ID("name")).Error
	}
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// apply copies port attributes onto row. Only attributes present in attrs
// are touched.
func (o portOps) apply(ctx context.Context, row *models.Interface, attrs reconcile.Attributes) error {
	for name, v := range attrs {
		switch name {
		case inventory.AttrMACAddr:
			row.MACAddress = optionalString(v)
		case inventory.AttrMode:
			row.Mode = optionalString(v)
		case inventory.AttrEnabled:
			row.Enabled, _ = v.Truth()
		case inventory.AttrMTU:
			row.MTU = nil
			if s := str(v); s != "" {
				mtu, err := strconv.Atoi(s)
				if err != nil {
					return fmt.Errorf("%w: mtu %q", reconcile.ErrValidation, s)
				}
				row.MTU = &mtu
			}
		case inventory.AttrPortType:
			row.Type = str(v)
		case inventory.AttrStatus:
			slug := str(v)
			color, ok := portStatusColors[slug]
			if !ok {
				color = "9e9e9e"
			}
			st, err := o.b.store.EnsureStatus(ctx, slug, color)
			if err != nil {
				return err
			}
			row.StatusID = st.ID
			row.Status = *st
		}
	}
	return nil
}

func optionalString(v reconcile.Value) *string {
	s := str(v)
	if v.IsNull() || s == "" {
		return nil
	}
	return &s
}
