package nautobot

import (
	"context"
	"sort"

	"cvsync/core/reconcile"
	"cvsync/core/utils"
	"cvsync/feature/inventory"
	"cvsync/feature/nautobot/models"

	"go.uber.org/zap"
)

// DeviceOptions controls what the device adapter loads.
type DeviceOptions struct {
	Policy      inventory.TagPolicy
	ImportPorts bool
}

// DeviceAdapter loads the manufacturer's devices, their owned custom fields
// and, optionally, their interfaces.
type DeviceAdapter struct {
	store  *Store
	opts   DeviceOptions
	logger *zap.Logger
}

// NewDeviceAdapter creates a device adapter.
func NewDeviceAdapter(store *Store, opts DeviceOptions, logger *zap.Logger) *DeviceAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceAdapter{store: store, opts: opts, logger: logger.With(zap.String("adapter", "nautobot"))}
}

// Name implements reconcile.Adapter.
func (a *DeviceAdapter) Name() string { return "nautobot" }

// Load implements reconcile.Adapter.
func (a *DeviceAdapter) Load(ctx context.Context, c *reconcile.Container) error {
	devices, err := a.store.Devices(ctx, a.opts.ImportPorts)
	if err != nil {
		return err
	}

	loaded := 0
	for i := range devices {
		d := &devices[i]
		if d.Name == "" {
			a.logger.Warn("Skipping device without name", zap.String("id", d.ID))
			continue
		}
		dev := inventory.NewDevice(d.Name, d.DeviceType.Model, d.Serial)
		dev.Ref = d.ID
		if !c.Add(dev) {
			continue
		}
		loaded++

		fields := a.fields(d)
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.AddChild(dev, inventory.NewCustomField(d.Name, name, fields[name]))
		}

		if a.opts.ImportPorts {
			for _, intf := range d.Interfaces {
				port := portFromRow(d.Name, intf).Record()
				port.Ref = intf.ID
				c.AddChild(dev, port)
			}
		}
	}

	a.logger.Info("Loaded Nautobot devices", zap.Int("devices", loaded))
	return nil
}

// fields returns the owned custom field values of d. Null values count as
// absent. The platform field comes from the platform association.
func (a *DeviceAdapter) fields(d *models.Device) map[string]reconcile.Value {
	platform := a.opts.Policy.PlatformField()
	out := make(map[string]reconcile.Value)
	for name, raw := range d.CustomFieldData {
		if !a.opts.Policy.Owns(name) || name == platform {
			continue
		}
		if v := reconcile.FromInterface(raw); !v.IsNull() {
			out[name] = v
		}
	}
	if d.Platform != nil && d.Platform.Name != "" {
		out[platform] = reconcile.String(d.Platform.Name)
	}
	return out
}

func portFromRow(device string, intf models.Interface) inventory.Port {
	return inventory.Port{
		Name:    intf.Name,
		Device:  device,
		MACAddr: utils.ToString(intf.MACAddress),
		Enabled: intf.Enabled,
		Mode:    utils.ToString(intf.Mode),
		MTU:     utils.ToInt(intf.MTU),
		Type:    intf.Type,
		Status:  intf.Status.Slug,
	}
}

// TagAdapter loads every tag except the import tag as a user tag, with one
// assignment per tagged device.
type TagAdapter struct {
	store  *Store
	logger *zap.Logger
}

// NewTagAdapter creates a tag adapter.
func NewTagAdapter(store *Store, logger *zap.Logger) *TagAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagAdapter{store: store, logger: logger.With(zap.String("adapter", "nautobot"))}
}

// Name implements reconcile.Adapter.
func (a *TagAdapter) Name() string { return "nautobot" }

// Load implements reconcile.Adapter.
func (a *TagAdapter) Load(ctx context.Context, c *reconcile.Container) error {
	tags, tagged, err := a.store.Tags(ctx)
	if err != nil {
		return err
	}
	for _, t := range tags {
		if t.Name == a.store.cfg.ImportTag {
			continue
		}
		pair := inventory.ParseTagName(t.Name)
		rec := inventory.NewTag(pair.Label, pair.Value)
		rec.Ref = t.ID
		if !c.Add(rec) {
			continue
		}
		for _, device := range tagged[t.ID] {
			c.AddChild(rec, inventory.NewAssignment(pair.Label, pair.Value, device))
		}
	}
	return nil
}
