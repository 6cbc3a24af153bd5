package cloudvision

import (
	"context"
	"fmt"
	"sort"

	"cvsync/core/reconcile"
	"cvsync/feature/inventory"

	"go.uber.org/zap"
)

// DeviceOptions controls what the device adapter imports.
type DeviceOptions struct {
	Policy       inventory.TagPolicy
	ImportActive bool
	ImportPorts  bool
}

// DeviceAdapter loads devices, their system tags as custom fields and,
// optionally, their interfaces.
type DeviceAdapter struct {
	api    API
	opts   DeviceOptions
	logger *zap.Logger
}

// NewDeviceAdapter creates a device adapter.
func NewDeviceAdapter(api API, opts DeviceOptions, logger *zap.Logger) *DeviceAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceAdapter{api: api, opts: opts, logger: logger.With(zap.String("adapter", "cloudvision"))}
}

// Name implements reconcile.Adapter.
func (a *DeviceAdapter) Name() string { return "cloudvision" }

// Load implements reconcile.Adapter.
func (a *DeviceAdapter) Load(ctx context.Context, c *reconcile.Container) error {
	devices, err := a.api.Devices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	systemTags, err := a.systemTags(ctx)
	if err != nil {
		return err
	}

	var ports map[string][]Interface
	if a.opts.ImportPorts {
		if ports, err = a.interfaces(ctx); err != nil {
			return err
		}
	}

	loaded := 0
	for _, d := range devices {
		if a.opts.ImportActive && !d.Active() {
			a.logger.Debug("Skipping inactive device", zap.String("device_id", d.Key.DeviceID))
			continue
		}
		if d.Hostname == "" {
			a.logger.Warn("Skipping device without hostname", zap.String("device_id", d.Key.DeviceID))
			continue
		}

		dev := inventory.NewDevice(d.Hostname, d.ModelName, d.Key.DeviceID)
		dev.Ref = d.Key.DeviceID
		if !c.Add(dev) {
			continue
		}
		loaded++

		fields := a.opts.Policy.Fields(systemTags[d.Key.DeviceID])
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.AddChild(dev, inventory.NewCustomField(d.Hostname, name, fields[name]))
		}

		for _, intf := range ports[d.Key.DeviceID] {
			port := inventory.Port{
				Name:    intf.Key.InterfaceID,
				Device:  d.Hostname,
				MACAddr: intf.MACAddress,
				Enabled: intf.Enabled,
				Mode:    intf.Mode,
				MTU:     intf.MTU,
				Type:    inventory.PortType(intf.Key.InterfaceID, intf.Transceiver),
				Status:  inventory.PortStatus(intf.LinkStatus),
			}
			c.AddChild(dev, port.Record())
		}
	}

	a.logger.Info("Loaded CloudVision devices", zap.Int("devices", loaded), zap.Int("listed", len(devices)))
	return nil
}

// systemTags returns the system tag pairs assigned to each device id.
func (a *DeviceAdapter) systemTags(ctx context.Context) (map[string][]inventory.TagPair, error) {
	tags, err := a.api.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	system := make(map[TagKey]bool, len(tags))
	for _, t := range tags {
		if t.CreatorType == CreatorSystem {
			system[t.Key] = true
		}
	}

	assignments, err := a.api.Assignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag assignments: %w", err)
	}
	out := make(map[string][]inventory.TagPair)
	for _, asg := range assignments {
		if !system[asg.Key.Tag()] {
			continue
		}
		out[asg.Key.DeviceID] = append(out[asg.Key.DeviceID], inventory.TagPair{Label: asg.Key.Label, Value: asg.Key.Value})
	}
	return out, nil
}

func (a *DeviceAdapter) interfaces(ctx context.Context) (map[string][]Interface, error) {
	list, err := a.api.Interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	out := make(map[string][]Interface)
	for _, intf := range list {
		if intf.Key.InterfaceID == "" {
			continue
		}
		out[intf.Key.DeviceID] = append(out[intf.Key.DeviceID], intf)
	}
	return out, nil
}

// TagAdapter loads user tags and their assignments, with device ids resolved
// to hostnames.
type TagAdapter struct {
	api    API
	logger *zap.Logger
}

// NewTagAdapter creates a tag adapter.
func NewTagAdapter(api API, logger *zap.Logger) *TagAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagAdapter{api: api, logger: logger.With(zap.String("adapter", "cloudvision"))}
}

// Name implements reconcile.Adapter.
func (a *TagAdapter) Name() string { return "cloudvision" }

// Load implements reconcile.Adapter.
func (a *TagAdapter) Load(ctx context.Context, c *reconcile.Container) error {
	tags, err := a.api.Tags(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}
	for _, t := range tags {
		if t.IsUser() {
			c.Add(inventory.NewTag(t.Key.Label, t.Key.Value))
		}
	}

	devices, err := a.api.Devices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	hostnames := make(map[string]string, len(devices))
	for _, d := range devices {
		if d.Hostname != "" {
			hostnames[d.Key.DeviceID] = d.Hostname
		}
	}

	assignments, err := a.api.Assignments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tag assignments: %w", err)
	}
	for _, asg := range assignments {
		tag, err := c.Lookup(inventory.TypeTag, inventory.TagKey(asg.Key.Label, asg.Key.Value))
		if err != nil {
			// System tag.
			continue
		}
		hostname, ok := hostnames[asg.Key.DeviceID]
		if !ok {
			a.logger.Debug("Skipping assignment to unknown device",
				zap.String("tag", asg.Key.Label+":"+asg.Key.Value),
				zap.String("device_id", asg.Key.DeviceID),
			)
			continue
		}
		rec := inventory.NewAssignment(asg.Key.Label, asg.Key.Value, hostname)
		rec.Ref = asg.Key.DeviceID
		c.AddChild(tag, rec)
	}
	return nil
}
