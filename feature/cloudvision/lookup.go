package cloudvision

import (
	"context"
	"fmt"

	"cvsync/core/reconcile"
	"cvsync/feature/inventory"
)

// Resolver maps record identities to CloudVision objects.
type Resolver struct {
	api API
}

// NewResolver creates a resolver over api.
func NewResolver(api API) *Resolver {
	return &Resolver{api: api}
}

var _ reconcile.ObjectResolver = (*Resolver)(nil)

// Lookup implements reconcile.ObjectResolver. Devices are matched by hostname,
// tags by label and value. Custom fields and ports resolve to their device.
func (r *Resolver) Lookup(ctx context.Context, t reconcile.Type, key reconcile.Key) (any, error) {
	switch t {
	case inventory.TypeDevice, inventory.TypeCustomField, inventory.TypePort:
		devices, err := r.api.Devices(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			if d.Hostname == "" {
				continue
			}
			if t == inventory.TypeDevice && inventory.DeviceKey(d.Hostname) == key {
				return d, nil
			}
			if t != inventory.TypeDevice && inventory.OwnedBy(key, d.Hostname) {
				return d, nil
			}
		}

	case inventory.TypeTag:
		tags, err := r.api.Tags(ctx)
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			if inventory.TagKey(tag.Key.Label, tag.Key.Value) == key {
				return tag, nil
			}
		}

	case inventory.TypeAssignment:
		devices, err := r.api.Devices(ctx)
		if err != nil {
			return nil, err
		}
		hostnames := make(map[string]string, len(devices))
		for _, d := range devices {
			hostnames[d.Key.DeviceID] = d.Hostname
		}
		assignments, err := r.api.Assignments(ctx)
		if err != nil {
			return nil, err
		}
		for _, asg := range assignments {
			host, ok := hostnames[asg.Key.DeviceID]
			if ok && inventory.AssignmentKey(asg.Key.Label, asg.Key.Value, host) == key {
				return asg, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s %s in CloudVision", reconcile.ErrNotFound, t, key)
}
