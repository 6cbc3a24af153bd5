package nautobot

import (
	"context"
	"fmt"

	"cvsync/core/reconcile"
	"cvsync/feature/inventory"
)

// Resolver maps record identities to Nautobot rows.
type Resolver struct {
	store *Store
}

// NewResolver creates a resolver over store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

var _ reconcile.ObjectResolver = (*Resolver)(nil)

// Lookup implements reconcile.ObjectResolver. Custom fields and tag
// assignments resolve to their device, ports to their interface row.
func (r *Resolver) Lookup(ctx context.Context, t reconcile.Type, key reconcile.Key) (any, error) {
	switch t {
	case inventory.TypeDevice:
		return r.device(ctx, string(key))

	case inventory.TypeCustomField, inventory.TypePort:
		devices, err := r.store.Devices(ctx, t == inventory.TypePort)
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			if !inventory.OwnedBy(key, d.Name) {
				continue
			}
			if t == inventory.TypeCustomField {
				return d, nil
			}
			for _, intf := range d.Interfaces {
				if inventory.PortKey(intf.Name, d.Name) == key {
					return intf, nil
				}
			}
		}

	case inventory.TypeTag, inventory.TypeAssignment:
		tags, tagged, err := r.store.Tags(ctx)
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			pair := inventory.ParseTagName(tag.Name)
			if t == inventory.TypeTag && inventory.TagKey(pair.Label, pair.Value) == key {
				return tag, nil
			}
			if t != inventory.TypeAssignment {
				continue
			}
			for _, device := range tagged[tag.ID] {
				if inventory.AssignmentKey(pair.Label, pair.Value, device) == key {
					return r.device(ctx, device)
				}
			}
		}
	}
	return nil, fmt.Errorf("%w: %s %s in Nautobot", reconcile.ErrNotFound, t, key)
}

func (r *Resolver) device(ctx context.Context, name string) (any, error) {
	d, err := r.store.DeviceByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return d, nil
}
