// Package inventory defines the record types exchanged between Nautobot and
// CloudVision and the naming rules that let both sides agree on them.
//
// # Record Types
//
// Two models are used, one per sync direction:
//   - DeviceModel: device, cf (custom field) and, optionally, port
//   - TagModel: tag (user tag) and tag_assignment
//
// A custom field is keyed by its field name and the owning device name, a port
// by its interface name and device, and a tag assignment by the tag label,
// value and device. Child records are linked under their parent in the
// reconcile.Container.
//
// # Tag Policy
//
// CloudVision system tags are label/value pairs. TagPolicy maps them onto
// Nautobot custom fields: excluded labels are dropped, the remaining labels are
// prefixed ("arista_"), values are coerced to booleans where they read
// "true"/"false", and backfill labels that are absent are synthesized with a
// placeholder so both sides always carry them.
//
// The platform label ("model") is special: on the Nautobot side it is not a
// custom field but the device's platform association, and the adapters expose
// it under PlatformField().
//
// # Usage
//
//	policy := inventory.DefaultTagPolicy()
//	fields := policy.Fields([]inventory.TagPair{{Label: "mpls", Value: "true"}})
//	// fields["arista_mpls"] == reconcile.Bool(true)
//	// fields["arista_topology_type"] == reconcile.String("-")
package inventory
