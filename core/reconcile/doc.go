// Package reconcile provides the in-memory record model and the two-source
// reconciliation engine used by every sync direction.
//
// A run loads one Container per backend, computes a Diff between the
// "current" side (the target) and the "desired" side (the authoritative
// source), and lets a Driver execute that diff against the target.
//
// # Record Model
//
// A Schema declares a record type: its identifier fields, its attribute
// fields and, for child types, the parent type. Schemas are grouped into a
// Model in dependency order (parents first).
//
// Records live in a Container, an arena keyed by (type, key) where the key is
// the identifier tuple joined with "__", each value escaped by KeyPart when it
// could be mistaken for the separator. Parents hold ordered lists of child
// keys rather than child pointers; every lookup goes through the container.
// Registering the same identity twice fails with ErrDuplicateIdentity, and Add
// turns that into a logged warning so adapters can keep loading.
//
// Attribute values are the Value tagged union (null, string or bool). Coerce
// applies the boolean rule once, at load time, so the engine only compares
// typed values.
//
// # Diff
//
// Compute is a pure function of two containers:
//   - creates for identities only on the desired side, parent types first
//   - updates for shared identities whose attributes differ, carrying only the
//     changed subset
//   - deletes for identities only on the current side, child types first
//
// Within a group, changes are sorted by key so repeated runs over the same
// data produce identical change lists.
//
// # Apply
//
// The Driver walks the diff and calls the Backend's RecordOps for each type.
// Every change moves from pending through applying to applied, skipped or
// failed:
//   - ErrAlreadyExists on create counts as applied
//   - ErrDependencyExists and ErrSkipped count as skipped
//   - deletes of guarded types are skipped unless DeleteOnSync is set
//   - any other error fails only that change
//
// DryRun leaves every change pending and performs no writes.
//
// # Usage Example
//
//	current := reconcile.NewContainer("nautobot", model, logger)
//	desired := reconcile.NewContainer("cloudvision", model, logger)
//	if err := target.Load(ctx, current); err != nil { ... }
//	if err := source.Load(ctx, desired); err != nil { ... }
//
//	diff, err := reconcile.Compute(current, desired)
//	summary := reconcile.NewDriver(logger).Apply(ctx, diff, current, backend, reconcile.ApplyOptions{})
package reconcile
