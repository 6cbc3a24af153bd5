package reconcile

import "context"

// Adapter populates a container from one backend. Load must either fill the
// container completely or return an error; callers discard the container on
// error.
type Adapter interface {
	// Name identifies the backend in logs and reports (e.g. "cloudvision").
	Name() string

	// Load reads the backend and registers records. It performs no writes.
	Load(ctx context.Context, c *Container) error
}

// ObjectResolver maps a record identity back to the concrete backend object,
// for display by reporting code. It returns ErrNotFound when absent.
type ObjectResolver interface {
	Lookup(ctx context.Context, t Type, key Key) (any, error)
}

// RecordOps performs writes for one record type on one backend.
//
// Create receives a detached record holding the desired identity and
// attributes; it returns the record as written, typically with Ref set.
// Update receives the registered target record and only the attributes that
// changed. Delete receives the registered target record.
//
// Implementations signal idempotent outcomes with ErrAlreadyExists (create)
// and ErrDependencyExists (delete), and may decline a change with ErrSkipped.
// target gives read access to the rest of the target side, e.g. to resolve a
// parent's Ref; implementations must not register or remove records.
type RecordOps interface {
	Create(ctx context.Context, target *Container, rec *Record) (*Record, error)
	Update(ctx context.Context, target *Container, rec *Record, attrs Attributes) (*Record, error)
	Delete(ctx context.Context, target *Container, rec *Record) (*Record, error)
}

// Backend selects the RecordOps for each type it can write.
type Backend interface {
	Name() string
	Ops(t Type) (RecordOps, bool)
}

// OpsSet is a map-backed Backend.
type OpsSet struct {
	name string
	ops  map[Type]RecordOps
}

// NewOpsSet builds a Backend from a type-to-ops map.
func NewOpsSet(name string, ops map[Type]RecordOps) *OpsSet {
	return &OpsSet{name: name, ops: ops}
}

// Name returns the backend name.
func (o *OpsSet) Name() string { return o.name }

// Ops returns the ops registered for t.
func (o *OpsSet) Ops(t Type) (RecordOps, bool) {
	ops, ok := o.ops[t]
	return ops, ok
}
