package reconcile

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Container holds every record loaded from one backend for one run. Records
// are stored in an arena keyed by (type, key); parent/child links are keys
// resolved through the container.
type Container struct {
	name    string
	model   *Model
	logger  *zap.Logger
	records map[Type]map[Key]*Record
	order   map[Type][]Key
}

// NewContainer creates an empty container for model. A nil logger discards warnings.
func NewContainer(name string, model *Model, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Container{
		name:    name,
		model:   model,
		logger:  logger.With(zap.String("container", name)),
		records: make(map[Type]map[Key]*Record),
		order:   make(map[Type][]Key),
	}
}

// Name returns the container label used in logs and reports.
func (c *Container) Name() string { return c.name }

// Model returns the schema set the container was built for.
func (c *Container) Model() *Model { return c.model }

// Register stores rec. It fails with ErrDuplicateIdentity when the type and
// key are taken and with ErrValidation when identifiers are incomplete.
func (c *Container) Register(rec *Record) error {
	schema, ok := c.model.Schema(rec.Type)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownType, rec.Type)
	}
	key, err := schema.KeyOf(rec.IDs)
	if err != nil {
		return err
	}
	bucket := c.records[rec.Type]
	if bucket == nil {
		bucket = make(map[Key]*Record)
		c.records[rec.Type] = bucket
	}
	if _, exists := bucket[key]; exists {
		return fmt.Errorf("%w: %s %s", ErrDuplicateIdentity, rec.Type, key)
	}
	rec.key = key
	bucket[key] = rec
	c.order[rec.Type] = append(c.order[rec.Type], key)
	return nil
}

// Add registers rec and treats a duplicate as a warning. It reports whether
// rec was stored.
func (c *Container) Add(rec *Record) bool {
	err := c.Register(rec)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrDuplicateIdentity) {
		c.logger.Warn("Duplicate record found and ignored",
			zap.String("type", string(rec.Type)),
			zap.Any("ids", rec.IDs),
		)
		return false
	}
	c.logger.Warn("Record rejected", zap.String("type", string(rec.Type)), zap.Error(err))
	return false
}

// AddChild registers child and attaches it under parent. A duplicate child is
// warned and skipped like Add.
func (c *Container) AddChild(parent, child *Record) bool {
	if !c.Add(child) {
		return false
	}
	if err := c.AttachChild(parent, child); err != nil {
		c.logger.Warn("Unable to attach child", zap.Stringer("child", child), zap.Error(err))
		return false
	}
	return true
}

// Lookup returns the record of type t with key, or ErrNotFound.
func (c *Container) Lookup(t Type, key Key) (*Record, error) {
	if rec, ok := c.records[t][key]; ok {
		return rec, nil
	}
	return nil, fmt.Errorf("%w: %s %s in %s", ErrNotFound, t, key, c.name)
}

// Has reports whether a record of type t with key is registered.
func (c *Container) Has(t Type, key Key) bool {
	_, ok := c.records[t][key]
	return ok
}

// AttachChild links child under parent. Both must be registered and the
// child's schema must name the parent's type.
func (c *Container) AttachChild(parent, child *Record) error {
	if !c.Has(parent.Type, parent.key) || c.records[parent.Type][parent.key] != parent {
		return fmt.Errorf("%w: parent %s not registered in %s", ErrNotFound, parent, c.name)
	}
	if !c.Has(child.Type, child.key) || c.records[child.Type][child.key] != child {
		return fmt.Errorf("%w: child %s not registered in %s", ErrNotFound, child, c.name)
	}
	schema, _ := c.model.Schema(child.Type)
	if schema.Parent != parent.Type {
		return fmt.Errorf("%s cannot be a child of %s", child.Type, parent.Type)
	}
	if child.parent == parent.key {
		return nil
	}
	child.parent = parent.key
	if parent.children == nil {
		parent.children = make(map[Type][]Key)
	}
	parent.children[child.Type] = append(parent.children[child.Type], child.key)
	return nil
}

// All returns records of type t in insertion order.
func (c *Container) All(t Type) []*Record {
	keys := c.order[t]
	out := make([]*Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.records[t][k])
	}
	return out
}

// Keys returns the set of keys registered for t.
func (c *Container) Keys(t Type) map[Key]struct{} {
	out := make(map[Key]struct{}, len(c.records[t]))
	for k := range c.records[t] {
		out[k] = struct{}{}
	}
	return out
}

// Remove drops a record and unlinks it from its parent.
func (c *Container) Remove(t Type, key Key) error {
	rec, err := c.Lookup(t, key)
	if err != nil {
		return err
	}
	delete(c.records[t], key)
	c.order[t] = removeKey(c.order[t], key)

	if rec.parent != "" {
		schema, _ := c.model.Schema(t)
		if parent, ok := c.records[schema.Parent][rec.parent]; ok {
			parent.children[t] = removeKey(parent.children[t], key)
		}
	}
	return nil
}

// Len returns the total number of records.
func (c *Container) Len() int {
	n := 0
	for _, bucket := range c.records {
		n += len(bucket)
	}
	return n
}

func removeKey(keys []Key, key Key) []Key {
	for i, k := range keys {
		if k == key {
			return append(keys[:i:i], keys[i+1:]...)
		}
	}
	return keys
}
