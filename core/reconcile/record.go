package reconcile

import (
	"fmt"
	"slices"
	"strings"
)

// Type names a record type, e.g. "device".
type Type string

// Key is a record's identifier tuple in schema order, joined with KeySeparator.
type Key string

// KeySeparator joins identifier values into a Key.
const KeySeparator = "__"

// KeyPart encodes one identifier value for use inside a Key. Values that
// could be confused with the separator have '%' and '_' percent-encoded, so
// distinct tuples never share a Key. Other values are returned unchanged.
func KeyPart(v string) string {
	if !strings.ContainsAny(v, "%_") {
		return v
	}
	v = strings.ReplaceAll(v, "%", "%25")
	if strings.Contains(v, KeySeparator) || strings.HasPrefix(v, "_") || strings.HasSuffix(v, "_") {
		v = strings.ReplaceAll(v, "_", "%5F")
	}
	return v
}

// JoinKey builds a Key from identifier values in schema order.
func JoinKey(values ...string) Key {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = KeyPart(v)
	}
	return Key(strings.Join(parts, KeySeparator))
}

// Schema declares one record type.
type Schema struct {
	// Type is the unique type name.
	Type Type
	// Identifiers lists the fields whose values form the record's identity.
	// The order is significant: it defines the Key layout.
	Identifiers []string
	// Attributes lists the fields that are compared when identities match.
	Attributes []string
	// Parent is the owning record type, empty for top-level types.
	Parent Type
	// ParentIdentifiers names the child fields holding the parent's
	// identifier values, in the parent's identifier order.
	ParentIdentifiers []string
}

// KeyOf builds the Key for a set of identifier values.
func (s Schema) KeyOf(ids map[string]string) (Key, error) {
	parts := make([]string, len(s.Identifiers))
	for i, name := range s.Identifiers {
		v, ok := ids[name]
		if !ok {
			return "", fmt.Errorf("%w: %s record missing identifier %q", ErrValidation, s.Type, name)
		}
		parts[i] = v
	}
	return JoinKey(parts...), nil
}

// ParentKeyOf derives the parent Key from a child's identifier values.
func (s Schema) ParentKeyOf(ids map[string]string) Key {
	if s.Parent == "" {
		return ""
	}
	parts := make([]string, len(s.ParentIdentifiers))
	for i, name := range s.ParentIdentifiers {
		parts[i] = ids[name]
	}
	return JoinKey(parts...)
}

// Model is an ordered set of schemas. Parents always precede their children.
type Model struct {
	order  []Type
	byType map[Type]Schema
}

// NewModel validates and indexes schemas. A schema's parent must appear
// earlier in the list.
func NewModel(schemas ...Schema) (*Model, error) {
	m := &Model{byType: make(map[Type]Schema, len(schemas))}
	for _, s := range schemas {
		if s.Type == "" {
			return nil, fmt.Errorf("schema with empty type")
		}
		if _, dup := m.byType[s.Type]; dup {
			return nil, fmt.Errorf("schema %s declared twice", s.Type)
		}
		if len(s.Identifiers) == 0 {
			return nil, fmt.Errorf("schema %s has no identifiers", s.Type)
		}
		if s.Parent != "" {
			parent, ok := m.byType[s.Parent]
			if !ok {
				return nil, fmt.Errorf("schema %s: parent %s must be declared first", s.Type, s.Parent)
			}
			if len(s.ParentIdentifiers) != len(parent.Identifiers) {
				return nil, fmt.Errorf("schema %s: parent identifiers do not match %s", s.Type, s.Parent)
			}
		}
		m.byType[s.Type] = s
		m.order = append(m.order, s.Type)
	}
	return m, nil
}

// MustModel is NewModel that panics on an invalid declaration.
func MustModel(schemas ...Schema) *Model {
	m, err := NewModel(schemas...)
	if err != nil {
		panic(err)
	}
	return m
}

// Types returns the types in dependency order.
func (m *Model) Types() []Type {
	out := make([]Type, len(m.order))
	copy(out, m.order)
	return out
}

// Schema returns the schema for t.
func (m *Model) Schema(t Type) (Schema, bool) {
	s, ok := m.byType[t]
	return s, ok
}

// Equal reports whether m and o declare the same types in the same order with
// the same schemas.
func (m *Model) Equal(o *Model) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil || !slices.Equal(m.order, o.order) {
		return false
	}
	for _, t := range m.order {
		a, b := m.byType[t], o.byType[t]
		if a.Parent != b.Parent ||
			!slices.Equal(a.Identifiers, b.Identifiers) ||
			!slices.Equal(a.Attributes, b.Attributes) ||
			!slices.Equal(a.ParentIdentifiers, b.ParentIdentifiers) {
			return false
		}
	}
	return true
}

// Children returns the types declaring t as parent, in model order.
func (m *Model) Children(t Type) []Type {
	var out []Type
	for _, name := range m.order {
		if m.byType[name].Parent == t {
			out = append(out, name)
		}
	}
	return out
}

// Record is one typed, identity-keyed entity. Parents reference children by
// key only; the owning Container resolves them.
type Record struct {
	Type  Type
	IDs   map[string]string
	Attrs Attributes
	// Ref is an opaque backend handle such as a database id.
	Ref string

	key      Key
	parent   Key
	children map[Type][]Key
}

// NewRecord builds an unregistered record.
func NewRecord(t Type, ids map[string]string, attrs Attributes) *Record {
	if attrs == nil {
		attrs = Attributes{}
	}
	return &Record{Type: t, IDs: ids, Attrs: attrs}
}

// Key returns the key assigned at registration.
func (r *Record) Key() Key { return r.key }

// ID returns one identifier value.
func (r *Record) ID(name string) string { return r.IDs[name] }

// Attr returns one attribute value, Null when missing.
func (r *Record) Attr(name string) Value { return r.Attrs.Get(name) }

// Parent returns the parent key, empty for top-level records.
func (r *Record) Parent() Key { return r.parent }

// Children returns child keys of type t in attachment order.
func (r *Record) Children(t Type) []Key {
	return append([]Key(nil), r.children[t]...)
}

// Detach returns an unregistered copy carrying identity, attributes and ref.
func (r *Record) Detach() *Record {
	ids := make(map[string]string, len(r.IDs))
	for k, v := range r.IDs {
		ids[k] = v
	}
	return &Record{Type: r.Type, IDs: ids, Attrs: r.Attrs.Clone(), Ref: r.Ref}
}

func (r *Record) String() string {
	return fmt.Sprintf("%s(%s)", r.Type, r.key)
}
