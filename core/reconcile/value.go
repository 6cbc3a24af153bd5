package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant of the Value union is set.
type Kind uint8

const (
	// KindNull is the zero Value. It marks an absent attribute.
	KindNull Kind = iota
	// KindString holds a string.
	KindString
	// KindBool holds a boolean.
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a tagged union of the attribute types a record can carry.
// Two values are equal only when both kind and payload match, so the
// string "true" never equals the boolean true.
type Value struct {
	kind Kind
	str  string
	b    bool
}

// Null is the absent value.
var Null = Value{}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Coerce converts the literal strings "true" and "false" (any case) into
// booleans. Every other input stays a string.
func Coerce(s string) Value {
	switch strings.ToLower(s) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	default:
		return String(s)
	}
}

// FromInterface builds a Value from a decoded JSON scalar. Strings are
// coerced, nil maps to Null and anything else is formatted as a string.
func FromInterface(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case bool:
		return Bool(t)
	case string:
		return Coerce(t)
	case float64:
		return String(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// Kind returns the variant that is set.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Truth returns the boolean payload and whether v is a boolean.
func (v Value) Truth() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// Interface returns nil, a string or a bool.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// String renders the value for logs and reports.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "<null>"
	}
}

// MarshalJSON encodes the payload as a JSON null, string or bool.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON null, string or bool without coercion.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Null
	case bytes.Equal(data, []byte("true")):
		*v = Bool(true)
	case bytes.Equal(data, []byte("false")):
		*v = Bool(false)
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("value must be null, string or bool: %w", err)
		}
		*v = String(s)
	}
	return nil
}

// Attributes maps attribute names to values.
type Attributes map[string]Value

// Clone returns a shallow copy. Values are immutable so this is a full copy.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Get returns the named value, or Null when missing.
func (a Attributes) Get(name string) Value {
	if a == nil {
		return Null
	}
	return a[name]
}

// Changed compares the listed names between a (current) and desired and
// returns only the differing subset from each side.
func (a Attributes) Changed(desired Attributes, names []string) (from, to Attributes) {
	for _, name := range names {
		cur, want := a.Get(name), desired.Get(name)
		if cur.Equal(want) {
			continue
		}
		if from == nil {
			from, to = Attributes{}, Attributes{}
		}
		from[name] = cur
		to[name] = want
	}
	return from, to
}

// Names returns attribute names in sorted order.
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
