package reconcile

import (
	"fmt"
	"sort"
)

// Op is the kind of change.
type Op string

const (
	// OpCreate adds a record missing on the current side.
	OpCreate Op = "create"
	// OpUpdate patches attributes of a record present on both sides.
	OpUpdate Op = "update"
	// OpDelete removes a record missing on the desired side.
	OpDelete Op = "delete"
)

// ParentRef points a change at its parent record.
type ParentRef struct {
	Type Type `json:"type"`
	Key  Key  `json:"key"`
}

// Change is one entry of a diff.
type Change struct {
	Type   Type              `json:"type"`
	Key    Key               `json:"key"`
	Op     Op                `json:"op"`
	IDs    map[string]string `json:"ids"`
	Parent *ParentRef        `json:"parent,omitempty"`
	// Old holds current values: every attribute for deletes, the changed subset for updates.
	Old Attributes `json:"old,omitempty"`
	// New holds desired values: every attribute for creates, the changed subset for updates.
	New Attributes `json:"new,omitempty"`
}

// Record rebuilds the desired record for a create change.
func (c Change) Record() *Record {
	ids := make(map[string]string, len(c.IDs))
	for k, v := range c.IDs {
		ids[k] = v
	}
	return NewRecord(c.Type, ids, c.New.Clone())
}

// Diff is the ordered change list between two containers.
type Diff struct {
	Current string   `json:"current"`
	Desired string   `json:"desired"`
	Changes []Change `json:"changes"`
}

// HasChanges reports whether anything differs.
func (d *Diff) HasChanges() bool { return len(d.Changes) > 0 }

// Counts tallies changes per type and op.
func (d *Diff) Counts() map[Type]map[Op]int {
	out := make(map[Type]map[Op]int)
	for _, ch := range d.Changes {
		if out[ch.Type] == nil {
			out[ch.Type] = make(map[Op]int)
		}
		out[ch.Type][ch.Op]++
	}
	return out
}

// Compute diffs current against desired. The result is ordered creates
// (parent types first), then updates, then deletes (child types first), and
// within one type and op by key, so equal inputs always give equal output.
func Compute(current, desired *Container) (*Diff, error) {
	if !current.model.Equal(desired.model) {
		return nil, fmt.Errorf("containers %s and %s use different models", current.name, desired.name)
	}
	model := current.model
	types := model.Types()

	var creates, updates, deletes [][]Change
	for _, t := range types {
		schema, _ := model.Schema(t)
		cur := current.Keys(t)
		want := desired.Keys(t)

		var c, u, d []Change
		for _, key := range sortedKeys(want) {
			dRec := desired.records[t][key]
			cRec, found := current.records[t][key]
			if !found {
				c = append(c, newChange(schema, dRec, OpCreate, nil, dRec.Attrs.Clone()))
				continue
			}
			if from, to := cRec.Attrs.Changed(dRec.Attrs, schema.Attributes); to != nil {
				u = append(u, newChange(schema, dRec, OpUpdate, from, to))
			}
		}
		for _, key := range sortedKeys(cur) {
			if _, found := want[key]; found {
				continue
			}
			cRec := current.records[t][key]
			d = append(d, newChange(schema, cRec, OpDelete, cRec.Attrs.Clone(), nil))
		}
		creates = append(creates, c)
		updates = append(updates, u)
		deletes = append(deletes, d)
	}

	diff := &Diff{Current: current.name, Desired: desired.name, Changes: []Change{}}
	for _, group := range creates {
		diff.Changes = append(diff.Changes, group...)
	}
	for _, group := range updates {
		diff.Changes = append(diff.Changes, group...)
	}
	for i := len(deletes) - 1; i >= 0; i-- {
		diff.Changes = append(diff.Changes, deletes[i]...)
	}
	return diff, nil
}

func newChange(schema Schema, rec *Record, op Op, from, to Attributes) Change {
	ids := make(map[string]string, len(rec.IDs))
	for k, v := range rec.IDs {
		ids[k] = v
	}
	ch := Change{Type: rec.Type, Key: rec.key, Op: op, IDs: ids, Old: from, New: to}
	if schema.Parent != "" {
		ch.Parent = &ParentRef{Type: schema.Parent, Key: schema.ParentKeyOf(rec.IDs)}
	}
	return ch
}

func sortedKeys(set map[Key]struct{}) []Key {
	keys := make([]Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
