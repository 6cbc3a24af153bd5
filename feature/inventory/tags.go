package inventory

import (
	"sort"
	"strings"

	"cvsync/core/reconcile"
)

// TagPair is one label/value tag as CloudVision stores it.
type TagPair struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TagPolicy maps CloudVision tags onto Nautobot custom fields.
type TagPolicy struct {
	// Prefix is prepended to every label, joined with "_".
	Prefix string
	// Excluded labels never become custom fields.
	Excluded []string
	// Backfill holds labels that are synthesized with the given value when a
	// device does not carry them.
	Backfill map[string]string
	// PlatformLabel is the label that drives the platform association.
	PlatformLabel string
}

// DefaultTagPolicy returns the policy used when nothing is configured.
func DefaultTagPolicy() TagPolicy {
	return TagPolicy{
		Prefix:        "arista",
		Excluded:      []string{"hostname", "serialnumber", "Container"},
		Backfill:      map[string]string{"topology_type": "-"},
		PlatformLabel: "model",
	}
}

// FieldName returns the custom field name for label.
func (p TagPolicy) FieldName(label string) string {
	return p.Prefix + "_" + label
}

// Owns reports whether a custom field name belongs to the policy's namespace.
func (p TagPolicy) Owns(field string) bool {
	return strings.HasPrefix(field, p.Prefix+"_") && len(field) > len(p.Prefix)+1
}

// PlatformField names the field that carries the device platform.
func (p TagPolicy) PlatformField() string {
	return p.FieldName(p.PlatformLabel)
}

// IsExcluded reports whether label is dropped by the policy.
func (p TagPolicy) IsExcluded(label string) bool {
	for _, ex := range p.Excluded {
		if ex == label {
			return true
		}
	}
	return false
}

// Fields converts the tags of one device to custom field values. When a label
// carries several values the greatest one in byte order wins. Backfill fields
// are added last.
func (p TagPolicy) Fields(tags []TagPair) map[string]reconcile.Value {
	sorted := append([]TagPair(nil), tags...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Label != sorted[j].Label {
			return sorted[i].Label < sorted[j].Label
		}
		return sorted[i].Value < sorted[j].Value
	})

	out := make(map[string]reconcile.Value, len(sorted)+len(p.Backfill))
	for _, tag := range sorted {
		if tag.Label == "" || p.IsExcluded(tag.Label) {
			continue
		}
		out[p.FieldName(tag.Label)] = reconcile.Coerce(tag.Value)
	}
	p.Fill(out)
	return out
}

// Fill adds every missing backfill field to fields.
func (p TagPolicy) Fill(fields map[string]reconcile.Value) {
	for label, placeholder := range p.Backfill {
		name := p.FieldName(label)
		if _, ok := fields[name]; !ok {
			fields[name] = reconcile.Coerce(placeholder)
		}
	}
}

// ParseTagName splits a Nautobot tag name "label:value" on the first colon.
// A name without a colon is a label with an empty value.
func ParseTagName(name string) TagPair {
	label, value, _ := strings.Cut(name, ":")
	return TagPair{Label: label, Value: value}
}

// TagName joins a pair into the Nautobot tag name.
func TagName(pair TagPair) string {
	if pair.Value == "" {
		return pair.Label
	}
	return pair.Label + ":" + pair.Value
}
