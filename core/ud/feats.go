package ud

import (
	"sort"
	"strings"
)

// attrPair is a single Name=Value pair in FEATS or MISC. hasEq records
// whether the source carried an "=", so a bare flag and an explicit empty
// value ("Key=") serialize back differently.
type attrPair struct {
	Name  string
	Value string
	hasEq bool
}

// Feats is the morphological feature bag of a node. Keys are case-sensitive.
// Serialization is always sorted alphabetically by name, per the UD
// guidelines, regardless of insertion order.
type Feats struct {
	pairs []attrPair
}

// ParseFeats parses a `|`-joined Name=Value list. The literal "_" yields an
// empty bag. A pair without "=" is invalid.
func ParseFeats(s string) (Feats, bool) {
	var f Feats
	pairs, ok := parseAttrPairs(s)
	if !ok {
		return f, false
	}
	f.pairs = pairs
	return f, true
}

// Get returns the value for name, or the empty string when unset.
func (f *Feats) Get(name string) string {
	for _, p := range f.pairs {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// Set sets the value for name. Setting an empty value deletes the feature.
func (f *Feats) Set(name, value string) {
	if value == "" {
		f.Delete(name)
		return
	}
	for i, p := range f.pairs {
		if p.Name == name {
			f.pairs[i].Value = value
			return
		}
	}
	f.pairs = append(f.pairs, attrPair{Name: name, Value: value})
}

// Delete removes name from the bag.
func (f *Feats) Delete(name string) {
	for i, p := range f.pairs {
		if p.Name == name {
			f.pairs = append(f.pairs[:i], f.pairs[i+1:]...)
			return
		}
	}
}

// Len returns the number of features.
func (f *Feats) Len() int { return len(f.pairs) }

// Names returns the feature names in serialization (alphabetical) order.
func (f *Feats) Names() []string {
	names := make([]string, len(f.pairs))
	for i, p := range f.pairs {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}

// String serializes the bag in CoNLL-U form: alphabetically sorted
// Name=Value pairs joined by "|", or "_" when empty.
func (f Feats) String() string {
	if len(f.pairs) == 0 {
		return "_"
	}
	sorted := make([]attrPair, len(f.pairs))
	copy(sorted, f.pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return joinAttrPairs(sorted)
}

// Clone returns an independent copy of the bag.
func (f *Feats) Clone() Feats {
	pairs := make([]attrPair, len(f.pairs))
	copy(pairs, f.pairs)
	return Feats{pairs: pairs}
}

// Misc is the MISC column bag of a node or multiword token. Unlike Feats,
// insertion order is preserved on serialization.
type Misc struct {
	pairs []attrPair
}

// ParseMisc parses a `|`-joined MISC list. The literal "_" yields an empty
// bag. A bare item without "=" is kept with an empty value, since MISC is
// free-form.
func ParseMisc(s string) Misc {
	var m Misc
	if s == "" || s == "_" {
		return m
	}
	for _, item := range strings.Split(s, "|") {
		name, value, found := strings.Cut(item, "=")
		if !found {
			m.pairs = append(m.pairs, attrPair{Name: item})
			continue
		}
		m.pairs = append(m.pairs, attrPair{Name: name, Value: value, hasEq: true})
	}
	return m
}

// Get returns the value for name, or the empty string when unset.
func (m *Misc) Get(name string) string {
	for _, p := range m.pairs {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// Has reports whether name is present, even with an empty value.
func (m *Misc) Has(name string) bool {
	for _, p := range m.pairs {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Set sets the value for name, appending at the end when new.
// Setting an empty value deletes the attribute.
func (m *Misc) Set(name, value string) {
	if value == "" {
		m.Delete(name)
		return
	}
	for i, p := range m.pairs {
		if p.Name == name {
			m.pairs[i].Value = value
			return
		}
	}
	m.pairs = append(m.pairs, attrPair{Name: name, Value: value})
}

// SetFlag adds a valueless attribute (e.g., a bare marker) when absent.
func (m *Misc) SetFlag(name string) {
	if m.Has(name) {
		return
	}
	m.pairs = append(m.pairs, attrPair{Name: name})
}

// Delete removes name from the bag.
func (m *Misc) Delete(name string) {
	for i, p := range m.pairs {
		if p.Name == name {
			m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
			return
		}
	}
}

// Len returns the number of attributes.
func (m *Misc) Len() int { return len(m.pairs) }

// String serializes the bag in insertion order, or "_" when empty.
func (m Misc) String() string {
	if len(m.pairs) == 0 {
		return "_"
	}
	return joinAttrPairs(m.pairs)
}

// Clone returns an independent copy of the bag.
func (m *Misc) Clone() Misc {
	pairs := make([]attrPair, len(m.pairs))
	copy(pairs, m.pairs)
	return Misc{pairs: pairs}
}

func parseAttrPairs(s string) ([]attrPair, bool) {
	if s == "" || s == "_" {
		return nil, true
	}
	items := strings.Split(s, "|")
	pairs := make([]attrPair, 0, len(items))
	for _, item := range items {
		name, value, found := strings.Cut(item, "=")
		if !found || name == "" {
			return nil, false
		}
		pairs = append(pairs, attrPair{Name: name, Value: value, hasEq: true})
	}
	return pairs, true
}

func joinAttrPairs(pairs []attrPair) string {
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(p.Name)
		if p.Value != "" || p.hasEq {
			sb.WriteByte('=')
			sb.WriteString(p.Value)
		}
	}
	return sb.String()
}
