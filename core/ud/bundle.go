package ud

// Bundle groups the parallel trees that annotate one unit of text, usually
// a single sentence. Plain UD data has exactly one tree per bundle, in the
// empty zone; parallel resources add zones (translations, alternative
// annotations) keyed by a zone label.
type Bundle struct {
	document *Document
	id       string
	number   int
	trees    []*Root
}

// ID returns the bundle identifier (the sent_id without a zone suffix).
func (b *Bundle) ID() string { return b.id }

// SetID sets the bundle identifier and mirrors it into the sent_id comment
// of every tree in the bundle.
func (b *Bundle) SetID(id string) {
	b.id = id
	for _, t := range b.trees {
		if t.zone == "" {
			t.SetSentID(id)
		} else {
			t.SetSentID(id + "/" + t.zone)
		}
	}
}

// Number returns the bundle's 1-based position within the document.
func (b *Bundle) Number() int { return b.number }

// Document returns the owning document.
func (b *Bundle) Document() *Document { return b.document }

// Trees returns the bundle's trees in insertion order.
func (b *Bundle) Trees() []*Root {
	out := make([]*Root, len(b.trees))
	copy(out, b.trees)
	return out
}

// Tree returns the tree in the given zone, or nil.
func (b *Bundle) Tree(zone string) *Root {
	for _, t := range b.trees {
		if t.zone == zone {
			return t
		}
	}
	return nil
}

// HasTree reports whether the bundle holds a tree in the given zone.
func (b *Bundle) HasTree(zone string) bool { return b.Tree(zone) != nil }

// AddTree attaches a detached tree to the bundle under the given zone.
// An existing tree in the same zone is replaced.
func (b *Bundle) AddTree(t *Root, zone string) {
	t.bundle = b
	t.zone = zone
	for i, existing := range b.trees {
		if existing.zone == zone {
			existing.bundle = nil
			b.trees[i] = t
			return
		}
	}
	b.trees = append(b.trees, t)
}

// RemoveTree detaches the tree in the given zone from the bundle.
func (b *Bundle) RemoveTree(zone string) {
	for i, t := range b.trees {
		if t.zone == zone {
			t.bundle = nil
			b.trees = append(b.trees[:i], b.trees[i+1:]...)
			return
		}
	}
}

// CreateTree creates a new empty tree in the given zone.
func (b *Bundle) CreateTree(zone string) *Root {
	t := NewRoot()
	b.AddTree(t, zone)
	return t
}
