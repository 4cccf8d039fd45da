package ud

import "strconv"

// Document is an ordered sequence of bundles, the unit that flows through
// a block pipeline. A document owns its bundles, each bundle its trees,
// each tree its nodes.
type Document struct {
	bundles         []*Bundle
	highestBundleID int
	// Meta holds document-level metadata assigned by readers (source
	// path, format). It is not serialized into CoNLL-U.
	Meta map[string]string
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{Meta: make(map[string]string)}
}

// Bundles returns the document's bundles in order.
func (d *Document) Bundles() []*Bundle {
	out := make([]*Bundle, len(d.bundles))
	copy(out, d.bundles)
	return out
}

// Len returns the number of bundles.
func (d *Document) Len() int { return len(d.bundles) }

// CreateBundle creates a new bundle at the end of the document with the
// next sequential ID.
func (d *Document) CreateBundle() *Bundle {
	d.highestBundleID++
	b := &Bundle{document: d, id: strconv.Itoa(d.highestBundleID)}
	d.bundles = append(d.bundles, b)
	b.number = len(d.bundles)
	return b
}

// InsertBundleAfter moves the document's last bundle to the position right
// after the given bundle number (1-based), renumbering the rest. It is
// the companion of CreateBundle for sentence splitting.
func (d *Document) InsertBundleAfter(number int) {
	if len(d.bundles) < 2 || number < 1 || number >= len(d.bundles) {
		return
	}
	last := d.bundles[len(d.bundles)-1]
	d.bundles = d.bundles[:len(d.bundles)-1]
	at := number
	d.bundles = append(d.bundles, nil)
	copy(d.bundles[at+1:], d.bundles[at:])
	d.bundles[at] = last
	for i := at; i < len(d.bundles); i++ {
		d.bundles[i].number = i + 1
	}
}

// RemoveBundle detaches the given bundle from the document and renumbers
// the bundles that follow it.
func (d *Document) RemoveBundle(b *Bundle) {
	for i, have := range d.bundles {
		if have != b {
			continue
		}
		d.bundles = append(d.bundles[:i], d.bundles[i+1:]...)
		for j := i; j < len(d.bundles); j++ {
			d.bundles[j].number = j + 1
		}
		b.document = nil
		return
	}
}

// Trees iterates over all trees of the document in document order.
func (d *Document) Trees() []*Root {
	var out []*Root
	for _, b := range d.bundles {
		out = append(out, b.trees...)
	}
	return out
}

// Nodes returns all regular nodes of the document in document order.
func (d *Document) Nodes() []*Node {
	var out []*Node
	for _, t := range d.Trees() {
		out = append(out, t.nodes...)
	}
	return out
}
