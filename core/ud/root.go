package ud

import (
	"strings"

	uderrors "github.com/k-sap/udgo/core/errors"
)

// Root is one sentence: the ordered collection of nodes below an implicit
// root sentinel, plus sentence-level comments, empty nodes, and multiword
// tokens. Root is the sole authority for ord assignment.
type Root struct {
	bundle   *Bundle
	zone     string
	sentinel *Node
	nodes    []*Node // regular nodes ordered by ord
	empty    []*Node // empty nodes ordered by (ord, minor)
	mwts     []*MultiwordToken
	comments []Comment
	textDirty bool
}

// Comment is one sentence-level `#` comment line. Key/Value are filled for
// `# key = value` comments; Raw preserves the exact original line (without
// the trailing newline) for byte-faithful output.
type Comment struct {
	Key   string
	Value string
	Raw   string
}

// MultiwordToken is a surface token spanning the regular nodes with ords
// From..To. It contributes only FORM and MISC to serialization and has no
// basic-tree edge of its own.
type MultiwordToken struct {
	From int
	To   int
	Form string
	Misc Misc
}

// NewRoot creates an empty sentence tree not yet attached to a bundle.
func NewRoot() *Root {
	r := &Root{}
	r.sentinel = &Node{root: r}
	return r
}

// Sentinel returns the implicit root node of the tree. Its ord is 0 and it
// is the parent of every top-level node.
func (r *Root) Sentinel() *Node { return r.sentinel }

// Bundle returns the owning bundle, or nil for a detached tree.
func (r *Root) Bundle() *Bundle { return r.bundle }

// Zone returns the tree's zone label within its bundle ("" in plain UD data).
func (r *Root) Zone() string { return r.zone }

// Descendants returns all regular nodes of the sentence in ord order.
// The returned slice is a snapshot: it stays valid while the tree mutates.
func (r *Root) Descendants() []*Node {
	out := make([]*Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// EmptyNodes returns the empty nodes in (ord, minor) order.
func (r *Root) EmptyNodes() []*Node {
	out := make([]*Node, len(r.empty))
	copy(out, r.empty)
	return out
}

// MultiwordTokens returns the multiword tokens ordered by their ranges.
func (r *Root) MultiwordTokens() []*MultiwordToken {
	out := make([]*MultiwordToken, len(r.mwts))
	copy(out, r.mwts)
	return out
}

// Len returns the number of regular nodes.
func (r *Root) Len() int { return len(r.nodes) }

// Comments returns the sentence-level comment lines in input order.
func (r *Root) Comments() []Comment {
	out := make([]Comment, len(r.comments))
	copy(out, r.comments)
	return out
}

// AddComment appends a raw comment line (with or without the leading '#').
func (r *Root) AddComment(raw string) {
	if !strings.HasPrefix(raw, "#") {
		raw = "# " + raw
	}
	key, value := parseCommentKV(raw)
	r.comments = append(r.comments, Comment{Key: key, Value: value, Raw: raw})
}

// CommentValue returns the value of a `# key = value` comment, or "".
func (r *Root) CommentValue(key string) string {
	for _, c := range r.comments {
		if c.Key == key {
			return c.Value
		}
	}
	return ""
}

// SetCommentValue updates a `# key = value` comment in place, appending a
// new comment line when the key is absent.
func (r *Root) SetCommentValue(key, value string) {
	for i, c := range r.comments {
		if c.Key == key {
			r.comments[i].Value = value
			r.comments[i].Raw = "# " + key + " = " + value
			return
		}
	}
	r.comments = append(r.comments, Comment{Key: key, Value: value, Raw: "# " + key + " = " + value})
}

// SentID returns the sentence ID from the `# sent_id` comment.
func (r *Root) SentID() string { return r.CommentValue("sent_id") }

// SetSentID sets the `# sent_id` comment.
func (r *Root) SetSentID(id string) { r.SetCommentValue("sent_id", id) }

// Text returns the stored sentence text from the `# text` comment.
func (r *Root) Text() string { return r.CommentValue("text") }

// SetText sets the `# text` comment.
func (r *Root) SetText(text string) {
	r.SetCommentValue("text", text)
	r.textDirty = false
}

// TextDirty reports whether the token sequence changed since the stored
// text was last set, so the writer must recompute it.
func (r *Root) TextDirty() bool { return r.textDirty }

// MarkTextClean records that the stored text matches the current token
// sequence. Readers call it once a sentence is fully loaded, since
// building the tree dirties the flag token by token.
func (r *Root) MarkTextClean() { r.textDirty = false }

// ComputeText derives the sentence's plain text from the current token
// sequence: multiword-token forms stand in for the words they cover, and a
// single space separates tokens unless the preceding token (or covering
// multiword token) carries SpaceAfter=No.
func (r *Root) ComputeText() string {
	var sb strings.Builder
	i := 0
	for i < len(r.nodes) {
		n := r.nodes[i]
		form := n.Form
		noSpace := n.NoSpaceAfter()
		if mwt := n.MultiwordToken(); mwt != nil && mwt.From == n.ord {
			form = mwt.Form
			noSpace = mwt.Misc.Get("SpaceAfter") == "No"
			for i < len(r.nodes) && r.nodes[i].ord <= mwt.To {
				i++
			}
		} else {
			i++
		}
		sb.WriteString(form)
		if i < len(r.nodes) && !noSpace {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// RefreshText recomputes the stored `# text` comment from the current
// token sequence when one exists, clearing the dirty flag. It returns the
// recomputed text.
func (r *Root) RefreshText() string {
	text := r.ComputeText()
	if r.CommentValue("text") != "" {
		r.SetCommentValue("text", text)
	}
	r.textDirty = false
	return text
}

// CreateChild creates a new regular node attached below the sentinel at
// the end of the sentence.
func (r *Root) CreateChild() *Node {
	return r.sentinel.CreateChild()
}

// CreateEmptyNode inserts an empty node with ordinal major.minor. It fails
// when the ordinal is already taken or major exceeds the sentence length.
func (r *Root) CreateEmptyNode(major, minor int) (*Node, error) {
	if minor < 1 || major < 0 || major > len(r.nodes) {
		return nil, uderrors.NewPrecondition("create empty node",
			"ordinal "+ordinalString(major, minor)+" out of range")
	}
	for _, e := range r.empty {
		if e.ord == major && e.minor == minor {
			return nil, uderrors.NewPrecondition("create empty node",
				"ordinal "+ordinalString(major, minor)+" already present")
		}
	}
	n := &Node{root: r, ord: major, minor: minor}
	at := len(r.empty)
	for i, e := range r.empty {
		if ordLess(n, e) {
			at = i
			break
		}
	}
	r.empty = append(r.empty, nil)
	copy(r.empty[at+1:], r.empty[at:])
	r.empty[at] = n
	return n, nil
}

// CreateMultiwordToken registers a multiword token covering ords from..to.
// The range must be contiguous within the sentence and must not overlap an
// existing multiword token.
func (r *Root) CreateMultiwordToken(from, to int, form string) (*MultiwordToken, error) {
	if from < 1 || to <= from || to > len(r.nodes) {
		return nil, uderrors.NewPrecondition("create multiword token",
			"invalid range "+ordinalString(from, 0)+"-"+ordinalString(to, 0))
	}
	for _, m := range r.mwts {
		if from <= m.To && m.From <= to {
			return nil, uderrors.NewPrecondition("create multiword token",
				"range overlaps an existing multiword token")
		}
	}
	mwt := &MultiwordToken{From: from, To: to, Form: form}
	at := len(r.mwts)
	for i, m := range r.mwts {
		if from < m.From {
			at = i
			break
		}
	}
	r.mwts = append(r.mwts, nil)
	copy(r.mwts[at+1:], r.mwts[at:])
	r.mwts[at] = mwt
	r.invalidateText()
	return mwt, nil
}

// NormalizeOrds renumbers the regular nodes to the contiguous sequence
// 1..n in their current order, shifting empty-node majors and multiword
// ranges along. Removal never renumbers automatically; this is the
// explicit repair entry point.
func (r *Root) NormalizeOrds() {
	mapping := make(map[int]int, len(r.nodes))
	for i, n := range r.nodes {
		mapping[n.ord] = i + 1
		n.ord = i + 1
	}
	for _, e := range r.empty {
		// an empty node keeps its anchor unless the anchor itself moved
		if to, ok := mapping[e.ord]; ok {
			e.ord = to
		}
	}
	for _, m := range r.mwts {
		if from, ok := mapping[m.From]; ok {
			m.From = from
		}
		if to, ok := mapping[m.To]; ok {
			m.To = to
		}
	}
}

// StealNodes moves the given nodes (and their comments stay behind) from
// their current tree to the end of this tree, preserving their relative
// order and internal edges. Edges from a stolen node to a node that stays
// behind are rehung onto this tree's sentinel. Both trees are renumbered.
func (r *Root) StealNodes(nodes []*Node) error {
	if len(nodes) == 0 {
		return nil
	}
	src := nodes[0].root
	if src == r {
		return uderrors.NewPrecondition("steal nodes", "nodes already belong to this tree")
	}
	moving := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		if n.root != src {
			return uderrors.NewPrecondition("steal nodes", "nodes belong to different trees")
		}
		moving[n] = true
	}
	for _, n := range nodes {
		if n.parent != nil {
			n.parent.detachChild(n)
		}
		src.dropNode(n)
		src.purgeEnhanced(n)
		n.root = r
		if !moving[n.parent] {
			n.parent = r.sentinel
		}
		r.nodes = append(r.nodes, n)
	}
	for _, n := range nodes {
		n.parent.attachChild(n)
	}
	src.NormalizeOrds()
	r.NormalizeOrds()
	src.invalidateText()
	r.invalidateText()
	return nil
}

func (r *Root) appendNode(n *Node) {
	n.ord = len(r.nodes) + 1
	r.nodes = append(r.nodes, n)
	r.invalidateText()
}

func (r *Root) dropNode(n *Node) {
	for i, existing := range r.nodes {
		if existing == n {
			r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
			return
		}
	}
}

func (r *Root) removeEmpty(n *Node) {
	for i, existing := range r.empty {
		if existing == n {
			r.empty = append(r.empty[:i], r.empty[i+1:]...)
			return
		}
	}
}

// purgeEnhanced removes every enhanced edge in the tree whose parent is n.
func (r *Root) purgeEnhanced(n *Node) {
	purge := func(target *Node) {
		kept := target.Deps[:0]
		for _, d := range target.Deps {
			if d.Parent != n {
				kept = append(kept, d)
			}
		}
		target.Deps = kept
	}
	for _, node := range r.nodes {
		purge(node)
	}
	for _, e := range r.empty {
		purge(e)
	}
}

func (r *Root) invalidateText() { r.textDirty = true }

func (r *Root) nodeByOrd(ord int) *Node {
	if ord < 1 {
		return nil
	}
	// fast path: contiguous ords straight after a load
	if ord <= len(r.nodes) {
		if n := r.nodes[ord-1]; n.ord == ord {
			return n
		}
	}
	for _, n := range r.nodes {
		if n.ord == ord {
			return n
		}
	}
	return nil
}

func ordinalString(major, minor int) string {
	n := Node{ord: major, minor: minor}
	return n.OrdString()
}

func parseCommentKV(raw string) (key, value string) {
	body := strings.TrimPrefix(raw, "#")
	k, v, found := strings.Cut(body, "=")
	if !found {
		return "", ""
	}
	return strings.TrimSpace(k), strings.TrimSpace(v)
}
