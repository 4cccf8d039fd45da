// Package ud implements the Universal Dependencies annotation data model:
// documents of bundles, one dependency tree per sentence, ordered nodes
// with morphological features, an overlay enhanced graph, multiword
// tokens, and empty nodes. All structural mutation goes through methods
// that keep the basic tree a proper tree.
package ud

import (
	"fmt"
	"strconv"

	uderrors "github.com/k-sap/udgo/core/errors"
)

// RemovePolicy controls what happens to the children of a removed node.
type RemovePolicy int

const (
	// RehangChildren reattaches the children of the removed node to the
	// removed node's own parent, preserving connectivity.
	RehangChildren RemovePolicy = iota
	// DeleteSubtree removes the whole subtree below the node.
	DeleteSubtree
)

// Node is a single annotated token, an empty node, or the tree's root
// sentinel. Regular tokens carry a positive integer ord; empty nodes carry
// an additional minor ordinal (ord.minor); the sentinel has ord 0.
type Node struct {
	// Form is the surface word form.
	Form string
	// Lemma is the canonical form of the word.
	Lemma string
	// UPos is the universal part-of-speech tag.
	UPos string
	// XPos is the language-specific part-of-speech tag.
	XPos string
	// Feats is the morphological feature bag (FEATS column).
	Feats Feats
	// Misc is the free-form metadata bag (MISC column).
	Misc Misc
	// Deprel is the label of the basic-tree edge to the parent.
	Deprel string
	// Deps is the enhanced-graph edge list (DEPS column).
	Deps []Dep

	ord     int
	minor   int // minor > 0 marks an empty node with ordinal ord.minor
	parent  *Node
	children []*Node
	root    *Root
	removed bool
}

// Dep is one enhanced-graph edge: a parent (possibly the root sentinel or
// an empty node) and a relation label.
type Dep struct {
	Parent *Node
	Deprel string
}

// Ord returns the node's 1-based position in the sentence. For empty
// nodes it returns the major part of the ordinal; for the root sentinel 0.
func (n *Node) Ord() int { return n.ord }

// EmptyMinor returns the minor ordinal of an empty node, or 0 for regular
// nodes and the sentinel.
func (n *Node) EmptyMinor() int { return n.minor }

// OrdString renders the node's ID as serialized in CoNLL-U: "8" for a
// regular token, "8.1" for an empty node, "0" for the sentinel.
func (n *Node) OrdString() string {
	if n.minor > 0 {
		return strconv.Itoa(n.ord) + "." + strconv.Itoa(n.minor)
	}
	return strconv.Itoa(n.ord)
}

// IsRoot reports whether the node is the tree's root sentinel.
func (n *Node) IsRoot() bool { return n.root != nil && n.root.sentinel == n }

// IsEmpty reports whether the node is an empty node (ellipsis placeholder).
func (n *Node) IsEmpty() bool { return n.minor > 0 }

// IsRemoved reports whether the node has been detached from its tree.
func (n *Node) IsRemoved() bool { return n.removed }

// Parent returns the basic-tree parent, or nil for the sentinel, empty
// nodes, and removed nodes.
func (n *Node) Parent() *Node { return n.parent }

// Root returns the tree the node belongs to. Removed nodes keep the
// back-reference for diagnostics.
func (n *Node) Root() *Root { return n.root }

// Children returns the node's direct children ordered by ord. The returned
// slice is a copy and stays valid across mutations.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Descendants returns all nodes of the subtree below n, ordered by ord.
// Called on the root sentinel it yields every regular node of the tree.
func (n *Node) Descendants() []*Node {
	if n.IsRoot() {
		return n.root.Descendants()
	}
	var out []*Node
	n.appendDescendants(&out)
	sortByOrd(out)
	return out
}

func (n *Node) appendDescendants(out *[]*Node) {
	for _, c := range n.children {
		*out = append(*out, c)
		c.appendDescendants(out)
	}
}

// PrevNode returns the regular node with ord-1, or the sentinel when the
// node is sentence-initial, or nil for the sentinel itself.
func (n *Node) PrevNode() *Node {
	if n.IsRoot() {
		return nil
	}
	if n.ord <= 1 {
		return n.root.sentinel
	}
	return n.root.nodeByOrd(n.ord - 1)
}

// NextNode returns the regular node with ord+1, or nil at the sentence end.
func (n *Node) NextNode() *Node {
	if n.IsRoot() {
		return n.root.nodeByOrd(1)
	}
	return n.root.nodeByOrd(n.ord + 1)
}

// Siblings returns the other children of the node's parent, ordered by ord.
func (n *Node) Siblings() []*Node {
	if n.parent == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.parent.children)-1)
	for _, c := range n.parent.children {
		if c != n {
			out = append(out, c)
		}
	}
	return out
}

// IsDescendantOf reports whether n lies in the subtree rooted at ancestor.
// The walk is O(depth) from n upward; a node is not its own descendant.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// SetParent reattaches the node's basic-tree edge to newParent. It fails
// with a CycleError when newParent is the node itself or one of its
// descendants; on failure the tree is left unchanged. Ords are not
// affected.
func (n *Node) SetParent(newParent *Node) error {
	if n.IsRoot() {
		return uderrors.NewPrecondition("set parent", "the root sentinel cannot be reattached")
	}
	if n.IsEmpty() {
		return uderrors.NewPrecondition("set parent", "empty nodes have no basic-tree edge")
	}
	if newParent == nil {
		return uderrors.NewPrecondition("set parent", "nil parent")
	}
	if newParent.IsEmpty() {
		return uderrors.NewPrecondition("set parent", "empty nodes cannot have basic-tree children")
	}
	if newParent == n || newParent.IsDescendantOf(n) {
		return uderrors.NewCycle(n.describe(), newParent.describe())
	}
	if newParent.root != n.root {
		return uderrors.NewPrecondition("set parent", "parent belongs to a different tree")
	}
	if n.parent != nil {
		n.parent.detachChild(n)
	}
	n.parent = newParent
	newParent.attachChild(n)
	return nil
}

// Reattach atomically sets the basic-tree edge and the matching enhanced
// edge: it reparents the node, sets deprel, removes every enhanced edge
// whose parent is the previous basic parent, and ensures exactly one
// enhanced edge {newParent, enhancedDeprel} remains.
func (n *Node) Reattach(newParent *Node, deprel, enhancedDeprel string) error {
	oldParent := n.parent
	if err := n.SetParent(newParent); err != nil {
		return err
	}
	n.Deprel = deprel
	if oldParent != nil {
		kept := n.Deps[:0]
		for _, d := range n.Deps {
			if d.Parent != oldParent {
				kept = append(kept, d)
			}
		}
		n.Deps = kept
	}
	n.AddDep(newParent, enhancedDeprel)
	return nil
}

// Remove detaches the node from its tree. With RehangChildren the node's
// children are reattached to the node's own parent first; with
// DeleteSubtree the whole subtree is dropped. Ords of the remaining nodes
// are not renumbered; the writer renumbers for display only.
func (n *Node) Remove(policy RemovePolicy) error {
	if n.IsRoot() {
		return uderrors.NewPrecondition("remove", "the root sentinel cannot be removed")
	}
	if n.removed {
		return uderrors.NewPrecondition("remove", "node already removed")
	}
	if n.IsEmpty() {
		n.root.removeEmpty(n)
		n.markRemoved()
		return nil
	}
	switch policy {
	case RehangChildren:
		for _, c := range n.Children() {
			c.parent = n.parent
			n.parent.attachChild(c)
		}
		n.children = nil
	case DeleteSubtree:
		for _, c := range n.Children() {
			if err := c.Remove(DeleteSubtree); err != nil {
				return err
			}
		}
	default:
		return uderrors.NewPrecondition("remove", fmt.Sprintf("unknown policy %d", policy))
	}
	n.parent.detachChild(n)
	root := n.root
	root.dropNode(n)
	root.purgeEnhanced(n)
	n.markRemoved()
	root.invalidateText()
	return nil
}

func (n *Node) markRemoved() {
	n.parent = nil
	n.removed = true
}

// CreateChild creates a new regular node attached below n, placed at the
// end of the sentence. The caller fills in the annotation fields and may
// shift the node afterwards.
func (n *Node) CreateChild() *Node {
	child := &Node{root: n.root, parent: n}
	n.root.appendNode(child)
	n.attachChild(child)
	return child
}

// AddDep appends an enhanced-graph edge unless an identical one exists.
func (n *Node) AddDep(parent *Node, deprel string) {
	for _, d := range n.Deps {
		if d.Parent == parent && d.Deprel == deprel {
			return
		}
	}
	n.Deps = append(n.Deps, Dep{Parent: parent, Deprel: deprel})
}

// NoSpaceAfter reports whether the token is glued to the following one
// (MISC SpaceAfter=No).
func (n *Node) NoSpaceAfter() bool { return n.Misc.Get("SpaceAfter") == "No" }

// MultiwordToken returns the multiword token covering the node, or nil.
func (n *Node) MultiwordToken() *MultiwordToken {
	if n.root == nil || n.minor > 0 || n.ord == 0 {
		return nil
	}
	for _, m := range n.root.mwts {
		if m.From <= n.ord && n.ord <= m.To {
			return m
		}
	}
	return nil
}

func (n *Node) attachChild(c *Node) {
	// keep children ordered by ord
	at := len(n.children)
	for i, existing := range n.children {
		if ordLess(c, existing) {
			at = i
			break
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[at+1:], n.children[at:])
	n.children[at] = c
}

func (n *Node) detachChild(c *Node) {
	for i, existing := range n.children {
		if existing == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *Node) describe() string {
	if n.IsRoot() {
		return "root"
	}
	if n.Form != "" {
		return fmt.Sprintf("node %s (%q)", n.OrdString(), n.Form)
	}
	return "node " + n.OrdString()
}

func ordLess(a, b *Node) bool {
	if a.ord != b.ord {
		return a.ord < b.ord
	}
	return a.minor < b.minor
}

func sortByOrd(nodes []*Node) {
	// insertion sort keeps the common nearly-sorted case cheap
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && ordLess(nodes[j], nodes[j-1]); j-- {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
		}
	}
}
