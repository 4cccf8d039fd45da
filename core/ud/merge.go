package ud

import (
	"fmt"

	uderrors "github.com/k-sap/udgo/core/errors"
)

// MergeInto collapses the three-token span {first, linker, n} into first,
// where first is n's basic parent at ord n-2 and the linking token sits at
// ord n-1 inside first's subtree. Children of the linker and of n are
// rehung onto first, the forms are concatenated around the linker's form,
// Number=Plur is set on first, and the linker and n are removed.
//
// The sentence text is then forcibly recomputed from the surviving
// SpaceAfter flags. When the source annotation was inconsistent with
// token adjacency, the recomputed text silently replaces it; this
// self-healing is intentional and is reported at warn level by callers
// that track fidelity.
func (n *Node) MergeInto(first *Node) error {
	if err := n.mergePreconditions(first); err != nil {
		return err
	}
	linker := n.PrevNode()

	for _, c := range linker.Children() {
		c.parent = first
		first.attachChild(c)
	}
	linker.children = nil
	for _, c := range n.Children() {
		c.parent = first
		first.attachChild(c)
	}
	n.children = nil

	first.Form = first.Form + linker.Form + n.Form
	first.Feats.Set("Number", "Plur")
	if n.NoSpaceAfter() {
		first.Misc.Set("SpaceAfter", "No")
	} else {
		first.Misc.Delete("SpaceAfter")
	}

	if err := linker.Remove(RehangChildren); err != nil {
		return err
	}
	if err := n.Remove(RehangChildren); err != nil {
		return err
	}
	root := first.root
	root.NormalizeOrds()
	root.RefreshText()
	return nil
}

func (n *Node) mergePreconditions(first *Node) error {
	if n.IsRoot() || n.IsEmpty() || first == nil || first.IsRoot() || first.IsEmpty() {
		return uderrors.NewPrecondition("merge", "only regular tokens can be merged")
	}
	if n.root != first.root {
		return uderrors.NewPrecondition("merge", "nodes belong to different trees")
	}
	if n.parent != first {
		return uderrors.NewPrecondition("merge", "target is not the node's basic parent")
	}
	if first.ord != n.ord-2 {
		return uderrors.NewPrecondition("merge",
			fmt.Sprintf("expected target at ord %d, found ord %d", n.ord-2, first.ord))
	}
	linker := n.PrevNode()
	if linker == nil || linker.IsRoot() {
		return uderrors.NewPrecondition("merge", "no linking token between the merged nodes")
	}
	if !linker.IsDescendantOf(first) {
		return uderrors.NewPrecondition("merge", "linking token is outside the target's subtree")
	}
	return nil
}
