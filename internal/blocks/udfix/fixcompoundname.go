// Package udfix provides blocks that repair recurring annotation defects
// in released Universal Dependencies treebanks.
package udfix

import (
	"context"
	"strings"

	"github.com/k-sap/udgo/core/block"
	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
)

func init() {
	blocks.Register("ud.FixCompoundName", func(params map[string]string) (block.Block, error) {
		return &FixCompoundName{}, nil
	})
}

// FixCompoundName rewrites compound relations between proper nouns as
// flat:name. Multiword person names should be flat, but several treebanks
// annotate them as compounds; this block converts the whole name cluster,
// making its leftmost word the technical head. Compounds of a PROPN with
// a non-PROPN are left alone.
type FixCompoundName struct{}

// Name implements block.Block.
func (b *FixCompoundName) Name() string { return "ud.FixCompoundName" }

// ProcessNode implements block.NodeProcessor.
func (b *FixCompoundName) ProcessNode(ctx context.Context, n *ud.Node) error {
	parent := n.Parent()
	if n.UPos != "PROPN" || baseDeprel(n.Deprel) != "compound" ||
		parent == nil || parent.UPos != "PROPN" {
		return nil
	}

	namewords := []*ud.Node{n, parent}
	for _, s := range n.Siblings() {
		if s.UPos == "PROPN" && baseDeprel(s.Deprel) == "compound" {
			namewords = append(namewords, s)
		}
	}
	sortNodes(namewords)

	// rewriting the basic tree under enhanced edges would make the two
	// graphs diverge
	for _, w := range namewords {
		if len(w.Deps) > 0 {
			return uderrors.NewPrecondition("fix compound name",
				"node "+w.OrdString()+" carries enhanced dependencies")
		}
	}

	first := namewords[0]
	if first != parent {
		if err := first.SetParent(parent.Parent()); err != nil {
			return err
		}
		first.Deprel = parent.Deprel
	}
	for _, w := range namewords[1:] {
		if err := w.SetParent(first); err != nil {
			return err
		}
		w.Deprel = "flat:name"
	}
	return nil
}

func baseDeprel(deprel string) string {
	base, _, _ := strings.Cut(deprel, ":")
	return base
}

func sortNodes(nodes []*ud.Node) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j].Ord() < nodes[j-1].Ord(); j-- {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
		}
	}
}
