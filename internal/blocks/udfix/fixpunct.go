package udfix

import (
	"context"
	"strings"

	"github.com/k-sap/udgo/core/block"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
)

func init() {
	blocks.Register("ud.FixPunct", func(params map[string]string) (block.Block, error) {
		return &FixPunct{}, nil
	})
}

// pairedPunct maps opening quote and bracket forms to their closing
// counterpart. Some languages use other quotation styles; unknown forms
// are simply treated as subordinate punctuation.
var pairedPunct = map[string]string{
	"(": ")",
	"[": "]",
	"{": "}",
	`"`: `"`,
	"'": "'",
	"“": "”",
	"„": "“",
	"«": "»",
	"‹": "›",
	"《": "》",
	"「": "」",
	"『": "』",
	"¿": "?",
	"¡": "!",
}

const finalPunct = ".?!"

// FixPunct reattaches punctuation projectively. PUNCT nodes hang from the
// head of a neighboring subtree, paired quotes and brackets from the head
// of the material they enclose, and punctuation never keeps children.
// Sentence-final punctuation is never attached to a following token.
type FixPunct struct{}

// Name implements block.Block.
func (b *FixPunct) Name() string { return "ud.FixPunct" }

// ProcessTree implements block.TreeProcessor.
func (b *FixPunct) ProcessTree(ctx context.Context, tree *ud.Root) error {
	// nothing may hang below punctuation
	for _, n := range tree.Descendants() {
		for p := n.Parent(); p != nil && !p.IsRoot() && p.UPos == "PUNCT"; p = n.Parent() {
			if err := n.SetParent(p.Parent()); err != nil {
				return err
			}
		}
	}

	// paired punctuation first, so a dot-before-closing-quote sentence
	// does not force a non-projectivity on the final dot
	nodes := tree.Descendants()
	punctType := make(map[*ud.Node]string)
	for i, n := range nodes {
		if punctType[n] == "closing" {
			continue
		}
		if closing, ok := pairedPunct[n.Form]; ok {
			if err := fixPaired(nodes, i, closing, punctType); err != nil {
				return err
			}
		}
	}

	for _, n := range nodes {
		if n.UPos == "PUNCT" && punctType[n] == "" {
			if err := fixSubord(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// fixSubord reattaches one unpaired punctuation mark to the head of the
// nearest neighboring subtree that keeps the attachment projective.
func fixSubord(n *ud.Node) error {
	// a dot right after its parent is likely an ordinal or abbreviation
	// marker; leave it alone
	if n.Form == "." && n.Parent() == n.PrevNode() {
		return nil
	}

	lCand, rCand := n.PrevNode(), n.NextNode()
	if strings.Contains(finalPunct, n.Form) {
		rCand = nil
	}
	for lCand != nil && lCand.Ord() > 0 && lCand.UPos == "PUNCT" {
		lCand = lCand.PrevNode()
	}
	for rCand != nil && rCand.UPos == "PUNCT" {
		rCand = rCand.NextNode()
	}

	// climb from each candidate while the climb stays on the punct's side
	if lCand != nil && lCand.Ord() == 0 {
		lCand = nil
	}
	if lCand != nil {
		for !lCand.Parent().IsRoot() && lCand.Parent().Ord() < n.Ord() &&
			subtreeMaxOrd(lCand) <= n.Ord() {
			lCand = lCand.Parent()
		}
	}
	if rCand != nil {
		for !rCand.Parent().IsRoot() && n.Ord() < rCand.Parent().Ord() &&
			subtreeMinOrd(rCand) >= n.Ord() {
			rCand = rCand.Parent()
		}
	}

	// prefer the lower candidate
	var cand *ud.Node
	switch {
	case lCand != nil && rCand != nil && lCand.IsDescendantOf(rCand):
		cand = lCand
	case rCand != nil:
		cand = rCand
	case lCand != nil:
		cand = lCand
	default:
		return nil
	}

	// keep the current parent unless it lies outside the chosen unit
	if n.Parent() != cand && !n.Parent().IsDescendantOf(cand) {
		if err := n.SetParent(cand); err != nil {
			return err
		}
	}
	n.Deprel = "punct"
	return nil
}

// fixPaired finds the closing counterpart of the opening mark at nodes[i]
// and attaches the pair to the head of the enclosed material.
func fixPaired(nodes []*ud.Node, i int, closing string, punctType map[*ud.Node]string) error {
	opening := nodes[i]
	nested := 0
	for j := i + 1; j < len(nodes); j++ {
		switch nodes[j].Form {
		case closing:
			if nested > 0 {
				nested--
				continue
			}
			return fixPair(nodes[i+1:j], opening, nodes[j], punctType)
		case opening.Form:
			nested++
		}
	}
	return nil
}

// fixPair attaches opening and closing marks to the head(s) of the span
// between them: the nodes whose parent lies outside the pair.
func fixPair(span []*ud.Node, opening, closing *ud.Node, punctType map[*ud.Node]string) error {
	var heads []*ud.Node
	for _, n := range span {
		p := n.Parent()
		if n.UPos != "PUNCT" && (p.Ord() < opening.Ord() || p.Ord() > closing.Ord()) {
			heads = append(heads, n)
		}
	}
	if len(heads) == 0 {
		return nil
	}
	openHead, closeHead := heads[0], heads[0]
	for _, h := range heads[1:] {
		if subtreeMinOrd(h) < subtreeMinOrd(openHead) {
			openHead = h
		}
		if subtreeMaxOrd(h) > subtreeMaxOrd(closeHead) {
			closeHead = h
		}
	}
	if err := opening.SetParent(openHead); err != nil {
		return err
	}
	if err := closing.SetParent(closeHead); err != nil {
		return err
	}
	punctType[opening] = "opening"
	punctType[closing] = "closing"
	return nil
}

func subtreeMinOrd(n *ud.Node) int {
	min := n.Ord()
	for _, d := range n.Descendants() {
		if d.Ord() < min {
			min = d.Ord()
		}
	}
	return min
}

func subtreeMaxOrd(n *ud.Node) int {
	max := n.Ord()
	for _, d := range n.Descendants() {
		if d.Ord() > max {
			max = d.Ord()
		}
	}
	return max
}
