package util

import (
	"context"

	"github.com/k-sap/udgo/core/block"
	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
	"github.com/k-sap/udgo/internal/logging"
)

func init() {
	blocks.Register("util.SplitSentence", func(params map[string]string) (block.Block, error) {
		sentID, err := blocks.RequireParam(params, "sent_id", "util.SplitSentence")
		if err != nil {
			return nil, err
		}
		wordID, err := blocks.IntParam(params, "word_id", 0)
		if err != nil {
			return nil, err
		}
		if wordID < 1 {
			return nil, uderrors.NewPrecondition("create block",
				"util.SplitSentence requires word_id >= 1")
		}
		return &SplitSentence{SentID: sentID, WordID: wordID}, nil
	})
}

// SplitSentence splits the sentence whose sent_id matches SentID into two
// sentences, moving the token with ord WordID and everything after it to a
// new bundle inserted right after the original. The halves get A and B
// suffixed to the original sent_id.
type SplitSentence struct {
	SentID string
	WordID int
}

// Name implements block.Block.
func (b *SplitSentence) Name() string { return "util.SplitSentence" }

// ProcessDocument implements block.DocumentProcessor. Only single-zone
// bundles can be split; parallel zones would each need their own split
// point.
func (b *SplitSentence) ProcessDocument(ctx context.Context, doc *ud.Document) error {
	for _, bundle := range doc.Bundles() {
		if bundle.ID() != b.SentID {
			continue
		}
		trees := bundle.Trees()
		if len(trees) != 1 || !bundle.HasTree("") {
			return uderrors.NewPrecondition("split sentence",
				"bundle "+b.SentID+" does not have exactly one tree in the empty zone")
		}
		return b.split(doc, bundle, trees[0])
	}
	return uderrors.NewNotFound("bundle", b.SentID)
}

func (b *SplitSentence) split(doc *ud.Document, bundle *ud.Bundle, tree *ud.Root) error {
	var move []*ud.Node
	for _, n := range tree.Descendants() {
		if n.Ord() >= b.WordID {
			move = append(move, n)
		}
	}
	if len(move) == 0 {
		return uderrors.NewPrecondition("split sentence",
			"no tokens at or after the split point; word_id may be out of range")
	}

	newBundle := doc.CreateBundle()
	doc.InsertBundleAfter(bundle.Number())
	newTree := newBundle.CreateTree("")
	newBundle.SetID(bundle.ID() + "B")
	bundle.SetID(bundle.ID() + "A")

	if err := newTree.StealNodes(move); err != nil {
		return err
	}

	forceRootDeprel(tree)
	forceRootDeprel(newTree)
	tree.SetText(tree.ComputeText())
	newTree.SetText(newTree.ComputeText())
	return nil
}

// forceRootDeprel relabels every child of the sentinel as root, which the
// node move cannot do on its own.
func forceRootDeprel(tree *ud.Root) {
	tops := 0
	for _, n := range tree.Sentinel().Children() {
		n.Deprel = "root"
		tops++
	}
	if tops > 1 {
		logging.Warn("sentence has more than one root relation", "sent_id", tree.SentID())
	}
}
