package util

import (
	"context"
	"errors"
	"testing"

	"github.com/k-sap/udgo/core/block"
	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
)

// splitDoc builds one bundle "s1" holding "Prší . Sněží ." parsed as two
// clauses glued into one sentence.
func splitDoc(t *testing.T) *ud.Document {
	t.Helper()
	doc := ud.NewDocument()
	b := doc.CreateBundle()
	tree := b.CreateTree("")
	b.SetID("s1")

	v1 := tree.CreateChild()
	v1.Form = "Prší"
	v1.Deprel = "root"
	p1 := v1.CreateChild()
	p1.Form = "."
	p1.Deprel = "punct"
	v2 := v1.CreateChild()
	v2.Form = "Sněží"
	v2.Deprel = "parataxis"
	p2 := v2.CreateChild()
	p2.Form = "."
	p2.Deprel = "punct"

	doc.CreateBundle().CreateTree("").CreateChild().Form = "Další"
	return doc
}

func TestSplitSentence(t *testing.T) {
	doc := splitDoc(t)
	b, err := blocks.New("util.SplitSentence", map[string]string{"sent_id": "s1", "word_id": "3"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if doc.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 bundles after the split", doc.Len())
	}
	bundles := doc.Bundles()
	if bundles[0].ID() != "s1A" || bundles[1].ID() != "s1B" {
		t.Errorf("bundle IDs = %q, %q, want s1A, s1B", bundles[0].ID(), bundles[1].ID())
	}
	if bundles[1].Number() != 2 || bundles[2].Number() != 3 {
		t.Errorf("bundle numbers = %d, %d, want 2, 3", bundles[1].Number(), bundles[2].Number())
	}

	firstHalf := bundles[0].Trees()[0]
	secondHalf := bundles[1].Trees()[0]
	if firstHalf.Len() != 2 || secondHalf.Len() != 2 {
		t.Fatalf("split sizes = %d/%d, want 2/2", firstHalf.Len(), secondHalf.Len())
	}
	top := secondHalf.Sentinel().Children()
	if len(top) != 1 || top[0].Form != "Sněží" || top[0].Deprel != "root" {
		t.Errorf("second half should be rooted at Sněží with deprel root, got %v", top)
	}
	if got := secondHalf.Text(); got != "Sněží ." {
		t.Errorf("second half text = %q, want recomputed", got)
	}
	if got := firstHalf.Text(); got != "Prší ." {
		t.Errorf("first half text = %q, want recomputed", got)
	}
	for _, tree := range []*ud.Root{firstHalf, secondHalf} {
		if errs := ud.ValidateTree(tree); len(errs) != 0 {
			t.Errorf("tree %s fails validation: %v", tree.SentID(), errs)
		}
	}
}

func TestSplitSentenceMissingBundle(t *testing.T) {
	doc := splitDoc(t)
	b, err := blocks.New("util.SplitSentence", map[string]string{"sent_id": "nope", "word_id": "2"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	err = block.NewPipeline(b).Run(context.Background(), doc)
	if !errors.Is(err, uderrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSplitSentenceWordIDOutOfRange(t *testing.T) {
	doc := splitDoc(t)
	b, err := blocks.New("util.SplitSentence", map[string]string{"sent_id": "s1", "word_id": "9"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	err = block.NewPipeline(b).Run(context.Background(), doc)
	if !errors.Is(err, uderrors.ErrPrecondition) {
		t.Errorf("expected ErrPrecondition, got %v", err)
	}
}

func TestSplitSentenceRequiresParams(t *testing.T) {
	if _, err := blocks.New("util.SplitSentence", nil); err == nil {
		t.Error("expected an error without sent_id")
	}
	if _, err := blocks.New("util.SplitSentence", map[string]string{"sent_id": "s1"}); err == nil {
		t.Error("expected an error without word_id")
	}
}
