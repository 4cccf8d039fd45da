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

// twoSentenceDoc builds "Pes štěká ." (with a VERB) and "Ano ." (without).
func twoSentenceDoc() *ud.Document {
	doc := ud.NewDocument()

	b1 := doc.CreateBundle()
	t1 := b1.CreateTree("")
	b1.SetID("s1")
	noun := t1.CreateChild()
	noun.Form, noun.UPos, noun.Deprel = "Pes", "NOUN", "nsubj"
	verb := t1.CreateChild()
	verb.Form, verb.UPos, verb.Deprel = "štěká", "VERB", "root"
	punct := t1.CreateChild()
	punct.Form, punct.UPos, punct.Deprel = ".", "PUNCT", "punct"
	noun.SetParent(verb)
	punct.SetParent(verb)

	b2 := doc.CreateBundle()
	t2 := b2.CreateTree("")
	b2.SetID("s2")
	intj := t2.CreateChild()
	intj.Form, intj.UPos, intj.Deprel = "Ano", "INTJ", "root"
	punct2 := t2.CreateChild()
	punct2.Form, punct2.UPos, punct2.Deprel = ".", "PUNCT", "punct"
	punct2.SetParent(intj)

	return doc
}

func TestFilterKeepTreeIfNode(t *testing.T) {
	doc := twoSentenceDoc()
	b, err := blocks.New("util.Filter", map[string]string{"keep_tree_if_node": "upos=VERB"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if doc.Len() != 1 {
		t.Fatalf("doc.Len() = %d, want 1", doc.Len())
	}
	bundle := doc.Bundles()[0]
	if bundle.ID() != "s1" {
		t.Errorf("surviving bundle ID = %q, want %q", bundle.ID(), "s1")
	}
	if bundle.Number() != 1 {
		t.Errorf("surviving bundle number = %d, want 1", bundle.Number())
	}
}

func TestFilterDeleteNodesRehangsChildren(t *testing.T) {
	doc := twoSentenceDoc()
	b, err := blocks.New("util.Filter", map[string]string{"delete_nodes": "upos=PUNCT"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, tree := range doc.Trees() {
		for _, n := range tree.Descendants() {
			if n.UPos == "PUNCT" {
				t.Errorf("tree %d still holds punctuation node %q", i, n.Form)
			}
		}
		if errs := ud.ValidateTree(tree); len(errs) > 0 {
			t.Errorf("tree %d invalid after deletion: %v", i, errs)
		}
	}
	if got := len(doc.Trees()[0].Descendants()); got != 2 {
		t.Errorf("first tree has %d nodes, want 2", got)
	}
}

func TestFilterMarksMatchesInMisc(t *testing.T) {
	doc := twoSentenceDoc()
	b, err := blocks.New("util.Filter", map[string]string{
		"mark":     "deprel=root",
		"mark_key": "Hit",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	marked := 0
	for _, n := range doc.Nodes() {
		if n.Misc.Get("Hit") == "1" {
			marked++
			if n.Deprel != "root" {
				t.Errorf("marked node %q has deprel %q, want root", n.Form, n.Deprel)
			}
		}
	}
	if marked != 2 {
		t.Errorf("marked %d nodes, want 2", marked)
	}
}

func TestFilterRequiresAnAction(t *testing.T) {
	_, err := blocks.New("util.Filter", nil)
	if !errors.Is(err, uderrors.ErrPrecondition) {
		t.Errorf("New error = %v, want ErrPrecondition", err)
	}
}
