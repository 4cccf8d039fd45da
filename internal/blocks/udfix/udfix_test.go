package udfix

import (
	"context"
	"errors"
	"testing"

	"github.com/k-sap/udgo/core/block"
	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
)

func singleTreeDoc() (*ud.Document, *ud.Root) {
	doc := ud.NewDocument()
	tree := doc.CreateBundle().CreateTree("")
	return doc, tree
}

func TestFixCompoundNameConvertsCluster(t *testing.T) {
	doc, tree := singleTreeDoc()

	verb := tree.CreateChild()
	verb.Form = "met"
	verb.UPos = "VERB"
	verb.Deprel = "root"

	given := verb.CreateChild()
	given.Form = "Siti"
	given.UPos = "PROPN"
	given.Deprel = "obj"

	surname := given.CreateChild()
	surname.Form = "Nurhaliza"
	surname.UPos = "PROPN"
	surname.Deprel = "compound"

	b, err := blocks.New("ud.FixCompoundName", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if surname.Deprel != "flat:name" {
		t.Errorf("surname deprel = %q, want flat:name", surname.Deprel)
	}
	if surname.Parent() != given {
		t.Error("surname should stay attached to the first name word")
	}
	if given.Deprel != "obj" || given.Parent() != verb {
		t.Error("head of the name should keep its external relation")
	}
}

func TestFixCompoundNameReheadsWhenModifierComesFirst(t *testing.T) {
	doc, tree := singleTreeDoc()

	verb := tree.CreateChild()
	verb.Form = "met"
	verb.UPos = "VERB"
	verb.Deprel = "root"

	// surface order: modifier before its head
	modifier := tree.CreateChild()
	modifier.Form = "Siti"
	modifier.UPos = "PROPN"
	modifier.Deprel = "compound"

	head := verb.CreateChild()
	head.Form = "Nurhaliza"
	head.UPos = "PROPN"
	head.Deprel = "obj"

	if err := modifier.SetParent(head); err != nil {
		t.Fatal(err)
	}

	b, _ := blocks.New("ud.FixCompoundName", nil)
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if modifier.Parent() != verb || modifier.Deprel != "obj" {
		t.Errorf("leftmost name word should take over the head role, got parent=%v deprel=%q",
			modifier.Parent(), modifier.Deprel)
	}
	if head.Parent() != modifier || head.Deprel != "flat:name" {
		t.Errorf("old head should become flat:name under the leftmost word, got parent=%v deprel=%q",
			head.Parent(), head.Deprel)
	}
}

func TestFixCompoundNameIgnoresNonPropn(t *testing.T) {
	doc, tree := singleTreeDoc()
	noun := tree.CreateChild()
	noun.Form = "tea"
	noun.UPos = "NOUN"
	noun.Deprel = "root"
	mod := noun.CreateChild()
	mod.Form = "Earl"
	mod.UPos = "PROPN"
	mod.Deprel = "compound"

	b, _ := blocks.New("ud.FixCompoundName", nil)
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if mod.Deprel != "compound" {
		t.Error("PROPN under a non-PROPN head must be left alone")
	}
}

func TestFixCompoundNameRefusesEnhancedGraph(t *testing.T) {
	doc, tree := singleTreeDoc()
	head := tree.CreateChild()
	head.UPos = "PROPN"
	head.Deprel = "root"
	mod := head.CreateChild()
	mod.UPos = "PROPN"
	mod.Deprel = "compound"
	mod.AddDep(head, "compound")

	b, _ := blocks.New("ud.FixCompoundName", nil)
	err := block.NewPipeline(b).Run(context.Background(), doc)
	if !errors.Is(err, uderrors.ErrPrecondition) {
		t.Errorf("expected ErrPrecondition, got %v", err)
	}
}

func TestFixPunctAttachesFinalPunctProjectively(t *testing.T) {
	doc, tree := singleTreeDoc()

	subj := tree.CreateChild()
	subj.Form = "Pes"
	subj.UPos = "NOUN"
	subj.Deprel = "nsubj"

	verb := tree.CreateChild()
	verb.Form = "štěká"
	verb.UPos = "VERB"
	verb.Deprel = "root"
	if err := subj.SetParent(verb); err != nil {
		t.Fatal(err)
	}

	adv := verb.CreateChild()
	adv.Form = "hlasitě"
	adv.UPos = "ADV"
	adv.Deprel = "advmod"

	// the final mark hangs from the sentinel instead of the main verb
	bang := tree.CreateChild()
	bang.Form = "!"
	bang.UPos = "PUNCT"
	bang.Deprel = "punct"

	b, err := blocks.New("ud.FixPunct", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if bang.Parent() != verb {
		t.Errorf("final punctuation parent = %v, want the main verb", bang.Parent())
	}
	if bang.Deprel != "punct" {
		t.Errorf("Deprel = %q, want punct", bang.Deprel)
	}
	if errs := ud.ValidateTree(tree); len(errs) != 0 {
		t.Errorf("tree fails validation: %v", errs)
	}
}

func TestFixPunctRehangsChildrenOfPunctuation(t *testing.T) {
	doc, tree := singleTreeDoc()

	verb := tree.CreateChild()
	verb.Form = "spí"
	verb.UPos = "VERB"
	verb.Deprel = "root"

	comma := verb.CreateChild()
	comma.Form = ","
	comma.UPos = "PUNCT"
	comma.Deprel = "punct"

	stray := comma.CreateChild()
	stray.Form = "dnes"
	stray.UPos = "ADV"
	stray.Deprel = "advmod"

	b, _ := blocks.New("ud.FixPunct", nil)
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stray.Parent() == comma {
		t.Error("punctuation must not keep children")
	}
	if len(comma.Children()) != 0 {
		t.Errorf("comma still has %d children", len(comma.Children()))
	}
}

func TestFixPunctAttachesQuotePairToEnclosedHead(t *testing.T) {
	doc, tree := singleTreeDoc()

	pron := tree.CreateChild()
	pron.Form = "He"
	pron.UPos = "PRON"
	pron.Deprel = "nsubj"

	verb := tree.CreateChild()
	verb.Form = "said"
	verb.UPos = "VERB"
	verb.Deprel = "root"
	if err := pron.SetParent(verb); err != nil {
		t.Fatal(err)
	}

	// both quotes start on the verb instead of the quoted word
	openQ := verb.CreateChild()
	openQ.Form = `"`
	openQ.UPos = "PUNCT"
	openQ.Deprel = "punct"

	quoted := verb.CreateChild()
	quoted.Form = "hi"
	quoted.UPos = "INTJ"
	quoted.Deprel = "obj"

	closeQ := verb.CreateChild()
	closeQ.Form = `"`
	closeQ.UPos = "PUNCT"
	closeQ.Deprel = "punct"

	b, _ := blocks.New("ud.FixPunct", nil)
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if openQ.Parent() != quoted {
		t.Errorf("opening quote parent = %v, want the quoted word", openQ.Parent())
	}
	if closeQ.Parent() != quoted {
		t.Errorf("closing quote parent = %v, want the quoted word", closeQ.Parent())
	}
}

func TestFixPunctLeavesAbbreviationDotAlone(t *testing.T) {
	doc, tree := singleTreeDoc()

	num := tree.CreateChild()
	num.Form = "3"
	num.UPos = "NUM"
	num.Deprel = "root"

	dot := num.CreateChild()
	dot.Form = "."
	dot.UPos = "PUNCT"
	dot.Deprel = "punct"

	word := num.CreateChild()
	word.Form = "místo"
	word.UPos = "NOUN"
	word.Deprel = "appos"

	b, _ := blocks.New("ud.FixPunct", nil)
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if dot.Parent() != num {
		t.Error("ordinal-marker dot right after its parent must stay put")
	}
	if word.Parent() != num {
		t.Error("following word must keep its parent")
	}
}

// reduplicatedDoc builds "Dia membaca buku – buku ." with the dash and the
// second copy below the first.
func reduplicatedDoc() (*ud.Document, *ud.Root) {
	doc, tree := singleTreeDoc()

	verb := tree.CreateChild()
	verb.Form = "membaca"
	verb.Deprel = "root"

	subj := tree.CreateChild()
	subj.Form = "Dia"
	subj.Deprel = "nsubj"
	_ = subj.SetParent(verb)

	first := verb.CreateChild()
	first.Form = "buku"
	first.Deprel = "obj"
	first.Misc.Set("SpaceAfter", "No")

	dash := first.CreateChild()
	dash.Form = "–"
	dash.Deprel = "punct"
	dash.Misc.Set("SpaceAfter", "No")

	second := first.CreateChild()
	second.Form = "Buku"
	second.Deprel = "compound:plur"

	punct := verb.CreateChild()
	punct.Form = "."
	punct.Deprel = "punct"

	return doc, tree
}

func TestMergeReduplicated(t *testing.T) {
	doc, tree := reduplicatedDoc()

	b, err := blocks.New("ud.MergeReduplicated", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if tree.Len() != 4 {
		t.Fatalf("Len() = %d, want 4 after merging three tokens into one", tree.Len())
	}
	var merged *ud.Node
	for _, n := range tree.Descendants() {
		if n.Deprel == "obj" {
			merged = n
		}
	}
	if merged == nil {
		t.Fatal("merged token not found")
	}
	if merged.Form != "buku-Buku" {
		t.Errorf("Form = %q, want buku-Buku with the dash normalized", merged.Form)
	}
	if merged.Feats.Get("Number") != "Plur" {
		t.Error("merged token should carry Number=Plur")
	}
	if errs := ud.ValidateTree(tree); len(errs) != 0 {
		t.Errorf("tree fails validation after merge: %v", errs)
	}
}

func TestMergeReduplicatedSkipsNonMatchingSpans(t *testing.T) {
	doc, tree := singleTreeDoc()
	head := tree.CreateChild()
	head.Form = "buku"
	head.Deprel = "root"
	child := head.CreateChild()
	child.Form = "meja"
	child.Deprel = "compound:plur"

	b, _ := blocks.New("ud.MergeReduplicated", nil)
	if err := block.NewPipeline(b).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if tree.Len() != 2 {
		t.Error("non-matching span must be left untouched")
	}
}
