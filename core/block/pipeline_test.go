package block

import (
	"context"
	"errors"
	"testing"

	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
)

func twoSentenceDoc() *ud.Document {
	doc := ud.NewDocument()
	for _, words := range [][]string{{"Prší", "."}, {"Sněží", "hodně", "."}} {
		tree := doc.CreateBundle().CreateTree("")
		head := tree.CreateChild()
		head.Form = words[0]
		for _, w := range words[1:] {
			head.CreateChild().Form = w
		}
	}
	return doc
}

type nodeCounter struct {
	visited []string
}

func (b *nodeCounter) Name() string { return "test.NodeCounter" }

func (b *nodeCounter) ProcessNode(ctx context.Context, n *ud.Node) error {
	b.visited = append(b.visited, n.Form)
	return nil
}

type punctRemover struct{}

func (punctRemover) Name() string { return "test.PunctRemover" }

func (punctRemover) ProcessNode(ctx context.Context, n *ud.Node) error {
	if n.Form == "." {
		return n.Remove(ud.RehangChildren)
	}
	return nil
}

type nodeInserter struct{}

func (nodeInserter) Name() string { return "test.NodeInserter" }

func (nodeInserter) ProcessTree(ctx context.Context, tree *ud.Root) error {
	tree.CreateChild().Form = "nové"
	return nil
}

type failing struct{}

func (failing) Name() string { return "test.Failing" }

func (failing) ProcessTree(ctx context.Context, tree *ud.Root) error {
	return errors.New("boom")
}

type hookless struct{}

func (hookless) Name() string { return "test.Hookless" }

func TestPipelineVisitsEveryNode(t *testing.T) {
	counter := &nodeCounter{}
	p := NewPipeline(counter)
	if err := p.Run(context.Background(), twoSentenceDoc()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(counter.visited) != 5 {
		t.Errorf("visited %d nodes, want 5: %v", len(counter.visited), counter.visited)
	}
}

func TestPipelineRunsBlocksInOrder(t *testing.T) {
	counter := &nodeCounter{}
	p := NewPipeline(punctRemover{}, counter)
	if err := p.Run(context.Background(), twoSentenceDoc()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, form := range counter.visited {
		if form == "." {
			t.Error("second block saw a node the first block removed")
		}
	}
	if len(counter.visited) != 3 {
		t.Errorf("visited %d nodes, want 3 after punct removal", len(counter.visited))
	}
}

func TestPipelineSkipsNodesRemovedMidTraversal(t *testing.T) {
	doc := twoSentenceDoc()
	tree := doc.Trees()[1]
	victim := tree.Descendants()[1]

	remover := &conditionalRemover{target: victim}
	counter := &nodeCounter{}
	p := NewPipeline(remover, counter)
	if err := p.Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, form := range remover.visited {
		if form == victim.Form {
			t.Error("removed node was still visited in the same pass")
		}
	}
}

// conditionalRemover removes target's subtree when visiting its parent,
// then records every node it still gets to see.
type conditionalRemover struct {
	target  *ud.Node
	visited []string
}

func (b *conditionalRemover) Name() string { return "test.ConditionalRemover" }

func (b *conditionalRemover) ProcessNode(ctx context.Context, n *ud.Node) error {
	if b.target.Parent() == n {
		if err := b.target.Remove(ud.DeleteSubtree); err != nil {
			return err
		}
	}
	b.visited = append(b.visited, n.Form)
	return nil
}

func TestPipelineShowsInsertedNodesToLaterBlocks(t *testing.T) {
	counter := &nodeCounter{}
	p := NewPipeline(nodeInserter{}, counter)
	if err := p.Run(context.Background(), twoSentenceDoc()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// 5 original nodes plus one inserted per tree
	if len(counter.visited) != 7 {
		t.Errorf("later block visited %d nodes, want 7", len(counter.visited))
	}
}

func TestPipelineStopsOnBlockError(t *testing.T) {
	counter := &nodeCounter{}
	p := NewPipeline(failing{}, counter)
	err := p.Run(context.Background(), twoSentenceDoc())
	if err == nil {
		t.Fatal("expected the pipeline to fail")
	}
	if len(counter.visited) != 0 {
		t.Error("blocks after a failure must not run")
	}
}

func TestPipelineRejectsHooklessBlock(t *testing.T) {
	p := NewPipeline(hookless{})
	err := p.Run(context.Background(), twoSentenceDoc())
	if !errors.Is(err, uderrors.ErrPrecondition) {
		t.Errorf("expected ErrPrecondition, got %v", err)
	}
}

func TestPipelineHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	counter := &nodeCounter{}
	p := NewPipeline(counter)
	err := p.Run(ctx, twoSentenceDoc())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
