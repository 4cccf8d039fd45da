package block

import (
	"context"
	"time"

	"github.com/google/uuid"

	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/logging"
)

// Pipeline applies its blocks to a document strictly in sequence. Every
// run gets a fresh run ID that tags all log events it emits.
type Pipeline struct {
	blocks []Block
}

// NewPipeline creates a pipeline over the given blocks.
func NewPipeline(blocks ...Block) *Pipeline {
	return &Pipeline{blocks: blocks}
}

// Blocks returns the pipeline's blocks in execution order.
func (p *Pipeline) Blocks() []Block {
	out := make([]Block, len(p.blocks))
	copy(out, p.blocks)
	return out
}

// Append adds blocks to the end of the pipeline.
func (p *Pipeline) Append(blocks ...Block) {
	p.blocks = append(p.blocks, blocks...)
}

// Run applies every block to the document in order. The first block error
// aborts the run; the document keeps all edits applied up to that point.
func (p *Pipeline) Run(ctx context.Context, doc *ud.Document) error {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	logging.PipelineRun(ctx, "start", len(p.blocks), doc.Len())

	for _, b := range p.blocks {
		start := time.Now()
		if err := p.applyBlock(ctx, b, doc); err != nil {
			logging.BlockError(ctx, b.Name(), "process", err)
			return uderrors.Wrapf(err, "block %s", b.Name())
		}
		logging.BlockEvent(ctx, b.Name(), "processed", time.Since(start))
	}

	logging.PipelineRun(ctx, "end", len(p.blocks), doc.Len())
	return nil
}

// applyBlock dispatches to the coarsest hook the block implements.
func (p *Pipeline) applyBlock(ctx context.Context, b Block, doc *ud.Document) error {
	if dp, ok := b.(DocumentProcessor); ok {
		return dp.ProcessDocument(ctx, doc)
	}
	for _, bundle := range doc.Bundles() {
		if err := p.applyToBundle(ctx, b, bundle); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) applyToBundle(ctx context.Context, b Block, bundle *ud.Bundle) error {
	if bp, ok := b.(BundleProcessor); ok {
		return bp.ProcessBundle(ctx, bundle)
	}
	for _, tree := range bundle.Trees() {
		if err := p.applyToTree(ctx, b, tree); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) applyToTree(ctx context.Context, b Block, tree *ud.Root) error {
	if tp, ok := b.(TreeProcessor); ok {
		return tp.ProcessTree(ctx, tree)
	}
	np, ok := b.(NodeProcessor)
	if !ok {
		return uderrors.NewPrecondition("run pipeline",
			"block "+b.Name()+" implements no processing hook")
	}
	// snapshot before visiting, so node blocks can reshape the tree
	for _, n := range tree.Descendants() {
		if n.IsRemoved() {
			continue
		}
		if err := np.ProcessNode(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
