// Package block defines the document processing pipeline: a sequence of
// blocks applied to a document one after the other, each seeing the full
// effect of its predecessors.
package block

import (
	"context"

	"github.com/k-sap/udgo/core/ud"
)

// Block is one transformation step. A block implements the coarsest hook
// that fits its work; the driver iterates the document for it when it
// implements only a finer-grained one.
type Block interface {
	// Name identifies the block in logs and pipeline errors.
	Name() string
}

// DocumentProcessor is implemented by blocks that take over the whole
// document traversal themselves.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc *ud.Document) error
}

// BundleProcessor is implemented by blocks that work bundle by bundle.
type BundleProcessor interface {
	ProcessBundle(ctx context.Context, b *ud.Bundle) error
}

// TreeProcessor is implemented by blocks that work one tree at a time.
type TreeProcessor interface {
	ProcessTree(ctx context.Context, tree *ud.Root) error
}

// NodeProcessor is implemented by blocks that work node by node. The
// driver snapshots each tree before visiting: nodes removed mid-iteration
// are skipped, nodes inserted mid-iteration are not visited.
type NodeProcessor interface {
	ProcessNode(ctx context.Context, n *ud.Node) error
}
