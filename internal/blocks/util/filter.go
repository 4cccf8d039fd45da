package util

import (
	"context"

	"github.com/k-sap/udgo/core/block"
	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/query"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
)

func init() {
	blocks.Register("util.Filter", func(params map[string]string) (block.Block, error) {
		f := &Filter{MarkKey: params["mark_key"]}
		if f.MarkKey == "" {
			f.MarkKey = "Mark"
		}
		var err error
		if expr, ok := params["keep_tree_if_node"]; ok {
			if f.keepTree, err = query.Parse(expr); err != nil {
				return nil, err
			}
		}
		if expr, ok := params["delete_nodes"]; ok {
			if f.deleteNodes, err = query.Parse(expr); err != nil {
				return nil, err
			}
		}
		if expr, ok := params["mark"]; ok {
			if f.mark, err = query.Parse(expr); err != nil {
				return nil, err
			}
		}
		if f.keepTree == nil && f.deleteNodes == nil && f.mark == nil {
			return nil, uderrors.NewPrecondition("create block",
				"util.Filter needs at least one of keep_tree_if_node, delete_nodes, mark")
		}
		return f, nil
	})
}

// Filter prunes or marks parts of a document by node selectors. With
// keep_tree_if_node it drops every tree that has no matching node, with
// delete_nodes it removes matching nodes (rehanging their children), and
// with mark it flags matching nodes in MISC under MarkKey.
type Filter struct {
	MarkKey     string
	keepTree    *query.Selector
	deleteNodes *query.Selector
	mark        *query.Selector
}

// Name implements block.Block.
func (f *Filter) Name() string { return "util.Filter" }

// ProcessDocument implements block.DocumentProcessor. Tree removal has to
// happen at document level so emptied bundles can be dropped too.
func (f *Filter) ProcessDocument(ctx context.Context, doc *ud.Document) error {
	for _, bundle := range doc.Bundles() {
		for _, tree := range bundle.Trees() {
			if f.keepTree != nil && len(f.keepTree.FilterTree(tree)) == 0 {
				bundle.RemoveTree(tree.Zone())
				continue
			}
			if f.deleteNodes != nil {
				for _, n := range f.deleteNodes.FilterTree(tree) {
					if n.IsRemoved() {
						continue
					}
					if err := n.Remove(ud.RehangChildren); err != nil {
						return err
					}
				}
			}
			if f.mark != nil {
				for _, n := range f.mark.FilterTree(tree) {
					n.Misc.Set(f.MarkKey, "1")
				}
			}
		}
		if len(bundle.Trees()) == 0 {
			doc.RemoveBundle(bundle)
		}
	}
	return nil
}
