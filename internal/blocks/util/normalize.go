// Package util provides format-independent maintenance blocks.
package util

import (
	"context"
	"strconv"

	"github.com/k-sap/udgo/core/block"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
)

func init() {
	blocks.Register("util.Normalize", func(params map[string]string) (block.Block, error) {
		start, err := blocks.IntParam(params, "start", 1)
		if err != nil {
			return nil, err
		}
		return &Normalize{Prefix: params["prefix"], next: start}, nil
	})
}

// Normalize renumbers sent_ids into a contiguous integer sequence,
// optionally under a prefix. Attribute ordering in FEATS needs no block
// here: serialization is always canonical.
type Normalize struct {
	Prefix string
	next   int
}

// Name implements block.Block.
func (b *Normalize) Name() string { return "util.Normalize" }

// ProcessBundle implements block.BundleProcessor.
func (b *Normalize) ProcessBundle(ctx context.Context, bundle *ud.Bundle) error {
	bundle.SetID(b.Prefix + strconv.Itoa(b.next))
	b.next++
	return nil
}
