package udfix

import (
	"context"
	"regexp"
	"strings"

	"github.com/k-sap/udgo/core/block"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
)

func init() {
	blocks.Register("ud.MergeReduplicated", func(params map[string]string) (block.Block, error) {
		return &MergeReduplicated{}, nil
	})
}

var hyphenRE = regexp.MustCompile(`^(-|–|--)$`)

// MergeReduplicated collapses reduplicated plurals tokenized as three
// tokens (word, hyphen, word) into a single hyphenated token carrying
// Number=Plur. The pattern is used for Indonesian, where "buku-buku" is
// the plural of "buku". Spans that do not match the expected shape are
// left untouched.
type MergeReduplicated struct{}

// Name implements block.Block.
func (b *MergeReduplicated) Name() string { return "ud.MergeReduplicated" }

// ProcessNode implements block.NodeProcessor.
func (b *MergeReduplicated) ProcessNode(ctx context.Context, n *ud.Node) error {
	if n.Deprel != "compound:plur" {
		return nil
	}
	first := n.Parent()
	if first == nil || first.IsRoot() {
		return nil
	}
	if first.Ord() != n.Ord()-2 || !strings.EqualFold(first.Form, n.Form) {
		return nil
	}
	hyph := n.PrevNode()
	if hyph == nil || !hyphenRE.MatchString(hyph.Form) || !hyph.IsDescendantOf(first) {
		return nil
	}
	// an n-dash between the copies still merges to a plain hyphen
	hyph.Form = "-"
	return n.MergeInto(first)
}
