package util

import (
	"context"
	"testing"

	"github.com/k-sap/udgo/core/block"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
)

func TestNormalizeRenumbersSentIDs(t *testing.T) {
	doc := ud.NewDocument()
	for _, id := range []string{"weird-7", "x", "x"} {
		b := doc.CreateBundle()
		b.CreateTree("")
		b.SetID(id)
	}

	b, err := blocks.New("util.Normalize", map[string]string{"prefix": "s", "start": "10"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p := block.NewPipeline(b)
	if err := p.Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"s10", "s11", "s12"}
	for i, bundle := range doc.Bundles() {
		if bundle.ID() != want[i] {
			t.Errorf("bundle %d ID = %q, want %q", i, bundle.ID(), want[i])
		}
		if got := bundle.Trees()[0].SentID(); got != want[i] {
			t.Errorf("bundle %d sent_id = %q, want %q", i, got, want[i])
		}
	}
}

func TestNormalizeRejectsBadStart(t *testing.T) {
	if _, err := blocks.New("util.Normalize", map[string]string{"start": "ten"}); err == nil {
		t.Error("expected an error for a non-integer start")
	}
}
