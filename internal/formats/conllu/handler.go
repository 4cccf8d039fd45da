// Package conllu implements the CoNLL-U reader and writer: ten
// tab-separated columns per token, `#` comment lines, multiword token
// ranges, empty nodes, and the enhanced dependency graph in DEPS.
package conllu

import (
	"io"

	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/formats"
)

// Handler implements the formats.Handler interface for CoNLL-U files.
type Handler struct{}

func init() {
	formats.Register(Handler{})
}

// Name implements formats.Handler.
func (Handler) Name() string { return "conllu" }

// Extensions implements formats.Handler.
func (Handler) Extensions() []string { return []string{".conllu", ".conll"} }

// Read parses a CoNLL-U stream into a document. Structural defects are
// reported with the line they occur on; nothing is silently repaired.
func (Handler) Read(r io.Reader, path string) (*ud.Document, error) {
	return newReader(r, path).readDocument()
}

// Write serializes the document in canonical CoNLL-U: loaded sentences
// that were not structurally edited round-trip byte for byte.
func (Handler) Write(w io.Writer, doc *ud.Document) error {
	return writeDocument(w, doc)
}
