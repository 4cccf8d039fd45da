// Package sentences implements the plain-text format: one sentence per
// line, no tokenization. Reading yields trees that carry only a text
// comment; writing emits each tree's sentence text, recomputing it from
// the tokens when the stored text is stale or absent.
package sentences

import (
	"bufio"
	"io"
	"strings"

	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/formats"
)

// Handler implements the formats.Handler interface for plain text files.
type Handler struct{}

func init() {
	formats.Register(Handler{})
}

// Name implements formats.Handler.
func (Handler) Name() string { return "sentences" }

// Extensions implements formats.Handler.
func (Handler) Extensions() []string { return []string{".txt"} }

// Read parses one sentence per line. Blank lines are skipped.
func (Handler) Read(r io.Reader, path string) (*ud.Document, error) {
	doc := ud.NewDocument()
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scan.Scan() {
		line := strings.TrimSuffix(scan.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		b := doc.CreateBundle()
		tree := b.CreateTree("")
		tree.SetText(line)
	}
	if err := scan.Err(); err != nil {
		return nil, uderrors.Wrapf(err, "read %s", path)
	}
	return doc, nil
}

// Write emits one sentence per line in document order.
func (Handler) Write(w io.Writer, doc *ud.Document) error {
	bw := bufio.NewWriter(w)
	for _, tree := range doc.Trees() {
		text := tree.Text()
		if text == "" || tree.TextDirty() {
			text = tree.ComputeText()
		}
		bw.WriteString(text)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
