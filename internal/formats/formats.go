// Package formats provides the format handler registry and file-level
// dispatch. Handlers compile into the binary and register themselves at
// init time; files are routed to a handler by extension, with a trailing
// .xz stripped and handled transparently.
package formats

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"

	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
)

// Handler reads and writes documents in one concrete file format.
type Handler interface {
	// Name returns the short format name ("conllu", "sentences").
	Name() string

	// Extensions returns the file extensions the handler claims,
	// lowercase with the leading dot.
	Extensions() []string

	// Read parses a document from r. The path is used only for error
	// messages and document metadata.
	Read(r io.Reader, path string) (*ud.Document, error)

	// Write serializes a document to w.
	Write(w io.Writer, doc *ud.Document) error
}

// registry holds all registered handlers keyed by format name.
var registry = make(map[string]Handler)

// Register registers a handler by its format name. Handlers call it from
// their package init.
func Register(h Handler) {
	registry[h.Name()] = h
}

// Get returns a handler by format name, or nil.
func Get(name string) Handler {
	return registry[name]
}

// List returns the registered format names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForPath returns the handler claiming the path's extension. A trailing
// .xz is stripped before matching.
func ForPath(path string) (Handler, error) {
	name := strings.TrimSuffix(path, ".xz")
	ext := strings.ToLower(filepath.Ext(name))
	for _, h := range registry {
		for _, e := range h.Extensions() {
			if e == ext {
				return h, nil
			}
		}
	}
	return nil, uderrors.NewUnsupportedFormat(path, ext)
}

// ReadFile opens path, decompressing a trailing .xz transparently, and
// parses it with the handler claiming its extension.
func ReadFile(path string) (*ud.Document, error) {
	h, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, uderrors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, uderrors.Wrapf(err, "open xz stream %s", path)
		}
		r = xr
	}
	doc, err := h.Read(r, path)
	if err != nil {
		return nil, err
	}
	doc.Meta["source"] = path
	doc.Meta["format"] = h.Name()
	return doc, nil
}

// WriteFile serializes the document to path with the handler claiming its
// extension, compressing when the path ends in .xz. The file is created
// or truncated; on error a partial file may remain.
func WriteFile(path string, doc *ud.Document) error {
	h, err := ForPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return uderrors.Wrapf(err, "create %s", path)
	}

	var w io.Writer = f
	var xw *xz.Writer
	if strings.HasSuffix(path, ".xz") {
		xw, err = xz.NewWriter(f)
		if err != nil {
			f.Close()
			return uderrors.Wrapf(err, "open xz stream %s", path)
		}
		w = xw
	}

	werr := h.Write(w, doc)
	if xw != nil {
		if cerr := xw.Close(); werr == nil {
			werr = cerr
		}
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return uderrors.Wrapf(werr, "write %s", path)
	}
	return nil
}
