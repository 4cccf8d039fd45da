package conllu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
)

const columnCount = 10

// depRef is an unresolved DEPS edge: the head is still an ordinal string
// because it may point at an empty node or the sentinel.
type depRef struct {
	head   string
	deprel string
}

type wordLine struct {
	line   int
	ord    int
	form   string
	lemma  string
	upos   string
	xpos   string
	feats  ud.Feats
	head   int
	deprel string
	deps   []depRef
	misc   ud.Misc
}

type mwtLine struct {
	line int
	from int
	to   int
	form string
	misc ud.Misc
}

type emptyLine struct {
	line  int
	major int
	minor int
	form  string
	lemma string
	upos  string
	xpos  string
	feats ud.Feats
	deps  []depRef
	misc  ud.Misc
}

// sentence accumulates one raw sentence between blank lines.
type sentence struct {
	comments []string
	words    []wordLine
	mwts     []mwtLine
	empties  []emptyLine
}

func (s *sentence) isEmpty() bool {
	return len(s.comments) == 0 && len(s.words) == 0 &&
		len(s.mwts) == 0 && len(s.empties) == 0
}

type reader struct {
	path string
	scan *bufio.Scanner
	line int

	doc        *ud.Document
	lastBundle *ud.Bundle
}

func newReader(r io.Reader, path string) *reader {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	return &reader{path: path, scan: scan, doc: ud.NewDocument()}
}

func (r *reader) readDocument() (*ud.Document, error) {
	var cur sentence
	for r.scan.Scan() {
		r.line++
		line := strings.TrimSuffix(r.scan.Text(), "\r")

		if line == "" {
			if !cur.isEmpty() {
				if err := r.flush(&cur); err != nil {
					return nil, err
				}
				cur = sentence{}
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			cur.comments = append(cur.comments, line)
			continue
		}
		if err := r.parseTokenLine(&cur, line); err != nil {
			return nil, err
		}
	}
	if err := r.scan.Err(); err != nil {
		return nil, uderrors.Wrapf(err, "read %s", r.path)
	}
	if !cur.isEmpty() {
		if err := r.flush(&cur); err != nil {
			return nil, err
		}
	}
	return r.doc, nil
}

func (r *reader) parseTokenLine(cur *sentence, line string) error {
	cols := strings.Split(line, "\t")
	if len(cols) != columnCount {
		return r.malformed("expected %d tab-separated columns, found %d", columnCount, len(cols))
	}

	id := cols[0]
	switch {
	case strings.Contains(id, "-"):
		return r.parseMWTLine(cur, id, cols)
	case strings.Contains(id, "."):
		return r.parseEmptyLine(cur, id, cols)
	}

	ord, err := strconv.Atoi(id)
	if err != nil || ord < 1 {
		return r.malformed("invalid token ID %q", id)
	}
	feats, ok := ud.ParseFeats(cols[5])
	if !ok {
		return r.malformed("invalid FEATS %q", cols[5])
	}
	if cols[6] == "_" {
		return r.malformed("token %s has no HEAD", id)
	}
	head, err := strconv.Atoi(cols[6])
	if err != nil || head < 0 {
		return r.malformed("invalid HEAD %q", cols[6])
	}
	deps, derr := r.parseDeps(cols[8])
	if derr != nil {
		return derr
	}

	cur.words = append(cur.words, wordLine{
		line:   r.line,
		ord:    ord,
		form:   cols[1],
		lemma:  underscoreToEmpty(cols[2]),
		upos:   underscoreToEmpty(cols[3]),
		xpos:   underscoreToEmpty(cols[4]),
		feats:  feats,
		head:   head,
		deprel: underscoreToEmpty(cols[7]),
		deps:   deps,
		misc:   ud.ParseMisc(cols[9]),
	})
	return nil
}

func (r *reader) parseMWTLine(cur *sentence, id string, cols []string) error {
	fromStr, toStr, _ := strings.Cut(id, "-")
	from, err1 := strconv.Atoi(fromStr)
	to, err2 := strconv.Atoi(toStr)
	if err1 != nil || err2 != nil || from < 1 || to <= from {
		return r.malformed("invalid multiword token range %q", id)
	}
	cur.mwts = append(cur.mwts, mwtLine{
		line: r.line,
		from: from,
		to:   to,
		form: cols[1],
		misc: ud.ParseMisc(cols[9]),
	})
	return nil
}

func (r *reader) parseEmptyLine(cur *sentence, id string, cols []string) error {
	majorStr, minorStr, _ := strings.Cut(id, ".")
	major, err1 := strconv.Atoi(majorStr)
	minor, err2 := strconv.Atoi(minorStr)
	if err1 != nil || err2 != nil || major < 0 || minor < 1 {
		return r.malformed("invalid empty node ID %q", id)
	}
	if cols[6] != "_" || cols[7] != "_" {
		return r.malformed("empty node %s must have HEAD and DEPREL _", id)
	}
	feats, ok := ud.ParseFeats(cols[5])
	if !ok {
		return r.malformed("invalid FEATS %q", cols[5])
	}
	deps, derr := r.parseDeps(cols[8])
	if derr != nil {
		return derr
	}
	cur.empties = append(cur.empties, emptyLine{
		line:  r.line,
		major: major,
		minor: minor,
		form:  cols[1],
		lemma: underscoreToEmpty(cols[2]),
		upos:  underscoreToEmpty(cols[3]),
		xpos:  underscoreToEmpty(cols[4]),
		feats: feats,
		deps:  deps,
		misc:  ud.ParseMisc(cols[9]),
	})
	return nil
}

func (r *reader) parseDeps(s string) ([]depRef, error) {
	if s == "" || s == "_" {
		return nil, nil
	}
	items := strings.Split(s, "|")
	deps := make([]depRef, 0, len(items))
	for _, item := range items {
		head, deprel, found := strings.Cut(item, ":")
		if !found || head == "" || deprel == "" {
			return nil, r.malformed("invalid DEPS item %q", item)
		}
		deps = append(deps, depRef{head: head, deprel: deprel})
	}
	return deps, nil
}

// flush turns the accumulated sentence into a tree and files it into the
// right bundle.
func (r *reader) flush(cur *sentence) error {
	tree := ud.NewRoot()
	for _, c := range cur.comments {
		tree.AddComment(c)
	}

	nodes := make([]*ud.Node, 0, len(cur.words))
	for i, w := range cur.words {
		if w.ord != i+1 {
			return lineError(r.path, w.line,
				fmt.Sprintf("token ID %d breaks the 1..n sequence (expected %d)", w.ord, i+1), nil)
		}
		n := tree.CreateChild()
		n.Form = w.form
		n.Lemma = w.lemma
		n.UPos = w.upos
		n.XPos = w.xpos
		n.Feats = w.feats
		n.Deprel = w.deprel
		n.Misc = w.misc
		nodes = append(nodes, n)
	}

	rootLine := 0
	for i, w := range cur.words {
		if w.head > len(nodes) {
			return lineError(r.path, w.line,
				fmt.Sprintf("HEAD %d out of range (sentence has %d tokens)", w.head, len(nodes)), nil)
		}
		if w.head == 0 {
			if rootLine != 0 {
				return lineError(r.path, w.line,
					fmt.Sprintf("second root (HEAD=0) in one sentence, first at line %d", rootLine), nil)
			}
			rootLine = w.line
			continue
		}
		if err := nodes[i].SetParent(nodes[w.head-1]); err != nil {
			return lineError(r.path, w.line, "invalid HEAD", err)
		}
	}

	byOrd := map[string]*ud.Node{"0": tree.Sentinel()}
	for _, n := range nodes {
		byOrd[n.OrdString()] = n
	}

	empties := make([]*ud.Node, 0, len(cur.empties))
	for _, e := range cur.empties {
		n, err := tree.CreateEmptyNode(e.major, e.minor)
		if err != nil {
			return lineError(r.path, e.line, "invalid empty node", err)
		}
		n.Form = e.form
		n.Lemma = e.lemma
		n.UPos = e.upos
		n.XPos = e.xpos
		n.Feats = e.feats
		n.Misc = e.misc
		byOrd[n.OrdString()] = n
		empties = append(empties, n)
	}

	for _, m := range cur.mwts {
		mwt, err := tree.CreateMultiwordToken(m.from, m.to, m.form)
		if err != nil {
			return lineError(r.path, m.line, "invalid multiword token", err)
		}
		mwt.Misc = m.misc
	}

	for i, w := range cur.words {
		if err := r.resolveDeps(nodes[i], w.deps, byOrd, w.line); err != nil {
			return err
		}
	}
	for i, e := range cur.empties {
		if err := r.resolveDeps(empties[i], e.deps, byOrd, e.line); err != nil {
			return err
		}
	}

	tree.MarkTextClean()
	r.fileTree(tree)
	return nil
}

func (r *reader) resolveDeps(n *ud.Node, deps []depRef, byOrd map[string]*ud.Node, line int) error {
	for _, d := range deps {
		parent, ok := byOrd[d.head]
		if !ok {
			return lineError(r.path, line, "invalid DEPS",
				uderrors.NewInvalidReference("DEPS", d.head))
		}
		n.AddDep(parent, d.deprel)
	}
	return nil
}

// fileTree appends the tree to the document, joining the previous bundle
// when the sent_id shares its bundle part and claims a fresh zone.
func (r *reader) fileTree(tree *ud.Root) {
	bundleID, zone := splitSentID(tree.SentID())
	if bundleID != "" && r.lastBundle != nil &&
		r.lastBundle.ID() == bundleID && !r.lastBundle.HasTree(zone) {
		r.lastBundle.AddTree(tree, zone)
		return
	}
	b := r.doc.CreateBundle()
	b.AddTree(tree, zone)
	if bundleID != "" {
		b.SetID(bundleID)
	}
	r.lastBundle = b
}

// splitSentID splits "bundle/zone" sent_ids used by parallel corpora; a
// plain sent_id is all bundle, empty zone.
func splitSentID(sentID string) (bundleID, zone string) {
	bundleID, zone, _ = strings.Cut(sentID, "/")
	return bundleID, zone
}

func (r *reader) malformed(format string, args ...interface{}) error {
	return lineError(r.path, r.line, fmt.Sprintf(format, args...), nil)
}

func lineError(path string, line int, message string, cause error) error {
	return &uderrors.MalformedLineError{Path: path, Line: line, Message: message, Err: cause}
}

func underscoreToEmpty(s string) string {
	if s == "_" {
		return ""
	}
	return s
}
