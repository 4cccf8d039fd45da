package conllu

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/logging"
)

// writeDocument serializes the document sentence by sentence. Trees whose
// token sequence changed since loading get their text comment recomputed
// first; ords are renumbered for display only, the model is not touched.
func writeDocument(w io.Writer, doc *ud.Document) error {
	bw := bufio.NewWriter(w)
	for _, b := range doc.Bundles() {
		for _, tree := range b.Trees() {
			writeTree(bw, tree)
		}
	}
	return bw.Flush()
}

func writeTree(bw *bufio.Writer, tree *ud.Root) {
	if tree.TextDirty() {
		stored := tree.Text()
		computed := tree.RefreshText()
		if stored != "" && stored != computed {
			logging.TextMismatch(tree.SentID(), stored, computed)
		}
	}

	for _, c := range tree.Comments() {
		bw.WriteString(c.Raw)
		bw.WriteByte('\n')
	}

	nodes := tree.Descendants()
	display := make(map[int]int, len(nodes))
	for i, n := range nodes {
		display[n.Ord()] = i + 1
	}

	// empty nodes grouped by the ord they follow; anchor 0 precedes the
	// first word. An anchor whose word was removed falls back to the
	// nearest surviving lower ord so the empty node is never dropped.
	emptyAfter := make(map[int][]*ud.Node)
	for _, e := range tree.EmptyNodes() {
		anchor := 0
		for _, n := range nodes {
			if n.Ord() > e.Ord() {
				break
			}
			anchor = n.Ord()
		}
		emptyAfter[anchor] = append(emptyAfter[anchor], e)
	}
	mwtAt := make(map[int]*ud.MultiwordToken)
	for _, m := range tree.MultiwordTokens() {
		mwtAt[m.From] = m
	}

	for _, e := range emptyAfter[0] {
		writeEmptyLine(bw, e, 0, display)
	}
	for _, n := range nodes {
		if m := mwtAt[n.Ord()]; m != nil {
			writeMWTLine(bw, m, display)
		}
		writeWordLine(bw, n, display)
		for _, e := range emptyAfter[n.Ord()] {
			writeEmptyLine(bw, e, display[n.Ord()], display)
		}
	}
	bw.WriteByte('\n')
}

func writeWordLine(bw *bufio.Writer, n *ud.Node, display map[int]int) {
	head := "0"
	if p := n.Parent(); p != nil && !p.IsRoot() {
		head = strconv.Itoa(displayOrd(p.Ord(), display))
	}
	cols := []string{
		strconv.Itoa(displayOrd(n.Ord(), display)),
		emptyToUnderscore(n.Form),
		emptyToUnderscore(n.Lemma),
		emptyToUnderscore(n.UPos),
		emptyToUnderscore(n.XPos),
		n.Feats.String(),
		head,
		emptyToUnderscore(n.Deprel),
		formatDeps(n.Deps, display),
		n.Misc.String(),
	}
	bw.WriteString(strings.Join(cols, "\t"))
	bw.WriteByte('\n')
}

func writeEmptyLine(bw *bufio.Writer, e *ud.Node, displayMajor int, display map[int]int) {
	cols := []string{
		strconv.Itoa(displayMajor) + "." + strconv.Itoa(e.EmptyMinor()),
		emptyToUnderscore(e.Form),
		emptyToUnderscore(e.Lemma),
		emptyToUnderscore(e.UPos),
		emptyToUnderscore(e.XPos),
		e.Feats.String(),
		"_",
		"_",
		formatDeps(e.Deps, display),
		e.Misc.String(),
	}
	bw.WriteString(strings.Join(cols, "\t"))
	bw.WriteByte('\n')
}

func writeMWTLine(bw *bufio.Writer, m *ud.MultiwordToken, display map[int]int) {
	id := strconv.Itoa(displayOrd(m.From, display)) + "-" + strconv.Itoa(displayOrd(m.To, display))
	cols := []string{
		id,
		emptyToUnderscore(m.Form),
		"_", "_", "_", "_", "_", "_", "_",
		m.Misc.String(),
	}
	bw.WriteString(strings.Join(cols, "\t"))
	bw.WriteByte('\n')
}

// formatDeps renders the enhanced edges sorted by head ordinal, then by
// relation, as CoNLL-U requires.
func formatDeps(deps []ud.Dep, display map[int]int) string {
	if len(deps) == 0 {
		return "_"
	}
	sorted := make([]ud.Dep, len(deps))
	copy(sorted, deps)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Parent, sorted[j].Parent
		if a.Ord() != b.Ord() {
			return a.Ord() < b.Ord()
		}
		if a.EmptyMinor() != b.EmptyMinor() {
			return a.EmptyMinor() < b.EmptyMinor()
		}
		return sorted[i].Deprel < sorted[j].Deprel
	})
	var sb strings.Builder
	for i, d := range sorted {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(depHead(d.Parent, display))
		sb.WriteByte(':')
		sb.WriteString(d.Deprel)
	}
	return sb.String()
}

func depHead(p *ud.Node, display map[int]int) string {
	if p.IsRoot() {
		return "0"
	}
	major := displayOrd(p.Ord(), display)
	if p.IsEmpty() {
		return strconv.Itoa(major) + "." + strconv.Itoa(p.EmptyMinor())
	}
	return strconv.Itoa(major)
}

func displayOrd(ord int, display map[int]int) int {
	if d, ok := display[ord]; ok {
		return d
	}
	return ord
}

func emptyToUnderscore(s string) string {
	if s == "" {
		return "_"
	}
	return s
}
