// Package query implements a small attribute-match language for selecting
// nodes: conditions like upos=VERB or feats.Number=Plur, joined with &
// for conjunction and | for alternation, with != for negation.
//
// Examples:
//
//	upos=VERB & deprel!=root
//	lemma="být" | lemma=mít
//	upos=NOUN & feats.Case=Nom & misc.SpaceAfter!=No
package query

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/ud"
)

//nolint:govet // participle grammar tags are not standard struct tags
type selectorGrammar struct {
	First *conjunction   `parser:"@@"`
	Rest  []*conjunction `parser:"( '|' @@ )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type conjunction struct {
	First *condition   `parser:"@@"`
	Rest  []*condition `parser:"( '&' @@ )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type condition struct {
	Field string `parser:"@Ident"`
	Op    string `parser:"@( Neq | Eq )"`
	Value string `parser:"@( Ident | Int | String )"`
}

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Neq", Pattern: `!=`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_:.\-]*`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Punct", Pattern: `[&|]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var queryParser = participle.MustBuild[selectorGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
)

// cond is one compiled condition.
type cond struct {
	field  string
	attr   string // set for feats.X and misc.X fields
	negate bool
	value  string
}

// Selector is a compiled node selector: a disjunction of conjunctions of
// attribute conditions.
type Selector struct {
	source string
	groups [][]cond
}

// Parse compiles a selector expression.
func Parse(s string) (*Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, uderrors.NewPrecondition("parse selector", "empty expression")
	}
	parsed, err := queryParser.ParseString("", s)
	if err != nil {
		return nil, uderrors.Wrapf(err, "invalid selector %q", s)
	}

	sel := &Selector{source: s}
	for _, conj := range append([]*conjunction{parsed.First}, parsed.Rest...) {
		var group []cond
		for _, c := range append([]*condition{conj.First}, conj.Rest...) {
			compiled, err := compileCondition(c)
			if err != nil {
				return nil, err
			}
			group = append(group, compiled)
		}
		sel.groups = append(sel.groups, group)
	}
	return sel, nil
}

func compileCondition(c *condition) (cond, error) {
	out := cond{
		field:  c.Field,
		negate: c.Op == "!=",
		value:  strings.Trim(c.Value, `"`),
	}
	if strings.HasPrefix(c.Field, "feats.") || strings.HasPrefix(c.Field, "misc.") {
		prefix, attr, _ := strings.Cut(c.Field, ".")
		if attr == "" {
			return cond{}, uderrors.NewPrecondition("parse selector",
				"field "+c.Field+" is missing an attribute name")
		}
		out.field = prefix
		out.attr = attr
		return out, nil
	}
	switch c.Field {
	case "form", "lemma", "upos", "xpos", "deprel", "udeprel", "ord":
		return out, nil
	}
	return cond{}, uderrors.NewPrecondition("parse selector", "unknown field "+c.Field)
}

// String returns the expression the selector was compiled from.
func (s *Selector) String() string { return s.source }

// Matches reports whether the node satisfies the selector.
func (s *Selector) Matches(n *ud.Node) bool {
	for _, group := range s.groups {
		if matchesAll(group, n) {
			return true
		}
	}
	return false
}

func matchesAll(group []cond, n *ud.Node) bool {
	for _, c := range group {
		equal := fieldValue(n, c) == c.value
		if equal == c.negate {
			return false
		}
	}
	return true
}

func fieldValue(n *ud.Node, c cond) string {
	switch c.field {
	case "form":
		return n.Form
	case "lemma":
		return n.Lemma
	case "upos":
		return n.UPos
	case "xpos":
		return n.XPos
	case "deprel":
		return n.Deprel
	case "udeprel":
		base, _, _ := strings.Cut(n.Deprel, ":")
		return base
	case "ord":
		return strconv.Itoa(n.Ord())
	case "feats":
		return n.Feats.Get(c.attr)
	case "misc":
		return n.Misc.Get(c.attr)
	}
	return ""
}

// FilterTree returns the tree's nodes matching the selector, in ord order.
func (s *Selector) FilterTree(tree *ud.Root) []*ud.Node {
	var out []*ud.Node
	for _, n := range tree.Descendants() {
		if s.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// FilterDocument returns all matching nodes of the document in document
// order.
func (s *Selector) FilterDocument(doc *ud.Document) []*ud.Node {
	var out []*ud.Node
	for _, tree := range doc.Trees() {
		out = append(out, s.FilterTree(tree)...)
	}
	return out
}
