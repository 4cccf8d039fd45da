package ud

import (
	"fmt"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// newValidationError creates a new ValidationError.
func newValidationError(path, message string) error {
	return &ValidationError{Path: path, Message: message}
}

// ValidateTree checks the structural invariants of one sentence tree and
// returns all violations found: ord contiguity, single root relation,
// parent connectivity, acyclicity, multiword ranges, and empty-node
// ordinal anchoring.
func ValidateTree(r *Root) []error {
	var errs []error

	for i, n := range r.nodes {
		path := fmt.Sprintf("node[%s]", n.OrdString())
		if n.ord != i+1 {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("ord %d at position %d breaks contiguity", n.ord, i+1)))
		}
		if n.parent == nil {
			errs = append(errs, newValidationError(path, "node has no parent"))
			continue
		}
		if n.parent.root != r {
			errs = append(errs, newValidationError(path, "parent belongs to a different tree"))
		}
	}

	// Every node must reach the sentinel without revisiting a node.
	for _, n := range r.nodes {
		seen := map[*Node]bool{n: true}
		p := n.parent
		for p != nil && !p.IsRoot() {
			if seen[p] {
				errs = append(errs, newValidationError(
					fmt.Sprintf("node[%s]", n.OrdString()), "node is its own ancestor"))
				break
			}
			seen[p] = true
			p = p.parent
		}
	}

	if len(r.nodes) > 0 && len(r.sentinel.children) == 0 {
		errs = append(errs, newValidationError("tree", "no node is attached to the root"))
	}

	for _, m := range r.mwts {
		path := fmt.Sprintf("mwt[%d-%d]", m.From, m.To)
		if m.From < 1 || m.To <= m.From || m.To > len(r.nodes) {
			errs = append(errs, newValidationError(path, "range outside the sentence"))
		}
	}

	for _, e := range r.empty {
		path := fmt.Sprintf("empty[%s]", e.OrdString())
		if e.ord < 0 || e.ord > len(r.nodes) {
			errs = append(errs, newValidationError(path, "ordinal anchor outside the sentence"))
		}
		if e.minor < 1 {
			errs = append(errs, newValidationError(path, "empty node without a minor ordinal"))
		}
	}

	return errs
}

// ValidateDocument validates every tree of the document, prefixing each
// error with the bundle position.
func ValidateDocument(d *Document) []error {
	var errs []error
	for _, b := range d.Bundles() {
		for _, t := range b.Trees() {
			for _, err := range ValidateTree(t) {
				errs = append(errs, newValidationError(
					fmt.Sprintf("bundle[%s]", b.ID()), err.Error()))
			}
		}
	}
	return errs
}
