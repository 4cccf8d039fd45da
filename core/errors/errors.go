// Package errors provides standardized error types and helpers for the udgo codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrMalformed indicates a malformed line in an input file
	ErrMalformed = errors.New("malformed input")
	// ErrCycle indicates a reparent operation that would create a cycle
	ErrCycle = errors.New("cycle")
	// ErrInvalidReference indicates a reference to a node outside the sentence
	ErrInvalidReference = errors.New("invalid reference")
	// ErrPrecondition indicates an unmet structural precondition
	ErrPrecondition = errors.New("precondition failed")
	// ErrUnsupportedFormat indicates an unrecognized file format
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
)

// MalformedLineError reports a syntactically invalid line while parsing.
// It is fatal for the file being loaded and carries the line number.
type MalformedLineError struct {
	Path    string // File path, if known
	Line    int    // 1-based line number
	Message string // What was wrong with the line
	Err     error  // Underlying error, if any
}

func (e *MalformedLineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// ErrMalformed even when the line error wraps a cycle or reference error.
func (e *MalformedLineError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}

// CycleError reports a rejected reparent that would make a node its own
// ancestor. The tree is left unchanged.
type CycleError struct {
	Node   string // Description of the node being reattached
	Target string // Description of the requested parent
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cannot attach %s to %s: would create a cycle", e.Node, e.Target)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// InvalidReferenceError reports a HEAD or DEPS reference that points
// outside the sentence or to a removed node.
type InvalidReferenceError struct {
	Field string // Column or operation involved (e.g., "HEAD", "DEPS")
	Ref   string // The offending reference
	Err   error  // Underlying error, if any
}

func (e *InvalidReferenceError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s references %s: no such node", e.Field, e.Ref)
	}
	return fmt.Sprintf("reference to %s: no such node", e.Ref)
}

func (e *InvalidReferenceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidReference
}

// StructuralPreconditionError reports a mutation whose preconditions were
// not met. The node graph is left unchanged.
type StructuralPreconditionError struct {
	Operation string // Mutation that was attempted (e.g., "merge", "remove")
	Reason    string // Which precondition failed
}

func (e *StructuralPreconditionError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Operation, e.Reason)
}

func (e *StructuralPreconditionError) Unwrap() error { return ErrPrecondition }

// UnsupportedFormatError reports a file whose extension maps to no reader.
type UnsupportedFormatError struct {
	Path string // Offending path
	Ext  string // Extension that failed dispatch
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext != "" {
		return fmt.Sprintf("unsupported format %q: %s", e.Ext, e.Path)
	}
	return fmt.Sprintf("unsupported format: %s", e.Path)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "document", "bundle", "block")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Helper functions for creating common errors

// NewMalformedLine creates a MalformedLineError
func NewMalformedLine(path string, line int, message string) *MalformedLineError {
	return &MalformedLineError{
		Path:    path,
		Line:    line,
		Message: message,
	}
}

// NewCycle creates a CycleError
func NewCycle(node, target string) *CycleError {
	return &CycleError{
		Node:   node,
		Target: target,
	}
}

// NewInvalidReference creates an InvalidReferenceError
func NewInvalidReference(field, ref string) *InvalidReferenceError {
	return &InvalidReferenceError{
		Field: field,
		Ref:   ref,
	}
}

// NewPrecondition creates a StructuralPreconditionError
func NewPrecondition(operation, reason string) *StructuralPreconditionError {
	return &StructuralPreconditionError{
		Operation: operation,
		Reason:    reason,
	}
}

// NewUnsupportedFormat creates an UnsupportedFormatError
func NewUnsupportedFormat(path, ext string) *UnsupportedFormatError {
	return &UnsupportedFormatError{
		Path: path,
		Ext:  ext,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
