package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a GLB load can produce.
type ErrorKind int

const (
	// KindMalformedContainer covers bad magic, version, length, chunk tags or chunk order.
	KindMalformedContainer ErrorKind = iota + 1

	// KindMalformedSchema covers JSON that does not match the expected document shape.
	KindMalformedSchema

	// KindMissingReference covers any index that does not resolve to an existing element.
	KindMissingReference

	// KindUnsupportedFormat covers component types, element types, sources and modes the loader does not handle.
	KindUnsupportedFormat

	// KindResourceCreationFailure covers failures reported by the fetch, image-decode or device capabilities.
	KindResourceCreationFailure
)

// Sentinel errors, one per ErrorKind. A *LoadError matches its kind's sentinel through errors.Is.
var (
	ErrMalformedContainer      = errors.New("malformed container")
	ErrMalformedSchema         = errors.New("malformed schema")
	ErrMissingReference        = errors.New("missing reference")
	ErrUnsupportedFormat       = errors.New("unsupported format")
	ErrResourceCreationFailure = errors.New("resource creation failure")
)

// String returns the human readable name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindMalformedContainer:
		return "MalformedContainer"
	case KindMalformedSchema:
		return "MalformedSchema"
	case KindMissingReference:
		return "MissingReference"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindResourceCreationFailure:
		return "ResourceCreationFailure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// sentinel maps a kind to its package-level sentinel error.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindMalformedContainer:
		return ErrMalformedContainer
	case KindMalformedSchema:
		return ErrMalformedSchema
	case KindMissingReference:
		return ErrMissingReference
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	case KindResourceCreationFailure:
		return ErrResourceCreationFailure
	default:
		return nil
	}
}

// LoadError is the error type returned by every stage of a GLB load.
// Op names the element or step that failed (e.g. "accessor 3", "json chunk").
type LoadError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError creates a LoadError of the given kind with a formatted message as its cause.
//
// Parameters:
//   - kind: the error classification
//   - op: the element or step that failed
//   - format: fmt-style format for the cause
//   - args: format arguments
//
// Returns:
//   - *LoadError: the constructed error
func NewError(kind ErrorKind, op string, format string, args ...any) *LoadError {
	return &LoadError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WrapError tags err with a kind and operation. If err is already a *LoadError its kind is kept
// so the innermost classification wins.
//
// Parameters:
//   - kind: the error classification to apply when err is not yet classified
//   - op: the element or step that failed
//   - err: the underlying cause
//
// Returns:
//   - error: the wrapped error, or nil when err is nil
func WrapError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		return &LoadError{Kind: le.Kind, Op: op, Err: err}
	}
	return &LoadError{Kind: kind, Op: op, Err: err}
}

func (e *LoadError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *LoadError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of the outermost *LoadError in err's chain, or 0 when there is none.
//
// Parameters:
//   - err: the error to inspect
//
// Returns:
//   - ErrorKind: the classification, or 0 if err is not a load error
func KindOf(err error) ErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
