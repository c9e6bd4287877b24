package graph

import (
	"errors"
	"fmt"
	"strings"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
)

var (
	// ErrVertexNotFound is returned when an operation references an identity
	// that is not live in the graph. Match it with errors.Is; the concrete
	// error is a [*VertexError] carrying the identity.
	ErrVertexNotFound = errors.New("vertex not found")

	// ErrVertexExists is returned by [Graph.Add] when the requested identity
	// is already held by a live vertex.
	ErrVertexExists = errors.New("vertex already exists")

	// ErrEdgeNotFound is returned by [Graph.Disconnect] when the source vertex
	// has no edge with the given label.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrInvalidLabel is returned by [Graph.Connect] and the decoders when a
	// label is empty or malformed. See [ValidateLabel] for the rules.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrBrokenPath is returned by [Graph.Resolve] when a hop is missing.
	// The concrete error is a [*PathError] with the failing hop index.
	ErrBrokenPath = errors.New("broken path")

	// ErrFormat is returned by the codecs for malformed, truncated or
	// version-incompatible documents. The concrete error is a [*FormatError].
	ErrFormat = errors.New("format error")

	// ErrCycleGuard is returned when a traversal visits more vertices (or
	// vertex pairs) than the graph's visit limit allows. A legitimate cycle
	// never triggers it; it indicates a structural anomaly.
	ErrCycleGuard = errors.New("cycle guard triggered")

	// ErrDanglingEdge is returned by [Graph.Validate] and by the collector
	// when an edge targets an identity that is not live. The public API never
	// produces such edges, so this indicates corrupted state.
	ErrDanglingEdge = errors.New("dangling edge")
)

// VertexError reports an absent (or, for [Graph.Add], already live) identity.
type VertexError struct {
	ID     ID
	Exists bool
}

func (e *VertexError) Error() string {
	if e.Exists {
		return fmt.Sprintf("vertex %s already exists", e.ID)
	}
	return fmt.Sprintf("vertex %s not found", e.ID)
}

// Is matches [ErrVertexNotFound] or [ErrVertexExists].
func (e *VertexError) Is(target error) bool {
	if e.Exists {
		return target == ErrVertexExists
	}
	return target == ErrVertexNotFound
}

// Code implements errors.Coder.
func (e *VertexError) Code() apperr.Code {
	if e.Exists {
		return apperr.ErrCodeVertexExists
	}
	return apperr.ErrCodeVertexNotFound
}

// EdgeError reports a missing label on a source vertex.
type EdgeError struct {
	From  ID
	Label string
}

func (e *EdgeError) Error() string {
	return fmt.Sprintf("edge %s.%s not found", e.From, e.Label)
}

func (e *EdgeError) Is(target error) bool { return target == ErrEdgeNotFound }

// Code implements errors.Coder.
func (e *EdgeError) Code() apperr.Code { return apperr.ErrCodeEdgeNotFound }

// LabelError reports why a label was rejected.
type LabelError struct {
	Label  string
	Reason string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("invalid label %q: %s", e.Label, e.Reason)
}

func (e *LabelError) Is(target error) bool { return target == ErrInvalidLabel }

// Code implements errors.Coder.
func (e *LabelError) Code() apperr.Code { return apperr.ErrCodeInvalidLabel }

// PathError reports the first missing hop of a path resolution.
// Index is the 0-based position of the failing label and Last is the last
// identity that was reached (the start vertex when Index is 0).
type PathError struct {
	Path  []string
	Index int
	Last  ID
	Label string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q broken at hop %d: %s has no edge %q",
		strings.Join(e.Path, "."), e.Index, e.Last, e.Label)
}

func (e *PathError) Is(target error) bool { return target == ErrBrokenPath }

// Code implements errors.Coder.
func (e *PathError) Code() apperr.Code { return apperr.ErrCodeBrokenPath }

// FormatError reports a decode failure. Codec names the format ("binary",
// "xml", ...). Offset is the byte offset (binary) or line (xml) where the
// problem was detected, or -1 when unknown.
type FormatError struct {
	Codec  string
	Offset int64
	Msg    string
	Err    error
}

// Formatf creates a FormatError with a formatted message.
func Formatf(codec string, offset int64, format string, args ...any) *FormatError {
	return &FormatError{Codec: codec, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// WrapFormat creates a FormatError wrapping a lower-level cause.
func WrapFormat(codec string, offset int64, err error, format string, args ...any) *FormatError {
	return &FormatError{Codec: codec, Offset: offset, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Codec)
	b.WriteString(": ")
	if e.Offset >= 0 {
		fmt.Fprintf(&b, "at %d: ", e.Offset)
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func (e *FormatError) Unwrap() error { return e.Err }

// Code implements errors.Coder.
func (e *FormatError) Code() apperr.Code { return apperr.ErrCodeInvalidFormat }

// CycleGuardError reports a traversal that exceeded the visit limit.
type CycleGuardError struct {
	Op    string
	Limit int
}

func (e *CycleGuardError) Error() string {
	return fmt.Sprintf("%s: exceeded visit limit of %d", e.Op, e.Limit)
}

func (e *CycleGuardError) Is(target error) bool { return target == ErrCycleGuard }

// Code implements errors.Coder.
func (e *CycleGuardError) Code() apperr.Code { return apperr.ErrCodeCycleGuard }

// DanglingEdgeError reports an edge whose target is not live.
type DanglingEdgeError struct {
	From  ID
	Label string
	To    ID
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s.%s points to missing vertex %s", e.From, e.Label, e.To)
}

func (e *DanglingEdgeError) Is(target error) bool {
	return target == ErrDanglingEdge || target == ErrVertexNotFound
}

// Code implements errors.Coder.
func (e *DanglingEdgeError) Code() apperr.Code { return apperr.ErrCodeVertexNotFound }
