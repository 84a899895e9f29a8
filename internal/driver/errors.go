package driver

import (
	"errors"
	"fmt"
	"strings"

	"eventdriver/pkg/types"
)

// ErrNotImplemented is returned by a client whose handler was never overridden.
var ErrNotImplemented = errors.New("not implemented")

// ErrNilEvent is returned by Emit when given no event.
var ErrNilEvent = errors.New("nil event")

// IsNotImplemented reports whether err comes from an unoverridden handler.
func IsNotImplemented(err error) bool { return errors.Is(err, ErrNotImplemented) }

// HandlerError ties a handler failure to the client that produced it.
type HandlerError struct {
	Index  int
	Client string
	Kind   types.Kind
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("client %d (%s) failed on %s: %v", e.Index, e.Client, e.Kind, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// PanicError is a handler panic recovered by the dispatch loop.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("handler panic: %v", e.Value) }

// IsPanic reports whether err wraps a recovered handler panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// DispatchError collects every handler failure of an isolated dispatch.
type DispatchError struct {
	Kind     types.Kind
	Failures []*HandlerError
}

func (e *DispatchError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%s dispatch: %d client(s) failed: %s", e.Kind, len(e.Failures), strings.Join(parts, "; "))
}

func (e *DispatchError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}

// HandlerErrors flattens err into the per-client failures it carries.
func HandlerErrors(err error) []*HandlerError {
	var de *DispatchError
	if errors.As(err, &de) {
		return append([]*HandlerError(nil), de.Failures...)
	}
	var he *HandlerError
	if errors.As(err, &he) {
		return []*HandlerError{he}
	}
	return nil
}
