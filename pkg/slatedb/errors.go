package slatedb

import (
	"errors"
	"fmt"

	"github.com/eigerco/slatedb-go/internal/ffi"
)

// Code classifies a failure reported by the engine.
type Code = ffi.Code

const (
	CodeInvalidArgument = ffi.InvalidArgument
	CodeNotFound        = ffi.NotFound
	CodeAlreadyExists   = ffi.AlreadyExists
	CodeIOError         = ffi.IOError
	CodeInternalError   = ffi.InternalError
	CodeNullPointer     = ffi.NullPointer
	CodeInvalidHandle   = ffi.InvalidHandle
	CodeInvalidProvider = ffi.InvalidProvider
)

// Error is a failure reported by the engine. The message is copied out of
// engine memory before the engine's buffer is released.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("slatedb: %s", e.Code)
	}
	return fmt.Sprintf("slatedb: %s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so errors.Is(err, ErrIO) works
// whatever the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrAlreadyExists   = &Error{Code: CodeAlreadyExists}
	ErrIO              = &Error{Code: CodeIOError}
	ErrInternal        = &Error{Code: CodeInternalError}
	ErrNullPointer     = &Error{Code: CodeNullPointer}
	ErrInvalidHandle   = &Error{Code: CodeInvalidHandle}
	ErrInvalidProvider = &Error{Code: CodeInvalidProvider}
)

var (
	// ErrDisposed is returned by any operation on a closed handle, or on an
	// iterator whose database or reader was closed.
	ErrDisposed = errors.New("slatedb: handle is closed")
	// ErrNoSettings is returned when the engine produced no settings document.
	ErrNoSettings = errors.New("slatedb: engine returned no settings document")
)

// check turns r into an error, releasing the engine's message buffer.
func check(b ffi.Boundary, r ffi.Result) error {
	if r.OK() {
		if r.Message != 0 {
			b.FreeResult(r)
		}
		return nil
	}
	return takeError(b, r)
}

// checkFound is check for read paths, where NotFound means absence.
func checkFound(b ffi.Boundary, r ffi.Result) (bool, error) {
	if r.Code == ffi.NotFound {
		b.FreeResult(r)
		return false, nil
	}
	if err := check(b, r); err != nil {
		return false, err
	}
	return true, nil
}

func takeError(b ffi.Boundary, r ffi.Result) *Error {
	var msg string
	if r.Message != 0 {
		msg = b.LoadString(r.Message)
	}
	b.FreeResult(r)
	if msg == "" {
		msg = "unknown error"
	}
	return &Error{Code: r.Code, Message: msg}
}

// consumeValue copies an engine-owned buffer and releases it.
func consumeValue(b ffi.Boundary, v ffi.Value) []byte {
	out := make([]byte, v.Len)
	copy(out, b.Load(v))
	b.FreeValue(v)
	return out
}

// consumeString copies an engine-owned string and releases it.
func consumeString(b ffi.Boundary, s uintptr) (string, error) {
	if s == 0 {
		return "", ErrNoSettings
	}
	out := b.LoadString(s)
	b.FreeString(s)
	return out, nil
}
