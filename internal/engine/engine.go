// Package engine is an in-process implementation of the boundary call set.
//
// It speaks the same result codes and ownership protocol as the native
// library: handles are opaque tokens, and every message, value and settings
// document it returns stays engine-owned until the caller frees it. The
// engine keeps count of what is outstanding, freed twice or read after free,
// which is what makes the client's ownership discipline testable.
//
// Data lives in pebble for file:// locations and in an in-memory goleveldb
// for memory:// locations. Handles opened on the same location share one
// store.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

// Engine implements ffi.Boundary. All calls are serialized on one mutex.
type Engine struct {
	mu      sync.Mutex
	nextID  ffi.Handle
	handles map[ffi.Handle]any
	stores  map[string]*sharedStore

	arena *arena
	now   func() time.Time
}

var _ ffi.Boundary = (*Engine)(nil)

type Option func(*Engine)

// WithClock replaces the clock used for TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		handles: make(map[ffi.Handle]any),
		stores:  make(map[string]*sharedStore),
		arena:   newArena(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// Accounting is a snapshot of engine-owned buffer bookkeeping.
type Accounting struct {
	Outstanding int
	DoubleFrees int
	StaleReads  int
}

func (e *Engine) Accounting() Accounting {
	return e.arena.accounting()
}

// OpenHandles returns the number of live handles of every kind.
func (e *Engine) OpenHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handles)
}

func (e *Engine) nowMs() int64 {
	return e.now().UnixMilli()
}

// callError carries the result code a failed call reports.
type callError struct {
	code ffi.Code
	msg  string
}

func (c *callError) Error() string {
	return fmt.Sprintf("%s: %s", c.code, c.msg)
}

func errorf(code ffi.Code, format string, args ...any) error {
	return &callError{code: code, msg: fmt.Sprintf(format, args...)}
}

// result converts err into a Result whose message the caller must free.
func (e *Engine) result(err error) ffi.Result {
	if err == nil {
		return ffi.Result{Code: ffi.Success}
	}
	code := ffi.InternalError
	var ce *callError
	if errors.As(err, &ce) {
		code = ce.code
	}
	msg := err.Error()
	if ce != nil {
		msg = ce.msg
	}
	if code != ffi.NotFound {
		log.Engine.Debug().Stringer("code", code).Msg(msg)
	}
	return ffi.Result{Code: code, Message: e.arena.putString(msg)}
}

func (e *Engine) register(v any) ffi.Handle {
	e.nextID++
	e.handles[e.nextID] = v
	return e.nextID
}

func lookup[T any](e *Engine, h ffi.Handle) (T, error) {
	var zero T
	if h == 0 {
		return zero, errorf(ffi.NullPointer, "null handle")
	}
	v, ok := e.handles[h]
	if !ok {
		return zero, errorf(ffi.InvalidHandle, "unknown handle %d", h)
	}
	t, ok := v.(T)
	if !ok {
		return zero, errorf(ffi.InvalidHandle, "handle %d has the wrong kind", h)
	}
	return t, nil
}

func (e *Engine) FreeResult(r ffi.Result) {
	e.arena.free(r.Message)
}

func (e *Engine) FreeValue(v ffi.Value) {
	e.arena.free(v.Data)
}

func (e *Engine) FreeString(s uintptr) {
	e.arena.free(s)
}

func (e *Engine) Load(v ffi.Value) []byte {
	return e.arena.load(v.Data, int(v.Len))
}

func (e *Engine) LoadString(s uintptr) string {
	return string(e.arena.load(s, -1))
}
