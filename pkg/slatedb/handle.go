package slatedb

import "github.com/eigerco/slatedb-go/internal/ffi"

// handle owns one engine token. Once released every acquire fails with
// ErrDisposed without touching the token. It is not safe for concurrent use:
// callers must not release a handle while another goroutine operates on it.
type handle struct {
	token    ffi.Handle
	released bool
}

func (h *handle) acquire() (ffi.Handle, error) {
	if h.released {
		return 0, ErrDisposed
	}
	return h.token, nil
}

// release runs fn on the token the first time it is called. Later calls
// return nil.
func (h *handle) release(fn func(ffi.Handle) error) error {
	if h.released {
		return nil
	}
	token := h.token
	h.consume()
	if fn == nil {
		return nil
	}
	return fn(token)
}

// consume marks the handle released after a call that took ownership of the
// token (Build, Write).
func (h *handle) consume() {
	h.released = true
	h.token = 0
}

func (h *handle) closed() bool {
	return h.released
}
