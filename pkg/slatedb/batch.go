package slatedb

import "github.com/eigerco/slatedb-go/internal/ffi"

// WriteBatch accumulates puts and deletes in the engine until DB.Write
// commits them atomically. Later operations on a key override earlier ones.
// Each call is validated when it is made. A WriteBatch is not safe for
// concurrent use.
type WriteBatch struct {
	b ffi.Boundary
	h handle
}

func (wb *WriteBatch) Put(key, value []byte) error {
	t, err := wb.h.acquire()
	if err != nil {
		return err
	}
	return check(wb.b, wb.b.WriteBatchPut(t, key, value))
}

func (wb *WriteBatch) PutWithOptions(key, value []byte, opts PutOptions) error {
	t, err := wb.h.acquire()
	if err != nil {
		return err
	}
	return check(wb.b, wb.b.WriteBatchPutWithOptions(t, key, value, opts.native()))
}

// PutValue encodes v and adds a put for key.
func (wb *WriteBatch) PutValue(key string, v any) error {
	value, err := Encode(v)
	if err != nil {
		return err
	}
	return wb.Put(EncodeString(key), value)
}

func (wb *WriteBatch) Delete(key []byte) error {
	t, err := wb.h.acquire()
	if err != nil {
		return err
	}
	return check(wb.b, wb.b.WriteBatchDelete(t, key))
}

// Close discards the batch if it was never written. Closing twice, or after
// DB.Write, is a no-op.
func (wb *WriteBatch) Close() error {
	return wb.h.release(func(t ffi.Handle) error {
		return check(wb.b, wb.b.WriteBatchClose(t))
	})
}
