package slatedb

import (
	"iter"

	"github.com/eigerco/slatedb-go/internal/ffi"
)

// KeyValue is one entry produced by a scan.
type KeyValue struct {
	Key   []byte
	Value []byte
}

func (kv KeyValue) KeyString() string   { return DecodeString(kv.Key) }
func (kv KeyValue) ValueString() string { return DecodeString(kv.Value) }

func (kv KeyValue) ValueInt32() (int32, error)     { return DecodeInt32(kv.Value) }
func (kv KeyValue) ValueInt64() (int64, error)     { return DecodeInt64(kv.Value) }
func (kv KeyValue) ValueBool() (bool, error)       { return DecodeBool(kv.Value) }
func (kv KeyValue) ValueFloat64() (float64, error) { return DecodeFloat64(kv.Value) }

// Iterator is a forward-only cursor over a scan. Once Next reports the end it
// keeps doing so; Seek is the only way to reposition. An Iterator must be
// closed, and is not safe for concurrent use.
type Iterator struct {
	b      ffi.Boundary
	h      handle
	parent *handle
	done   bool
}

func (it *Iterator) acquire() (ffi.Handle, error) {
	if it.parent.closed() {
		return 0, ErrDisposed
	}
	return it.h.acquire()
}

// Next returns the next entry. ok is false once the range is exhausted.
func (it *Iterator) Next() (KeyValue, bool, error) {
	t, err := it.acquire()
	if err != nil {
		return KeyValue{}, false, err
	}
	if it.done {
		return KeyValue{}, false, nil
	}

	kv, r := it.b.IteratorNext(t)
	found, err := checkFound(it.b, r)
	if err != nil {
		return KeyValue{}, false, err
	}
	if !found {
		it.done = true
		return KeyValue{}, false, nil
	}
	return KeyValue{
		Key:   consumeValue(it.b, kv.Key),
		Value: consumeValue(it.b, kv.Value),
	}, true, nil
}

// Seek positions the iterator so the next entry is the first key >= key
// within the scan's range. A key past the range exhausts the iterator.
func (it *Iterator) Seek(key []byte) error {
	t, err := it.acquire()
	if err != nil {
		return err
	}
	if err := check(it.b, it.b.IteratorSeek(t, key)); err != nil {
		return err
	}
	it.done = false
	return nil
}

// All yields the remaining entries. Iteration stops at the first error,
// which is yielded once.
func (it *Iterator) All() iter.Seq2[KeyValue, error] {
	return func(yield func(KeyValue, error) bool) {
		for {
			kv, ok, err := it.Next()
			if err != nil {
				yield(KeyValue{}, err)
				return
			}
			if !ok || !yield(kv, nil) {
				return
			}
		}
	}
}

// Close releases the iterator. It is safe after the parent was closed and
// closing twice is a no-op.
func (it *Iterator) Close() error {
	return it.h.release(func(t ffi.Handle) error {
		return check(it.b, it.b.IteratorClose(t))
	})
}
