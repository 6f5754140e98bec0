package engine

import (
	"bytes"

	"github.com/eigerco/slatedb-go/internal/engine/envelope"
	"github.com/eigerco/slatedb-go/internal/engine/store"
	"github.com/eigerco/slatedb-go/internal/ffi"
)

type iterState uint8

const (
	// unpositioned: nothing read yet; the first next starts at the lower bound.
	unpositioned iterState = iota
	// pending: the store iterator sits on an entry not yet returned.
	pending
	// yielded: the current entry was returned.
	yielded
	exhausted
)

type iterator struct {
	store *sharedStore
	it    store.Iterator
	lower []byte
	upper []byte
	state iterState
}

// openIterator opens an iterator over [start, end) on s and takes a store
// reference for its lifetime. Callers hold e.mu.
func (e *Engine) openIterator(s *sharedStore, start, end []byte, opts *ffi.ScanOptions) (ffi.Handle, error) {
	if opts != nil {
		if err := validateDurability(int64(opts.DurabilityFilter)); err != nil {
			return 0, err
		}
	}
	// Empty bounds are open, like nil ones.
	if len(start) == 0 {
		start = nil
	}
	if len(end) == 0 {
		end = nil
	}
	if start != nil && end != nil && bytes.Compare(start, end) > 0 {
		return 0, errorf(ffi.InvalidArgument, "scan start is after scan end")
	}

	iter := &iterator{store: s, lower: clone(start), upper: clone(end)}
	if end != nil && bytes.Equal(start, end) {
		iter.state = exhausted
	} else {
		it, err := s.kv.NewIterator(iter.lower, iter.upper)
		if err != nil {
			return 0, errorf(ffi.IOError, "open iterator: %v", err)
		}
		iter.it = it
	}
	s.refs++
	return e.register(iter), nil
}

func (e *Engine) IteratorNext(h ffi.Handle) (ffi.KeyValue, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	iter, err := lookup[*iterator](e, h)
	if err != nil {
		return ffi.KeyValue{}, e.result(err)
	}
	key, value, err := iter.next(e.nowMs())
	if err != nil {
		return ffi.KeyValue{}, e.result(err)
	}
	return ffi.KeyValue{Key: e.value(key), Value: e.value(value)}, e.result(nil)
}

func (e *Engine) IteratorSeek(h ffi.Handle, key []byte) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	iter, err := lookup[*iterator](e, h)
	if err != nil {
		return e.result(err)
	}
	iter.seek(key)
	return e.result(nil)
}

func (e *Engine) IteratorClose(h ffi.Handle) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	iter, err := lookup[*iterator](e, h)
	if err != nil {
		return e.result(err)
	}
	delete(e.handles, h)
	if iter.it != nil {
		if err := iter.it.Close(); err != nil {
			_ = e.releaseStore(iter.store)
			return e.result(errorf(ffi.IOError, "close iterator: %v", err))
		}
	}
	return e.result(e.releaseStore(iter.store))
}

// next returns the next live entry. Once exhausted it stays exhausted until a
// seek repositions it.
func (it *iterator) next(now int64) ([]byte, []byte, error) {
	var ok bool
	switch it.state {
	case exhausted:
		return nil, nil, errorf(ffi.NotFound, "iterator exhausted")
	case unpositioned:
		ok = it.it.First()
	case pending:
		ok = it.it.Valid()
	case yielded:
		ok = it.it.Next()
	}

	for ; ok; ok = it.it.Next() {
		raw, err := it.it.Value()
		if err != nil {
			return nil, nil, errorf(ffi.IOError, "read value: %v", err)
		}
		entry, err := envelope.Decode(raw)
		if err != nil {
			return nil, nil, errorf(ffi.InternalError, "decode value: %v", err)
		}
		if entry.Expired(now) {
			continue
		}
		it.state = yielded
		return clone(it.it.Key()), entry.Value, nil
	}
	it.state = exhausted
	return nil, nil, errorf(ffi.NotFound, "iterator exhausted")
}

// seek positions the iterator on the first key >= key inside its bounds.
// Targets below the lower bound clamp to it; targets at or past the upper
// bound exhaust the iterator.
func (it *iterator) seek(key []byte) {
	if it.it == nil {
		it.state = exhausted
		return
	}
	if it.lower != nil && bytes.Compare(key, it.lower) < 0 {
		key = it.lower
	}
	if it.upper != nil && bytes.Compare(key, it.upper) >= 0 {
		it.state = exhausted
		return
	}
	if it.it.SeekGE(key) {
		it.state = pending
	} else {
		it.state = exhausted
	}
}

// prefixRange returns the bounds covering every key that starts with prefix.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end := clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
