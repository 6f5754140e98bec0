package engine

import (
	"github.com/eigerco/slatedb-go/internal/ffi"
)

// writeBatch accumulates mutations until it is written to a database. A
// written batch is consumed: it only accepts WriteBatchClose.
type writeBatch struct {
	muts     []mutation
	consumed bool
}

func (b *writeBatch) check() error {
	if b.consumed {
		return errorf(ffi.InvalidArgument, "write batch was already written")
	}
	return nil
}

func (e *Engine) WriteBatchNew() (ffi.Handle, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.register(&writeBatch{}), e.result(nil)
}

func (e *Engine) WriteBatchPut(batch ffi.Handle, key, value []byte) ffi.Result {
	return e.batchPut(batch, key, value, nil)
}

func (e *Engine) WriteBatchPutWithOptions(batch ffi.Handle, key, value []byte, opts *ffi.PutOptions) ffi.Result {
	return e.batchPut(batch, key, value, opts)
}

func (e *Engine) batchPut(batch ffi.Handle, key, value []byte, opts *ffi.PutOptions) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := lookup[*writeBatch](e, batch)
	if err != nil {
		return e.result(err)
	}
	if err := b.check(); err != nil {
		return e.result(err)
	}
	if err := validateKey(key); err != nil {
		return e.result(err)
	}
	if err := validateTTL(opts); err != nil {
		return e.result(err)
	}
	m := mutation{key: clone(key), value: clone(value)}
	if opts != nil {
		ttl := *opts
		m.ttl = &ttl
	}
	b.muts = append(b.muts, m)
	return e.result(nil)
}

func (e *Engine) WriteBatchDelete(batch ffi.Handle, key []byte) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := lookup[*writeBatch](e, batch)
	if err != nil {
		return e.result(err)
	}
	if err := b.check(); err != nil {
		return e.result(err)
	}
	if err := validateKey(key); err != nil {
		return e.result(err)
	}
	b.muts = append(b.muts, mutation{key: clone(key), delete: true})
	return e.result(nil)
}

// WriteBatchWrite commits the batch atomically and consumes it whatever the
// outcome. The handle is still released by WriteBatchClose.
func (e *Engine) WriteBatchWrite(db, batch ffi.Handle, opts *ffi.WriteOptions) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return e.result(err)
	}
	b, err := lookup[*writeBatch](e, batch)
	if err != nil {
		return e.result(err)
	}
	if err := b.check(); err != nil {
		return e.result(err)
	}
	muts := b.muts
	b.muts, b.consumed = nil, true
	if err := e.apply(d, muts, opts); err != nil {
		return e.result(err)
	}
	d.stats.WriteBatches++
	return e.result(nil)
}

func (e *Engine) WriteBatchClose(batch ffi.Handle) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := lookup[*writeBatch](e, batch); err != nil {
		return e.result(err)
	}
	delete(e.handles, batch)
	return e.result(nil)
}
