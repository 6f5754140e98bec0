package pebble

import (
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/eigerco/slatedb-go/internal/engine/store"
)

type Batch struct {
	batch *pebble.Batch
	done  atomic.Bool
}

func (p *KVStore) NewBatch() store.Batch {
	return &Batch{
		batch: p.db.NewBatch(),
	}
}

func (b *Batch) Put(key, value []byte) error {
	if b.done.Load() {
		return store.ErrBatchDone
	}
	return b.batch.Set(key, value, nil)
}

func (b *Batch) Delete(key []byte) error {
	if b.done.Load() {
		return store.ErrBatchDone
	}
	return b.batch.Delete(key, nil)
}

func (b *Batch) Commit(sync bool) error {
	if b.done.Load() {
		return store.ErrBatchDone
	}
	wo := pebble.NoSync
	if sync {
		wo = pebble.Sync
	}
	if err := b.batch.Commit(wo); err != nil {
		return err
	}
	b.done.Store(true)
	return b.batch.Close()
}

func (b *Batch) Close() error {
	if !b.done.CompareAndSwap(false, true) {
		return nil
	}
	return b.batch.Close()
}
