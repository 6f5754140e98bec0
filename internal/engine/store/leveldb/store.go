// Package leveldb provides an in-memory store.KVStore on goleveldb, used for
// memory:// locations.
package leveldb

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/eigerco/slatedb-go/internal/engine/store"
)

// KVStore is a store.KVStore held entirely in memory.
type KVStore struct {
	db      *leveldb.DB
	closed  atomic.Bool
	flushes atomic.Int64
}

var _ store.KVStore = (*KVStore)(nil)

// NewMemKVStore opens an empty in-memory database.
func NewMemKVStore(opts store.Options) (*KVStore, error) {
	o := &opt.Options{
		Compression: opt.NoCompression,
	}
	if opts.BlockSize > 0 {
		o.BlockSize = opts.BlockSize
	}
	if opts.BloomBitsPerKey > 0 {
		o.Filter = filter.NewBloomFilter(opts.BloomBitsPerKey)
	}
	db, err := leveldb.Open(storage.NewMemStorage(), o)
	if err != nil {
		return nil, fmt.Errorf("open memory leveldb: %w", err)
	}
	return &KVStore{db: db}, nil
}

func (l *KVStore) Get(key []byte) ([]byte, error) {
	if l.closed.Load() {
		return nil, store.ErrClosed
	}
	val, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	return val, err
}

// Flush compacts the memtable into tables; there is nothing more durable to reach.
func (l *KVStore) Flush() error {
	if l.closed.Load() {
		return store.ErrClosed
	}
	if err := l.db.CompactRange(util.Range{}); err != nil {
		return err
	}
	l.flushes.Add(1)
	return nil
}

func (l *KVStore) Stats() store.Stats {
	if l.closed.Load() {
		return store.Stats{}
	}
	var used uint64
	if sizes, err := l.db.SizeOf([]util.Range{{}}); err == nil {
		used = uint64(sizes.Sum())
	}
	return store.Stats{
		DiskSpaceUsage: used,
		Flushes:        l.flushes.Load(),
	}
}

func (l *KVStore) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.db.Close()
}

type Batch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
	done  atomic.Bool
}

func (l *KVStore) NewBatch() store.Batch {
	return &Batch{db: l.db, batch: new(leveldb.Batch)}
}

func (b *Batch) Put(key, value []byte) error {
	if b.done.Load() {
		return store.ErrBatchDone
	}
	b.batch.Put(key, value)
	return nil
}

func (b *Batch) Delete(key []byte) error {
	if b.done.Load() {
		return store.ErrBatchDone
	}
	b.batch.Delete(key)
	return nil
}

func (b *Batch) Commit(sync bool) error {
	if b.done.Load() {
		return store.ErrBatchDone
	}
	if err := b.db.Write(b.batch, &opt.WriteOptions{Sync: sync}); err != nil {
		return err
	}
	b.done.Store(true)
	return nil
}

func (b *Batch) Close() error {
	if b.done.CompareAndSwap(false, true) {
		b.batch.Reset()
	}
	return nil
}

type Iterator struct {
	iter iterator.Iterator
}

func (l *KVStore) NewIterator(start, end []byte) (store.Iterator, error) {
	if l.closed.Load() {
		return nil, store.ErrClosed
	}
	return &Iterator{iter: l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)}, nil
}

func (it *Iterator) First() bool { return it.iter.First() }

func (it *Iterator) Next() bool { return it.iter.Next() }

func (it *Iterator) SeekGE(key []byte) bool { return it.iter.Seek(key) }

func (it *Iterator) Key() []byte {
	key := it.iter.Key()
	result := make([]byte, len(key))
	copy(result, key)
	return result
}

func (it *Iterator) Value() ([]byte, error) {
	if !it.iter.Valid() {
		return nil, store.ErrIteratorInvalid
	}
	if err := it.iter.Error(); err != nil {
		return nil, fmt.Errorf("iterator value: %w", err)
	}
	val := it.iter.Value()
	result := make([]byte, len(val))
	copy(result, val)
	return result, nil
}

func (it *Iterator) Valid() bool { return it.iter.Valid() }

func (it *Iterator) Close() error {
	it.iter.Release()
	return it.iter.Error()
}
