package pebble

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"

	"github.com/eigerco/slatedb-go/internal/engine/store"
)

const (
	cacheSize    = 64 << 20 // 64MB
	memTableSize = 32 << 20 // 32MB
	numLevels    = 7
)

// KVStore is a store.KVStore backed by a pebble database on local disk.
type KVStore struct {
	db     *pebble.DB
	closed atomic.Bool
}

var _ store.KVStore = (*KVStore)(nil)

// NewKVStore opens (or creates) a pebble database at path.
func NewKVStore(path string, opts store.Options) (*KVStore, error) {
	cache := pebble.NewCache(cacheSize)
	defer cache.Unref()

	po := &pebble.Options{
		Cache:        cache,
		MemTableSize: memTableSize,
		ReadOnly:     opts.ReadOnly,
		Levels:       make([]pebble.LevelOptions, numLevels),
	}
	if opts.L0StopWritesThreshold > 0 {
		po.L0StopWritesThreshold = opts.L0StopWritesThreshold
	}
	if n := opts.MaxConcurrentCompactions; n > 0 {
		po.MaxConcurrentCompactions = func() int { return n }
	}
	for i := range po.Levels {
		if opts.BlockSize > 0 {
			po.Levels[i].BlockSize = opts.BlockSize
		}
		if opts.BloomBitsPerKey > 0 {
			po.Levels[i].FilterPolicy = bloom.FilterPolicy(opts.BloomBitsPerKey)
		}
	}

	db, err := pebble.Open(path, po)
	if err != nil {
		return nil, fmt.Errorf("open pebble %q: %w", path, err)
	}
	return &KVStore{db: db}, nil
}

func (p *KVStore) Get(key []byte) ([]byte, error) {
	if p.closed.Load() {
		return nil, store.ErrClosed
	}

	value, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close() //nolint:errcheck

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (p *KVStore) Flush() error {
	if p.closed.Load() {
		return store.ErrClosed
	}
	return p.db.Flush()
}

func (p *KVStore) Stats() store.Stats {
	if p.closed.Load() {
		return store.Stats{}
	}
	m := p.db.Metrics()
	return store.Stats{
		DiskSpaceUsage: m.DiskSpaceUsage(),
		Flushes:        m.Flush.Count,
		Compactions:    m.Compact.Count,
	}
}

func (p *KVStore) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.db.Close()
}
