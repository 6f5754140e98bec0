package engine

import (
	"os"

	lru "github.com/hashicorp/golang-lru"

	"github.com/eigerco/slatedb-go/internal/engine/settings"
	"github.com/eigerco/slatedb-go/internal/engine/store"
	"github.com/eigerco/slatedb-go/internal/engine/store/leveldb"
	"github.com/eigerco/slatedb-go/internal/engine/store/pebble"
	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

const (
	defaultBlockSize = 4 << 10
	readCacheEntries = 4096
)

// sharedStore is one open location, shared by every handle on it.
type sharedStore struct {
	loc      location
	kv       store.KVStore
	cache    *lru.Cache
	refs     int
	readOnly bool
}

func storeOptions(s settings.Settings, blockSize int, readOnly bool) store.Options {
	if blockSize == 0 {
		blockSize = defaultBlockSize
	}
	opts := store.Options{
		BlockSize:             blockSize,
		BloomBitsPerKey:       int(s.FilterBitsPerKey),
		L0StopWritesThreshold: int(s.L0MaxSsts),
		ReadOnly:              readOnly,
	}
	if s.CompactorOptions != nil {
		opts.MaxConcurrentCompactions = int(s.CompactorOptions.MaxConcurrentCompactions)
	}
	return opts
}

// acquireStore returns the store for loc, opening it on first use. Callers
// hold e.mu.
func (e *Engine) acquireStore(loc location, opts store.Options) (*sharedStore, error) {
	if s, ok := e.stores[loc.key]; ok {
		if s.readOnly && !opts.ReadOnly {
			return nil, errorf(ffi.IOError, "database %s is open read-only", loc.key)
		}
		s.refs++
		return s, nil
	}

	var (
		kv  store.KVStore
		err error
	)
	switch {
	case loc.memory && opts.ReadOnly:
		return nil, errorf(ffi.IOError, "no database at %s", loc.key)
	case loc.memory:
		kv, err = leveldb.NewMemKVStore(opts)
	default:
		if opts.ReadOnly {
			if _, statErr := os.Stat(loc.dir); statErr != nil {
				return nil, errorf(ffi.IOError, "no database at %s: %v", loc.dir, statErr)
			}
		}
		kv, err = pebble.NewKVStore(loc.dir, opts)
	}
	if err != nil {
		return nil, errorf(ffi.IOError, "%v", err)
	}

	cache, err := lru.New(readCacheEntries)
	if err != nil {
		_ = kv.Close()
		return nil, errorf(ffi.InternalError, "create read cache: %v", err)
	}
	s := &sharedStore{loc: loc, kv: kv, cache: cache, refs: 1, readOnly: opts.ReadOnly}
	e.stores[loc.key] = s
	log.Store.Debug().Str("location", loc.key).Bool("read_only", opts.ReadOnly).Msg("opened store")
	return s, nil
}

// releaseStore drops one reference and closes the store with the last one.
// Callers hold e.mu.
func (e *Engine) releaseStore(s *sharedStore) error {
	s.refs--
	if s.refs > 0 {
		return nil
	}
	delete(e.stores, s.loc.key)
	s.cache.Purge()
	log.Store.Debug().Str("location", s.loc.key).Msg("closed store")
	if err := s.kv.Close(); err != nil {
		return errorf(ffi.IOError, "close store: %v", err)
	}
	return nil
}
