package engine

import (
	"encoding/json"
	"errors"

	"github.com/eigerco/slatedb-go/internal/engine/envelope"
	"github.com/eigerco/slatedb-go/internal/engine/settings"
	"github.com/eigerco/slatedb-go/internal/engine/store"
	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

const maxKeySize = 1<<16 - 1

type database struct {
	store    *sharedStore
	settings settings.Settings
	codec    envelope.Codec
	stats    dbStats
}

type dbStats struct {
	Gets         int64 `json:"db/get_requests"`
	WriteOps     int64 `json:"db/write_ops"`
	WriteBatches int64 `json:"db/write_batch_count"`
	Scans        int64 `json:"db/scan_requests"`
	Flushes      int64 `json:"db/flush_requests"`
}

// mutation is one pending put or delete.
type mutation struct {
	key    []byte
	value  []byte
	delete bool
	ttl    *ffi.PutOptions
}

func (e *Engine) Open(path, url, envFile string) ffi.HandleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, err := e.openDatabase(path, url, envFile, settings.Default(), 0)
	return ffi.HandleResult{Handle: h, Result: e.result(err)}
}

func (e *Engine) openDatabase(path, url, envFile string, s settings.Settings, blockSize int) (ffi.Handle, error) {
	loc, err := resolveLocation(path, url, envFile)
	if err != nil {
		return 0, err
	}
	shared, err := e.acquireStore(loc, storeOptions(s, blockSize, false))
	if err != nil {
		return 0, err
	}
	h := e.register(&database{store: shared, settings: s, codec: s.Codec()})
	log.Engine.Debug().Str("location", loc.key).Uint64("handle", uint64(h)).Msg("opened database")
	return h, nil
}

func (e *Engine) Close(db ffi.Handle) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return e.result(err)
	}
	delete(e.handles, db)
	log.Engine.Debug().Uint64("handle", uint64(db)).Msg("closed database")
	return e.result(e.releaseStore(d.store))
}

func (e *Engine) Flush(db ffi.Handle) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return e.result(err)
	}
	d.stats.Flushes++
	if err := d.store.kv.Flush(); err != nil {
		return e.result(errorf(ffi.IOError, "flush: %v", err))
	}
	return e.result(nil)
}

func (e *Engine) Metrics(db ffi.Handle) (ffi.Value, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return ffi.Value{}, e.result(err)
	}
	stats := d.store.kv.Stats()
	raw, err := json.Marshal(struct {
		dbStats
		DiskSpaceUsage uint64 `json:"store/disk_space_usage"`
		StoreFlushes   int64  `json:"store/flushes"`
		Compactions    int64  `json:"store/compactions"`
	}{d.stats, stats.DiskSpaceUsage, stats.Flushes, stats.Compactions})
	if err != nil {
		return ffi.Value{}, e.result(err)
	}
	return e.value(raw), e.result(nil)
}

func (e *Engine) Put(db ffi.Handle, key, value []byte, put *ffi.PutOptions, write *ffi.WriteOptions) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return e.result(err)
	}
	if err := validateKey(key); err != nil {
		return e.result(err)
	}
	if err := validateTTL(put); err != nil {
		return e.result(err)
	}
	return e.result(e.apply(d, []mutation{{key: key, value: value, ttl: put}}, write))
}

func (e *Engine) Delete(db ffi.Handle, key []byte, write *ffi.WriteOptions) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return e.result(err)
	}
	if err := validateKey(key); err != nil {
		return e.result(err)
	}
	return e.result(e.apply(d, []mutation{{key: key, delete: true}}, write))
}

func (e *Engine) Get(db ffi.Handle, key []byte, read *ffi.ReadOptions) (ffi.Value, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return ffi.Value{}, e.result(err)
	}
	d.stats.Gets++
	value, err := e.read(d.store, key, read)
	if err != nil {
		return ffi.Value{}, e.result(err)
	}
	return e.value(value), e.result(nil)
}

func (e *Engine) Scan(db ffi.Handle, start, end []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return 0, e.result(err)
	}
	d.stats.Scans++
	h, err := e.openIterator(d.store, start, end, opts)
	return h, e.result(err)
}

func (e *Engine) ScanPrefix(db ffi.Handle, prefix []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := lookup[*database](e, db)
	if err != nil {
		return 0, e.result(err)
	}
	d.stats.Scans++
	start, end := prefixRange(prefix)
	h, err := e.openIterator(d.store, start, end, opts)
	return h, e.result(err)
}

// apply commits muts as one store batch. Callers hold e.mu.
func (e *Engine) apply(d *database, muts []mutation, write *ffi.WriteOptions) error {
	b := d.store.kv.NewBatch()
	defer b.Close() //nolint:errcheck

	now := e.nowMs()
	for _, m := range muts {
		if m.delete {
			if err := b.Delete(m.key); err != nil {
				return errorf(ffi.IOError, "delete: %v", err)
			}
			continue
		}
		entry, err := envelope.Encode(d.codec, m.value, d.expireAt(m.ttl, now))
		if err != nil {
			return errorf(ffi.InternalError, "encode value: %v", err)
		}
		if err := b.Put(m.key, entry); err != nil {
			return errorf(ffi.IOError, "put: %v", err)
		}
	}

	sync := write == nil || write.AwaitDurable != 0
	if err := b.Commit(sync); err != nil {
		return errorf(ffi.IOError, "commit: %v", err)
	}
	for _, m := range muts {
		d.store.cache.Remove(string(m.key))
	}
	d.stats.WriteOps += int64(len(muts))
	return nil
}

// expireAt resolves a TTL policy to an absolute expiry; zero never expires.
func (d *database) expireAt(ttl *ffi.PutOptions, now int64) int64 {
	if ttl != nil {
		switch ttl.TTLType {
		case ffi.TTLNoExpiry:
			return 0
		case ffi.TTLExpireAfter:
			return now + int64(ttl.TTLValue)
		}
	}
	if d.settings.DefaultTTL != nil && *d.settings.DefaultTTL > 0 {
		return now + int64(*d.settings.DefaultTTL)
	}
	return 0
}

// read looks key up in s, honoring expiry. Callers hold e.mu.
func (e *Engine) read(s *sharedStore, key []byte, opts *ffi.ReadOptions) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	cacheBlocks := true
	if opts != nil {
		if err := validateDurability(int64(opts.DurabilityFilter)); err != nil {
			return nil, err
		}
		cacheBlocks = opts.CacheBlocks != 0
	}

	var raw []byte
	if cached, ok := s.cache.Get(string(key)); ok {
		raw = cached.([]byte)
	} else {
		v, err := s.kv.Get(key)
		if errors.Is(err, store.ErrNotFound) {
			return nil, errorf(ffi.NotFound, "key not found")
		}
		if err != nil {
			return nil, errorf(ffi.IOError, "get: %v", err)
		}
		raw = v
		if cacheBlocks {
			s.cache.Add(string(key), raw)
		}
	}

	entry, err := envelope.Decode(raw)
	if err != nil {
		return nil, errorf(ffi.InternalError, "decode value: %v", err)
	}
	if entry.Expired(e.nowMs()) {
		return nil, errorf(ffi.NotFound, "key not found")
	}
	return entry.Value, nil
}

func (e *Engine) value(b []byte) ffi.Value {
	return ffi.Value{Data: e.arena.put(b), Len: uintptr(len(b))}
}

func validateKey(key []byte) error {
	if len(key) == 0 {
		return errorf(ffi.InvalidArgument, "key must not be empty")
	}
	if len(key) > maxKeySize {
		return errorf(ffi.InvalidArgument, "key of %d bytes exceeds %d", len(key), maxKeySize)
	}
	return nil
}

func validateTTL(put *ffi.PutOptions) error {
	if put == nil {
		return nil
	}
	switch put.TTLType {
	case ffi.TTLDefault, ffi.TTLNoExpiry:
		return nil
	case ffi.TTLExpireAfter:
		if put.TTLValue == 0 {
			return errorf(ffi.InvalidArgument, "expire-after ttl must be positive")
		}
		return nil
	default:
		return errorf(ffi.InvalidArgument, "unknown ttl type %d", put.TTLType)
	}
}

func validateDurability(filter int64) error {
	switch filter {
	case int64(ffi.DurabilityRemote), int64(ffi.DurabilityMemory):
		return nil
	default:
		return errorf(ffi.InvalidArgument, "unknown durability filter %d", filter)
	}
}
