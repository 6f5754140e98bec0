package engine

import (
	"github.com/eigerco/slatedb-go/internal/engine/settings"
	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

// reader is a read-only view of a database location.
type reader struct {
	store *sharedStore
	opts  ffi.ReaderOptions
}

// ReaderOpen attaches to an existing database. The embedded engine keeps no
// checkpoints, so any checkpoint id is reported as not found.
func (e *Engine) ReaderOpen(path, url, envFile, checkpointID string, opts *ffi.ReaderOptions) ffi.HandleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	loc, err := resolveLocation(path, url, envFile)
	if err != nil {
		return ffi.HandleResult{Result: e.result(err)}
	}
	if checkpointID != "" {
		return ffi.HandleResult{Result: e.result(errorf(ffi.NotFound, "checkpoint %s not found", checkpointID))}
	}

	shared, err := e.acquireStore(loc, storeOptions(settings.Default(), 0, true))
	if err != nil {
		return ffi.HandleResult{Result: e.result(err)}
	}
	r := &reader{store: shared}
	if opts != nil {
		r.opts = *opts
	}
	h := e.register(r)
	log.Engine.Debug().
		Str("location", loc.key).
		Uint64("manifest_poll_interval_ms", r.opts.ManifestPollIntervalMs).
		Bool("skip_wal_replay", r.opts.SkipWalReplay != 0).
		Msg("opened reader")
	return ffi.HandleResult{Handle: h, Result: e.result(nil)}
}

func (e *Engine) ReaderGet(h ffi.Handle, key []byte, read *ffi.ReadOptions) (ffi.Value, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := lookup[*reader](e, h)
	if err != nil {
		return ffi.Value{}, e.result(err)
	}
	value, err := e.read(r.store, key, read)
	if err != nil {
		return ffi.Value{}, e.result(err)
	}
	return e.value(value), e.result(nil)
}

func (e *Engine) ReaderScan(h ffi.Handle, start, end []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := lookup[*reader](e, h)
	if err != nil {
		return 0, e.result(err)
	}
	it, err := e.openIterator(r.store, start, end, opts)
	return it, e.result(err)
}

func (e *Engine) ReaderScanPrefix(h ffi.Handle, prefix []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := lookup[*reader](e, h)
	if err != nil {
		return 0, e.result(err)
	}
	start, end := prefixRange(prefix)
	it, err := e.openIterator(r.store, start, end, opts)
	return it, e.result(err)
}

func (e *Engine) ReaderClose(h ffi.Handle) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := lookup[*reader](e, h)
	if err != nil {
		return e.result(err)
	}
	delete(e.handles, h)
	return e.result(e.releaseStore(r.store))
}
