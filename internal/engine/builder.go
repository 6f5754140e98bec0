package engine

import (
	"github.com/eigerco/slatedb-go/internal/engine/settings"
	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

// sstBlockSizes maps the builder's block size codes to bytes.
var sstBlockSizes = [...]int{1 << 10, 2 << 10, 4 << 10, 8 << 10, 16 << 10, 32 << 10, 64 << 10}

type builder struct {
	path, url, envFile string
	settings           settings.Settings
	blockSize          int
}

// BuilderNew records the open arguments; the location is resolved by
// BuilderBuild.
func (e *Engine) BuilderNew(path, url, envFile string) ffi.HandleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if path == "" {
		return ffi.HandleResult{Result: e.result(errorf(ffi.InvalidArgument, "path must not be empty"))}
	}
	h := e.register(&builder{path: path, url: url, envFile: envFile, settings: settings.Default()})
	return ffi.HandleResult{Handle: h, Result: e.result(nil)}
}

func (e *Engine) BuilderWithSettings(h ffi.Handle, settingsJSON string) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := lookup[*builder](e, h)
	if err != nil {
		return e.result(err)
	}
	s, err := settings.Parse(settingsJSON)
	if err != nil {
		return e.result(errorf(ffi.InvalidArgument, "%v", err))
	}
	b.settings = s
	return e.result(nil)
}

func (e *Engine) BuilderWithSstBlockSize(h ffi.Handle, size uint8) ffi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := lookup[*builder](e, h)
	if err != nil {
		return e.result(err)
	}
	if int(size) >= len(sstBlockSizes) {
		return e.result(errorf(ffi.InvalidArgument, "unknown sst block size %d", size))
	}
	b.blockSize = sstBlockSizes[size]
	return e.result(nil)
}

func (e *Engine) BuilderBuild(h ffi.Handle) ffi.HandleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := lookup[*builder](e, h)
	if err != nil {
		return ffi.HandleResult{Result: e.result(err)}
	}
	delete(e.handles, h)

	db, err := e.openDatabase(b.path, b.url, b.envFile, b.settings, b.blockSize)
	return ffi.HandleResult{Handle: db, Result: e.result(err)}
}

func (e *Engine) BuilderFree(h ffi.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := lookup[*builder](e, h); err != nil {
		log.Engine.Warn().Err(err).Msg("builder free")
		return
	}
	delete(e.handles, h)
}
