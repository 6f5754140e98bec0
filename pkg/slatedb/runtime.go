// Package slatedb is a client for the SlateDB key-value engine.
//
// A Runtime binds the client to an engine: either the native slatedb_c
// library (LoadLibrary) or the embedded Go engine (Embedded). Every handle it
// hands out (DB, Reader, Builder, WriteBatch, Iterator) must be closed by the
// caller. Closing is idempotent, and any other call on a closed handle fails
// with ErrDisposed.
//
// Reads report a missing key as ok == false rather than as an error. Writes
// report every engine failure, NotFound included, as an *Error.
package slatedb

import (
	"fmt"

	"github.com/eigerco/slatedb-go/internal/engine"
	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/internal/ffi/native"
)

// ErrUnsupportedPlatform is returned by LoadLibrary where the native binding
// is unavailable.
var ErrUnsupportedPlatform = native.ErrUnsupportedPlatform

// Runtime is the entry point into one engine.
type Runtime struct {
	b ffi.Boundary
}

func newRuntime(b ffi.Boundary) *Runtime {
	return &Runtime{b: b}
}

// Embedded returns a runtime backed by the process-wide embedded engine.
func Embedded() *Runtime {
	return newRuntime(engine.Default())
}

// LoadLibrary returns a runtime backed by the slatedb_c shared library. An
// empty path searches SLATEDB_LIBRARY_PATH and then the dynamic loader. The
// binding is only available on darwin; elsewhere it fails with
// ErrUnsupportedPlatform.
func LoadLibrary(path string) (*Runtime, error) {
	lib, err := native.Load(path)
	if err != nil {
		return nil, err
	}
	return newRuntime(lib), nil
}

// InitLogging sets the engine's log level. It may be called once per process.
func (r *Runtime) InitLogging(level LogLevel) error {
	return check(r.b, r.b.InitLogging(level.String()))
}

// SettingsDefault returns the engine's default settings as JSON.
func (r *Runtime) SettingsDefault() (string, error) {
	return consumeString(r.b, r.b.SettingsDefault())
}

// SettingsFromFile reads settings from a json, toml or yaml file.
func (r *Runtime) SettingsFromFile(path string) (string, error) {
	doc, err := consumeString(r.b, r.b.SettingsFromFile(path))
	if err != nil {
		return "", fmt.Errorf("settings from %s: %w", path, err)
	}
	return doc, nil
}

// SettingsFromEnv reads settings from variables named PREFIX_FIELD.
func (r *Runtime) SettingsFromEnv(prefix string) (string, error) {
	return consumeString(r.b, r.b.SettingsFromEnv(prefix))
}

// SettingsLoad reads settings from the first SlateDb.{toml,json,yaml,yml} in
// the working directory, then SLATEDB_ variables.
func (r *Runtime) SettingsLoad() (string, error) {
	return consumeString(r.b, r.b.SettingsLoad())
}

// Open opens a database at path. url names the object store; when empty the
// provider is read from envFile, then the process environment.
func (r *Runtime) Open(path, url, envFile string) (*DB, error) {
	res := r.b.Open(path, url, envFile)
	if err := check(r.b, res.Result); err != nil {
		return nil, err
	}
	return newDB(r.b, res.Handle), nil
}

// OpenReader opens a read-only view of the database at path. An empty
// checkpointID reads the latest state. opts may be nil for engine defaults.
func (r *Runtime) OpenReader(path, url, envFile, checkpointID string, opts *ReaderOptions) (*Reader, error) {
	res := r.b.ReaderOpen(path, url, envFile, checkpointID, opts.native())
	if err := check(r.b, res.Result); err != nil {
		return nil, err
	}
	return newReader(r.b, res.Handle), nil
}

// Builder starts configuring a database at path.
func (r *Runtime) Builder(path, url, envFile string) (*Builder, error) {
	res := r.b.BuilderNew(path, url, envFile)
	if err := check(r.b, res.Result); err != nil {
		return nil, err
	}
	return &Builder{b: r.b, h: handle{token: res.Handle}}, nil
}

// BuilderWithObjectStore starts configuring a database at path inside the
// bucket described by cfg. The credentials are written to a temporary env
// file that is removed when the builder is built or closed.
func (r *Runtime) BuilderWithObjectStore(path string, cfg ObjectStoreConfig) (*Builder, error) {
	artifact, err := cfg.writeArtifact()
	if err != nil {
		return nil, err
	}
	bl := &Builder{b: r.b, artifact: artifact}
	res := r.b.BuilderNew(path, "", artifact)
	if err := check(r.b, res.Result); err != nil {
		bl.cleanup()
		return nil, err
	}
	bl.h = handle{token: res.Handle}
	return bl, nil
}

// NewWriteBatch returns an empty batch for DB.Write.
func (r *Runtime) NewWriteBatch() (*WriteBatch, error) {
	t, res := r.b.WriteBatchNew()
	if err := check(r.b, res); err != nil {
		return nil, err
	}
	return &WriteBatch{b: r.b, h: handle{token: t}}, nil
}
