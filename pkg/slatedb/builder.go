package slatedb

import (
	"errors"
	"io/fs"
	"os"

	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

// Builder configures a database before opening it. Build consumes the
// builder whatever the outcome; Close releases an unbuilt one. Both are safe
// to call more than once.
type Builder struct {
	b ffi.Boundary
	h handle

	// artifact is the object store env file, removed exactly once.
	artifact string
}

// WithSettings merges overrides onto the engine defaults and applies the
// result.
func (bl *Builder) WithSettings(overrides *Settings) error {
	if _, err := bl.h.acquire(); err != nil {
		return err
	}
	doc, err := buildSettings(bl.b, overrides)
	if err != nil {
		return err
	}
	return bl.WithSettingsJSON(doc)
}

// WithSettingsJSON applies a complete settings document as is.
func (bl *Builder) WithSettingsJSON(doc string) error {
	t, err := bl.h.acquire()
	if err != nil {
		return err
	}
	return check(bl.b, bl.b.BuilderWithSettings(t, doc))
}

func (bl *Builder) WithSstBlockSize(size SstBlockSize) error {
	t, err := bl.h.acquire()
	if err != nil {
		return err
	}
	return check(bl.b, bl.b.BuilderWithSstBlockSize(t, uint8(size)))
}

// Build opens the database. The builder is consumed and any object store env
// file is removed, whether or not the open succeeds.
func (bl *Builder) Build() (*DB, error) {
	t, err := bl.h.acquire()
	if err != nil {
		return nil, err
	}
	bl.h.consume()
	res := bl.b.BuilderBuild(t)
	bl.cleanup()
	if err := check(bl.b, res.Result); err != nil {
		return nil, err
	}
	return newDB(bl.b, res.Handle), nil
}

// Close discards an unbuilt builder.
func (bl *Builder) Close() error {
	defer bl.cleanup()
	return bl.h.release(func(t ffi.Handle) error {
		bl.b.BuilderFree(t)
		return nil
	})
}

func (bl *Builder) cleanup() {
	if bl.artifact == "" {
		return
	}
	path := bl.artifact
	bl.artifact = ""
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Client.Warn().Err(err).Str("path", path).Msg("failed to remove object store env file")
	}
}
