//go:build darwin

package native

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/eigerco/slatedb-go/pkg/log"
)

const (
	libraryFileName = "libslatedb_c.dylib"
	libcPath        = "/usr/lib/libSystem.B.dylib"
)

var (
	ErrAlreadyLoaded = errors.New("native: slatedb_c already loaded from a different path")

	loadOnce   sync.Once
	loadedPath string
	loadErr    error
)

// binding names the library symbol behind one func var.
type binding struct {
	fn     any
	symbol string
}

var bindings = []binding{
	{&sdbInitLogging, "slatedb_init_logging"},
	{&sdbSettingsDefault, "slatedb_settings_default"},
	{&sdbSettingsFromFile, "slatedb_settings_from_file"},
	{&sdbSettingsFromEnv, "slatedb_settings_from_env"},
	{&sdbSettingsLoad, "slatedb_settings_load"},

	{&sdbOpen, "slatedb_open"},
	{&sdbClose, "slatedb_close"},
	{&sdbFlush, "slatedb_flush"},
	{&sdbMetrics, "slatedb_metrics"},

	{&sdbPut, "slatedb_put_with_options"},
	{&sdbDelete, "slatedb_delete_with_options"},
	{&sdbGet, "slatedb_get_with_options"},
	{&sdbScan, "slatedb_scan_with_options"},
	{&sdbScanPrefix, "slatedb_scan_prefix_with_options"},

	{&sdbWriteBatchNew, "slatedb_write_batch_new"},
	{&sdbWriteBatchPut, "slatedb_write_batch_put"},
	{&sdbWriteBatchPutWithOptions, "slatedb_write_batch_put_with_options"},
	{&sdbWriteBatchDelete, "slatedb_write_batch_delete"},
	{&sdbWriteBatchWrite, "slatedb_write_batch_write"},
	{&sdbWriteBatchClose, "slatedb_write_batch_close"},

	{&sdbBuilderNew, "slatedb_builder_new"},
	{&sdbBuilderWithSettings, "slatedb_builder_with_settings"},
	{&sdbBuilderWithSstBlockSize, "slatedb_builder_with_sst_block_size"},
	{&sdbBuilderBuild, "slatedb_builder_build"},
	{&sdbBuilderFree, "slatedb_builder_free"},

	{&sdbReaderOpen, "slatedb_reader_open"},
	{&sdbReaderGet, "slatedb_reader_get_with_options"},
	{&sdbReaderScan, "slatedb_reader_scan_with_options"},
	{&sdbReaderScanPrefix, "slatedb_reader_scan_prefix_with_options"},
	{&sdbReaderClose, "slatedb_reader_close"},

	{&sdbIteratorNext, "slatedb_iterator_next"},
	{&sdbIteratorSeek, "slatedb_iterator_seek"},
	{&sdbIteratorClose, "slatedb_iterator_close"},

	{&sdbFreeResult, "slatedb_free_result"},
	{&sdbFreeValue, "slatedb_free_value"},
}

// Load opens the slatedb_c library and registers every boundary function.
// An empty path searches SLATEDB_LIBRARY_PATH and then the platform default
// name through the dynamic loader. The library is loaded once per process.
func Load(path string) (*Library, error) {
	resolved := resolvePath(path)
	loadOnce.Do(func() {
		loadedPath = resolved
		loadErr = register(resolved)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if resolved != loadedPath {
		return nil, fmt.Errorf("%w: loaded %q, requested %q", ErrAlreadyLoaded, loadedPath, resolved)
	}
	return &Library{path: loadedPath}, nil
}

func resolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvLibraryPath); env != "" {
		return env
	}
	return libraryFileName
}

// register binds every symbol. purego panics on a missing symbol or an
// unsupported signature; that is reported as a load error.
func register(path string) (err error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("load slatedb_c library %q: %w", path, err)
	}
	libc, err := purego.Dlopen(libcPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("load libc: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register slatedb_c functions from %q: %v", path, r)
		}
	}()
	for _, b := range bindings {
		purego.RegisterLibFunc(b.fn, lib, b.symbol)
	}
	purego.RegisterLibFunc(&cFree, libc, "free")

	log.Client.Debug().Str("path", path).Msg("loaded native library")
	return nil
}
