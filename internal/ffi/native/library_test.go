//go:build darwin

package native

import (
	"reflect"
	"testing"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every signature must be accepted by purego. The functions are bound to an
// unrelated libc symbol and never called.
func TestBindingSignatures(t *testing.T) {
	libc, err := purego.Dlopen(libcPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	require.NoError(t, err)
	sym, err := purego.Dlsym(libc, "abs")
	require.NoError(t, err)

	for _, b := range bindings {
		t.Run(b.symbol, func(t *testing.T) {
			fn := reflect.New(reflect.TypeOf(b.fn).Elem()).Interface()
			assert.NotPanics(t, func() { purego.RegisterFunc(fn, sym) })
		})
	}
	free := reflect.New(reflect.TypeOf(&cFree).Elem()).Interface()
	assert.NotPanics(t, func() { purego.RegisterFunc(free, sym) })
}

func TestLoadMissingLibrary(t *testing.T) {
	err := register(t.TempDir() + "/libslatedb_c.dylib")
	require.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/opt/lib.dylib", resolvePath("/opt/lib.dylib"))
	t.Setenv(EnvLibraryPath, "/env/lib.dylib")
	assert.Equal(t, "/env/lib.dylib", resolvePath(""))
	t.Setenv(EnvLibraryPath, "")
	assert.Equal(t, libraryFileName, resolvePath(""))
}
