package slatedb

import (
	"encoding/json"
	"fmt"
	goruntime "runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/slatedb-go/internal/engine"
)

// newTestRuntime returns a runtime over a private embedded engine and checks,
// when the test ends, that every engine buffer and handle was released.
func newTestRuntime(t *testing.T, opts ...engine.Option) *Runtime {
	t.Helper()
	e := engine.New(opts...)
	t.Cleanup(func() {
		assert.Equal(t, engine.Accounting{}, e.Accounting())
		assert.Zero(t, e.OpenHandles())
	})
	return newRuntime(e)
}

func fileURL(t *testing.T) string {
	return "file://" + t.TempDir()
}

func openTestDB(t *testing.T, rt *Runtime, url string) *DB {
	t.Helper()
	db, err := rt.Open("db", url, "")
	require.NoError(t, err)
	return db
}

func collectKeys(t *testing.T, it *Iterator) []string {
	t.Helper()
	var keys []string
	for kv, err := range it.All() {
		require.NoError(t, err)
		keys = append(keys, kv.KeyString())
	}
	return keys
}

func TestDatabase(t *testing.T) {
	backends := []struct {
		name string
		url  func(t *testing.T) string
	}{
		{"file", fileURL},
		{"memory", func(*testing.T) string { return "memory:///" }},
	}
	tests := []struct {
		name string
		fn   func(t *testing.T, rt *Runtime, db *DB)
	}{
		{"absent_key_is_not_an_error", func(t *testing.T, rt *Runtime, db *DB) {
			v, ok, err := db.Get([]byte("never-written"))
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, v)
		}},
		{"write_visibility", func(t *testing.T, rt *Runtime, db *DB) {
			require.NoError(t, db.Put([]byte("k"), []byte("v")))
			v, ok, err := db.Get([]byte("k"))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte("v"), v)

			require.NoError(t, db.Delete([]byte("k")))
			_, ok, err = db.Get([]byte("k"))
			require.NoError(t, err)
			assert.False(t, ok)
		}},
		{"overwrite", func(t *testing.T, rt *Runtime, db *DB) {
			require.NoError(t, db.PutValue("k", "v1"))
			require.NoError(t, db.PutValue("k", "v2"))
			v, ok, err := db.GetString("k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "v2", v)
		}},
		{"typed_values", func(t *testing.T, rt *Runtime, db *DB) {
			require.NoError(t, db.PutValue("i32", int32(-7)))
			require.NoError(t, db.PutValue("i64", int64(1)<<40))
			require.NoError(t, db.PutValue("flag", true))
			require.NoError(t, db.PutValue("pi", 3.5))

			i32, ok, err := GetValue[int32](db, "i32")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, int32(-7), i32)

			i64, _, err := GetValue[int64](db, "i64")
			require.NoError(t, err)
			assert.Equal(t, int64(1)<<40, i64)

			flag, _, err := GetValue[bool](db, "flag")
			require.NoError(t, err)
			assert.True(t, flag)

			pi, _, err := GetValue[float64](db, "pi")
			require.NoError(t, err)
			assert.Equal(t, 3.5, pi)

			_, _, err = GetValue[int64](db, "i32")
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, 4, de.Actual)

			_, ok, err = GetValue[int32](db, "missing")
			require.NoError(t, err)
			assert.False(t, ok)
		}},
		{"empty_key_rejected", func(t *testing.T, rt *Runtime, db *DB) {
			require.ErrorIs(t, db.Put(nil, []byte("v")), ErrInvalidArgument)
		}},
		{"range_scan", func(t *testing.T, rt *Runtime, db *DB) {
			for c := 'a'; c <= 'j'; c++ {
				require.NoError(t, db.PutValue(string(c), string(c)))
			}
			it, err := db.Scan([]byte("c"), []byte("f"), nil)
			require.NoError(t, err)
			defer it.Close()
			assert.Equal(t, []string{"c", "d", "e"}, collectKeys(t, it))

			// Past the end stays absent.
			_, ok, err := it.Next()
			require.NoError(t, err)
			assert.False(t, ok)
		}},
		{"unbounded_and_empty_ranges", func(t *testing.T, rt *Runtime, db *DB) {
			for _, k := range []string{"a", "b", "c"} {
				require.NoError(t, db.PutValue(k, k))
			}
			it, err := db.Scan(nil, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, collectKeys(t, it))
			require.NoError(t, it.Close())

			it, err = db.Scan([]byte("b"), []byte("b"), nil)
			require.NoError(t, err)
			assert.Empty(t, collectKeys(t, it))
			require.NoError(t, it.Close())

			_, err = db.Scan([]byte("c"), []byte("a"), nil)
			require.ErrorIs(t, err, ErrInvalidArgument)

			// An empty end is open, like a nil one.
			it, err = db.Scan(nil, []byte{}, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, collectKeys(t, it))
			require.NoError(t, it.Close())
		}},
		{"prefix_scan", func(t *testing.T, rt *Runtime, db *DB) {
			for _, k := range []string{"user:1", "user:2", "order:1"} {
				require.NoError(t, db.PutValue(k, k))
			}
			opts := DefaultScanOptions()
			it, err := db.ScanPrefix([]byte("user:"), &opts)
			require.NoError(t, err)
			defer it.Close()
			keys := collectKeys(t, it)
			assert.Equal(t, []string{"user:1", "user:2"}, keys)
			for _, k := range keys {
				assert.Contains(t, k, "user:")
			}
		}},
		{"seek", func(t *testing.T, rt *Runtime, db *DB) {
			for _, k := range []string{"a", "c", "e", "g"} {
				require.NoError(t, db.PutValue(k, k))
			}
			it, err := db.Scan([]byte("b"), []byte("g"), nil)
			require.NoError(t, err)
			defer it.Close()

			require.NoError(t, it.Seek([]byte("d")))
			assert.Equal(t, []string{"e"}, collectKeys(t, it))

			// Seeking repositions an exhausted iterator.
			require.NoError(t, it.Seek([]byte("a")))
			assert.Equal(t, []string{"c", "e"}, collectKeys(t, it))
		}},
		{"batch_atomic", func(t *testing.T, rt *Runtime, db *DB) {
			require.NoError(t, db.PutValue("gone", "x"))

			batch, err := rt.NewWriteBatch()
			require.NoError(t, err)
			require.NoError(t, batch.PutValue("a", "1"))
			require.NoError(t, batch.PutValue("b", "2"))
			require.NoError(t, batch.Delete(EncodeString("gone")))

			_, ok, err := db.GetString("a")
			require.NoError(t, err)
			assert.False(t, ok, "batch is invisible before Write")

			require.NoError(t, db.Write(batch, &WriteOptions{AwaitDurable: false}))
			a, _, err := db.GetString("a")
			require.NoError(t, err)
			b, _, err := db.GetString("b")
			require.NoError(t, err)
			_, gone, err := db.GetString("gone")
			require.NoError(t, err)
			assert.Equal(t, "1", a)
			assert.Equal(t, "2", b)
			assert.False(t, gone)

			// The batch was consumed by Write.
			require.ErrorIs(t, batch.PutValue("c", "3"), ErrDisposed)
			require.ErrorIs(t, db.Write(batch, nil), ErrDisposed)
			require.NoError(t, batch.Close())
		}},
		{"batch_discarded", func(t *testing.T, rt *Runtime, db *DB) {
			batch, err := rt.NewWriteBatch()
			require.NoError(t, err)
			require.NoError(t, batch.PutValue("a", "1"))
			require.NoError(t, batch.Close())
			require.NoError(t, batch.Close())

			_, ok, err := db.GetString("a")
			require.NoError(t, err)
			assert.False(t, ok)
		}},
		{"batch_rejects_bad_ttl_at_call", func(t *testing.T, rt *Runtime, db *DB) {
			batch, err := rt.NewWriteBatch()
			require.NoError(t, err)
			defer batch.Close()
			err = batch.PutWithOptions([]byte("k"), []byte("v"), PutOptions{TTLType: TTLType(9)})
			require.ErrorIs(t, err, ErrInvalidArgument)
		}},
		{"empty_batch_commits", func(t *testing.T, rt *Runtime, db *DB) {
			batch, err := rt.NewWriteBatch()
			require.NoError(t, err)
			require.NoError(t, db.Write(batch, nil))
		}},
		{"flush_and_metrics", func(t *testing.T, rt *Runtime, db *DB) {
			require.NoError(t, db.PutValue("k", "v"))
			require.NoError(t, db.Flush())

			doc, err := db.Metrics()
			require.NoError(t, err)
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(doc), &m))
			assert.EqualValues(t, 1, m["db/write_ops"])
			assert.EqualValues(t, 1, m["db/flush_requests"])
		}},
	}

	for _, be := range backends {
		for _, tc := range tests {
			t.Run(be.name+"/"+tc.name, func(t *testing.T) {
				rt := newTestRuntime(t)
				db := openTestDB(t, rt, be.url(t))
				tc.fn(t, rt, db)
				require.NoError(t, db.Close())
			})
		}
	}
}

func TestIdempotentRelease(t *testing.T) {
	rt := newTestRuntime(t)
	url := fileURL(t)
	db := openTestDB(t, rt, url)
	require.NoError(t, db.PutValue("k", "v"))

	it, err := db.Scan(nil, nil, nil)
	require.NoError(t, err)
	batch, err := rt.NewWriteBatch()
	require.NoError(t, err)
	reader, err := rt.OpenReader("db", url, "", "", nil)
	require.NoError(t, err)
	builder, err := rt.Builder("other", url, "")
	require.NoError(t, err)

	closers := []interface{ Close() error }{it, batch, reader, builder, db}
	for _, c := range closers {
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
	}
}

func TestDisposedUse(t *testing.T) {
	rt := newTestRuntime(t)
	url := fileURL(t)
	db := openTestDB(t, rt, url)
	require.NoError(t, db.PutValue("k", "v"))

	it, err := db.Scan(nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// The iterator outlives its database only as far as Close.
	_, _, err = it.Next()
	require.ErrorIs(t, err, ErrDisposed)
	require.ErrorIs(t, it.Seek([]byte("k")), ErrDisposed)
	require.NoError(t, it.Close())
	_, _, err = it.Next()
	require.ErrorIs(t, err, ErrDisposed)

	_, err = db.ScanPrefix([]byte("k"), nil)
	require.ErrorIs(t, err, ErrDisposed)
	require.ErrorIs(t, db.PutWithOptions([]byte("k"), []byte("v"), NoExpiry(), DefaultWriteOptions()), ErrDisposed)
	require.ErrorIs(t, db.DeleteWithOptions([]byte("k"), DefaultWriteOptions()), ErrDisposed)
	_, _, err = db.GetWithOptions([]byte("k"), DefaultReadOptions())
	require.ErrorIs(t, err, ErrDisposed)

	batch, err := rt.NewWriteBatch()
	require.NoError(t, err)
	require.NoError(t, batch.Close())
	require.ErrorIs(t, batch.Put([]byte("k"), []byte("v")), ErrDisposed)
	require.ErrorIs(t, batch.Delete([]byte("k")), ErrDisposed)

	builder, err := rt.Builder("db", url, "")
	require.NoError(t, err)
	require.NoError(t, builder.Close())
	require.ErrorIs(t, builder.WithSstBlockSize(SstBlock8KiB), ErrDisposed)
	require.ErrorIs(t, builder.WithSettings(nil), ErrDisposed)
	_, err = builder.Build()
	require.ErrorIs(t, err, ErrDisposed)
}

func TestTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rt := newTestRuntime(t, engine.WithClock(func() time.Time { return now }))
	db := openTestDB(t, rt, "memory:///")
	defer db.Close()

	require.NoError(t, db.PutWithOptions([]byte("short"), []byte("v"), ExpireAfter(time.Second), DefaultWriteOptions()))
	require.NoError(t, db.PutWithOptions([]byte("forever"), []byte("v"), NoExpiry(), WriteOptions{}))

	_, ok, err := db.Get([]byte("short"))
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, err = db.Get([]byte("short"))
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = db.Get([]byte("forever"))
	require.NoError(t, err)
	assert.True(t, ok)

	it, err := db.Scan(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"forever"}, collectKeys(t, it))
	require.NoError(t, it.Close())
}

func TestReader(t *testing.T) {
	rt := newTestRuntime(t)
	url := fileURL(t)

	db := openTestDB(t, rt, url)
	for i := range 5 {
		require.NoError(t, db.PutValue(fmt.Sprintf("key:%d", i), int64(i)))
	}
	require.NoError(t, db.Flush())

	opts := DefaultReaderOptions()
	reader, err := rt.OpenReader("db", url, "", "", &opts)
	require.NoError(t, err)
	defer reader.Close()

	n, ok, err := GetValue[int64](reader, "key:3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), n)

	it, err := reader.ScanPrefix([]byte("key:"), nil)
	require.NoError(t, err)
	assert.Len(t, collectKeys(t, it), 5)
	require.NoError(t, it.Close())

	_, err = rt.OpenReader("db", url, "", "checkpoint-1", nil)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Close())
}

func TestOpenErrors(t *testing.T) {
	rt := newTestRuntime(t)

	_, err := rt.Open("", "memory:///", "")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = rt.Open("db", "s3://bucket", "")
	require.ErrorIs(t, err, ErrInvalidProvider)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.NotEmpty(t, se.Message)

	_, err = rt.OpenReader("db", "memory:///", "", "", nil)
	require.ErrorIs(t, err, ErrIO)
}

func TestLoadLibraryUnsupported(t *testing.T) {
	if goruntime.GOOS == "darwin" {
		t.Skip("native binding is available on darwin")
	}
	_, err := LoadLibrary("")
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestInitLogging(t *testing.T) {
	rt := newTestRuntime(t)
	require.NoError(t, rt.InitLogging(LogWarn))
}
