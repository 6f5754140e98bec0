package engine

import (
	"encoding/json"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/slatedb-go/internal/ffi"
)

func requireOK(t *testing.T, e *Engine, r ffi.Result) {
	t.Helper()
	if !r.OK() {
		msg := e.LoadString(r.Message)
		e.FreeResult(r)
		t.Fatalf("unexpected %s: %s", r.Code, msg)
	}
}

func requireCode(t *testing.T, e *Engine, code ffi.Code, r ffi.Result) string {
	t.Helper()
	require.Equal(t, code, r.Code)
	msg := e.LoadString(r.Message)
	e.FreeResult(r)
	return msg
}

func openDB(t *testing.T, e *Engine, url string) ffi.Handle {
	t.Helper()
	hr := e.Open("db", url, "")
	requireOK(t, e, hr.Result)
	return hr.Handle
}

func put(t *testing.T, e *Engine, db ffi.Handle, key, value string) {
	t.Helper()
	requireOK(t, e, e.Put(db, []byte(key), []byte(value), nil, nil))
}

func get(t *testing.T, e *Engine, db ffi.Handle, key string) (string, bool) {
	t.Helper()
	v, r := e.Get(db, []byte(key), nil)
	if r.Code == ffi.NotFound {
		e.FreeResult(r)
		return "", false
	}
	requireOK(t, e, r)
	s := string(e.Load(v))
	e.FreeValue(v)
	return s, true
}

func drain(t *testing.T, e *Engine, it ffi.Handle) []string {
	t.Helper()
	var keys []string
	for {
		kv, r := e.IteratorNext(it)
		if r.Code == ffi.NotFound {
			e.FreeResult(r)
			return keys
		}
		requireOK(t, e, r)
		keys = append(keys, string(e.Load(kv.Key)))
		e.FreeValue(kv.Key)
		e.FreeValue(kv.Value)
	}
}

func requireClean(t *testing.T, e *Engine) {
	t.Helper()
	require.Equal(t, Accounting{}, e.Accounting())
	require.Zero(t, e.OpenHandles())
}

func TestEngine(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T, e *Engine, db ffi.Handle)
	}{
		{"put_get_delete", func(t *testing.T, e *Engine, db ffi.Handle) {
			_, ok := get(t, e, db, "k")
			require.False(t, ok)

			put(t, e, db, "k", "v1")
			put(t, e, db, "k", "v2")
			v, ok := get(t, e, db, "k")
			require.True(t, ok)
			require.Equal(t, "v2", v)

			requireOK(t, e, e.Delete(db, []byte("k"), &ffi.WriteOptions{AwaitDurable: 0}))
			_, ok = get(t, e, db, "k")
			require.False(t, ok)
		}},
		{"empty_key_rejected", func(t *testing.T, e *Engine, db ffi.Handle) {
			requireCode(t, e, ffi.InvalidArgument, e.Put(db, nil, []byte("v"), nil, nil))
			_, r := e.Get(db, []byte{}, nil)
			requireCode(t, e, ffi.InvalidArgument, r)
		}},
		{"not_found_carries_message", func(t *testing.T, e *Engine, db ffi.Handle) {
			_, r := e.Get(db, []byte("missing"), nil)
			require.NotZero(t, r.Message)
			require.Equal(t, "key not found", requireCode(t, e, ffi.NotFound, r))
		}},
		{"range_scan", func(t *testing.T, e *Engine, db ffi.Handle) {
			for _, k := range []string{"a", "b", "c", "d", "e", "f", "g"} {
				put(t, e, db, k, k)
			}
			it, r := e.Scan(db, []byte("c"), []byte("f"), nil)
			requireOK(t, e, r)
			require.Equal(t, []string{"c", "d", "e"}, drain(t, e, it))
			// Exhaustion is sticky.
			require.Empty(t, drain(t, e, it))
			requireOK(t, e, e.IteratorClose(it))

			it, r = e.Scan(db, nil, nil, &ffi.ScanOptions{DurabilityFilter: int32(ffi.DurabilityMemory), CacheBlocks: 1})
			requireOK(t, e, r)
			require.Len(t, drain(t, e, it), 7)
			requireOK(t, e, e.IteratorClose(it))
		}},
		{"scan_empty_and_inverted_ranges", func(t *testing.T, e *Engine, db ffi.Handle) {
			put(t, e, db, "a", "1")
			it, r := e.Scan(db, []byte("a"), []byte("a"), nil)
			requireOK(t, e, r)
			require.Empty(t, drain(t, e, it))
			requireOK(t, e, e.IteratorClose(it))

			_, r = e.Scan(db, []byte("b"), []byte("a"), nil)
			requireCode(t, e, ffi.InvalidArgument, r)
		}},
		{"empty_bounds_are_open", func(t *testing.T, e *Engine, db ffi.Handle) {
			for _, k := range []string{"a", "b", "c"} {
				put(t, e, db, k, k)
			}
			it, r := e.Scan(db, nil, []byte{}, nil)
			requireOK(t, e, r)
			require.Equal(t, []string{"a", "b", "c"}, drain(t, e, it))
			requireOK(t, e, e.IteratorClose(it))

			it, r = e.Scan(db, []byte{}, []byte{}, nil)
			requireOK(t, e, r)
			require.Equal(t, []string{"a", "b", "c"}, drain(t, e, it))
			requireOK(t, e, e.IteratorClose(it))

			it, r = e.Scan(db, []byte("b"), []byte{}, nil)
			requireOK(t, e, r)
			require.Equal(t, []string{"b", "c"}, drain(t, e, it))
			requireOK(t, e, e.IteratorClose(it))
		}},
		{"seek", func(t *testing.T, e *Engine, db ffi.Handle) {
			for _, k := range []string{"a", "b", "c", "d", "e", "f"} {
				put(t, e, db, k, k)
			}
			it, r := e.Scan(db, []byte("b"), []byte("e"), nil)
			requireOK(t, e, r)
			defer func() { requireOK(t, e, e.IteratorClose(it)) }()

			requireOK(t, e, e.IteratorSeek(it, []byte("cc")))
			require.Equal(t, []string{"d"}, drain(t, e, it))

			// Below the lower bound clamps to it.
			requireOK(t, e, e.IteratorSeek(it, []byte("a")))
			require.Equal(t, []string{"b", "c", "d"}, drain(t, e, it))

			// At the upper bound exhausts without error.
			requireOK(t, e, e.IteratorSeek(it, []byte("e")))
			require.Empty(t, drain(t, e, it))
		}},
		{"prefix_scan", func(t *testing.T, e *Engine, db ffi.Handle) {
			for _, k := range []string{"user:1", "user:2", "order:1", "user;", "use"} {
				put(t, e, db, k, k)
			}
			it, r := e.ScanPrefix(db, []byte("user:"), nil)
			requireOK(t, e, r)
			require.Equal(t, []string{"user:1", "user:2"}, drain(t, e, it))
			requireOK(t, e, e.IteratorClose(it))
		}},
		{"batch_atomic_and_consumed", func(t *testing.T, e *Engine, db ffi.Handle) {
			put(t, e, db, "gone", "x")
			b, r := e.WriteBatchNew()
			requireOK(t, e, r)
			requireOK(t, e, e.WriteBatchPut(b, []byte("k1"), []byte("a")))
			requireOK(t, e, e.WriteBatchPut(b, []byte("k1"), []byte("b")))
			requireOK(t, e, e.WriteBatchPutWithOptions(b, []byte("k2"), []byte("c"), &ffi.PutOptions{TTLType: ffi.TTLNoExpiry}))
			requireOK(t, e, e.WriteBatchDelete(b, []byte("gone")))

			_, ok := get(t, e, db, "k1")
			require.False(t, ok, "batch is invisible before write")

			requireOK(t, e, e.WriteBatchWrite(db, b, &ffi.WriteOptions{AwaitDurable: 1}))
			v, _ := get(t, e, db, "k1")
			require.Equal(t, "b", v)
			v, _ = get(t, e, db, "k2")
			require.Equal(t, "c", v)
			_, ok = get(t, e, db, "gone")
			require.False(t, ok)

			requireCode(t, e, ffi.InvalidArgument, e.WriteBatchPut(b, []byte("k3"), nil))
			requireCode(t, e, ffi.InvalidArgument, e.WriteBatchWrite(db, b, nil))
			requireOK(t, e, e.WriteBatchClose(b))
			requireCode(t, e, ffi.InvalidHandle, e.WriteBatchClose(b))
		}},
		{"batch_ttl_validated_at_call", func(t *testing.T, e *Engine, db ffi.Handle) {
			b, r := e.WriteBatchNew()
			requireOK(t, e, r)
			requireCode(t, e, ffi.InvalidArgument,
				e.WriteBatchPutWithOptions(b, []byte("k"), []byte("v"), &ffi.PutOptions{TTLType: ffi.TTLExpireAfter}))
			requireCode(t, e, ffi.InvalidArgument,
				e.WriteBatchPutWithOptions(b, []byte("k"), []byte("v"), &ffi.PutOptions{TTLType: 9}))
			requireOK(t, e, e.WriteBatchClose(b))
		}},
		{"wrong_handle_kind", func(t *testing.T, e *Engine, db ffi.Handle) {
			_, r := e.IteratorNext(db)
			requireCode(t, e, ffi.InvalidHandle, r)
			requireCode(t, e, ffi.NullPointer, e.Flush(0))
		}},
		{"flush_and_metrics", func(t *testing.T, e *Engine, db ffi.Handle) {
			put(t, e, db, "k", "v")
			get(t, e, db, "k")
			requireOK(t, e, e.Flush(db))

			v, r := e.Metrics(db)
			requireOK(t, e, r)
			var m map[string]any
			require.NoError(t, json.Unmarshal(e.Load(v), &m))
			e.FreeValue(v)
			assert.EqualValues(t, 1, m["db/write_ops"])
			assert.EqualValues(t, 1, m["db/get_requests"])
			assert.EqualValues(t, 1, m["db/flush_requests"])
			assert.Contains(t, m, "store/disk_space_usage")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, url := range []string{"file://" + t.TempDir(), "memory:///" + t.Name()} {
				e := New()
				db := openDB(t, e, url)
				tt.fn(t, e, db)
				requireOK(t, e, e.Close(db))
				requireClean(t, e)
			}
		})
	}
}

func TestEngineTTL(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	e := New(WithClock(func() time.Time { return time.UnixMilli(now.Load()) }))

	b := e.BuilderNew("db", "memory:///ttl", "")
	requireOK(t, e, b.Result)
	requireOK(t, e, e.BuilderWithSettings(b.Handle, `{"default_ttl": 5000}`))
	hr := e.BuilderBuild(b.Handle)
	requireOK(t, e, hr.Result)
	db := hr.Handle

	requireOK(t, e, e.Put(db, []byte("short"), []byte("v"), &ffi.PutOptions{TTLType: ffi.TTLExpireAfter, TTLValue: 1000}, nil))
	requireOK(t, e, e.Put(db, []byte("default"), []byte("v"), &ffi.PutOptions{TTLType: ffi.TTLDefault}, nil))
	requireOK(t, e, e.Put(db, []byte("forever"), []byte("v"), &ffi.PutOptions{TTLType: ffi.TTLNoExpiry}, nil))
	requireCode(t, e, ffi.InvalidArgument, e.Put(db, []byte("bad"), []byte("v"), &ffi.PutOptions{TTLType: ffi.TTLExpireAfter}, nil))

	now.Add(1500)
	_, ok := get(t, e, db, "short")
	require.False(t, ok)
	_, ok = get(t, e, db, "default")
	require.True(t, ok)

	now.Add(5000)
	it, r := e.Scan(db, nil, nil, nil)
	requireOK(t, e, r)
	require.Equal(t, []string{"forever"}, drain(t, e, it))
	requireOK(t, e, e.IteratorClose(it))

	requireOK(t, e, e.Close(db))
	requireClean(t, e)
}

func TestEngineBuilder(t *testing.T) {
	e := New()
	url := "file://" + t.TempDir()

	b := e.BuilderNew("db", url, "")
	requireOK(t, e, b.Result)
	requireCode(t, e, ffi.InvalidArgument, e.BuilderWithSstBlockSize(b.Handle, 7))
	requireOK(t, e, e.BuilderWithSstBlockSize(b.Handle, 6))
	requireCode(t, e, ffi.InvalidArgument, e.BuilderWithSettings(b.Handle, `{"compression_codec": "brotli"}`))
	requireCode(t, e, ffi.InvalidArgument, e.BuilderWithSettings(b.Handle, `{"no_such_field": 1}`))
	requireOK(t, e, e.BuilderWithSettings(b.Handle, `{"compression_codec": "zstd"}`))

	hr := e.BuilderBuild(b.Handle)
	requireOK(t, e, hr.Result)
	put(t, e, hr.Handle, "k", "compressed")
	v, _ := get(t, e, hr.Handle, "k")
	require.Equal(t, "compressed", v)

	// Build consumed the builder.
	requireCode(t, e, ffi.InvalidHandle, e.BuilderBuild(b.Handle).Result)
	requireOK(t, e, e.Close(hr.Handle))

	b = e.BuilderNew("db", "s3://bucket", "")
	requireOK(t, e, b.Result)
	requireCode(t, e, ffi.InvalidProvider, e.BuilderBuild(b.Handle).Result)

	b = e.BuilderNew("db", url, "")
	requireOK(t, e, b.Result)
	e.BuilderFree(b.Handle)
	requireClean(t, e)
}

func TestEngineLocation(t *testing.T) {
	dir := t.TempDir()
	writeEnv := func(t *testing.T, env map[string]string) string {
		path := filepath.Join(t.TempDir(), "store.env")
		require.NoError(t, godotenv.Write(env, path))
		return path
	}
	t.Setenv(EnvCloudProvider, "")

	tests := []struct {
		name    string
		url     string
		env     map[string]string
		code    ffi.Code
		noPath  bool
		missing bool
	}{
		{name: "local_provider", env: map[string]string{EnvCloudProvider: "local", EnvLocalPath: dir}, code: ffi.Success},
		{name: "memory_provider", env: map[string]string{EnvCloudProvider: "memory"}, code: ffi.Success},
		{name: "aws_provider", env: map[string]string{EnvCloudProvider: "aws", "AWS_BUCKET": "b"}, code: ffi.InvalidProvider},
		{name: "local_without_path", env: map[string]string{EnvCloudProvider: "local"}, code: ffi.InvalidArgument},
		{name: "unknown_provider", env: map[string]string{EnvCloudProvider: "ftp"}, code: ffi.InvalidProvider},
		{name: "nothing_configured", code: ffi.InvalidProvider},
		{name: "missing_env_file", missing: true, code: ffi.IOError},
		{name: "empty_path", url: "memory://", noPath: true, code: ffi.InvalidArgument},
		{name: "unsupported_scheme", url: "ftp://host/x", code: ffi.InvalidProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			envFile := ""
			switch {
			case tt.env != nil:
				envFile = writeEnv(t, tt.env)
			case tt.missing:
				envFile = filepath.Join(t.TempDir(), "absent.env")
			}
			path := "db"
			if tt.noPath {
				path = ""
			}
			hr := e.Open(path, tt.url, envFile)
			if tt.code == ffi.Success {
				requireOK(t, e, hr.Result)
				requireOK(t, e, e.Close(hr.Handle))
			} else {
				requireCode(t, e, tt.code, hr.Result)
			}
			requireClean(t, e)
		})
	}
}

func TestEngineReader(t *testing.T) {
	e := New()
	url := "file://" + t.TempDir()

	hr := e.ReaderOpen("db", url, "", "", nil)
	requireCode(t, e, ffi.IOError, hr.Result)

	db := openDB(t, e, url)
	put(t, e, db, "user:1", "alice")
	put(t, e, db, "user:2", "bob")
	requireOK(t, e, e.Flush(db))

	hr = e.ReaderOpen("db", url, "", "0195a3c2-0000-7000-8000-000000000000", nil)
	requireCode(t, e, ffi.NotFound, hr.Result)

	hr = e.ReaderOpen("db", url, "", "", &ffi.ReaderOptions{ManifestPollIntervalMs: 100, SkipWalReplay: 1})
	requireOK(t, e, hr.Result)
	r := hr.Handle

	v, res := e.ReaderGet(r, []byte("user:1"), &ffi.ReadOptions{DurabilityFilter: ffi.DurabilityRemote})
	requireOK(t, e, res)
	require.Equal(t, "alice", string(e.Load(v)))
	e.FreeValue(v)

	it, res := e.ReaderScanPrefix(r, []byte("user:"), nil)
	requireOK(t, e, res)
	require.Equal(t, []string{"user:1", "user:2"}, drain(t, e, it))
	requireOK(t, e, e.IteratorClose(it))

	it, res = e.ReaderScan(r, []byte("user:2"), nil, nil)
	requireOK(t, e, res)
	require.Equal(t, []string{"user:2"}, drain(t, e, it))
	requireOK(t, e, e.IteratorClose(it))

	// Readers cannot write.
	requireCode(t, e, ffi.InvalidHandle, e.Put(r, []byte("k"), nil, nil, nil))

	requireOK(t, e, e.Close(db))
	requireOK(t, e, e.ReaderClose(r))

	// With no writer attached the reader opens the files read-only.
	hr = e.ReaderOpen("db", url, "", "", nil)
	requireOK(t, e, hr.Result)
	requireCode(t, e, ffi.IOError, e.Open("db", url, "").Result)
	requireOK(t, e, e.ReaderClose(hr.Handle))
	requireClean(t, e)
}

func TestEngineIteratorOutlivesDatabase(t *testing.T) {
	e := New()
	db := openDB(t, e, "file://"+t.TempDir())
	put(t, e, db, "a", "1")
	put(t, e, db, "b", "2")

	it, r := e.Scan(db, nil, nil, nil)
	requireOK(t, e, r)
	requireOK(t, e, e.Close(db))
	require.Equal(t, []string{"a", "b"}, drain(t, e, it))
	requireOK(t, e, e.IteratorClose(it))
	requireClean(t, e)
}

func TestEngineArena(t *testing.T) {
	e := New()
	_, r := e.Get(12345, []byte("k"), nil)
	require.Equal(t, ffi.InvalidHandle, r.Code)

	e.FreeResult(r)
	e.FreeResult(r)
	require.Equal(t, 1, e.Accounting().DoubleFrees)

	require.Empty(t, e.LoadString(r.Message))
	require.Equal(t, 1, e.Accounting().StaleReads)
	require.Zero(t, e.Accounting().Outstanding)

	// Zero addresses are absent, not errors.
	e.FreeValue(ffi.Value{})
	require.Nil(t, e.Load(ffi.Value{}))
	require.Equal(t, Accounting{DoubleFrees: 1, StaleReads: 1}, e.Accounting())
}

func TestEngineSettingsAndLogging(t *testing.T) {
	e := New()

	doc := e.SettingsDefault()
	require.NotZero(t, doc)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(e.LoadString(doc)), &m))
	e.FreeString(doc)
	assert.Equal(t, "100ms", m["flush_interval"])
	assert.Equal(t, "1s", m["manifest_poll_interval"])

	require.Zero(t, e.SettingsFromFile(filepath.Join(t.TempDir(), "missing.json")))

	t.Setenv("SLATEDB_TEST_L0_MAX_SSTS", "16")
	doc = e.SettingsFromEnv("SLATEDB_TEST")
	require.NotZero(t, doc)
	require.NoError(t, json.Unmarshal([]byte(e.LoadString(doc)), &m))
	e.FreeString(doc)
	assert.EqualValues(t, 16, m["l0_max_ssts"])

	requireCode(t, e, ffi.InvalidArgument, e.InitLogging("loud"))
	requireOK(t, e, e.InitLogging("warn"))
	require.Equal(t, Accounting{}, e.Accounting())
}
