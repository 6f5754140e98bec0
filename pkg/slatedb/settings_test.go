package slatedb

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// changedLines returns the lines a unified diff between two JSON documents
// removes and adds, after both are normalized to indented form.
func changedLines(t *testing.T, from, to string) (removed, added []string) {
	t.Helper()
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(indentJSON(t, from)),
		B:        difflib.SplitLines(indentJSON(t, to)),
		FromFile: "default",
		ToFile:   "merged",
		Context:  0,
	})
	require.NoError(t, err)
	for _, line := range difflib.SplitLines(diff) {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		case strings.HasPrefix(line, "-"):
			removed = append(removed, strings.TrimSpace(line[1:]))
		case strings.HasPrefix(line, "+"):
			added = append(added, strings.TrimSpace(line[1:]))
		}
	}
	return removed, added
}

func indentJSON(t *testing.T, doc string) string {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	out, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return string(out) + "\n"
}

func TestBuildSettings(t *testing.T) {
	rt := newTestRuntime(t)
	defaults, err := rt.SettingsDefault()
	require.NoError(t, err)

	t.Run("nil_overrides_is_default", func(t *testing.T) {
		doc, err := rt.BuildSettings(nil)
		require.NoError(t, err)
		assert.JSONEq(t, defaults, doc)
	})

	t.Run("nested_field_keeps_siblings", func(t *testing.T) {
		doc, err := rt.BuildSettings(&Settings{
			CacheOptions: &CacheOptions{RootFolder: Ptr("/var/cache/slatedb")},
		})
		require.NoError(t, err)

		removed, added := changedLines(t, defaults, doc)
		assert.Equal(t, []string{`"root_folder": null,`}, removed)
		assert.Equal(t, []string{`"root_folder": "/var/cache/slatedb",`}, added)

		var merged, base map[string]any
		require.NoError(t, json.Unmarshal([]byte(doc), &merged))
		require.NoError(t, json.Unmarshal([]byte(defaults), &base))
		cache := merged["object_store_cache_options"].(map[string]any)
		baseCache := base["object_store_cache_options"].(map[string]any)
		assert.Equal(t, baseCache["max_cache_size_bytes"], cache["max_cache_size_bytes"])
		assert.Equal(t, baseCache["scan_interval"], cache["scan_interval"])
		assert.Equal(t, baseCache["part_size_bytes"], cache["part_size_bytes"])
	})

	t.Run("scalars_enums_and_durations", func(t *testing.T) {
		doc, err := rt.BuildSettings(&Settings{
			FlushInterval:    Ptr(Duration(250 * time.Millisecond)),
			L0MaxSsts:        Ptr[uint64](16),
			CompressionCodec: Ptr(CompressionZstd),
			DefaultTTLMs:     Ptr[uint64](60_000),
			CompactorOptions: &CompactorOptions{
				PollInterval: Ptr(Duration(10 * time.Second)),
				SchedulerOptions: &CompactionSchedulerOptions{
					IncludeSizeThreshold: Ptr[float32](2.5),
				},
			},
			GarbageCollectorOptions: &GarbageCollectorOptions{
				WalOptions: &GcDirectoryOptions{MinAge: Ptr(Duration(time.Hour))},
			},
		})
		require.NoError(t, err)

		var merged map[string]any
		require.NoError(t, json.Unmarshal([]byte(doc), &merged))
		assert.Equal(t, "250ms", merged["flush_interval"])
		assert.EqualValues(t, 16, merged["l0_max_ssts"])
		assert.Equal(t, "zstd", merged["compression_codec"])
		assert.EqualValues(t, 60_000, merged["default_ttl"])

		compactor := merged["compactor_options"].(map[string]any)
		assert.Equal(t, "10s", compactor["poll_interval"])
		assert.Equal(t, "300s", compactor["manifest_update_timeout"])
		sched := compactor["scheduler_options"].(map[string]any)
		assert.Equal(t, "2.5", sched["include_size_threshold"])
		assert.Equal(t, "4", sched["min_compaction_sources"])

		wal := merged["garbage_collector_options"].(map[string]any)["wal_options"].(map[string]any)
		assert.Equal(t, "3600s", wal["min_age"])
		assert.Equal(t, "60s", wal["interval"])

		// The engine accepts the merged document.
		bl, err := rt.Builder("db", "memory:///", "")
		require.NoError(t, err)
		require.NoError(t, bl.WithSettingsJSON(doc))
		db, err := bl.Build()
		require.NoError(t, err)
		require.NoError(t, db.Close())
	})
}

func TestSettingsEnums(t *testing.T) {
	for c, want := range map[CompressionCodec]string{
		CompressionSnappy: "snappy",
		CompressionZlib:   "zlib",
		CompressionLz4:    "lz4",
		CompressionZstd:   "zstd",
	} {
		b, err := c.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
	_, err := CompressionCodec(9).MarshalText()
	require.Error(t, err)

	b, err := PreloadAllSst.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "allsst", string(b))
}

func TestSettingsDuration(t *testing.T) {
	assert.Equal(t, "5s", Duration(5*time.Second).String())
	assert.Equal(t, "1500ms", Duration(1500*time.Millisecond).String())
	assert.Equal(t, "0s", Duration(0).String())

	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("250ms")))
	assert.Equal(t, Duration(250*time.Millisecond), d)
}

func TestSettingsFromEngine(t *testing.T) {
	rt := newTestRuntime(t)

	_, err := rt.SettingsFromFile(t.TempDir() + "/missing.toml")
	require.ErrorIs(t, err, ErrNoSettings)

	t.Setenv("CLIENTTEST_L0_MAX_SSTS", "3")
	doc, err := rt.SettingsFromEnv("CLIENTTEST")
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &m))
	assert.EqualValues(t, 3, m["l0_max_ssts"])
}
