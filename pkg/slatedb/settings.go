package slatedb

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Settings is a sparse override of the engine's configuration: nil fields
// keep the engine default. See Runtime.BuildSettings.
type Settings struct {
	FlushInterval           *Duration                `json:"flush_interval,omitempty"`
	WalEnabled              *bool                    `json:"wal_enabled,omitempty"`
	ManifestPollInterval    *Duration                `json:"manifest_poll_interval,omitempty"`
	ManifestUpdateTimeout   *Duration                `json:"manifest_update_timeout,omitempty"`
	MinFilterKeys           *uint32                  `json:"min_filter_keys,omitempty"`
	FilterBitsPerKey        *uint32                  `json:"filter_bits_per_key,omitempty"`
	L0SstSizeBytes          *uint64                  `json:"l0_sst_size_bytes,omitempty"`
	L0MaxSsts               *uint64                  `json:"l0_max_ssts,omitempty"`
	MaxUnflushedBytes       *uint64                  `json:"max_unflushed_bytes,omitempty"`
	CompactorOptions        *CompactorOptions        `json:"compactor_options,omitempty"`
	CompressionCodec        *CompressionCodec        `json:"compression_codec,omitempty"`
	CacheOptions            *CacheOptions            `json:"object_store_cache_options,omitempty"`
	GarbageCollectorOptions *GarbageCollectorOptions `json:"garbage_collector_options,omitempty"`
	// DefaultTTLMs is the TTL in milliseconds applied to puts with TTLDefault.
	DefaultTTLMs *uint64 `json:"default_ttl,omitempty"`
}

type CompactorOptions struct {
	PollInterval             *Duration                   `json:"poll_interval,omitempty"`
	ManifestUpdateTimeout    *Duration                   `json:"manifest_update_timeout,omitempty"`
	MaxSstSize               *uint64                     `json:"max_sst_size,omitempty"`
	MaxConcurrentCompactions *uint64                     `json:"max_concurrent_compactions,omitempty"`
	SchedulerOptions         *CompactionSchedulerOptions `json:"scheduler_options,omitempty"`
}

// CompactionSchedulerOptions is sent to the engine as a string map.
type CompactionSchedulerOptions struct {
	MinCompactionSources *uint64
	MaxCompactionSources *uint64
	IncludeSizeThreshold *float32
}

func (o CompactionSchedulerOptions) MarshalJSON() ([]byte, error) {
	m := map[string]string{}
	if o.MinCompactionSources != nil {
		m["min_compaction_sources"] = strconv.FormatUint(*o.MinCompactionSources, 10)
	}
	if o.MaxCompactionSources != nil {
		m["max_compaction_sources"] = strconv.FormatUint(*o.MaxCompactionSources, 10)
	}
	if o.IncludeSizeThreshold != nil {
		m["include_size_threshold"] = strconv.FormatFloat(float64(*o.IncludeSizeThreshold), 'g', -1, 32)
	}
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

type CacheOptions struct {
	RootFolder                *string       `json:"root_folder,omitempty"`
	MaxCacheSizeBytes         *uint64       `json:"max_cache_size_bytes,omitempty"`
	PartSizeBytes             *uint64       `json:"part_size_bytes,omitempty"`
	CachePuts                 *bool         `json:"cache_puts,omitempty"`
	PreloadDiskCacheOnStartup *PreloadLevel `json:"preload_disk_cache_on_startup,omitempty"`
	ScanInterval              *Duration     `json:"scan_interval,omitempty"`
}

type GarbageCollectorOptions struct {
	ManifestOptions    *GcDirectoryOptions `json:"manifest_options,omitempty"`
	WalOptions         *GcDirectoryOptions `json:"wal_options,omitempty"`
	CompactedOptions   *GcDirectoryOptions `json:"compacted_options,omitempty"`
	CompactionsOptions *GcDirectoryOptions `json:"compactions_options,omitempty"`
}

type GcDirectoryOptions struct {
	Interval *Duration `json:"interval,omitempty"`
	MinAge   *Duration `json:"min_age,omitempty"`
}

// Duration is encoded as "<N>s" when it is a whole number of seconds and as
// "<N>ms" otherwise.
type Duration time.Duration

func (d Duration) String() string {
	ms := time.Duration(d).Milliseconds()
	if ms%1000 == 0 {
		return strconv.FormatInt(ms/1000, 10) + "s"
	}
	return strconv.FormatInt(ms, 10) + "ms"
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type CompressionCodec uint8

const (
	CompressionSnappy CompressionCodec = iota
	CompressionZlib
	CompressionLz4
	CompressionZstd
)

var compressionNames = [...]string{"snappy", "zlib", "lz4", "zstd"}

func (c CompressionCodec) String() string {
	if int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return fmt.Sprintf("CompressionCodec(%d)", uint8(c))
}

func (c CompressionCodec) MarshalText() ([]byte, error) {
	if int(c) >= len(compressionNames) {
		return nil, fmt.Errorf("slatedb: unknown compression codec %d", uint8(c))
	}
	return []byte(c.String()), nil
}

type PreloadLevel uint8

const (
	PreloadL0Sst PreloadLevel = iota
	PreloadAllSst
)

var preloadNames = [...]string{"l0sst", "allsst"}

func (p PreloadLevel) String() string {
	if int(p) < len(preloadNames) {
		return preloadNames[p]
	}
	return fmt.Sprintf("PreloadLevel(%d)", uint8(p))
}

func (p PreloadLevel) MarshalText() ([]byte, error) {
	if int(p) >= len(preloadNames) {
		return nil, fmt.Errorf("slatedb: unknown preload level %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// Ptr returns a pointer to v, for filling Settings fields.
func Ptr[T any](v T) *T {
	return &v
}
