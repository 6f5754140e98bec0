// Package settings owns the engine's configuration document: the compiled-in
// defaults, and the loaders for files and environment variables.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eigerco/slatedb-go/internal/engine/envelope"
)

var ErrInvalid = errors.New("settings: invalid document")

// Settings is the engine's full configuration. Field names follow the
// snake_case document shape shared with the client.
type Settings struct {
	FlushInterval           *Duration                `json:"flush_interval"`
	WalEnabled              bool                     `json:"wal_enabled"`
	ManifestPollInterval    Duration                 `json:"manifest_poll_interval"`
	ManifestUpdateTimeout   Duration                 `json:"manifest_update_timeout"`
	MinFilterKeys           uint32                   `json:"min_filter_keys"`
	FilterBitsPerKey        uint32                   `json:"filter_bits_per_key"`
	L0SstSizeBytes          uint64                   `json:"l0_sst_size_bytes"`
	L0MaxSsts               uint64                   `json:"l0_max_ssts"`
	MaxUnflushedBytes       uint64                   `json:"max_unflushed_bytes"`
	CompactorOptions        *CompactorOptions        `json:"compactor_options"`
	CompressionCodec        *string                  `json:"compression_codec"`
	ObjectStoreCacheOptions CacheOptions             `json:"object_store_cache_options"`
	GarbageCollectorOptions *GarbageCollectorOptions `json:"garbage_collector_options"`
	// DefaultTTL is in milliseconds.
	DefaultTTL *uint64 `json:"default_ttl"`
}

type CompactorOptions struct {
	PollInterval             Duration          `json:"poll_interval"`
	ManifestUpdateTimeout    Duration          `json:"manifest_update_timeout"`
	MaxSstSize               uint64            `json:"max_sst_size"`
	MaxConcurrentCompactions uint64            `json:"max_concurrent_compactions"`
	SchedulerOptions         map[string]string `json:"scheduler_options"`
}

type CacheOptions struct {
	RootFolder                *string   `json:"root_folder"`
	MaxCacheSizeBytes         *uint64   `json:"max_cache_size_bytes"`
	PartSizeBytes             uint64    `json:"part_size_bytes"`
	CachePuts                 bool      `json:"cache_puts"`
	PreloadDiskCacheOnStartup *string   `json:"preload_disk_cache_on_startup"`
	ScanInterval              *Duration `json:"scan_interval"`
}

type GarbageCollectorOptions struct {
	ManifestOptions    *GcDirectoryOptions `json:"manifest_options"`
	WalOptions         *GcDirectoryOptions `json:"wal_options"`
	CompactedOptions   *GcDirectoryOptions `json:"compacted_options"`
	CompactionsOptions *GcDirectoryOptions `json:"compactions_options"`
}

type GcDirectoryOptions struct {
	Interval *Duration `json:"interval"`
	MinAge   Duration  `json:"min_age"`
}

// Default returns the compiled-in defaults.
func Default() Settings {
	flush := Millis(100)
	cacheSize := uint64(16 << 30)
	scan := Seconds(3600)
	gcDir := func() *GcDirectoryOptions {
		interval := Seconds(60)
		return &GcDirectoryOptions{Interval: &interval, MinAge: Seconds(86400)}
	}
	return Settings{
		FlushInterval:         &flush,
		WalEnabled:            true,
		ManifestPollInterval:  Seconds(1),
		ManifestUpdateTimeout: Seconds(300),
		MinFilterKeys:         1000,
		FilterBitsPerKey:      10,
		L0SstSizeBytes:        64 << 20,
		L0MaxSsts:             8,
		MaxUnflushedBytes:     1 << 30,
		CompactorOptions: &CompactorOptions{
			PollInterval:             Seconds(5),
			ManifestUpdateTimeout:    Seconds(300),
			MaxSstSize:               256 << 20,
			MaxConcurrentCompactions: 4,
			SchedulerOptions: map[string]string{
				"min_compaction_sources": "4",
				"max_compaction_sources": "8",
				"include_size_threshold": "4",
			},
		},
		ObjectStoreCacheOptions: CacheOptions{
			MaxCacheSizeBytes: &cacheSize,
			PartSizeBytes:     4 << 20,
			ScanInterval:      &scan,
		},
		GarbageCollectorOptions: &GarbageCollectorOptions{
			ManifestOptions:    gcDir(),
			WalOptions:         gcDir(),
			CompactedOptions:   gcDir(),
			CompactionsOptions: gcDir(),
		},
	}
}

// Document returns s as a generic tree.
func (s Settings) Document() (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DefaultJSON returns the default document serialized as JSON.
func DefaultJSON() (string, error) {
	raw, err := json.Marshal(Default())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Parse decodes and validates a complete or partial JSON document. Fields
// missing from doc keep their defaults.
func Parse(doc string) (Settings, error) {
	return FromTree(nil, []byte(doc))
}

// FromTree overlays each JSON layer onto the defaults in order, then decodes
// the result strictly.
func FromTree(layers []map[string]any, raw ...[]byte) (Settings, error) {
	base, err := Default().Document()
	if err != nil {
		return Settings{}, err
	}
	for _, layer := range layers {
		Merge(base, layer)
	}
	for _, r := range raw {
		var layer map[string]any
		if err := json.Unmarshal(r, &layer); err != nil {
			return Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		Merge(base, layer)
	}

	merged, err := json.Marshal(base)
	if err != nil {
		return Settings{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	var s Settings
	if err := dec.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Merge overlays src onto dst: nested objects merge, everything else replaces.
func Merge(dst, src map[string]any) {
	for k, v := range src {
		srcObj, srcIsObj := v.(map[string]any)
		dstObj, dstIsObj := dst[k].(map[string]any)
		if srcIsObj && dstIsObj {
			Merge(dstObj, srcObj)
			continue
		}
		dst[k] = v
	}
}

// Validate checks the enumerations and ranges the engine relies on.
func (s Settings) Validate() error {
	if s.CompressionCodec != nil {
		if _, err := envelope.ParseCodec(*s.CompressionCodec); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if p := s.ObjectStoreCacheOptions.PreloadDiskCacheOnStartup; p != nil {
		switch *p {
		case "l0sst", "allsst":
		default:
			return fmt.Errorf("%w: unknown preload level %q", ErrInvalid, *p)
		}
	}
	if s.FilterBitsPerKey > 64 {
		return fmt.Errorf("%w: filter_bits_per_key %d out of range", ErrInvalid, s.FilterBitsPerKey)
	}
	return nil
}

// Codec returns the configured value compression.
func (s Settings) Codec() envelope.Codec {
	if s.CompressionCodec == nil {
		return envelope.NoCompression
	}
	c, _ := envelope.ParseCodec(*s.CompressionCodec)
	return c
}
