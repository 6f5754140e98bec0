package slatedb

import (
	"fmt"
	"time"

	"github.com/eigerco/slatedb-go/internal/ffi"
)

// Durability selects which writes a read observes.
type Durability uint32

const (
	// DurabilityRemote observes only writes persisted to the object store.
	DurabilityRemote Durability = Durability(ffi.DurabilityRemote)
	// DurabilityMemory also observes writes still in memory.
	DurabilityMemory Durability = Durability(ffi.DurabilityMemory)
)

type ReadOptions struct {
	DurabilityFilter Durability
	Dirty            bool
	CacheBlocks      bool
}

func DefaultReadOptions() ReadOptions {
	return ReadOptions{DurabilityFilter: DurabilityMemory, CacheBlocks: true}
}

func (o ReadOptions) native() *ffi.ReadOptions {
	return &ffi.ReadOptions{
		DurabilityFilter: uint32(o.DurabilityFilter),
		Dirty:            ffi.Bool(o.Dirty),
		CacheBlocks:      ffi.Bool(o.CacheBlocks),
	}
}

type ScanOptions struct {
	DurabilityFilter Durability
	Dirty            bool
	ReadAheadBytes   uint64
	CacheBlocks      bool
	MaxFetchTasks    uint64
}

func DefaultScanOptions() ScanOptions {
	return ScanOptions{DurabilityFilter: DurabilityMemory, CacheBlocks: true}
}

func (o *ScanOptions) native() *ffi.ScanOptions {
	if o == nil {
		return nil
	}
	return &ffi.ScanOptions{
		DurabilityFilter: int32(o.DurabilityFilter),
		Dirty:            ffi.Bool(o.Dirty),
		ReadAheadBytes:   o.ReadAheadBytes,
		CacheBlocks:      ffi.Bool(o.CacheBlocks),
		MaxFetchTasks:    o.MaxFetchTasks,
	}
}

type WriteOptions struct {
	// AwaitDurable blocks the write until the engine reports it durable.
	AwaitDurable bool
}

func DefaultWriteOptions() WriteOptions {
	return WriteOptions{AwaitDurable: true}
}

func (o *WriteOptions) native() *ffi.WriteOptions {
	if o == nil {
		return nil
	}
	return &ffi.WriteOptions{AwaitDurable: ffi.Bool(o.AwaitDurable)}
}

// TTLType selects how a put expires.
type TTLType uint32

const (
	// TTLDefault applies the database's default_ttl, if any.
	TTLDefault TTLType = TTLType(ffi.TTLDefault)

	TTLNoExpiry TTLType = TTLType(ffi.TTLNoExpiry)

	// TTLExpireAfter expires the key TTL after the write.
	TTLExpireAfter TTLType = TTLType(ffi.TTLExpireAfter)
)

// PutOptions attaches a TTL policy to a put.
type PutOptions struct {
	TTLType TTLType
	TTL     time.Duration
}

func DefaultTTL() PutOptions { return PutOptions{TTLType: TTLDefault} }

func NoExpiry() PutOptions { return PutOptions{TTLType: TTLNoExpiry} }

func ExpireAfter(ttl time.Duration) PutOptions {
	return PutOptions{TTLType: TTLExpireAfter, TTL: ttl}
}

func (o PutOptions) native() *ffi.PutOptions {
	return &ffi.PutOptions{TTLType: uint32(o.TTLType), TTLValue: uint64(o.TTL.Milliseconds())}
}

// ReaderOptions tune a read-only Reader.
type ReaderOptions struct {
	ManifestPollInterval time.Duration
	CheckpointLifetime   time.Duration
	MaxMemtableBytes     uint64
	SkipWalReplay        bool
}

func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{ManifestPollInterval: time.Second, CheckpointLifetime: 10 * time.Minute}
}

func (o *ReaderOptions) native() *ffi.ReaderOptions {
	if o == nil {
		return nil
	}
	return &ffi.ReaderOptions{
		ManifestPollIntervalMs: uint64(o.ManifestPollInterval.Milliseconds()),
		CheckpointLifetimeMs:   uint64(o.CheckpointLifetime.Milliseconds()),
		MaxMemtableBytes:       o.MaxMemtableBytes,
		SkipWalReplay:          ffi.Bool(o.SkipWalReplay),
	}
}

// SstBlockSize is the block size of the tables a database writes.
type SstBlockSize uint8

const (
	SstBlock1KiB SstBlockSize = iota
	SstBlock2KiB
	SstBlock4KiB
	SstBlock8KiB
	SstBlock16KiB
	SstBlock32KiB
	SstBlock64KiB
)

// Bytes returns the block size in bytes.
func (s SstBlockSize) Bytes() int {
	return 1 << (10 + int(s))
}

func (s SstBlockSize) String() string {
	return fmt.Sprintf("%dKiB", s.Bytes()>>10)
}

// LogLevel is the engine's log verbosity.
type LogLevel uint8

const (
	LogTrace LogLevel = iota
	LogDebug
	LogInfo
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogTrace:
		return "trace"
	case LogDebug:
		return "debug"
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	default:
		return "info"
	}
}

// ParseLogLevel parses a level name as printed by LogLevel.String.
func ParseLogLevel(s string) (LogLevel, error) {
	for l := LogTrace; l <= LogError; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidArgument, s)
}
