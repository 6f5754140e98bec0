// Package ffi describes the boundary between the client and the storage engine:
// the call set, the result codes and the C-layout records that cross it.
//
// Everything the engine hands back (error messages, value buffers, settings
// documents) stays engine-owned until the client returns it with FreeResult or
// FreeValue. Handles are opaque tokens; the client must never alias them.
package ffi

import "fmt"

// Code classifies the outcome of a boundary call.
type Code int32

const (
	Success Code = iota
	InvalidArgument
	NotFound
	AlreadyExists
	IOError
	InternalError
	NullPointer
	InvalidHandle
	InvalidProvider
)

func (c Code) String() string {
	switch c {
	case Success:
		return "Success"
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case IOError:
		return "IOError"
	case InternalError:
		return "InternalError"
	case NullPointer:
		return "NullPointer"
	case InvalidHandle:
		return "InvalidHandle"
	case InvalidProvider:
		return "InvalidProvider"
	default:
		return fmt.Sprintf("Code(%d)", int32(c))
	}
}

// Handle is an opaque, pointer-sized token naming an engine resource.
type Handle uintptr

// Result mirrors CSdbResult. Message is an engine-owned NUL-terminated string
// (zero when absent).
type Result struct {
	Code    Code
	Message uintptr
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Code == Success }

// HandleResult mirrors CSdbHandleResult, CSdbBuilderResult and CSdbReaderHandleResult,
// which share one layout.
type HandleResult struct {
	Handle Handle
	Result Result
}

// Value mirrors CSdbValue: an engine-owned byte region.
type Value struct {
	Data uintptr
	Len  uintptr
}

// KeyValue mirrors CSdbKeyValue.
type KeyValue struct {
	Key   Value
	Value Value
}

// TTL types understood by PutOptions.
const (
	TTLDefault     uint32 = 0
	TTLNoExpiry    uint32 = 1
	TTLExpireAfter uint32 = 2
)

// Durability filters understood by ReadOptions and ScanOptions.
const (
	DurabilityRemote uint32 = 0
	DurabilityMemory uint32 = 1
)

// PutOptions mirrors CSdbPutOptions.
type PutOptions struct {
	TTLType  uint32
	TTLValue uint64
}

// WriteOptions mirrors CSdbWriteOptions. AwaitDurable is a C bool (one byte).
type WriteOptions struct {
	AwaitDurable uint8
}

// ReadOptions mirrors CSdbReadOptions.
type ReadOptions struct {
	DurabilityFilter uint32
	Dirty            uint8
	CacheBlocks      uint8
}

// ScanOptions mirrors CSdbScanOptions.
type ScanOptions struct {
	DurabilityFilter int32
	Dirty            uint8
	ReadAheadBytes   uint64
	CacheBlocks      uint8
	MaxFetchTasks    uint64
}

// ReaderOptions mirrors CSdbReaderOptions.
type ReaderOptions struct {
	ManifestPollIntervalMs uint64
	CheckpointLifetimeMs   uint64
	MaxMemtableBytes       uint64
	SkipWalReplay          uint8
}

// Bool converts a Go bool into a C bool byte.
func Bool(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
