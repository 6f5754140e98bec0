// Package store defines the storage backends behind the embedded engine.
package store

import "errors"

var (
	ErrClosed          = errors.New("store: closed")
	ErrNotFound        = errors.New("store: key not found")
	ErrBatchDone       = errors.New("store: batch already committed or closed")
	ErrIteratorInvalid = errors.New("store: iterator is not positioned")
)

// KVStore represents an ordered key-value store. Keys compare byte-wise.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	NewBatch() Batch
	// NewIterator opens an iterator over [start, end); nil bounds are open.
	NewIterator(start, end []byte) (Iterator, error)
	Flush() error
	Stats() Stats
	Close() error
}

// Batch represents an atomic batch of operations.
// All operations in a batch are performed atomically.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	// Commit applies the batch. With sync set the call returns once the
	// write is durable.
	Commit(sync bool) error
	Close() error
}

// Iterator provides sequential access over a range of key-value pairs.
// Iterators must be closed after use.
type Iterator interface {
	First() bool
	Next() bool
	SeekGE(key []byte) bool
	Key() []byte
	Value() ([]byte, error)
	Valid() bool
	Close() error
}

// Stats is a backend-neutral view of store metrics.
type Stats struct {
	DiskSpaceUsage uint64 `json:"disk_space_usage"`
	Flushes        int64  `json:"flushes"`
	Compactions    int64  `json:"compactions"`
}

// Options tune a backend at open time.
type Options struct {
	BlockSize                int
	BloomBitsPerKey          int
	L0StopWritesThreshold    int
	MaxConcurrentCompactions int
	ReadOnly                 bool
}
