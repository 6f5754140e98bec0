package slatedb

import (
	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

// Readable is implemented by DB and Reader.
type Readable interface {
	Get(key []byte) ([]byte, bool, error)
	GetWithOptions(key []byte, opts ReadOptions) ([]byte, bool, error)
	GetString(key string) (string, bool, error)
	Scan(start, end []byte, opts *ScanOptions) (*Iterator, error)
	ScanPrefix(prefix []byte, opts *ScanOptions) (*Iterator, error)
	Close() error
}

// readable carries the read path shared by DB and Reader; only the boundary
// calls differ.
type readable struct {
	b ffi.Boundary
	h handle

	get        func(ffi.Handle, []byte, *ffi.ReadOptions) (ffi.Value, ffi.Result)
	scan       func(ffi.Handle, []byte, []byte, *ffi.ScanOptions) (ffi.Handle, ffi.Result)
	scanPrefix func(ffi.Handle, []byte, *ffi.ScanOptions) (ffi.Handle, ffi.Result)
}

// DB is an open read-write database. A DB is not safe for concurrent use;
// distinct DB values may be used from different goroutines.
//
// Iterators opened from a DB fail with ErrDisposed once the DB is closed and
// should be closed before it.
type DB struct {
	readable
}

var (
	_ Readable = (*DB)(nil)
	_ Readable = (*Reader)(nil)
)

func newDB(b ffi.Boundary, token ffi.Handle) *DB {
	log.Client.Debug().Uint64("handle", uint64(token)).Msg("database opened")
	return &DB{readable{
		b:          b,
		h:          handle{token: token},
		get:        b.Get,
		scan:       b.Scan,
		scanPrefix: b.ScanPrefix,
	}}
}

// Close releases the database. Closing twice is a no-op.
func (db *DB) Close() error {
	return db.h.release(func(t ffi.Handle) error {
		log.Client.Debug().Uint64("handle", uint64(t)).Msg("database closed")
		return check(db.b, db.b.Close(t))
	})
}

// Flush persists in-memory writes.
func (db *DB) Flush() error {
	t, err := db.h.acquire()
	if err != nil {
		return err
	}
	return check(db.b, db.b.Flush(t))
}

// Metrics returns the engine's metrics as a JSON document.
func (db *DB) Metrics() (string, error) {
	t, err := db.h.acquire()
	if err != nil {
		return "", err
	}
	v, r := db.b.Metrics(t)
	if err := check(db.b, r); err != nil {
		return "", err
	}
	return string(consumeValue(db.b, v)), nil
}
