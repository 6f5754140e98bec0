package slatedb

import (
	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

// Reader is a read-only view of a database, optionally pinned to a
// checkpoint. It is not safe for concurrent use.
type Reader struct {
	readable
}

func newReader(b ffi.Boundary, token ffi.Handle) *Reader {
	log.Client.Debug().Uint64("handle", uint64(token)).Msg("reader opened")
	return &Reader{readable{
		b:          b,
		h:          handle{token: token},
		get:        b.ReaderGet,
		scan:       b.ReaderScan,
		scanPrefix: b.ReaderScanPrefix,
	}}
}

// Close releases the reader. Closing twice is a no-op.
func (r *Reader) Close() error {
	return r.h.release(func(t ffi.Handle) error {
		log.Client.Debug().Uint64("handle", uint64(t)).Msg("reader closed")
		return check(r.b, r.b.ReaderClose(t))
	})
}
