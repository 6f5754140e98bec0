package slatedb

import "github.com/eigerco/slatedb-go/internal/ffi"

// Scan iterates the half-open range [start, end) in ascending key order. A
// nil or empty start begins at the first key and a nil or empty end runs to
// the last. nil opts uses the engine defaults.
func (r *readable) Scan(start, end []byte, opts *ScanOptions) (*Iterator, error) {
	t, err := r.h.acquire()
	if err != nil {
		return nil, err
	}
	it, res := r.scan(t, start, end, opts.native())
	return r.iterator(it, res)
}

// ScanPrefix iterates every key that starts with prefix.
func (r *readable) ScanPrefix(prefix []byte, opts *ScanOptions) (*Iterator, error) {
	t, err := r.h.acquire()
	if err != nil {
		return nil, err
	}
	it, res := r.scanPrefix(t, prefix, opts.native())
	return r.iterator(it, res)
}

func (r *readable) iterator(token ffi.Handle, res ffi.Result) (*Iterator, error) {
	if err := check(r.b, res); err != nil {
		return nil, err
	}
	return &Iterator{b: r.b, h: handle{token: token}, parent: &r.h}, nil
}

// PrefixUpperBound returns the smallest key greater than every key starting
// with prefix: the prefix with its last byte below 0xff incremented and the
// bytes after it dropped. It returns nil, meaning unbounded, when prefix is
// empty or all 0xff.
func PrefixUpperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
