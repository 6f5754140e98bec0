package slatedb

import "fmt"

// Pager reads a key range in pages of bounded size. Each page is a fresh scan
// starting at the cursor, so pages observe writes made between them.
type Pager struct {
	r        Readable
	cursor   []byte
	end      []byte
	pageSize int
	opts     *ScanOptions
	done     bool
}

// Paginate pages through [start, end) on r.
func Paginate(r Readable, start, end []byte, pageSize int) *Pager {
	return &Pager{r: r, cursor: start, end: end, pageSize: pageSize}
}

// PaginatePrefix pages through every key starting with prefix.
func PaginatePrefix(r Readable, prefix []byte, pageSize int) *Pager {
	return Paginate(r, prefix, PrefixUpperBound(prefix), pageSize)
}

// WithScanOptions sets the options used for each page's scan.
func (p *Pager) WithScanOptions(opts ScanOptions) *Pager {
	p.opts = &opts
	return p
}

// Done reports whether the range has been fully read.
func (p *Pager) Done() bool {
	return p.done
}

// NextPage returns up to pageSize entries. An empty page means the range is
// exhausted. The cursor for the following page is the last key with a zero
// byte appended, the smallest key after it.
func (p *Pager) NextPage() (page []KeyValue, err error) {
	if p.pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size %d", ErrInvalidArgument, p.pageSize)
	}
	if p.done {
		return nil, nil
	}

	it, err := p.r.Scan(p.cursor, p.end, p.opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := it.Close(); err == nil {
			err = cerr
		}
	}()

	page = make([]KeyValue, 0, p.pageSize)
	for len(page) < p.pageSize {
		kv, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			p.done = true
			break
		}
		page = append(page, kv)
	}
	if !p.done {
		// Look one entry ahead so a full last page also ends the range.
		_, more, err := it.Next()
		if err != nil {
			return nil, err
		}
		p.done = !more
	}
	if n := len(page); n > 0 {
		last := page[n-1].Key
		p.cursor = append(append(make([]byte, 0, len(last)+1), last...), 0)
	}
	return page, nil
}
