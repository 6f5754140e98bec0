package engine

import (
	"sync"

	"github.com/eigerco/slatedb-go/pkg/log"
)

// arena hands out engine-owned buffers under opaque addresses. Addresses are
// never reused, so a second free or a read after free is always detected.
type arena struct {
	mu   sync.Mutex
	next uintptr
	live map[uintptr][]byte

	doubleFrees int
	staleReads  int
}

func newArena() *arena {
	return &arena{
		next: 0x1000,
		live: make(map[uintptr][]byte),
	}
}

func (a *arena) put(b []byte) uintptr {
	buf := make([]byte, len(b))
	copy(buf, b)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.next += 8
	a.live[a.next] = buf
	return a.next
}

func (a *arena) putString(s string) uintptr {
	return a.put([]byte(s))
}

func (a *arena) free(addr uintptr) {
	if addr == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[addr]; !ok {
		a.doubleFrees++
		log.Engine.Warn().Uint64("addr", uint64(addr)).Msg("free of a buffer that is not live")
		return
	}
	delete(a.live, addr)
}

// load returns a view of the buffer at addr; n < 0 means the whole buffer.
func (a *arena) load(addr uintptr, n int) []byte {
	if addr == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.live[addr]
	if !ok {
		a.staleReads++
		log.Engine.Warn().Uint64("addr", uint64(addr)).Msg("read of a buffer that is not live")
		return nil
	}
	if n < 0 || n > len(buf) {
		n = len(buf)
	}
	return buf[:n:n]
}

func (a *arena) accounting() Accounting {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Accounting{
		Outstanding: len(a.live),
		DoubleFrees: a.doubleFrees,
		StaleReads:  a.staleReads,
	}
}
