package native

import "unsafe"

// slicePtr returns a pointer to the first element of a byte slice.
// For empty slices, returns a dummy non-null pointer (the engine rejects null keys).
func slicePtr(s []byte) uintptr {
	if len(s) == 0 {
		return uintptr(unsafe.Pointer(&struct{}{}))
	}
	return uintptr(unsafe.Pointer(&s[0]))
}

// optionalPtr maps a nil bound to NULL so the engine treats it as unbounded.
func optionalPtr(s []byte) uintptr {
	if s == nil {
		return 0
	}
	return slicePtr(s)
}

// cString returns a NUL-terminated copy of s, or nil for "".
func cString(s string) *byte {
	if s == "" {
		return nil
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

func cStringLen(s uintptr) int {
	p := pointer(s)
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return n
}

// pointer converts an engine address without tripping vet's uintptr check;
// the memory is not managed by the Go runtime.
func pointer(u uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&u))
}
