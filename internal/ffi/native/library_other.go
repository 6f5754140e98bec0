//go:build !darwin

package native

import "github.com/eigerco/slatedb-go/internal/ffi"

// Library is unavailable on this platform.
type Library struct {
	ffi.Boundary
}

func Load(string) (*Library, error) {
	return nil, ErrUnsupportedPlatform
}
