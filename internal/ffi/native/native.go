// Package native binds the slatedb_c shared library with purego.
//
// The boundary returns CSdbResult and friends by value. purego only supports
// struct return values on darwin, so the binding is darwin-only; elsewhere
// Load reports ErrUnsupportedPlatform and callers use the embedded engine.
package native

import "errors"

// EnvLibraryPath overrides the default library search.
const EnvLibraryPath = "SLATEDB_LIBRARY_PATH"

var ErrUnsupportedPlatform = errors.New("native: slatedb_c binding is only available on darwin")
