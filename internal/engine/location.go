package engine

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/eigerco/slatedb-go/internal/ffi"
)

// Object store environment keys.
const (
	EnvCloudProvider = "CLOUD_PROVIDER"
	EnvLocalPath     = "LOCAL_PATH"
)

// location names where a database lives.
type location struct {
	key    string
	dir    string
	memory bool
}

// resolveLocation turns the open arguments into a location. An explicit url
// wins; otherwise the provider comes from envFile, then the process
// environment.
func resolveLocation(path, rawURL, envFile string) (location, error) {
	if path == "" {
		return location{}, errorf(ffi.InvalidArgument, "path must not be empty")
	}
	if rawURL == "" {
		u, err := providerURL(envFile)
		if err != nil {
			return location{}, err
		}
		rawURL = u
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return location{}, errorf(ffi.InvalidArgument, "invalid object store url %q: %v", rawURL, err)
	}
	switch u.Scheme {
	case "file":
		root := u.Host + u.Path
		if root == "" {
			return location{}, errorf(ffi.InvalidArgument, "file url %q has no path", rawURL)
		}
		dir, err := filepath.Abs(filepath.Join(root, path))
		if err != nil {
			return location{}, errorf(ffi.InvalidArgument, "resolve %q: %v", root, err)
		}
		return location{key: "file:" + dir, dir: dir}, nil
	case "memory":
		return location{key: "memory:" + u.Host + u.Path + "/" + path, memory: true}, nil
	case "s3", "gs", "az", "azure", "http", "https":
		return location{}, errorf(ffi.InvalidProvider, "object store scheme %q is not available in the embedded engine", u.Scheme)
	default:
		return location{}, errorf(ffi.InvalidProvider, "unsupported object store url %q", rawURL)
	}
}

func providerURL(envFile string) (string, error) {
	env := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		if err != nil {
			return "", errorf(ffi.IOError, "read env file: %v", err)
		}
		env = m
	}
	lookup := func(key string) string {
		if v, ok := env[key]; ok {
			return v
		}
		return os.Getenv(key)
	}

	provider := strings.ToLower(lookup(EnvCloudProvider))
	switch provider {
	case "local":
		root := lookup(EnvLocalPath)
		if root == "" {
			return "", errorf(ffi.InvalidArgument, "%s is required for the local provider", EnvLocalPath)
		}
		return "file://" + root, nil
	case "memory":
		return "memory://", nil
	case "aws", "gcp", "azure":
		return "", errorf(ffi.InvalidProvider, "object store provider %q is not available in the embedded engine", provider)
	case "":
		return "", errorf(ffi.InvalidProvider, "no object store configured: pass a url or set %s", EnvCloudProvider)
	default:
		return "", errorf(ffi.InvalidProvider, "unknown object store provider %q", provider)
	}
}
