package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix read by Load.
const EnvPrefix = "SLATEDB"

// Candidate file names searched by Load, in order.
var loadCandidates = []string{"SlateDb.toml", "SlateDb.json", "SlateDb.yaml", "SlateDb.yml"}

var ErrUnsupportedFormat = errors.New("settings: unsupported file format")

// FromFile reads a settings file (.json, .toml, .yaml, .yml) and overlays it
// onto the defaults.
func FromFile(path string) (Settings, error) {
	layer, err := readFile(path)
	if err != nil {
		return Settings{}, err
	}
	return FromTree([]map[string]any{layer})
}

// FromEnv overlays variables named PREFIX_FIELD onto the defaults. Nested
// fields are separated by a double underscore, e.g.
// SLATEDB_COMPACTOR_OPTIONS__POLL_INTERVAL=10s.
func FromEnv(prefix string) (Settings, error) {
	layer, err := envLayer(prefix)
	if err != nil {
		return Settings{}, err
	}
	return FromTree([]map[string]any{layer})
}

// Load overlays the first settings file found in the working directory, then
// SLATEDB_ environment variables.
func Load() (Settings, error) {
	var layers []map[string]any
	for _, name := range loadCandidates {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		layer, err := readFile(name)
		if err != nil {
			return Settings{}, err
		}
		layers = append(layers, layer)
		break
	}
	layer, err := envLayer(EnvPrefix)
	if err != nil {
		return Settings{}, err
	}
	return FromTree(append(layers, layer))
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var layer map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &layer)
	case ".toml":
		err = toml.Unmarshal(data, &layer)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &layer)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return normalize(layer), nil
}

// normalize rewrites decoder-specific containers into the shapes produced by
// encoding/json so Merge sees one representation.
func normalize(v map[string]any) map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = normalizeValue(val)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalize(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeValue(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

// envLayer reads the environment overrides for prefix. Variables that do not
// name a top-level settings field (SLATEDB_LIBRARY_PATH, for one) are ignored.
func envLayer(prefix string) (map[string]any, error) {
	doc, err := Default().Document()
	if err != nil {
		return nil, err
	}
	layer := readEnv(prefix, os.Environ())
	for k := range layer {
		if _, ok := doc[k]; !ok {
			delete(layer, k)
		}
	}
	return layer, nil
}

func readEnv(prefix string, environ []string) map[string]any {
	layer := map[string]any{}
	want := strings.ToUpper(prefix) + "_"
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, want) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(name, want)), "__")
		node := layer
		for _, part := range path[:len(path)-1] {
			next, ok := node[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[part] = next
			}
			node = next
		}
		node[path[len(path)-1]] = envValue(value)
	}
	return layer
}

// envValue keeps JSON scalars (numbers, booleans, null) typed and treats
// anything else as a string.
func envValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		switch v.(type) {
		case float64, bool, nil:
			return v
		}
	}
	return raw
}
