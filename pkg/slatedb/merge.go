package slatedb

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/eigerco/slatedb-go/internal/ffi"
)

// BuildSettings returns the engine's default settings document with
// overrides merged in. Fields overrides leaves nil keep their default.
func (r *Runtime) BuildSettings(overrides *Settings) (string, error) {
	return buildSettings(r.b, overrides)
}

func buildSettings(b ffi.Boundary, overrides *Settings) (string, error) {
	defaults, err := consumeString(b, b.SettingsDefault())
	if err != nil {
		return "", err
	}
	base, err := decodeObject([]byte(defaults))
	if err != nil {
		return "", fmt.Errorf("slatedb: decode default settings: %w", err)
	}

	if overrides != nil {
		raw, err := json.Marshal(overrides)
		if err != nil {
			return "", fmt.Errorf("slatedb: encode settings: %w", err)
		}
		over, err := decodeObject(raw)
		if err != nil {
			return "", err
		}
		mergeObjects(base, dropNulls(over))
	}

	out, err := json.Marshal(base)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeObject decodes a JSON object keeping numbers exact.
func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// mergeObjects overlays src onto dst. Where both sides hold an object the
// merge recurses; otherwise the src value replaces the dst value.
func mergeObjects(dst, src map[string]any) {
	for k, v := range src {
		srcObj, ok := v.(map[string]any)
		if dstObj, isObj := dst[k].(map[string]any); ok && isObj {
			mergeObjects(dstObj, srcObj)
			continue
		}
		dst[k] = v
	}
}

// dropNulls removes absent values so they never replace a default.
func dropNulls(m map[string]any) map[string]any {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			m[k] = dropNulls(t)
		}
	}
	return m
}
