package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Key derives the memory key for an arbitrary cache key value.
//
// A string is used as-is. Any other value is canonicalized (JSON with
// object keys sorted recursively, so map iteration order never leaks into
// the key) and reduced to the hex SHA-256 of that canonical form.
// Structurally equal inputs therefore share one entry.
func Key(input any) (string, error) {
	if s, ok := input.(string); ok {
		return s, nil
	}

	canonical, err := canonicalize(input)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize key: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// fileName derives the disk file name for a memory key. Hashing again
// keeps arbitrary key strings out of the filesystem namespace.
func fileName(memKey string) string {
	sum := sha256.Sum256([]byte(memKey))
	return hex.EncodeToString(sum[:]) + ".json"
}

// canonicalize renders v as deterministic JSON.
func canonicalize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeCanonical appends the canonical encoding of v to buf. Untyped
// object keys are emitted in sorted order at every nesting level; typed
// values fall through to encoding/json, which already sorts typed map
// keys.
func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")

	case map[string]any:
		buf.WriteByte('{')
		for i, k := range slices.Sorted(maps.Keys(val)) {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(name)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')

	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(raw)
	}

	return nil
}
