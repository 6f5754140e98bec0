package slatedb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Values cross the boundary untagged: int32 and int64 as big-endian two's
// complement, float64 as big-endian IEEE-754, bool as one byte and strings as
// UTF-8. Decode with the kind used to encode.

var ErrUnsupportedType = errors.New("slatedb: unsupported value type")

// DecodeError reports a fixed-width value of the wrong length.
type DecodeError struct {
	Kind     string
	Expected int
	Actual   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("slatedb: decode %s: expected %d bytes, got %d", e.Kind, e.Expected, e.Actual)
}

// Value is the set of types with a boundary encoding.
type Value interface {
	string | int32 | int64 | bool | float64 | []byte
}

// Encode encodes any supported value. int is encoded as int64.
func Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return EncodeString(t), nil
	case int32:
		return EncodeInt32(t), nil
	case int64:
		return EncodeInt64(t), nil
	case int:
		return EncodeInt64(int64(t)), nil
	case bool:
		return EncodeBool(t), nil
	case float64:
		return EncodeFloat64(t), nil
	case []byte:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// EncodeValue is the typed form of Encode.
func EncodeValue[T Value](v T) []byte {
	b, _ := Encode(any(v))
	return b
}

func EncodeString(s string) []byte { return []byte(s) }

func EncodeInt32(v int32) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(v))
}

func EncodeInt64(v int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(v))
}

func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func EncodeFloat64(v float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(v))
}

// Decode decodes b as T.
func Decode[T Value](b []byte) (T, error) {
	var (
		zero T
		out  any
		err  error
	)
	switch any(zero).(type) {
	case string:
		out = DecodeString(b)
	case int32:
		out, err = DecodeInt32(b)
	case int64:
		out, err = DecodeInt64(b)
	case bool:
		out, err = DecodeBool(b)
	case float64:
		out, err = DecodeFloat64(b)
	case []byte:
		out = DecodeBytes(b)
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func DecodeString(b []byte) string { return string(b) }

// DecodeBytes returns a copy of b.
func DecodeBytes(b []byte) []byte {
	return append([]byte{}, b...)
}

func DecodeInt32(b []byte) (int32, error) {
	if err := checkWidth("int32", b, 4); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func DecodeInt64(b []byte) (int64, error) {
	if err := checkWidth("int64", b, 8); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func DecodeBool(b []byte) (bool, error) {
	if err := checkWidth("bool", b, 1); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func DecodeFloat64(b []byte) (float64, error) {
	if err := checkWidth("float64", b, 8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func checkWidth(kind string, b []byte, n int) error {
	if len(b) != n {
		return &DecodeError{Kind: kind, Expected: n, Actual: len(b)}
	}
	return nil
}
