// Package envelope frames values stored by the embedded engine.
//
// Layout:
//
//	+-------+---------------+-----------------+----------------+
//	| codec | expire_at(8B) | payload (codec) | xxh3 (8B, BE)  |
//	+-------+---------------+-----------------+----------------+
//
// expire_at is Unix milliseconds, big-endian; zero means the entry never
// expires. The checksum covers every byte before it.
package envelope

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
)

const (
	headerSize  = 1 + 8
	trailerSize = 8
)

var (
	ErrCorrupt  = errors.New("envelope: truncated entry")
	ErrChecksum = errors.New("envelope: checksum mismatch")
)

// Entry is a decoded stored value.
type Entry struct {
	Value    []byte
	ExpireAt int64
}

// Expired reports whether the entry is past its expiry at nowMs.
func (e Entry) Expired(nowMs int64) bool {
	return e.ExpireAt != 0 && nowMs >= e.ExpireAt
}

// Encode compresses value with c and frames it.
func Encode(c Codec, value []byte, expireAt int64) ([]byte, error) {
	payload, err := compress(c, value)
	if err != nil {
		return nil, err
	}
	out := make([]byte, headerSize+len(payload)+trailerSize)
	out[0] = byte(c)
	binary.BigEndian.PutUint64(out[1:headerSize], uint64(expireAt))
	copy(out[headerSize:], payload)
	sum := xxh3.Hash(out[:headerSize+len(payload)])
	binary.BigEndian.PutUint64(out[headerSize+len(payload):], sum)
	return out, nil
}

// Decode verifies and unframes b.
func Decode(b []byte) (Entry, error) {
	if len(b) < headerSize+trailerSize {
		return Entry{}, ErrCorrupt
	}
	body := b[:len(b)-trailerSize]
	if xxh3.Hash(body) != binary.BigEndian.Uint64(b[len(body):]) {
		return Entry{}, ErrChecksum
	}
	value, err := decompress(Codec(b[0]), body[headerSize:])
	if err != nil {
		return Entry{}, fmt.Errorf("envelope: %w", err)
	}
	return Entry{
		Value:    value,
		ExpireAt: int64(binary.BigEndian.Uint64(body[1:headerSize])),
	}, nil
}
