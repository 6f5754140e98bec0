package envelope

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression applied to a stored value.
type Codec uint8

const (
	NoCompression Codec = iota
	Snappy
	Zlib
	LZ4
	Zstd
)

func (c Codec) String() string {
	switch c {
	case NoCompression:
		return "none"
	case Snappy:
		return "snappy"
	case Zlib:
		return "zlib"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec maps a settings compression_codec value onto a Codec.
// An empty name selects no compression.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "":
		return NoCompression, nil
	case "snappy":
		return Snappy, nil
	case "zlib":
		return Zlib, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unsupported compression codec %q", name)
	}
}

// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

func compress(c Codec, data []byte) ([]byte, error) {
	switch c {
	case NoCompression:
		return data, nil

	case Snappy:
		return snappy.Encode(nil, data), nil

	case Zlib:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("zlib write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("zlib close: %w", err)
		}
		return buf.Bytes(), nil

	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 close: %w", err)
		}
		return buf.Bytes(), nil

	case Zstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	default:
		return nil, fmt.Errorf("unsupported compression codec: %s", c)
	}
}

func decompress(c Codec, data []byte) ([]byte, error) {
	switch c {
	case NoCompression:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil

	case Snappy:
		return snappy.Decode(nil, data)

	case Zlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zlib reader: %w", err)
		}
		defer r.Close() //nolint:errcheck
		return io.ReadAll(r)

	case LZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))

	case Zstd:
		return zstdDecoder.DecodeAll(data, nil)

	default:
		return nil, fmt.Errorf("unsupported compression codec: %s", c)
	}
}
