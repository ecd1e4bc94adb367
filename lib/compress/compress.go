// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress provides the compression codecs used for container
// payloads and per-asset blobs.
//
// The container header does not record which codec compressed the
// payload. Every supported codec produces a self-describing frame, so
// readers detect the codec from the frame magic instead. Decompress
// accepts data from any supported codec; Compress picks the frame
// format for the codec requested by the writer.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies a compression algorithm. Codecs are never written
// to the container header; they are recovered from the payload's frame
// magic on read.
type Codec uint8

const (
	// Zstd is the default codec for new containers. Best ratio on
	// CBOR registry data with fast decode.
	Zstd Codec = iota

	// Gzip matches the frames produced by the legacy baking
	// toolchain. New containers should prefer Zstd; Gzip support
	// exists so old containers keep loading.
	Gzip

	// LZ4 trades ratio for decode speed. Useful for very large
	// environment payloads on load-latency-sensitive targets.
	LZ4
)

// String returns the codec's configuration name.
func (c Codec) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case Gzip:
		return "gzip"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCodec parses a codec from its configuration name.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "zstd":
		return Zstd, nil
	case "gzip":
		return Gzip, nil
	case "lz4":
		return LZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression codec: %q", name)
	}
}

// Frame magic prefixes for each supported codec.
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// errUnknownFormat is returned by Decompress when the data starts
// with none of the supported frame magics.
var errUnknownFormat = errors.New("unrecognized compression frame")

// IsUnknownFormat returns true if the error indicates data that does
// not begin with any supported compression frame.
func IsUnknownFormat(err error) bool {
	return errors.Is(err, errUnknownFormat)
}

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. zstd.Encoder and zstd.Decoder
// are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Detect reports which codec produced data, based on its frame magic.
func Detect(data []byte) (Codec, bool) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd, true
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4, true
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip, true
	default:
		return 0, false
	}
}

// Compress compresses data into a self-describing frame using the
// requested codec. Small or incompressible inputs still get a frame:
// readers need the magic to pick the decoder, and the container
// checksum covers whatever bytes are stored.
func Compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case Zstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	case Gzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		return buf.Bytes(), nil

	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported compression codec: %d", codec)
	}
}

// Decompress detects the codec from data's frame magic and inflates
// it. Returns an unknown-format error (see IsUnknownFormat) when the
// data starts with no supported magic.
func Decompress(data []byte) ([]byte, error) {
	codec, ok := Detect(data)
	if !ok {
		prefix := data
		if len(prefix) > 4 {
			prefix = prefix[:4]
		}
		return nil, fmt.Errorf("%w: leading bytes % x", errUnknownFormat, prefix)
	}

	switch codec {
	case Zstd:
		result, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return result, nil

	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		result, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		// Close verifies the trailing CRC.
		if err := r.Close(); err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		return result, nil

	case LZ4:
		result, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported compression codec: %d", codec)
	}
}
