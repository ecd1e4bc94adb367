// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package assetfile

import (
	"fmt"
	"log/slog"

	"github.com/dgtforge/prefab/lib/codec"
	"github.com/dgtforge/prefab/lib/compress"
	"github.com/dgtforge/prefab/lib/mmapfile"
	"github.com/dgtforge/prefab/lib/registry"
)

// IntegrityMode selects how the stored payload digest is checked at
// open time.
type IntegrityMode int

const (
	// IntegrityStrict requires the stored digest to match the
	// recomputed payload digest exactly. This is the default.
	IntegrityStrict IntegrityMode = iota

	// IntegrityLegacy additionally accepts an all-zero stored digest,
	// which old baking toolchains wrote as a placeholder. A non-zero
	// mismatch is still rejected: legacy mode tolerates a missing
	// digest, never a wrong one.
	IntegrityLegacy
)

// String returns the mode name as it appears in configuration files.
func (m IntegrityMode) String() string {
	switch m {
	case IntegrityStrict:
		return "strict"
	case IntegrityLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("IntegrityMode(%d)", int(m))
	}
}

// OpenOptions control container verification at load time. The zero
// value verifies strictly, skips registry validation, and discards
// log output.
type OpenOptions struct {
	// Integrity selects digest verification behavior.
	Integrity IntegrityMode

	// Validate cross-checks the decoded registries after loading:
	// referential integrity between registries plus the header's
	// asset count. Problems are logged as warnings, never fatal — a
	// container that decodes cleanly is served as-is.
	Validate bool

	// Logger receives load-time warnings. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Archive is an opened, verified container. The registries are fully
// decoded at open time; the underlying mapping stays alive until
// Close so the raw payload bytes remain readable for re-hashing.
type Archive struct {
	header      Header
	payload     *registry.Payload
	file        *mmapfile.File
	decodedSize int64
}

// Open maps the container at path, verifies it, and decodes its
// payload into typed registries. On any failure the mapping is
// released before returning; the error wraps one of the load failure
// categories (see [IsCorrupt], [IsUnsupportedVersion],
// [IsIntegrityError], [IsDeserializationError]) except for plain I/O
// errors opening the file, which pass through unchanged.
func Open(path string, opts OpenOptions) (*Archive, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	file, err := mmapfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}

	// Release the mapping on any failure path.
	success := false
	defer func() {
		if !success {
			file.Close()
		}
	}()

	if file.Size() < HeaderSize {
		return nil, fmt.Errorf("%w: file is %d bytes, want at least %d",
			errCorrupt, file.Size(), HeaderSize)
	}

	headerBytes, err := file.Read(0, HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", errCorrupt, err)
	}

	header, err := DecodeHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	if int64(header.DataOffset) > file.Size() {
		return nil, fmt.Errorf("%w: data offset %d is past the end of the %d-byte file",
			errCorrupt, header.DataOffset, file.Size())
	}

	frame, err := file.Read(int64(header.DataOffset), file.Size()-int64(header.DataOffset))
	if err != nil {
		return nil, fmt.Errorf("%w: reading payload: %v", errCorrupt, err)
	}

	if computed := SumPayload(frame); computed != header.Checksum {
		if opts.Integrity == IntegrityLegacy && header.Checksum == zeroDigest {
			logger.Warn("container has a legacy zero checksum; payload integrity not verified",
				"path", path)
		} else {
			return nil, fmt.Errorf("%w: payload digest %s, header says %s",
				errIntegrity, FormatDigest(computed), FormatDigest(header.Checksum))
		}
	}

	body, err := compress.Decompress(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing payload: %v", errDeserialize, err)
	}

	payload := new(registry.Payload)
	if err := codec.Unmarshal(body, payload); err != nil {
		return nil, fmt.Errorf("%w: decoding payload: %v", errDeserialize, err)
	}

	if opts.Validate {
		if err := payload.Validate(); err != nil {
			logger.Warn("container failed validation; loading anyway",
				"path", path, "error", err)
		}
		if decoded := uint32(payload.EntryCount()); decoded != header.AssetCount {
			logger.Warn("asset count mismatch between header and decoded registries",
				"path", path, "header_count", header.AssetCount, "decoded_count", decoded)
		}
	}

	success = true
	return &Archive{
		header:      header,
		payload:     payload,
		file:        file,
		decodedSize: int64(len(body)),
	}, nil
}

// Header returns the decoded container header.
func (a *Archive) Header() Header {
	return a.header
}

// Payload returns the decoded registries. The returned pointer is
// shared; callers must treat it as read-only.
func (a *Archive) Payload() *registry.Payload {
	return a.payload
}

// Path returns the path the container was opened from.
func (a *Archive) Path() string {
	return a.file.Path()
}

// Size returns the container file size in bytes.
func (a *Archive) Size() int64 {
	return a.file.Size()
}

// CompressedSize returns the stored payload size in bytes: everything
// from the data offset to the end of the file.
func (a *Archive) CompressedSize() int64 {
	return a.file.Size() - int64(a.header.DataOffset)
}

// DecodedSize returns the payload size after decompression, before
// CBOR decoding.
func (a *Archive) DecodedSize() int64 {
	return a.decodedSize
}

// Close releases the underlying file mapping. The decoded registries
// remain usable after Close; only raw byte access goes away. Close is
// idempotent.
func (a *Archive) Close() error {
	return a.file.Close()
}
