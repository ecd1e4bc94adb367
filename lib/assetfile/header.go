// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package assetfile

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	// HeaderSize is the exact byte length of the fixed container
	// header. The payload begins at the header's data offset, which
	// is never smaller than this.
	HeaderSize = 56

	// CurrentVersion is the container format version this package
	// writes.
	CurrentVersion = 1
)

// containerMagic identifies a prefab asset container. The first three
// bytes are ASCII "DGT"; the fourth is the format generation. The
// generation byte is part of the magic, not a version field — format
// revisions bump the header's version instead.
var containerMagic = [4]byte{'D', 'G', 'T', 0x01}

// supportedVersions is the set of container versions this loader
// understands. Writers always emit CurrentVersion.
var supportedVersions = map[uint32]bool{
	1: true,
}

// Header is the decoded form of the 56-byte container prefix.
type Header struct {
	// Version is the container format version.
	Version uint32

	// BuildTime is when the container was baked. Stored on disk as
	// little-endian float64 seconds since the Unix epoch, so
	// round-trips are precise to roughly a microsecond.
	BuildTime time.Time

	// Checksum is the keyed BLAKE3 digest of the stored payload
	// bytes (everything from DataOffset to end of file).
	Checksum Digest

	// AssetCount is the total number of countable entries across all
	// registries: sprites, tiles, objects, environment maps, and
	// interactions.
	AssetCount uint32

	// DataOffset is the byte position where the compressed payload
	// begins. Writers emit HeaderSize; readers honor any offset at or
	// past it, which leaves room for future header extensions.
	DataOffset uint32
}

// EncodeHeader serializes a header into its fixed on-disk form.
func EncodeHeader(header Header) [HeaderSize]byte {
	var buf [HeaderSize]byte
	copy(buf[0:4], containerMagic[:])
	binary.LittleEndian.PutUint32(buf[4:8], header.Version)

	seconds := float64(header.BuildTime.UnixNano()) / float64(time.Second)
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(seconds))

	copy(buf[16:48], header.Checksum[:])
	binary.LittleEndian.PutUint32(buf[48:52], header.AssetCount)
	binary.LittleEndian.PutUint32(buf[52:56], header.DataOffset)
	return buf
}

// DecodeHeader parses and validates a container header from the first
// HeaderSize bytes of data. Structural problems (short data, bad
// magic, a data offset pointing inside the header) report corrupt
// containers; an unknown version reports an unsupported version. Both
// are distinguishable via [IsCorrupt] and [IsUnsupportedVersion].
func DecodeHeader(data []byte) (Header, error) {
	var header Header

	if len(data) < HeaderSize {
		return header, fmt.Errorf("%w: %d bytes is too short for the %d-byte header",
			errCorrupt, len(data), HeaderSize)
	}

	var magic [4]byte
	copy(magic[:], data[0:4])
	if magic != containerMagic {
		return header, fmt.Errorf("%w: bad magic %q", errCorrupt, magic[:])
	}

	header.Version = binary.LittleEndian.Uint32(data[4:8])
	if !supportedVersions[header.Version] {
		return header, fmt.Errorf("%w: version %d (this loader supports version %d)",
			errUnsupportedVersion, header.Version, CurrentVersion)
	}

	seconds := math.Float64frombits(binary.LittleEndian.Uint64(data[8:16]))
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return header, fmt.Errorf("%w: build time is not a finite number", errCorrupt)
	}
	header.BuildTime = time.Unix(0, int64(seconds*float64(time.Second)))

	copy(header.Checksum[:], data[16:48])
	header.AssetCount = binary.LittleEndian.Uint32(data[48:52])
	header.DataOffset = binary.LittleEndian.Uint32(data[52:56])

	if header.DataOffset < HeaderSize {
		return header, fmt.Errorf("%w: data offset %d points inside the %d-byte header",
			errCorrupt, header.DataOffset, HeaderSize)
	}

	return header, nil
}
