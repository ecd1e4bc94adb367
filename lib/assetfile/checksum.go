// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package assetfile

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is the 32-byte keyed BLAKE3 digest stored in the container
// header and recomputed over the payload on every load.
type Digest [32]byte

// payloadDomainKey is the BLAKE3 key for payload digests. It is a
// fixed constant — changing it invalidates every existing container.
// The byte values are the ASCII encoding of the domain name,
// zero-padded to 32 bytes. Using readable ASCII makes the key
// inspectable in hex dumps and debuggers without sacrificing any
// cryptographic property (BLAKE3 keyed mode treats the key as an
// opaque 32-byte value).
var payloadDomainKey = [32]byte{
	'p', 'r', 'e', 'f', 'a', 'b', '.', 'a', 's', 's', 'e', 't', 'f', 'i', 'l', 'e',
	'.', 'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0, 0, 0, 0,
}

// zeroDigest is the placeholder the legacy baking toolchain wrote in
// place of a real checksum. IntegrityLegacy accepts it; a non-zero
// mismatch is rejected in every mode.
var zeroDigest Digest

// SumPayload computes the payload-domain digest over the stored
// payload bytes. The digest covers the compressed frame exactly as it
// appears in the file, so verification never requires decompression.
func SumPayload(payload []byte) Digest {
	hasher, err := blake3.NewKeyed(payloadDomainKey[:])
	if err != nil {
		// NewKeyed only fails on wrong key length, which the
		// fixed-size array rules out.
		panic("assetfile: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(payload)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// FormatDigest returns the hex-encoded string representation of a
// digest. This is the canonical format in logs and CLI output.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a 64-character hex string into a Digest.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing payload digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("payload digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}
