// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package assetfile

import "errors"

// Load failures are classified into four categories so callers can
// distinguish "this file is not a container" from "this container was
// damaged in transit" without string matching. Every error returned
// by [Open] and [DecodeHeader] wraps exactly one of these sentinels;
// use the predicates below to test for them.
var (
	errCorrupt            = errors.New("corrupt container")
	errUnsupportedVersion = errors.New("unsupported container version")
	errIntegrity          = errors.New("payload integrity check failed")
	errDeserialize        = errors.New("payload deserialization failed")
)

// IsCorrupt reports whether err indicates a truncated or garbled
// container: too few bytes for the header, wrong magic, or a data
// offset that points outside the file.
func IsCorrupt(err error) bool {
	return errors.Is(err, errCorrupt)
}

// IsUnsupportedVersion reports whether err indicates a container
// written by a format version this package does not understand.
func IsUnsupportedVersion(err error) bool {
	return errors.Is(err, errUnsupportedVersion)
}

// IsIntegrityError reports whether err indicates a payload digest
// mismatch: the header parsed cleanly but the stored payload bytes do
// not hash to the digest the header promises.
func IsIntegrityError(err error) bool {
	return errors.Is(err, errIntegrity)
}

// IsDeserializationError reports whether err indicates that the
// payload passed its integrity check but could not be decompressed or
// decoded into registries.
func IsDeserializationError(err error) bool {
	return errors.Is(err, errDeserialize)
}
