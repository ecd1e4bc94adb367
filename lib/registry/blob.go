// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"

	"github.com/dgtforge/prefab/lib/codec"
	"github.com/dgtforge/prefab/lib/compress"
)

// EncodeBlob serializes v to CBOR and wraps it in a compression
// frame. This is the convention for bulk per-asset data (sprite
// grids, object blueprints, tile-map runs) stored inside registries.
func EncodeBlob(v any, c compress.Codec) ([]byte, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding blob: %w", err)
	}
	compressed, err := compress.Compress(data, c)
	if err != nil {
		return nil, fmt.Errorf("compressing blob: %w", err)
	}
	return compressed, nil
}

// DecodeBlob inflates a per-asset blob and CBOR-decodes it into v.
// The codec is detected from the blob's frame magic, so registries
// may mix blobs from different bake runs.
func DecodeBlob(data []byte, v any) error {
	raw, err := compress.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompressing blob: %w", err)
	}
	if err := codec.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding blob: %w", err)
	}
	return nil
}
