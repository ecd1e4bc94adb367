// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package assetfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dgtforge/prefab/lib/codec"
	"github.com/dgtforge/prefab/lib/compress"
	"github.com/dgtforge/prefab/lib/registry"
)

// WriteOptions control container production. The zero value writes a
// zstd-compressed [CurrentVersion] container stamped with the current
// time.
type WriteOptions struct {
	// Codec selects the payload compression frame.
	Codec compress.Codec

	// BuildTime stamps the header. The zero value means time.Now().
	// Set it explicitly for reproducible builds.
	BuildTime time.Time

	// Version stamps the header's format version. The zero value means
	// [CurrentVersion]. Write refuses versions the reader would reject,
	// so a written container is always loadable.
	Version uint32
}

// Write encodes payload into deterministic CBOR, compresses it, and
// writes a complete container to w. The returned header is the one
// written, with the computed digest and asset count filled in.
func Write(w io.Writer, payload *registry.Payload, opts WriteOptions) (Header, error) {
	version := opts.Version
	if version == 0 {
		version = CurrentVersion
	}
	if !supportedVersions[version] {
		return Header{}, fmt.Errorf("%w: cannot write version %d", errUnsupportedVersion, version)
	}

	body, err := codec.Marshal(payload)
	if err != nil {
		return Header{}, fmt.Errorf("encoding payload: %w", err)
	}

	frame, err := compress.Compress(body, opts.Codec)
	if err != nil {
		return Header{}, fmt.Errorf("compressing payload: %w", err)
	}

	buildTime := opts.BuildTime
	if buildTime.IsZero() {
		buildTime = time.Now()
	}

	header := Header{
		Version:    version,
		BuildTime:  buildTime,
		Checksum:   SumPayload(frame),
		AssetCount: uint32(payload.EntryCount()),
		DataOffset: HeaderSize,
	}

	buf := EncodeHeader(header)
	if _, err := w.Write(buf[:]); err != nil {
		return Header{}, fmt.Errorf("writing container header: %w", err)
	}
	if _, err := w.Write(frame); err != nil {
		return Header{}, fmt.Errorf("writing container payload: %w", err)
	}

	return header, nil
}

// WriteFile writes a container to path atomically. The container is
// staged in a temporary file in the same directory and renamed into
// place only after a complete write, so a crash mid-write never
// leaves a truncated container at the final path.
func WriteFile(path string, payload *registry.Payload, opts WriteOptions) (Header, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return Header{}, fmt.Errorf("creating temp container file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up the temp file on any error path.
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	header, err := Write(tmpFile, payload, opts)
	if err != nil {
		tmpFile.Close()
		return Header{}, err
	}

	if err := tmpFile.Close(); err != nil {
		return Header{}, fmt.Errorf("closing temp container file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return Header{}, fmt.Errorf("renaming container to %s: %w", path, err)
	}

	success = true
	return header, nil
}
