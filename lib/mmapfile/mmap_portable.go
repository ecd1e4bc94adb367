// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin && !linux

package mmapfile

import (
	"fmt"
	"os"
)

// fileBacking serves reads with pread on platforms where the store
// does not maintain an mmap path. Same semantics, more syscalls.
type fileBacking struct {
	f *os.File
}

func openBacking(path string) (backing, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stating %s: %w", path, err)
	}

	return &fileBacking{f: f}, info.Size(), nil
}

func (b *fileBacking) readAt(p []byte, off int64) (int, error) {
	return b.f.ReadAt(p, off)
}

func (b *fileBacking) close() error {
	return b.f.Close()
}
