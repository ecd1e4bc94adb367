// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package mmapfile provides a scoped, read-only view of a file on
// disk, memory-mapped where the platform supports it.
//
// A File is safe for concurrent readers: reads take a shared lock and
// never block each other, only Close takes the lock exclusively. Close
// is idempotent, and every failure path in Open unwinds fully — no
// file descriptor or mapping outlives an error.
package mmapfile

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// backing is the platform half of a File: direct memory-map access on
// linux/darwin, pread on everything else.
type backing interface {
	readAt(p []byte, off int64) (int, error)
	close() error
}

// File is a read-only view of a file.
type File struct {
	mu      sync.RWMutex
	path    string
	size    int64
	closed  bool
	backing backing
}

// Open maps the file at path read-only. The returned File holds the
// file open until Close.
func Open(path string) (*File, error) {
	b, size, err := openBacking(path)
	if err != nil {
		return nil, err
	}
	return &File{path: path, size: size, backing: b}, nil
}

// ReadAt implements io.ReaderAt. Reads at or past the end of the file
// return io.EOF; reads on a closed File return an error wrapping
// os.ErrClosed.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return 0, fmt.Errorf("mmapfile: read %s: %w", f.path, os.ErrClosed)
	}
	if off < 0 {
		return 0, fmt.Errorf("mmapfile: read %s: negative offset %d", f.path, off)
	}
	if off >= f.size {
		return 0, io.EOF
	}
	return f.backing.readAt(p, off)
}

// Read returns a copy of the length bytes starting at offset. Unlike
// ReadAt it is exact: a range extending past the end of the file is an
// error, not a short read.
func (f *File) Read(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("mmapfile: read %s: invalid range [%d, %d)", f.path, offset, offset+length)
	}
	if length == 0 {
		return nil, nil
	}

	p := make([]byte, length)
	n, err := f.ReadAt(p, offset)
	if err == io.EOF || (err == nil && int64(n) < length) {
		return nil, fmt.Errorf("mmapfile: read %s: range [%d, %d) extends past end of %d-byte file",
			f.path, offset, offset+length, f.Size())
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Size returns the file size captured at Open.
func (f *File) Size() int64 {
	return f.size
}

// Path returns the path the File was opened from.
func (f *File) Path() string {
	return f.path
}

// Close releases the mapping and the underlying file. Safe to call
// multiple times; only the first call does work.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	return f.backing.close()
}
