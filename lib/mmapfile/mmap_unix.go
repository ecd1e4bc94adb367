// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package mmapfile

import (
	"fmt"
	"io"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// mmapBacking reads through a read-only MAP_SHARED memory map — no
// system call overhead for data already in the page cache.
type mmapBacking struct {
	fd   int
	data []byte
}

func openBacking(path string) (backing, int64, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, 0, fmt.Errorf("stating %s: %w", path, err)
	}

	// mmap rejects zero-length mappings; an empty file is a valid
	// (empty) view.
	if stat.Size == 0 {
		return &mmapBacking{fd: fd}, 0, nil
	}

	data, err := unix.Mmap(fd, 0, int(stat.Size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, 0, fmt.Errorf("memory-mapping %s: %w", path, err)
	}

	return &mmapBacking{fd: fd, data: data}, stat.Size, nil
}

func (b *mmapBacking) readAt(p []byte, off int64) (readCount int, err error) {
	// Guard against page faults from I/O errors on the underlying
	// storage (e.g., the file truncated behind the mapping, or disk
	// failure). Without this, a SIGBUS would crash the process.
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			err = fmt.Errorf("page fault reading mapped file at offset %d: %v", off, r)
		}
	}()

	readCount = copy(p, b.data[off:])
	if readCount < len(p) {
		return readCount, io.EOF
	}
	return readCount, nil
}

func (b *mmapBacking) close() error {
	var firstErr error
	if b.data != nil {
		if err := unix.Munmap(b.data); err != nil {
			firstErr = fmt.Errorf("unmapping file: %w", err)
		}
	}
	if err := unix.Close(b.fd); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing file descriptor: %w", err)
	}
	b.data = nil
	b.fd = -1
	return firstErr
}
