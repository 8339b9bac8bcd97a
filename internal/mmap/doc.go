// Package mmap provides memory-mapped file access for the storage engine.
//
// # Overview
//
// The engine keeps its entire data file mapped and reads pages straight out of
// the mapping, so file access never copies through kernel buffers. Unlike a
// read-only loader, the mapping here may be writable: the write path flushes
// dirty regions back with Sync.
//
// Mappings are fixed-size. Growing the data file is done by the caller:
// close the old mapping, extend the file, and map it again at the new size.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2), madvise(2) via golang.org/x/sys/unix
//   - Windows: CreateFileMapping/MapViewOfFile/FlushViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close is idempotent and
// protected by atomics, but callers must ensure no goroutine touches Bytes()
// after Close returns.
package mmap
