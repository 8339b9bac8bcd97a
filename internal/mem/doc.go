// Package mem provides memory allocation utilities for the storage engine.
//
// # Aligned Allocation
//
// Provides 64-byte (cache line) aligned allocation for page buffers, so that
// independently accessed pages never share a cache line.
package mem
