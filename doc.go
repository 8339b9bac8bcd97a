// Package boltgo provides the resource-management core of a memory-mapped,
// page-oriented key-value storage engine.
//
// The package owns two concerns: producing, reusing and reclaiming fixed-size
// page buffers under concurrent access (internal/pagepool), and choosing how
// far to extend the memory-mapped data region when the file must grow
// (MmapSizer). The transactional B+tree layer (buckets, cursors, node
// split/rebalance/spill, the on-disk meta and freelist format) sits above
// this core and is not part of this module.
//
// # Quick Start
//
//	ctx := context.Background()
//	db, err := boltgo.Open(ctx, "./data.db")
//	if err != nil { ... }
//	defer db.Close()
//
//	// Scratch pages for the write path; one Local per worker goroutine.
//	local := db.Pool().Local()
//	defer local.Close()
//
//	p := local.Get()
//	// ... fill p.Bytes() ...
//	local.Put(p)
//
//	// Make room before writing past the current mapping.
//	if err := db.Grow(ctx, uint64(db.Size())+1); err != nil { ... }
//
// # Sizing Policy
//
// The mapped region grows in coarse, cache-friendly increments rather than to
// the exact byte count requested: power-of-two levels from 32 KiB up to 1 GiB,
// then 1 GiB steps, capped at 256 TB. This amortizes the cost of remapping
// and file extension. See MmapSizer.
//
// # Observability
//
// Structured logging goes through Logger (log/slog); operational counters
// through MetricsCollector. The page pool's hot paths stay silent: no logging,
// no I/O, no allocation beyond the cold path itself.
package boltgo
