// Package pagepool provides a two-tier free list for fixed-size page buffers.
//
// # Overview
//
// Page-oriented storage engines churn through short-lived scratch pages. The
// pool keeps reclaimed pages available for reuse through two tiers:
//
//   - Local: a bounded, caller-owned LIFO stack. One worker goroutine owns
//     exactly one Local, so the fast path needs no synchronization at all.
//   - the shared overflow stack: an unbounded lock-free LIFO inside Pool,
//     built on a single atomic head pointer. It catches Local underflow
//     (steal) and overflow (spill), and serves callers without a Local.
//
// A page is always in exactly one of four states: checked out to a caller,
// held by exactly one Local, linked into the shared stack, or released to the
// garbage collector. The pool never reads or writes page payload while a page
// is checked out; the free-list link lives in a separate header field, never
// overlaid on payload bytes.
//
// # ABA safety
//
// The CAS retry loops on the shared stack carry no ABA tagging. This is a
// correctness precondition, not an incidental detail: a page may only re-enter
// the shared stack through Put after it has been fully reclaimed, and no path
// outside the pool ever frees or repurposes a page that is still reachable
// from the stack. Callers that hold a page after Put, or return the same page
// twice, break this precondition.
//
// # Usage
//
//	pool := pagepool.New(pagepool.Options{PageSize: 4096})
//	defer pool.Drain()
//
//	local := pool.Local()
//	defer local.Close()
//
//	p := local.Get()
//	// ... use p.Bytes() ...
//	local.Put(p)
package pagepool
