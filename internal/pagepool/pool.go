package pagepool

import (
	"sync/atomic"

	"github.com/hupe1980/boltgo/internal/mem"
)

// DefaultLocalCapacity is the default bound for a Local stack.
const DefaultLocalCapacity = 32

// ResetFunc is invoked on every page handed back through Put, with exclusive
// access to the page, before the page becomes visible to any other Get.
// Implementations must not fail and must be safe for concurrent invocation
// from multiple goroutines.
type ResetFunc func(*Page)

// Options configures a Pool.
type Options struct {
	// PageSize is the payload size of every page. Defaults to the native OS
	// page size.
	PageSize int

	// LocalCapacity bounds each Local stack. Defaults to DefaultLocalCapacity.
	LocalCapacity int

	// Reset is called on every page returned through Put. Defaults to a no-op.
	Reset ResetFunc
}

// Pool hands out fixed-size aligned pages and recycles them through a shared
// lock-free LIFO. Construct one per engine instance and share it by reference;
// all methods are safe for concurrent use.
type Pool struct {
	pageSize int
	localCap int
	reset    ResetFunc

	// head is the shared overflow stack. Pages are linked through Page.next.
	// CAS-only mutation; see the package doc for the ABA precondition.
	head atomic.Pointer[Page]

	stats stats
}

type stats struct {
	localHits   atomic.Int64
	sharedHits  atomic.Int64
	freshAllocs atomic.Int64
	puts        atomic.Int64
	spills      atomic.Int64
	live        atomic.Int64
	released    atomic.Int64
}

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	// LocalHits counts Gets served by a Local stack.
	LocalHits int64
	// SharedHits counts Gets served by the shared stack.
	SharedHits int64
	// FreshAllocs counts Gets that fell through to a heap allocation.
	FreshAllocs int64
	// Puts counts successful returns (nil puts excluded).
	Puts int64
	// Spills counts puts that overflowed a full Local into the shared stack.
	Spills int64
	// Live counts pages currently owned by the pool or checked out.
	Live int64
	// Released counts pages handed back to the garbage collector by Drain
	// or Local.Close.
	Released int64
}

// New creates a Pool. A zero Options value yields OS-page-size pages, the
// default local capacity and a no-op reset.
func New(opts Options) *Pool {
	if opts.PageSize <= 0 {
		opts.PageSize = mem.PageSize()
	}
	if opts.LocalCapacity <= 0 {
		opts.LocalCapacity = DefaultLocalCapacity
	}
	if opts.Reset == nil {
		opts.Reset = func(*Page) {}
	}

	return &Pool{
		pageSize: opts.PageSize,
		localCap: opts.LocalCapacity,
		reset:    opts.Reset,
	}
}

// PageSize returns the payload size of pages produced by this pool.
func (p *Pool) PageSize() int { return p.pageSize }

// Get returns a page from the shared stack, or a fresh aligned allocation on
// miss. The returned page is never nil and its content is unspecified.
func (p *Pool) Get() *Page {
	if pg := p.popShared(); pg != nil {
		p.stats.sharedHits.Add(1)
		return pg
	}

	p.stats.freshAllocs.Add(1)
	p.stats.live.Add(1)
	return newPage(p.pageSize)
}

// Put returns a page to the shared stack. Putting nil is a no-op. The reset
// hook runs before the page becomes visible to any concurrent Get.
func (p *Pool) Put(pg *Page) {
	if pg == nil {
		return
	}

	p.reset(pg)
	p.stats.puts.Add(1)
	p.pushShared(pg)
}

// Local returns a new bounded cache owned by the calling goroutine. The
// returned value must not be shared between goroutines; call Close when the
// owning worker exits.
func (p *Pool) Local() *Local {
	return &Local{
		pool:  p,
		stack: make([]*Page, 0, p.localCap),
	}
}

// Drain detaches the entire shared stack and releases every page on it to the
// garbage collector. Checked-out pages and pages held by Local stacks are not
// reachable from the pool and are unaffected; callers must return everything
// before relying on full reclamation.
func (p *Pool) Drain() int {
	head := p.head.Swap(nil)

	n := 0
	for head != nil {
		next := head.next
		head.next = nil
		head = next
		n++
	}

	p.stats.live.Add(int64(-n))
	p.stats.released.Add(int64(n))
	return n
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		LocalHits:   p.stats.localHits.Load(),
		SharedHits:  p.stats.sharedHits.Load(),
		FreshAllocs: p.stats.freshAllocs.Load(),
		Puts:        p.stats.puts.Load(),
		Spills:      p.stats.spills.Load(),
		Live:        p.stats.live.Load(),
		Released:    p.stats.released.Load(),
	}
}

// pushShared links pg into the shared stack. The page must be fully reclaimed
// (reset already applied, unreachable from any other structure).
func (p *Pool) pushShared(pg *Page) {
	for {
		head := p.head.Load()
		pg.next = head
		if p.head.CompareAndSwap(head, pg) {
			return
		}
	}
}

// popShared unlinks and returns the top of the shared stack, or nil if empty.
func (p *Pool) popShared() *Page {
	for {
		head := p.head.Load()
		if head == nil {
			return nil
		}
		// Reading head.next here is safe even if head is popped concurrently:
		// the GC keeps the node alive, and the no-external-reuse precondition
		// (package doc) guarantees the link is not repurposed while head is
		// still observable as the stack top.
		next := head.next
		if p.head.CompareAndSwap(head, next) {
			head.next = nil
			return head
		}
	}
}
