package pagepool

// Local is a bounded LIFO of free pages owned by exactly one goroutine.
//
// Go has no per-thread storage, so the per-worker tier is an explicit handle:
// each worker obtains its own Local from Pool.Local and keeps it for its
// lifetime. Because ownership is exclusive, Get and Put on a Local perform no
// synchronization until they fall through to the shared stack.
type Local struct {
	pool  *Pool
	stack []*Page
}

// Len returns the number of pages currently cached.
func (l *Local) Len() int { return len(l.stack) }

// IsEmpty reports whether the cache holds no pages.
func (l *Local) IsEmpty() bool { return len(l.stack) == 0 }

// IsFull reports whether the cache is at capacity.
func (l *Local) IsFull() bool { return len(l.stack) >= l.pool.localCap }

// Get pops the most recently cached page, stealing from the shared stack and
// finally allocating fresh on a miss. Never returns nil.
func (l *Local) Get() *Page {
	if n := len(l.stack); n > 0 {
		pg := l.stack[n-1]
		l.stack[n-1] = nil
		l.stack = l.stack[:n-1]
		l.pool.stats.localHits.Add(1)
		return pg
	}

	return l.pool.Get()
}

// Put resets pg and caches it locally, spilling to the shared stack when the
// cache is full. Putting nil is a no-op. The page is never dropped: after Put
// it is reachable from exactly one pool structure.
func (l *Local) Put(pg *Page) {
	if pg == nil {
		return
	}

	l.pool.reset(pg)
	l.pool.stats.puts.Add(1)

	if !l.IsFull() {
		l.stack = append(l.stack, pg)
		return
	}

	l.pool.stats.spills.Add(1)
	l.pool.pushShared(pg)
}

// Close drains the cache, releasing every held page to the garbage collector.
// Pages are deliberately not donated to the shared stack: the worker-exit path
// stays free of CAS traffic, at the cost of reallocation churn when workers
// are short-lived relative to page traffic.
//
// Close is idempotent. The Local must not be used afterwards.
func (l *Local) Close() {
	n := len(l.stack)
	for i := range l.stack {
		l.stack[i] = nil
	}
	l.stack = l.stack[:0]

	l.pool.stats.live.Add(int64(-n))
	l.pool.stats.released.Add(int64(n))
}
