// Package resource provides global resource accounting for the storage engine.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MappedLimitBytes is the hard limit for mapped memory.
	// If 0, no hard limit is enforced (only tracking).
	MappedLimitBytes int64

	// IOLimitBytesPerSec is the maximum IO throughput for file growth.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller tracks mapped memory and throttles growth IO.
// A nil *Controller is valid and disables all accounting.
type Controller struct {
	cfg Config

	mappedSem  *semaphore.Weighted // nil if unlimited
	mappedUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MappedLimitBytes > 0 {
		c.mappedSem = semaphore.NewWeighted(cfg.MappedLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMapped attempts to reserve mapped-memory budget.
// If a hard limit is configured and usage would exceed it,
// this blocks until budget is available or ctx is canceled.
func (c *Controller) AcquireMapped(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.mappedSem != nil {
		if err := c.mappedSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.mappedUsed.Add(bytes)
	return nil
}

// TryAcquireMapped attempts to reserve mapped-memory budget without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMapped(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.mappedSem != nil {
		if !c.mappedSem.TryAcquire(bytes) {
			return false
		}
	}

	c.mappedUsed.Add(bytes)
	return true
}

// ReleaseMapped releases reserved mapped-memory budget.
func (c *Controller) ReleaseMapped(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.mappedSem != nil {
		c.mappedSem.Release(bytes)
	}
	c.mappedUsed.Add(-bytes)
}

// MappedUsage returns the currently reserved mapped bytes.
func (c *Controller) MappedUsage() int64 {
	if c == nil {
		return 0
	}
	return c.mappedUsed.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}

	// WaitN cannot exceed the limiter burst; chunk large requests.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
