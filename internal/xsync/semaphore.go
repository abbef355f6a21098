// Package xsync implements synchronization tools missing from the standard library.
package xsync

import (
	"context"
	"sync"
)

// Semaphore that allows dynamic resizing.
//
// It uses a sync.Cond, to allow dynamic resizing, so it will be slower than a pure channel version
// of a semaphore, with a fixed capacity. This shouldn't matter for more coarse resource control,
// like limiting the number of in-flight inference requests.
type Semaphore struct {
	cond              sync.Cond
	capacity, current int // Tracks capacity and current usage.
}

// NewSemaphore returns a Semaphore that allows at most capacity simultaneous acquisitions.
// If capacity <= 0, there is no limit on acquisitions.
func NewSemaphore(capacity int) *Semaphore {
	return &Semaphore{
		cond:     sync.Cond{L: &sync.Mutex{}},
		capacity: capacity,
	}
}

// Acquire resource observing current semaphore capacity.
// It must be matched by exactly one call to Semaphore.Release after the reservation is no longer needed.
func (s *Semaphore) Acquire() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	for s.capacity > 0 && s.current >= s.capacity {
		s.cond.Wait()
	}
	s.current++
}

// AcquireContext is like Acquire, but gives up if ctx is done first. On error the resource is not
// acquired and must not be released.
func (s *Semaphore) AcquireContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		s.cond.L.Lock()
		defer s.cond.L.Unlock()
		s.cond.Broadcast()
	})
	defer stop()

	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	for s.capacity > 0 && s.current >= s.capacity {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
	s.current++
	return nil
}

// Release resource previously allocated with Semaphore.Acquire.
func (s *Semaphore) Release() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.current--
	s.cond.Signal()
}

// Resize number of available resources in the Semaphore.
//
// If newCapacity is larger than previous one, this may immediately allow pending Semaphore.Acquire to proceed.
// Notice since all waiting Semaphore.Acquire are awoken (broadcast), the queue order may be lost.
//
// If newCapacity is smaller than previous one, it doesn't have any effect on current acquisitions.
func (s *Semaphore) Resize(newCapacity int) {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	if newCapacity == s.capacity {
		return // No change needed.
	}
	s.capacity = newCapacity
	s.cond.Broadcast()
}
