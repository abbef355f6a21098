package xsync

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphoreLimitsConcurrency(t *testing.T) {
	s := NewSemaphore(2)
	var (
		wg            sync.WaitGroup
		current, peak atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Acquire()
			defer s.Release()
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestSemaphoreAcquireContext(t *testing.T) {
	s := NewSemaphore(1)
	require.NoError(t, s.AcquireContext(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.AcquireContext(ctx), context.DeadlineExceeded)

	s.Release()
	require.NoError(t, s.AcquireContext(context.Background()))
	s.Release()
}

func TestSemaphoreResize(t *testing.T) {
	s := NewSemaphore(1)
	s.Acquire()
	done := make(chan struct{})
	go func() {
		s.Acquire()
		close(done)
	}()
	s.Resize(2)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire not released by Resize")
	}
}
