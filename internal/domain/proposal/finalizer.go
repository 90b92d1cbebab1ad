package proposal

import (
	"context"
	"sync"
	"sync/atomic"

	"jan-server/services/proposal-api/internal/infrastructure/metrics"
)

// Finalizer tracks streaming finalize tasks that outlive their request.
type Finalizer struct {
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

func NewFinalizer() *Finalizer {
	return &Finalizer{}
}

// Begin registers a task. The returned func marks it done and is safe to call more than once.
func (f *Finalizer) Begin() func() {
	f.wg.Add(1)
	f.inFlight.Add(1)
	metrics.ActiveStreams.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			metrics.ActiveStreams.Dec()
			f.inFlight.Add(-1)
			f.wg.Done()
		})
	}
}

// InFlight returns the number of unfinished tasks.
func (f *Finalizer) InFlight() int64 {
	return f.inFlight.Load()
}

// Wait blocks until every task is done or ctx ends.
func (f *Finalizer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
