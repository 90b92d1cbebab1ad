package inference

import (
	"context"
	"sync"
)

// Stream hands generated chunks to one consumer.
type Stream struct {
	chunks     chan string
	detached   chan struct{}
	detachOnce sync.Once
}

func newStream() *Stream {
	return &Stream{
		chunks:   make(chan string),
		detached: make(chan struct{}),
	}
}

// Chunks is closed once the upstream stream has ended.
func (s *Stream) Chunks() <-chan string {
	return s.chunks
}

// Detach stops delivery. The producer keeps draining upstream.
func (s *Stream) Detach() {
	s.detachOnce.Do(func() { close(s.detached) })
}

func (s *Stream) publish(ctx context.Context, chunk string) {
	select {
	case <-s.detached:
		return
	default:
	}
	select {
	case s.chunks <- chunk:
	case <-s.detached:
	case <-ctx.Done():
	}
}

func (s *Stream) close() {
	close(s.chunks)
}
