// Package framequeue provides the bounded frame buffer between a capture
// callback and the encoder worker. Producers never block: frames arriving
// while the queue is nearly full are dropped.
package framequeue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/user/avcrec/pkg/pipeline"
)

const (
	// Capacity is the fixed number of slots in the queue.
	Capacity = 20

	// AcceptLimit is the length at which incoming frames start being dropped.
	AcceptLimit = Capacity - 1
)

// Stats holds queue counters.
type Stats struct {
	Enqueued uint64
	Dropped  uint64
	Dequeued uint64
}

// Queue is a FIFO of raw frames. It is safe for concurrent use by any number
// of producers and consumers.
type Queue struct {
	mu     sync.Mutex
	frames chan pipeline.RawFrame

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	dequeued atomic.Uint64
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		frames: make(chan pipeline.RawFrame, Capacity),
	}
}

// TryEnqueue appends frame unless the queue already holds AcceptLimit or more
// frames, in which case the frame is dropped. It never blocks.
func (q *Queue) TryEnqueue(frame pipeline.RawFrame) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) >= AcceptLimit {
		q.dropped.Add(1)
		return false
	}
	// Cannot block: the length check above runs under the producer lock
	// and consumers only ever shrink the queue.
	q.frames <- frame
	q.enqueued.Add(1)
	return true
}

// Dequeue removes and returns the oldest frame, waiting until one arrives or
// ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (pipeline.RawFrame, error) {
	select {
	case frame := <-q.frames:
		q.dequeued.Add(1)
		return frame, nil
	case <-ctx.Done():
		return pipeline.RawFrame{}, ctx.Err()
	}
}

// TryDequeue removes and returns the oldest frame if there is one.
func (q *Queue) TryDequeue() (pipeline.RawFrame, bool) {
	select {
	case frame := <-q.frames:
		q.dequeued.Add(1)
		return frame, true
	default:
		return pipeline.RawFrame{}, false
	}
}

// Len returns the number of queued frames.
func (q *Queue) Len() int {
	return len(q.frames)
}

// Clear discards all queued frames and returns how many were discarded.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for {
		select {
		case <-q.frames:
			n++
		default:
			return n
		}
	}
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued: q.enqueued.Load(),
		Dropped:  q.dropped.Load(),
		Dequeued: q.dequeued.Load(),
	}
}
