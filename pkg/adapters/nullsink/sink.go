// Package nullsink provides a sink that discards the stream.
package nullsink

import (
	"sync/atomic"

	"github.com/user/avcrec/pkg/ports"
)

// Sink is a no-op implementation of ports.BitstreamSink.
// It discards all bytes but counts them.
type Sink struct {
	writes atomic.Int64
	bytes  atomic.Int64
}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Write discards p.
func (s *Sink) Write(p []byte) (int, error) {
	s.writes.Add(1)
	s.bytes.Add(int64(len(p)))
	return len(p), nil
}

// Close does nothing.
func (s *Sink) Close() error {
	return nil
}

// Writes returns the number of Write calls.
func (s *Sink) Writes() int64 {
	return s.writes.Load()
}

// Bytes returns the number of bytes discarded.
func (s *Sink) Bytes() int64 {
	return s.bytes.Load()
}

// Ensure Sink implements ports.BitstreamSink
var _ ports.BitstreamSink = (*Sink)(nil)
