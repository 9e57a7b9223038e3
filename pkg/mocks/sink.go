package mocks

import (
	"bytes"
	"sync"

	"github.com/user/avcrec/pkg/ports"
)

// Sink is a mock implementation of ports.BitstreamSink recording every write.
type Sink struct {
	mu sync.Mutex

	WriteErr error
	CloseErr error
	Events   *EventLog

	writes [][]byte
	closed int
}

func (m *Sink) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	m.writes = append(m.writes, bytes.Clone(p))
	return len(p), nil
}

func (m *Sink) Close() error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
	m.Events.Record("sink.close")
	return m.CloseErr
}

// Writes returns a copy of each write in order.
func (m *Sink) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// Bytes returns the concatenation of all writes.
func (m *Sink) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Join(m.writes, nil)
}

// CloseCount returns how many times Close was called.
func (m *Sink) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.BitstreamSink = (*Sink)(nil)
