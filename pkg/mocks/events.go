// Package mocks provides hand-written test doubles for the ports package.
package mocks

import "sync"

// EventLog records calls across several mocks so tests can assert ordering.
type EventLog struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event.
func (l *EventLog) Record(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Events returns a copy of the recorded events.
func (l *EventLog) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}
