package mocks

import (
	"fmt"
	"sync"

	"github.com/user/avcrec/pkg/ports"
)

// Logger is a mock implementation of ports.Logger keeping formatted lines.
type Logger struct {
	mu     *sync.Mutex
	lines  *[]string
	prefix string
}

// NewLogger creates an empty Logger.
func NewLogger() *Logger {
	return &Logger{mu: &sync.Mutex{}, lines: &[]string{}}
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.log("debug", msg, args...) }
func (m *Logger) Info(msg string, args ...interface{})  { m.log("info", msg, args...) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.log("warn", msg, args...) }
func (m *Logger) Error(msg string, args ...interface{}) { m.log("error", msg, args...) }

// WithComponent returns a Logger sharing the same line buffer.
func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{mu: m.mu, lines: m.lines, prefix: "[" + component + "] "}
}

func (m *Logger) log(level, msg string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.lines = append(*m.lines, level+": "+m.prefix+fmt.Sprintf(msg, args...))
}

// Lines returns the logged lines.
func (m *Logger) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), *m.lines...)
}

var _ ports.Logger = (*Logger)(nil)
