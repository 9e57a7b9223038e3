// Package filesink writes an H.264 elementary stream to a file.
package filesink

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/user/avcrec/pkg/ports"
)

const bufferSize = 256 * 1024

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("filesink: closed")

// Sink buffers stream bytes and writes them to a file created through a
// ports.FileSystem.
type Sink struct {
	path    string
	file    io.WriteCloser
	w       *bufio.Writer
	written int64
	closed  bool
}

// New creates (or truncates) the file at path.
func New(fs ports.FileSystem, path string) (*Sink, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Sink{
		path: path,
		file: f,
		w:    bufio.NewWriterSize(f, bufferSize),
	}, nil
}

// Path returns the output file path.
func (s *Sink) Path() string {
	return s.path
}

// Written returns the number of bytes accepted so far.
func (s *Sink) Written() int64 {
	return s.written
}

// Write buffers p.
func (s *Sink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	n, err := s.w.Write(p)
	s.written += int64(n)
	return n, err
}

// Close flushes buffered bytes and closes the file. Closing twice is a no-op.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", s.path, closeErr)
	}
	return nil
}

// Ensure Sink implements ports.BitstreamSink
var _ ports.BitstreamSink = (*Sink)(nil)
