package ports

import "io"

// BitstreamSink receives the assembled elementary stream in order.
type BitstreamSink interface {
	io.Writer

	// Close flushes pending bytes and releases the sink.
	Close() error
}
