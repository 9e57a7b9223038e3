// Package ports defines interfaces for the encoder, frame sources, sinks and
// other external collaborators of the recording pipeline.
package ports

import (
	"context"
	"time"
)

// MIMETypeAVC is the MIME type of an H.264 encoder.
const MIMETypeAVC = "video/avc"

// ColorFormat tags the raw pixel layout a codec expects on its input.
type ColorFormat int

const (
	// ColorFormatYUV420SemiPlanar is NV12: a luma plane followed by
	// interleaved U,V samples.
	ColorFormatYUV420SemiPlanar ColorFormat = iota + 1
	// ColorFormatYUV420Planar is I420.
	ColorFormatYUV420Planar
)

// String returns the string representation of the color format.
func (c ColorFormat) String() string {
	switch c {
	case ColorFormatYUV420SemiPlanar:
		return "yuv420sp"
	case ColorFormatYUV420Planar:
		return "yuv420p"
	default:
		return "unknown"
	}
}

// BufferFlags describes an output buffer. Flags are a bit set; a buffer may
// carry several at once.
type BufferFlags uint32

const (
	FlagKeyFrame     BufferFlags = 1 << 0
	FlagCodecConfig  BufferFlags = 1 << 1
	FlagEndOfStream  BufferFlags = 1 << 2
	FlagPartialFrame BufferFlags = 1 << 3
)

// Has reports whether all bits of flag are set.
func (f BufferFlags) Has(flag BufferFlags) bool {
	return f&flag == flag
}

// CodecFormat configures an encoder.
type CodecFormat struct {
	MIME                    string
	Width                   int // Encoded picture width
	Height                  int // Encoded picture height
	ColorFormat             ColorFormat
	BitRate                 int // Target bit rate in bits/sec
	FrameRate               int // Frames per second
	KeyFrameIntervalSeconds int // Seconds between key frames
}

// InputSlot is an input buffer lent out by the codec.
// Buf must only be written until it is handed back through QueueInput.
type InputSlot struct {
	Index int
	Buf   []byte
}

// OutputBuffer is an encoded unit produced by the codec.
// Data stays valid until ReleaseOutput is called with Index.
type OutputBuffer struct {
	Index              int
	Data               []byte
	PresentationTimeUs int64
	Flags              BufferFlags
}

// VideoCodec abstracts a stream-oriented video encoder with a buffer-exchange
// contract: callers borrow input slots, fill and queue them, then poll for
// output buffers and release them once consumed.
type VideoCodec interface {
	// Configure applies encoding parameters. Must precede Start.
	Configure(format CodecFormat) error

	// Start begins accepting input.
	Start() error

	// DequeueInput blocks until an input slot is available or ctx is done.
	DequeueInput(ctx context.Context) (InputSlot, error)

	// QueueInput submits size bytes of slot for encoding.
	QueueInput(slot InputSlot, size int, presentationTimeUs int64, flags BufferFlags) error

	// DequeueOutput waits up to timeout for an encoded unit.
	// It returns false when nothing became available in time.
	DequeueOutput(timeout time.Duration) (OutputBuffer, bool, error)

	// ReleaseOutput returns an output buffer to the codec.
	ReleaseOutput(index int) error

	// Stop ends the encoding session.
	Stop() error

	// Release frees all codec resources. The codec is unusable afterwards.
	Release() error
}

// CodecFactory creates encoders by MIME type.
type CodecFactory interface {
	CreateEncoder(mime string) (VideoCodec, error)
}

// CodecFactoryFunc is a function adapter for CodecFactory.
type CodecFactoryFunc func(mime string) (VideoCodec, error)

// CreateEncoder implements CodecFactory.
func (f CodecFactoryFunc) CreateEncoder(mime string) (VideoCodec, error) {
	return f(mime)
}
