// Package rawsource reads fixed-size NV21 frames from a file, such as a
// capture dumped by a camera pipeline.
package rawsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
)

// ErrPartialFrame is returned when the file ends in the middle of a frame.
var ErrPartialFrame = errors.New("rawsource: trailing partial frame")

// Source streams frames from a raw NV21 file.
type Source struct {
	fs     ports.FileSystem
	path   string
	res    pipeline.Resolution
	fps    int
	frames int
}

// New creates a source for the file at path holding frames of res. With a
// positive fps frames are paced at that rate, otherwise they are delivered
// as fast as they are read. frames limits the count; zero reads to the end.
func New(fs ports.FileSystem, path string, res pipeline.Resolution, fps, frames int) (*Source, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &Source{fs: fs, path: path, res: res, fps: fps, frames: frames}, nil
}

// Resolution returns the frame size.
func (s *Source) Resolution() pipeline.Resolution {
	return s.res
}

// Run delivers frames until the end of the file, the frame limit or ctx.
func (s *Source) Run(ctx context.Context, deliver func([]byte)) error {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	var tick <-chan time.Time
	if s.fps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(s.fps))
		defer ticker.Stop()
		tick = ticker.C
	}

	size := s.res.FrameSize()
	for n := 0; s.frames == 0 || n < s.frames; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame := make([]byte, size)
		_, err := io.ReadFull(f, frame)
		switch {
		case err == io.EOF:
			return nil
		case err == io.ErrUnexpectedEOF:
			return fmt.Errorf("%w: frame %d", ErrPartialFrame, n)
		case err != nil:
			return fmt.Errorf("read frame %d: %w", n, err)
		}
		deliver(frame)

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
	return nil
}

var _ ports.FrameSource = (*Source)(nil)
