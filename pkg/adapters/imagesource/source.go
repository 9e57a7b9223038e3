// Package imagesource replays a still PNG or JPEG image as a stream of
// frames.
package imagesource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"golang.org/x/image/draw"

	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
	"github.com/user/avcrec/pkg/yuv"
)

// ErrInvalidFrameRate is returned for a non-positive frame rate.
var ErrInvalidFrameRate = errors.New("imagesource: invalid frame rate")

// Source delivers copies of one pre-converted frame at a fixed rate.
type Source struct {
	res    pipeline.Resolution
	fps    int
	frames int
	frame  []byte
}

// New decodes the image at path and scales it to res. A zero res keeps the
// image size, trimmed to even dimensions. frames limits the number of
// frames delivered; zero means unlimited.
func New(fs ports.FileSystem, path string, res pipeline.Resolution, fps, frames int) (*Source, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameRate, fps)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img, res, fps, frames)
}

// FromImage builds a source from an already decoded image.
func FromImage(img image.Image, res pipeline.Resolution, fps, frames int) (*Source, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameRate, fps)
	}
	if res.Width == 0 && res.Height == 0 {
		b := img.Bounds()
		res = pipeline.Resolution{Width: b.Dx() &^ 1, Height: b.Dy() &^ 1}
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, res.Width, res.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	frame, err := yuv.FromImage(dst, res.Width, res.Height)
	if err != nil {
		return nil, err
	}
	return &Source{res: res, fps: fps, frames: frames, frame: frame}, nil
}

// Resolution returns the frame size.
func (s *Source) Resolution() pipeline.Resolution {
	return s.res
}

// Run delivers a fresh copy of the frame at the configured rate until the
// frame limit is reached or ctx is done.
func (s *Source) Run(ctx context.Context, deliver func([]byte)) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for n := 0; s.frames == 0 || n < s.frames; n++ {
		deliver(bytes.Clone(s.frame))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

var _ ports.FrameSource = (*Source)(nil)
