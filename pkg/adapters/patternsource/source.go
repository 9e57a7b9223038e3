// Package patternsource provides a synthetic frame source that renders a
// moving test pattern, for recording without a camera.
package patternsource

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
	"github.com/user/avcrec/pkg/yuv"
)

// ErrInvalidFrameRate is returned for a non-positive frame rate.
var ErrInvalidFrameRate = errors.New("patternsource: invalid frame rate")

// Color bars, left to right.
var bars = []color.RGBA{
	{192, 192, 192, 255},
	{192, 192, 0, 255},
	{0, 192, 192, 255},
	{0, 192, 0, 255},
	{192, 0, 192, 255},
	{192, 0, 0, 255},
	{0, 0, 192, 255},
}

// Source renders frames of a fixed resolution at a fixed rate.
type Source struct {
	res    pipeline.Resolution
	fps    int
	frames int
}

// New creates a pattern source. frames limits the number of frames
// delivered; zero means unlimited.
func New(res pipeline.Resolution, fps, frames int) (*Source, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameRate, fps)
	}
	return &Source{res: res, fps: fps, frames: frames}, nil
}

// Resolution returns the frame size.
func (s *Source) Resolution() pipeline.Resolution {
	return s.res
}

// Frame renders frame n as NV21.
func (s *Source) Frame(n int) ([]byte, error) {
	w, h := s.res.Width, s.res.Height
	dc := gg.NewContext(w, h)

	barWidth := float64(w) / float64(len(bars))
	for i, c := range bars {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*barWidth, 0, barWidth+1, float64(h))
		dc.Fill()
	}

	// A box sweeping left to right once per second.
	size := float64(h) / 4
	x := float64(n%s.fps) / float64(s.fps) * (float64(w) - size)
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(x, float64(h)/2-size/2, size, size)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(0, float64(h)-20, 120, 20)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawString(fmt.Sprintf("frame %06d", n), 4, float64(h)-6)

	return yuv.FromImage(dc.Image(), w, h)
}

// Run delivers frames at the configured rate until the frame limit is
// reached or ctx is done.
func (s *Source) Run(ctx context.Context, deliver func([]byte)) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for n := 0; s.frames == 0 || n < s.frames; n++ {
		frame, err := s.Frame(n)
		if err != nil {
			return fmt.Errorf("render frame %d: %w", n, err)
		}
		deliver(frame)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

var _ ports.FrameSource = (*Source)(nil)
