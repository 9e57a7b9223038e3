package session

import (
	"time"

	"github.com/user/avcrec/pkg/ports"
	"github.com/user/avcrec/pkg/yuv"
)

// Options configures an encoding session.
type Options struct {
	BitRate                 int // Target bit rate in bits/sec (default: 8 Mbps)
	FrameRate               int // Frames per second (default: 30)
	KeyFrameIntervalSeconds int // Seconds between key frames, 0 makes every frame a key frame (default: 1)
	ColorFormat             ports.ColorFormat
	ChromaMode              yuv.ChromaMode
	DrainTimeout            time.Duration // Wait for each output unit (default: 12ms)
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{
		BitRate:                 8 * 1024 * 1024,
		FrameRate:               30,
		KeyFrameIntervalSeconds: 1,
		ColorFormat:             ports.ColorFormatYUV420SemiPlanar,
		ChromaMode:              yuv.ChromaStandard,
		DrainTimeout:            12 * time.Millisecond,
	}
}

// withDefaults fills zero fields from DefaultOptions. A zero key frame
// interval is kept; only a negative one is replaced.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BitRate <= 0 {
		o.BitRate = d.BitRate
	}
	if o.FrameRate <= 0 {
		o.FrameRate = d.FrameRate
	}
	if o.KeyFrameIntervalSeconds < 0 {
		o.KeyFrameIntervalSeconds = d.KeyFrameIntervalSeconds
	}
	if o.ColorFormat == 0 {
		o.ColorFormat = d.ColorFormat
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = d.DrainTimeout
	}
	return o
}
