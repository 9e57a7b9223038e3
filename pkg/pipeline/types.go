package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidResolution is returned for non-positive or odd dimensions.
var ErrInvalidResolution = errors.New("pipeline: invalid resolution")

// =============================================================================
// Frames
// =============================================================================

// Resolution represents frame width and height in pixels.
type Resolution struct {
	Width  int
	Height int
}

// Rotated returns the resolution with width and height swapped.
func (r Resolution) Rotated() Resolution {
	return Resolution{Width: r.Height, Height: r.Width}
}

// LumaSize returns the size of the luma plane in bytes.
func (r Resolution) LumaSize() int {
	return r.Width * r.Height
}

// FrameSize returns the size of a 4:2:0 frame in bytes.
func (r Resolution) FrameSize() int {
	return r.Width * r.Height * 3 / 2
}

// Validate checks that both dimensions are positive and even, as 4:2:0
// subsampling requires.
func (r Resolution) Validate() error {
	if r.Width <= 0 || r.Height <= 0 || r.Width%2 != 0 || r.Height%2 != 0 {
		return fmt.Errorf("%w: %s", ErrInvalidResolution, r)
	}
	return nil
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// RawFrame is a captured frame in NV21 layout (luma plane, then interleaved
// V,U samples). Frames carry no timestamp; arrival order is significant.
type RawFrame struct {
	Data       []byte
	Resolution Resolution
}

// TransformedFrame is a frame rotated by 90 degrees and converted to NV12
// (interleaved U,V samples). Its resolution is the rotated one.
type TransformedFrame struct {
	Data       []byte
	Resolution Resolution
}

// =============================================================================
// Encoded units
// =============================================================================

// UnitKind classifies an encoder output unit.
type UnitKind int

const (
	// UnitDeltaFrame is a frame predicted from earlier frames.
	UnitDeltaFrame UnitKind = iota
	// UnitKeyFrame is an independently decodable frame.
	UnitKeyFrame
	// UnitConfigData carries codec parameter sets (SPS/PPS).
	UnitConfigData
)

// String returns the string representation of the unit kind.
func (k UnitKind) String() string {
	switch k {
	case UnitDeltaFrame:
		return "delta"
	case UnitKeyFrame:
		return "key"
	case UnitConfigData:
		return "config"
	default:
		return "unknown"
	}
}

// EncodedUnit is one classified encoder output unit.
type EncodedUnit struct {
	Data               []byte
	Kind               UnitKind
	PresentationTimeUs int64
	EndOfStream        bool
}
