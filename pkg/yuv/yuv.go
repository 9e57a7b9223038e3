// Package yuv transforms 4:2:0 semi-planar frames: 90 degree rotation,
// chroma order conversion between NV21 and NV12, and conversion from
// decoded images.
package yuv

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned for non-positive or odd dimensions.
	ErrInvalidDimensions = errors.New("yuv: invalid dimensions")

	// ErrBufferSize is returned when a buffer does not hold exactly one frame.
	ErrBufferSize = errors.New("yuv: buffer size does not match dimensions")
)

// FrameSize returns the byte size of a 4:2:0 frame.
func FrameSize(width, height int) int {
	return width * height * 3 / 2
}

func checkDims(width, height int) error {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return nil
}

func checkFrame(buf []byte, width, height int) error {
	if err := checkDims(width, height); err != nil {
		return err
	}
	if len(buf) != FrameSize(width, height) {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d",
			ErrBufferSize, len(buf), FrameSize(width, height), width, height)
	}
	return nil
}
