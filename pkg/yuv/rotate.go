package yuv

import "fmt"

// Rotate90 rotates a semi-planar 4:2:0 frame clockwise by 90 degrees.
// The result is width x height swapped: it is height pixels wide.
func Rotate90(src []byte, width, height int) ([]byte, error) {
	dst := make([]byte, len(src))
	if err := Rotate90Into(dst, src, width, height); err != nil {
		return nil, err
	}
	return dst, nil
}

// Rotate90Into is Rotate90 writing into dst, which must have the same size as
// src and must not overlap it.
func Rotate90Into(dst, src []byte, width, height int) error {
	if err := checkFrame(src, width, height); err != nil {
		return err
	}
	if len(dst) != len(src) {
		return fmt.Errorf("%w: destination has %d bytes, want %d", ErrBufferSize, len(dst), len(src))
	}

	// Luma: each source column, bottom row first, becomes one output row.
	i := 0
	for x := 0; x < width; x++ {
		for y := height - 1; y >= 0; y-- {
			dst[i] = src[y*width+x]
			i++
		}
	}

	// Chroma: filled from the tail, one interleaved pair at a time so both
	// samples of a 2x2 block stay together and keep their order.
	luma := width * height
	i = len(dst) - 1
	for x := width - 1; x > 0; x -= 2 {
		for y := 0; y < height/2; y++ {
			row := luma + y*width
			dst[i] = src[row+x]
			dst[i-1] = src[row+x-1]
			i -= 2
		}
	}
	return nil
}
