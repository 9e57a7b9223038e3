package yuv

import (
	"image"
	"image/color"
)

// FromImage converts the top-left width x height region of img to an NV21
// frame using BT.601 limited-range coefficients. Chroma is the average of
// each 2x2 block.
func FromImage(img image.Image, width, height int) ([]byte, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}
	dst := make([]byte, FrameSize(width, height))

	b := img.Bounds()
	luma := width * height
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x += 2 {
			var sumU, sumV int
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					r, g, bl := rgb8(img.At(b.Min.X+x+dx, b.Min.Y+y+dy))
					yy, u, v := rgbToYUV(r, g, bl)
					dst[(y+dy)*width+x+dx] = yy
					sumU += int(u)
					sumV += int(v)
				}
			}
			// NV21 interleaves V before U.
			c := luma + (y/2)*width + x
			dst[c] = uint8(sumV / 4)
			dst[c+1] = uint8(sumU / 4)
		}
	}
	return dst, nil
}

func rgb8(c color.Color) (r, g, b uint8) {
	cr, cg, cb, _ := c.RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)
}

// rgbToYUV converts RGB to YUV (BT.601)
func rgbToYUV(r, g, b uint8) (y, u, v uint8) {
	yf := 16.0 + 65.481*float64(r)/255.0 + 128.553*float64(g)/255.0 + 24.966*float64(b)/255.0
	uf := 128.0 - 37.797*float64(r)/255.0 - 74.203*float64(g)/255.0 + 112.0*float64(b)/255.0
	vf := 128.0 + 112.0*float64(r)/255.0 - 93.786*float64(g)/255.0 - 18.214*float64(b)/255.0

	y = uint8(clamp(yf, 16, 235))
	u = uint8(clamp(uf, 16, 240))
	v = uint8(clamp(vf, 16, 240))
	return
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
