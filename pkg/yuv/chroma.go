package yuv

import "fmt"

// ChromaMode selects how chroma pairs are exchanged.
type ChromaMode int

const (
	// ChromaStandard swaps every interleaved chroma pair in place.
	ChromaStandard ChromaMode = iota
	// ChromaLegacy reproduces older recorder output byte for byte: every
	// chroma write lands one byte early, the last luma byte is replaced by
	// the first chroma sample and the final chroma byte is zeroed.
	ChromaLegacy
)

// String returns the string representation of the chroma mode.
func (m ChromaMode) String() string {
	switch m {
	case ChromaStandard:
		return "standard"
	case ChromaLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ParseChromaMode parses "standard" or "legacy".
func ParseChromaMode(s string) (ChromaMode, error) {
	switch s {
	case "", "standard":
		return ChromaStandard, nil
	case "legacy":
		return ChromaLegacy, nil
	default:
		return ChromaStandard, fmt.Errorf("yuv: unknown chroma mode %q", s)
	}
}

// ConvertChromaOrder converts between NV21 (V,U) and NV12 (U,V) chroma
// ordering. The conversion is its own inverse in standard mode.
func ConvertChromaOrder(src []byte, width, height int, mode ChromaMode) ([]byte, error) {
	dst := make([]byte, len(src))
	if err := ConvertChromaOrderInto(dst, src, width, height, mode); err != nil {
		return nil, err
	}
	return dst, nil
}

// ConvertChromaOrderInto is ConvertChromaOrder writing into dst.
func ConvertChromaOrderInto(dst, src []byte, width, height int, mode ChromaMode) error {
	if err := checkFrame(src, width, height); err != nil {
		return err
	}
	if len(dst) != len(src) {
		return fmt.Errorf("%w: destination has %d bytes, want %d", ErrBufferSize, len(dst), len(src))
	}

	luma := width * height
	copy(dst[:luma], src[:luma])

	if mode == ChromaLegacy {
		legacySwap(dst, src, luma)
		return nil
	}

	for i := luma; i+1 < len(src); i += 2 {
		dst[i], dst[i+1] = src[i+1], src[i]
	}
	return nil
}

func legacySwap(dst, src []byte, luma int) {
	chroma := luma / 2
	for j := 0; j < chroma; j += 2 {
		dst[luma+j-1] = src[luma+j]
	}
	for j := 0; j < chroma; j += 2 {
		dst[luma+j] = src[luma+j-1]
	}
	dst[len(dst)-1] = 0
}
