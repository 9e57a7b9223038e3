package yuv

import (
	"bytes"
	"testing"
)

func TestConvertChromaOrder_Standard(t *testing.T) {
	// 2x2 frame: 4 luma bytes then one V,U pair.
	src := []byte{1, 2, 3, 4, 0xAA, 0xBB}
	got, err := ConvertChromaOrder(src, 2, 2, ChromaStandard)
	if err != nil {
		t.Fatalf("ConvertChromaOrder failed: %v", err)
	}
	want := []byte{1, 2, 3, 4, 0xBB, 0xAA}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestConvertChromaOrder_LumaUnchanged(t *testing.T) {
	width, height := 16, 8
	src := createTestFrame(width, height)
	got, err := ConvertChromaOrder(src, width, height, ChromaStandard)
	if err != nil {
		t.Fatalf("ConvertChromaOrder failed: %v", err)
	}

	luma := width * height
	if !bytes.Equal(got[:luma], src[:luma]) {
		t.Error("luma plane changed")
	}
	for i := luma; i < len(src); i += 2 {
		if got[i] != src[i+1] || got[i+1] != src[i] {
			t.Fatalf("pair at %d not swapped: got %v, src %v", i, got[i:i+2], src[i:i+2])
		}
	}
}

func TestConvertChromaOrder_Involution(t *testing.T) {
	src := createTestFrame(8, 4)
	once, err := ConvertChromaOrder(src, 8, 4, ChromaStandard)
	if err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	twice, err := ConvertChromaOrder(once, 8, 4, ChromaStandard)
	if err != nil {
		t.Fatalf("second conversion failed: %v", err)
	}
	if !bytes.Equal(twice, src) {
		t.Error("double conversion did not restore the frame")
	}
}

// legacyReference transcribes the historical conversion loop literally.
func legacyReference(src []byte, width, height int) []byte {
	frameSize := width * height
	dst := make([]byte, len(src))
	for i := 0; i < frameSize; i++ {
		dst[i] = src[i]
	}
	for j := 0; j < frameSize/2; j += 2 {
		dst[frameSize+j-1] = src[j+frameSize]
	}
	for j := 0; j < frameSize/2; j += 2 {
		dst[frameSize+j] = src[j+frameSize-1]
	}
	return dst
}

func TestConvertChromaOrder_LegacyMatchesHistoricalOutput(t *testing.T) {
	for _, dims := range [][2]int{{2, 2}, {4, 2}, {16, 8}, {64, 48}} {
		src := createTestFrame(dims[0], dims[1])
		want := legacyReference(src, dims[0], dims[1])

		got, err := ConvertChromaOrder(src, dims[0], dims[1], ChromaLegacy)
		if err != nil {
			t.Fatalf("%v: ConvertChromaOrder failed: %v", dims, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%v: legacy output differs from historical output", dims)
		}
	}
}

func TestConvertChromaOrderInto_LegacyReusedBuffer(t *testing.T) {
	src := createTestFrame(4, 4)
	dst := bytes.Repeat([]byte{0xFF}, len(src))
	if err := ConvertChromaOrderInto(dst, src, 4, 4, ChromaLegacy); err != nil {
		t.Fatalf("ConvertChromaOrderInto failed: %v", err)
	}
	if !bytes.Equal(dst, legacyReference(src, 4, 4)) {
		t.Error("stale bytes leaked into legacy output")
	}
}

func TestParseChromaMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ChromaMode
		wantErr bool
	}{
		{"", ChromaStandard, false},
		{"standard", ChromaStandard, false},
		{"legacy", ChromaLegacy, false},
		{"bogus", ChromaStandard, true},
	}
	for _, tt := range tests {
		got, err := ParseChromaMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChromaMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseChromaMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
