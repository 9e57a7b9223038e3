package inspect

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

var (
	// Baseline 3.0, 320x240.
	sps = []byte{0x67, 0x42, 0xC0, 0x1E, 0xDA, 0x05, 0x07, 0xE4}
	pps = []byte{0x68, 0xCE, 0x3C, 0x80}
	idr = []byte{0x65, 0x88, 0x84, 0x00, 0x21}
	p1  = []byte{0x41, 0x9A, 0x02, 0x10}
	p2  = []byte{0x41, 0x9A, 0x04, 0x20}
)

func annexB(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, n...)
	}
	return out
}

func TestAnalyze(t *testing.T) {
	stream := annexB(sps, pps, idr, p1, p2, sps, pps, idr, p1)

	rep, err := Analyze(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if rep.Bytes != int64(len(stream)) {
		t.Errorf("Bytes = %d, want %d", rep.Bytes, len(stream))
	}
	if rep.AccessUnits != 5 {
		t.Errorf("AccessUnits = %d, want 5", rep.AccessUnits)
	}
	if rep.NALUnits != 9 {
		t.Errorf("NALUnits = %d, want 9", rep.NALUnits)
	}
	if rep.ConfigUnits != 2 || rep.KeyFrames != 2 || rep.DeltaFrames != 3 {
		t.Errorf("config/key/delta = %d/%d/%d, want 2/2/3", rep.ConfigUnits, rep.KeyFrames, rep.DeltaFrames)
	}

	if rep.SPS == nil {
		t.Fatal("SPS not parsed")
	}
	want := SPSInfo{Width: 320, Height: 240, Profile: 66, Level: 30}
	if *rep.SPS != want {
		t.Errorf("SPS = %+v, want %+v", *rep.SPS, want)
	}
}

func TestAnalyze_SmallReads(t *testing.T) {
	stream := annexB(sps, pps, idr, p1)

	rep, err := Analyze(iotest.OneByteReader(bytes.NewReader(stream)))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if rep.AccessUnits != 2 || rep.KeyFrames != 1 || rep.DeltaFrames != 1 {
		t.Errorf("units/key/delta = %d/%d/%d, want 2/1/1", rep.AccessUnits, rep.KeyFrames, rep.DeltaFrames)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	if _, err := Analyze(bytes.NewReader(nil)); !errors.Is(err, ErrEmptyStream) {
		t.Errorf("Analyze = %v, want ErrEmptyStream", err)
	}
}

func TestAnalyze_ReadError(t *testing.T) {
	boom := errors.New("disk gone")
	if _, err := Analyze(iotest.ErrReader(boom)); !errors.Is(err, boom) {
		t.Errorf("Analyze = %v, want %v", err, boom)
	}
}

func TestReport_Format(t *testing.T) {
	rep := Report{
		Bytes:       1234,
		AccessUnits: 3,
		NALUnits:    5,
		ConfigUnits: 1,
		KeyFrames:   1,
		DeltaFrames: 2,
		SPS:         &SPSInfo{Width: 480, Height: 640, Profile: 66, Level: 31},
	}

	var buf bytes.Buffer
	if err := rep.Format(&buf); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"480x640", "Baseline", "3.1", "Key frames:    1", "Delta frames:  2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
