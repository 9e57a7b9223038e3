package rawsource

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/user/avcrec/pkg/mocks"
	"github.com/user/avcrec/pkg/pipeline"
)

var res = pipeline.Resolution{Width: 4, Height: 2}

func TestSource_ReadsWholeFrames(t *testing.T) {
	size := res.FrameSize()
	data := make([]byte, 3*size)
	for i := range data {
		data[i] = byte(i / size)
	}
	fs := mocks.NewFileSystem()
	fs.SetFile("cap.nv21", data)

	s, err := New(fs, "cap.nv21", res, 0, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var frames [][]byte
	if err := s.Run(context.Background(), func(b []byte) { frames = append(frames, b) }); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	for i, f := range frames {
		if !bytes.Equal(f, bytes.Repeat([]byte{byte(i)}, size)) {
			t.Errorf("frame %d = %v", i, f)
		}
	}
}

func TestSource_FrameLimit(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.SetFile("cap.nv21", make([]byte, 5*res.FrameSize()))

	s, _ := New(fs, "cap.nv21", res, 1000, 2)
	var got int
	if err := s.Run(context.Background(), func([]byte) { got++ }); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != 2 {
		t.Errorf("got %d frames, want 2", got)
	}
}

func TestSource_PartialFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.SetFile("cap.nv21", make([]byte, res.FrameSize()+3))

	s, _ := New(fs, "cap.nv21", res, 0, 0)
	var got int
	err := s.Run(context.Background(), func([]byte) { got++ })
	if !errors.Is(err, ErrPartialFrame) {
		t.Errorf("Run = %v, want ErrPartialFrame", err)
	}
	if got != 1 {
		t.Errorf("got %d frames before the partial one, want 1", got)
	}
}

func TestSource_Cancelled(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.SetFile("cap.nv21", make([]byte, res.FrameSize()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := New(fs, "cap.nv21", res, 0, 0)
	if err := s.Run(ctx, func([]byte) {}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want Canceled", err)
	}
}

func TestNew_InvalidResolution(t *testing.T) {
	if _, err := New(mocks.NewFileSystem(), "x", pipeline.Resolution{Width: 3, Height: 2}, 0, 0); err == nil {
		t.Error("expected error for odd width")
	}
}
