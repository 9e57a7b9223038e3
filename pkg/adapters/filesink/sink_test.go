package filesink

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/user/avcrec/pkg/mocks"
)

func TestSink_WritesOnClose(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink, err := New(fs, "out/stream.h264")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	units := [][]byte{{0, 0, 0, 1, 0x67, 0x42}, {0, 0, 0, 1, 0x65, 0x88}}
	for _, u := range units {
		if _, err := sink.Write(u); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	// Buffered until Close.
	if _, ok := fs.GetFile("out/stream.h264"); ok {
		t.Error("file visible before Close")
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, ok := fs.GetFile("out/stream.h264")
	if !ok {
		t.Fatal("file not written")
	}
	want := bytes.Join(units, nil)
	if !bytes.Equal(got, want) {
		t.Errorf("file = %x, want %x", got, want)
	}
	if sink.Written() != int64(len(want)) {
		t.Errorf("Written = %d, want %d", sink.Written(), len(want))
	}
}

func TestSink_WriteAfterClose(t *testing.T) {
	sink, err := New(mocks.NewFileSystem(), "a.h264")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if _, err := sink.Write([]byte{1}); !errors.Is(err, ErrClosed) {
		t.Errorf("Write after Close = %v, want ErrClosed", err)
	}
}

func TestSink_CreateError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.CreateFunc = func(string) (io.WriteCloser, error) {
		return nil, errors.New("read-only")
	}
	if _, err := New(fs, "a.h264"); err == nil {
		t.Error("expected create error")
	}
}
