package ffmpegcodec

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/user/avcrec/pkg/bitstream"
	"github.com/user/avcrec/pkg/mocks"
	"github.com/user/avcrec/pkg/ports"
)

var (
	sps    = []byte{0x67, 0x42, 0xC0, 0x1E, 0xDA, 0x02, 0x80}
	sps2   = []byte{0x67, 0x42, 0xC0, 0x1F, 0xDA, 0x02, 0x80}
	pps    = []byte{0x68, 0xCE, 0x3C, 0x80}
	idr    = []byte{0x65, 0x88, 0x84, 0x00, 0x33}
	pslice = []byte{0x41, 0x9A, 0x02, 0x04}
	aud    = []byte{0x09, 0xF0}
)

func annexB(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, n...)
	}
	return out
}

// newPublisher returns a codec wired just enough for publish.
func newPublisher(pts ...int64) *Codec {
	c := New("ffmpeg", mocks.NewLogger())
	c.outputs = make(chan ports.OutputBuffer, outputBacklog)
	c.halt = make(chan struct{})
	c.pts = pts
	return c
}

func drainOutputs(c *Codec) []ports.OutputBuffer {
	var out []ports.OutputBuffer
	for {
		select {
		case buf := <-c.outputs:
			out = append(out, buf)
		default:
			return out
		}
	}
}

func TestPublish(t *testing.T) {
	c := newPublisher(100, 200, 300)

	c.publish(bitstream.AccessUnit{NALUs: [][]byte{sps, pps, idr}})
	c.publish(bitstream.AccessUnit{NALUs: [][]byte{pslice}})
	c.publish(bitstream.AccessUnit{NALUs: [][]byte{sps, pps, idr}})
	c.publish(bitstream.AccessUnit{NALUs: [][]byte{sps2, pps, idr}})

	got := drainOutputs(c)
	want := []struct {
		flags ports.BufferFlags
		pts   int64
		data  []byte
	}{
		{ports.FlagCodecConfig, 100, annexB(sps, pps)},
		{ports.FlagKeyFrame, 100, annexB(idr)},
		{0, 200, annexB(pslice)},
		// Unchanged parameter sets are not repeated.
		{ports.FlagKeyFrame, 300, annexB(idr)},
		// PTS queue exhausted: the last value is reused.
		{ports.FlagCodecConfig, 300, annexB(sps2, pps)},
		{ports.FlagKeyFrame, 300, annexB(idr)},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d outputs, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Flags != w.flags {
			t.Errorf("output %d flags = %b, want %b", i, got[i].Flags, w.flags)
		}
		if got[i].PresentationTimeUs != w.pts {
			t.Errorf("output %d pts = %d, want %d", i, got[i].PresentationTimeUs, w.pts)
		}
		if !bytes.Equal(got[i].Data, w.data) {
			t.Errorf("output %d data = %x, want %x", i, got[i].Data, w.data)
		}
		if got[i].Index != i {
			t.Errorf("output %d index = %d", i, got[i].Index)
		}
	}
}

func TestPublish_ConfigOnlyUnitKeepsPTS(t *testing.T) {
	c := newPublisher(500)

	c.publish(bitstream.AccessUnit{NALUs: [][]byte{sps, pps}})
	c.publish(bitstream.AccessUnit{NALUs: [][]byte{idr}})

	got := drainOutputs(c)
	if len(got) != 2 {
		t.Fatalf("got %d outputs, want 2", len(got))
	}
	if !got[0].Flags.Has(ports.FlagCodecConfig) || got[0].PresentationTimeUs != 500 {
		t.Errorf("config output = %+v", got[0])
	}
	if !got[1].Flags.Has(ports.FlagKeyFrame) || got[1].PresentationTimeUs != 500 {
		t.Errorf("key output = %+v", got[1])
	}
}

func TestPublish_ReturnsOnHalt(t *testing.T) {
	c := newPublisher(1)
	c.outputs = make(chan ports.OutputBuffer) // Nobody reads.
	close(c.halt)

	done := make(chan struct{})
	go func() {
		c.publish(bitstream.AccessUnit{NALUs: [][]byte{sps, pps, idr}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked after halt")
	}
}

// TestCodec_StubProcess runs the codec against a shell script that prints a
// canned Annex B stream and swallows its input, so the process plumbing is
// exercised without ffmpeg.
func TestCodec_StubProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}

	dir := t.TempDir()
	stream := filepath.Join(dir, "stream.h264")
	canned := annexB(sps, pps, idr, pslice, pslice, aud)
	if err := os.WriteFile(stream, canned, 0644); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "ffmpeg")
	body := "#!/bin/sh\ncat '" + stream + "'\ncat > /dev/null\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}

	c := New(script, mocks.NewLogger())
	if err := c.Configure(testFormat()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Release()

	slot, err := c.DequeueInput(context.Background())
	if err != nil {
		t.Fatalf("DequeueInput failed: %v", err)
	}
	if err := c.QueueInput(slot, len(slot.Buf), 0, 0); err != nil {
		t.Fatalf("QueueInput failed: %v", err)
	}

	// The unit after the first delta is still open while the script runs,
	// so expect config, key and one delta.
	var flags []ports.BufferFlags
	deadline := time.Now().Add(5 * time.Second)
	for len(flags) < 3 && time.Now().Before(deadline) {
		buf, ok, err := c.DequeueOutput(50 * time.Millisecond)
		if err != nil {
			t.Fatalf("DequeueOutput failed: %v", err)
		}
		if !ok {
			continue
		}
		flags = append(flags, buf.Flags)
		if err := c.ReleaseOutput(buf.Index); err != nil {
			t.Fatalf("ReleaseOutput failed: %v", err)
		}
	}

	want := []ports.BufferFlags{ports.FlagCodecConfig, ports.FlagKeyFrame, 0}
	if len(flags) != len(want) {
		t.Fatalf("flags = %v, want %v", flags, want)
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Errorf("unit %d flags = %b, want %b", i, flags[i], want[i])
		}
	}

	if err := c.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
