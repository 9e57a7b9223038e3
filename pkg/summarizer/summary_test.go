package summarizer

import (
	"testing"
	"time"

	"github.com/user/avcrec/pkg/recorder"
	"github.com/user/avcrec/pkg/session"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithResult(t *testing.T) {
	result := recorder.Result{
		FramesDelivered: 12,
		Stats: session.Stats{
			FramesFed:     10,
			FramesDropped: 2,
			ConfigUnits:   1,
			KeyFrames:     1,
			DeltaFrames:   9,
			BytesWritten:  4096,
		},
		Duration: 1500 * time.Millisecond,
	}

	summary := NewBuilder().
		WithOutput("cam.h264", 0).
		WithResult(result).
		Build()

	if summary.Output.Path != "cam.h264" {
		t.Errorf("expected path 'cam.h264', got '%s'", summary.Output.Path)
	}
	if summary.Output.FileSize != 4096 {
		t.Errorf("expected file size from bytes written, got %d", summary.Output.FileSize)
	}
	if summary.Results.FramesFed != 10 || summary.Results.FramesDropped != 2 {
		t.Errorf("unexpected frame counters: %+v", summary.Results)
	}
	if summary.Results.DurationMs != 1500 {
		t.Errorf("expected DurationMs 1500, got %d", summary.Results.DurationMs)
	}
}

func TestBuilder_WithOutputKeepsExplicitSize(t *testing.T) {
	result := recorder.Result{Stats: session.Stats{BytesWritten: 10}}
	summary := NewBuilder().WithOutput("a.h264", 99).WithResult(result).Build()
	if summary.Output.FileSize != 99 {
		t.Errorf("expected file size 99, got %d", summary.Output.FileSize)
	}
}
