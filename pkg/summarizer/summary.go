// Package summarizer provides summary generation for recording results.
package summarizer

import (
	"time"

	"github.com/user/avcrec/pkg/recorder"
)

// Summary contains all data collected during a recording.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Output file
	Output OutputInfo

	// Recording settings
	Settings Settings

	// Session counters
	Results Results
}

// OutputInfo describes the written stream.
type OutputInfo struct {
	Path     string
	FileSize int64
}

// Settings contains the recording configuration.
type Settings struct {
	Source           string
	CaptureWidth     int
	CaptureHeight    int
	BitRate          int // bits/sec
	FrameRate        int
	KeyFrameInterval int // seconds
	ChromaMode       string
}

// Results contains what the session reported.
type Results struct {
	FramesDelivered int
	FramesFed       uint64
	FramesDropped   uint64
	ConfigUnits     int
	KeyFrames       int
	DeltaFrames     int
	LoopErrors      uint64
	DurationMs      int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithOutput sets output file information.
func (b *Builder) WithOutput(path string, size int64) *Builder {
	b.summary.Output = OutputInfo{
		Path:     path,
		FileSize: size,
	}
	return b
}

// WithSettings sets recording settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithResult copies the counters of a finished recording.
func (b *Builder) WithResult(r recorder.Result) *Builder {
	b.summary.Results = Results{
		FramesDelivered: r.FramesDelivered,
		FramesFed:       r.Stats.FramesFed,
		FramesDropped:   r.Stats.FramesDropped,
		ConfigUnits:     r.Stats.ConfigUnits,
		KeyFrames:       r.Stats.KeyFrames,
		DeltaFrames:     r.Stats.DeltaFrames,
		LoopErrors:      r.Stats.LoopErrors,
		DurationMs:      r.Duration.Milliseconds(),
	}
	if b.summary.Output.FileSize == 0 {
		b.summary.Output.FileSize = r.Stats.BytesWritten
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
