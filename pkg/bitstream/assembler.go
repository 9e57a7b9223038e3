// Package bitstream turns encoder output units into an H.264 elementary
// stream: parameter sets are held back and prepended to every key frame,
// delta frames pass through unchanged.
package bitstream

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
)

// ErrConfigMissing is returned when a key frame arrives before any codec
// config unit has been seen.
var ErrConfigMissing = errors.New("bitstream: key frame before codec config")

// Classify maps output buffer flags to a unit kind. Each flag is tested on
// its own, so a key frame that also ends the stream is still a key frame.
func Classify(flags ports.BufferFlags) pipeline.UnitKind {
	switch {
	case flags.Has(ports.FlagCodecConfig):
		return pipeline.UnitConfigData
	case flags.Has(ports.FlagKeyFrame):
		return pipeline.UnitKeyFrame
	default:
		return pipeline.UnitDeltaFrame
	}
}

// UnitFromBuffer classifies an output buffer. The returned unit aliases
// buf.Data.
func UnitFromBuffer(buf ports.OutputBuffer) pipeline.EncodedUnit {
	return pipeline.EncodedUnit{
		Data:               buf.Data,
		Kind:               Classify(buf.Flags),
		PresentationTimeUs: buf.PresentationTimeUs,
		EndOfStream:        buf.Flags.Has(ports.FlagEndOfStream),
	}
}

// Stats holds assembler counters.
type Stats struct {
	ConfigUnits  int
	KeyFrames    int
	DeltaFrames  int
	Rejected     int
	BytesWritten int64
}

// Assembler writes classified units to a sink. Handle must be called from a
// single goroutine; Stats may be read concurrently.
type Assembler struct {
	sink    io.Writer
	config  []byte
	scratch []byte

	mu    sync.Mutex
	stats Stats
}

// NewAssembler creates an Assembler writing to sink.
func NewAssembler(sink io.Writer) *Assembler {
	return &Assembler{sink: sink}
}

// Handle processes one unit. Unit data is copied where it must outlive the
// call, so the caller may release the underlying buffer afterwards.
func (a *Assembler) Handle(unit pipeline.EncodedUnit) error {
	switch unit.Kind {
	case pipeline.UnitConfigData:
		a.config = append(a.config[:0], unit.Data...)
		a.count(func(s *Stats) { s.ConfigUnits++ })
		return nil

	case pipeline.UnitKeyFrame:
		if len(a.config) == 0 {
			a.count(func(s *Stats) { s.Rejected++ })
			return ErrConfigMissing
		}
		a.scratch = append(append(a.scratch[:0], a.config...), unit.Data...)
		if err := a.write(a.scratch); err != nil {
			return fmt.Errorf("write key frame: %w", err)
		}
		a.count(func(s *Stats) { s.KeyFrames++ })
		return nil

	default:
		// A bare end-of-stream marker carries no payload.
		if len(unit.Data) == 0 {
			return nil
		}
		if err := a.write(unit.Data); err != nil {
			return fmt.Errorf("write delta frame: %w", err)
		}
		a.count(func(s *Stats) { s.DeltaFrames++ })
		return nil
	}
}

func (a *Assembler) write(p []byte) error {
	n, err := a.sink.Write(p)
	a.count(func(s *Stats) { s.BytesWritten += int64(n) })
	return err
}

func (a *Assembler) count(update func(*Stats)) {
	a.mu.Lock()
	update(&a.stats)
	a.mu.Unlock()
}

// Config returns the current codec config blob, or nil if none was seen.
func (a *Assembler) Config() []byte {
	if len(a.config) == 0 {
		return nil
	}
	return append([]byte(nil), a.config...)
}

// Stats returns the assembler counters.
func (a *Assembler) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
