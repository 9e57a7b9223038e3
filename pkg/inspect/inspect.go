// Package inspect summarizes an H.264 Annex B elementary stream.
package inspect

import (
	"errors"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/avc"

	"github.com/user/avcrec/pkg/bitstream"
	"github.com/user/avcrec/pkg/pipeline"
)

// ErrEmptyStream is returned when the input holds no NAL units.
var ErrEmptyStream = errors.New("inspect: empty stream")

const readChunk = 64 * 1024

// SPSInfo holds the fields of the first sequence parameter set.
type SPSInfo struct {
	Width   int
	Height  int
	Profile int
	Level   int
}

// ProfileName returns the common name of the H.264 profile.
func (s SPSInfo) ProfileName() string {
	switch s.Profile {
	case 66:
		return "Baseline"
	case 77:
		return "Main"
	case 88:
		return "Extended"
	case 100:
		return "High"
	case 110:
		return "High 10"
	case 122:
		return "High 4:2:2"
	case 244:
		return "High 4:4:4"
	default:
		return fmt.Sprintf("profile %d", s.Profile)
	}
}

// Report describes a stream.
type Report struct {
	Bytes       int64
	AccessUnits int
	NALUnits    int

	// ConfigUnits counts access units carrying SPS or PPS, including the
	// ones that also hold a key frame.
	ConfigUnits int
	KeyFrames   int
	DeltaFrames int

	// SPS is nil when the stream has no parseable SPS.
	SPS *SPSInfo
}

// Analyze reads an elementary stream to the end.
func Analyze(r io.Reader) (Report, error) {
	var rep Report
	var splitter bitstream.Splitter

	chunk := make([]byte, readChunk)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			rep.Bytes += int64(n)
			for _, au := range splitter.Push(chunk[:n]) {
				if err := rep.add(au); err != nil {
					return rep, err
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return rep, fmt.Errorf("read stream: %w", err)
		}
	}
	for _, au := range splitter.Flush() {
		if err := rep.add(au); err != nil {
			return rep, err
		}
	}

	if rep.NALUnits == 0 {
		return rep, ErrEmptyStream
	}
	return rep, nil
}

func (r *Report) add(au bitstream.AccessUnit) error {
	r.AccessUnits++
	r.NALUnits += len(au.NALUs)

	if au.ParameterSets() != nil {
		r.ConfigUnits++
	}
	switch au.Kind() {
	case pipeline.UnitKeyFrame:
		r.KeyFrames++
	case pipeline.UnitDeltaFrame:
		r.DeltaFrames++
	}

	if r.SPS != nil {
		return nil
	}
	for _, nalu := range au.NALUs {
		if len(nalu) == 0 || avc.GetNaluType(nalu[0]) != avc.NALU_SPS {
			continue
		}
		sps, err := avc.ParseSPSNALUnit(nalu, false)
		if err != nil {
			return fmt.Errorf("parse SPS: %w", err)
		}
		r.SPS = &SPSInfo{
			Width:   int(sps.Width),
			Height:  int(sps.Height),
			Profile: int(sps.Profile),
			Level:   int(sps.Level),
		}
		break
	}
	return nil
}

// Format writes a human readable summary.
func (r Report) Format(w io.Writer) error {
	if r.SPS != nil {
		if _, err := fmt.Fprintf(w, "Resolution:    %dx%d\nProfile:       %s\nLevel:         %d.%d\n",
			r.SPS.Width, r.SPS.Height, r.SPS.ProfileName(), r.SPS.Level/10, r.SPS.Level%10); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Bytes:         %d\nAccess units:  %d\nNAL units:     %d\nConfig units:  %d\nKey frames:    %d\nDelta frames:  %d\n",
		r.Bytes, r.AccessUnits, r.NALUnits, r.ConfigUnits, r.KeyFrames, r.DeltaFrames)
	return err
}
