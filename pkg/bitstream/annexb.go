package bitstream

import (
	"bytes"

	"github.com/Eyevinn/mp4ff/avc"

	"github.com/user/avcrec/pkg/pipeline"
)

var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// AccessUnit is the group of NAL units making up one coded picture, together
// with any parameter sets and SEI that precede it.
type AccessUnit struct {
	NALUs [][]byte
}

// Kind classifies the access unit. Units holding only SPS/PPS are config
// data, units with an IDR slice are key frames.
func (u AccessUnit) Kind() pipeline.UnitKind {
	hasPicture := false
	for _, nalu := range u.NALUs {
		if len(nalu) == 0 {
			continue
		}
		switch avc.GetNaluType(nalu[0]) {
		case avc.NALU_IDR:
			return pipeline.UnitKeyFrame
		case avc.NALU_NON_IDR:
			hasPicture = true
		}
	}
	if !hasPicture && u.hasParameterSets() {
		return pipeline.UnitConfigData
	}
	return pipeline.UnitDeltaFrame
}

func (u AccessUnit) hasParameterSets() bool {
	for _, nalu := range u.NALUs {
		if isParameterSet(nalu) {
			return true
		}
	}
	return false
}

// ParameterSets returns the SPS and PPS NAL units in Annex B form, or nil if
// the unit carries none.
func (u AccessUnit) ParameterSets() []byte {
	return u.join(isParameterSet)
}

// Picture returns every NAL unit except SPS and PPS in Annex B form.
func (u AccessUnit) Picture() []byte {
	return u.join(func(nalu []byte) bool { return !isParameterSet(nalu) })
}

// Bytes returns the whole access unit in Annex B form.
func (u AccessUnit) Bytes() []byte {
	return u.join(func([]byte) bool { return true })
}

func (u AccessUnit) join(keep func([]byte) bool) []byte {
	var out []byte
	for _, nalu := range u.NALUs {
		if len(nalu) > 0 && keep(nalu) {
			out = append(out, startCode...)
			out = append(out, nalu...)
		}
	}
	return out
}

func isParameterSet(nalu []byte) bool {
	if len(nalu) == 0 {
		return false
	}
	t := avc.GetNaluType(nalu[0])
	return t == avc.NALU_SPS || t == avc.NALU_PPS
}

// firstSliceOfPicture reports whether a VCL NAL unit starts a new picture.
// first_mb_in_slice is the leading ue(v) of the slice header; zero encodes
// as a single set bit.
func firstSliceOfPicture(nalu []byte) bool {
	return len(nalu) > 1 && nalu[1]&0x80 != 0
}

// Splitter cuts an Annex B byte stream, delivered in arbitrary chunks, into
// access units. It is not safe for concurrent use.
type Splitter struct {
	pending []byte
	current [][]byte
	hasVCL  bool
}

// Push appends a chunk of the stream and returns the access units that are
// known to be complete.
func (s *Splitter) Push(chunk []byte) []AccessUnit {
	s.pending = append(s.pending, chunk...)

	cut := lastStartCode(s.pending)
	if cut <= 0 {
		return nil
	}

	var units []AccessUnit
	for _, nalu := range avc.ExtractNalusFromByteStream(s.pending[:cut]) {
		if len(nalu) == 0 {
			continue
		}
		if au, ok := s.add(bytes.Clone(nalu)); ok {
			units = append(units, au)
		}
	}
	s.pending = append(s.pending[:0], s.pending[cut:]...)
	return units
}

// Flush treats the buffered bytes as the end of the stream and returns the
// remaining access units.
func (s *Splitter) Flush() []AccessUnit {
	var units []AccessUnit
	for _, nalu := range avc.ExtractNalusFromByteStream(s.pending) {
		if len(nalu) == 0 {
			continue
		}
		if au, ok := s.add(bytes.Clone(nalu)); ok {
			units = append(units, au)
		}
	}
	s.pending = s.pending[:0]
	if len(s.current) > 0 {
		units = append(units, AccessUnit{NALUs: s.current})
	}
	s.current = nil
	s.hasVCL = false
	return units
}

// add appends nalu to the unit being collected, first closing that unit if
// nalu begins a new one.
func (s *Splitter) add(nalu []byte) (AccessUnit, bool) {
	var done AccessUnit
	closed := false
	if len(nalu) == 0 {
		return done, closed
	}

	boundary := false
	switch avc.GetNaluType(nalu[0]) {
	case avc.NALU_AUD:
		boundary = true
	case avc.NALU_SPS, avc.NALU_PPS, avc.NALU_SEI:
		boundary = s.hasVCL
	case avc.NALU_IDR, avc.NALU_NON_IDR:
		boundary = s.hasVCL && firstSliceOfPicture(nalu)
	}

	if boundary && len(s.current) > 0 {
		done = AccessUnit{NALUs: s.current}
		closed = true
		s.current = nil
		s.hasVCL = false
	}

	s.current = append(s.current, nalu)
	if t := avc.GetNaluType(nalu[0]); t == avc.NALU_IDR || t == avc.NALU_NON_IDR {
		s.hasVCL = true
	}
	return done, closed
}

// lastStartCode returns the offset of the zero run that opens the last start
// code in buf, or -1 if there is none.
func lastStartCode(buf []byte) int {
	for i := len(buf) - 3; i >= 0; i-- {
		if buf[i] == 0 && buf[i+1] == 0 && buf[i+2] == 1 {
			for i > 0 && buf[i-1] == 0 {
				i--
			}
			return i
		}
	}
	return -1
}

// SplitAccessUnits splits a complete Annex B stream into access units.
func SplitAccessUnits(stream []byte) []AccessUnit {
	var s Splitter
	units := s.Push(stream)
	return append(units, s.Flush()...)
}
