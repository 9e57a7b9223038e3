package yuv

import (
	"context"
	"fmt"

	"github.com/user/avcrec/pkg/pipeline"
)

// Transformer rotates raw NV21 frames by 90 degrees and converts them to
// NV12. It implements pipeline.Stage and is not safe for concurrent use:
// the returned frame's data is reused by the next call.
type Transformer struct {
	mode    ChromaMode
	rotated []byte
	out     []byte
}

// NewTransformer creates a Transformer using the given chroma mode.
func NewTransformer(mode ChromaMode) *Transformer {
	return &Transformer{mode: mode}
}

// Execute transforms one frame.
func (t *Transformer) Execute(ctx context.Context, frame pipeline.RawFrame) (pipeline.TransformedFrame, error) {
	res := frame.Resolution
	size := len(frame.Data)
	if cap(t.rotated) < size {
		t.rotated = make([]byte, size)
		t.out = make([]byte, size)
	}
	t.rotated = t.rotated[:size]
	t.out = t.out[:size]

	if err := Rotate90Into(t.rotated, frame.Data, res.Width, res.Height); err != nil {
		return pipeline.TransformedFrame{}, fmt.Errorf("rotate: %w", err)
	}

	rotated := res.Rotated()
	if err := ConvertChromaOrderInto(t.out, t.rotated, rotated.Width, rotated.Height, t.mode); err != nil {
		return pipeline.TransformedFrame{}, fmt.Errorf("convert chroma: %w", err)
	}

	return pipeline.TransformedFrame{Data: t.out, Resolution: rotated}, nil
}

var _ pipeline.Stage[pipeline.RawFrame, pipeline.TransformedFrame] = (*Transformer)(nil)
