package mocks

import (
	"context"

	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource that delivers
// Count frames filled with their index, without pacing.
type FrameSource struct {
	Res   pipeline.Resolution
	Count int

	// Hold keeps Run blocked after the last frame until ctx is done.
	Hold bool
	// Err is returned by Run after the frames are delivered.
	Err error
	// OnFrame is called after each delivery.
	OnFrame func(n int)
}

func (m *FrameSource) Resolution() pipeline.Resolution {
	return m.Res
}

func (m *FrameSource) Run(ctx context.Context, deliver func([]byte)) error {
	for n := 0; n < m.Count; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame := make([]byte, m.Res.FrameSize())
		for i := range frame {
			frame[i] = byte(n)
		}
		deliver(frame)
		if m.OnFrame != nil {
			m.OnFrame(n)
		}
	}
	if m.Err != nil {
		return m.Err
	}
	if m.Hold {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

var _ ports.FrameSource = (*FrameSource)(nil)
