package ports

import (
	"context"

	"github.com/user/avcrec/pkg/pipeline"
)

// FrameSource delivers raw NV21 frames, typically from a camera.
type FrameSource interface {
	// Resolution returns the fixed capture resolution of every frame.
	Resolution() pipeline.Resolution

	// Run delivers frames in arrival order until the source is exhausted
	// or ctx is done. deliver must not block.
	// The delivered slice belongs to the receiver.
	Run(ctx context.Context, deliver func(data []byte)) error
}
