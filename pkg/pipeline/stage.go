// Package pipeline defines the frame and unit types shared by the recording
// pipeline, and the Stage abstraction its processing steps implement.
package pipeline

import (
	"context"
)

// Stage is a processing step that turns an input into an output.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc is a function adapter for Stage interface.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage interface.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
