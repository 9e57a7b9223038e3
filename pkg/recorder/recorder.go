// Package recorder runs one recording: frames from a ports.FrameSource are
// pushed through an encoding session into a bitstream sink.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/avcrec/pkg/ports"
	"github.com/user/avcrec/pkg/session"
)

// Config controls a recording.
type Config struct {
	Session session.Options

	// Frames stops the recording after this many frames. Zero records until
	// the source ends or the context is cancelled.
	Frames int

	// DrainWait bounds how long queued frames are given to reach the
	// encoder once the source has finished (default: 2s).
	DrainWait time.Duration

	// Settle is how long the recorder keeps the session running after the
	// queue is empty so the encoder output in flight is collected
	// (default: 100ms).
	Settle time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Session:   session.DefaultOptions(),
		DrainWait: 2 * time.Second,
		Settle:    100 * time.Millisecond,
	}
}

// Result summarizes a finished recording.
type Result struct {
	FramesDelivered int
	Stats           session.Stats
	Duration        time.Duration
}

// Recorder wires frame sources to encoding sessions.
type Recorder struct {
	factory ports.CodecFactory
	logger  ports.Logger
}

// New creates a Recorder that obtains encoders from factory.
func New(factory ports.CodecFactory, logger ports.Logger) *Recorder {
	return &Recorder{
		factory: factory,
		logger:  logger,
	}
}

// Run records src into sink until the source ends, the frame limit is hit
// or ctx is cancelled. Cancellation is a normal way to end a recording and
// is not reported as an error. The sink is closed in every case.
func (r *Recorder) Run(ctx context.Context, src ports.FrameSource, sink ports.BitstreamSink, cfg Config) (Result, error) {
	log := r.logger.WithComponent("recorder")
	if cfg.DrainWait <= 0 {
		cfg.DrainWait = DefaultConfig().DrainWait
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}

	started := time.Now()
	sess := session.New(r.factory, r.logger)

	res := src.Resolution()
	if err := sess.Configure(res, sink, cfg.Session); err != nil {
		if cerr := sink.Close(); cerr != nil {
			log.Warn("Failed to close sink: %v", cerr)
		}
		return Result{}, err
	}
	if err := sess.Start(); err != nil {
		sess.Stop()
		return Result{}, err
	}
	log.Info("Recording %s", res)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	delivered := 0
	deliver := func(data []byte) {
		if cfg.Frames > 0 && delivered >= cfg.Frames {
			return
		}
		delivered++
		sess.AddPlanes(data)
		if cfg.Frames > 0 && delivered >= cfg.Frames {
			cancel()
		}
	}

	srcErr := src.Run(runCtx, deliver)
	if errors.Is(srcErr, context.Canceled) || errors.Is(srcErr, context.DeadlineExceeded) {
		if runCtx.Err() != nil {
			srcErr = nil
		}
	}
	if srcErr != nil {
		log.Error("Frame source failed: %v", srcErr)
	} else {
		log.Info("Source finished after %d frames", delivered)
	}

	r.drain(sess, cfg, log)
	sess.Stop()

	result := Result{
		FramesDelivered: delivered,
		Stats:           sess.Stats(),
		Duration:        time.Since(started),
	}
	log.Info("Recording finished: %d frames delivered, %d encoded, %d dropped, %d bytes",
		result.FramesDelivered, result.Stats.FramesFed, result.Stats.FramesDropped, result.Stats.BytesWritten)

	if srcErr != nil {
		return result, fmt.Errorf("frame source: %w", srcErr)
	}
	return result, nil
}

// drain waits for the session queue to empty, then lets the worker collect
// the encoder's remaining output.
func (r *Recorder) drain(sess *session.Session, cfg Config, log ports.Logger) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.NewTimer(cfg.DrainWait)
	defer deadline.Stop()

	for sess.QueueLen() > 0 {
		select {
		case <-ticker.C:
		case <-deadline.C:
			log.Warn("Queue not drained, %d frames discarded", sess.QueueLen())
			return
		}
	}

	if cfg.Settle > 0 {
		time.Sleep(cfg.Settle)
	}
}
