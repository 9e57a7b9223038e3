// Package session runs an H.264 encoding session: raw frames queued by a
// capture callback are rotated, converted to the encoder's chroma layout,
// fed to a ports.VideoCodec on a dedicated worker goroutine, and the
// encoder's output is assembled into an elementary stream.
//
// Lifecycle: New -> Configure -> Start -> AddPlanes... -> Stop.
// A stopped session cannot be restarted.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/avcrec/pkg/bitstream"
	"github.com/user/avcrec/pkg/framequeue"
	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
	"github.com/user/avcrec/pkg/yuv"
)

// idleDrainInterval is how often an idle worker polls the encoder for output.
const idleDrainInterval = 50 * time.Millisecond

// Stats is a snapshot of session counters.
type Stats struct {
	FramesQueued  uint64
	FramesDropped uint64
	FramesFed     uint64
	ConfigUnits   int
	KeyFrames     int
	DeltaFrames   int
	BytesWritten  int64
	LoopErrors    uint64
}

// Session owns one encoder instance and its output sink.
type Session struct {
	factory ports.CodecFactory
	logger  ports.Logger
	now     func() time.Time

	// mu serializes Configure, Start and Stop.
	mu    sync.Mutex
	state State

	// running is read by producers and the worker without taking mu.
	running  atomic.Bool
	started  atomic.Bool
	released atomic.Bool

	resolution  pipeline.Resolution
	opts        Options
	codec       ports.VideoCodec
	sink        ports.BitstreamSink
	queue       *framequeue.Queue
	transformer pipeline.Stage[pipeline.RawFrame, pipeline.TransformedFrame]
	assembler   *bitstream.Assembler

	// ctx is cancelled by Stop to abort blocking waits in the worker.
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	teardown sync.Once

	lastPTS    int64
	fed        atomic.Uint64
	loopErrors atomic.Uint64
}

// New creates an unconfigured session that obtains its encoder from factory.
func New(factory ports.CodecFactory, logger ports.Logger) *Session {
	return &Session{
		factory: factory,
		logger:  logger.WithComponent("session"),
		now:     time.Now,
		queue:   framequeue.New(),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Configure creates the encoder for frames of the given capture resolution.
// The encoder is configured with width and height swapped because every
// frame is rotated by 90 degrees before it is fed. On failure the session
// stays unconfigured and the returned error matches ErrConfiguration.
func (s *Session) Configure(res pipeline.Resolution, sink ports.BitstreamSink, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnconfigured {
		return fmt.Errorf("%w: configure while %s", ErrInvalidState, s.state)
	}
	if sink == nil {
		return &ConfigurationError{Op: "configure", Err: errors.New("nil sink")}
	}
	if err := res.Validate(); err != nil {
		return &ConfigurationError{Op: "configure", Err: err}
	}
	opts = opts.withDefaults()

	codec, err := s.factory.CreateEncoder(ports.MIMETypeAVC)
	if err != nil {
		return &ConfigurationError{Op: "create", Err: err}
	}

	encoded := res.Rotated()
	format := ports.CodecFormat{
		MIME:                    ports.MIMETypeAVC,
		Width:                   encoded.Width,
		Height:                  encoded.Height,
		ColorFormat:             opts.ColorFormat,
		BitRate:                 opts.BitRate,
		FrameRate:               opts.FrameRate,
		KeyFrameIntervalSeconds: opts.KeyFrameIntervalSeconds,
	}
	if err := codec.Configure(format); err != nil {
		if rerr := codec.Release(); rerr != nil {
			s.logger.Warn("Failed to release encoder: %v", rerr)
		}
		return &ConfigurationError{Op: "configure", Err: err}
	}

	s.resolution = res
	s.opts = opts
	s.codec = codec
	s.sink = sink
	s.transformer = yuv.NewTransformer(opts.ChromaMode)
	s.assembler = bitstream.NewAssembler(sink)
	s.state = StateConfigured

	s.logger.Info("Encoder configured: %s capture, %s encoded, %d bps, %d fps",
		res, encoded, opts.BitRate, opts.FrameRate)
	return nil
}

// Start starts the encoder and launches the worker goroutine. Frames queued
// before Start are discarded.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateConfigured:
	case StateUnconfigured:
		return ErrNotInitialized
	default:
		return fmt.Errorf("%w: start while %s", ErrInvalidState, s.state)
	}

	if err := s.codec.Start(); err != nil {
		return fmt.Errorf("start encoder: %w", err)
	}

	if n := s.queue.Clear(); n > 0 {
		s.logger.Debug("Discarded %d stale frames", n)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan struct{})
	s.state = StateRunning
	s.started.Store(true)
	s.running.Store(true)

	go s.run()

	s.logger.Info("Encoder started")
	return nil
}

// AddPlanes queues one raw NV21 frame. It never blocks: frames are silently
// dropped unless the session is running and the queue has room.
// The session takes ownership of data.
func (s *Session) AddPlanes(data []byte) {
	if !s.running.Load() {
		return
	}
	if !s.queue.TryEnqueue(pipeline.RawFrame{Data: data, Resolution: s.resolution}) {
		s.logger.Debug("Frame dropped, queue full")
	}
}

// Stop ends the session. When running, it signals the worker, which finishes
// its current iteration, closes the sink and stops and releases the encoder.
// Stop waits for that to complete. Teardown failures are logged only.
// Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	switch s.state {
	case StateUnconfigured:
		s.state = StateStopped
		s.mu.Unlock()
		return

	case StateConfigured:
		s.state = StateStopped
		s.mu.Unlock()
		s.release()
		return

	case StateRunning:
		s.state = StateStopped
		s.running.Store(false)
		s.cancel()
	}
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Feed copies one transformed frame into an encoder input slot and submits
// it. It waits for a free slot until ctx is done. Feed is meant to be called
// by the worker only.
func (s *Session) Feed(ctx context.Context, frame pipeline.TransformedFrame) error {
	if !s.started.Load() {
		return ErrNotInitialized
	}
	if s.released.Load() {
		return ErrStopped
	}

	slot, err := s.codec.DequeueInput(ctx)
	if err != nil {
		return fmt.Errorf("dequeue input: %w", err)
	}

	pts := s.nextPTS()
	if len(slot.Buf) < len(frame.Data) {
		// Hand the slot back empty so it is not lost.
		if qerr := s.codec.QueueInput(slot, 0, pts, 0); qerr != nil {
			s.logger.Warn("Failed to return input slot: %v", qerr)
		}
		return fmt.Errorf("%w: %d bytes for a %d byte frame", ErrSlotTooSmall, len(slot.Buf), len(frame.Data))
	}

	n := copy(slot.Buf, frame.Data)
	if err := s.codec.QueueInput(slot, n, pts, 0); err != nil {
		return fmt.Errorf("queue input: %w", err)
	}
	s.fed.Add(1)
	return nil
}

// nextPTS returns the wall clock in microseconds, never going backwards.
func (s *Session) nextPTS() int64 {
	pts := s.now().UnixMicro()
	if pts < s.lastPTS {
		pts = s.lastPTS
	}
	s.lastPTS = pts
	return pts
}

// DrainOutputs hands every output unit that becomes ready within the drain
// timeout to the assembler and releases its buffer. It returns as soon as no
// unit is available, reporting how many were processed. DrainOutputs is
// meant to be called by the worker only.
func (s *Session) DrainOutputs() (int, error) {
	if !s.started.Load() {
		return 0, ErrNotInitialized
	}
	if s.released.Load() {
		return 0, ErrStopped
	}

	n := 0
	for {
		buf, ok, err := s.codec.DequeueOutput(s.opts.DrainTimeout)
		if err != nil {
			return n, fmt.Errorf("dequeue output: %w", err)
		}
		if !ok {
			return n, nil
		}

		unit := bitstream.UnitFromBuffer(buf)
		herr := s.assembler.Handle(unit)
		if err := s.codec.ReleaseOutput(buf.Index); err != nil && herr == nil {
			herr = fmt.Errorf("release output %d: %w", buf.Index, err)
		}
		if herr != nil {
			return n, herr
		}
		n++

		s.logger.Debug("Wrote %s unit: %d bytes, pts %d", unit.Kind, len(unit.Data), unit.PresentationTimeUs)
	}
}

// run is the worker loop. The running flag is checked once per iteration.
func (s *Session) run() {
	defer close(s.done)

	for s.running.Load() {
		if err := s.iterate(); err != nil {
			if s.ctx.Err() != nil {
				continue
			}
			s.loopErrors.Add(1)
			s.logger.Warn("Encoding iteration failed: %v", err)
		}
	}

	s.release()
}

func (s *Session) iterate() error {
	frame, ok := s.queue.TryDequeue()
	var drainErr error
	if !ok {
		// Collect output still in flight before sleeping on the queue.
		var n int
		n, drainErr = s.DrainOutputs()
		if drainErr == nil && n > 0 {
			return nil
		}
		// Wake up periodically so late encoder output is still collected
		// while no frames arrive. A failed drain waits here too.
		ctx, cancel := context.WithTimeout(s.ctx, idleDrainInterval)
		var err error
		frame, err = s.queue.Dequeue(ctx)
		cancel()
		if err != nil {
			return drainErr
		}
	}

	return errors.Join(drainErr, s.encode(frame))
}

// encode transforms and feeds one frame, then collects ready output.
func (s *Session) encode(frame pipeline.RawFrame) error {
	transformed, err := s.transformer.Execute(s.ctx, frame)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if err := s.Feed(s.ctx, transformed); err != nil {
		return err
	}
	_, err = s.DrainOutputs()
	return err
}

// release closes the sink, then stops and releases the encoder, once.
func (s *Session) release() {
	s.teardown.Do(func() {
		if err := s.sink.Close(); err != nil {
			s.logger.Warn("Failed to close sink: %v", err)
		}
		if s.started.Load() {
			if err := s.codec.Stop(); err != nil {
				s.logger.Warn("Failed to stop encoder: %v", err)
			}
		}
		if err := s.codec.Release(); err != nil {
			s.logger.Warn("Failed to release encoder: %v", err)
		}
		s.released.Store(true)

		st := s.Stats()
		s.logger.Info("Encoder stopped: %d frames fed, %d dropped, %d bytes written",
			st.FramesFed, st.FramesDropped, st.BytesWritten)
	})
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	q := s.queue.Stats()
	st := Stats{
		FramesQueued:  q.Enqueued,
		FramesDropped: q.Dropped,
		FramesFed:     s.fed.Load(),
		LoopErrors:    s.loopErrors.Load(),
	}
	s.mu.Lock()
	assembler := s.assembler
	s.mu.Unlock()
	if assembler != nil {
		a := assembler.Stats()
		st.ConfigUnits = a.ConfigUnits
		st.KeyFrames = a.KeyFrames
		st.DeltaFrames = a.DeltaFrames
		st.BytesWritten = a.BytesWritten
	}
	return st
}

// QueueLen returns the number of frames waiting for the worker.
func (s *Session) QueueLen() int {
	return s.queue.Len()
}
