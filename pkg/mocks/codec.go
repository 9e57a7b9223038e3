package mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/avcrec/pkg/ports"
)

// DefaultConfigData is the codec config blob emitted by VideoCodec.
var DefaultConfigData = []byte{0, 0, 0, 1, 0x67, 0x42, 0xC0, 0x1F, 0, 0, 0, 1, 0x68, 0xCE, 0x3C, 0x80}

// QueuedInput records one QueueInput call.
type QueuedInput struct {
	Data               []byte
	PresentationTimeUs int64
}

// VideoCodec is a scriptable mock implementation of ports.VideoCodec.
//
// By default the first queued input produces a codec config buffer followed
// by a key frame, and every later input produces a delta frame, or a key
// frame every KeyFrameEvery inputs.
type VideoCodec struct {
	ConfigureErr  error
	StartErr      error
	QueueErr      error
	DequeueOutErr error
	StopErr       error
	ReleaseErr    error
	Slots         int  // Number of input slots (default: 2)
	SlotSize      int  // Input slot size (default: frame size of the configured format)
	BlockInput    bool // DequeueInput never yields a slot
	KeyFrameEvery int
	ConfigData    []byte
	OnQueueInput  func(n int, data []byte, ptsUs int64) []ports.OutputBuffer
	Events        *EventLog

	mu          sync.Mutex
	format      ports.CodecFormat
	configured  bool
	started     bool
	stopped     bool
	released    bool
	slots       chan int
	buffers     [][]byte
	inputs      []QueuedInput
	pending     []ports.OutputBuffer
	ready       chan struct{}
	nextIndex   int
	inFlight    map[int]bool
	releasedOut []int
}

func (m *VideoCodec) Configure(format ports.CodecFormat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events.Record("codec.configure")
	if m.ConfigureErr != nil {
		return m.ConfigureErr
	}
	m.format = format
	m.configured = true
	return nil
}

func (m *VideoCodec) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events.Record("codec.start")
	if m.StartErr != nil {
		return m.StartErr
	}
	if !m.configured {
		return errors.New("mock codec: start before configure")
	}

	slots := m.Slots
	if slots <= 0 {
		slots = 2
	}
	size := m.SlotSize
	if size <= 0 {
		size = m.format.Width * m.format.Height * 3 / 2
	}
	m.slots = make(chan int, slots)
	m.buffers = make([][]byte, slots)
	for i := 0; i < slots; i++ {
		m.buffers[i] = make([]byte, size)
		m.slots <- i
	}
	m.ready = make(chan struct{}, 1)
	m.inFlight = make(map[int]bool)
	m.started = true
	return nil
}

func (m *VideoCodec) DequeueInput(ctx context.Context) (ports.InputSlot, error) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ports.InputSlot{}, errors.New("mock codec: not started")
	}
	slots := m.slots
	block := m.BlockInput
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return ports.InputSlot{}, ctx.Err()
	}

	select {
	case idx := <-slots:
		return ports.InputSlot{Index: idx, Buf: m.buffers[idx]}, nil
	case <-ctx.Done():
		return ports.InputSlot{}, ctx.Err()
	}
}

func (m *VideoCodec) QueueInput(slot ports.InputSlot, size int, ptsUs int64, flags ports.BufferFlags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueueErr != nil {
		m.slots <- slot.Index
		return m.QueueErr
	}

	data := bytes.Clone(slot.Buf[:size])
	n := len(m.inputs)
	m.inputs = append(m.inputs, QueuedInput{Data: data, PresentationTimeUs: ptsUs})
	m.slots <- slot.Index

	var outputs []ports.OutputBuffer
	if m.OnQueueInput != nil {
		outputs = m.OnQueueInput(n, data, ptsUs)
	} else {
		outputs = m.defaultOutputs(n, ptsUs)
	}
	for _, out := range outputs {
		out.Index = m.nextIndex
		m.nextIndex++
		m.inFlight[out.Index] = true
		m.pending = append(m.pending, out)
	}
	if len(outputs) > 0 {
		select {
		case m.ready <- struct{}{}:
		default:
		}
	}
	return nil
}

func (m *VideoCodec) defaultOutputs(n int, ptsUs int64) []ports.OutputBuffer {
	var outputs []ports.OutputBuffer
	if n == 0 {
		config := m.ConfigData
		if config == nil {
			config = DefaultConfigData
		}
		outputs = append(outputs, ports.OutputBuffer{
			Data:               bytes.Clone(config),
			PresentationTimeUs: ptsUs,
			Flags:              ports.FlagCodecConfig,
		})
	}

	flags := ports.BufferFlags(0)
	if n == 0 || (m.KeyFrameEvery > 0 && n%m.KeyFrameEvery == 0) {
		flags = ports.FlagKeyFrame
	}
	return append(outputs, ports.OutputBuffer{
		Data:               UnitPayload(n),
		PresentationTimeUs: ptsUs,
		Flags:              flags,
	})
}

// UnitPayload is the encoded payload the default script emits for input n.
func UnitPayload(n int) []byte {
	payload := make([]byte, 40+n)
	copy(payload, []byte{0, 0, 0, 1, 0x65})
	for i := 5; i < len(payload); i++ {
		payload[i] = byte(n + i)
	}
	return payload
}

func (m *VideoCodec) DequeueOutput(timeout time.Duration) (ports.OutputBuffer, bool, error) {
	if m.DequeueOutErr != nil {
		return ports.OutputBuffer{}, false, m.DequeueOutErr
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		m.mu.Lock()
		if !m.started {
			m.mu.Unlock()
			return ports.OutputBuffer{}, false, errors.New("mock codec: not started")
		}
		if len(m.pending) > 0 {
			out := m.pending[0]
			m.pending = m.pending[1:]
			m.mu.Unlock()
			return out, true, nil
		}
		ready := m.ready
		m.mu.Unlock()

		select {
		case <-ready:
		case <-timer.C:
			return ports.OutputBuffer{}, false, nil
		}
	}
}

func (m *VideoCodec) ReleaseOutput(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inFlight[index] {
		return fmt.Errorf("mock codec: output %d not in flight", index)
	}
	delete(m.inFlight, index)
	m.releasedOut = append(m.releasedOut, index)
	return nil
}

func (m *VideoCodec) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events.Record("codec.stop")
	m.stopped = true
	return m.StopErr
}

func (m *VideoCodec) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events.Record("codec.release")
	m.released = true
	return m.ReleaseErr
}

// Format returns the format passed to Configure.
func (m *VideoCodec) Format() ports.CodecFormat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.format
}

// Inputs returns the queued inputs in order.
func (m *VideoCodec) Inputs() []QueuedInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]QueuedInput(nil), m.inputs...)
}

// PendingOutputs returns the number of outputs not yet dequeued.
func (m *VideoCodec) PendingOutputs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// OutstandingOutputs returns the number of dequeued outputs not yet released.
func (m *VideoCodec) OutstandingOutputs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inFlight)
}

// Stopped reports whether Stop was called.
func (m *VideoCodec) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Released reports whether Release was called.
func (m *VideoCodec) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

var _ ports.VideoCodec = (*VideoCodec)(nil)

// CodecFactory is a mock implementation of ports.CodecFactory.
type CodecFactory struct {
	Codec *VideoCodec
	Err   error

	mu    sync.Mutex
	mimes []string
}

func (m *CodecFactory) CreateEncoder(mime string) (ports.VideoCodec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mimes = append(m.mimes, mime)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Codec, nil
}

// MIMETypes returns the MIME types requested so far.
func (m *CodecFactory) MIMETypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.mimes...)
}

var _ ports.CodecFactory = (*CodecFactory)(nil)

// ReleasedOutputs returns the output indices passed to ReleaseOutput.
func (m *VideoCodec) ReleasedOutputs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.releasedOut...)
}
