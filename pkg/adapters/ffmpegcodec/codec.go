// Package ffmpegcodec implements ports.VideoCodec on top of an ffmpeg
// subprocess running libx264. Raw frames are written to ffmpeg's stdin and
// the Annex B stream read from its stdout is cut back into access units.
package ffmpegcodec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/user/avcrec/pkg/bitstream"
	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
)

const (
	// DefaultSlots is the number of input slots lent out at once.
	DefaultSlots = 4

	// DefaultStopTimeout bounds how long Stop waits for ffmpeg to exit.
	DefaultStopTimeout = 5 * time.Second

	outputBacklog = 64
	readChunk     = 64 * 1024
)

type queuedFrame struct {
	index int
	size  int
}

// Codec is an H.264 encoder backed by one ffmpeg process.
type Codec struct {
	ffmpegPath  string
	logger      ports.Logger
	slotCount   int
	stopTimeout time.Duration

	mu         sync.Mutex
	format     ports.CodecFormat
	configured bool
	started    bool
	stopped    bool
	released   bool

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr bytes.Buffer

	slots   [][]byte
	free    chan int
	frames  chan queuedFrame
	outputs chan ports.OutputBuffer
	halt    chan struct{}

	writerDone chan struct{}
	readerDone chan struct{}
	writeErr   error

	// pts holds presentation times of queued frames not yet seen on output.
	// x264 runs without B-frames, so pictures come back in input order.
	pts        []int64
	lastPTS    int64
	lastParams []byte

	nextIndex   int
	outstanding map[int]struct{}
}

// New creates a codec that runs the ffmpeg executable at ffmpegPath.
func New(ffmpegPath string, logger ports.Logger) *Codec {
	return &Codec{
		ffmpegPath:  ffmpegPath,
		logger:      logger.WithComponent("ffmpeg"),
		slotCount:   DefaultSlots,
		stopTimeout: DefaultStopTimeout,
		outstanding: make(map[int]struct{}),
	}
}

// Configure validates format. The process is only launched by Start.
func (c *Codec) Configure(format ports.CodecFormat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.released {
		return fmt.Errorf("%w: configure after start", ErrStopped)
	}
	if err := validateFormat(format); err != nil {
		return err
	}
	c.format = format
	c.configured = true
	return nil
}

func validateFormat(f ports.CodecFormat) error {
	switch {
	case f.MIME != ports.MIMETypeAVC:
		return fmt.Errorf("%w: %q", ErrUnsupportedMIME, f.MIME)
	case f.Width <= 0 || f.Height <= 0 || f.Width%2 != 0 || f.Height%2 != 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFormat, f.Width, f.Height)
	case f.BitRate <= 0:
		return fmt.Errorf("%w: bit rate %d", ErrInvalidFormat, f.BitRate)
	case f.FrameRate <= 0:
		return fmt.Errorf("%w: frame rate %d", ErrInvalidFormat, f.FrameRate)
	case f.KeyFrameIntervalSeconds < 0:
		return fmt.Errorf("%w: key frame interval %d", ErrInvalidFormat, f.KeyFrameIntervalSeconds)
	}
	if _, err := pixelFormat(f.ColorFormat); err != nil {
		return err
	}
	return nil
}

func pixelFormat(c ports.ColorFormat) (string, error) {
	switch c {
	case ports.ColorFormatYUV420SemiPlanar:
		return "nv12", nil
	case ports.ColorFormatYUV420Planar:
		return "yuv420p", nil
	default:
		return "", fmt.Errorf("%w: color format %s", ErrInvalidFormat, c)
	}
}

// Args returns the ffmpeg command line for format.
func Args(format ports.CodecFormat) []string {
	pixFmt, _ := pixelFormat(format.ColorFormat)

	// An interval of zero makes every frame a key frame.
	gop := format.FrameRate * format.KeyFrameIntervalSeconds
	if gop < 1 {
		gop = 1
	}

	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo", // Input format
		"-pix_fmt", pixFmt,
		"-s", fmt.Sprintf("%dx%d", format.Width, format.Height),
		"-r", strconv.Itoa(format.FrameRate),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-tune", "zerolatency", // No lookahead, output follows input
		"-profile:v", "baseline",
		"-pix_fmt", "yuv420p",
		"-b:v", strconv.Itoa(format.BitRate),
		"-g", strconv.Itoa(gop),
		"-bf", "0",
		"-flush_packets", "1",
		"-f", "h264",
		"pipe:1",
	}
}

// FrameSize returns the number of bytes one input frame occupies.
func (c *Codec) FrameSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pipeline.Resolution{Width: c.format.Width, Height: c.format.Height}.FrameSize()
}

// Start launches ffmpeg along with the goroutines that feed and read it.
func (c *Codec) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.released || c.stopped:
		return ErrStopped
	case !c.configured:
		return ErrNotConfigured
	case c.started:
		return nil
	}

	c.cmd = exec.Command(c.ffmpegPath, Args(c.format)...)
	c.cmd.Stderr = &c.stderr

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	c.stdin = stdin
	c.stdout = stdout

	size := pipeline.Resolution{Width: c.format.Width, Height: c.format.Height}.FrameSize()
	c.slots = make([][]byte, c.slotCount)
	c.free = make(chan int, c.slotCount)
	for i := range c.slots {
		c.slots[i] = make([]byte, size)
		c.free <- i
	}
	c.frames = make(chan queuedFrame, c.slotCount)
	c.outputs = make(chan ports.OutputBuffer, outputBacklog)
	c.halt = make(chan struct{})
	c.writerDone = make(chan struct{})
	c.readerDone = make(chan struct{})
	c.started = true

	go c.writeLoop()
	go c.readLoop()

	c.logger.Debug("Started %s %dx%d", c.ffmpegPath, c.format.Width, c.format.Height)
	return nil
}

// DequeueInput waits for a free input slot.
func (c *Codec) DequeueInput(ctx context.Context) (ports.InputSlot, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ports.InputSlot{}, ErrNotStarted
	}
	if c.stopped {
		c.mu.Unlock()
		return ports.InputSlot{}, ErrStopped
	}
	free, halt := c.free, c.halt
	c.mu.Unlock()

	select {
	case i := <-free:
		return ports.InputSlot{Index: i, Buf: c.slots[i]}, nil
	case <-halt:
		return ports.InputSlot{}, ErrStopped
	case <-ctx.Done():
		return ports.InputSlot{}, ctx.Err()
	}
}

// QueueInput hands a filled slot to the writer. A zero size returns the
// slot unused.
func (c *Codec) QueueInput(slot ports.InputSlot, size int, presentationTimeUs int64, _ ports.BufferFlags) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return ErrNotStarted
	}
	if slot.Index < 0 || slot.Index >= len(c.slots) {
		return fmt.Errorf("%w: input %d", ErrUnknownBuffer, slot.Index)
	}
	if c.stopped {
		c.free <- slot.Index
		return ErrStopped
	}
	if size == 0 {
		c.free <- slot.Index
		return nil
	}
	if size != len(c.slots[slot.Index]) {
		c.free <- slot.Index
		return fmt.Errorf("%w: %d bytes, want %d", ErrFrameSize, size, len(c.slots[slot.Index]))
	}

	c.pts = append(c.pts, presentationTimeUs)
	// frames has one entry per slot, so this never blocks.
	c.frames <- queuedFrame{index: slot.Index, size: size}
	return nil
}

// DequeueOutput waits up to timeout for the next encoded unit.
func (c *Codec) DequeueOutput(timeout time.Duration) (ports.OutputBuffer, bool, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ports.OutputBuffer{}, false, ErrNotStarted
	}
	outputs := c.outputs
	c.mu.Unlock()

	var buf ports.OutputBuffer
	var ok bool
	if timeout <= 0 {
		select {
		case buf, ok = <-outputs:
		default:
			return ports.OutputBuffer{}, false, nil
		}
	} else {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case buf, ok = <-outputs:
		case <-timer.C:
			return ports.OutputBuffer{}, false, nil
		}
	}
	if !ok {
		return ports.OutputBuffer{}, false, nil
	}

	c.mu.Lock()
	c.outstanding[buf.Index] = struct{}{}
	c.mu.Unlock()
	return buf, true, nil
}

// ReleaseOutput forgets an output buffer returned by DequeueOutput.
func (c *Codec) ReleaseOutput(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.outstanding[index]; !ok {
		return fmt.Errorf("%w: output %d", ErrUnknownBuffer, index)
	}
	delete(c.outstanding, index)
	return nil
}

// Stop closes ffmpeg's input and waits for it to exit. Units still in
// flight are discarded.
func (c *Codec) Stop() error {
	return c.shutdown(false)
}

// Release kills ffmpeg if it is still running. The codec cannot be used
// afterwards.
func (c *Codec) Release() error {
	err := c.shutdown(true)
	c.mu.Lock()
	c.released = true
	c.mu.Unlock()
	return err
}

func (c *Codec) shutdown(kill bool) error {
	c.mu.Lock()
	if !c.started || c.stopped {
		c.mu.Unlock()
		if !c.started && !kill {
			return ErrNotStarted
		}
		return nil
	}
	c.stopped = true
	close(c.halt)
	close(c.frames)
	c.mu.Unlock()

	if kill {
		_ = c.cmd.Process.Kill()
	}

	exited := make(chan error, 1)
	go func() {
		<-c.writerDone
		<-c.readerDone
		exited <- c.cmd.Wait()
	}()

	var err error
	select {
	case err = <-exited:
	case <-time.After(c.stopTimeout):
		c.logger.Warn("ffmpeg did not exit within %v, killing", c.stopTimeout)
		_ = c.cmd.Process.Kill()
		err = <-exited
	}

	if kill {
		// Killed on purpose; the exit status carries no information.
		return nil
	}
	if err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, c.stderr.String())
	}
	if c.writeErr != nil {
		return fmt.Errorf("failed to write frame: %w", c.writeErr)
	}
	return nil
}

// writeLoop copies queued slots to ffmpeg and returns them to the free
// list. It closes stdin once the frame queue is closed.
func (c *Codec) writeLoop() {
	defer close(c.writerDone)
	defer c.stdin.Close()

	for f := range c.frames {
		if c.writeErr == nil {
			if _, err := c.stdin.Write(c.slots[f.index][:f.size]); err != nil {
				c.writeErr = err
				c.logger.Warn("Failed to write frame: %v", err)
			}
		}
		c.free <- f.index
	}
}

// readLoop splits ffmpeg's output into access units and publishes them.
func (c *Codec) readLoop() {
	defer close(c.readerDone)
	defer close(c.outputs)

	var splitter bitstream.Splitter
	chunk := make([]byte, readChunk)
	for {
		n, err := c.stdout.Read(chunk)
		if n > 0 {
			for _, au := range splitter.Push(chunk[:n]) {
				c.publish(au)
			}
		}
		if err != nil {
			if err != io.EOF {
				c.logger.Debug("ffmpeg output ended: %v", err)
			}
			break
		}
	}
	for _, au := range splitter.Flush() {
		c.publish(au)
	}
}

// publish turns one access unit into output buffers: a config buffer when
// the parameter sets changed, then the picture itself.
func (c *Codec) publish(au bitstream.AccessUnit) {
	kind := au.Kind()

	c.mu.Lock()
	var pts int64
	if kind != pipeline.UnitConfigData && len(c.pts) > 0 {
		pts = c.pts[0]
		c.pts = c.pts[1:]
	} else if len(c.pts) > 0 {
		pts = c.pts[0]
	} else {
		pts = c.lastPTS
	}
	c.lastPTS = pts

	var out []ports.OutputBuffer
	if params := au.ParameterSets(); params != nil && !bytes.Equal(params, c.lastParams) {
		c.lastParams = params
		out = append(out, c.buffer(params, pts, ports.FlagCodecConfig))
	}
	if kind != pipeline.UnitConfigData {
		var flags ports.BufferFlags
		if kind == pipeline.UnitKeyFrame {
			flags = ports.FlagKeyFrame
		}
		out = append(out, c.buffer(au.Picture(), pts, flags))
	}
	c.mu.Unlock()

	for _, buf := range out {
		select {
		case c.outputs <- buf:
		case <-c.halt:
			return
		}
	}
}

// buffer must be called with mu held.
func (c *Codec) buffer(data []byte, pts int64, flags ports.BufferFlags) ports.OutputBuffer {
	buf := ports.OutputBuffer{
		Index:              c.nextIndex,
		Data:               data,
		PresentationTimeUs: pts,
		Flags:              flags,
	}
	c.nextIndex++
	return buf
}

var _ ports.VideoCodec = (*Codec)(nil)
