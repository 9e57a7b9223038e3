package ffmpegcodec

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg executable can be located.
	ErrFFmpegNotFound = errors.New("ffmpegcodec: ffmpeg not found")

	// ErrUnsupportedMIME is returned for encoders other than H.264.
	ErrUnsupportedMIME = errors.New("ffmpegcodec: unsupported mime type")

	// ErrInvalidFormat is returned by Configure for unusable parameters.
	ErrInvalidFormat = errors.New("ffmpegcodec: invalid format")

	// ErrNotConfigured is returned when Start is called before Configure.
	ErrNotConfigured = errors.New("ffmpegcodec: not configured")

	// ErrNotStarted is returned by buffer operations before Start.
	ErrNotStarted = errors.New("ffmpegcodec: not started")

	// ErrStopped is returned by buffer operations after Stop or Release.
	ErrStopped = errors.New("ffmpegcodec: stopped")

	// ErrFrameSize is returned when a queued input is not exactly one frame.
	ErrFrameSize = errors.New("ffmpegcodec: input is not one frame")

	// ErrUnknownBuffer is returned when releasing an index that is not lent out.
	ErrUnknownBuffer = errors.New("ffmpegcodec: unknown buffer index")
)
