package ffmpegcodec

import (
	"fmt"

	"github.com/user/avcrec/pkg/ports"
)

// Factory creates ffmpeg-backed encoders.
type Factory struct {
	// FFmpegPath overrides the ffmpeg lookup when set.
	FFmpegPath string
	Logger     ports.Logger
}

// CreateEncoder locates ffmpeg and returns an unconfigured codec.
func (f *Factory) CreateEncoder(mime string) (ports.VideoCodec, error) {
	if mime != ports.MIMETypeAVC {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMIME, mime)
	}
	path, err := FindFFmpeg(f.FFmpegPath)
	if err != nil {
		return nil, err
	}
	return New(path, f.Logger), nil
}

var _ ports.CodecFactory = (*Factory)(nil)
