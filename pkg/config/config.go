// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
	"github.com/user/avcrec/pkg/session"
	"github.com/user/avcrec/pkg/yuv"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Frame source kinds.
const (
	SourcePattern = "pattern"
	SourceImage   = "image"
	SourceRaw     = "raw"
)

// Config represents the full configuration for a recording.
type Config struct {
	// Capture
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Source     string `yaml:"source"`
	SourcePath string `yaml:"source_path"`
	Frames     int    `yaml:"frames"`

	// Encoding
	BitRate          int    `yaml:"bit_rate"`
	FrameRate        int    `yaml:"frame_rate"`
	KeyFrameInterval int    `yaml:"key_frame_interval"`
	ChromaMode       string `yaml:"chroma_mode"`
	DrainTimeoutMs   int    `yaml:"drain_timeout_ms"`
	FFmpegPath       string `yaml:"ffmpeg_path"`

	// Output
	OutputPath string `yaml:"output"`
	LogLevel   string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	opts := session.DefaultOptions()
	return Config{
		Width:  640,
		Height: 480,
		Source: SourcePattern,

		BitRate:          opts.BitRate,
		FrameRate:        opts.FrameRate,
		KeyFrameInterval: opts.KeyFrameIntervalSeconds,
		ChromaMode:       opts.ChromaMode.String(),
		DrainTimeoutMs:   int(opts.DrainTimeout / time.Millisecond),

		OutputPath: "capture.h264",
		LogLevel:   "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
// Fields missing from the file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolution returns the capture resolution.
func (c Config) Resolution() pipeline.Resolution {
	return pipeline.Resolution{Width: c.Width, Height: c.Height}
}

// Validate checks the configuration for values a recording cannot use.
func (c Config) Validate() error {
	switch c.Source {
	case SourcePattern:
	case SourceImage, SourceRaw:
		if c.SourcePath == "" {
			return fmt.Errorf("%w: source %s needs source_path", ErrInvalid, c.Source)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalid, c.Source)
	}

	// An image source may take its size from the image.
	if !(c.Source == SourceImage && c.Width == 0 && c.Height == 0) {
		if err := c.Resolution().Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	if c.BitRate <= 0 {
		return fmt.Errorf("%w: bit_rate must be positive", ErrInvalid)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate must be positive", ErrInvalid)
	}
	if c.KeyFrameInterval < 0 {
		return fmt.Errorf("%w: key_frame_interval must not be negative", ErrInvalid)
	}
	if c.DrainTimeoutMs < 0 {
		return fmt.Errorf("%w: drain_timeout_ms must not be negative", ErrInvalid)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative", ErrInvalid)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output is required", ErrInvalid)
	}
	if _, err := yuv.ParseChromaMode(c.ChromaMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ToSessionOptions converts Config to session.Options.
func (c Config) ToSessionOptions() (session.Options, error) {
	mode, err := yuv.ParseChromaMode(c.ChromaMode)
	if err != nil {
		return session.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return session.Options{
		BitRate:                 c.BitRate,
		FrameRate:               c.FrameRate,
		KeyFrameIntervalSeconds: c.KeyFrameInterval,
		ColorFormat:             ports.ColorFormatYUV420SemiPlanar,
		ChromaMode:              mode,
		DrainTimeout:            time.Duration(c.DrainTimeoutMs) * time.Millisecond,
	}, nil
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}
