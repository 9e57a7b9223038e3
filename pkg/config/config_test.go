package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/avcrec/pkg/ports"
	"github.com/user/avcrec/pkg/yuv"
)

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Errorf("Defaults should be valid: %v", err)
	}
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avcrec.yaml")
	data := []byte(`
width: 1280
height: 720
bit_rate: 4000000
chroma_mode: legacy
drain_timeout_ms: 20
output: out/cam.h264
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.FrameRate != 30 {
		t.Errorf("FrameRate = %d, want default 30", cfg.FrameRate)
	}
	if cfg.OutputPath != "out/cam.h264" {
		t.Errorf("OutputPath = %q", cfg.OutputPath)
	}

	opts, err := cfg.ToSessionOptions()
	if err != nil {
		t.Fatalf("ToSessionOptions failed: %v", err)
	}
	if opts.ChromaMode != yuv.ChromaLegacy {
		t.Errorf("ChromaMode = %v, want legacy", opts.ChromaMode)
	}
	if opts.DrainTimeout != 20*time.Millisecond {
		t.Errorf("DrainTimeout = %v, want 20ms", opts.DrainTimeout)
	}
	if opts.BitRate != 4000000 {
		t.Errorf("BitRate = %d", opts.BitRate)
	}
	if opts.ColorFormat != ports.ColorFormatYUV420SemiPlanar {
		t.Errorf("ColorFormat = %v", opts.ColorFormat)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("width: [1, 2"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"odd width", func(c *Config) { c.Width = 641 }, false},
		{"zero height", func(c *Config) { c.Height = 0 }, false},
		{"image without size", func(c *Config) { c.Source = SourceImage; c.SourcePath = "a.png"; c.Width, c.Height = 0, 0 }, true},
		{"image without path", func(c *Config) { c.Source = SourceImage }, false},
		{"raw without path", func(c *Config) { c.Source = SourceRaw }, false},
		{"unknown source", func(c *Config) { c.Source = "camera" }, false},
		{"zero bit rate", func(c *Config) { c.BitRate = 0 }, false},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, false},
		{"negative interval", func(c *Config) { c.KeyFrameInterval = -1 }, false},
		{"negative frames", func(c *Config) { c.Frames = -1 }, false},
		{"no output", func(c *Config) { c.OutputPath = "" }, false},
		{"bad chroma mode", func(c *Config) { c.ChromaMode = "swapped" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "debug"
	if cfg.Level() != ports.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
}
