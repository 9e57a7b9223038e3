package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/avcrec/pkg/config"
)

func TestInspectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.h264")
	stream := []byte{
		0, 0, 0, 1, 0x67, 0x42, 0xC0, 0x1E, 0xDA, 0x05, 0x07, 0xE4,
		0, 0, 0, 1, 0x68, 0xCE, 0x3C, 0x80,
		0, 0, 0, 1, 0x65, 0x88, 0x84, 0x00, 0x21,
		0, 0, 0, 1, 0x41, 0x9A, 0x02, 0x10,
	}
	if err := os.WriteFile(path, stream, 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := newApp(&out).Run([]string{"avcrec", "inspect", path}); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out.String(), "320x240") {
		t.Errorf("output missing resolution:\n%s", out.String())
	}
}

func TestInspectCommand_MissingArgument(t *testing.T) {
	var out bytes.Buffer
	if err := newApp(&out).Run([]string{"avcrec", "inspect"}); err == nil {
		t.Error("expected error without a file argument")
	}
}

func TestRecordCommand_InvalidFlags(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.h264")

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"avcrec", "record", "--width", "641", "--output", output, "--quiet"})
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("record = %v, want config.ErrInvalid", err)
	}
	if _, statErr := os.Stat(output); statErr == nil {
		t.Error("output created for an invalid configuration")
	}
}

func TestRecordCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "avcrec.yaml")
	os.WriteFile(cfgPath, []byte("source: raw\n"), 0644)

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"avcrec", "record", "--config", cfgPath, "--quiet"})
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("record = %v, want config.ErrInvalid for raw source without path", err)
	}
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	if err := newApp(&out).Run([]string{"avcrec", "--version"}); err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("version output %q missing %q", out.String(), version)
	}
}
