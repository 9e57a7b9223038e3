// Package main provides the CLI entry point for avcrec.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/avcrec/pkg/adapters/ffmpegcodec"
	"github.com/user/avcrec/pkg/adapters/filesink"
	"github.com/user/avcrec/pkg/adapters/imagesource"
	"github.com/user/avcrec/pkg/adapters/logger"
	"github.com/user/avcrec/pkg/adapters/osfilesystem"
	"github.com/user/avcrec/pkg/adapters/patternsource"
	"github.com/user/avcrec/pkg/adapters/rawsource"
	"github.com/user/avcrec/pkg/config"
	"github.com/user/avcrec/pkg/inspect"
	"github.com/user/avcrec/pkg/pipeline"
	"github.com/user/avcrec/pkg/ports"
	"github.com/user/avcrec/pkg/recorder"
	"github.com/user/avcrec/pkg/summarizer"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, l10n.F("avcrec version %s", c.App.Version))
	}

	return &cli.App{
		Name:    "avcrec",
		Usage:   l10n.T("Record camera frames as an H.264 elementary stream"),
		Version: version,
		Writer:  w,
		Commands: []*cli.Command{
			recordCommand(),
			inspectCommand(),
		},
	}
}

func recordCommand() *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: l10n.T("Encode frames from a source into an .h264 file"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Input")},
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: l10n.T("Frame source (pattern, image, raw)"), Category: l10n.T("Input")},
			&cli.StringFlag{Name: "source-path", Usage: l10n.T("Image or raw NV21 file for the source"), Category: l10n.T("Input")},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Capture width in pixels"), Category: l10n.T("Input")},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Capture height in pixels"), Category: l10n.T("Input")},
			&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Stop after this many frames (0 = until interrupted)"), Category: l10n.T("Input")},

			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output .h264 file path"), Category: l10n.T("Output")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Output recording summary to file (Markdown format)"), Category: l10n.T("Output")},

			&cli.IntFlag{Name: "bit-rate", Usage: l10n.T("Target bit rate in bits/sec"), Category: l10n.T("Encoding")},
			&cli.IntFlag{Name: "frame-rate", Aliases: []string{"r"}, Usage: l10n.T("Frames per second"), Category: l10n.T("Encoding")},
			&cli.IntFlag{Name: "key-frame-interval", Usage: l10n.T("Seconds between key frames"), Category: l10n.T("Encoding")},
			&cli.StringFlag{Name: "chroma-mode", Usage: l10n.T("Chroma conversion (standard, legacy)"), Category: l10n.T("Encoding")},
			&cli.IntFlag{Name: "drain-timeout-ms", Usage: l10n.T("Wait for each encoder output in milliseconds"), Category: l10n.T("Encoding")},
			&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg executable"), Category: l10n.T("Encoding")},

			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
		},
		Action: runRecord,
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     l10n.T("Summarize an .h264 elementary stream"),
		ArgsUsage: "<file.h264>",
		Action:    runInspect,
	}
}

// loadConfig builds a Config from defaults, the optional config file and
// flags, in increasing priority.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("source") {
		cfg.Source = c.String("source")
	}
	if c.IsSet("source-path") {
		cfg.SourcePath = c.String("source-path")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("frames") {
		cfg.Frames = c.Int("frames")
	}
	if c.IsSet("output") {
		cfg.OutputPath = c.String("output")
	}
	if c.IsSet("bit-rate") {
		cfg.BitRate = c.Int("bit-rate")
	}
	if c.IsSet("frame-rate") {
		cfg.FrameRate = c.Int("frame-rate")
	}
	if c.IsSet("key-frame-interval") {
		cfg.KeyFrameInterval = c.Int("key-frame-interval")
	}
	if c.IsSet("chroma-mode") {
		cfg.ChromaMode = c.String("chroma-mode")
	}
	if c.IsSet("drain-timeout-ms") {
		cfg.DrainTimeoutMs = c.Int("drain-timeout-ms")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = ports.LevelQuiet.String()
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) ports.Logger {
	if cfg.Level() == ports.LevelQuiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(cfg.Level())
}

// newSource creates the frame source named by cfg.
func newSource(cfg config.Config, fs ports.FileSystem) (ports.FrameSource, error) {
	switch cfg.Source {
	case config.SourceImage:
		return imagesource.New(fs, cfg.SourcePath, cfg.Resolution(), cfg.FrameRate, cfg.Frames)
	case config.SourceRaw:
		return rawsource.New(fs, cfg.SourcePath, cfg.Resolution(), cfg.FrameRate, cfg.Frames)
	default:
		return patternsource.New(cfg.Resolution(), cfg.FrameRate, cfg.Frames)
	}
}

func runRecord(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	opts, err := cfg.ToSessionOptions()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fs := osfilesystem.New()
	src, err := newSource(cfg, fs)
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}

	sink, err := filesink.New(fs, cfg.OutputPath)
	if err != nil {
		return err
	}

	factory := &ffmpegcodec.Factory{FFmpegPath: cfg.FFmpegPath, Logger: log}
	rec := recorder.New(factory, log)

	rcfg := recorder.DefaultConfig()
	rcfg.Session = opts
	rcfg.Frames = cfg.Frames

	log.Info("Recording %s from %s source to %s", src.Resolution(), cfg.Source, cfg.OutputPath)
	result, err := rec.Run(ctx, src, sink, rcfg)
	if err != nil {
		return err
	}

	log.Info("Output saved to %s (%d bytes, %d key frames, %s)",
		cfg.OutputPath, result.Stats.BytesWritten, result.Stats.KeyFrames, result.Duration.Round(time.Millisecond))

	if path := c.String("summary"); path != "" {
		writeSummary(fs, path, cfg, src.Resolution(), result, log)
	}
	return nil
}

// writeSummary saves a Markdown report. A failure is logged, the recording
// itself already succeeded.
func writeSummary(fs ports.FileSystem, path string, cfg config.Config, res pipeline.Resolution, result recorder.Result, log ports.Logger) {
	summary := summarizer.NewBuilder().
		WithOutput(cfg.OutputPath, result.Stats.BytesWritten).
		WithSettings(summarizer.Settings{
			Source:           cfg.Source,
			CaptureWidth:     res.Width,
			CaptureHeight:    res.Height,
			BitRate:          cfg.BitRate,
			FrameRate:        cfg.FrameRate,
			KeyFrameInterval: cfg.KeyFrameInterval,
			ChromaMode:       cfg.ChromaMode,
		}).
		WithResult(result).
		Build()

	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), fs)
	if err := w.Write(path, summary); err != nil {
		log.Error("Failed to write summary: %s", err)
		return
	}
	log.Info("Summary saved to %s", path)
}

func runInspect(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New(l10n.T("One .h264 file argument is required"))
	}
	path := c.Args().First()

	f, err := osfilesystem.New().Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := inspect.Analyze(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return report.Format(c.App.Writer)
}
