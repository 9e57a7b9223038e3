package summarizer

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as Markdown tables.
type MarkdownFormatter struct {
	t func(string) string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator replaces the l10n translation of headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.t = t
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{t: l10n.T}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder
	t := f.t

	fmt.Fprintf(&b, "# %s\n\n", t("Recording Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))

	f.section(&b, t("Results"), [][2]string{
		{t("Output File"), s.Output.Path},
		{t("File Size"), formatBytes(s.Output.FileSize)},
		{t("Total Duration"), fmt.Sprintf("%d ms", s.Results.DurationMs)},
		{t("Frames Delivered"), fmt.Sprintf("%d", s.Results.FramesDelivered)},
		{t("Frames Encoded"), fmt.Sprintf("%d", s.Results.FramesFed)},
		{t("Frames Dropped"), fmt.Sprintf("%d", s.Results.FramesDropped)},
		{t("Key Frames"), fmt.Sprintf("%d", s.Results.KeyFrames)},
		{t("Delta Frames"), fmt.Sprintf("%d", s.Results.DeltaFrames)},
		{t("Config Units"), fmt.Sprintf("%d", s.Results.ConfigUnits)},
		{t("Loop Errors"), fmt.Sprintf("%d", s.Results.LoopErrors)},
	})

	st := s.Settings
	f.section(&b, t("Settings"), [][2]string{
		{t("Source"), st.Source},
		{t("Capture Size"), fmt.Sprintf("%dx%d", st.CaptureWidth, st.CaptureHeight)},
		{t("Encoded Size"), fmt.Sprintf("%dx%d", st.CaptureHeight, st.CaptureWidth)},
		{t("Bit Rate"), formatBitRate(st.BitRate)},
		{t("Frame Rate"), fmt.Sprintf("%d fps", st.FrameRate)},
		{t("Key Frame Interval"), fmt.Sprintf("%d s", st.KeyFrameInterval)},
		{t("Chroma Mode"), st.ChromaMode},
	})

	fmt.Fprintf(&b, "---\n%s avcrec\n", t("Generated by"))
	return b.String()
}

func (f *MarkdownFormatter) section(b *strings.Builder, title string, rows [][2]string) {
	fmt.Fprintf(b, "## %s\n\n", title)
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", f.t("Item"), f.t("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], r[1])
	}
	b.WriteString("\n")
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatBitRate(bps int) string {
	switch {
	case bps >= 1_000_000:
		return fmt.Sprintf("%.2f Mbps", float64(bps)/1_000_000)
	case bps >= 1_000:
		return fmt.Sprintf("%.2f kbps", float64(bps)/1_000)
	default:
		return fmt.Sprintf("%d bps", bps)
	}
}
