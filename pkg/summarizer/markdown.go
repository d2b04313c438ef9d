package summarizer

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator replaces the label translator (l10n.T by default).
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: l10n.T}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Render Summary"))
	f.row(&b, "Output", "`"+s.Output+"`")
	f.row(&b, "Generated At", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	if s.ElapsedMs > 0 {
		f.row(&b, "Elapsed", fmt.Sprintf("%.1f s", float64(s.ElapsedMs)/1000))
	}

	if s.Audio.Events > 0 || s.Audio.MusicTracks > 0 {
		fmt.Fprintf(&b, "\n## %s\n\n", t("Audio"))
		f.table(&b)
		if s.Audio.Events > 0 {
			f.cell(&b, "Sounds", fmt.Sprintf("%d", s.Audio.Sounds))
			f.cell(&b, "Events", fmt.Sprintf("%d", s.Audio.Events))
			f.cell(&b, "Mix Duration", fmt.Sprintf("%.2f s", s.Audio.DurationSeconds))
			f.cell(&b, "Peak", fmt.Sprintf("%.3f", s.Audio.Peak))
			if s.Audio.ClippedSamples > 0 {
				f.cell(&b, "Clipped Samples", fmt.Sprintf("%d (%s)", s.Audio.ClippedSamples, t("Limited")))
			}
		}
		if s.Audio.MusicTracks > 0 {
			f.cell(&b, "Music Tracks", fmt.Sprintf("%d", s.Audio.MusicTracks))
		}
	}

	fmt.Fprintf(&b, "\n## %s\n\n", t("Capture"))
	f.table(&b)
	if s.Capture.Skipped {
		f.cell(&b, "Frames", t("Existing video reused"))
	} else {
		frames := fmt.Sprintf("%d", s.Capture.Frames)
		if s.Capture.ExpectedFrames > 0 {
			frames = fmt.Sprintf("%d / %d", s.Capture.Frames, s.Capture.ExpectedFrames)
		}
		f.cell(&b, "Frames", frames)
		if s.Capture.Reason != "" {
			f.cell(&b, "Ended By", f.reason(s.Capture.Reason))
		}
		if s.Capture.DurationMs > 0 {
			f.cell(&b, "Capture Time", fmt.Sprintf("%d ms", s.Capture.DurationMs))
		}
	}

	st := s.Settings
	fmt.Fprintf(&b, "\n## %s\n\n", t("Settings"))
	f.table(&b)
	if st.Width > 0 && st.Height > 0 {
		f.cell(&b, "Resolution", fmt.Sprintf("%dx%d", st.Width, st.Height))
	}
	if st.FPS > 0 {
		f.cell(&b, "Frame Rate", fmt.Sprintf("%d fps", st.FPS))
	}
	if st.Codec != "" {
		f.cell(&b, "Video Codec", fmt.Sprintf("%s @ %s", st.Codec, st.Bitrate))
	}
	if st.SampleRate > 0 {
		f.cell(&b, "Sample Rate", fmt.Sprintf("%d Hz, %d ch", st.SampleRate, st.Channels))
	}
	if st.AudioBitrate != "" {
		f.cell(&b, "Audio Bitrate", st.AudioBitrate)
	}
	f.cell(&b, "Normalize", f.onOff(st.Normalize))
	f.cell(&b, "Limiter", f.onOff(st.Limiter))

	if s.Video.FileSize > 0 || s.Video.Tracks > 0 {
		fmt.Fprintf(&b, "\n## %s\n\n", t("Output File"))
		f.table(&b)
		f.cell(&b, "Tracks", fmt.Sprintf("%d", s.Video.Tracks))
		if s.Video.AudioCodec != "" {
			f.cell(&b, "Audio Codec", s.Video.AudioCodec)
		}
		f.cell(&b, "Duration", fmt.Sprintf("%.2f s", s.Video.DurationSeconds))
		f.cell(&b, "File Size", formatBytes(s.Video.FileSize))
	}

	b.WriteString("\n---\n")
	if f.version != "" {
		fmt.Fprintf(&b, "%s mixrender %s\n", t("Generated by"), f.version)
	} else {
		fmt.Fprintf(&b, "%s mixrender\n", t("Generated by"))
	}
	return b.String()
}

func (f *MarkdownFormatter) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "- **%s**: %s\n", f.translate(label), value)
}

func (f *MarkdownFormatter) table(b *strings.Builder) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", f.translate("Item"), f.translate("Value"))
}

func (f *MarkdownFormatter) cell(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate(label), value)
}

func (f *MarkdownFormatter) onOff(v bool) string {
	if v {
		return f.translate("On")
	}
	return f.translate("Off")
}

func (f *MarkdownFormatter) reason(r string) string {
	switch r {
	case "finish":
		return f.translate("Finish message")
	case "timeout":
		return f.translate("Timeout")
	case "disconnected":
		return f.translate("Producer disconnected")
	case "cancelled":
		return f.translate("Cancelled")
	case "error":
		return f.translate("Error")
	}
	return r
}

// formatBytes formats a byte count in binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
