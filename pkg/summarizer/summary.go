// Package summarizer provides summary generation for render results.
package summarizer

import "time"

// Summary contains all data collected during a render.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`
	Output      string    `yaml:"output" json:"output"`
	ElapsedMs   int       `yaml:"elapsed_ms" json:"elapsed_ms"`

	// Audio mix
	Audio AudioInfo `yaml:"audio" json:"audio"`

	// Frame capture
	Capture CaptureInfo `yaml:"capture" json:"capture"`

	// Render settings
	Settings Settings `yaml:"settings" json:"settings"`

	// Output file details
	Video VideoInfo `yaml:"video" json:"video"`
}

// AudioInfo describes the mixed timeline.
type AudioInfo struct {
	Sounds          int     `yaml:"sounds" json:"sounds"`
	Events          int     `yaml:"events" json:"events"`
	MusicTracks     int     `yaml:"music_tracks" json:"music_tracks"`
	DurationSeconds float64 `yaml:"duration_seconds" json:"duration_seconds"`
	Peak            float32 `yaml:"peak" json:"peak"`
	ClippedSamples  int     `yaml:"clipped_samples" json:"clipped_samples"`
}

// CaptureInfo describes the frame stream.
type CaptureInfo struct {
	Frames         int    `yaml:"frames" json:"frames"`
	ExpectedFrames int    `yaml:"expected_frames" json:"expected_frames"` // 0 = unknown
	Reason         string `yaml:"reason" json:"reason"`                   // finish, timeout, disconnected, ...
	DurationMs     int    `yaml:"duration_ms" json:"duration_ms"`
	Skipped        bool   `yaml:"skipped" json:"skipped"` // an existing video was reused
}

// Settings contains the render configuration.
type Settings struct {
	Width        int    `yaml:"width" json:"width"`
	Height       int    `yaml:"height" json:"height"`
	FPS          int    `yaml:"fps" json:"fps"`
	Codec        string `yaml:"codec" json:"codec"`
	Bitrate      string `yaml:"bitrate" json:"bitrate"`
	SampleRate   int    `yaml:"sample_rate" json:"sample_rate"`
	Channels     int    `yaml:"channels" json:"channels"`
	AudioBitrate string `yaml:"audio_bitrate" json:"audio_bitrate"`
	Normalize    bool   `yaml:"normalize" json:"normalize"`
	Limiter      bool   `yaml:"limiter" json:"limiter"`
}

// VideoInfo contains information about the output file.
type VideoInfo struct {
	Tracks          int     `yaml:"tracks" json:"tracks"`
	AudioCodec      string  `yaml:"audio_codec" json:"audio_codec"`
	DurationSeconds float64 `yaml:"duration_seconds" json:"duration_seconds"`
	FileSize        int64   `yaml:"file_size" json:"file_size"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithOutput sets the output path and total elapsed time.
func (b *Builder) WithOutput(path string, elapsedMs int) *Builder {
	b.summary.Output = path
	b.summary.ElapsedMs = elapsedMs
	return b
}

// WithAudio sets mix information.
func (b *Builder) WithAudio(audio AudioInfo) *Builder {
	b.summary.Audio = audio
	return b
}

// WithCapture sets frame capture information.
func (b *Builder) WithCapture(frames, expected int, reason string, durationMs int) *Builder {
	b.summary.Capture = CaptureInfo{
		Frames:         frames,
		ExpectedFrames: expected,
		Reason:         reason,
		DurationMs:     durationMs,
	}
	return b
}

// WithReusedVideo marks the capture as skipped.
func (b *Builder) WithReusedVideo() *Builder {
	b.summary.Capture = CaptureInfo{Skipped: true}
	return b
}

// WithSettings sets render settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithVideo sets output file information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
