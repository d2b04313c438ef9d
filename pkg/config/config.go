// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/ingest"
	"github.com/user/mixrender/pkg/mixer"
	"github.com/user/mixrender/pkg/orchestrator"
	"github.com/user/mixrender/pkg/session"
	"gopkg.in/yaml.v3"
)

// Config represents the application settings for mixrender.
type Config struct {
	FFmpegPath string `yaml:"ffmpeg_path"`
	LogLevel   string `yaml:"log_level"`

	// Frame ingestion
	Listen               string `yaml:"listen"`
	InactivityTimeoutSec int    `yaml:"inactivity_timeout_sec"`
	ConnectTimeoutSec    int    `yaml:"connect_timeout_sec"` // 0 waits for the producer indefinitely
	ReportInterval       int    `yaml:"report_interval"`

	// Mix
	SampleRate int     `yaml:"sample_rate"`
	Channels   int     `yaml:"channels"`
	Normalize  bool    `yaml:"normalize"`
	TargetPeak float64 `yaml:"target_peak"`

	Video   VideoConfig   `yaml:"video"`
	Combine CombineConfig `yaml:"combine"`
	Browser BrowserConfig `yaml:"browser"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// VideoConfig represents the encoder settings of a capture.
type VideoConfig struct {
	Codec   string `yaml:"codec"`
	Bitrate string `yaml:"bitrate"`
	FPS     int    `yaml:"fps"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	VFlip   bool   `yaml:"vflip"`
}

// CombineConfig represents the final mux settings.
type CombineConfig struct {
	AudioBitrate string `yaml:"audio_bitrate"`
	Limiter      bool   `yaml:"limiter"`
	Normalize    bool   `yaml:"normalize"`

	// Defaults for music beds that leave gain or delay unset.
	MusicGain    float64 `yaml:"music_gain"`
	MusicDelayMs int     `yaml:"music_delay_ms"`
}

// BrowserConfig represents the headless browser producer settings.
type BrowserConfig struct {
	Headless   bool   `yaml:"headless"`
	ChromePath string `yaml:"chrome_path"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		LogLevel: "info",

		Listen:               ingest.DefaultAddr,
		InactivityTimeoutSec: 60,
		ReportInterval:       1,

		SampleRate: 44100,
		Channels:   2,
		TargetPeak: 1.0,

		Video: VideoConfig{
			Codec:   "libx264",
			Bitrate: "8M",
			FPS:     60,
			Width:   1280,
			Height:  720,
		},
		Combine: CombineConfig{
			AudioBitrate: "192k",
			Limiter:      true,
			MusicGain:    1.0,
			MusicDelayMs: 1000,
		},
		Browser: BrowserConfig{
			Headless: true,
		},

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
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

// ApplyEnv overrides settings from FFMPEG_PATH, REPORT_INTERVAL and
// MIXRENDER_LISTEN. Invalid values are reported and leave the setting as is.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("FFMPEG_PATH"); v != "" {
		c.FFmpegPath = v
	}
	if v := getenv("MIXRENDER_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := getenv("REPORT_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("REPORT_INTERVAL: invalid value %q", v)
		}
		c.ReportInterval = n
	}
	return nil
}

// MixOptions returns the mixer options for these settings.
func (c Config) MixOptions() mixer.Options {
	return mixer.Options{
		SampleRate: c.SampleRate,
		Channels:   c.Channels,
		Normalize:  c.Normalize,
		TargetPeak: c.TargetPeak,
	}
}

// IngestConfig returns the frame server settings.
func (c Config) IngestConfig() ingest.Config {
	cfg := ingest.DefaultConfig()
	if c.Listen != "" {
		cfg.Addr = c.Listen
	}
	if c.InactivityTimeoutSec > 0 {
		cfg.InactivityTimeout = time.Duration(c.InactivityTimeoutSec) * time.Second
	}
	if c.ConnectTimeoutSec > 0 {
		cfg.ConnectTimeout = time.Duration(c.ConnectTimeoutSec) * time.Second
	}
	if c.ReportInterval > 0 {
		cfg.ReportInterval = c.ReportInterval
	}
	return cfg
}

// VideoOptions returns the encoder options writing to output.
func (c Config) VideoOptions(output string) ffmpeg.VideoOptions {
	return ffmpeg.VideoOptions{
		Width:   c.Video.Width,
		Height:  c.Video.Height,
		FPS:     c.Video.FPS,
		Codec:   c.Video.Codec,
		Bitrate: c.Video.Bitrate,
		VFlip:   c.Video.VFlip,
		Output:  output,
	}
}

// ParseResolution parses "WIDTHxHEIGHT".
func ParseResolution(s string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid resolution %q: expected WIDTHxHEIGHT", s)
	}
	width, err = strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution width %q", w)
	}
	height, err = strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution height %q", h)
	}
	return width, height, nil
}

// ToOrchestratorConfig merges the settings with a render job.
func (c Config) ToOrchestratorConfig(job Job) (orchestrator.Config, error) {
	out := orchestrator.DefaultConfig()

	video := c.Video
	if job.Resolution != "" {
		w, h, err := ParseResolution(job.Resolution)
		if err != nil {
			return out, err
		}
		video.Width, video.Height = w, h
	}
	if job.FPS > 0 {
		video.FPS = job.FPS
	}
	if job.VFlip {
		video.VFlip = true
	}
	c.Video = video

	videoOutput := job.VideoOutput
	if videoOutput == "" {
		videoOutput = intermediate(job.Output, ".video.mp4")
	}
	mixOutput := job.MixOutput
	if mixOutput == "" {
		mixOutput = intermediate(job.Output, ".mix.wav")
	}

	out.Sounds = job.Sounds
	out.Events = job.Events
	out.Duration = job.Duration
	out.Mix = c.MixOptions()
	out.MixOutput = mixOutput

	out.Video = session.Spec{
		VideoOptions:   c.VideoOptions(videoOutput),
		ExpectedFrames: int(job.Duration * float64(video.FPS)),
	}
	out.Ingest = c.IngestConfig()
	out.VideoInput = job.VideoInput

	for _, m := range job.Music {
		if m.Gain == 0 {
			m.Gain = c.Combine.MusicGain
		}
		if m.DelayMs == 0 {
			m.DelayMs = c.Combine.MusicDelayMs
		}
		out.Music = append(out.Music, m)
	}
	out.Output = job.Output
	out.AudioBitrate = c.Combine.AudioBitrate
	out.NormalizeMix = c.Combine.Normalize
	out.Limiter = c.Combine.Limiter
	out.KeepIntermediate = job.KeepIntermediate || c.Debug

	return out, nil
}

// intermediate derives a sibling path of output with suffix in place of
// its extension.
func intermediate(output, suffix string) string {
	base := output
	if i := strings.LastIndex(base, "."); i > strings.LastIndexAny(base, `/\`) {
		base = base[:i]
	}
	return base + suffix
}
