package pipeline

import (
	"github.com/user/mixrender/pkg/ingest"
	"github.com/user/mixrender/pkg/mixer"
	"github.com/user/mixrender/pkg/ports"
	"github.com/user/mixrender/pkg/session"
	"github.com/user/mixrender/pkg/soundstore"
)

// =============================================================================
// Mixdown Stage Types
// =============================================================================

// MixdownInput describes an offline audio mix written to a WAV file.
type MixdownInput struct {
	Sounds   []soundstore.Asset
	Events   []mixer.Event
	Duration float64 // seconds
	Options  mixer.Options
	Output   string // float WAV path
}

// MixdownResult describes the written mix.
type MixdownResult struct {
	Output   string
	Sounds   int
	Events   int
	Frames   int
	Duration float64
	Peak     float32
	Clipped  int     // samples outside [-1, 1]
	Gain     float32 // normalization gain, 1 when off
}

// =============================================================================
// Convert Stage Types
// =============================================================================

// ConvertInput describes an audio file conversion to float WAV.
type ConvertInput struct {
	Source     string
	Output     string
	SampleRate int // default: 44100
}

// ConvertResult describes the converted file.
type ConvertResult struct {
	Output       string
	SourceFormat string
}

// =============================================================================
// Capture Stage Types
// =============================================================================

// CaptureInput describes a video encode fed over the frame socket.
type CaptureInput struct {
	Video  session.Spec
	Ingest ingest.Config

	// Producer is started once the socket listens. Nil means an external
	// producer connects on its own.
	Producer ports.FrameProducer
}

// CaptureResult describes the finished video encode.
type CaptureResult struct {
	SessionID  string
	Output     string
	Frames     int
	Reason     ingest.Reason
	DurationMs int
}

// =============================================================================
// Combine Stage Types
// =============================================================================

// AudioInput is one audio stream of a combine. The first input of a
// combine is used unmodified; later ones are delayed and scaled.
type AudioInput struct {
	Path    string  `yaml:"path" json:"path"`
	Gain    float64 `yaml:"gain" json:"gain"`
	DelayMs int     `yaml:"delay_ms" json:"delay_ms"`
}

// CombineInput describes the final mux of video and audio.
type CombineInput struct {
	Video     string
	Audio     []AudioInput
	Output    string
	Bitrate   string // audio bitrate, e.g. 192k
	Normalize bool   // amix normalize flag
	Limiter   bool   // peak limiter after the mix
}

// CombineResult describes the muxed file.
type CombineResult struct {
	Output          string
	Tracks          int
	HasVideo        bool
	HasAudio        bool
	AudioCodec      string
	DurationSeconds float64
	FileSize        int64
}
