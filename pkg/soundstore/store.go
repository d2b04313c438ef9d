// Package soundstore loads sound assets (inline base64 data URIs or file
// paths) and decodes them once into float tracks in the mix format.
package soundstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"github.com/user/mixrender/pkg/ports"
)

// Asset is a named encoded audio payload: a data URI (or any string
// containing ";base64,") or a filesystem path.
type Asset struct {
	Key  string `yaml:"key" json:"key"`
	Data string `yaml:"data" json:"data"`
}

// IsInline reports whether the payload is base64 data rather than a path.
func (a Asset) IsInline() bool {
	return strings.HasPrefix(a.Data, "data:") || strings.Contains(a.Data, ";base64,")
}

// Track is a decoded sound. It is never mutated after Load returns.
type Track struct {
	Key        string
	Samples    []float32 // interleaved
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames.
func (t *Track) Frames() int {
	if t.Channels == 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

// Seconds returns the track duration.
func (t *Track) Seconds() float64 {
	if t.SampleRate == 0 {
		return 0
	}
	return float64(t.Frames()) / float64(t.SampleRate)
}

// Store decodes assets into tracks at a fixed sample rate and channel count.
type Store struct {
	fs         ports.FileSystem
	decoder    ports.AudioDecoder
	logger     ports.Logger
	sampleRate int
	channels   int
}

// New creates a Store producing tracks at sampleRate with channels (1 or 2).
func New(fs ports.FileSystem, decoder ports.AudioDecoder, logger ports.Logger, sampleRate, channels int) *Store {
	return &Store{
		fs:         fs,
		decoder:    decoder,
		logger:     logger,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Load decodes every asset. The first failure aborts the whole load.
func (s *Store) Load(ctx context.Context, assets []Asset) (map[string]*Track, error) {
	tracks := make(map[string]*Track, len(assets))

	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, dup := tracks[asset.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, asset.Key)
		}

		track, err := s.load(ctx, asset)
		if err != nil {
			return nil, &DecodeError{Key: asset.Key, Err: err}
		}
		tracks[asset.Key] = track
		s.logger.Debug("Loaded sound %s: %.3fs", asset.Key, track.Seconds())
	}

	return tracks, nil
}

func (s *Store) load(ctx context.Context, asset Asset) (*Track, error) {
	data, err := s.payload(asset)
	if err != nil {
		return nil, err
	}

	pcm, err := s.decoder.Decode(ctx, data)
	if err != nil {
		return nil, err
	}

	samples, err := remix(pcm.Samples, pcm.Channels, s.channels)
	if err != nil {
		return nil, err
	}
	if pcm.SampleRate != s.sampleRate {
		samples = resample(samples, s.channels, pcm.SampleRate, s.sampleRate)
	}

	return &Track{
		Key:        asset.Key,
		Samples:    samples,
		SampleRate: s.sampleRate,
		Channels:   s.channels,
	}, nil
}

func (s *Store) payload(asset Asset) ([]byte, error) {
	if !asset.IsInline() {
		data, err := s.fs.ReadFile(asset.Data)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", asset.Data, err)
		}
		return data, nil
	}

	body := asset.Data
	if i := strings.LastIndex(body, ","); i >= 0 {
		body = body[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	return data, nil
}

// remix converts interleaved samples between mono and stereo.
func remix(samples []float32, from, to int) ([]float32, error) {
	switch {
	case from == to:
		return samples, nil
	case from == 1 && to == 2:
		out := make([]float32, len(samples)*2)
		for i, v := range samples {
			out[2*i] = v
			out[2*i+1] = v
		}
		return out, nil
	case from == 2 && to == 1:
		out := make([]float32, len(samples)/2)
		for i := range out {
			out[i] = (samples[2*i] + samples[2*i+1]) / 2
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %d channels", ErrChannelLayout, from)
}

// resample converts interleaved samples from srcRate to dstRate with
// linear interpolation between neighbouring frames.
func resample(samples []float32, channels, srcRate, dstRate int) []float32 {
	srcFrames := len(samples) / channels
	if srcFrames == 0 || srcRate <= 0 {
		return nil
	}

	step := float64(srcRate) / float64(dstRate)
	dstFrames := int(math.Floor(float64(srcFrames) * float64(dstRate) / float64(srcRate)))
	out := make([]float32, dstFrames*channels)

	for i := 0; i < dstFrames; i++ {
		pos := float64(i) * step
		idx := int(pos)
		frac := float32(pos - float64(idx))
		next := idx + 1
		if next >= srcFrames {
			next = srcFrames - 1
		}
		for c := 0; c < channels; c++ {
			a := samples[idx*channels+c]
			b := samples[next*channels+c]
			out[i*channels+c] = a + (b-a)*frac
		}
	}
	return out
}
