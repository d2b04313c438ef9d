// Package mixer lays decoded sounds onto an additive float32 timeline.
//
// A mix is sample accurate: each event starts at round(offset*rate) frames
// into the buffer, contributes source*volume, and is truncated silently at
// the end of the timeline. Mixing is plain addition, so event order never
// changes the result.
package mixer

import (
	"fmt"
	"math"

	"github.com/user/mixrender/pkg/soundstore"
)

// Event places one sound on the timeline.
type Event struct {
	Sound  string  `yaml:"sound" json:"sound"`
	Offset float64 `yaml:"offset" json:"offset"` // seconds
	Volume float64 `yaml:"volume" json:"volume"`
	Rate   float64 `yaml:"rate" json:"rate"` // playback rate, 0 means 1.0
}

func (e Event) rate() float64 {
	if e.Rate == 0 {
		return 1
	}
	return e.Rate
}

// Options configures a mix.
type Options struct {
	SampleRate int
	Channels   int

	// Normalize scales the finished buffer so its peak equals TargetPeak.
	// Off by default: overlapping events may exceed [-1, 1].
	Normalize  bool
	TargetPeak float64
}

// DefaultOptions returns 44.1 kHz stereo without normalization.
func DefaultOptions() Options {
	return Options{
		SampleRate: 44100,
		Channels:   2,
		TargetPeak: 1.0,
	}
}

// MaxFrames bounds the timeline length, about 13.5 hours at 44.1 kHz.
const MaxFrames = 1 << 31

// BufferLength returns the interleaved sample count for duration seconds.
func BufferLength(duration float64, sampleRate, channels int) int {
	return int(math.Ceil(duration*float64(sampleRate))) * channels
}

// Mix renders events onto a new buffer of the given duration. Every event
// is validated before the first sample is written, so a failed mix leaves
// nothing behind.
func Mix(tracks map[string]*soundstore.Track, events []Event, duration float64, opts Options) (*Buffer, error) {
	if opts.SampleRate <= 0 || opts.Channels <= 0 || !validDuration(duration, opts.SampleRate) {
		return nil, fmt.Errorf("%w: %d Hz, %d channels, %.3fs", ErrInvalidOptions, opts.SampleRate, opts.Channels, duration)
	}

	sources := make([]*soundstore.Track, len(events))
	for i, ev := range events {
		track, ok := tracks[ev.Sound]
		if !ok {
			return nil, &UnknownSoundError{Key: ev.Sound, Index: i}
		}
		if err := validate(ev, track, opts); err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, ev.Sound, err)
		}
		sources[i] = track
	}

	buf := &Buffer{
		Samples:    make([]float32, BufferLength(duration, opts.SampleRate, opts.Channels)),
		SampleRate: opts.SampleRate,
		Channels:   opts.Channels,
		Gain:       1,
	}

	for i, ev := range events {
		place(buf, sources[i].Samples, ev)
	}

	if opts.Normalize {
		buf.Gain = NormalizePeak(buf.Samples, float32(opts.TargetPeak))
	}
	return buf, nil
}

// validDuration rejects NaN, negative and infinite durations and those
// whose frame count would not fit the buffer.
func validDuration(duration float64, sampleRate int) bool {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return false
	}
	return math.Ceil(duration*float64(sampleRate)) <= MaxFrames
}

func validate(ev Event, track *soundstore.Track, opts Options) error {
	switch {
	case ev.Offset < 0 || math.IsNaN(ev.Offset) || math.IsInf(ev.Offset, 0):
		return fmt.Errorf("%w: offset %v", ErrInvalidEvent, ev.Offset)
	case ev.rate() <= 0 || math.IsNaN(ev.rate()) || math.IsInf(ev.rate(), 0):
		return fmt.Errorf("%w: rate %v", ErrInvalidEvent, ev.Rate)
	case track.Channels != opts.Channels:
		return fmt.Errorf("%w: track has %d channels, mix has %d", ErrInvalidEvent, track.Channels, opts.Channels)
	case track.SampleRate != 0 && track.SampleRate != opts.SampleRate:
		return fmt.Errorf("%w: track is %d Hz, mix is %d Hz", ErrInvalidEvent, track.SampleRate, opts.SampleRate)
	}
	return nil
}

// place adds one event into buf.
func place(buf *Buffer, src []float32, ev Event) {
	ch := buf.Channels
	begin := int(math.Round(ev.Offset*float64(buf.SampleRate))) * ch
	if begin >= len(buf.Samples) {
		return
	}
	dst := buf.Samples[begin:]
	volume := float32(ev.Volume)

	if rate := ev.rate(); rate != 1 {
		placeResampled(dst, src, ch, rate, volume)
		return
	}

	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i] * volume
	}
}

// placeResampled adds src played at rate into dst. The source cursor
// advances by rate frames per output frame; each channel is interpolated
// linearly between the frames on either side of the cursor. Output stops
// when the frame after the cursor is past the end of the source.
func placeResampled(dst, src []float32, ch int, rate float64, volume float32) {
	srcFrames := len(src) / ch
	dstFrames := len(dst) / ch

	for j := 0; j < dstFrames; j++ {
		cursor := float64(j) * rate
		lo := int(math.Floor(cursor))
		hi := int(math.Ceil(cursor))
		if hi >= srcFrames {
			return
		}

		if lo == hi {
			for c := 0; c < ch; c++ {
				dst[j*ch+c] += src[lo*ch+c] * volume
			}
			continue
		}

		frac := float32(cursor - float64(lo))
		for c := 0; c < ch; c++ {
			a := src[lo*ch+c]
			b := src[hi*ch+c]
			dst[j*ch+c] += (a*(1-frac) + b*frac) * volume
		}
	}
}
