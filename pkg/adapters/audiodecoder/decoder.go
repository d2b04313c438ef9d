// Package audiodecoder decodes sound payloads into float PCM.
//
// WAV, MP3 and Ogg Vorbis are decoded in-process. Everything else (AAC in
// MP4, FLAC, float WAV) goes through an ffmpeg transcode to f32le.
package audiodecoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/user/mixrender/pkg/adapters/codecdetect"
	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/ports"
)

var (
	// ErrUnsupportedFormat is returned when no decoder handles the payload.
	ErrUnsupportedFormat = errors.New("audiodecoder: unsupported format")

	// ErrEmpty is returned for an empty payload.
	ErrEmpty = errors.New("audiodecoder: empty payload")
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Transcoder runs ffmpeg with input on stdin and returns stdout.
type Transcoder interface {
	Output(ctx context.Context, args []string, input []byte) ([]byte, error)
}

// Decoder implements ports.AudioDecoder.
type Decoder struct {
	transcoder Transcoder
	sampleRate int
	channels   int
	logger     ports.Logger
}

// New creates a Decoder. transcoder may be nil, in which case formats
// without an in-process decoder fail with ErrUnsupportedFormat. The
// ffmpeg fallback decodes straight to sampleRate and channels.
func New(transcoder Transcoder, sampleRate, channels int, logger ports.Logger) *Decoder {
	return &Decoder{
		transcoder: transcoder,
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logger,
	}
}

// Decode decodes data into interleaved float32 samples.
func (d *Decoder) Decode(ctx context.Context, data []byte) (ports.PCM, error) {
	if len(data) == 0 {
		return ports.PCM{}, ErrEmpty
	}

	format := codecdetect.Sniff(data)
	d.logger.Debug("Decoding %d bytes as %s", len(data), format)

	switch format {
	case codecdetect.FormatWAV:
		pcm, err := decodeWAV(data)
		if errors.Is(err, ErrUnsupportedFormat) {
			return d.transcode(ctx, data)
		}
		return pcm, err
	case codecdetect.FormatMP3:
		return decodeMP3(data)
	case codecdetect.FormatOgg:
		return decodeOgg(data)
	default:
		return d.transcode(ctx, data)
	}
}

func decodeWAV(data []byte) (ports.PCM, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return ports.PCM{}, fmt.Errorf("invalid wav file: %w", err)
		}
		return ports.PCM{}, errors.New("invalid wav file")
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return ports.PCM{}, fmt.Errorf("%w: wav format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return ports.PCM{}, fmt.Errorf("read wav samples: %w", err)
	}

	convert, err := intConverter(int(dec.BitDepth))
	if err != nil {
		return ports.PCM{}, err
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = convert(v)
	}
	return ports.PCM{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}

// intConverter returns the integer-to-float conversion for a bit depth.
// 8-bit WAV data is unsigned with its midpoint at 128.
func intConverter(bitDepth int) (func(int) float32, error) {
	switch bitDepth {
	case 8:
		return func(v int) float32 { return float32(v-128) / 127 }, nil
	case 16:
		return func(v int) float32 { return float32(v) / math.MaxInt16 }, nil
	case 24:
		return func(v int) float32 { return float32(float64(v) / 8388607) }, nil
	case 32:
		return func(v int) float32 { return float32(float64(v) / math.MaxInt32) }, nil
	}
	return nil, fmt.Errorf("%w: %d-bit integer pcm", ErrUnsupportedFormat, bitDepth)
}

func decodeMP3(data []byte) (ports.PCM, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return ports.PCM{}, fmt.Errorf("open mp3: %w", err)
	}

	// go-mp3 always produces signed 16-bit little-endian stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return ports.PCM{}, fmt.Errorf("read mp3: %w", err)
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(v) / math.MaxInt16
	}
	return ports.PCM{Samples: samples, SampleRate: dec.SampleRate(), Channels: 2}, nil
}

func decodeOgg(data []byte) (ports.PCM, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return ports.PCM{}, fmt.Errorf("read ogg vorbis: %w", err)
	}
	return ports.PCM{Samples: samples, SampleRate: format.SampleRate, Channels: format.Channels}, nil
}

func (d *Decoder) transcode(ctx context.Context, data []byte) (ports.PCM, error) {
	if d.transcoder == nil {
		return ports.PCM{}, ErrUnsupportedFormat
	}

	raw, err := d.transcoder.Output(ctx, ffmpeg.DecodeArgs(d.sampleRate, d.channels), data)
	if err != nil {
		return ports.PCM{}, fmt.Errorf("transcode: %w", err)
	}
	if len(raw)%4 != 0 {
		return ports.PCM{}, fmt.Errorf("transcode: truncated f32le output (%d bytes)", len(raw))
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return ports.PCM{Samples: samples, SampleRate: d.sampleRate, Channels: d.channels}, nil
}

var _ ports.AudioDecoder = (*Decoder)(nil)
