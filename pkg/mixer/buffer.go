package mixer

import (
	"encoding/binary"
	"io"
	"math"
)

// Buffer is a finished mix: interleaved float32 samples.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int

	// Gain is the factor applied by peak normalization, 1 when off.
	Gain float32
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	return len(b.Samples) / b.Channels
}

// Seconds returns the buffer duration.
func (b *Buffer) Seconds() float64 {
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float32 {
	return peak(b.Samples)
}

// Clipped returns how many samples fall outside [-1, 1].
func (b *Buffer) Clipped() int {
	n := 0
	for _, v := range b.Samples {
		if v > 1 || v < -1 {
			n++
		}
	}
	return n
}

// WriteChunks encodes the buffer as little-endian float32 in chunks of
// chunkFrames frames, calling write once per chunk.
func (b *Buffer) WriteChunks(chunkFrames int, write func([]byte) error) error {
	if chunkFrames <= 0 {
		chunkFrames = 4096
	}
	step := chunkFrames * b.Channels
	out := make([]byte, 0, step*4)

	for start := 0; start < len(b.Samples); start += step {
		end := start + step
		if end > len(b.Samples) {
			end = len(b.Samples)
		}
		out = AppendF32LE(out[:0], b.Samples[start:end])
		if err := write(out); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo writes the whole buffer as little-endian float32.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	err := b.WriteChunks(0, func(p []byte) error {
		n, err := w.Write(p)
		total += int64(n)
		return err
	})
	return total, err
}

// AppendF32LE appends samples to dst as little-endian float32.
func AppendF32LE(dst []byte, samples []float32) []byte {
	for _, v := range samples {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// NormalizePeak scales samples in place so the peak equals target and
// returns the gain applied. Silence is left untouched (gain 1).
func NormalizePeak(samples []float32, target float32) float32 {
	p := peak(samples)
	if p == 0 || target <= 0 {
		return 1
	}
	gain := target / p
	for i := range samples {
		samples[i] *= gain
	}
	return gain
}

func peak(samples []float32) float32 {
	var p float32
	for _, v := range samples {
		if v < 0 {
			v = -v
		}
		if v > p {
			p = v
		}
	}
	return p
}
