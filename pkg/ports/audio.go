package ports

import "context"

// PCM is decoded audio as interleaved float32 samples in [-1, 1].
type PCM struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (p PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// AudioDecoder decodes an encoded audio payload (WAV, MP3, Ogg, ...).
type AudioDecoder interface {
	Decode(ctx context.Context, data []byte) (PCM, error)
}
