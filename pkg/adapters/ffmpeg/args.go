package ffmpeg

import (
	"fmt"
	"strconv"
)

// VideoOptions describes a raw RGB24 video encode fed through stdin.
type VideoOptions struct {
	Width   int
	Height  int
	FPS     int
	Codec   string // e.g. libx264
	Bitrate string // e.g. 8M
	VFlip   bool   // flip rows vertically
	Output  string
}

// FrameSize returns the byte size of one RGB24 frame.
func (o VideoOptions) FrameSize() int {
	return o.Width * o.Height * 3
}

// VideoArgs builds the argument list for a streaming video encode.
func VideoArgs(o VideoOptions) []string {
	args := []string{
		"-probesize", "50M",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", o.Width, o.Height),
		"-r", strconv.Itoa(o.FPS),
		"-thread_queue_size", "1024",
		"-i", "pipe:0",
		"-c:v", o.Codec,
		"-b:v", o.Bitrate,
	}
	if o.VFlip {
		args = append(args, "-vf", "vflip")
	}
	return append(args,
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-y", o.Output,
	)
}

// MixdownArgs builds the argument list that turns interleaved f32le PCM on
// stdin into a float WAV file.
func MixdownArgs(sampleRate, channels int, output string) []string {
	return []string{
		"-y",
		"-f", "f32le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-i", "-",
		"-c:a", "pcm_f32le",
		"-f", "wav",
		output,
	}
}

// ConvertArgs builds the argument list that converts any audio file to a
// float WAV at sampleRate.
func ConvertArgs(input string, sampleRate int, output string) []string {
	return []string{
		"-i", input,
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_f32le",
		"-y", output,
	}
}

// DecodeArgs builds the argument list that decodes stdin to interleaved
// f32le PCM on stdout.
func DecodeArgs(sampleRate, channels int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "f32le",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"pipe:1",
	}
}
