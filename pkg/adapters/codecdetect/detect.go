// Package codecdetect identifies audio containers from their leading bytes
// and inspects MP4 files for their tracks.
package codecdetect

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Format is a container format.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatOgg     Format = "ogg"
	FormatFLAC    Format = "flac"
	FormatMP4     Format = "mp4"
	FormatUnknown Format = "unknown"
)

// Sniff identifies the container of data from its magic bytes.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return FormatOgg
	case len(data) >= 4 && string(data[0:4]) == "fLaC":
		return FormatFLAC
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return FormatMP4
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}

// Track describes one MP4 track.
type Track struct {
	Handler   string // "vide", "soun", ...
	Codec     string // sample entry type: "avc1", "mp4a", ...
	Timescale uint32
	Duration  uint64
}

// Seconds returns the track duration in seconds.
func (t Track) Seconds() float64 {
	if t.Timescale == 0 {
		return 0
	}
	return float64(t.Duration) / float64(t.Timescale)
}

// MediaInfo summarizes an MP4 file.
type MediaInfo struct {
	Tracks []Track
}

// HasVideo reports whether a video track is present.
func (m MediaInfo) HasVideo() bool { return m.first("vide") != nil }

// HasAudio reports whether an audio track is present.
func (m MediaInfo) HasAudio() bool { return m.first("soun") != nil }

// AudioCodec returns the codec of the first audio track, or "".
func (m MediaInfo) AudioCodec() string {
	if t := m.first("soun"); t != nil {
		return t.Codec
	}
	return ""
}

// DurationSeconds returns the longest track duration.
func (m MediaInfo) DurationSeconds() float64 {
	var d float64
	for _, t := range m.Tracks {
		if s := t.Seconds(); s > d {
			d = s
		}
	}
	return d
}

func (m MediaInfo) first(handler string) *Track {
	for i := range m.Tracks {
		if m.Tracks[i].Handler == handler {
			return &m.Tracks[i]
		}
	}
	return nil
}

// InspectFile reads the track table of an MP4 file.
func InspectFile(path string) (MediaInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return MediaInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return InspectReader(f)
}

// InspectBytes reads the track table of MP4 data.
func InspectBytes(data []byte) (MediaInfo, error) {
	return InspectReader(bytes.NewReader(data))
}

// InspectReader reads the track table from an io.ReadSeeker. Media data
// is skipped, so large files are not loaded into memory.
func InspectReader(reader io.ReadSeeker) (MediaInfo, error) {
	mp4File, err := mp4.DecodeFile(reader, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return MediaInfo{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return MediaInfo{}, fmt.Errorf("no moov box found")
	}

	var info MediaInfo
	for _, trak := range moov.Traks {
		if t, ok := trackInfo(trak); ok {
			info.Tracks = append(info.Tracks, t)
		}
	}
	return info, nil
}

func trackInfo(trak *mp4.TrakBox) (Track, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return Track{}, false
	}

	t := Track{Handler: trak.Mdia.Hdlr.HandlerType}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil {
		t.Timescale = mdhd.Timescale
		t.Duration = mdhd.Duration
	}

	if minf := trak.Mdia.Minf; minf != nil && minf.Stbl != nil && minf.Stbl.Stsd != nil {
		if children := minf.Stbl.Stsd.Children; len(children) > 0 {
			t.Codec = children[0].Type()
		}
	}
	return t, true
}
