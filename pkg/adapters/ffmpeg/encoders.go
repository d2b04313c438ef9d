package ffmpeg

import (
	"strings"
)

// Kind is the media type an encoder produces.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindSubtitle Kind = "subtitle"
)

// Encoder is one row of "ffmpeg -encoders".
type Encoder struct {
	Name         string
	Description  string
	Codec        string
	Kind         Kind
	Experimental bool
}

// ParseEncoders parses the output of "ffmpeg -encoders". Rows start after
// the dashed separator line; each row is "<flags> <name> <description>".
// Codec comes from a trailing "(codec X)" and falls back to the name.
func ParseEncoders(out string) []Encoder {
	var encoders []Encoder
	inTable := false

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if !inTable {
			if strings.HasSuffix(strings.TrimSpace(line), "------") {
				inTable = true
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		flags, name := fields[0], fields[1]

		desc := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), flags))
		desc = strings.TrimSpace(strings.TrimPrefix(desc, name))

		enc := Encoder{
			Name:         name,
			Description:  desc,
			Codec:        name,
			Kind:         kindFromFlag(flags[0]),
			Experimental: flags[3] == 'X',
		}
		if i := strings.LastIndex(desc, "(codec "); i >= 0 {
			if j := strings.Index(desc[i:], ")"); j > 0 {
				enc.Codec = desc[i+len("(codec ") : i+j]
				enc.Description = strings.TrimSpace(desc[:i])
			}
		}
		encoders = append(encoders, enc)
	}

	return encoders
}

func kindFromFlag(c byte) Kind {
	switch c {
	case 'V':
		return KindVideo
	case 'A':
		return KindAudio
	case 'S':
		return KindSubtitle
	default:
		return ""
	}
}

// FilterKind returns the encoders of one kind.
func FilterKind(encoders []Encoder, kind Kind) []Encoder {
	var out []Encoder
	for _, e := range encoders {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
