// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/user/mixrender/pkg/adapters/ggrenderer"
	"github.com/user/mixrender/pkg/ports"
)

// DefaultThumbnailWidth bounds the width of saved frames.
const DefaultThumbnailWidth = 320

// Sink saves debug output to files.
type Sink struct {
	baseDir        string
	fs             ports.FileSystem
	renderer       ports.FrameRenderer
	ThumbnailWidth int
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.FrameRenderer) *Sink {
	return &Sink{
		baseDir:        baseDir,
		fs:             fs,
		renderer:       renderer,
		ThumbnailWidth: DefaultThumbnailWidth,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveMixJSON saves the mix report as JSON.
func (s *Sink) SaveMixJSON(data []byte) error {
	return s.write("mix.json", data)
}

// SaveMixPCM saves the raw interleaved f32le mix.
func (s *Sink) SaveMixPCM(data []byte) error {
	return s.write("mix.f32le", data)
}

// SaveFrame saves a received frame as a PNG thumbnail.
func (s *Sink) SaveFrame(index int, rgb []byte, width, height int) error {
	img, err := ggrenderer.FromRGB24(rgb, width, height)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}

	if s.ThumbnailWidth > 0 && width > s.ThumbnailWidth {
		h := height * s.ThumbnailWidth / width
		if h < 1 {
			h = 1
		}
		thumb := s.renderer.ResizeImage(img, s.ThumbnailWidth, h)
		return s.savePNG(dir, index, thumb)
	}
	return s.savePNG(dir, index, img)
}

// SaveCommand saves an encoder invocation as a shell line.
func (s *Sink) SaveCommand(name string, args []string) error {
	dir := filepath.Join(s.baseDir, "commands")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(dir, name+".txt"), []byte(CommandLine("ffmpeg", args)+"\n"))
}

func (s *Sink) savePNG(dir string, index int, img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	return s.fs.WriteFile(filepath.Join(dir, fmt.Sprintf("frame-%06d.png", index)), data)
}

func (s *Sink) write(name string, data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, name), data)
}

// CommandLine joins a command for display, quoting arguments that a
// shell would split or expand.
func CommandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'$`\\;|&<>()[]*?") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
