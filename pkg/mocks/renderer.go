package mocks

import (
	"image"

	"github.com/user/mixrender/pkg/ports"
)

// Renderer is a mock implementation of ports.FrameRenderer.
type Renderer struct {
	RenderFrameFunc func(index, total, width, height int) image.Image
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc func(img image.Image, width, height int) image.Image

	// Recorded calls for verification
	RenderCalls []int
}

func (m *Renderer) RenderFrame(index, total, width, height int) image.Image {
	m.RenderCalls = append(m.RenderCalls, index)
	if m.RenderFrameFunc != nil {
		return m.RenderFrameFunc(index, total, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.FrameRenderer = (*Renderer)(nil)
