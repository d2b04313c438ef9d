// Package ggrenderer draws synthetic test-pattern frames with the gg library
// and streams them to a frame socket.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/mixrender/pkg/ports"
)

// SMPTE-like colour bars.
var bars = []color.RGBA{
	{192, 192, 192, 255},
	{192, 192, 0, 255},
	{0, 192, 192, 255},
	{0, 192, 0, 255},
	{192, 0, 192, 255},
	{192, 0, 0, 255},
	{0, 0, 192, 255},
}

var (
	background = color.RGBA{26, 26, 46, 255}
	accent     = color.RGBA{74, 222, 128, 255}
)

// Renderer implements ports.FrameRenderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// RenderFrame draws colour bars, a marker sweeping once across the frame
// over total frames, a progress bar and the frame number.
func (r *Renderer) RenderFrame(index, total, width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	w, h := float64(width), float64(height)
	barsH := h * 2 / 3
	barW := w / float64(len(bars))
	for i, c := range bars {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*barW, 0, math.Ceil(barW), barsH)
		dc.Fill()
	}

	progress := 0.0
	if total > 1 {
		progress = float64(index) / float64(total-1)
	}

	radius := math.Max(2, h/20)
	dc.SetColor(color.White)
	dc.DrawCircle(radius+progress*(w-2*radius), barsH+(h-barsH)/3, radius)
	dc.Fill()

	barH := math.Max(2, h/30)
	dc.SetColor(accent)
	dc.DrawRectangle(0, h-barH, progress*w, barH)
	dc.Fill()

	dc.SetColor(color.White)
	label := fmt.Sprintf("%d", index)
	if total > 0 {
		label = fmt.Sprintf("%d / %d", index+1, total)
	}
	dc.DrawStringAnchored(label, w/2, barsH+(h-barsH)*2/3, 0.5, 0.5)

	return dc.Image()
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: quality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Ensure Renderer implements ports.FrameRenderer
var _ ports.FrameRenderer = (*Renderer)(nil)

// ToRGB24 packs an image into tightly packed RGB24 rows, dropping alpha.
func ToRGB24(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):rgba.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				out = append(out, row[i], row[i+1], row[i+2])
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}

// FromRGB24 wraps tightly packed RGB24 data as an opaque image.
func FromRGB24(rgb []byte, width, height int) (*image.RGBA, error) {
	if len(rgb) != width*height*3 {
		return nil, fmt.Errorf("frame is %d bytes, want %d for %dx%d", len(rgb), width*height*3, width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(rgb); i, j = i+3, j+4 {
		img.Pix[j] = rgb[i]
		img.Pix[j+1] = rgb[i+1]
		img.Pix[j+2] = rgb[i+2]
		img.Pix[j+3] = 255
	}
	return img, nil
}
