package ports

import "image"

// FrameRenderer draws synthetic video frames and encodes images.
type FrameRenderer interface {
	// RenderFrame draws frame index of total at the given size.
	RenderFrame(index, total, width, height int) image.Image

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
