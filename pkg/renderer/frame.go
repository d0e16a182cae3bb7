package renderer

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Frame is the output image of a dispatch
type Frame struct {
	Image *image.RGBA
}

// NewFrame creates a black frame of the given size
func NewFrame(width, height int) *Frame {
	return &Frame{Image: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the frame width in pixels
func (f *Frame) Width() int {
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels
func (f *Frame) Height() int {
	return f.Image.Bounds().Dy()
}

// Set stores a linear RGBA color, clamped to [0, 1]
func (f *Frame) Set(x, y int, c mgl32.Vec4) {
	f.Image.SetRGBA(x, y, toRGBA(c))
}

// Color returns the stored color of a pixel in [0, 1]
func (f *Frame) Color(x, y int) mgl32.Vec4 {
	c := f.Image.RGBAAt(x, y)
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// AverageLuminance returns the mean Rec. 709 luminance of the frame
func (f *Frame) AverageLuminance() float64 {
	bounds := f.Image.Bounds()
	if bounds.Empty() {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := f.Image.RGBAAt(x, y)
			total += 0.2126*float64(c.R)/255 + 0.7152*float64(c.G)/255 + 0.0722*float64(c.B)/255
		}
	}
	return total / float64(bounds.Dx()*bounds.Dy())
}

func toRGBA(c mgl32.Vec4) color.RGBA {
	return color.RGBA{
		R: toByte(c[0]),
		G: toByte(c[1]),
		B: toByte(c[2]),
		A: toByte(c[3]),
	}
}

func toByte(v float32) uint8 {
	if v != v {
		return 0
	}
	v = mgl32.Clamp(v, 0, 1)
	return uint8(v*255 + 0.5)
}
