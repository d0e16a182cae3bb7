package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFrame_AverageLuminance(t *testing.T) {
	// Top-left: Red (1, 0, 0) -> Lum = 0.2126
	// Top-right: Green (0, 1, 0) -> Lum = 0.7152
	// Bottom-left: Blue (0, 0, 1) -> Lum = 0.0722
	// Bottom-right: Black (0, 0, 0) -> Lum = 0.0
	// Expected average: 1.0 / 4 = 0.25
	frame := NewFrame(2, 2)
	frame.Set(0, 0, mgl32.Vec4{1, 0, 0, 1})
	frame.Set(1, 0, mgl32.Vec4{0, 1, 0, 1})
	frame.Set(0, 1, mgl32.Vec4{0, 0, 1, 1})
	frame.Set(1, 1, mgl32.Vec4{0, 0, 0, 1})

	if avg := frame.AverageLuminance(); math.Abs(avg-0.25) > 0.0001 {
		t.Errorf("Expected average luminance 0.25, got %f", avg)
	}
}

func TestFrame_SetClamps(t *testing.T) {
	tests := []struct {
		name string
		in   mgl32.Vec4
		want color.RGBA
	}{
		{"in range", mgl32.Vec4{0.5, 0.25, 1, 1}, color.RGBA{128, 64, 255, 255}},
		{"over range", mgl32.Vec4{2, 1.5, 7, 3}, color.RGBA{255, 255, 255, 255}},
		{"negative", mgl32.Vec4{-1, -0.1, 0, 1}, color.RGBA{0, 0, 0, 255}},
		{"nan", mgl32.Vec4{float32(math.NaN()), 0, 0, 1}, color.RGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := NewFrame(1, 1)
			frame.Set(0, 0, tt.in)
			if got := frame.Image.RGBAAt(0, 0); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
