package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testUniforms(t *testing.T) Uniforms {
	t.Helper()
	u, err := LookAtPerspective(mgl32.Vec3{0, 0, 2.5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, 59, 1, 0.1, 100)
	if err != nil {
		t.Fatalf("LookAtPerspective failed: %v", err)
	}
	return u
}

func TestUniforms_CenterRay(t *testing.T) {
	u := testUniforms(t)

	origin, direction := u.Ray(0, 0, 1, 1)
	if !origin.ApproxEqualThreshold(mgl32.Vec3{0, 0, 2.5}, 1e-4) {
		t.Errorf("Expected origin at the eye (0,0,2.5), got %v", origin)
	}
	if !direction.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4) {
		t.Errorf("Expected center ray along -Z, got %v", direction)
	}
}

func TestUniforms_GridOrientation(t *testing.T) {
	u := testUniforms(t)
	const size = 8

	tests := []struct {
		name   string
		x, y   int
		checkX func(float32) bool
		checkY func(float32) bool
	}{
		{"top left", 0, 0, func(v float32) bool { return v < 0 }, func(v float32) bool { return v > 0 }},
		{"top right", size - 1, 0, func(v float32) bool { return v > 0 }, func(v float32) bool { return v > 0 }},
		{"bottom left", 0, size - 1, func(v float32) bool { return v < 0 }, func(v float32) bool { return v < 0 }},
		{"bottom right", size - 1, size - 1, func(v float32) bool { return v > 0 }, func(v float32) bool { return v < 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, d := u.Ray(tt.x, tt.y, size, size)
			if !tt.checkX(d.X()) || !tt.checkY(d.Y()) {
				t.Errorf("Unexpected direction %v for cell (%d,%d)", d, tt.x, tt.y)
			}
			if d.Z() >= 0 {
				t.Errorf("Expected ray into the scene, got %v", d)
			}
			if l := d.Len(); l < 0.999 || l > 1.001 {
				t.Errorf("Expected unit direction, got length %v", l)
			}
		})
	}
}

func TestUniforms_FieldOfView(t *testing.T) {
	u := testUniforms(t)

	// A tall grid puts the outer row centers close to the vertical half angle
	const height = 1001
	_, top := u.Ray(0, 0, 1, height)
	half := mgl32.RadToDeg(float32(angleBetween(top, mgl32.Vec3{0, 0, -1})))
	if half < 29.3 || half > 29.5 {
		t.Errorf("Expected a half angle near 29.5 degrees, got %v", half)
	}
}

func TestNewUniforms_Singular(t *testing.T) {
	_, err := NewUniforms(mgl32.Mat4{}, mgl32.Ident4())
	if !errors.Is(err, ErrSingularMatrix) {
		t.Errorf("Expected ErrSingularMatrix, got %v", err)
	}
}

func angleBetween(a, b mgl32.Vec3) float64 {
	return math.Acos(float64(a.Dot(b) / (a.Len() * b.Len())))
}
