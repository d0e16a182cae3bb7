package renderer

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrSingularMatrix = errors.New("renderer: singular view or projection matrix")

// Uniforms are the per-frame camera inputs of a dispatch
type Uniforms struct {
	ViewInverse mgl32.Mat4
	ProjInverse mgl32.Mat4
}

// NewUniforms inverts a view and a projection matrix
func NewUniforms(view, proj mgl32.Mat4) (Uniforms, error) {
	if view.Det() == 0 || proj.Det() == 0 {
		return Uniforms{}, ErrSingularMatrix
	}
	return Uniforms{ViewInverse: view.Inv(), ProjInverse: proj.Inv()}, nil
}

// LookAtPerspective builds uniforms for a camera at eye looking at center,
// with a vertical field of view in degrees
func LookAtPerspective(eye, center, up mgl32.Vec3, fovyDegrees, aspect, near, far float32) (Uniforms, error) {
	view := mgl32.LookAtV(eye, center, up)
	proj := mgl32.Perspective(mgl32.DegToRad(fovyDegrees), aspect, near, far)
	return NewUniforms(view, proj)
}

// Ray unprojects the center of cell (x, y) of a width by height grid into a
// world-space primary ray. Row 0 is the top of the image.
func (u Uniforms) Ray(x, y, width, height int) (origin, direction mgl32.Vec3) {
	s := (float32(x)+0.5)/float32(width)*2 - 1
	t := 1 - (float32(y)+0.5)/float32(height)*2

	origin = u.ViewInverse.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	target := u.ProjInverse.Mul4x1(mgl32.Vec4{s, t, 1, 1})
	direction = u.ViewInverse.Mul4x1(target.Vec3().Normalize().Vec4(0)).Vec3()
	return origin, direction
}
