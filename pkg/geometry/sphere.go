package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SphereRoots returns the parametric distances at which a ray crosses a
// sphere surface, nearest first. A tangent ray yields a single root; a
// non-positive radius or a missed sphere yields none.
func SphereRoots(origin, direction, center mgl32.Vec3, radius float32) (roots [2]float32, n int) {
	if radius <= 0 {
		return roots, 0
	}

	// Quadratic equation coefficients: at² + 2(halfB)t + c = 0
	oc := origin.Sub(center)
	a := direction.Dot(direction)
	halfB := oc.Dot(direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := halfB*halfB - a*c
	switch {
	case a == 0 || discriminant < 0:
		return roots, 0
	case discriminant == 0:
		roots[0] = -halfB / a
		return roots, 1
	}

	sqrtD := float32(math.Sqrt(float64(discriminant)))
	roots[0] = (-halfB - sqrtD) / a
	roots[1] = (-halfB + sqrtD) / a
	return roots, 2
}

// SphereNormal returns the outward unit normal at point p on the sphere
func SphereNormal(p, center mgl32.Vec3, radius float32) mgl32.Vec3 {
	return p.Sub(center).Mul(1.0 / radius)
}
