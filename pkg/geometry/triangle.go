package geometry

import "github.com/go-gl/mathgl/mgl32"

// triangleEpsilon is the determinant cutoff relative to |edge1|·|edge2|·|direction|,
// so the plane-parallel test does not depend on scene scale
const triangleEpsilon = 1e-7

// TriangleHit is the result of a ray/triangle test
type TriangleHit struct {
	T float32
	// U and V are the barycentric weights of the second and third vertex
	U, V float32
	// Det is the Möller-Trumbore determinant; its sign encodes the winding
	// as seen from the ray origin
	Det float32
}

// CounterClockwise reports whether the triangle winds counter-clockwise as seen from the ray origin
func (h TriangleHit) CounterClockwise() bool {
	return h.Det > 0
}

// Barycentrics returns (U, V)
func (h TriangleHit) Barycentrics() mgl32.Vec2 {
	return mgl32.Vec2{h.U, h.V}
}

// IntersectTriangle tests a ray against a triangle using the Möller-Trumbore algorithm.
// The returned t is not range checked; zero-area triangles and rays lying in
// the triangle plane never hit.
func IntersectTriangle(origin, direction, v0, v1, v2 mgl32.Vec3) (TriangleHit, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	epsilon := triangleEpsilon * edge1.Len() * edge2.Len() * direction.Len()
	if a >= -epsilon && a <= epsilon {
		return TriangleHit{}, false
	}

	f := 1.0 / a
	s := origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return TriangleHit{}, false
	}

	q := s.Cross(edge1)
	v := f * direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return TriangleHit{}, false
	}

	return TriangleHit{T: f * edge2.Dot(q), U: u, V: v, Det: a}, true
}
