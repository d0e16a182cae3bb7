package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl32.Vec3 // Minimum corner
	Max mgl32.Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max mgl32.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that any union will overwrite
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...mgl32.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}

// Extend returns the box grown to contain p
func (aabb AABB) Extend(p mgl32.Vec3) AABB {
	for axis := 0; axis < 3; axis++ {
		aabb.Min[axis] = min(aabb.Min[axis], p[axis])
		aabb.Max[axis] = max(aabb.Max[axis], p[axis])
	}
	return aabb
}

// Hit tests if a ray intersects with this AABB using the slab method
func (aabb AABB) Hit(origin, direction mgl32.Vec3, tMin, tMax float32) bool {
	_, _, ok := aabb.Intersect(origin, direction, tMin, tMax)
	return ok
}

// Intersect clips [tMin, tMax] against the box and returns the entry and
// exit distances of the overlap
func (aabb AABB) Intersect(origin, direction mgl32.Vec3, tMin, tMax float32) (tNear, tFar float32, ok bool) {
	for axis := 0; axis < 3; axis++ {
		// Handle parallel rays (direction near zero)
		if float32(math.Abs(float64(direction[axis]))) < 1e-8 {
			if origin[axis] < aabb.Min[axis] || origin[axis] > aabb.Max[axis] {
				return 0, 0, false // Ray origin outside slab
			}
			continue
		}

		invDirection := 1.0 / direction[axis]
		t1 := (aabb.Min[axis] - origin[axis]) * invDirection
		t2 := (aabb.Max[axis] - origin[axis]) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = max(tMin, t1)
		tMax = min(tMax, t2)
		if tMin > tMax {
			return 0, 0, false
		}
	}

	return tMin, tMax, true
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return aabb.Extend(other.Min).Extend(other.Max)
}

// Center returns the center point of the AABB
func (aabb AABB) Center() mgl32.Vec3 {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() mgl32.Vec3 {
	return aabb.Max.Sub(aabb.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size[0] > size[1] && size[0] > size[2] {
		return 0
	}
	if size[1] > size[2] {
		return 1
	}
	return 2
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min[0] <= aabb.Max[0] &&
		aabb.Min[1] <= aabb.Max[1] &&
		aabb.Min[2] <= aabb.Max[2]
}

// Transform returns the world-space box bounding all eight transformed corners
func (aabb AABB) Transform(m mgl32.Mat4) AABB {
	if !aabb.IsValid() {
		return aabb
	}
	box := EmptyAABB()
	for i := 0; i < 8; i++ {
		corner := aabb.Min
		if i&1 != 0 {
			corner[0] = aabb.Max[0]
		}
		if i&2 != 0 {
			corner[1] = aabb.Max[1]
		}
		if i&4 != 0 {
			corner[2] = aabb.Max[2]
		}
		box = box.Extend(TransformPoint(m, corner))
	}
	return box
}
