package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidRay is returned when a ray descriptor cannot be traced
var ErrInvalidRay = errors.New("core: invalid ray")

// RayFlags control traversal behavior for a single ray
type RayFlags uint32

// Ray flag bits. Values match the SPIR-V / WGSL ray flag layout.
const (
	RayFlagNone                 RayFlags = 0
	RayFlagOpaque               RayFlags = 0x01
	RayFlagNoOpaque             RayFlags = 0x02
	RayFlagTerminateOnFirstHit  RayFlags = 0x04
	RayFlagSkipClosestHitShader RayFlags = 0x08
	RayFlagCullBackFacing       RayFlags = 0x10
	RayFlagCullFrontFacing      RayFlags = 0x20
	RayFlagCullOpaque           RayFlags = 0x40
	RayFlagCullNoOpaque         RayFlags = 0x80
	RayFlagSkipTriangles        RayFlags = 0x100
	RayFlagSkipProcedural       RayFlags = 0x200
)

// opacityFlags are mutually exclusive
const opacityFlags = RayFlagOpaque | RayFlagNoOpaque | RayFlagCullOpaque | RayFlagCullNoOpaque

// Has reports whether every bit of mask is set
func (f RayFlags) Has(mask RayFlags) bool {
	return f&mask == mask
}

// RayDesc describes a ray for one traversal
type RayDesc struct {
	Flags     RayFlags
	CullMask  uint32
	TMin      float32
	TMax      float32
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRayDesc creates a ray with no flags and a full cull mask
func NewRayDesc(origin, direction mgl32.Vec3, tMin, tMax float32) RayDesc {
	return RayDesc{
		CullMask:  0xff,
		TMin:      tMin,
		TMax:      tMax,
		Origin:    origin,
		Direction: direction,
	}
}

// At returns the point at parameter t along the ray
func (r RayDesc) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Validate checks that the ray can be traced
func (r RayDesc) Validate() error {
	if !IsFinite(r.Origin) || !IsFinite(r.Direction) {
		return fmt.Errorf("%w: non-finite origin %v or direction %v", ErrInvalidRay, r.Origin, r.Direction)
	}
	if r.Direction.LenSqr() == 0 {
		return fmt.Errorf("%w: zero direction", ErrInvalidRay)
	}
	if isNaN(r.TMin) || isNaN(r.TMax) || r.TMin < 0 || r.TMin > r.TMax {
		return fmt.Errorf("%w: bad interval [%g, %g]", ErrInvalidRay, r.TMin, r.TMax)
	}
	if bits := r.Flags & opacityFlags; bits&(bits-1) != 0 {
		return fmt.Errorf("%w: conflicting opacity flags %#x", ErrInvalidRay, uint32(bits))
	}
	if r.Flags.Has(RayFlagSkipTriangles | RayFlagSkipProcedural) {
		return fmt.Errorf("%w: both primitive categories skipped", ErrInvalidRay)
	}
	return nil
}

func isNaN(f float32) bool {
	return f != f
}

// IsFinite returns true if no component is NaN or infinite
func IsFinite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

// TransformPoint applies an affine transform to a point
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformVector applies an affine transform to a direction, ignoring translation
func TransformVector(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}
