package accel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxU24 is the largest value of the 24-bit instance fields
const MaxU24 = 1<<24 - 1

// InstanceFlags modify how traversal treats the geometry of one instance
type InstanceFlags uint8

const (
	// InstanceTriangleFacingCullDisable ignores the ray's facing cull flags
	InstanceTriangleFacingCullDisable InstanceFlags = 1 << iota
	// InstanceTriangleFrontCounterClockwise makes counter-clockwise triangles front facing
	InstanceTriangleFrontCounterClockwise
	// InstanceForceOpaque treats all geometry as opaque
	InstanceForceOpaque
	// InstanceForceNoOpaque treats all geometry as non-opaque
	InstanceForceNoOpaque
)

// Instance places a BLAS in the world
type Instance struct {
	BLAS *BLAS
	// Transform is the object-to-world affine transform
	Transform mgl32.Mat4
	// CustomIndex is a user value reported with hits (24 bits)
	CustomIndex uint32
	// Mask is matched against the ray cull mask
	Mask uint8
	// SBTRecordOffset selects the first hit group for this instance (24 bits)
	SBTRecordOffset uint32
	Flags           InstanceFlags
}

// NewInstance creates a visible instance with no flags
func NewInstance(blas *BLAS, transform mgl32.Mat4) Instance {
	return Instance{
		BLAS:      blas,
		Transform: transform,
		Mask:      0xff,
	}
}

// Validate checks the 24-bit fields and the transform
func (inst Instance) Validate() error {
	if inst.BLAS == nil {
		return ErrNilBLAS
	}
	if inst.CustomIndex > MaxU24 {
		return fmt.Errorf("%w: %d > %d", ErrCustomIndexRange, inst.CustomIndex, MaxU24)
	}
	if inst.SBTRecordOffset > MaxU24 {
		return fmt.Errorf("%w: %d > %d", ErrSBTOffsetRange, inst.SBTRecordOffset, MaxU24)
	}
	if inst.Transform.Det() == 0 {
		return ErrSingularTransform
	}
	return nil
}

// TransformFromRows decodes a row-major 3x4 affine transform, the layout
// used by GPU instance buffers.
func TransformFromRows(rows [12]float32) mgl32.Mat4 {
	m := mgl32.Ident4()
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, rows[r*4+c])
		}
	}
	return m
}

// TransformToRows encodes the affine part of m as a row-major 3x4 matrix
func TransformToRows(m mgl32.Mat4) [12]float32 {
	var rows [12]float32
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			rows[r*4+c] = m.At(r, c)
		}
	}
	return rows
}
