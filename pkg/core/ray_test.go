package core

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRayDesc_Validate(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	valid := NewRayDesc(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, 0, 100)

	tests := []struct {
		name    string
		modify  func(r *RayDesc)
		wantErr bool
	}{
		{"valid", func(r *RayDesc) {}, false},
		{"zero length interval", func(r *RayDesc) { r.TMin, r.TMax = 5, 5 }, false},
		{"infinite t max", func(r *RayDesc) { r.TMax = inf }, false},
		{"nan origin", func(r *RayDesc) { r.Origin[0] = nan }, true},
		{"infinite direction", func(r *RayDesc) { r.Direction[1] = inf }, true},
		{"zero direction", func(r *RayDesc) { r.Direction = mgl32.Vec3{} }, true},
		{"negative t min", func(r *RayDesc) { r.TMin = -1 }, true},
		{"inverted interval", func(r *RayDesc) { r.TMin, r.TMax = 10, 1 }, true},
		{"nan t max", func(r *RayDesc) { r.TMax = nan }, true},
		{"two opacity flags", func(r *RayDesc) { r.Flags = RayFlagOpaque | RayFlagCullNoOpaque }, true},
		{"one opacity flag", func(r *RayDesc) { r.Flags = RayFlagCullOpaque | RayFlagTerminateOnFirstHit }, false},
		{"skip everything", func(r *RayDesc) { r.Flags = RayFlagSkipTriangles | RayFlagSkipProcedural }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := valid
			tt.modify(&ray)
			err := ray.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRay) {
				t.Errorf("Expected ErrInvalidRay, got %v", err)
			}
		})
	}
}

func TestRayFlags_Has(t *testing.T) {
	flags := RayFlagOpaque | RayFlagCullBackFacing
	if !flags.Has(RayFlagOpaque) {
		t.Error("Expected opaque flag")
	}
	if !flags.Has(RayFlagOpaque | RayFlagCullBackFacing) {
		t.Error("Expected both flags")
	}
	if flags.Has(RayFlagOpaque | RayFlagSkipTriangles) {
		t.Error("Expected Has to require every bit")
	}
}

func TestTransforms(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))

	if p := TransformPoint(m, mgl32.Vec3{1, 1, 1}); p != (mgl32.Vec3{3, 4, 5}) {
		t.Errorf("Expected point (3,4,5), got %v", p)
	}
	if v := TransformVector(m, mgl32.Vec3{1, 1, 1}); v != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("Expected vector (2,2,2), got %v", v)
	}

	ray := NewRayDesc(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 2, 0}, 0, 10)
	if p := ray.At(1.5); p != (mgl32.Vec3{1, 3, 0}) {
		t.Errorf("Expected At(1.5) = (1,3,0), got %v", p)
	}
	if ray.CullMask != 0xff {
		t.Errorf("Expected full cull mask, got %#x", ray.CullMask)
	}
}

func TestIntersection_Hit(t *testing.T) {
	var none Intersection
	if none.Hit() {
		t.Error("Expected zero intersection to be none")
	}
	if !(Intersection{Kind: KindTriangle}).Hit() {
		t.Error("Expected triangle intersection to hit")
	}
}
