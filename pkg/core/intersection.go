package core

import "github.com/go-gl/mathgl/mgl32"

// IntersectionKind tags a candidate or committed intersection
type IntersectionKind uint32

// Engine-reserved kinds. Procedural shapes use KindProcedural and above;
// the meaning of each user kind is defined by the hit group that reports it.
const (
	KindNone       IntersectionKind = 0
	KindTriangle   IntersectionKind = 1
	KindProcedural IntersectionKind = 2
)

// Triangle hit kinds
const (
	HitKindFrontFace uint32 = 0xFE
	HitKindBackFace  uint32 = 0xFF
)

// Intersection is a candidate or committed hit. The zero value is the "none" intersection.
type Intersection struct {
	Kind    IntersectionKind
	T       float32
	HitKind uint32

	InstanceID          int
	InstanceCustomIndex uint32
	SBTRecordOffset     uint32
	GeometryIndex       int
	PrimitiveIndex      int

	// Triangle only
	Barycentrics mgl32.Vec2
	FrontFace    bool

	ObjectToWorld mgl32.Mat4
	WorldToObject mgl32.Mat4
}

// Hit returns true unless this is the "none" intersection
func (i Intersection) Hit() bool {
	return i.Kind != KindNone
}
