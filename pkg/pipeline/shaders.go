package pipeline

import (
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// AnyHitResult is the decision of an any-hit shader about one candidate
type AnyHitResult int

const (
	// AnyHitAccept commits the candidate and continues traversal
	AnyHitAccept AnyHitResult = iota
	// AnyHitAcceptAndTerminate commits the candidate and ends traversal
	AnyHitAcceptAndTerminate
	// AnyHitIgnore discards the candidate
	AnyHitIgnore
)

// HitInfo is what any-hit and closest-hit shaders see of a hit
type HitInfo struct {
	Ray          core.RayDesc
	Intersection core.Intersection
}

// WorldPosition returns the hit point in world space
func (h HitInfo) WorldPosition() mgl32.Vec3 {
	return h.Ray.At(h.Intersection.T)
}

// ObjectRay returns the ray origin and direction in the hit instance's object space
func (h HitInfo) ObjectRay() (origin, direction mgl32.Vec3) {
	w2o := h.Intersection.WorldToObject
	return core.TransformPoint(w2o, h.Ray.Origin), core.TransformVector(w2o, h.Ray.Direction)
}

// ObjectPosition returns the hit point in object space
func (h HitInfo) ObjectPosition() mgl32.Vec3 {
	return core.TransformPoint(h.Intersection.WorldToObject, h.WorldPosition())
}

// IntersectionShader decides where a ray meets a procedural primitive and
// reports each hit through q.ReportIntersection
type IntersectionShader func(q *IntersectionQuery)

// AnyHitShader gates a candidate hit; it may update the payload
type AnyHitShader[P any] func(payload *P, hit HitInfo) AnyHitResult

// ClosestHitShader runs once for the committed hit of a TraceRay
type ClosestHitShader[P any] func(payload *P, hit HitInfo)

// MissShader runs when a TraceRay commits nothing
type MissShader[P any] func(payload *P, ray core.RayDesc)

// HitGroup bundles the shaders bound to a geometry. Any field may be nil:
// no intersection shader means procedural primitives never hit, no any-hit
// shader means every candidate is accepted, and no closest-hit shader
// leaves the payload untouched.
type HitGroup[P any] struct {
	Intersection IntersectionShader
	AnyHit       AnyHitShader[P]
	ClosestHit   ClosestHitShader[P]
}

// ShaderBindingTable maps geometry to hit groups and miss indices to miss shaders
type ShaderBindingTable[P any] struct {
	HitGroups []HitGroup[P]
	Miss      []MissShader[P]
}

// TraceOptions select shader binding table records for one TraceRay.
// The hit group of a primitive is
//
//	instance.SBTRecordOffset + SBTRecordOffset + geometryIndex*SBTRecordStride
type TraceOptions struct {
	SBTRecordOffset uint32
	SBTRecordStride uint32
	MissIndex       int
}

// DefaultTraceOptions gives every geometry of an instance its own hit group
// and uses miss shader 0
func DefaultTraceOptions() TraceOptions {
	return TraceOptions{SBTRecordStride: 1}
}
