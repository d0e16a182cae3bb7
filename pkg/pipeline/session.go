package pipeline

import (
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxReportsPerInvocation bounds how many candidates one intersection shader
// invocation may report. Later reports are rejected.
const MaxReportsPerInvocation = 8

// session holds the hit-resolution state of one traversal: the ray, the
// committed intersection and whether traversal has been ended early.
type session struct {
	ray        core.RayDesc
	committed  core.Intersection
	terminated bool
}

func (s *session) begin(ray core.RayDesc) {
	s.ray = ray
	s.committed = core.Intersection{}
	s.terminated = false
}

// upperBound is t_max until a hit commits, then the committed t
func (s *session) upperBound() float32 {
	if s.committed.Hit() {
		return s.committed.T
	}
	return s.ray.TMax
}

// accepts reports whether a candidate at t may still commit: inside
// [TMin, TMax] and strictly nearer than the committed hit, so the first of
// equally distant candidates wins.
func (s *session) accepts(t float32) bool {
	if s.terminated || t != t || t < s.ray.TMin || t > s.ray.TMax {
		return false
	}
	return !s.committed.Hit() || t < s.committed.T
}

// commit makes c the committed intersection. Traversal ends when asked to or
// when the ray wants the first hit only.
func (s *session) commit(c core.Intersection, terminate bool) {
	s.committed = c
	if terminate || s.ray.Flags.Has(core.RayFlagTerminateOnFirstHit) {
		s.terminated = true
	}
}

// reporter receives procedural candidates from an IntersectionQuery
type reporter interface {
	reportIntersection(p *primitive, t float32, kind core.IntersectionKind, hitKind uint32) bool
}

// IntersectionQuery is handed to an intersection shader for one procedural
// primitive. It is only valid during that shader invocation.
type IntersectionQuery struct {
	reporter reporter
	session  *session
	prim     *primitive
	reports  int
}

// ReportIntersection offers a candidate at parametric distance t. kind must
// be core.KindProcedural or above; hitKind is passed through to the any-hit
// and closest-hit shaders. It returns true if the candidate was committed.
func (q *IntersectionQuery) ReportIntersection(t float32, kind core.IntersectionKind, hitKind uint32) bool {
	if q.reports >= MaxReportsPerInvocation {
		return false
	}
	q.reports++
	if kind < core.KindProcedural {
		return false
	}
	return q.reporter.reportIntersection(q.prim, t, kind, hitKind)
}

// ObjectRayOrigin returns the ray origin in object space
func (q *IntersectionQuery) ObjectRayOrigin() mgl32.Vec3 {
	return q.prim.ObjectOrigin
}

// ObjectRayDirection returns the ray direction in object space
func (q *IntersectionQuery) ObjectRayDirection() mgl32.Vec3 {
	return q.prim.ObjectDirection
}

// WorldRay returns the ray being traced
func (q *IntersectionQuery) WorldRay() core.RayDesc {
	return q.session.ray
}

// RayTMin returns the ray's t_min
func (q *IntersectionQuery) RayTMin() float32 {
	return q.session.ray.TMin
}

// RayTCurrent returns the current upper bound: t_max or the committed t
func (q *IntersectionQuery) RayTCurrent() float32 {
	return q.session.upperBound()
}

// Bounds returns the object-space box of the primitive
func (q *IntersectionQuery) Bounds() core.AABB {
	return q.prim.Geometry.PrimitiveBounds(q.prim.PrimitiveIndex)
}

func (q *IntersectionQuery) InstanceID() int             { return q.prim.InstanceID }
func (q *IntersectionQuery) InstanceCustomIndex() uint32 { return q.prim.Instance.CustomIndex }
func (q *IntersectionQuery) GeometryIndex() int          { return q.prim.GeometryIndex }
func (q *IntersectionQuery) PrimitiveIndex() int         { return q.prim.PrimitiveIndex }
