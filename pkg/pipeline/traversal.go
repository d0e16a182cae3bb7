package pipeline

import (
	"github.com/df07/go-rtpipeline/pkg/accel"
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/geometry"
)

// primitive is a walker candidate that passed the ray flag gates
type primitive struct {
	accel.Candidate
	opaque bool
}

// traversal drives an accel.Walker under one session. Both TraceRay and
// RayQuery are built on it; they differ only in who decides about candidates.
type traversal struct {
	session
	walker accel.Walker
}

func (tr *traversal) begin(tlas *accel.TLAS, ray core.RayDesc) {
	tr.session.begin(ray)
	tr.walker.Reset(tlas, ray.Origin, ray.Direction, ray.CullMask)
}

// nextPrimitive returns the next primitive that the ray flags allow to be
// tested. It returns false once traversal is terminated or exhausted.
func (tr *traversal) nextPrimitive() (primitive, bool) {
	flags := tr.ray.Flags
	for !tr.terminated {
		c, ok := tr.walker.Next(tr.ray.TMin, tr.upperBound())
		if !ok {
			return primitive{}, false
		}

		switch c.Geometry.Kind() {
		case geometry.KindTriangles:
			if flags.Has(core.RayFlagSkipTriangles) {
				continue
			}
		case geometry.KindAABBs:
			if flags.Has(core.RayFlagSkipProcedural) {
				continue
			}
		}

		opaque := resolveOpacity(flags, c.Instance.Flags, c.Geometry.GeometryFlags())
		if opaque && flags.Has(core.RayFlagCullOpaque) {
			continue
		}
		if !opaque && flags.Has(core.RayFlagCullNoOpaque) {
			continue
		}
		return primitive{Candidate: c, opaque: opaque}, true
	}
	return primitive{}, false
}

// resolveOpacity applies geometry, then instance, then ray overrides
func resolveOpacity(rayFlags core.RayFlags, instFlags accel.InstanceFlags, geomFlags geometry.Flags) bool {
	opaque := geomFlags&geometry.Opaque != 0
	if instFlags&accel.InstanceForceOpaque != 0 {
		opaque = true
	} else if instFlags&accel.InstanceForceNoOpaque != 0 {
		opaque = false
	}
	if rayFlags.Has(core.RayFlagOpaque) {
		opaque = true
	} else if rayFlags.Has(core.RayFlagNoOpaque) {
		opaque = false
	}
	return opaque
}

// intersection fills the instance and geometry context of a candidate
func newIntersection(p *primitive, kind core.IntersectionKind, t float32, hitKind uint32) core.Intersection {
	return core.Intersection{
		Kind:                kind,
		T:                   t,
		HitKind:             hitKind,
		InstanceID:          p.InstanceID,
		InstanceCustomIndex: p.Instance.CustomIndex,
		SBTRecordOffset:     p.Instance.SBTRecordOffset,
		GeometryIndex:       p.GeometryIndex,
		PrimitiveIndex:      p.PrimitiveIndex,
		ObjectToWorld:       p.ObjectToWorld,
		WorldToObject:       p.WorldToObject,
	}
}

// triangleCandidate runs the built-in triangle test and facing culling.
// It returns false when the triangle is missed, culled or out of range.
func (tr *traversal) triangleCandidate(p *primitive) (core.Intersection, bool) {
	tris, ok := p.Geometry.(geometry.Triangles)
	if !ok {
		return core.Intersection{}, false
	}
	v0, v1, v2 := tris.Triangle(p.PrimitiveIndex)
	hit, ok := geometry.IntersectTriangle(p.ObjectOrigin, p.ObjectDirection, v0, v1, v2)
	if !ok {
		return core.Intersection{}, false
	}

	// Clockwise is front facing unless the instance says otherwise
	frontCCW := p.Instance.Flags&accel.InstanceTriangleFrontCounterClockwise != 0
	front := hit.CounterClockwise() == frontCCW
	if p.Instance.Flags&accel.InstanceTriangleFacingCullDisable == 0 {
		if front && tr.ray.Flags.Has(core.RayFlagCullFrontFacing) {
			return core.Intersection{}, false
		}
		if !front && tr.ray.Flags.Has(core.RayFlagCullBackFacing) {
			return core.Intersection{}, false
		}
	}
	if !tr.accepts(hit.T) {
		return core.Intersection{}, false
	}

	hitKind := core.HitKindBackFace
	if front {
		hitKind = core.HitKindFrontFace
	}
	c := newIntersection(p, core.KindTriangle, hit.T, hitKind)
	c.Barycentrics = hit.Barycentrics()
	c.FrontFace = front
	return c, true
}

// boxEntry tests the primitive's own box against the current interval and
// returns the entry distance
func (tr *traversal) boxEntry(p *primitive) (float32, bool) {
	box := p.Geometry.PrimitiveBounds(p.PrimitiveIndex)
	tNear, _, ok := box.Intersect(p.ObjectOrigin, p.ObjectDirection, tr.ray.TMin, tr.upperBound())
	return tNear, ok
}
