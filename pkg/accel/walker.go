package accel

import (
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// Candidate is a primitive reached by a Walker, with the ray expressed in
// the instance's object space. Object-space t equals world-space t because
// the direction is transformed without renormalization.
type Candidate struct {
	InstanceID     int
	Instance       *Instance
	GeometryIndex  int
	PrimitiveIndex int
	Geometry       geometry.Geometry

	ObjectOrigin    mgl32.Vec3
	ObjectDirection mgl32.Vec3
	ObjectToWorld   mgl32.Mat4
	WorldToObject   mgl32.Mat4
}

// Walker enumerates the primitives of a TLAS reachable by a ray, one per
// call to Next, so traversal can be suspended between candidates. A Walker
// belongs to a single traversal and must not be shared.
type Walker struct {
	tlas      *TLAS
	origin    mgl32.Vec3
	direction mgl32.Vec3
	cullMask  uint32

	top    cursor
	bottom cursor

	inside  bool // an instance is being walked
	current Candidate
}

// Reset starts a new walk of tlas along the given world-space ray.
// Instances whose mask shares no bit with cullMask are never visited.
func (w *Walker) Reset(tlas *TLAS, origin, direction mgl32.Vec3, cullMask uint32) {
	w.tlas = tlas
	w.origin = origin
	w.direction = direction
	w.cullMask = cullMask
	w.inside = false
	w.top.reset(tlas.bvh)
}

// Next returns the next primitive whose bounds are hit within [tMin, tMax].
// Callers pass their current upper bound so pruning tightens as hits commit.
func (w *Walker) Next(tMin, tMax float32) (Candidate, bool) {
	for {
		if w.inside {
			blas := w.current.Instance.BLAS
			item, ok := w.bottom.next(blas.bvh, w.current.ObjectOrigin, w.current.ObjectDirection, tMin, tMax)
			if ok {
				ref := blas.prims[item]
				w.current.GeometryIndex = int(ref.geometry)
				w.current.PrimitiveIndex = int(ref.primitive)
				w.current.Geometry = blas.geometries[ref.geometry]
				return w.current, true
			}
			w.inside = false
		}

		index, ok := w.top.next(w.tlas.bvh, w.origin, w.direction, tMin, tMax)
		if !ok {
			return Candidate{}, false
		}

		placed := &w.tlas.instances[index]
		if uint32(placed.Mask)&w.cullMask == 0 {
			continue
		}

		w.current = Candidate{
			InstanceID:      index,
			Instance:        &placed.Instance,
			ObjectOrigin:    core.TransformPoint(placed.worldToObject, w.origin),
			ObjectDirection: core.TransformVector(placed.worldToObject, w.direction),
			ObjectToWorld:   placed.Transform,
			WorldToObject:   placed.worldToObject,
		}
		w.bottom.reset(placed.BLAS.bvh)
		w.inside = true
	}
}
