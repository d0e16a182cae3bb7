package pipeline

import (
	"github.com/df07/go-rtpipeline/pkg/accel"
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/geometry"
	"github.com/df07/go-rtpipeline/pkg/log"
)

var logger = log.New("pipeline")

// Pipeline dispatches shaders for rays traced against an acceleration
// structure. P is the payload type threaded through every shader stage.
// A Pipeline is immutable and may be shared by any number of goroutines;
// each TraceRay call owns its payload exclusively.
type Pipeline[P any] struct {
	hitGroups []HitGroup[P]
	miss      []MissShader[P]
}

// NewPipeline creates a pipeline bound to a copy of the shader binding table
func NewPipeline[P any](sbt ShaderBindingTable[P]) *Pipeline[P] {
	p := &Pipeline[P]{
		hitGroups: append([]HitGroup[P](nil), sbt.HitGroups...),
		miss:      append([]MissShader[P](nil), sbt.Miss...),
	}
	logger.Debugf("created pipeline: %d hit groups, %d miss shaders", len(p.hitGroups), len(p.miss))
	return p
}

// hitGroup returns the hit group bound to a primitive, or nil if the index
// falls outside the table
func (p *Pipeline[P]) hitGroup(prim *primitive, opts TraceOptions) *HitGroup[P] {
	index := int(prim.Instance.SBTRecordOffset) + int(opts.SBTRecordOffset) + prim.GeometryIndex*int(opts.SBTRecordStride)
	if index < 0 || index >= len(p.hitGroups) {
		return nil
	}
	return &p.hitGroups[index]
}

func (p *Pipeline[P]) missShader(index int) MissShader[P] {
	if index < 0 || index >= len(p.miss) {
		return nil
	}
	return p.miss[index]
}

// TraceRay traces ray through tlas with the default options, then invokes
// the closest-hit shader of the committed hit or the miss shader. The
// payload is the only result channel.
func (p *Pipeline[P]) TraceRay(tlas *accel.TLAS, ray core.RayDesc, payload *P) error {
	return p.TraceRayWithOptions(tlas, ray, DefaultTraceOptions(), payload)
}

// TraceRayWithOptions is TraceRay with explicit shader binding table selection
func (p *Pipeline[P]) TraceRayWithOptions(tlas *accel.TLAS, ray core.RayDesc, opts TraceOptions, payload *P) error {
	d, err := p.traverse(tlas, ray, opts, payload)
	if err != nil {
		return err
	}

	if d.committed.Hit() {
		if ray.Flags.Has(core.RayFlagSkipClosestHitShader) {
			return nil
		}
		if group := d.committedGroup; group != nil && group.ClosestHit != nil {
			group.ClosestHit(payload, HitInfo{Ray: ray, Intersection: d.committed})
		}
		return nil
	}

	if miss := p.missShader(opts.MissIndex); miss != nil {
		miss(payload, ray)
	}
	return nil
}

// Traverse runs intersection and any-hit shaders to completion and returns
// the committed intersection without invoking closest-hit or miss shaders.
func (p *Pipeline[P]) Traverse(tlas *accel.TLAS, ray core.RayDesc, opts TraceOptions, payload *P) (core.Intersection, error) {
	d, err := p.traverse(tlas, ray, opts, payload)
	if err != nil {
		return core.Intersection{}, err
	}
	return d.committed, nil
}

func (p *Pipeline[P]) traverse(tlas *accel.TLAS, ray core.RayDesc, opts TraceOptions, payload *P) (*dispatch[P], error) {
	if err := ray.Validate(); err != nil {
		return nil, err
	}
	if tlas == nil {
		return nil, ErrNilTLAS
	}
	if payload == nil {
		return nil, ErrNilPayload
	}

	d := &dispatch[P]{pipeline: p, opts: opts, payload: payload}
	d.begin(tlas, ray)
	d.run()
	return d, nil
}

// dispatch is one TraceRay: a traversal whose candidates are decided by the
// bound hit group shaders
type dispatch[P any] struct {
	traversal
	pipeline *Pipeline[P]
	opts     TraceOptions
	payload  *P

	committedGroup *HitGroup[P]
	current        *HitGroup[P]
}

func (d *dispatch[P]) run() {
	for {
		prim, ok := d.nextPrimitive()
		if !ok {
			return
		}
		d.current = d.pipeline.hitGroup(&prim, d.opts)

		switch prim.Geometry.Kind() {
		case geometry.KindTriangles:
			if c, ok := d.triangleCandidate(&prim); ok {
				d.report(c, prim.opaque)
			}
		case geometry.KindAABBs:
			if d.current == nil || d.current.Intersection == nil {
				continue
			}
			if _, ok := d.boxEntry(&prim); !ok {
				continue
			}
			d.current.Intersection(&IntersectionQuery{reporter: d, session: &d.session, prim: &prim})
		}
	}
}

func (d *dispatch[P]) reportIntersection(prim *primitive, t float32, kind core.IntersectionKind, hitKind uint32) bool {
	return d.report(newIntersection(prim, kind, t, hitKind), prim.opaque)
}

// report is the intersection protocol: range check, any-hit decision, commit
func (d *dispatch[P]) report(c core.Intersection, opaque bool) bool {
	if !d.accepts(c.T) {
		return false
	}

	terminate := false
	if !opaque && d.current != nil && d.current.AnyHit != nil {
		switch d.current.AnyHit(d.payload, HitInfo{Ray: d.ray, Intersection: c}) {
		case AnyHitIgnore:
			return false
		case AnyHitAcceptAndTerminate:
			terminate = true
		}
	}

	d.commit(c, terminate)
	d.committedGroup = d.current
	return true
}
