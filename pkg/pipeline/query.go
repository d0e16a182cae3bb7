package pipeline

import (
	"github.com/df07/go-rtpipeline/pkg/accel"
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/geometry"
)

// QueryState is the lifecycle state of a RayQuery
type QueryState int

const (
	QueryUninitialized QueryState = iota
	QueryActive
	QueryCommitted
	QueryExhausted
)

func (s QueryState) String() string {
	switch s {
	case QueryUninitialized:
		return "uninitialized"
	case QueryActive:
		return "active"
	case QueryCommitted:
		return "committed"
	case QueryExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// RayQuery is an inline, steppable traversal. No shaders run: opaque
// triangles commit automatically, while non-opaque triangles and procedural
// boxes are surfaced to the caller through Proceed.
//
// A surfaced non-opaque triangle commits on the next Proceed unless the
// caller ignores it, so a bare
//
//	for q.Proceed() {
//	}
//
// finds the nearest triangle hit. A surfaced procedural candidate commits
// only through GenerateIntersection.
//
// A RayQuery belongs to one goroutine; it may be reused after Reset.
type RayQuery struct {
	traversal
	state QueryState

	candidate      core.Intersection
	candidatePrim  primitive
	candidateValid bool
	pending        bool // surfaced triangle awaiting its default commit
}

// NewRayQuery returns an uninitialized query
func NewRayQuery() *RayQuery {
	return &RayQuery{}
}

// State returns the current lifecycle state
func (q *RayQuery) State() QueryState {
	return q.state
}

func (q *RayQuery) require(op string, states ...QueryState) {
	for _, s := range states {
		if q.state == s {
			return
		}
	}
	panic(&StateError{Op: op, State: q.state})
}

// Initialize starts a traversal of tlas along ray. An invalid ray is
// reported as an error and leaves the query uninitialized; calling
// Initialize on a query that was not Reset panics.
func (q *RayQuery) Initialize(tlas *accel.TLAS, ray core.RayDesc) error {
	q.require("Initialize", QueryUninitialized)
	if err := ray.Validate(); err != nil {
		return err
	}
	if tlas == nil {
		return ErrNilTLAS
	}

	q.begin(tlas, ray)
	q.state = QueryActive
	return nil
}

// Proceed advances traversal to the next candidate that needs a decision
// from the caller and returns true, or returns false once traversal is
// finished, moving the query to QueryCommitted or QueryExhausted.
func (q *RayQuery) Proceed() bool {
	q.require("Proceed", QueryActive)

	if q.pending {
		q.commit(q.candidate, false)
		q.pending = false
	}
	q.candidateValid = false

	for {
		prim, ok := q.nextPrimitive()
		if !ok {
			q.finish()
			return false
		}

		switch prim.Geometry.Kind() {
		case geometry.KindTriangles:
			c, ok := q.triangleCandidate(&prim)
			if !ok {
				continue
			}
			if prim.opaque {
				q.commit(c, false)
				continue
			}
			q.surface(prim, c)
			q.pending = true
			return true
		case geometry.KindAABBs:
			tNear, ok := q.boxEntry(&prim)
			if !ok {
				continue
			}
			q.surface(prim, newIntersection(&prim, core.KindProcedural, tNear, 0))
			return true
		}
	}
}

func (q *RayQuery) surface(prim primitive, c core.Intersection) {
	q.candidatePrim = prim
	q.candidate = c
	q.candidateValid = true
}

func (q *RayQuery) finish() {
	q.pending = false
	q.candidateValid = false
	if q.committed.Hit() {
		q.state = QueryCommitted
	} else {
		q.state = QueryExhausted
	}
}

func (q *RayQuery) requireCandidate(op string) {
	q.require(op, QueryActive)
	if !q.candidateValid {
		panic(&StateError{Op: op, State: q.state})
	}
}

// CandidateIntersection returns the candidate surfaced by the last Proceed.
// For procedural candidates T is the distance at which the ray enters the box.
func (q *RayQuery) CandidateIntersection() core.Intersection {
	q.requireCandidate("CandidateIntersection")
	return q.candidate
}

// GenerateIntersection commits the surfaced procedural candidate at a
// caller-computed t. It returns false if t is outside the ray interval or
// not nearer than the committed hit.
func (q *RayQuery) GenerateIntersection(t float32) bool {
	q.requireCandidate("GenerateIntersection")
	if q.candidate.Kind == core.KindTriangle {
		panic(&StateError{Op: "GenerateIntersection on triangle candidate", State: q.state})
	}
	if !q.accepts(t) {
		return false
	}
	q.commit(newIntersection(&q.candidatePrim, core.KindProcedural, t, 0), false)
	return true
}

// CommitCandidate commits the surfaced non-opaque triangle immediately
func (q *RayQuery) CommitCandidate() {
	q.requireCandidate("CommitCandidate")
	if q.candidate.Kind != core.KindTriangle {
		panic(&StateError{Op: "CommitCandidate on procedural candidate", State: q.state})
	}
	if q.pending {
		q.commit(q.candidate, false)
		q.pending = false
	}
}

// IgnoreCandidate discards the surfaced candidate
func (q *RayQuery) IgnoreCandidate() {
	q.requireCandidate("IgnoreCandidate")
	q.pending = false
}

// Terminate ends traversal; the next Proceed returns false. An unresolved
// candidate is discarded.
func (q *RayQuery) Terminate() {
	q.require("Terminate", QueryActive)
	q.pending = false
	q.terminated = true
}

// CommittedIntersection returns the committed hit, or the zero "none"
// intersection when traversal found nothing
func (q *RayQuery) CommittedIntersection() core.Intersection {
	q.require("CommittedIntersection", QueryCommitted, QueryExhausted)
	return q.committed
}

// Reset returns the query to QueryUninitialized, dropping any committed hit
func (q *RayQuery) Reset() {
	q.session.begin(core.RayDesc{})
	q.state = QueryUninitialized
	q.candidate = core.Intersection{}
	q.candidatePrim = primitive{}
	q.candidateValid = false
	q.pending = false
}
