package pipeline

import (
	"testing"

	"github.com/df07/go-rtpipeline/pkg/accel"
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// payload records what the shaders saw
type payload struct {
	T        float32
	Instance int
	Group    int
	Hit      bool
	Missed   bool
	AnyHits  int
}

// triangleAt returns a triangle in the plane z, counter-clockwise when seen from +z
func triangleAt(z float32) []mgl32.Vec3 {
	return []mgl32.Vec3{{-1, -1, z}, {1, -1, z}, {0, 1, z}}
}

// trianglesAt concatenates one triangle per plane, in order
func trianglesAt(flags geometry.Flags, zs ...float32) *geometry.TriangleGeometry {
	var verts []mgl32.Vec3
	for _, z := range zs {
		verts = append(verts, triangleAt(z)...)
	}
	return geometry.NewTriangleGeometry(verts, nil, flags)
}

func unitBox() core.AABB {
	return core.NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
}

func mustBLAS(t *testing.T, geoms ...geometry.Geometry) *accel.BLAS {
	t.Helper()
	blas, err := accel.NewBLAS(geoms...)
	if err != nil {
		t.Fatalf("NewBLAS failed: %v", err)
	}
	return blas
}

func mustTLAS(t *testing.T, instances ...accel.Instance) *accel.TLAS {
	t.Helper()
	tlas, err := accel.NewTLAS(instances)
	if err != nil {
		t.Fatalf("NewTLAS failed: %v", err)
	}
	return tlas
}

// sphereShader intersects the sphere inscribed in the primitive's box and
// appends every reported t to reports when it is non-nil
func sphereShader(reports *[]float32) IntersectionShader {
	return func(q *IntersectionQuery) {
		box := q.Bounds()
		roots, n := geometry.SphereRoots(q.ObjectRayOrigin(), q.ObjectRayDirection(), box.Center(), box.Size().X()/2)
		for i := 0; i < n; i++ {
			if reports != nil {
				*reports = append(*reports, roots[i])
			}
			q.ReportIntersection(roots[i], core.KindProcedural, 0)
		}
	}
}

// recordingTable returns hit groups that write their index and the hit
// into the payload, and a miss shader that marks it missed
func recordingTable(groups int) ShaderBindingTable[payload] {
	sbt := ShaderBindingTable[payload]{
		Miss: []MissShader[payload]{func(p *payload, _ core.RayDesc) { p.Missed = true }},
	}
	for g := 0; g < groups; g++ {
		g := g
		sbt.HitGroups = append(sbt.HitGroups, HitGroup[payload]{
			ClosestHit: func(p *payload, hit HitInfo) {
				p.Hit = true
				p.T = hit.Intersection.T
				p.Instance = hit.Intersection.InstanceID
				p.Group = g
			},
		})
	}
	return sbt
}

func down() core.RayDesc {
	return core.NewRayDesc(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, 0, 100)
}

func approx(a, b float32) bool {
	return mgl32.FloatEqualThreshold(a, b, 1e-4)
}

func expectStateError(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		if _, ok := recover().(*StateError); !ok {
			t.Errorf("Expected %s to panic with *StateError", op)
		}
	}()
	fn()
}
