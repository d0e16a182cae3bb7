package scene

import (
	"github.com/df07/go-rtpipeline/pkg/accel"
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/geometry"
	"github.com/df07/go-rtpipeline/pkg/pipeline"
	"github.com/df07/go-rtpipeline/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	sphereGridSide     = 8
	sphereGridSpacing  = 3
	sphereGridDepth    = -30
	sphereGridRotation = 45.9 // degrees around Y
)

// sphereBoxes are the two procedural primitives of the sphere BLAS; each
// holds the sphere inscribed in it
var sphereBoxes = []core.AABB{
	core.NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{-0.5, -0.5, -0.5}),
	core.NewAABB(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1}),
}

// sphereInBox returns the center and radius of the sphere inscribed in box
func sphereInBox(box core.AABB) (mgl32.Vec3, float32) {
	return box.Center(), box.Size().X() / 2
}

// NewProceduralSpheresScene creates an 8x8 grid of instances of a two-sphere
// procedural BLAS, plus one animated instance in front of the camera. The
// animated instance tumbles with opts.Time.
func NewProceduralSpheresScene(opts Options) (*Scene, error) {
	blas, err := accel.NewBLAS(geometry.NewAABBGeometry(sphereBoxes, geometry.Opaque))
	if err != nil {
		return nil, err
	}

	rotation := mgl32.HomogRotate3DY(mgl32.DegToRad(sphereGridRotation))
	instances := make([]accel.Instance, 0, sphereGridSide*sphereGridSide)
	for y := 0; y < sphereGridSide; y++ {
		for x := 0; x < sphereGridSide; x++ {
			translation := mgl32.Translate3D(float32(x*sphereGridSpacing), float32(y*sphereGridSpacing), sphereGridDepth)
			instances = append(instances, accel.NewInstance(blas, translation.Mul4(rotation)))
		}
	}

	// Instance 0 is pulled close to the camera and animated
	t := opts.Time
	tumble := mgl32.AnglesToQuat(t*0.342, t*0.254, t*0.832, mgl32.XYZ).Mat4()
	instances[0].Transform = mgl32.Translate3D(0, 0, -6).Mul4(tumble)

	tlas, err := accel.NewTLAS(instances)
	if err != nil {
		return nil, err
	}

	sbt := pipeline.ShaderBindingTable[payload]{
		HitGroups: []pipeline.HitGroup[payload]{{
			Intersection: sphereIntersection,
			ClosestHit: func(p *payload, hit pipeline.HitInfo) {
				p.Color = shadeSphere(hit)
			},
		}},
		Miss: []pipeline.MissShader[payload]{missShader},
	}

	const far = 1000
	return &Scene{
		Info:   proceduralSpheresInfo,
		TLAS:   tlas,
		Camera: CameraConfig{
			Eye:    mgl32.Vec3{0, 0, 2.5},
			LookAt: mgl32.Vec3{0, 0, 0},
			Up:     mgl32.Vec3{0, 1, 0},
			VFov:   59,
			Near:   0.001,
			Far:    far,
		},
		Width:  640,
		Height: 480,
		trace:  traceProgram(pipeline.NewPipeline(sbt), tlas, far, core.RayFlagNone),
		query:  sphereQueryProgram(tlas, far),
	}, nil
}

// sphereIntersection reports both roots of the sphere in the primitive's box
func sphereIntersection(q *pipeline.IntersectionQuery) {
	center, radius := sphereInBox(q.Bounds())
	roots, n := geometry.SphereRoots(q.ObjectRayOrigin(), q.ObjectRayDirection(), center, radius)
	for i := 0; i < n; i++ {
		q.ReportIntersection(roots[i], core.KindProcedural, 0)
	}
}

// shadeSphere colors a sphere hit by its world-space normal
func shadeSphere(hit pipeline.HitInfo) mgl32.Vec3 {
	center, radius := sphereInBox(sphereBoxes[hit.Intersection.PrimitiveIndex])
	n := hit.ObjectPosition().Sub(center).Mul(1 / radius)
	return normalColor(worldNormal(hit.Intersection, n))
}

// sphereQueryProgram resolves the same spheres with an inline query,
// generating both roots for every procedural candidate
func sphereQueryProgram(tlas *accel.TLAS, far float32) renderer.RayGenProgram {
	return func(launch renderer.LaunchInfo) mgl32.Vec4 {
		ray := primaryRay(launch, far, core.RayFlagNone)

		q := pipeline.NewRayQuery()
		if err := q.Initialize(tlas, ray); err != nil {
			return errorColor
		}
		for q.Proceed() {
			candidate := q.CandidateIntersection()
			if candidate.Kind == core.KindTriangle {
				continue
			}
			origin, direction := pipeline.HitInfo{Ray: ray, Intersection: candidate}.ObjectRay()
			center, radius := sphereInBox(sphereBoxes[candidate.PrimitiveIndex])
			roots, n := geometry.SphereRoots(origin, direction, center, radius)
			for i := 0; i < n; i++ {
				q.GenerateIntersection(roots[i])
			}
		}

		hit := q.CommittedIntersection()
		if !hit.Hit() {
			return sky(ray.Direction).Vec4(1)
		}
		return shadeSphere(pipeline.HitInfo{Ray: ray, Intersection: hit}).Vec4(1)
	}
}
