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
	cubeGridSide    = 4
	cubeGridSpacing = 3
	cubeGridDepth   = -12
)

// cubeMesh returns a cube of half extent 0.5 whose faces wind
// counter-clockwise seen from outside
func cubeMesh() ([]mgl32.Vec3, []uint32) {
	vertices := []mgl32.Vec3{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // -z
		4, 5, 6, 4, 6, 7, // +z
		0, 1, 5, 0, 5, 4, // -y
		3, 7, 6, 3, 6, 2, // +y
		0, 4, 7, 0, 7, 3, // -x
		1, 2, 6, 1, 6, 5, // +x
	}
	return vertices, indices
}

// NewCubesScene creates a 4x4 grid of rotated cubes. The cube mesh is
// non-opaque and rays cull back faces, so only the outside of each cube
// is visible.
func NewCubesScene(opts Options) (*Scene, error) {
	vertices, indices := cubeMesh()
	blas, err := accel.NewBLAS(geometry.NewTriangleGeometry(vertices, indices, 0))
	if err != nil {
		return nil, err
	}

	instances := make([]accel.Instance, 0, cubeGridSide*cubeGridSide)
	for y := 0; y < cubeGridSide; y++ {
		for x := 0; x < cubeGridSide; x++ {
			i := y*cubeGridSide + x
			offset := float32(cubeGridSide-1) / 2
			translation := mgl32.Translate3D((float32(x)-offset)*cubeGridSpacing, (float32(y)-offset)*cubeGridSpacing, cubeGridDepth)
			axis := mgl32.Vec3{1, float32(i%3) + 1, float32(i % 2)}.Normalize()
			rotation := mgl32.HomogRotate3D(float32(i)*0.4+opts.Time, axis)
			scale := mgl32.Scale3D(2, 2, 2)

			inst := accel.NewInstance(blas, translation.Mul4(rotation).Mul4(scale))
			inst.Flags = accel.InstanceTriangleFrontCounterClockwise
			inst.CustomIndex = uint32(i)
			instances = append(instances, inst)
		}
	}

	tlas, err := accel.NewTLAS(instances)
	if err != nil {
		return nil, err
	}

	sbt := pipeline.ShaderBindingTable[payload]{
		HitGroups: []pipeline.HitGroup[payload]{{
			ClosestHit: func(p *payload, hit pipeline.HitInfo) {
				p.Color = barycentricColor(hit.Intersection)
			},
		}},
		Miss: []pipeline.MissShader[payload]{missShader},
	}

	const far = 100
	flags := core.RayFlagCullBackFacing
	return &Scene{
		Info:   cubesInfo,
		TLAS:   tlas,
		Camera: CameraConfig{Eye: mgl32.Vec3{0, 0, 0}, LookAt: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, 1, 0}, VFov: 60, Near: 0.01, Far: far},
		Width:  480,
		Height: 480,
		trace:  traceProgram(pipeline.NewPipeline(sbt), tlas, far, flags),
		query:  cubesQueryProgram(tlas, far, flags),
	}, nil
}

// barycentricColor maps the weights of the three triangle vertices to RGB
func barycentricColor(hit core.Intersection) mgl32.Vec3 {
	u, v := hit.Barycentrics.X(), hit.Barycentrics.Y()
	return mgl32.Vec3{1 - u - v, u, v}
}

// cubesQueryProgram drains the query without inspecting candidates: every
// surfaced triangle is committed by the next Proceed
func cubesQueryProgram(tlas *accel.TLAS, far float32, flags core.RayFlags) renderer.RayGenProgram {
	return func(launch renderer.LaunchInfo) mgl32.Vec4 {
		ray := primaryRay(launch, far, flags)

		q := pipeline.NewRayQuery()
		if err := q.Initialize(tlas, ray); err != nil {
			return errorColor
		}
		for q.Proceed() {
		}

		hit := q.CommittedIntersection()
		if !hit.Hit() {
			return sky(ray.Direction).Vec4(1)
		}
		return barycentricColor(hit).Vec4(1)
	}
}
