package scene

import (
	"path/filepath"
	"strings"

	"github.com/df07/go-rtpipeline/pkg/accel"
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/geometry"
	"github.com/df07/go-rtpipeline/pkg/loaders"
	"github.com/df07/go-rtpipeline/pkg/pipeline"
	"github.com/df07/go-rtpipeline/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	meshDistance = 4 // Distance from the camera to the mesh center
	meshSize     = 2 // Longest extent of the mesh after scaling
)

var meshAlbedo = mgl32.Vec3{0.8, 0.8, 0.8}

// meshShading evaluates a headlight Lambert model over a loaded PLY mesh
type meshShading struct {
	data *loaders.PLYData
}

// normal returns the object-space shading normal at a hit: the interpolated
// vertex normal when the mesh has normals, the face normal otherwise
func (m meshShading) normal(hit core.Intersection) mgl32.Vec3 {
	i0, i1, i2 := m.face(hit.PrimitiveIndex)
	u, v := hit.Barycentrics.X(), hit.Barycentrics.Y()
	if len(m.data.Normals) == len(m.data.Vertices) {
		n := m.data.Normals[i0].Mul(1 - u - v).Add(m.data.Normals[i1].Mul(u)).Add(m.data.Normals[i2].Mul(v))
		if n.Len() > 0 {
			return n
		}
	}
	v0, v1, v2 := m.data.Vertices[i0], m.data.Vertices[i1], m.data.Vertices[i2]
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// albedo interpolates vertex colors, falling back to gray
func (m meshShading) albedo(hit core.Intersection) mgl32.Vec3 {
	if len(m.data.Colors) != len(m.data.Vertices) {
		return meshAlbedo
	}
	i0, i1, i2 := m.face(hit.PrimitiveIndex)
	u, v := hit.Barycentrics.X(), hit.Barycentrics.Y()
	return m.data.Colors[i0].Mul(1 - u - v).Add(m.data.Colors[i1].Mul(u)).Add(m.data.Colors[i2].Mul(v))
}

func (m meshShading) face(i int) (uint32, uint32, uint32) {
	f := m.data.Faces[3*i : 3*i+3]
	return f[0], f[1], f[2]
}

// shade lights the hit from the camera position
func (m meshShading) shade(ray core.RayDesc, hit core.Intersection) mgl32.Vec3 {
	n := worldNormal(hit, m.normal(hit))
	cosine := n.Dot(ray.Direction.Normalize())
	if cosine < 0 {
		cosine = -cosine
	}
	return m.albedo(hit).Mul(0.1 + 0.9*cosine)
}

// NewMeshScene loads the PLY file at opts.MeshPath, centers it in front of
// the camera and scales its longest extent to a fixed size
func NewMeshScene(opts Options) (*Scene, error) {
	if opts.MeshPath == "" {
		return nil, ErrMeshPathRequired
	}
	data, err := loaders.LoadPLY(opts.MeshPath)
	if err != nil {
		return nil, err
	}

	blas, err := accel.NewBLAS(data.Geometry(geometry.Opaque))
	if err != nil {
		return nil, err
	}

	lo, hi := data.Bounds()
	extent := hi.Sub(lo)
	longest := max(extent.X(), extent.Y(), extent.Z())
	scale := float32(1)
	if longest > 0 {
		scale = meshSize / longest
	}
	center := lo.Add(hi).Mul(0.5)
	transform := mgl32.Translate3D(0, 0, -meshDistance).
		Mul4(mgl32.HomogRotate3DY(opts.Time)).
		Mul4(mgl32.Scale3D(scale, scale, scale)).
		Mul4(mgl32.Translate3D(-center.X(), -center.Y(), -center.Z()))

	tlas, err := accel.NewTLAS([]accel.Instance{accel.NewInstance(blas, transform)})
	if err != nil {
		return nil, err
	}

	shading := meshShading{data: data}
	sbt := pipeline.ShaderBindingTable[payload]{
		HitGroups: []pipeline.HitGroup[payload]{{
			ClosestHit: func(p *payload, hit pipeline.HitInfo) {
				p.Color = shading.shade(hit.Ray, hit.Intersection)
			},
		}},
		Miss: []pipeline.MissShader[payload]{missShader},
	}

	info := meshInfo
	name := strings.TrimSuffix(filepath.Base(opts.MeshPath), filepath.Ext(opts.MeshPath))
	info.Name = titleCase(name)

	const far = 100
	return &Scene{
		Info:   info,
		TLAS:   tlas,
		Camera: CameraConfig{Eye: mgl32.Vec3{0, 0, 0}, LookAt: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, 1, 0}, VFov: 40, Near: 0.01, Far: far},
		Width:  400,
		Height: 400,
		trace:  traceProgram(pipeline.NewPipeline(sbt), tlas, far, core.RayFlagNone),
		query:  meshQueryProgram(tlas, far, shading),
	}, nil
}

func meshQueryProgram(tlas *accel.TLAS, far float32, shading meshShading) renderer.RayGenProgram {
	return func(launch renderer.LaunchInfo) mgl32.Vec4 {
		ray := primaryRay(launch, far, core.RayFlagNone)

		q := pipeline.NewRayQuery()
		if err := q.Initialize(tlas, ray); err != nil {
			return errorColor
		}
		// Opaque triangles commit without surfacing
		for q.Proceed() {
		}

		hit := q.CommittedIntersection()
		if !hit.Hit() {
			return sky(ray.Direction).Vec4(1)
		}
		return shading.shade(ray, hit).Vec4(1)
	}
}
