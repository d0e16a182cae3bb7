package scene

import (
	"context"
	"fmt"

	"github.com/df07/go-rtpipeline/pkg/accel"
	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/log"
	"github.com/df07/go-rtpipeline/pkg/pipeline"
	"github.com/df07/go-rtpipeline/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("scene")

// Mode selects how a scene's ray generation program resolves hits
type Mode int

const (
	// ModeTrace uses TraceRay with shader callbacks
	ModeTrace Mode = iota
	// ModeQuery uses an inline RayQuery
	ModeQuery
)

func (m Mode) String() string {
	switch m {
	case ModeTrace:
		return "trace"
	case ModeQuery:
		return "query"
	default:
		return "unknown"
	}
}

// ParseMode converts "trace" or "query" to a Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "trace":
		return ModeTrace, nil
	case "query":
		return ModeQuery, nil
	default:
		return 0, fmt.Errorf("scene: unknown mode %q (want trace or query)", s)
	}
}

// CameraConfig places the camera of a scene
type CameraConfig struct {
	Eye    mgl32.Vec3
	LookAt mgl32.Vec3
	Up     mgl32.Vec3
	VFov   float32 // Vertical field of view in degrees
	Near   float32
	Far    float32
}

// Scene is a ready-to-render client of the pipeline: an acceleration
// structure, a camera, and one ray generation program per mode
type Scene struct {
	Info   Info
	TLAS   *accel.TLAS
	Camera CameraConfig

	// Default launch size
	Width  int
	Height int

	trace renderer.RayGenProgram
	query renderer.RayGenProgram
}

// Program returns the ray generation program for a mode
func (s *Scene) Program(mode Mode) renderer.RayGenProgram {
	if mode == ModeQuery {
		return s.query
	}
	return s.trace
}

// Uniforms returns the camera uniforms for a launch of the given size
func (s *Scene) Uniforms(width, height int) (renderer.Uniforms, error) {
	c := s.Camera
	return renderer.LookAtPerspective(c.Eye, c.LookAt, c.Up, c.VFov, float32(width)/float32(height), c.Near, c.Far)
}

// Render dispatches the scene's program for mode over a width by height grid
func (s *Scene) Render(ctx context.Context, mode Mode, width, height int, config renderer.DispatchConfig) (*renderer.Frame, renderer.DispatchStats, error) {
	uniforms, err := s.Uniforms(width, height)
	if err != nil {
		return nil, renderer.DispatchStats{}, err
	}
	logger.Infof("rendering %s (%s) at %dx%d", s.Info.ID, mode, width, height)
	return renderer.NewDispatcher(config).Dispatch(ctx, s.Program(mode), uniforms, width, height)
}

// Stats returns acceleration structure statistics
func (s *Scene) Stats() accel.Stats {
	return s.TLAS.Stats()
}

// payload carries the shaded color of one primary ray
type payload struct {
	Color mgl32.Vec3
}

// primaryRay is the ray a scene traces from a launch cell
func primaryRay(launch renderer.LaunchInfo, far float32, flags core.RayFlags) core.RayDesc {
	ray := core.NewRayDesc(launch.Origin, launch.Direction, 0.001, far)
	ray.Flags = flags
	return ray
}

var (
	skyTop    = mgl32.Vec3{0.5, 0.7, 1.0} // Light blue
	skyBottom = mgl32.Vec3{1.0, 1.0, 1.0} // White
	// errorColor marks cells whose ray could not be traced
	errorColor = mgl32.Vec4{1, 0, 1, 1}
)

// sky is the miss color: a vertical gradient
func sky(direction mgl32.Vec3) mgl32.Vec3 {
	t := 0.5 * (direction.Normalize().Y() + 1.0)
	return skyBottom.Mul(1 - t).Add(skyTop.Mul(t))
}

// normalColor maps a unit normal to RGB
func normalColor(n mgl32.Vec3) mgl32.Vec3 {
	return n.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
}

// worldNormal transforms an object-space normal to world space
func worldNormal(hit core.Intersection, n mgl32.Vec3) mgl32.Vec3 {
	// Normals transform by the inverse transpose of object-to-world
	return core.TransformVector(hit.WorldToObject.Transpose(), n).Normalize()
}

// missShader writes the sky into the payload
func missShader(p *payload, ray core.RayDesc) {
	p.Color = sky(ray.Direction)
}

// traceProgram wraps a pipeline into a ray generation program
func traceProgram(p *pipeline.Pipeline[payload], tlas *accel.TLAS, far float32, flags core.RayFlags) renderer.RayGenProgram {
	return func(launch renderer.LaunchInfo) mgl32.Vec4 {
		var pl payload
		if err := p.TraceRay(tlas, primaryRay(launch, far, flags), &pl); err != nil {
			return errorColor
		}
		return pl.Color.Vec4(1)
	}
}
