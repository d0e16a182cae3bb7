package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrIndexCount   = errors.New("geometry: index count is not a multiple of 3")
	ErrIndexRange   = errors.New("geometry: index out of range")
	ErrInvertedAABB = errors.New("geometry: aabb min exceeds max")
)

// Flags describe how traversal treats a geometry
type Flags uint32

const (
	// Opaque geometry never invokes any-hit shaders
	Opaque Flags = 1 << iota
)

// Kind distinguishes built-in triangles from procedural boxes
type Kind int

const (
	KindTriangles Kind = iota
	KindAABBs
)

// Geometry is one entry of a bottom-level acceleration structure
type Geometry interface {
	Kind() Kind
	GeometryFlags() Flags
	PrimitiveCount() int
	// PrimitiveBounds returns the object-space bounds of primitive i
	PrimitiveBounds(i int) core.AABB
	Validate() error
}

// TriangleGeometry is an indexed or non-indexed triangle list
type TriangleGeometry struct {
	Vertices []mgl32.Vec3
	// Indices holds three entries per triangle; nil means consecutive vertex triples
	Indices []uint32
	Flags   Flags
}

// NewTriangleGeometry creates an indexed triangle geometry
func NewTriangleGeometry(vertices []mgl32.Vec3, indices []uint32, flags Flags) *TriangleGeometry {
	return &TriangleGeometry{Vertices: vertices, Indices: indices, Flags: flags}
}

func (g *TriangleGeometry) Kind() Kind           { return KindTriangles }
func (g *TriangleGeometry) GeometryFlags() Flags { return g.Flags }

// PrimitiveCount returns the number of triangles. Trailing vertices of a
// non-indexed list that do not form a full triangle are ignored.
func (g *TriangleGeometry) PrimitiveCount() int {
	if g.Indices == nil {
		return len(g.Vertices) / 3
	}
	return len(g.Indices) / 3
}

// Triangle returns the vertices of triangle i
func (g *TriangleGeometry) Triangle(i int) (v0, v1, v2 mgl32.Vec3) {
	if g.Indices == nil {
		return g.Vertices[3*i], g.Vertices[3*i+1], g.Vertices[3*i+2]
	}
	return g.Vertices[g.Indices[3*i]], g.Vertices[g.Indices[3*i+1]], g.Vertices[g.Indices[3*i+2]]
}

func (g *TriangleGeometry) PrimitiveBounds(i int) core.AABB {
	v0, v1, v2 := g.Triangle(i)
	return core.NewAABBFromPoints(v0, v1, v2)
}

func (g *TriangleGeometry) Validate() error {
	if g.Indices == nil {
		return nil
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, len(g.Indices))
	}
	for i, index := range g.Indices {
		if int(index) >= len(g.Vertices) {
			return fmt.Errorf("%w: indices[%d] = %d with %d vertices", ErrIndexRange, i, index, len(g.Vertices))
		}
	}
	return nil
}

// AABBGeometry is a list of procedural primitives, each bounded by a box.
// The shape inside each box is defined by an intersection shader.
type AABBGeometry struct {
	Boxes []core.AABB
	Flags Flags
}

// NewAABBGeometry creates a procedural geometry
func NewAABBGeometry(boxes []core.AABB, flags Flags) *AABBGeometry {
	return &AABBGeometry{Boxes: boxes, Flags: flags}
}

func (g *AABBGeometry) Kind() Kind                      { return KindAABBs }
func (g *AABBGeometry) GeometryFlags() Flags            { return g.Flags }
func (g *AABBGeometry) PrimitiveCount() int             { return len(g.Boxes) }
func (g *AABBGeometry) PrimitiveBounds(i int) core.AABB { return g.Boxes[i] }

func (g *AABBGeometry) Validate() error {
	for i, box := range g.Boxes {
		if !box.IsValid() {
			return fmt.Errorf("%w: box %d %v", ErrInvertedAABB, i, box)
		}
	}
	return nil
}

// Triangles is implemented by geometries that the built-in triangle test can intersect
type Triangles interface {
	Triangle(i int) (v0, v1, v2 mgl32.Vec3)
}
