package accel

import (
	"fmt"

	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/df07/go-rtpipeline/pkg/geometry"
	"github.com/df07/go-rtpipeline/pkg/log"
)

var logger = log.New("accel")

// primitiveRef locates a primitive inside a BLAS
type primitiveRef struct {
	geometry  int32
	primitive int32
}

// BLAS is a bottom-level acceleration structure: an ordered list of
// geometries in object space. The geometry index of each entry is its
// position in that list.
type BLAS struct {
	geometries []geometry.Geometry
	prims      []primitiveRef
	bvh        *BVH
}

// NewBLAS validates the geometries and builds a BVH over all their primitives
func NewBLAS(geometries ...geometry.Geometry) (*BLAS, error) {
	blas := &BLAS{geometries: geometries}

	var boxes []core.AABB
	for g, geom := range geometries {
		if geom == nil {
			return nil, fmt.Errorf("%w: geometry %d", ErrNilGeometry, g)
		}
		if err := geom.Validate(); err != nil {
			return nil, fmt.Errorf("accel: geometry %d: %w", g, err)
		}
		for p := 0; p < geom.PrimitiveCount(); p++ {
			blas.prims = append(blas.prims, primitiveRef{geometry: int32(g), primitive: int32(p)})
			boxes = append(boxes, geom.PrimitiveBounds(p))
		}
	}

	blas.bvh = NewBVH(boxes)
	logger.Debugf("built blas: %d geometries, %d primitives", len(geometries), len(blas.prims))
	return blas, nil
}

// GeometryCount returns the number of geometries
func (b *BLAS) GeometryCount() int {
	return len(b.geometries)
}

// Geometry returns geometry i
func (b *BLAS) Geometry(i int) geometry.Geometry {
	return b.geometries[i]
}

// PrimitiveCount returns the number of primitives across all geometries
func (b *BLAS) PrimitiveCount() int {
	return len(b.prims)
}

// Bounds returns the object-space bounds of all primitives
func (b *BLAS) Bounds() core.AABB {
	return b.bvh.Bounds()
}

// Stats returns statistics about the BLAS BVH
func (b *BLAS) Stats() BVHStats {
	return b.bvh.Stats()
}
