package accel

import (
	"fmt"

	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// placedInstance caches per-instance data derived at build time
type placedInstance struct {
	Instance
	worldToObject mgl32.Mat4
}

// TLAS is a top-level acceleration structure over instances. It keeps its
// BLASes alive and is read-only after construction, so any number of
// traversals may share it.
type TLAS struct {
	instances []placedInstance
	bvh       *BVH
}

// NewTLAS validates the instances and builds a BVH over their world bounds.
// The instance ID reported with hits is the position in instances.
func NewTLAS(instances []Instance) (*TLAS, error) {
	tlas := &TLAS{instances: make([]placedInstance, len(instances))}
	boxes := make([]core.AABB, len(instances))

	for i, inst := range instances {
		if err := inst.Validate(); err != nil {
			return nil, fmt.Errorf("accel: instance %d: %w", i, err)
		}
		tlas.instances[i] = placedInstance{Instance: inst, worldToObject: inst.Transform.Inv()}
		boxes[i] = inst.BLAS.Bounds().Transform(inst.Transform)
	}

	tlas.bvh = NewBVH(boxes)
	logger.Debugf("built tlas: %d instances", len(instances))
	return tlas, nil
}

// InstanceCount returns the number of instances
func (t *TLAS) InstanceCount() int {
	return len(t.instances)
}

// Instance returns instance i
func (t *TLAS) Instance(i int) Instance {
	return t.instances[i].Instance
}

// Bounds returns the world-space bounds of the scene
func (t *TLAS) Bounds() core.AABB {
	return t.bvh.Bounds()
}

// Stats summarizes a TLAS and the distinct BLASes it references
type Stats struct {
	Instances  int
	BLASCount  int
	Geometries int
	Primitives int
	TopLevel   BVHStats
	// BottomLevel aggregates node counts over distinct BLASes; MaxDepth is the deepest
	BottomLevel BVHStats
}

// Stats returns statistics about the TLAS and its BLASes
func (t *TLAS) Stats() Stats {
	stats := Stats{
		Instances: len(t.instances),
		TopLevel:  t.bvh.Stats(),
	}

	seen := make(map[*BLAS]bool)
	var depthSum float64
	for _, inst := range t.instances {
		if seen[inst.BLAS] {
			continue
		}
		seen[inst.BLAS] = true

		bs := inst.BLAS.Stats()
		stats.BLASCount++
		stats.Geometries += inst.BLAS.GeometryCount()
		stats.Primitives += inst.BLAS.PrimitiveCount()
		stats.BottomLevel.TotalNodes += bs.TotalNodes
		stats.BottomLevel.LeafNodes += bs.LeafNodes
		stats.BottomLevel.TotalItems += bs.TotalItems
		stats.BottomLevel.MaxDepth = max(stats.BottomLevel.MaxDepth, bs.MaxDepth)
		depthSum += bs.AvgDepth * float64(bs.LeafNodes)
	}
	if stats.BottomLevel.LeafNodes > 0 {
		stats.BottomLevel.AvgDepth = depthSum / float64(stats.BottomLevel.LeafNodes)
	}
	return stats
}
