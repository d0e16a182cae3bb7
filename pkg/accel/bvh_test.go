package accel

import (
	"testing"

	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// unitBoxesAlongX returns n unit boxes placed side by side on the X axis
func unitBoxesAlongX(n int) []core.AABB {
	boxes := make([]core.AABB, n)
	for i := 0; i < n; i++ {
		boxes[i] = core.NewAABB(mgl32.Vec3{float32(i), 0, 0}, mgl32.Vec3{float32(i) + 1, 1, 1})
	}
	return boxes
}

// collect walks the whole BVH and returns the yielded items in order
func collect(bvh *BVH, origin, direction mgl32.Vec3, tMin, tMax float32) []int {
	var c cursor
	c.reset(bvh)
	var items []int
	for {
		item, ok := c.next(bvh, origin, direction, tMin, tMax)
		if !ok {
			return items
		}
		items = append(items, item)
	}
}

func TestBVH_LeafThresholdBoundary(t *testing.T) {
	// Exactly leafThreshold items - should create single leaf
	bvh := NewBVH(unitBoxesAlongX(leafThreshold))
	stats := bvh.Stats()
	if stats.TotalNodes != 1 {
		t.Errorf("Expected 1 node for %d items, got %d", leafThreshold, stats.TotalNodes)
	}
	if stats.LeafNodes != 1 {
		t.Errorf("Expected 1 leaf node for %d items, got %d", leafThreshold, stats.LeafNodes)
	}

	// leafThreshold + 1 items - should split
	bvh = NewBVH(unitBoxesAlongX(leafThreshold + 1))
	stats = bvh.Stats()
	if stats.TotalNodes == 1 {
		t.Errorf("Expected split for %d items, but got single node", leafThreshold+1)
	}
	if stats.LeafNodes < 2 {
		t.Errorf("Expected at least 2 leaf nodes after split, got %d", stats.LeafNodes)
	}
}

func TestBVH_EmptyAndInvalidBoxes(t *testing.T) {
	bvh := NewBVH(nil)
	if items := collect(bvh, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 0, 1000); len(items) != 0 {
		t.Errorf("Expected no items for empty BVH, got %v", items)
	}
	if bvh.Bounds().IsValid() {
		t.Error("Expected empty bounds for empty BVH")
	}

	// Invalid boxes are dropped
	boxes := []core.AABB{core.EmptyAABB(), core.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})}
	bvh = NewBVH(boxes)
	items := collect(bvh, mgl32.Vec3{-1, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, 0, 1000)
	if len(items) != 1 || items[0] != 1 {
		t.Errorf("Expected only item 1, got %v", items)
	}
}

func TestBVH_LeafKeepsInsertionOrder(t *testing.T) {
	// Identical boxes in one leaf are yielded in insertion order
	same := core.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	bvh := NewBVH([]core.AABB{same, same, same, same, same})

	items := collect(bvh, mgl32.Vec3{-1, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, 0.001, 1000)
	for i, item := range items {
		if item != i {
			t.Fatalf("Expected insertion order, got %v", items)
		}
	}
	if len(items) != 5 {
		t.Errorf("Expected 5 items, got %d", len(items))
	}
}

func TestBVH_PrunesMissedBoxes(t *testing.T) {
	bvh := NewBVH(unitBoxesAlongX(20))

	// Ray along Y through box 3 only
	items := collect(bvh, mgl32.Vec3{3.5, -5, 0.5}, mgl32.Vec3{0, 1, 0}, 0, 1000)
	found := false
	for _, item := range items {
		if item == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected item 3 among %v", items)
	}
	if len(items) >= 20 {
		t.Errorf("Expected pruning to skip most items, got %d", len(items))
	}

	// Upper bound before the first box prunes everything
	items = collect(bvh, mgl32.Vec3{-5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, 0, 1)
	if len(items) != 0 {
		t.Errorf("Expected no items within t < 1, got %v", items)
	}
}

func TestBVH_StatsCollection(t *testing.T) {
	bvh := NewBVH(unitBoxesAlongX(20))
	stats := bvh.Stats()

	if stats.TotalItems != 20 {
		t.Errorf("Expected 20 total items, got %d", stats.TotalItems)
	}
	if stats.TotalNodes < stats.LeafNodes {
		t.Error("Total nodes should be >= leaf nodes")
	}
	// For 20 items with leaf threshold 8, we should have multiple levels
	if stats.MaxDepth == 0 {
		t.Error("Expected max depth > 0 for 20 items")
	}
}
