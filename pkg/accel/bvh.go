package accel

import (
	"sort"

	"github.com/df07/go-rtpipeline/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Leaf threshold: if we have this many or fewer items, store them in a leaf node
const leafThreshold = 8

// bvhNode is a flattened BVH node. Leaves have left == -1 and reference
// items[start : start+count].
type bvhNode struct {
	box         core.AABB
	left, right int32
	start       int32
	count       int32
}

func (n *bvhNode) isLeaf() bool {
	return n.left < 0
}

// BVH is a bounding volume hierarchy over item indices. It only prunes;
// callers run the exact intersection tests on the items it yields.
type BVH struct {
	nodes []bvhNode
	items []int32
}

// NewBVH builds a BVH over the given boxes. Item i refers to boxes[i].
// Invalid (empty) boxes are left out since no ray can reach them.
func NewBVH(boxes []core.AABB) *BVH {
	items := make([]int32, 0, len(boxes))
	for i, box := range boxes {
		if box.IsValid() {
			items = append(items, int32(i))
		}
	}

	bvh := &BVH{items: items}
	if len(items) > 0 {
		bvh.build(boxes, 0, int32(len(items)))
	}
	return bvh
}

// build recursively builds the subtree for items[start:end] and returns its node index
func (bvh *BVH) build(boxes []core.AABB, start, end int32) int32 {
	items := bvh.items[start:end]
	box := core.EmptyAABB()
	for _, item := range items {
		box = box.Union(boxes[item])
	}

	index := int32(len(bvh.nodes))
	bvh.nodes = append(bvh.nodes, bvhNode{box: box, left: -1, right: -1, start: start, count: end - start})

	// Few items: keep them in insertion order in a single leaf
	if len(items) <= leafThreshold {
		return index
	}

	// Simple median split along the longest axis
	axis := box.LongestAxis()
	sort.SliceStable(items, func(i, j int) bool {
		return boxes[items[i]].Center()[axis] < boxes[items[j]].Center()[axis]
	})

	mid := start + (end-start)/2
	left := bvh.build(boxes, start, mid)
	right := bvh.build(boxes, mid, end)
	bvh.nodes[index].left = left
	bvh.nodes[index].right = right
	return index
}

// Bounds returns the box enclosing every item, or an empty box
func (bvh *BVH) Bounds() core.AABB {
	if len(bvh.nodes) == 0 {
		return core.EmptyAABB()
	}
	return bvh.nodes[0].box
}

// cursor walks a BVH one item at a time so traversal can be suspended
// between candidates.
type cursor struct {
	stack   []int32
	pending []int32
}

func (c *cursor) reset(bvh *BVH) {
	c.stack = c.stack[:0]
	c.pending = nil
	if len(bvh.nodes) > 0 {
		c.stack = append(c.stack, 0)
	}
}

// next returns the next item whose enclosing boxes are hit within [tMin, tMax].
// Children are visited left before right.
func (c *cursor) next(bvh *BVH, origin, direction mgl32.Vec3, tMin, tMax float32) (int, bool) {
	for {
		if len(c.pending) > 0 {
			item := c.pending[0]
			c.pending = c.pending[1:]
			return int(item), true
		}
		if len(c.stack) == 0 {
			return 0, false
		}

		node := &bvh.nodes[c.stack[len(c.stack)-1]]
		c.stack = c.stack[:len(c.stack)-1]
		if !node.box.Hit(origin, direction, tMin, tMax) {
			continue
		}
		if node.isLeaf() {
			c.pending = bvh.items[node.start : node.start+node.count]
			continue
		}
		c.stack = append(c.stack, node.right, node.left)
	}
}

// BVHStats contains statistics about the BVH structure
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	AvgDepth   float64
	TotalItems int
}

// Stats returns statistics about the BVH structure
func (bvh *BVH) Stats() BVHStats {
	stats := BVHStats{}
	if len(bvh.nodes) == 0 {
		return stats
	}

	bvh.collectStats(0, 0, &stats)
	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(index int32, depth int, stats *BVHStats) {
	node := &bvh.nodes[index]
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.isLeaf() {
		stats.LeafNodes++
		stats.TotalItems += int(node.count)
		stats.AvgDepth += float64(depth) // Accumulate depth for average calculation
		return
	}
	bvh.collectStats(node.left, depth+1, stats)
	bvh.collectStats(node.right, depth+1, stats)
}
