package partition

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BoundingSphere computes an approximate minimal bounding sphere using
// Ritter's algorithm (spec.md §4.2 permits Ritter or Welzl), a tighter
// fit than original_source/.../builder.rs::push_cluster's simpler
// centroid-plus-max-distance sphere.
func BoundingSphere(points []mgl32.Vec3) (center mgl32.Vec3, radius float32) {
	if len(points) == 0 {
		return mgl32.Vec3{}, 0
	}

	// Pass 1: pick an arbitrary start point, find the point farthest
	// from it, then the point farthest from that — an approximate
	// diameter.
	p0 := points[0]
	p1 := farthest(points, p0)
	p2 := farthest(points, p1)

	center = p1.Add(p2).Mul(0.5)
	radius = p1.Sub(center).Len()

	// Pass 2: grow the sphere to cover every remaining point.
	for _, p := range points {
		d := p.Sub(center).Len()
		if d > radius {
			newRadius := (radius + d) / 2
			k := (newRadius - radius) / d
			center = center.Add(p.Sub(center).Mul(k))
			radius = newRadius
		}
	}
	return center, radius
}

func farthest(points []mgl32.Vec3, from mgl32.Vec3) mgl32.Vec3 {
	best := points[0]
	bestDist := float32(-1)
	for _, p := range points {
		d := p.Sub(from).Len()
		if d > bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}
