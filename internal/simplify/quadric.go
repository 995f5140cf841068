package simplify

import "github.com/go-gl/mathgl/mgl32"

// quadric is the symmetric 4x4 error matrix of Garland & Heckbert's
// quadric error metric, stored as its 10 distinct entries. Cost(v) =
// v^T Q v for homogeneous v = (x,y,z,1).
type quadric struct {
	a, b, c, d float64
	e, f, g    float64
	h, i       float64
	j          float64
}

func planeQuadric(p0, p1, p2 mgl32.Vec3) quadric {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	length := n.Len()
	if length < 1e-20 {
		return quadric{}
	}
	n = n.Mul(1 / length)
	d := float64(-n.Dot(p0))
	a, bb, c := float64(n.X()), float64(n.Y()), float64(n.Z())
	return quadric{
		a: a * a, b: a * bb, c: a * c, d: a * d,
		e: bb * bb, f: bb * c, g: bb * d,
		h: c * c, i: c * d,
		j: d * d,
	}
}

func (q quadric) add(o quadric) quadric {
	return quadric{
		a: q.a + o.a, b: q.b + o.b, c: q.c + o.c, d: q.d + o.d,
		e: q.e + o.e, f: q.f + o.f, g: q.g + o.g,
		h: q.h + o.h, i: q.i + o.i,
		j: q.j + o.j,
	}
}

func (q quadric) cost(v mgl32.Vec3) float64 {
	x, y, z := float64(v.X()), float64(v.Y()), float64(v.Z())
	return q.a*x*x + q.e*y*y + q.h*z*z +
		2*(q.b*x*y+q.c*x*z+q.d*x+q.f*y*z+q.g*y+q.i*z) + q.j
}
