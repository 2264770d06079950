package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	gjkMaxIterations = 64
	gjkTolerance     = 1e-9
)

type simplexVertex struct {
	a, b mgl64.Vec3 // support points on each shape
	w    mgl64.Vec3 // a - b
}

type simplex struct {
	v    [4]simplexVertex
	bary [4]float64
	n    int
}

// gjkResult describes the closest core points of two proxies. Margins are not
// included; callers subtract them from distance.
type gjkResult struct {
	distance float64
	pointA   mgl64.Vec3
	pointB   mgl64.Vec3
	overlap  bool
}

// gjkDistance computes the distance between the cores of a (translated by
// offsetA) and b.
func gjkDistance(a, b *proxy, offsetA mgl64.Vec3) gjkResult {
	supportVertex := func(d mgl64.Vec3) simplexVertex {
		pa := a.support(d).Add(offsetA)
		pb := b.support(d.Mul(-1))
		return simplexVertex{a: pa, b: pb, w: pa.Sub(pb)}
	}

	var s simplex
	initial := b.center.Sub(a.center.Add(offsetA))
	if initial.Dot(initial) < gjkTolerance {
		initial = mgl64.Vec3{1, 0, 0}
	}
	s.v[0] = supportVertex(initial)
	s.bary[0] = 1
	s.n = 1
	v := s.v[0].w

	for i := 0; i < gjkMaxIterations; i++ {
		vv := v.Dot(v)
		if vv < gjkTolerance*gjkTolerance {
			return gjkResult{overlap: true}
		}
		sv := supportVertex(v.Mul(-1))
		if s.contains(sv.w) {
			break
		}
		// Converged when the new support point cannot get closer.
		if vv-v.Dot(sv.w) <= 1e-10*vv {
			break
		}

		prev := s
		s.v[s.n] = sv
		s.n++
		closest, inside := s.solve()
		if inside {
			return gjkResult{overlap: true}
		}
		if closest.Dot(closest) >= vv {
			s = prev
			break
		}
		v = closest
	}

	pa, pb := s.witness()
	return gjkResult{distance: math.Sqrt(v.Dot(v)), pointA: pa, pointB: pb}
}

func (s *simplex) contains(w mgl64.Vec3) bool {
	for i := 0; i < s.n; i++ {
		if s.v[i].w.Sub(w).Len() < gjkTolerance {
			return true
		}
	}
	return false
}

func (s *simplex) closest() mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < s.n; i++ {
		p = p.Add(s.v[i].w.Mul(s.bary[i]))
	}
	return p
}

func (s *simplex) witness() (mgl64.Vec3, mgl64.Vec3) {
	var pa, pb mgl64.Vec3
	for i := 0; i < s.n; i++ {
		pa = pa.Add(s.v[i].a.Mul(s.bary[i]))
		pb = pb.Add(s.v[i].b.Mul(s.bary[i]))
	}
	return pa, pb
}

// solve finds the point of the simplex closest to the origin and drops the
// vertices that do not support it. inside is set when a tetrahedron contains
// the origin.
func (s *simplex) solve() (closest mgl64.Vec3, inside bool) {
	switch s.n {
	case 1:
		s.bary[0] = 1
	case 2:
		w := segmentBary(s.v[0].w, s.v[1].w)
		s.bary[0], s.bary[1] = w[0], w[1]
	case 3:
		w := triangleBary(s.v[0].w, s.v[1].w, s.v[2].w)
		s.bary[0], s.bary[1], s.bary[2] = w[0], w[1], w[2]
	case 4:
		if s.solveTetrahedron() {
			return mgl64.Vec3{}, true
		}
	}
	s.compact()
	return s.closest(), false
}

var tetraFaces = [4][4]int{
	{0, 1, 2, 3},
	{0, 1, 3, 2},
	{0, 2, 3, 1},
	{1, 2, 3, 0},
}

func (s *simplex) solveTetrahedron() bool {
	best := math.Inf(1)
	var bestBary [4]float64
	outside := false

	for _, f := range tetraFaces {
		a, b, c, d := s.v[f[0]].w, s.v[f[1]].w, s.v[f[2]].w, s.v[f[3]].w
		n := b.Sub(a).Cross(c.Sub(a))
		originSide := n.Dot(a.Mul(-1))
		otherSide := n.Dot(d.Sub(a))
		if originSide*otherSide > 0 && math.Abs(otherSide) > gjkTolerance {
			continue
		}
		outside = true
		w := triangleBary(a, b, c)
		p := a.Mul(w[0]).Add(b.Mul(w[1])).Add(c.Mul(w[2]))
		if dist := p.Dot(p); dist < best {
			best = dist
			bestBary = [4]float64{}
			bestBary[f[0]], bestBary[f[1]], bestBary[f[2]] = w[0], w[1], w[2]
		}
	}
	if !outside {
		return true
	}
	s.bary = bestBary
	return false
}

// compact drops vertices with zero weight, keeping order.
func (s *simplex) compact() {
	n := 0
	for i := 0; i < s.n; i++ {
		if s.bary[i] > 0 {
			s.v[n] = s.v[i]
			s.bary[n] = s.bary[i]
			n++
		}
	}
	if n == 0 {
		s.bary[0] = 1
		n = 1
	}
	s.n = n
}

func segmentBary(a, b mgl64.Vec3) [2]float64 {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom < gjkTolerance*gjkTolerance {
		return [2]float64{1, 0}
	}
	t := -a.Dot(ab) / denom
	switch {
	case t <= 0:
		return [2]float64{1, 0}
	case t >= 1:
		return [2]float64{0, 1}
	}
	return [2]float64{1 - t, t}
}

// triangleBary returns the barycentric weights of the point of triangle abc
// closest to the origin, using the Voronoi region walk.
func triangleBary(a, b, c mgl64.Vec3) [3]float64 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := a.Mul(-1)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return [3]float64{1, 0, 0}
	}

	bp := b.Mul(-1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return [3]float64{0, 1, 0}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return [3]float64{1 - v, v, 0}
	}

	cp := c.Mul(-1)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return [3]float64{0, 0, 1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return [3]float64{1 - w, 0, w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return [3]float64{0, 1 - w, w}
	}

	sum := va + vb + vc
	if math.Abs(sum) < gjkTolerance*gjkTolerance {
		return degenerateTriangleBary(a, b, c)
	}
	denom := 1 / sum
	v := vb * denom
	w := vc * denom
	return [3]float64{1 - v - w, v, w}
}

// degenerateTriangleBary handles collinear triangles by picking the best edge.
func degenerateTriangleBary(a, b, c mgl64.Vec3) [3]float64 {
	best := math.Inf(1)
	var out [3]float64
	pts := [3]mgl64.Vec3{a, b, c}
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		w := segmentBary(pts[i], pts[j])
		p := pts[i].Mul(w[0]).Add(pts[j].Mul(w[1]))
		if d := p.Dot(p); d < best {
			best = d
			out = [3]float64{}
			out[i], out[j] = w[0], w[1]
		}
	}
	return out
}
