package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/geom"
)

func v64(v rl.Vector3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

func v32(v mgl64.Vec3) rl.Vector3 {
	return rl.Vector3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
}

// proxy is a convex shape in world space described as a core point set swept
// by a margin: a sphere is one point plus its radius, a capsule a segment plus
// its radius, boxes and hulls their vertices with no margin. faces and edges
// are separating-axis candidates.
type proxy struct {
	points []mgl64.Vec3
	margin float64
	faces  []mgl64.Vec3
	edges  []mgl64.Vec3
	center mgl64.Vec3
}

func newProxy(g geom.Geometry, pose geom.Transform) (*proxy, bool) {
	switch s := g.(type) {
	case geom.Sphere:
		c := v64(pose.P)
		return &proxy{points: []mgl64.Vec3{c}, margin: float64(s.Radius), center: c}, true

	case geom.Capsule:
		a, b := s.Segment()
		pa, pb := v64(pose.Apply(a)), v64(pose.Apply(b))
		p := &proxy{points: []mgl64.Vec3{pa, pb}, margin: float64(s.Radius), center: pa.Add(pb).Mul(0.5)}
		if axis := pb.Sub(pa); axis.Len() > 1e-9 {
			p.edges = []mgl64.Vec3{axis.Normalize()}
		}
		return p, true

	case geom.Box:
		o := geom.NewOBB(pose, s.HalfExtents)
		corners := o.Corners()
		p := &proxy{points: make([]mgl64.Vec3, 0, 8), center: v64(o.Center)}
		for _, c := range corners {
			p.points = append(p.points, v64(c))
		}
		for _, axis := range o.Axes {
			p.faces = append(p.faces, v64(axis))
			p.edges = append(p.edges, v64(axis))
		}
		return p, true

	case geom.ConvexMesh:
		if s.Mesh == nil {
			return nil, false
		}
		p := &proxy{points: make([]mgl64.Vec3, 0, len(s.Mesh.Vertices)), center: v64(pose.P)}
		for _, v := range s.Mesh.Vertices {
			p.points = append(p.points, v64(pose.Apply(rl.Vector3Multiply(v, s.Scale))))
		}
		for i := range s.Mesh.Polygons {
			n, _ := s.PolygonNormal(i)
			p.faces = append(p.faces, v64(pose.Rotate(n)))
		}
		for _, e := range s.Mesh.Edges {
			scaled := geom.SafeNormal(rl.Vector3Multiply(e, s.Scale), geom.SmallNumber)
			p.edges = append(p.edges, v64(pose.Rotate(scaled)))
		}
		return p, true
	}
	return nil, false
}

func triangleProxy(tri geom.Triangle) *proxy {
	a, b, c := v64(tri.V0), v64(tri.V1), v64(tri.V2)
	p := &proxy{points: []mgl64.Vec3{a, b, c}, center: a.Add(b).Add(c).Mul(1.0 / 3.0)}
	if n := b.Sub(a).Cross(c.Sub(a)); n.Len() > 1e-12 {
		p.faces = []mgl64.Vec3{n.Normalize()}
	}
	for _, e := range []mgl64.Vec3{b.Sub(a), c.Sub(b), a.Sub(c)} {
		if e.Len() > 1e-12 {
			p.edges = append(p.edges, e.Normalize())
		}
	}
	return p
}

func pointProxy(pt rl.Vector3) *proxy {
	c := v64(pt)
	return &proxy{points: []mgl64.Vec3{c}, center: c}
}

// support returns the core point furthest along d.
func (p *proxy) support(d mgl64.Vec3) mgl64.Vec3 {
	best := math.Inf(-1)
	var out mgl64.Vec3
	for _, pt := range p.points {
		if dot := pt.Dot(d); dot > best {
			best = dot
			out = pt
		}
	}
	return out
}

// project returns the extent of the full shape, margin included, along axis.
func (p *proxy) project(axis mgl64.Vec3) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, pt := range p.points {
		d := pt.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo - p.margin, hi + p.margin
}
