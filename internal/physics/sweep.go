package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/geom"
)

const (
	sweepMaxIterations = 64
	sweepTolerance     = 1e-4
)

type sweepResult struct {
	t       float64
	normal  mgl64.Vec3
	point   mgl64.Vec3
	initial bool
}

// sweepProxies moves a along dir by conservative advancement until it comes
// within tolerance of b.
func sweepProxies(a *proxy, dir mgl64.Vec3, maxDist float64, b *proxy) (sweepResult, bool) {
	t := 0.0
	var normal mgl64.Vec3
	for i := 0; i < sweepMaxIterations; i++ {
		r := gjkDistance(a, b, dir.Mul(t))
		if r.overlap || r.distance <= gjkTolerance {
			if t == 0 {
				return sweepResult{initial: true}, true
			}
			return sweepResult{t: t, normal: normal, point: r.pointB}, true
		}

		sep := r.distance - a.margin - b.margin
		if sep <= 0 && t == 0 {
			return sweepResult{initial: true}, true
		}
		normal = r.pointA.Sub(r.pointB).Mul(1 / r.distance)
		if sep <= sweepTolerance {
			return sweepResult{t: t, normal: normal, point: r.pointB.Add(normal.Mul(b.margin))}, true
		}

		closing := -dir.Dot(normal)
		if closing <= gjkTolerance {
			return sweepResult{}, false
		}
		t += sep / closing
		if t > maxDist {
			return sweepResult{}, false
		}
	}
	r := gjkDistance(a, b, dir.Mul(t))
	return sweepResult{t: t, normal: normal, point: r.pointB}, true
}

// sweepGeometry sweeps a convex query geometry against one target shape.
func sweepGeometry(qGeom geom.Geometry, qPose geom.Transform, dir rl.Vector3, maxDist float32, target geom.Geometry, tPose geom.Transform, flags HitFlags, emit func(SweepHit) bool) {
	qp, ok := newProxy(qGeom, qPose)
	if !ok {
		return
	}
	d := v64(dir)

	if src, isMesh := target.(geom.TriangleSource); isMesh {
		sweepTriangles(qp, qGeom, qPose, dir, maxDist, src, tPose, flags, emit)
		return
	}

	tp, ok := newProxy(target, tPose)
	if !ok {
		return
	}
	res, hit := sweepProxies(qp, d, float64(maxDist), tp)
	if !hit {
		return
	}
	h := newSweepHit(res, qp, tp, qPose, dir, flags)
	if c, isConvex := target.(geom.ConvexMesh); isConvex && !res.initial {
		h.FaceIndex = convexFaceFromNormal(c, tPose, h.Normal)
		h.Flags |= HitFaceIndex
	}
	emit(h)
}

func sweepTriangles(qp *proxy, qGeom geom.Geometry, qPose geom.Transform, dir rl.Vector3, maxDist float32, src geom.TriangleSource, tPose geom.Transform, flags HitFlags, emit func(SweepHit) bool) {
	twoSided := flags&HitMeshBothSides != 0
	if m, ok := src.(geom.TriangleMesh); ok && m.DoubleSided {
		twoSided = true
	}
	multiple := flags&HitMeshMultiple != 0
	d := v64(dir)

	swept := geom.WorldBounds(qGeom, qPose).Sweep(rl.Vector3Scale(dir, maxDist))
	local := swept.Transform(tPose.Inverse())

	var nearest SweepHit
	found := false
	stopped := false
	src.QueryTriangles(local, func(i int) bool {
		tri := src.LocalTriangle(i).Transform(tPose)
		if !twoSided && rl.Vector3DotProduct(tri.Normal(), dir) > 0 {
			return true
		}
		tp := triangleProxy(tri)
		res, hit := sweepProxies(qp, d, float64(maxDist), tp)
		if !hit {
			return true
		}
		h := newSweepHit(res, qp, tp, qPose, dir, flags)
		h.FaceIndex = uint32(i)
		h.Flags |= HitFaceIndex
		if multiple {
			if !emit(h) {
				stopped = true
				return false
			}
			return true
		}
		if !found || h.Distance < nearest.Distance {
			nearest = h
			found = true
		}
		return true
	})
	if found && !multiple && !stopped {
		emit(nearest)
	}
}

func newSweepHit(res sweepResult, qp, tp *proxy, qPose geom.Transform, dir rl.Vector3, flags HitFlags) SweepHit {
	var h SweepHit
	h.Flags = HitDefault
	h.FaceIndex = InvalidFaceIndex
	if !res.initial {
		h.Distance = float32(res.t)
		h.Position = v32(res.point)
		h.Normal = geom.SafeNormal(v32(res.normal), geom.SmallNumber)
		return h
	}

	h.Flags |= HitInitialOverlap
	h.Position = qPose.P
	h.Normal = rl.Vector3Negate(dir)
	if flags&HitMTD != 0 {
		if n, depth, ok := penetrate(qp, tp); ok {
			h.Normal = v32(n)
			h.Distance = -float32(depth)
		}
	}
	return h
}

// convexFaceFromNormal picks the hull polygon whose world normal best matches n.
func convexFaceFromNormal(c geom.ConvexMesh, pose geom.Transform, n rl.Vector3) uint32 {
	if c.Mesh == nil {
		return InvalidFaceIndex
	}
	best := float32(-2)
	face := InvalidFaceIndex
	for i := range c.Mesh.Polygons {
		pn, _ := c.PolygonNormal(i)
		if dot := rl.Vector3DotProduct(pose.Rotate(pn), n); dot > best {
			best = dot
			face = uint32(i)
		}
	}
	return face
}
