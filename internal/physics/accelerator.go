package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/geom"
)

type RaycastQuery struct {
	Origin rl.Vector3
	// Dir must be unit length.
	Dir         rl.Vector3
	MaxDistance float32
	HitFlags    HitFlags
}

type SweepQuery struct {
	Geometry    geom.Geometry
	Pose        geom.Transform
	Dir         rl.Vector3
	MaxDistance float32
	HitFlags    HitFlags
}

type OverlapQuery struct {
	Geometry geom.Geometry
	Pose     geom.Transform
}

// SpatialAccelerator runs scene queries over its own entries, feeding every
// candidate through the filter pipeline into the shared hit buffer. Each
// method returns true when traversal was cut short by an any-hit query.
type SpatialAccelerator interface {
	Raycast(q RaycastQuery, buf *HitBuffer[RaycastHit], f QueryFilter) bool
	Sweep(q SweepQuery, buf *HitBuffer[SweepHit], f QueryFilter) bool
	Overlap(q OverlapQuery, buf *HitBuffer[OverlapHit], f QueryFilter) bool
}

func queryDistance(maxDistance, cutoff float32) float32 {
	return min(maxDistance, cutoff)
}

// nativeAccelerator queries the scene's shape grid.
type nativeAccelerator struct {
	scene *Scene
}

func (n nativeAccelerator) Raycast(q RaycastQuery, buf *HitBuffer[RaycastHit], f QueryFilter) bool {
	end := rl.Vector3Add(q.Origin, rl.Vector3Scale(q.Dir, queryDistance(q.MaxDistance, buf.Distance())))
	bounds := geom.AABB{Min: rl.Vector3Min(q.Origin, end), Max: rl.Vector3Max(q.Origin, end)}

	stop := false
	n.scene.grid.query(bounds, func(s *Shape) bool {
		if !f.wantsActor(s.actor) {
			return true
		}
		t := Target{Shape: s, Actor: s.actor}
		kind := f.Classify(t)
		if kind == HitNone {
			return true
		}
		maxDist := queryDistance(q.MaxDistance, buf.Distance())
		raycastGeometry(s.geometry, s.WorldPose(), q.Origin, q.Dir, maxDist, q.HitFlags, func(h RaycastHit) bool {
			h.Target = t
			if Report(buf, f, t, h, kind) {
				stop = true
			}
			return !stop
		})
		return !stop
	})
	return stop
}

func (n nativeAccelerator) Sweep(q SweepQuery, buf *HitBuffer[SweepHit], f QueryFilter) bool {
	start := geom.WorldBounds(q.Geometry, q.Pose)
	bounds := start.Sweep(rl.Vector3Scale(q.Dir, queryDistance(q.MaxDistance, buf.Distance())))

	stop := false
	n.scene.grid.query(bounds, func(s *Shape) bool {
		if !f.wantsActor(s.actor) {
			return true
		}
		t := Target{Shape: s, Actor: s.actor}
		kind := f.Classify(t)
		if kind == HitNone {
			return true
		}
		maxDist := queryDistance(q.MaxDistance, buf.Distance())
		sweepGeometry(q.Geometry, q.Pose, q.Dir, maxDist, s.geometry, s.WorldPose(), q.HitFlags, func(h SweepHit) bool {
			h.Target = t
			if Report(buf, f, t, h, kind) {
				stop = true
			}
			return !stop
		})
		return !stop
	})
	return stop
}

func (n nativeAccelerator) Overlap(q OverlapQuery, buf *HitBuffer[OverlapHit], f QueryFilter) bool {
	bounds := geom.WorldBounds(q.Geometry, q.Pose)

	stop := false
	n.scene.grid.query(bounds, func(s *Shape) bool {
		if !f.wantsActor(s.actor) {
			return true
		}
		if !s.WorldBounds().Intersects(bounds) {
			return true
		}
		t := Target{Shape: s, Actor: s.actor}
		kind := f.Classify(t)
		if kind == HitNone {
			return true
		}
		if !overlapGeometry(q.Geometry, q.Pose, s.geometry, s.WorldPose()) {
			return true
		}
		stop = Report(buf, f, t, OverlapHit{Target: t}, kind)
		return !stop
	})
	return stop
}
