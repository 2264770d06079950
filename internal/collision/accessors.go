package collision

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/physics"
)

// HitRecord is the read view the converter needs from a backend hit. Ray,
// sweep and overlap hits all satisfy it; missing data reads as the zero value
// or physics.InvalidFaceIndex.
type HitRecord interface {
	physics.QueryHit
}

var (
	_ HitRecord = physics.RaycastHit{}
	_ HitRecord = physics.SweepHit{}
	_ HitRecord = physics.OverlapHit{}
)

func hadInitialOverlap[H HitRecord](h H) bool {
	return h.HasFlag(physics.HitInitialOverlap)
}

// positionOf returns the hit position, or fallback when it was not reported.
func positionOf[H HitRecord](h H, fallback rl.Vector3) rl.Vector3 {
	if h.HasFlag(physics.HitPosition) && !hadInitialOverlap(h) {
		return h.HitPosition()
	}
	return fallback
}

func normalOf[H HitRecord](h H, fallback rl.Vector3) rl.Vector3 {
	if h.HasFlag(physics.HitNormal) && !hadInitialOverlap(h) {
		return h.HitNormal()
	}
	return fallback
}

func faceIndexOf[H HitRecord](h H) uint32 {
	if !h.HasFlag(physics.HitFaceIndex) {
		return physics.InvalidFaceIndex
	}
	return h.HitFaceIndex()
}

func targetOf[H HitRecord](h H) physics.Target {
	return physics.Target{Shape: h.HitShape(), Actor: h.HitActor(), Payload: h.HitPayload()}
}
