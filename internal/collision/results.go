package collision

import (
	"weak"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/components"
	"scenequery/internal/engine"
	"scenequery/internal/physics"
)

// NoFace is HitResult.FaceIndex when no face was resolved.
const NoFace int32 = -1

// HitResult is a converted ray or sweep hit. Actor, Component and material
// are weak: the query layer never keeps scene objects alive.
type HitResult struct {
	BlockingHit      bool
	StartPenetrating bool
	// Time is the fraction of the trace at the hit, in [0, 1].
	Time             float32
	Distance         float32
	PenetrationDepth float32

	// Location is where the query shape was at the hit; ImpactPoint is on the target.
	Location     rl.Vector3
	ImpactPoint  rl.Vector3
	Normal       rl.Vector3
	ImpactNormal rl.Vector3
	TraceStart   rl.Vector3
	TraceEnd     rl.Vector3

	FaceIndex int32
	Item      int32
	BoneName  string

	Actor        weak.Pointer[engine.GameObject]
	Component    weak.Pointer[components.PrimitiveCollider]
	PhysMaterial weak.Pointer[physics.Material]
}

func newHitResult(start, end rl.Vector3) HitResult {
	return HitResult{
		TraceStart: start,
		TraceEnd:   end,
		FaceIndex:  NoFace,
		Item:       components.NoItem,
	}
}

func (h *HitResult) GetActor() *engine.GameObject { return h.Actor.Value() }

func (h *HitResult) GetComponent() *components.PrimitiveCollider { return h.Component.Value() }

func (h *HitResult) GetPhysMaterial() *physics.Material { return h.PhysMaterial.Value() }

// OverlapResult is one overlapped component item.
type OverlapResult struct {
	BlockingHit bool
	Item        int32
	Actor       weak.Pointer[engine.GameObject]
	Component   weak.Pointer[components.PrimitiveCollider]
}

func (o *OverlapResult) GetActor() *engine.GameObject { return o.Actor.Value() }

func (o *OverlapResult) GetComponent() *components.PrimitiveCollider { return o.Component.Value() }
