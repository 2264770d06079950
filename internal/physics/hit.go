package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Target identifies what a hit touched: a scene shape and its actor, or an
// opaque payload registered with a custom accelerator.
type Target struct {
	Shape   *Shape
	Actor   *Actor
	Payload any
}

// QueryHit is the read view shared by every hit kind.
type QueryHit interface {
	HasFlag(f HitFlags) bool
	HitPosition() rl.Vector3
	HitNormal() rl.Vector3
	HitDistance() float32
	HitFaceIndex() uint32
	HitShape() *Shape
	HitActor() *Actor
	HitPayload() any
}

// LocationHit carries the fields shared by ray and sweep hits.
type LocationHit struct {
	Target
	Flags     HitFlags
	Position  rl.Vector3
	Normal    rl.Vector3
	Distance  float32
	FaceIndex uint32
}

func (h LocationHit) HasFlag(f HitFlags) bool { return h.Flags&f != 0 }
func (h LocationHit) HitPosition() rl.Vector3 { return h.Position }
func (h LocationHit) HitNormal() rl.Vector3   { return h.Normal }
func (h LocationHit) HitDistance() float32    { return h.Distance }
func (h LocationHit) HitFaceIndex() uint32    { return h.FaceIndex }
func (h LocationHit) HitShape() *Shape        { return h.Shape }
func (h LocationHit) HitActor() *Actor        { return h.Actor }
func (h LocationHit) HitPayload() any         { return h.Payload }

// HadInitialOverlap reports a query that started inside the shape.
func (h LocationHit) HadInitialOverlap() bool {
	return h.Flags&HitInitialOverlap != 0
}

type RaycastHit struct {
	LocationHit
}

type SweepHit struct {
	LocationHit
}

// OverlapHit has no location data; the accessors return their defaults.
type OverlapHit struct {
	Target
}

func (h OverlapHit) HasFlag(HitFlags) bool   { return false }
func (h OverlapHit) HitPosition() rl.Vector3 { return rl.Vector3{} }
func (h OverlapHit) HitNormal() rl.Vector3   { return rl.Vector3{} }
func (h OverlapHit) HitDistance() float32    { return 0 }
func (h OverlapHit) HitFaceIndex() uint32    { return InvalidFaceIndex }
func (h OverlapHit) HitShape() *Shape        { return h.Shape }
func (h OverlapHit) HitActor() *Actor        { return h.Actor }
func (h OverlapHit) HitPayload() any         { return h.Payload }
