package components

import (
	"scenequery/internal/physics"
)

// NoItem is the item index of hits that are not on an instance.
const NoItem int32 = -1

// BodyInstance links a physics actor, or the shapes of one bone on it, back to
// the collider that created it. It is stored in Actor.UserData and
// Shape.UserData.
type BodyInstance struct {
	Owner     *PrimitiveCollider
	Actor     *physics.Actor
	BoneName  string
	ItemIndex int32
}

// CustomPayload is attached to geometry that has no body of its own, such as
// instances registered with a scene-query accelerator.
type CustomPayload interface {
	physics.FilterDataSource
	OwningComponent() *PrimitiveCollider
	ItemIndex() int32
	HitBoneName() string
}

// ItemPayload is the CustomPayload used for collider instances.
type ItemPayload struct {
	Owner  *PrimitiveCollider
	Item   int32
	Bone   string
	Filter physics.FilterData
}

func (p *ItemPayload) OwningComponent() *PrimitiveCollider { return p.Owner }
func (p *ItemPayload) ItemIndex() int32 { return p.Item }
func (p *ItemPayload) HitBoneName() string { return p.Bone }
func (p *ItemPayload) QueryFilterData() physics.FilterData { return p.Filter }

var _ CustomPayload = (*ItemPayload)(nil)
