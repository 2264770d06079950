package collision

import (
	"weak"

	log "github.com/sirupsen/logrus"

	"scenequery/internal/components"
	"scenequery/internal/engine"
	"scenequery/internal/physics"
)

type hitOwner struct {
	collider *components.PrimitiveCollider
	bone     string
	item     int32
}

func (o hitOwner) gameObject() *engine.GameObject {
	if o.collider == nil {
		return nil
	}
	return o.collider.GetGameObject()
}

func ownerFromUserData(data any) (hitOwner, bool) {
	switch ud := data.(type) {
	case *components.BodyInstance:
		if ud != nil && ud.Owner != nil {
			return hitOwner{collider: ud.Owner, bone: ud.BoneName, item: ud.ItemIndex}, true
		}
	case components.CustomPayload:
		if c := ud.OwningComponent(); c != nil {
			return hitOwner{collider: c, bone: ud.HitBoneName(), item: ud.ItemIndex()}, true
		}
	}
	return hitOwner{item: components.NoItem}, false
}

// ownerOf finds the collider behind a target: the shape's user data, then the
// actor's, then an accelerator payload.
func ownerOf(t physics.Target) (hitOwner, bool) {
	if t.Shape != nil {
		if o, ok := ownerFromUserData(t.Shape.UserData); ok {
			return o, true
		}
	}
	if t.Actor != nil {
		if o, ok := ownerFromUserData(t.Actor.UserData); ok {
			return o, true
		}
	}
	if t.Payload != nil {
		return ownerFromUserData(t.Payload)
	}
	return hitOwner{item: components.NoItem}, false
}

// resolveOwner is ownerOf for conversion. A target without a recognized owner
// is a setup bug; it yields no owner.
func resolveOwner(t physics.Target, diag *Diagnostics) hitOwner {
	o, ok := ownerOf(t)
	if !ok {
		debugAssert(false, "hit target %+v has no owning component", t)
		diag.Once(CategoryMissingOwner, log.Fields{"shape": t.Shape != nil, "payload": t.Payload != nil}, "Collision: hit has no owning component")
	}
	return o
}

func (o hitOwner) apply(h *HitResult) {
	h.BoneName = o.bone
	h.Item = o.item
	if o.collider == nil {
		return
	}
	h.Component = weak.Make(o.collider)
	if g := o.gameObject(); g != nil {
		h.Actor = weak.Make(g)
	}
}

func (o hitOwner) applyOverlap(r *OverlapResult) {
	r.Item = o.item
	if o.collider == nil {
		return
	}
	r.Component = weak.Make(o.collider)
	if g := o.gameObject(); g != nil {
		r.Actor = weak.Make(g)
	}
}
