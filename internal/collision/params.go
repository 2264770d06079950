package collision

import (
	"slices"

	"scenequery/internal/components"
	"scenequery/internal/engine"
	"scenequery/internal/filter"
	"scenequery/internal/physics"
)

// Mobility restricts which actors a query considers.
type Mobility uint8

const (
	MobilityAny Mobility = iota
	MobilityStatic
	MobilityDynamic
)

func (m Mobility) queryFlags() physics.QueryFlags {
	switch m {
	case MobilityStatic:
		return physics.QueryStatic
	case MobilityDynamic:
		return physics.QueryDynamic
	}
	return physics.DefaultQueryFlags
}

// QueryParams carries per-query options.
type QueryParams struct {
	// TraceTag names the query in logs.
	TraceTag string
	// TraceComplex queries complex collision (meshes) instead of simple.
	TraceComplex bool
	// IgnoreTouches drops touching hits; IgnoreBlocks drops blocking ones.
	IgnoreTouches bool
	IgnoreBlocks  bool
	// DiscardInitialOverlaps drops hits that start inside their target.
	DiscardInitialOverlaps bool
	ReturnFaceIndex        bool
	ReturnPhysicalMaterial bool
	// TraceAsyncScene also queries the world's async scene when it has one.
	TraceAsyncScene bool
	Mobility        Mobility
	Mask            filter.Mask

	ignoredActors     []uint64
	ignoredComponents []*components.PrimitiveCollider
}

func DefaultQueryParams() QueryParams {
	return QueryParams{TraceAsyncScene: true}
}

func (p *QueryParams) AddIgnoredActor(g *engine.GameObject) {
	if g != nil && !slices.Contains(p.ignoredActors, g.UID) {
		p.ignoredActors = append(p.ignoredActors, g.UID)
	}
}

func (p *QueryParams) AddIgnoredComponent(c *components.PrimitiveCollider) {
	if c != nil && !slices.Contains(p.ignoredComponents, c) {
		p.ignoredComponents = append(p.ignoredComponents, c)
	}
}

func (p *QueryParams) ClearIgnored() {
	p.ignoredActors = p.ignoredActors[:0]
	p.ignoredComponents = p.ignoredComponents[:0]
}

func (p *QueryParams) ignores(o hitOwner) bool {
	if len(p.ignoredActors) == 0 && len(p.ignoredComponents) == 0 {
		return false
	}
	if o.collider == nil {
		return false
	}
	if slices.Contains(p.ignoredComponents, o.collider) {
		return true
	}
	if g := o.gameObject(); g != nil {
		return slices.Contains(p.ignoredActors, g.UID)
	}
	return false
}

// ResponseParams is how the query responds to each object type.
type ResponseParams struct {
	Responses filter.ResponseContainer
}

func DefaultResponseParams() ResponseParams {
	return ResponseParams{Responses: filter.BlockAll()}
}
