package collision

import (
	"scenequery/internal/filter"
	"scenequery/internal/physics"
)

// queryCallback classifies candidates for one query. The same classification
// runs during traversal and during conversion so both agree on what blocks.
type queryCallback struct {
	params *QueryParams
	multi  bool
	// anyAsBlock turns touches into blocks, for overlap any-tests.
	anyAsBlock bool
}

func newQueryCallback(params *QueryParams, multi bool) *queryCallback {
	return &queryCallback{params: params, multi: multi}
}

// hitType is the filter-data classification with ignore rules applied.
func (c *queryCallback) hitType(query physics.FilterData, target physics.Target) physics.QueryHitType {
	shape := physics.TargetFilterData(target)
	if !filter.ComplexityMatches(query, shape) {
		return physics.HitNone
	}
	hit := filter.CalcQueryHitType(query, shape, c.multi)
	if hit == physics.HitNone {
		return hit
	}
	if c.params != nil {
		if c.params.IgnoreTouches && hit == physics.HitTouch {
			return physics.HitNone
		}
		if c.params.IgnoreBlocks && hit == physics.HitBlock {
			return physics.HitNone
		}
		if o, ok := ownerOf(target); ok && c.params.ignores(o) {
			return physics.HitNone
		}
	}
	if hit == physics.HitTouch {
		if c.anyAsBlock {
			return physics.HitBlock
		}
		// Single and test queries only report blocks.
		if !c.multi {
			return physics.HitNone
		}
	}
	return hit
}

func (c *queryCallback) PreFilter(query physics.FilterData, target physics.Target, _ physics.FilterData) physics.QueryHitType {
	return c.hitType(query, target)
}

func (c *queryCallback) PostFilter(_ physics.FilterData, _ physics.Target, pre physics.QueryHitType, _ float32, flags physics.HitFlags) physics.QueryHitType {
	if c.params != nil && c.params.DiscardInitialOverlaps && flags&physics.HitInitialOverlap != 0 {
		return physics.HitNone
	}
	return pre
}
