package physics

// QueryFilterCallback classifies candidates during traversal. PreFilter runs
// before the exact geometry test, PostFilter after it.
type QueryFilterCallback interface {
	PreFilter(query FilterData, target Target, shape FilterData) QueryHitType
	PostFilter(query FilterData, target Target, pre QueryHitType, distance float32, flags HitFlags) QueryHitType
}

// FilterDataSource is implemented by accelerator payloads that carry shape-side filter data.
type FilterDataSource interface {
	QueryFilterData() FilterData
}

// QueryFilter bundles the query-side filter blob, traversal flags and callback.
type QueryFilter struct {
	Data     FilterData
	Flags    QueryFlags
	Callback QueryFilterCallback
}

// TargetFilterData returns the shape-side filter blob for a target.
func TargetFilterData(t Target) FilterData {
	if t.Shape != nil {
		return t.Shape.QueryFilter
	}
	if src, ok := t.Payload.(FilterDataSource); ok {
		return src.QueryFilterData()
	}
	return FilterData{}
}

// Classify runs the pre-filter stage. Without QueryPreFilter every candidate blocks.
func (f QueryFilter) Classify(t Target) QueryHitType {
	if f.Flags&QueryPreFilter == 0 || f.Callback == nil {
		return HitBlock
	}
	return f.Callback.PreFilter(f.Data, t, TargetFilterData(t))
}

// Report runs the post-filter stage and inserts the hit. It returns true when
// traversal should stop.
func Report[H QueryHit](buf *HitBuffer[H], f QueryFilter, t Target, hit H, kind QueryHitType) bool {
	if kind == HitNone {
		return false
	}
	if f.Flags&QueryPostFilter != 0 && f.Callback != nil {
		var flags HitFlags
		for _, flag := range []HitFlags{HitInitialOverlap, HitPosition, HitNormal, HitDistance, HitFaceIndex} {
			if hit.HasFlag(flag) {
				flags |= flag
			}
		}
		kind = f.Callback.PostFilter(f.Data, t, kind, hit.HitDistance(), flags)
		if kind == HitNone {
			return false
		}
	}
	if f.Flags&QueryNoBlock != 0 && kind == HitBlock {
		kind = HitTouch
	}
	if f.Flags&QueryAnyHit != 0 {
		if kind != HitBlock {
			return false
		}
		buf.Insert(hit, HitBlock)
		return true
	}
	buf.Insert(hit, kind)
	return false
}

func (f QueryFilter) wantsActor(a *Actor) bool {
	if a == nil {
		return true
	}
	mobility := f.Flags & (QueryStatic | QueryDynamic)
	if mobility == 0 {
		mobility = DefaultQueryFlags
	}
	if a.static {
		return mobility&QueryStatic != 0
	}
	return mobility&QueryDynamic != 0
}
