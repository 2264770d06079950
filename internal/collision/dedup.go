package collision

import (
	"weak"

	"scenequery/internal/components"
	"scenequery/internal/physics"
)

type overlapKey struct {
	component weak.Pointer[components.PrimitiveCollider]
	item      int32
}

func keyOf(r *OverlapResult) overlapKey {
	return overlapKey{component: r.Component, item: r.Item}
}

// ConvertOverlapResults merges raw overlap hits into out, keeping one result
// per component item. A blocking result is never downgraded. It reports
// whether any merged hit blocks.
func (c *Converter) ConvertOverlapResults(hits []physics.OverlapHit, ctx *TraceContext, out []OverlapResult) ([]OverlapResult, bool) {
	return mergeOverlaps(hits, ctx.classify, out, c.cfg.Overlap.DedupMapThreshold, c.diag)
}

func mergeOverlaps(hits []physics.OverlapHit, classify func(physics.Target) physics.QueryHitType, out []OverlapResult, threshold int, diag *Diagnostics) ([]OverlapResult, bool) {
	if len(out)+len(hits) >= threshold {
		return mergeOverlapsMap(hits, classify, out, diag)
	}
	blocking := false
	for _, h := range hits {
		r := newOverlapResult(h, classify, diag)
		blocking = blocking || r.BlockingHit
		out = addUniqueOverlap(out, r)
	}
	return out, blocking
}

func mergeOverlapsMap(hits []physics.OverlapHit, classify func(physics.Target) physics.QueryHitType, out []OverlapResult, diag *Diagnostics) ([]OverlapResult, bool) {
	index := make(map[overlapKey]int, len(out)+len(hits))
	for i := range out {
		index[keyOf(&out[i])] = i
	}
	blocking := false
	for _, h := range hits {
		r := newOverlapResult(h, classify, diag)
		blocking = blocking || r.BlockingHit
		key := keyOf(&r)
		if i, ok := index[key]; ok {
			if r.BlockingHit && !out[i].BlockingHit {
				out[i] = r
			}
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out, blocking
}

// addUniqueOverlap appends r unless an entry with the same key exists, in
// which case a blocking r upgrades it.
func addUniqueOverlap(out []OverlapResult, r OverlapResult) []OverlapResult {
	key := keyOf(&r)
	for i := range out {
		if keyOf(&out[i]) != key {
			continue
		}
		if r.BlockingHit && !out[i].BlockingHit {
			out[i] = r
		}
		return out
	}
	return append(out, r)
}

func newOverlapResult(h physics.OverlapHit, classify func(physics.Target) physics.QueryHitType, diag *Diagnostics) OverlapResult {
	r := OverlapResult{BlockingHit: classify(h.Target) == physics.HitBlock}
	resolveOwner(h.Target, diag).applyOverlap(&r)
	return r
}
