package collision

import "scenequery/internal/physics"

type queryKind uint8

const (
	kindRaycast queryKind = iota
	kindSweep
	kindOverlap
)

func (k queryKind) String() string {
	switch k {
	case kindSweep:
		return "sweep"
	case kindOverlap:
		return "overlap"
	}
	return "raycast"
}

type queryMode uint8

const (
	// modeTest only needs to know whether anything blocks.
	modeTest queryMode = iota
	modeSingle
	modeMulti
)

func (m queryMode) String() string {
	switch m {
	case modeSingle:
		return "single"
	case modeMulti:
		return "multi"
	}
	return "test"
}

type queryTraits struct {
	kind queryKind
	mode queryMode
}

func (t queryTraits) String() string { return t.kind.String() + "_" + t.mode.String() }

func (t queryTraits) multi() bool { return t.mode == modeMulti }

// hitFlags is what the backend must fill in for this query shape.
func (t queryTraits) hitFlags() physics.HitFlags {
	if t.mode == modeTest {
		return 0
	}
	f := physics.HitPosition | physics.HitNormal | physics.HitDistance | physics.HitMTD
	if t.mode == modeMulti || t.kind == kindRaycast {
		f |= physics.HitFaceIndex
	}
	if t.mode == modeMulti && t.kind != kindOverlap {
		f |= physics.HitMeshMultiple
	}
	return f
}

func (t queryTraits) queryFlags(m Mobility) physics.QueryFlags {
	f := m.queryFlags() | physics.QueryPreFilter
	switch t.mode {
	case modeTest:
		f |= physics.QueryAnyHit
	case modeMulti:
		f |= physics.QueryPostFilter
		if t.kind == kindOverlap {
			// Overlaps all sit at distance zero, so blocks are sorted out
			// during merging instead.
			f |= physics.QueryNoBlock
		}
	}
	return f
}
