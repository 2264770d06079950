package physics

// FilterData is the opaque four-word filter blob attached to queries and shapes.
// Its layout is agreed between the code that builds it and the filter callback.
type FilterData [4]uint32

// QueryHitType classifies a candidate hit.
type QueryHitType uint8

const (
	HitNone QueryHitType = iota
	HitTouch
	HitBlock
)

func (t QueryHitType) String() string {
	switch t {
	case HitTouch:
		return "touch"
	case HitBlock:
		return "block"
	}
	return "none"
}

// QueryFlags control traversal.
type QueryFlags uint16

const (
	QueryStatic QueryFlags = 1 << iota
	QueryDynamic
	// QueryPreFilter runs the filter callback before the narrow phase.
	QueryPreFilter
	// QueryPostFilter runs the filter callback after the narrow phase.
	QueryPostFilter
	// QueryAnyHit stops traversal at the first blocking hit.
	QueryAnyHit
	// QueryNoBlock reports every hit as a touch.
	QueryNoBlock
)

const DefaultQueryFlags = QueryStatic | QueryDynamic

// HitFlags say which hit fields were requested or are valid.
type HitFlags uint16

const (
	HitPosition HitFlags = 1 << iota
	HitNormal
	HitDistance
	HitFaceIndex
	// HitMTD asks sweeps that start overlapping to report penetration in Normal and Distance.
	HitMTD
	// HitMeshMultiple reports every triangle hit on a mesh instead of the nearest.
	HitMeshMultiple
	// HitMeshBothSides disables back-face culling on meshes and heightfields.
	HitMeshBothSides
	// HitInitialOverlap marks a sweep or ray that started inside the shape.
	HitInitialOverlap
)

const HitDefault = HitPosition | HitNormal | HitDistance

// InvalidFaceIndex is reported when the face is unknown or the shape has no faces.
const InvalidFaceIndex uint32 = 0xFFFFFFFF
