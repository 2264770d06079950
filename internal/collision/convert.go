package collision

import (
	"cmp"
	"slices"
	"weak"

	rl "github.com/gen2brain/raylib-go/raylib"
	log "github.com/sirupsen/logrus"

	"scenequery/internal/filter"
	"scenequery/internal/geom"
	"scenequery/internal/physics"
)

// ConversionResult reports whether a raw hit produced a usable HitResult.
type ConversionResult uint8

const (
	Valid ConversionResult = iota
	// Invalid hits had non-finite data and must be dropped.
	Invalid
)

func (r ConversionResult) String() string {
	if r == Invalid {
		return "invalid"
	}
	return "valid"
}

// TraceContext describes the query a batch of hits came from.
type TraceContext struct {
	Start, End rl.Vector3
	// Geometry is the swept shape, nil for raycasts.
	Geometry geom.Geometry
	Rotation rl.Quaternion
	Channel  filter.Channel
	Params   *QueryParams

	queryData physics.FilterData
	callback  *queryCallback
}

func (ctx *TraceContext) classify(t physics.Target) physics.QueryHitType {
	if ctx.callback == nil {
		return physics.HitBlock
	}
	return ctx.callback.hitType(ctx.queryData, t)
}

func (ctx *TraceContext) fields() log.Fields {
	f := log.Fields{"channel": ctx.Channel.String(), "start": ctx.Start, "end": ctx.End}
	if ctx.Geometry != nil {
		f["geometry"] = ctx.Geometry.Kind().String()
	}
	if ctx.Params != nil {
		f["tag"] = ctx.Params.TraceTag
		f["complex"] = ctx.Params.TraceComplex
		f["mobility"] = ctx.Params.Mobility
	}
	return f
}

// Converter turns backend hits into HitResults and OverlapResults.
type Converter struct {
	cfg         Config
	diag        *Diagnostics
	geometry    GeometryQuerier
	penetration *penetrationResolver
}

func NewConverter(cfg Config, geometry GeometryQuerier, diag *Diagnostics) *Converter {
	if diag == nil {
		diag = NewDiagnostics(nil)
	}
	if geometry == nil {
		geometry = physics.GeometryQuery{}
	}
	return &Converter{
		cfg:         cfg,
		diag:        diag,
		geometry:    geometry,
		penetration: newPenetrationResolver(cfg.Penetration, geometry, diag),
	}
}

// ConvertImpactHit converts one ray or sweep hit into out. Hits that start
// inside their target with a known swept shape get their normal and depth
// from the penetration resolver.
func ConvertImpactHit[H HitRecord](c *Converter, hit H, out *HitResult, ctx *TraceContext) ConversionResult {
	*out = newHitResult(ctx.Start, ctx.End)
	target := targetOf(hit)
	out.BlockingHit = ctx.classify(target) == physics.HitBlock

	if hadInitialOverlap(hit) && ctx.Geometry != nil && target.Shape != nil {
		c.convertOverlappedShapeToImpactHit(hit, out, ctx)
		return Valid
	}

	delta := rl.Vector3Subtract(ctx.End, ctx.Start)
	length := rl.Vector3Length(delta)
	fallbackNormal := rl.Vector3Negate(geom.SafeNormal(delta, geom.SmallNumber))

	out.StartPenetrating = hadInitialOverlap(hit)
	out.Distance = hit.HitDistance()
	if out.Distance < 0 {
		out.PenetrationDepth = -out.Distance
		out.Distance = 0
	}
	if length > geom.SmallNumber {
		out.Time = geom.Clamp(out.Distance/length, 0, 1)
	}
	out.Location = rl.Vector3Add(ctx.Start, rl.Vector3Scale(delta, out.Time))

	position := positionOf(hit, out.Location)
	normal := normalOf(hit, fallbackNormal)
	if !geom.IsFinite(position) || !geom.IsFinite(normal) {
		cat := CategoryNaNNormal
		if !geom.IsFinite(position) {
			cat = CategoryNaNPosition
		}
		fields := ctx.fields()
		fields["position"] = position
		fields["normal"] = normal
		c.diag.Once(cat, fields, "Collision: dropping hit with non-finite data")
		*out = HitResult{}
		return Invalid
	}
	normal = c.checkHitResultNormal(normal, fallbackNormal, ctx)

	out.ImpactPoint = position
	out.Normal = normal
	out.ImpactNormal = normal

	if shape := target.Shape; shape != nil {
		face := faceIndexOf(hit)
		if refinesOpposingNormal(ctx.Geometry) {
			n := findGeomOpposingNormal(shape.Geometry(), shape.WorldPose(), delta, normal, face)
			if geom.IsFinite(n) && rl.Vector3LengthSqr(n) > 0 {
				out.ImpactNormal = n
			}
		}
		c.setFaceAndMaterial(shape, face, out, ctx.Params)
	}
	resolveOwner(target, c.diag).apply(out)
	return Valid
}

// Only sphere and capsule sweeps report contact normals that need a face lookup.
func refinesOpposingNormal(g geom.Geometry) bool {
	switch g.(type) {
	case geom.Sphere, geom.Capsule:
		return true
	}
	return false
}

func (c *Converter) convertOverlappedShapeToImpactHit(hit HitRecord, out *HitResult, ctx *TraceContext) {
	shape := hit.HitShape()
	out.StartPenetrating = true
	out.Location = ctx.Start
	out.ImpactPoint = positionOf(hit, ctx.Start)

	res := c.penetration.resolve(penetrationInput{
		geometry: ctx.Geometry,
		pose:     geom.NewTransform(ctx.Start, ctx.Rotation),
		shape:    shape,
	})
	out.Normal = res.normal
	out.ImpactNormal = res.normal
	out.PenetrationDepth = res.depth

	c.setFaceAndMaterial(shape, faceIndexOf(hit), out, ctx.Params)
	resolveOwner(targetOf(hit), c.diag).apply(out)
}

// checkHitResultNormal returns a unit normal, logging once when the backend
// produced one that was not.
func (c *Converter) checkHitResultNormal(normal, fallback rl.Vector3, ctx *TraceContext) rl.Vector3 {
	if geom.IsNormalized(normal) {
		return normal
	}
	fields := ctx.fields()
	fields["normal"] = normal
	c.diag.Once(CategoryNonUnitNormal, fields, "Collision: hit normal was not unit length")
	n := geom.SafeNormal(normal, geom.SmallNumber)
	if rl.Vector3LengthSqr(n) == 0 {
		if rl.Vector3LengthSqr(fallback) == 0 {
			return geom.Up
		}
		return fallback
	}
	return n
}

func (c *Converter) setFaceAndMaterial(shape *physics.Shape, face uint32, out *HitResult, params *QueryParams) {
	if params == nil {
		return
	}
	if params.ReturnFaceIndex && face != physics.InvalidFaceIndex {
		if m, ok := shape.Geometry().(geom.TriangleMesh); ok && m.Mesh != nil {
			if original, ok := m.Mesh.OriginalIndex(face); ok {
				out.FaceIndex = int32(original)
			}
		}
	}
	if params.ReturnPhysicalMaterial {
		if mat := shape.MaterialFromInternalFaceIndex(face); mat != nil {
			out.PhysMaterial = weak.Make(mat)
		}
	}
}

// ConvertTraceResults converts a batch, drops invalid hits, and sorts by time
// with touches before a block at the same time. It reports whether any
// converted hit blocks.
func ConvertTraceResults[H HitRecord](c *Converter, hits []H, ctx *TraceContext, out []HitResult) ([]HitResult, bool) {
	blocking := false
	for _, h := range hits {
		var r HitResult
		if ConvertImpactHit(c, h, &r, ctx) == Invalid {
			continue
		}
		blocking = blocking || r.BlockingHit
		out = append(out, r)
	}
	slices.SortStableFunc(out, compareHitTime)
	return out, blocking
}

func compareHitTime(a, b HitResult) int {
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	switch {
	case a.BlockingHit == b.BlockingHit:
		return 0
	case b.BlockingHit:
		return -1
	}
	return 1
}
