package collision

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	log "github.com/sirupsen/logrus"

	"scenequery/internal/filter"
	"scenequery/internal/geom"
	"scenequery/internal/physics"
)

// World runs scene queries against a sync scene and an optional async scene
// and converts the results. It holds no per-query state and is safe for
// concurrent use; each query locks the scenes it reads.
type World struct {
	Sync  *physics.Scene
	Async *physics.Scene

	cfg  Config
	conv *Converter
	diag *Diagnostics
	log  log.FieldLogger
}

func NewWorld(sync, async *physics.Scene, cfg Config, logger log.FieldLogger) *World {
	if logger == nil {
		logger = log.StandardLogger()
	}
	diag := NewDiagnostics(logger)
	return &World{
		Sync:  sync,
		Async: async,
		cfg:   cfg,
		conv:  NewConverter(cfg, physics.GeometryQuery{}, diag),
		diag:  diag,
		log:   logger,
	}
}

func (w *World) Config() Config            { return w.cfg }
func (w *World) Diagnostics() *Diagnostics { return w.diag }
func (w *World) Converter() *Converter     { return w.conv }

type traceRequest struct {
	traits   queryTraits
	start    rl.Vector3
	end      rl.Vector3
	geometry geom.Geometry
	rotation rl.Quaternion
	channel  filter.Channel
	params   *QueryParams
	callback *queryCallback
	filter   physics.QueryFilter
}

func (w *World) newRequest(traits queryTraits, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) *traceRequest {
	if params == nil {
		p := DefaultQueryParams()
		params = &p
	}
	cb := newQueryCallback(params, traits.multi())
	data := filter.CreateQueryFilterData(params.Mask, params.TraceComplex, channel, responses.Responses, objects, traits.multi())
	flags := traits.queryFlags(params.Mobility)
	if params.DiscardInitialOverlaps {
		flags |= physics.QueryPostFilter
	}
	return &traceRequest{
		traits:   traits,
		rotation: rl.QuaternionIdentity(),
		channel:  channel,
		params:   params,
		callback: cb,
		filter: physics.QueryFilter{
			Data:     data,
			Flags:    flags,
			Callback: cb,
		},
	}
}

func (r *traceRequest) context() *TraceContext {
	return &TraceContext{
		Start:     r.start,
		End:       r.end,
		Geometry:  r.geometry,
		Rotation:  r.rotation,
		Channel:   r.channel,
		Params:    r.params,
		queryData: r.filter.Data,
		callback:  r.callback,
	}
}

func (r *traceRequest) fields() log.Fields {
	f := r.context().fields()
	f["query"] = r.traits.String()
	return f
}

func (w *World) useAsync(params *QueryParams) bool {
	return w.Async != nil && w.Async != w.Sync && w.cfg.Query.TraceAsyncScene && params.TraceAsyncScene
}

func (w *World) bufferSize(t queryTraits) int {
	if t.multi() {
		return w.cfg.Query.HitBufferSize
	}
	return 1
}

// validTrace reports whether the request can run. Degenerate traces are a
// silent miss; non-finite input and unsupported shapes are logged.
func (w *World) validTrace(r *traceRequest) bool {
	if !geom.IsFinite(r.start) || !geom.IsFinite(r.end) || !geom.IsFiniteQuat(r.rotation) {
		w.diag.Once(CategoryQueryNaN, r.fields(), "Collision: query has non-finite input")
		return false
	}
	if r.geometry != nil && !supportedQueryGeometry(r.geometry) {
		f := r.fields()
		f["geometry"] = r.geometry.Kind().String()
		w.diag.Once(CategoryUnsupportedGeometry, f, "Collision: query geometry not supported")
		return false
	}
	if r.traits.kind == kindOverlap {
		return true
	}
	return rl.Vector3Length(rl.Vector3Subtract(r.end, r.start)) >= geom.SmallNumber
}

// supportedQueryGeometry lists the shapes that can be swept or overlapped.
func supportedQueryGeometry(g geom.Geometry) bool {
	switch g.(type) {
	case geom.Sphere, geom.Capsule, geom.Box, geom.ConvexMesh:
		return true
	}
	return false
}

// runScenes runs query against the sync scene, then the async scene when
// enabled, and merges the two. Single and test queries keep the nearer block.
// Multi queries keep everything in front of the nearest block.
func runScenes[H physics.QueryHit](w *World, r *traceRequest, maxDist float32, query func(*physics.Scene, *physics.HitBuffer[H]) bool) ([]H, bool) {
	buf := physics.NewHitBuffer[H](w.bufferSize(r.traits))
	buf.Reset(maxDist)
	runScene(w, r, w.Sync, buf, query)

	if !w.useAsync(r.params) {
		return bufferHits(r.traits, buf), buf.HasBlock
	}
	if r.traits.mode == modeTest && buf.HasBlock {
		return nil, true
	}
	if r.traits.multi() && r.traits.kind != kindOverlap && buf.Distance() <= geom.SmallNumber {
		return bufferHits(r.traits, buf), buf.HasBlock
	}

	async := physics.NewHitBuffer[H](w.bufferSize(r.traits))
	async.Reset(buf.Distance())
	runScene(w, r, w.Async, async, query)

	if !r.traits.multi() {
		if async.HasBlock && (!buf.HasBlock || async.Block.HitDistance() < buf.Block.HitDistance()) {
			return bufferHits(r.traits, async), true
		}
		return bufferHits(r.traits, buf), buf.HasBlock
	}
	return mergeMulti(buf, async)
}

// runScene runs one scene under its read lock, through the hitch repeater.
func runScene[H physics.QueryHit](w *World, r *traceRequest, scene *physics.Scene, buf *physics.HitBuffer[H], query func(*physics.Scene, *physics.HitBuffer[H]) bool) {
	if scene == nil {
		return
	}
	rep := newHitchRepeater(w.cfg.Hitch, w.log.WithField("scene", scene.Name), r.traits.String(), buf)
	rep.run(func(b *physics.HitBuffer[H]) bool {
		lock := lockSceneRead(scene)
		defer lock.Release()
		return query(scene, b)
	})
}

func bufferHits[H physics.QueryHit](t queryTraits, buf *physics.HitBuffer[H]) []H {
	if t.multi() {
		return buf.Hits()
	}
	if buf.HasBlock {
		return []H{buf.Block}
	}
	return nil
}

// mergeMulti concatenates two multi buffers, keeps the nearest block and
// drops every other hit at or beyond it.
func mergeMulti[H physics.QueryHit](a, b *physics.HitBuffer[H]) ([]H, bool) {
	var block H
	has := false
	for _, buf := range []*physics.HitBuffer[H]{a, b} {
		if buf.HasBlock && (!has || buf.Block.HitDistance() < block.HitDistance()) {
			block = buf.Block
			has = true
		}
	}
	cutoff := float32(math.MaxFloat32)
	if has {
		cutoff = block.HitDistance()
	}
	hits := make([]H, 0, a.NumHits()+b.NumHits())
	for _, buf := range []*physics.HitBuffer[H]{a, b} {
		for _, t := range buf.Touches {
			if !has || t.HitDistance() < cutoff {
				hits = append(hits, t)
			}
		}
	}
	if has {
		hits = append(hits, block)
	}
	return hits, has
}

func (w *World) raycast(r *traceRequest) ([]physics.RaycastHit, bool) {
	if !w.validTrace(r) {
		return nil, false
	}
	delta := rl.Vector3Subtract(r.end, r.start)
	length := rl.Vector3Length(delta)
	dir := rl.Vector3Scale(delta, 1/length)
	flags := r.traits.hitFlags()
	return runScenes(w, r, length, func(scene *physics.Scene, buf *physics.HitBuffer[physics.RaycastHit]) bool {
		q := physics.RaycastQuery{Origin: r.start, Dir: dir, MaxDistance: buf.Distance(), HitFlags: flags}
		return scene.Raycast(q, buf, r.filter)
	})
}

// RaycastTest reports whether anything blocks the segment from start to end.
func (w *World) RaycastTest(start, end rl.Vector3, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) bool {
	r := w.newRequest(queryTraits{kindRaycast, modeTest}, channel, params, responses, objects)
	r.start, r.end = start, end
	_, blocked := w.raycast(r)
	return blocked
}

// RaycastSingle finds the nearest blocking hit.
func (w *World) RaycastSingle(out *HitResult, start, end rl.Vector3, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) bool {
	r := w.newRequest(queryTraits{kindRaycast, modeSingle}, channel, params, responses, objects)
	r.start, r.end = start, end
	*out = newHitResult(start, end)
	hits, blocked := w.raycast(r)
	return convertSingle(w.conv, hits, blocked, out, r.context())
}

// RaycastMulti appends every touch in front of the nearest block, then the
// block, sorted by time. It reports whether a block was found.
func (w *World) RaycastMulti(out []HitResult, start, end rl.Vector3, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) ([]HitResult, bool) {
	r := w.newRequest(queryTraits{kindRaycast, modeMulti}, channel, params, responses, objects)
	r.start, r.end = start, end
	hits, _ := w.raycast(r)
	return ConvertTraceResults(w.conv, hits, r.context(), out)
}

func (w *World) sweep(r *traceRequest) ([]physics.SweepHit, bool) {
	if !w.validTrace(r) {
		return nil, false
	}
	delta := rl.Vector3Subtract(r.end, r.start)
	length := rl.Vector3Length(delta)
	dir := rl.Vector3Scale(delta, 1/length)
	pose := geom.NewTransform(r.start, r.rotation)
	flags := r.traits.hitFlags()
	return runScenes(w, r, length, func(scene *physics.Scene, buf *physics.HitBuffer[physics.SweepHit]) bool {
		q := physics.SweepQuery{Geometry: r.geometry, Pose: pose, Dir: dir, MaxDistance: buf.Distance(), HitFlags: flags}
		return scene.Sweep(q, buf, r.filter)
	})
}

func (w *World) sweepRequest(mode queryMode, g geom.Geometry, rot rl.Quaternion, start, end rl.Vector3, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) *traceRequest {
	r := w.newRequest(queryTraits{kindSweep, mode}, channel, params, responses, objects)
	r.start, r.end = start, end
	r.geometry, r.rotation = g, rot
	return r
}

// GeomSweepTest reports whether g, held at rot, is blocked moving from start to end.
func (w *World) GeomSweepTest(g geom.Geometry, rot rl.Quaternion, start, end rl.Vector3, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) bool {
	_, blocked := w.sweep(w.sweepRequest(modeTest, g, rot, start, end, channel, params, responses, objects))
	return blocked
}

func (w *World) GeomSweepSingle(out *HitResult, g geom.Geometry, rot rl.Quaternion, start, end rl.Vector3, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) bool {
	r := w.sweepRequest(modeSingle, g, rot, start, end, channel, params, responses, objects)
	*out = newHitResult(start, end)
	hits, blocked := w.sweep(r)
	return convertSingle(w.conv, hits, blocked, out, r.context())
}

func (w *World) GeomSweepMulti(out []HitResult, g geom.Geometry, rot rl.Quaternion, start, end rl.Vector3, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) ([]HitResult, bool) {
	r := w.sweepRequest(modeMulti, g, rot, start, end, channel, params, responses, objects)
	hits, _ := w.sweep(r)
	return ConvertTraceResults(w.conv, hits, r.context(), out)
}

func convertSingle[H HitRecord](c *Converter, hits []H, blocked bool, out *HitResult, ctx *TraceContext) bool {
	if !blocked || len(hits) == 0 {
		return false
	}
	if ConvertImpactHit(c, hits[len(hits)-1], out, ctx) == Invalid {
		return false
	}
	return out.BlockingHit
}

func (w *World) overlap(mode queryMode, anyAsBlock bool, g geom.Geometry, pos rl.Vector3, rot rl.Quaternion, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) (*traceRequest, []physics.OverlapHit, bool) {
	r := w.newRequest(queryTraits{kindOverlap, mode}, channel, params, responses, objects)
	r.callback.anyAsBlock = anyAsBlock
	r.start, r.end = pos, pos
	r.geometry, r.rotation = g, rot
	if !w.validTrace(r) {
		return r, nil, false
	}
	q := physics.OverlapQuery{Geometry: g, Pose: geom.NewTransform(pos, rot)}
	hits, blocked := runScenes(w, r, math.MaxFloat32, func(scene *physics.Scene, buf *physics.HitBuffer[physics.OverlapHit]) bool {
		return scene.Overlap(q, buf, r.filter)
	})
	return r, hits, blocked
}

// GeomOverlapBlockingTest reports whether g at pos overlaps anything that blocks the channel.
func (w *World) GeomOverlapBlockingTest(g geom.Geometry, pos rl.Vector3, rot rl.Quaternion, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) bool {
	_, _, blocked := w.overlap(modeTest, false, g, pos, rot, channel, params, responses, objects)
	return blocked
}

// GeomOverlapAnyTest reports whether g at pos overlaps anything that blocks or touches.
func (w *World) GeomOverlapAnyTest(g geom.Geometry, pos rl.Vector3, rot rl.Quaternion, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) bool {
	_, _, blocked := w.overlap(modeTest, true, g, pos, rot, channel, params, responses, objects)
	return blocked
}

// GeomOverlapMulti appends one result per overlapped component item.
func (w *World) GeomOverlapMulti(out []OverlapResult, g geom.Geometry, pos rl.Vector3, rot rl.Quaternion, channel filter.Channel, params *QueryParams, responses ResponseParams, objects filter.ObjectQueryParams) ([]OverlapResult, bool) {
	r, hits, _ := w.overlap(modeMulti, false, g, pos, rot, channel, params, responses, objects)
	if len(hits) == 0 {
		return out, false
	}
	return w.conv.ConvertOverlapResults(hits, r.context(), out)
}

// ActorPairPenetration returns the deepest penetration of a's shapes into
// b's, as the direction and depth that move a out of b. When the actors live
// in different scenes the lock is skipped and a warning is logged once.
func (w *World) ActorPairPenetration(a, b *physics.Actor) (rl.Vector3, float32, bool) {
	if a == nil || b == nil {
		return rl.Vector3{}, 0, false
	}
	lock, _ := lockScenePair(a.Scene(), b.Scene(), w.diag)
	defer lock.Release()

	var best rl.Vector3
	var deepest float32
	found := false
	for _, sa := range a.Shapes() {
		if !supportedQueryGeometry(sa.Geometry()) {
			continue
		}
		for _, sb := range b.Shapes() {
			n, d, ok := w.conv.geometry.ComputePenetration(sa.Geometry(), sa.WorldPose(), sb)
			if !ok || !geom.IsFinite(n) {
				continue
			}
			if !found || d > deepest {
				best, deepest, found = n, d, true
			}
		}
	}
	return best, deepest, found
}
