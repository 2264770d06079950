package collision

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenequery/internal/engine"
	"scenequery/internal/physics"
)

func TestPlanPairLock(t *testing.T) {
	a := physics.NewScene("a")
	b := physics.NewScene("b")
	cases := []struct {
		name     string
		first    *physics.Scene
		second   *physics.Scene
		want     *physics.Scene
		conflict bool
	}{
		{"both nil", nil, nil, nil, false},
		{"first nil", nil, b, b, false},
		{"second nil", a, nil, a, false},
		{"same scene", a, a, a, false},
		{"different scenes", a, b, nil, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, conflict := planPairLock(c.first, c.second)
			assert.Same(t, c.want, got)
			assert.Equal(t, c.conflict, conflict)
		})
	}
}

func TestSceneReadLockReleaseTwice(t *testing.T) {
	scene := physics.NewScene("level")
	l := lockSceneRead(scene)
	l.Release()
	l.Release()

	// A leaked or doubly released read lock would hang or panic here.
	scene.LockWrite()
	scene.UnlockWrite()

	var empty sceneReadLock
	empty.Release()
	nilScene := lockSceneRead(nil)
	nilScene.Release()
}

func TestQueryTraitsFlags(t *testing.T) {
	base := physics.HitPosition | physics.HitNormal | physics.HitDistance | physics.HitMTD
	cases := []struct {
		traits queryTraits
		hit    physics.HitFlags
		query  physics.QueryFlags
	}{
		{queryTraits{kindRaycast, modeTest}, 0, physics.DefaultQueryFlags | physics.QueryPreFilter | physics.QueryAnyHit},
		{queryTraits{kindRaycast, modeSingle}, base | physics.HitFaceIndex, physics.DefaultQueryFlags | physics.QueryPreFilter},
		{queryTraits{kindRaycast, modeMulti}, base | physics.HitFaceIndex | physics.HitMeshMultiple, physics.DefaultQueryFlags | physics.QueryPreFilter | physics.QueryPostFilter},
		{queryTraits{kindSweep, modeSingle}, base, physics.DefaultQueryFlags | physics.QueryPreFilter},
		{queryTraits{kindSweep, modeMulti}, base | physics.HitFaceIndex | physics.HitMeshMultiple, physics.DefaultQueryFlags | physics.QueryPreFilter | physics.QueryPostFilter},
		{queryTraits{kindOverlap, modeTest}, 0, physics.DefaultQueryFlags | physics.QueryPreFilter | physics.QueryAnyHit},
		{queryTraits{kindOverlap, modeMulti}, base | physics.HitFaceIndex, physics.DefaultQueryFlags | physics.QueryPreFilter | physics.QueryPostFilter | physics.QueryNoBlock},
	}
	for _, c := range cases {
		t.Run(c.traits.String(), func(t *testing.T) {
			assert.Equal(t, c.hit, c.traits.hitFlags())
			assert.Equal(t, c.query, c.traits.queryFlags(MobilityAny))
		})
	}

	single := queryTraits{kindRaycast, modeSingle}
	assert.Equal(t, physics.QueryStatic|physics.QueryPreFilter, single.queryFlags(MobilityStatic))
	assert.Equal(t, physics.QueryDynamic|physics.QueryPreFilter, single.queryFlags(MobilityDynamic))
	assert.Equal(t, "overlap_multi", queryTraits{kindOverlap, modeMulti}.String())
}

func TestDiagnosticsOnceConcurrent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := NewDiagnostics(logger)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Once(CategoryNaNNormal, nil, "Collision: hit normal is not finite") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "nan_normal", hook.LastEntry().Data["category"])
	assert.True(t, d.Seen(CategoryNaNNormal))
	assert.False(t, d.Seen(CategoryNaNPosition))
	assert.Equal(t, "unknown", Category(200).String())
}

func TestHitchRepeaterModes(t *testing.T) {
	touch := physics.RaycastHit{LocationHit: physics.LocationHit{Distance: 1, FaceIndex: physics.InvalidFaceIndex}}

	for _, c := range []struct {
		mode     HitchMode
		runs     int
		entries  int
		repeated int
	}{
		{HitchOff, 1, 0, 0},
		{HitchLog, 1, 1, 0},
		{HitchRepeat, 4, 1, 3},
	} {
		t.Run(c.mode.String(), func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			buf := physics.NewHitBuffer[physics.RaycastHit](8)
			r := newHitchRepeater(HitchConfig{Mode: c.mode, ThresholdMS: 0, MaxRepeats: 3}, logger, "raycast_multi", buf)

			runs := 0
			hit := r.run(func(b *physics.HitBuffer[physics.RaycastHit]) bool {
				runs++
				b.Insert(touch, physics.HitTouch)
				return true
			})
			assert.True(t, hit)
			assert.Equal(t, c.runs, runs)
			assert.Equal(t, c.repeated, r.repeats)
			assert.Len(t, hook.AllEntries(), c.entries)
			assert.Equal(t, 1, buf.NumHits(), "replays never write to the caller's buffer")
			if r.snapshot != nil {
				assert.Zero(t, r.snapshot.NumHits())
			}
		})
	}
}

func TestQueryParamsIgnoredActors(t *testing.T) {
	p := DefaultQueryParams()
	g := engine.NewGameObject("Player")
	p.AddIgnoredActor(g)
	p.AddIgnoredActor(g)
	p.AddIgnoredActor(nil)
	assert.Len(t, p.ignoredActors, 1)

	p.ClearIgnored()
	assert.Empty(t, p.ignoredActors)
	assert.False(t, p.ignores(hitOwner{}))
}
