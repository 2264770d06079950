package sqaccel

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenequery/internal/geom"
	"scenequery/internal/physics"
)

type item struct {
	name   string
	filter physics.FilterData
}

func (i *item) QueryFilterData() physics.FilterData { return i.filter }

func box(center rl.Vector3) geom.AABB {
	return geom.NewAABBFromExtents(center, rl.Vector3{X: 1, Y: 1, Z: 1})
}

func ray() physics.RaycastQuery {
	return physics.RaycastQuery{Origin: rl.Vector3{}, Dir: rl.Vector3{X: 1}, MaxDistance: 100, HitFlags: physics.HitDefault}
}

func TestAddRemoveEntrySwaps(t *testing.T) {
	acc := New("items")
	a := acc.AddEntry(&item{name: "a"}, box(rl.Vector3{X: 5}))
	b := acc.AddEntry(&item{name: "b"}, box(rl.Vector3{X: 10}))
	c := acc.AddEntry(&item{name: "c"}, box(rl.Vector3{X: 15}))
	require.Equal(t, 3, acc.Len())

	assert.True(t, acc.RemoveEntry(a))
	assert.False(t, acc.RemoveEntry(a), "entry already removed")
	assert.Equal(t, 2, acc.Len())
	assert.Equal(t, c, acc.root.Entries[0], "last entry moves into the hole")
	assert.Equal(t, b, acc.root.Entries[1])

	other := New("other")
	assert.False(t, other.RemoveEntry(b))
}

func TestRaycastNearestEntry(t *testing.T) {
	acc := New("items")
	far := &item{name: "far"}
	near := &item{name: "near"}
	acc.AddEntry(far, box(rl.Vector3{X: 10}))
	acc.AddEntry(near, box(rl.Vector3{X: 5}))
	acc.AddEntry(&item{name: "off"}, box(rl.Vector3{Y: 10}))

	buf := physics.NewHitBuffer[physics.RaycastHit](4)
	buf.Reset(100)
	assert.False(t, acc.Raycast(ray(), buf, physics.QueryFilter{}))
	require.True(t, buf.HasBlock)
	assert.Same(t, near, buf.Block.Payload)
	assert.InDelta(t, 4.0, buf.Block.Distance, 1e-5)
	assert.Equal(t, rl.Vector3{X: -1}, buf.Block.Normal)
}

type touchAll struct{}

func (touchAll) PreFilter(_ physics.FilterData, t physics.Target, shape physics.FilterData) physics.QueryHitType {
	if shape[0] == 0 {
		return physics.HitNone
	}
	return physics.HitTouch
}

func (touchAll) PostFilter(_ physics.FilterData, _ physics.Target, pre physics.QueryHitType, _ float32, _ physics.HitFlags) physics.QueryHitType {
	return pre
}

func TestRaycastUsesPayloadFilterData(t *testing.T) {
	acc := New("items")
	acc.AddEntry(&item{filter: physics.FilterData{1}}, box(rl.Vector3{X: 5}))
	acc.AddEntry(&item{filter: physics.FilterData{0}}, box(rl.Vector3{X: 10}))
	acc.AddEntry(&item{filter: physics.FilterData{1}}, box(rl.Vector3{X: 15}))

	buf := physics.NewHitBuffer[physics.RaycastHit](4)
	buf.Reset(100)
	f := physics.QueryFilter{Flags: physics.QueryPreFilter, Callback: touchAll{}}
	acc.Raycast(ray(), buf, f)
	assert.False(t, buf.HasBlock)
	assert.Len(t, buf.Touches, 2)
}

func TestSweepEntries(t *testing.T) {
	acc := New("items")
	target := &item{}
	acc.AddEntry(target, box(rl.Vector3{X: 10}))

	buf := physics.NewHitBuffer[physics.SweepHit](4)
	buf.Reset(100)
	q := physics.SweepQuery{
		Geometry:    geom.Sphere{Radius: 1},
		Pose:        geom.Identity(),
		Dir:         rl.Vector3{X: 1},
		MaxDistance: 100,
		HitFlags:    physics.HitDefault,
	}
	acc.Sweep(q, buf, physics.QueryFilter{})
	require.True(t, buf.HasBlock)
	assert.InDelta(t, 8.0, buf.Block.Distance, 1e-5)
	assert.Equal(t, rl.Vector3{X: -1}, buf.Block.Normal)
	assert.InDelta(t, 9.0, buf.Block.Position.X, 1e-5)

	buf.Reset(100)
	q.Pose = geom.Translation(rl.Vector3{X: 9.5})
	q.HitFlags |= physics.HitMTD
	acc.Sweep(q, buf, physics.QueryFilter{})
	require.True(t, buf.HasBlock)
	assert.True(t, buf.Block.HadInitialOverlap())
	assert.InDelta(t, -1.5, buf.Block.Distance, 1e-5)
	assert.InDelta(t, -1.0, buf.Block.Normal.X, 1e-6)
}

func TestOverlapEntries(t *testing.T) {
	acc := New("items")
	hit := &item{name: "hit"}
	acc.AddEntry(hit, box(rl.Vector3{X: 2}))
	acc.AddEntry(&item{name: "miss"}, box(rl.Vector3{X: 20}))

	buf := physics.NewHitBuffer[physics.OverlapHit](4)
	f := physics.QueryFilter{Flags: physics.QueryNoBlock}
	acc.Overlap(physics.OverlapQuery{Geometry: geom.Sphere{Radius: 1}, Pose: geom.Identity()}, buf, f)
	require.Len(t, buf.Touches, 1)
	assert.Same(t, hit, buf.Touches[0].Payload)
}

func TestUnionFansOutInOrder(t *testing.T) {
	first := New("first")
	second := New("second")
	a := &item{name: "a"}
	b := &item{name: "b"}
	first.AddEntry(a, box(rl.Vector3{X: 10}))
	second.AddEntry(b, box(rl.Vector3{X: 5}))

	u := NewUnion(first)
	u.Add(second)
	require.Len(t, u.Children(), 2)

	buf := physics.NewHitBuffer[physics.RaycastHit](4)
	buf.Reset(100)
	u.Raycast(ray(), buf, physics.QueryFilter{})
	require.True(t, buf.HasBlock)
	assert.Same(t, b, buf.Block.Payload, "nearest entry wins across children")

	// Any-hit stops at the first child that reports a block.
	buf.Reset(100)
	assert.True(t, u.Raycast(ray(), buf, physics.QueryFilter{Flags: physics.QueryAnyHit}))
	assert.Same(t, a, buf.Block.Payload)

	assert.True(t, u.Remove(first))
	assert.False(t, u.Remove(first))
	assert.Len(t, u.Children(), 1)
}

func TestUnionWithNativeScene(t *testing.T) {
	scene := physics.NewScene("union")
	actor := physics.NewStaticActor(geom.Translation(rl.Vector3{X: 20}))
	actor.AttachShape(geom.Sphere{Radius: 1}, geom.Identity())
	require.NoError(t, scene.AddActor(actor))

	custom := New("custom")
	custom.AddEntry(&item{name: "near"}, box(rl.Vector3{X: 5}))
	scene.SetAccelerator(NewUnion(scene.NativeAccelerator(), custom))

	buf := physics.NewHitBuffer[physics.RaycastHit](4)
	buf.Reset(100)
	f := physics.QueryFilter{Flags: physics.DefaultQueryFlags | physics.QueryNoBlock}
	scene.LockRead()
	scene.Raycast(ray(), buf, f)
	scene.UnlockRead()

	require.Len(t, buf.Touches, 2)
	assert.Equal(t, actor, buf.Touches[0].Actor)
	assert.NotNil(t, buf.Touches[1].Payload)
}
