package world

import (
	"os"
	"path/filepath"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenequery/internal/collision"
	"scenequery/internal/engine"
	"scenequery/internal/filter"
)

const yardJSON = `{
  "name": "yard",
  "objects": [
    {"name": "Floor", "position": [0, 0, -0.5],
     "components": [{"type": "BoxCollider", "halfExtents": [20, 20, 0.5], "material": "grass"}]},
    {"name": "Wall", "position": [3, 0, 2],
     "components": [{"type": "BoxCollider", "halfExtents": [0.5, 5, 5]}]},
    {"name": "Mist", "position": [-5, 0, 1], "async": true,
     "components": [{"type": "SphereCollider", "radius": 1, "defaultResponse": "overlap"}]},
    {"name": "Fence", "position": [0, -8, 0.5],
     "components": [{"type": "BoxCollider", "halfExtents": [0.2, 0.2, 0.5], "instances": [[0, 0, 0], [2, 0, 0], [4, 0, 0]]}]},
    {"name": "Player", "position": [0, 0, 3], "tags": ["player"],
     "components": [{"type": "CharacterMover", "radius": 0.4, "halfHeight": 0.5, "channel": "Pawn"}]}
  ]
}`

const rackYAML = `
name: storage
cellSize: 2
objects:
  - name: Floor
    position: [0, 0, -0.5]
    components:
      - type: BoxCollider
        halfExtents: [20, 20, 0.5]
  - name: Rack
    position: [0, 8, 0]
    scale: [2, 2, 2]
    children:
      - name: Shelf
        position: [1, 0, 1]
        components:
          - type: BoxCollider
            size: [1, 1, 0.2]
            responses:
              Visibility: ignore
`

func quietOptions() (Options, *test.Hook) {
	logger, hook := test.NewNullLogger()
	opts := DefaultOptions()
	opts.Logger = logger
	return opts, hook
}

func writeScene(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadYard(t *testing.T) *World {
	t.Helper()
	opts, _ := quietOptions()
	w, err := LoadSceneFile(writeScene(t, "yard.json", yardJSON), opts)
	require.NoError(t, err)
	return w
}

func down(x, y float32) (rl.Vector3, rl.Vector3) {
	return rl.Vector3{X: x, Y: y, Z: 10}, rl.Vector3{X: x, Y: y, Z: -10}
}

func TestLoadJSONScene(t *testing.T) {
	opts, hook := quietOptions()
	w, err := LoadSceneFile(writeScene(t, "yard.json", yardJSON), opts)
	require.NoError(t, err)

	assert.Equal(t, "yard", w.Scene.Name)
	assert.Len(t, w.Scene.GameObjects, 5)
	assert.Len(t, w.Sync.Actors(), 2)
	assert.Len(t, w.Async.Actors(), 1)
	assert.Equal(t, 3, w.Accel.Len())
	assert.Len(t, w.Scene.FindByTag("player"), 1)
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, 3, hook.LastEntry().Data["instances"])

	var hit collision.HitResult
	start, end := down(0, 0)
	require.True(t, w.Query.RaycastSingle(&hit, start, end, filter.Visibility, nil, collision.DefaultResponseParams(), filter.ObjectQueryParams{}))
	assert.Equal(t, "Floor", hit.GetActor().Name)
	assert.InDelta(t, 0, hit.ImpactPoint.Z, 1e-4)

	params := collision.DefaultQueryParams()
	params.ReturnPhysicalMaterial = true
	require.True(t, w.Query.RaycastSingle(&hit, start, end, filter.Visibility, &params, collision.DefaultResponseParams(), filter.ObjectQueryParams{}))
	require.NotNil(t, hit.GetPhysMaterial())
	assert.Equal(t, "grass", hit.GetPhysMaterial().Name)

	start, end = down(2, -8)
	require.True(t, w.Query.RaycastSingle(&hit, start, end, filter.Visibility, nil, collision.DefaultResponseParams(), filter.ObjectQueryParams{}))
	assert.Equal(t, "Fence", hit.GetActor().Name)
	assert.Equal(t, int32(1), hit.Item)
	assert.InDelta(t, 1.0, hit.ImpactPoint.Z, 1e-4)
}

func TestQueriesReachBothScenes(t *testing.T) {
	w := loadYard(t)

	hits, blocked := w.Query.RaycastMulti(nil, rl.Vector3{X: -10, Z: 1}, rl.Vector3{X: 10, Z: 1}, filter.Visibility, nil, collision.DefaultResponseParams(), filter.ObjectQueryParams{})
	require.True(t, blocked)
	require.Len(t, hits, 2)
	assert.Equal(t, "Mist", hits[0].GetActor().Name)
	assert.False(t, hits[0].BlockingHit)
	assert.Equal(t, "Wall", hits[1].GetActor().Name)
	assert.True(t, hits[1].BlockingHit)
	assert.InDelta(t, 2.5, hits[1].ImpactPoint.X, 1e-4)

	params := collision.DefaultQueryParams()
	params.TraceAsyncScene = false
	hits, _ = w.Query.RaycastMulti(nil, rl.Vector3{X: -10, Z: 1}, rl.Vector3{X: 10, Z: 1}, filter.Visibility, &params, collision.DefaultResponseParams(), filter.ObjectQueryParams{})
	require.Len(t, hits, 1)
	assert.Equal(t, "Wall", hits[0].GetActor().Name)
}

func TestLoadYAMLSceneWithChildren(t *testing.T) {
	opts, _ := quietOptions()
	w, err := LoadSceneFile(writeScene(t, "storage.yaml", rackYAML), opts)
	require.NoError(t, err)

	shelf := w.Scene.FindByName("Shelf")
	require.NotNil(t, shelf)
	require.NotNil(t, shelf.Parent)
	assert.Equal(t, "Rack", shelf.Parent.Name)
	assert.Len(t, w.Sync.Actors(), 2)

	// The shelf sits at (2, 8, 2) with the rack's scale baked in: 2 x 2 x 0.4.
	var hit collision.HitResult
	start, end := down(2, 8)
	require.True(t, w.Query.RaycastSingle(&hit, start, end, filter.Camera, nil, collision.DefaultResponseParams(), filter.ObjectQueryParams{}))
	assert.Equal(t, "Shelf", hit.GetActor().Name)
	assert.InDelta(t, 2.2, hit.ImpactPoint.Z, 1e-4)

	require.True(t, w.Query.RaycastSingle(&hit, start, end, filter.Visibility, nil, collision.DefaultResponseParams(), filter.ObjectQueryParams{}))
	assert.Equal(t, "Floor", hit.GetActor().Name, "the shelf ignores visibility traces")
}

func TestSceneFileErrors(t *testing.T) {
	opts, _ := quietOptions()

	_, err := LoadSceneFile(writeScene(t, "yard.txt", yardJSON), opts)
	assert.ErrorIs(t, err, ErrSceneFormat)

	_, err = LoadSceneFile(filepath.Join(t.TempDir(), "missing.json"), opts)
	assert.Error(t, err)

	_, err = ParseSceneFile([]byte(`{"objects": [{"name": "A", "components": [{"radius": 1}]}]}`), "json")
	require.NoError(t, err)

	cases := map[string]struct {
		scene string
		want  error
	}{
		"missing type": {`{"objects": [{"name": "A", "components": [{"radius": 1}]}]}`, ErrMissingType},
		"unknown type": {`{"objects": [{"name": "A", "components": [{"type": "Teapot"}]}]}`, engine.ErrUnknownComponent},
		"bad props":    {`{"objects": [{"name": "A", "components": [{"type": "SphereCollider", "radius": "big"}]}]}`, nil},
		"bad child":    {`{"objects": [{"name": "A", "children": [{"name": "B", "components": [{"type": "Teapot"}]}]}]}`, engine.ErrUnknownComponent},
		"bad mover":    {`{"objects": [{"name": "A", "components": [{"type": "CharacterMover", "channel": "Sewer"}]}]}`, nil},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			sf, err := ParseSceneFile([]byte(c.scene), "json")
			require.NoError(t, err)
			_, err = Build(sf, opts)
			require.Error(t, err)
			if c.want != nil {
				assert.ErrorIs(t, err, c.want)
			}
		})
	}

	_, err = ParseSceneFile([]byte("objects: [\n"), "yml")
	assert.Error(t, err)
}

func TestRemoveAndAddAfterStart(t *testing.T) {
	w := loadYard(t)
	wall := w.Scene.FindByName("Wall")
	require.NotNil(t, wall)

	w.Remove(wall)
	assert.Len(t, w.Sync.Actors(), 1)
	assert.Nil(t, w.Scene.FindByName("Wall"))
	assert.False(t, w.Query.RaycastTest(rl.Vector3{Z: 1}, rl.Vector3{X: 10, Z: 1}, filter.Visibility, nil, collision.DefaultResponseParams(), filter.ObjectQueryParams{}))

	sf, err := ParseSceneFile([]byte(`{"objects": [{"name": "Crate", "position": [5, 0, 1], "components": [{"type": "BoxCollider"}]}]}`), "json")
	require.NoError(t, err)
	crate, err := buildObject(&sf.Objects[0])
	require.NoError(t, err)
	w.AddObject(crate, false)
	assert.Len(t, w.Sync.Actors(), 2)

	var hit collision.HitResult
	require.True(t, w.Query.RaycastSingle(&hit, rl.Vector3{Z: 1}, rl.Vector3{X: 10, Z: 1}, filter.Visibility, nil, collision.DefaultResponseParams(), filter.ObjectQueryParams{}))
	assert.Same(t, crate, hit.GetActor())
	assert.InDelta(t, 4.5, hit.ImpactPoint.X, 1e-4)
}

func TestLoadConfigFor(t *testing.T) {
	dir := t.TempDir()
	scene := filepath.Join(dir, "yard.json")

	cfg, err := LoadConfigFor(scene)
	require.NoError(t, err)
	assert.Equal(t, collision.DefaultConfig(), cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "yard.collision.toml"), []byte("[hitch]\nmode = \"log\"\n"), 0o644))
	cfg, err = LoadConfigFor(scene)
	require.NoError(t, err)
	assert.Equal(t, collision.HitchLog, cfg.Hitch.Mode)
}
