package world

import (
	log "github.com/sirupsen/logrus"

	"scenequery/internal/collision"
	"scenequery/internal/components"
	"scenequery/internal/engine"
	"scenequery/internal/physics"
	"scenequery/internal/sqaccel"
)

// World ties a GameObject scene to the physics scenes its colliders live in
// and the query layer that reads them.
type World struct {
	Scene *engine.Scene
	Sync  *physics.Scene
	// Async holds objects marked async in scene files. Queries reach it when
	// tracing the async scene is enabled.
	Async *physics.Scene
	// Accel holds collider instances. It is queried together with Sync.
	Accel *sqaccel.Accelerator
	Query *collision.World

	log     log.FieldLogger
	started bool
}

type Options struct {
	Config collision.Config
	// CellSize is the native grid cell size of both physics scenes; zero uses the default.
	CellSize float32
	Logger   log.FieldLogger
}

func DefaultOptions() Options {
	return Options{Config: collision.DefaultConfig(), CellSize: physics.DefaultCellSize}
}

func New(name string, opts Options) *World {
	if opts.CellSize <= 0 {
		opts.CellSize = physics.DefaultCellSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	w := &World{
		Scene: engine.NewScene(name),
		Sync:  physics.NewSceneWithCellSize(name, opts.CellSize),
		Async: physics.NewSceneWithCellSize(name+"_async", opts.CellSize),
		Accel: sqaccel.New(name + "_instances"),
		log:   logger,
	}
	w.Sync.SetAccelerator(sqaccel.NewUnion(w.Sync.NativeAccelerator(), w.Accel))
	w.Query = collision.NewWorld(w.Sync, w.Async, opts.Config, logger)
	w.Scene.ObjectRemoved.AddListener(func(g *engine.GameObject) {
		w.log.WithFields(log.Fields{"object": g.Name, "uid": g.UID}).Debug("Physics: object removed")
	})
	return w
}

// AddObject binds g and its children to a physics scene and adds it to the
// world. Objects added after Start are started immediately.
func (w *World) AddObject(g *engine.GameObject, async bool) {
	scene := w.Sync
	if async {
		scene = w.Async
	}
	w.bind(g, scene)
	w.Scene.AddGameObject(g)
	if w.started {
		g.Start()
	}
}

func (w *World) bind(g *engine.GameObject, scene *physics.Scene) {
	for _, col := range engine.GetComponents[*components.PrimitiveCollider](g) {
		col.InitPhysics(scene, w.Accel)
	}
	for _, m := range engine.GetComponents[*CharacterMover](g) {
		m.Bind(w.Query)
	}
	for _, child := range g.Children {
		w.bind(child, scene)
	}
}

// Start creates every collider's physics body.
func (w *World) Start() {
	w.Scene.Start()
	w.started = true
	w.log.WithFields(log.Fields{
		"scene":     w.Scene.Name,
		"objects":   len(w.Scene.GameObjects),
		"sync":      len(w.Sync.Actors()),
		"async":     len(w.Async.Actors()),
		"instances": w.Accel.Len(),
	}).Info("Physics: world started")
}

func (w *World) Update(deltaTime float32) {
	w.Scene.Update(deltaTime)
}

// Remove destroys g, releasing its bodies.
func (w *World) Remove(g *engine.GameObject) {
	g.Destroy()
}
