package physics

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"scenequery/internal/geom"
)

var (
	ErrActorInScene = errors.New("actor already belongs to a scene")
	ErrActorMissing = errors.New("actor is not in this scene")
	ErrStaticActor  = errors.New("static actors cannot move")
)

// Scene owns actors and the native query structure. Queries may run
// concurrently under LockRead; structural changes take the write lock
// internally, so callers must not hold a read lock while mutating.
type Scene struct {
	Name string

	mu     sync.RWMutex
	actors []*Actor
	grid   *shapeGrid
	accel  SpatialAccelerator
}

func NewScene(name string) *Scene {
	return NewSceneWithCellSize(name, DefaultCellSize)
}

func NewSceneWithCellSize(name string, cellSize float32) *Scene {
	return &Scene{
		Name: name,
		grid: newShapeGrid(cellSize),
	}
}

func (s *Scene) LockRead()    { s.mu.RLock() }
func (s *Scene) UnlockRead()  { s.mu.RUnlock() }
func (s *Scene) LockWrite()   { s.mu.Lock() }
func (s *Scene) UnlockWrite() { s.mu.Unlock() }

func (s *Scene) AddActor(a *Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.scene != nil {
		return fmt.Errorf("add actor to %q: %w", s.Name, ErrActorInScene)
	}
	for _, shape := range a.shapes {
		if err := geom.Validate(shape.geometry); err != nil {
			return fmt.Errorf("add actor to %q: %w", s.Name, err)
		}
	}
	a.scene = s
	s.actors = append(s.actors, a)
	for _, shape := range a.shapes {
		s.grid.insert(shape)
	}
	log.WithFields(log.Fields{"scene": s.Name, "shapes": len(a.shapes), "static": a.static}).Debug("Physics: actor added")
	return nil
}

func (s *Scene) RemoveActor(a *Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.scene != s {
		return fmt.Errorf("remove actor from %q: %w", s.Name, ErrActorMissing)
	}
	for i, other := range s.actors {
		if other == a {
			s.actors = append(s.actors[:i], s.actors[i+1:]...)
			break
		}
	}
	for _, shape := range a.shapes {
		s.grid.remove(shape)
	}
	a.scene = nil
	return nil
}

// SetActorPose moves a dynamic actor and reindexes its shapes.
func (s *Scene) SetActorPose(a *Actor, pose geom.Transform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.scene != s {
		return fmt.Errorf("move actor in %q: %w", s.Name, ErrActorMissing)
	}
	if a.static {
		return fmt.Errorf("move actor in %q: %w", s.Name, ErrStaticActor)
	}
	a.pose = pose
	for _, shape := range a.shapes {
		s.grid.insert(shape)
	}
	return nil
}

// Actors returns a snapshot of the scene's actors. Callers hold the read lock.
func (s *Scene) Actors() []*Actor {
	return append([]*Actor(nil), s.actors...)
}

// SetAccelerator replaces the query path. Pass a union that includes
// NativeAccelerator to keep querying scene shapes; nil restores the native path.
func (s *Scene) SetAccelerator(acc SpatialAccelerator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accel = acc
}

// NativeAccelerator exposes the scene's own shape index as an accelerator.
func (s *Scene) NativeAccelerator() SpatialAccelerator {
	return nativeAccelerator{scene: s}
}

func (s *Scene) accelerator() SpatialAccelerator {
	if s.accel != nil {
		return s.accel
	}
	return nativeAccelerator{scene: s}
}

// Raycast runs a ray query. Callers hold the read lock. Returns whether a
// blocking hit was found.
func (s *Scene) Raycast(q RaycastQuery, buf *HitBuffer[RaycastHit], f QueryFilter) bool {
	s.accelerator().Raycast(q, buf, f)
	return buf.HasBlock
}

// Sweep runs a convex sweep. Callers hold the read lock.
func (s *Scene) Sweep(q SweepQuery, buf *HitBuffer[SweepHit], f QueryFilter) bool {
	s.accelerator().Sweep(q, buf, f)
	return buf.HasBlock
}

// Overlap runs a convex overlap. Callers hold the read lock.
func (s *Scene) Overlap(q OverlapQuery, buf *HitBuffer[OverlapHit], f QueryFilter) bool {
	s.accelerator().Overlap(q, buf, f)
	return buf.HasBlock
}
