package physics

import (
	"sync/atomic"

	"scenequery/internal/geom"
)

// Material is a physical surface description referenced by shapes.
type Material struct {
	Name        string
	Friction    float32
	Restitution float32
}

var nextShapeID atomic.Uint64

// Shape is one piece of collision geometry attached to an actor.
type Shape struct {
	ID          uint64
	QueryFilter FilterData
	// UserData links the shape back to its owner.
	UserData any

	geometry  geom.Geometry
	localPose geom.Transform
	materials []*Material
	actor     *Actor
}

func newShape(g geom.Geometry, localPose geom.Transform, materials []*Material) *Shape {
	return &Shape{
		ID:        nextShapeID.Add(1),
		geometry:  g,
		localPose: localPose,
		materials: materials,
	}
}

func (s *Shape) Geometry() geom.Geometry         { return s.geometry }
func (s *Shape) LocalPose() geom.Transform       { return s.localPose }
func (s *Shape) Actor() *Actor                   { return s.actor }
func (s *Shape) Materials() []*Material          { return s.materials }
func (s *Shape) SetQueryFilterData(f FilterData) { s.QueryFilter = f }

// WorldPose is the actor pose composed with the shape's local pose.
func (s *Shape) WorldPose() geom.Transform {
	if s.actor == nil {
		return s.localPose
	}
	return s.actor.pose.Mul(s.localPose)
}

func (s *Shape) WorldBounds() geom.AABB {
	return geom.WorldBounds(s.geometry, s.WorldPose())
}

// MaterialFromInternalFaceIndex resolves the material for a hit face. Triangle
// meshes and heightfields carry per-triangle material slots; every other
// geometry has a single material regardless of face.
func (s *Shape) MaterialFromInternalFaceIndex(face uint32) *Material {
	if len(s.materials) == 0 {
		return nil
	}
	if face == InvalidFaceIndex {
		return s.materials[0]
	}
	slot := -1
	switch g := s.geometry.(type) {
	case geom.TriangleMesh:
		if g.Mesh != nil && int(face) < len(g.Mesh.Materials) {
			slot = int(g.Mesh.Materials[face])
		}
	case geom.HeightField:
		if g.Field != nil && int(face) < len(g.Field.Materials) {
			slot = int(g.Field.Material(int(face)))
		}
	}
	if slot < 0 {
		return s.materials[0]
	}
	if slot >= len(s.materials) {
		return nil
	}
	return s.materials[slot]
}
