package physics

import (
	"scenequery/internal/geom"
)

// Actor is a rigid frame holding one or more shapes. Static actors never move
// after insertion; dynamic actors may be repositioned with Scene.SetActorPose.
type Actor struct {
	// UserData links the actor back to its owner.
	UserData any

	pose   geom.Transform
	static bool
	shapes []*Shape
	scene  *Scene
}

func NewStaticActor(pose geom.Transform) *Actor {
	return &Actor{pose: pose, static: true}
}

func NewDynamicActor(pose geom.Transform) *Actor {
	return &Actor{pose: pose}
}

// AttachShape adds a shape. Shapes must be attached before the actor joins a scene.
func (a *Actor) AttachShape(g geom.Geometry, localPose geom.Transform, materials ...*Material) *Shape {
	s := newShape(g, localPose, materials)
	s.actor = a
	a.shapes = append(a.shapes, s)
	return s
}

func (a *Actor) Shapes() []*Shape     { return a.shapes }
func (a *Actor) Pose() geom.Transform { return a.pose }
func (a *Actor) IsStatic() bool       { return a.static }
func (a *Actor) Scene() *Scene        { return a.scene }
