package components

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	log "github.com/sirupsen/logrus"

	"scenequery/internal/engine"
	"scenequery/internal/filter"
	"scenequery/internal/geom"
	"scenequery/internal/physics"
	"scenequery/internal/sqaccel"
)

var ErrNoShapes = errors.New("collider has no shapes")

// ShapeSpec is one shape of a collider, in the owner's local frame before
// the owner's scale is applied.
type ShapeSpec struct {
	Geometry  geom.Geometry
	Offset    geom.Transform
	Materials []*physics.Material
	// Bone groups shapes under a named body.
	Bone string
}

// PrimitiveCollider gives a GameObject collision. It either creates a physics
// actor holding its shapes, or, when Instances is set, registers one entry
// per instance with a scene-query accelerator.
type PrimitiveCollider struct {
	engine.BaseComponent
	ObjectType filter.Channel
	Responses  filter.ResponseContainer
	Mask       filter.Mask
	// Complexity is FlagSimpleCollision, FlagComplexCollision or both.
	Complexity uint32
	Static     bool
	Shapes     []ShapeSpec
	// Instances are local offsets of copies of the first shape.
	Instances []rl.Vector3

	scene    *physics.Scene
	accel    *sqaccel.Accelerator
	body     *BodyInstance
	bones    map[string]*BodyInstance
	entries  []*sqaccel.Entry
	lastPose geom.Transform
}

func NewPrimitiveCollider(objectType filter.Channel, shapes ...ShapeSpec) *PrimitiveCollider {
	return &PrimitiveCollider{
		ObjectType: objectType,
		Responses:  filter.BlockAll(),
		Complexity: filter.FlagSimpleCollision | filter.FlagComplexCollision,
		Static:     true,
		Shapes:     shapes,
	}
}

func NewBoxCollider(halfExtents rl.Vector3) *PrimitiveCollider {
	return NewPrimitiveCollider(filter.WorldStatic, ShapeSpec{Geometry: geom.Box{HalfExtents: halfExtents}, Offset: geom.Identity()})
}

func NewSphereCollider(radius float32) *PrimitiveCollider {
	return NewPrimitiveCollider(filter.WorldStatic, ShapeSpec{Geometry: geom.Sphere{Radius: radius}, Offset: geom.Identity()})
}

func NewCapsuleCollider(radius, halfHeight float32) *PrimitiveCollider {
	return NewPrimitiveCollider(filter.WorldStatic, ShapeSpec{Geometry: geom.Capsule{Radius: radius, HalfHeight: halfHeight}, Offset: geom.Identity()})
}

// NewMeshCollider collides with complex traces only, like static level geometry.
func NewMeshCollider(mesh *geom.TriMesh, doubleSided bool) *PrimitiveCollider {
	c := NewPrimitiveCollider(filter.WorldStatic, ShapeSpec{
		Geometry: geom.TriangleMesh{Mesh: mesh, Scale: rl.Vector3{X: 1, Y: 1, Z: 1}, DoubleSided: doubleSided},
		Offset:   geom.Identity(),
	})
	c.Complexity = filter.FlagComplexCollision
	return c
}

// InitPhysics sets where Start creates the body and where instances are registered.
func (c *PrimitiveCollider) InitPhysics(scene *physics.Scene, accel *sqaccel.Accelerator) {
	c.scene = scene
	c.accel = accel
}

func (c *PrimitiveCollider) Start() {
	if err := c.CreateBody(); err != nil {
		log.WithError(err).WithField("object", c.objectName()).Warn("Collider: body not created")
	}
}

func (c *PrimitiveCollider) Update(deltaTime float32) {
	if c.Static || c.body == nil || c.scene == nil {
		return
	}
	g := c.GetGameObject()
	if g == nil {
		return
	}
	pose := g.Pose()
	if pose == c.lastPose {
		return
	}
	if err := c.scene.SetActorPose(c.body.Actor, pose); err != nil {
		log.WithError(err).WithField("object", g.Name).Warn("Collider: pose sync failed")
		return
	}
	c.lastPose = pose
}

func (c *PrimitiveCollider) OnDestroy() {
	c.DestroyBody()
}

func (c *PrimitiveCollider) objectName() string {
	if g := c.GetGameObject(); g != nil {
		return g.Name
	}
	return ""
}

func (c *PrimitiveCollider) ownerID() uint32 {
	if g := c.GetGameObject(); g != nil {
		return uint32(g.UID)
	}
	return 0
}

// FilterData is the shape-side filter blob for every shape of this collider.
func (c *PrimitiveCollider) FilterData() physics.FilterData {
	return filter.CreateShapeFilterData(c.Mask, c.ownerID(), c.ObjectType, c.Responses, c.Complexity|filter.FlagReturnMaterial)
}

func (c *PrimitiveCollider) Body() *BodyInstance { return c.body }

// BoneBody returns the body created for a named bone.
func (c *PrimitiveCollider) BoneBody(bone string) *BodyInstance { return c.bones[bone] }

func (c *PrimitiveCollider) Entries() []*sqaccel.Entry { return c.entries }

func (c *PrimitiveCollider) pose() (geom.Transform, rl.Vector3) {
	g := c.GetGameObject()
	if g == nil {
		return geom.Identity(), rl.Vector3{X: 1, Y: 1, Z: 1}
	}
	return g.Pose(), g.WorldScale()
}

// CreateBody builds the physics actor or the accelerator entries. It is a
// no-op when already created or when no target was set with InitPhysics.
func (c *PrimitiveCollider) CreateBody() error {
	if c.body != nil || len(c.entries) > 0 {
		return nil
	}
	if len(c.Shapes) == 0 {
		return ErrNoShapes
	}
	if len(c.Instances) > 0 {
		return c.registerInstances()
	}
	if c.scene == nil {
		return nil
	}

	pose, scale := c.pose()
	var actor *physics.Actor
	if c.Static {
		actor = physics.NewStaticActor(pose)
	} else {
		actor = physics.NewDynamicActor(pose)
	}
	body := &BodyInstance{Owner: c, Actor: actor, ItemIndex: NoItem}
	actor.UserData = body

	fd := c.FilterData()
	bones := make(map[string]*BodyInstance)
	for _, def := range c.Shapes {
		shape := actor.AttachShape(scaledGeometry(def.Geometry, scale), scaledOffset(def.Offset, scale), def.Materials...)
		shape.SetQueryFilterData(fd)
		if def.Bone == "" {
			continue
		}
		bone, ok := bones[def.Bone]
		if !ok {
			bone = &BodyInstance{Owner: c, Actor: actor, BoneName: def.Bone, ItemIndex: NoItem}
			bones[def.Bone] = bone
		}
		shape.UserData = bone
	}
	if err := c.scene.AddActor(actor); err != nil {
		return fmt.Errorf("create body for %q: %w", c.objectName(), err)
	}
	c.body = body
	c.bones = bones
	c.lastPose = pose
	return nil
}

func (c *PrimitiveCollider) registerInstances() error {
	if c.accel == nil {
		return fmt.Errorf("instances of %q: no accelerator", c.objectName())
	}
	pose, scale := c.pose()
	def := c.Shapes[0]
	g := scaledGeometry(def.Geometry, scale)
	fd := c.FilterData()
	for i, offset := range c.Instances {
		local := geom.Translation(rl.Vector3Multiply(offset, scale)).Mul(scaledOffset(def.Offset, scale))
		bounds := geom.WorldBounds(g, pose.Mul(local))
		payload := &ItemPayload{Owner: c, Item: int32(i), Bone: def.Bone, Filter: fd}
		c.entries = append(c.entries, c.accel.AddEntry(payload, bounds))
	}
	return nil
}

// DestroyBody removes the actor from its scene and the instances from the accelerator.
func (c *PrimitiveCollider) DestroyBody() {
	if c.body != nil && c.scene != nil {
		if err := c.scene.RemoveActor(c.body.Actor); err != nil {
			log.WithError(err).WithField("object", c.objectName()).Warn("Collider: remove body failed")
		}
	}
	c.body = nil
	c.bones = nil
	for _, e := range c.entries {
		c.accel.RemoveEntry(e)
	}
	c.entries = nil
}

func scaledOffset(t geom.Transform, scale rl.Vector3) geom.Transform {
	return geom.NewTransform(rl.Vector3Multiply(t.P, scale), t.Q)
}

// scaledGeometry bakes an owner's world scale into a geometry. Spheres and
// capsule radii take the largest relevant component.
func scaledGeometry(g geom.Geometry, scale rl.Vector3) geom.Geometry {
	s := rl.Vector3{X: math32.Abs(scale.X), Y: math32.Abs(scale.Y), Z: math32.Abs(scale.Z)}
	switch t := g.(type) {
	case geom.Sphere:
		return geom.Sphere{Radius: t.Radius * max(s.X, s.Y, s.Z)}
	case geom.Box:
		return geom.Box{HalfExtents: rl.Vector3Multiply(t.HalfExtents, s)}
	case geom.Capsule:
		return geom.Capsule{Radius: t.Radius * max(s.X, s.Y), HalfHeight: t.HalfHeight * s.Z}
	case geom.ConvexMesh:
		t.Scale = rl.Vector3Multiply(t.Scale, s)
		return t
	case geom.TriangleMesh:
		t.Scale = rl.Vector3Multiply(t.Scale, s)
		return t
	case geom.HeightField:
		t.RowScale *= s.X
		t.ColumnScale *= s.Y
		t.HeightScale *= s.Z
		return t
	}
	return g
}
