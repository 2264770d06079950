package engine

import (
	"sync"
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject("Crate")

	if obj.Name != "Crate" || !obj.Active {
		t.Errorf("Expected an active object named Crate, got %q active=%v", obj.Name, obj.Active)
	}
	if obj.UID == 0 {
		t.Error("UID should not be 0")
	}
	if obj.Transform.Scale != (rl.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Expected unit scale, got %v", obj.Transform.Scale)
	}
}

// Query ignore lists key on UIDs, so objects created from worker goroutines
// must still get distinct ones.
func TestGameObjectUIDsUniqueAcrossGoroutines(t *testing.T) {
	const workers, perWorker = 8, 200
	uids := make(chan uint64, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				uids <- NewGameObject("Debris").UID
			}
		}()
	}
	wg.Wait()
	close(uids)

	seen := make(map[uint64]bool, workers*perWorker)
	for uid := range uids {
		if seen[uid] {
			t.Fatalf("UID %d handed out twice", uid)
		}
		seen[uid] = true
	}
}

func TestGameObjectHasTag(t *testing.T) {
	obj := NewGameObject("Gate")
	obj.Tags = []string{"static", "door"}

	if !obj.HasTag("door") {
		t.Error("HasTag should return true for existing tag")
	}
	if obj.HasTag("dynamic") {
		t.Error("HasTag should return false for non-existent tag")
	}
	if NewGameObject("Bare").HasTag("anything") {
		t.Error("HasTag should return false when Tags is empty")
	}
}

func TestGameObjectChildren(t *testing.T) {
	parent := NewGameObject("Crane")
	arm := NewGameObject("Arm")
	counterweight := NewGameObject("Counterweight")
	parent.AddChild(arm)
	parent.AddChild(counterweight)

	if arm.Parent != parent || len(parent.Children) != 2 {
		t.Fatalf("Expected two children under Crane, got %d", len(parent.Children))
	}

	parent.RemoveChild(arm)
	if len(parent.Children) != 1 || parent.Children[0] != counterweight {
		t.Errorf("Expected only Counterweight left, got %v", parent.Children)
	}
	if arm.Parent != nil {
		t.Error("Removed child should have nil parent")
	}
	parent.RemoveChild(arm)
	if len(parent.Children) != 1 {
		t.Error("Removing a non-child should do nothing")
	}
}

func TestWorldTransformFollowsParent(t *testing.T) {
	parent := NewGameObject("Rack")
	parent.Transform.Position = rl.Vector3{X: 10}
	parent.Transform.Rotation = rl.Vector3{Z: 90}
	parent.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
	child := NewGameObject("Shelf")
	child.Transform.Position = rl.Vector3{X: 1, Z: 1}
	child.Transform.Scale = rl.Vector3{X: 1, Y: 1, Z: 0.5}
	parent.AddChild(child)

	pos := child.WorldPosition()
	want := rl.Vector3{X: 10, Y: 2, Z: 2}
	if rl.Vector3Distance(pos, want) > 1e-4 {
		t.Errorf("Expected world position %v, got %v", want, pos)
	}
	if scale := child.WorldScale(); scale != (rl.Vector3{X: 2, Y: 2, Z: 1}) {
		t.Errorf("Expected world scale (2, 2, 1), got %v", scale)
	}
	if rot := child.WorldRotation(); rot.Z != 90 {
		t.Errorf("Expected inherited yaw 90, got %v", rot)
	}
}

func TestGameObjectComponents(t *testing.T) {
	obj := NewGameObject("Crate")
	if GetComponent[*destroyProbe](obj) != nil {
		t.Error("Expected nil for a missing component")
	}

	probe := &destroyProbe{}
	obj.AddComponent(probe)
	if probe.GetGameObject() != obj {
		t.Error("Component owner should be set")
	}
	if GetComponent[*destroyProbe](obj) != probe {
		t.Error("GetComponent failed to find component")
	}
	if len(obj.Components()) != 1 {
		t.Errorf("Expected 1 component, got %d", len(obj.Components()))
	}
}

func TestComponentAddedAfterStartIsStarted(t *testing.T) {
	obj := NewGameObject("Spawner")
	early := &updateCounter{}
	obj.AddComponent(early)
	obj.Start()
	obj.Start()

	late := &updateCounter{}
	obj.AddComponent(late)
	if early.started != 1 || late.started != 1 {
		t.Errorf("Expected one Start each, got %d and %d", early.started, late.started)
	}
}

type destroyProbe struct {
	BaseComponent
	destroyed int
}

func (d *destroyProbe) OnDestroy() { d.destroyed++ }

func TestGameObjectDestroy(t *testing.T) {
	scene := NewScene("Test")
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")
	parent.AddChild(child)
	probe := &destroyProbe{}
	childProbe := &destroyProbe{}
	parent.AddComponent(probe)
	child.AddComponent(childProbe)
	scene.AddGameObject(parent)

	parent.Destroy()
	parent.Destroy()

	if probe.destroyed != 1 || childProbe.destroyed != 1 {
		t.Errorf("Expected OnDestroy once each, got %d and %d", probe.destroyed, childProbe.destroyed)
	}
	if scene.FindByUID(child.UID) != nil {
		t.Error("Destroyed child still in scene")
	}
	if !child.IsDestroyed() {
		t.Error("Child should be destroyed with its parent")
	}
}

func TestGameObjectPose(t *testing.T) {
	parent := NewGameObject("Parent")
	parent.Transform.Position = rl.Vector3{X: 10}
	parent.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
	child := NewGameObject("Child")
	child.Transform.Position = rl.Vector3{Y: 1}
	parent.AddChild(child)

	pose := child.Pose()
	if pose.P.X != 10 || pose.P.Y != 2 || pose.P.Z != 0 {
		t.Errorf("Expected position (10,2,0), got %v", pose.P)
	}
	if math32.Abs(pose.Q.W) < 1-1e-6 {
		t.Errorf("Expected identity rotation, got %v", pose.Q)
	}

	parent.Transform.Rotation = rl.Vector3{Z: 90}
	pose = child.Pose()
	if math32.Abs(pose.P.X-8) > 1e-4 || math32.Abs(pose.P.Y) > 1e-4 {
		t.Errorf("Expected child rotated to (8,0,0), got %v", pose.P)
	}
	up := pose.Rotate(rl.Vector3{X: 1})
	if math32.Abs(up.Y-1) > 1e-4 {
		t.Errorf("Expected +X to map to +Y, got %v", up)
	}
}

func TestWorldOrientationComposesHierarchy(t *testing.T) {
	parent := NewGameObject("Turret")
	parent.Transform.Rotation = rl.Vector3{Z: 90}
	child := NewGameObject("Barrel")
	child.Transform.Rotation = rl.Vector3{Y: 90}
	parent.AddChild(child)

	if got := parent.Pose().Rotate(rl.Vector3{X: 1}); rl.Vector3Distance(got, rl.Vector3{Y: 1}) > 1e-5 {
		t.Errorf("Expected parent +X to face +Y, got %v", got)
	}
	// Pitch first in the child frame, then the parent's yaw.
	if got := child.Pose().Rotate(rl.Vector3{X: 1}); rl.Vector3Distance(got, rl.Vector3{Z: -1}) > 1e-5 {
		t.Errorf("Expected child +X to face -Z, got %v", got)
	}
	if got := child.Pose().Rotate(rl.Vector3{Y: 1}); rl.Vector3Distance(got, rl.Vector3{X: -1}) > 1e-5 {
		t.Errorf("Expected child +Y to face -X, got %v", got)
	}
}

func TestGetComponents(t *testing.T) {
	obj := NewGameObject("Test")
	obj.AddComponent(&destroyProbe{})
	obj.AddComponent(&BaseComponent{})
	obj.AddComponent(&destroyProbe{})

	if n := len(GetComponents[*destroyProbe](obj)); n != 2 {
		t.Errorf("Expected 2 probes, got %d", n)
	}
}
