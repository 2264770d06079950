package world

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenequery/internal/engine"
	"scenequery/internal/filter"
)

func yardPlayer(t *testing.T) (*World, *engine.GameObject, *CharacterMover) {
	t.Helper()
	w := loadYard(t)
	player := w.Scene.FindByName("Player")
	require.NotNil(t, player)
	mover := engine.GetComponent[*CharacterMover](player)
	require.NotNil(t, mover)
	return w, player, mover
}

func TestCharacterMoverFactory(t *testing.T) {
	_, _, mover := yardPlayer(t)
	assert.Equal(t, float32(0.4), mover.Radius)
	assert.Equal(t, filter.Pawn, mover.Channel)
	assert.True(t, mover.UseGravity)
	assert.Equal(t, 4, mover.MaxSlides)

	c, err := engine.CreateComponent("CharacterMover", map[string]any{"radius": 1, "useGravity": false, "maxSlides": 2})
	require.NoError(t, err)
	m := c.(*CharacterMover)
	assert.Equal(t, float32(1), m.Radius)
	assert.False(t, m.UseGravity)
	assert.Equal(t, 2, m.MaxSlides)

	_, err = engine.CreateComponent("CharacterMover", map[string]any{"radius": -1})
	assert.Error(t, err)
}

func TestCharacterMoverLands(t *testing.T) {
	_, player, mover := yardPlayer(t)

	moved := mover.Move(rl.Vector3{Z: -10})
	assert.InDelta(t, 0.91, player.Transform.Position.Z, 0.02, "stops a skin width above the floor")
	assert.InDelta(t, -2.09, moved.Z, 0.02)
	assert.True(t, mover.IsGrounded())
	assert.Zero(t, player.Transform.Position.X)
}

func TestCharacterMoverSlidesAlongWall(t *testing.T) {
	_, player, mover := yardPlayer(t)
	player.Transform.Position = rl.Vector3{Z: 2}

	mover.Move(rl.Vector3{X: 5, Y: 5})
	pos := player.Transform.Position
	assert.InDelta(t, 2.1, pos.X, 0.05, "held off the wall face at x=2.5")
	assert.InDelta(t, 5.0, pos.Y, 0.05, "the blocked motion slides along the wall")
	assert.InDelta(t, 2.0, pos.Z, 1e-3)
	assert.False(t, mover.IsGrounded(), "a wall is too steep to stand on")
}

func TestCharacterMoverGravity(t *testing.T) {
	_, player, mover := yardPlayer(t)

	for range 120 {
		mover.SimpleMove(rl.Vector3{X: 1}, 1.0/60)
	}
	assert.InDelta(t, 0.91, player.Transform.Position.Z, 0.05)
	assert.InDelta(t, 2.0, player.Transform.Position.X, 0.05)
	assert.LessOrEqual(t, mover.Velocity().Z, float32(0))

	mover.SetVelocityZ(5)
	mover.SimpleMove(rl.Vector3{}, 1.0/60)
	assert.Greater(t, player.Transform.Position.Z, float32(0.95))
}

func TestUnboundMoverMovesFreely(t *testing.T) {
	g := engine.NewGameObject("Ghost")
	m := NewCharacterMover()
	g.AddComponent(m)
	moved := m.Move(rl.Vector3{X: 1, Z: -3})
	assert.Equal(t, rl.Vector3{X: 1, Z: -3}, moved)
	assert.Equal(t, rl.Vector3{X: 1, Z: -3}, g.Transform.Position)
}
