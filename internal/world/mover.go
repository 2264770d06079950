package world

import (
	"encoding/json"
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/collision"
	"scenequery/internal/engine"
	"scenequery/internal/filter"
	"scenequery/internal/geom"
)

func init() {
	engine.RegisterComponent("CharacterMover", moverFactory)
}

// CharacterMover moves its GameObject as an upright capsule that slides
// along whatever it sweeps into. Z is up.
type CharacterMover struct {
	engine.BaseComponent

	Radius     float32
	HalfHeight float32
	// SlopeLimit is the steepest walkable surface, in degrees.
	SlopeLimit float32
	// SkinWidth is the gap kept between the capsule and what it hits.
	SkinWidth float32
	MaxSlides int
	Channel   filter.Channel

	UseGravity bool
	Gravity    float32 // positive = down

	query    *collision.World
	velocity rl.Vector3
	grounded bool
}

func NewCharacterMover() *CharacterMover {
	return &CharacterMover{
		Radius:     0.4,
		HalfHeight: 0.5,
		SlopeLimit: 45,
		SkinWidth:  0.01,
		MaxSlides:  4,
		Channel:    filter.Pawn,
		UseGravity: true,
		Gravity:    20,
	}
}

type moverDef struct {
	Radius     *float32 `json:"radius"`
	HalfHeight *float32 `json:"halfHeight"`
	SlopeLimit *float32 `json:"slopeLimit"`
	SkinWidth  *float32 `json:"skinWidth"`
	MaxSlides  *int     `json:"maxSlides"`
	Channel    string   `json:"channel"`
	UseGravity *bool    `json:"useGravity"`
	Gravity    *float32 `json:"gravity"`
}

func moverFactory(props map[string]any) (engine.Component, error) {
	// Props come from JSON or YAML; a JSON round trip normalizes numbers.
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	var def moverDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("mover props: %w", err)
	}
	m := NewCharacterMover()
	setIf(&m.Radius, def.Radius)
	setIf(&m.HalfHeight, def.HalfHeight)
	setIf(&m.SlopeLimit, def.SlopeLimit)
	setIf(&m.SkinWidth, def.SkinWidth)
	setIf(&m.MaxSlides, def.MaxSlides)
	setIf(&m.UseGravity, def.UseGravity)
	setIf(&m.Gravity, def.Gravity)
	if def.Channel != "" {
		if m.Channel, err = filter.ParseChannel(def.Channel); err != nil {
			return nil, err
		}
	}
	if err := geom.Validate(m.capsule()); err != nil {
		return nil, err
	}
	return m, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Bind sets the query world used for sweeps. An unbound mover moves freely.
func (c *CharacterMover) Bind(w *collision.World) { c.query = w }

func (c *CharacterMover) capsule() geom.Capsule {
	return geom.Capsule{Radius: c.Radius, HalfHeight: c.HalfHeight}
}

// Move sweeps the capsule along motion, sliding along blocking surfaces, and
// returns the displacement actually applied.
func (c *CharacterMover) Move(motion rl.Vector3) rl.Vector3 {
	g := c.GetGameObject()
	if g == nil {
		return rl.Vector3{}
	}
	if c.query == nil {
		g.Transform.Position = rl.Vector3Add(g.Transform.Position, motion)
		return motion
	}

	params := collision.DefaultQueryParams()
	params.TraceTag = "CharacterMover"
	params.AddIgnoredActor(g)
	responses := collision.DefaultResponseParams()
	walkable := math32.Cos(c.SlopeLimit * rl.Deg2rad)

	start := g.Transform.Position
	pos := start
	remaining := motion
	for range c.MaxSlides {
		length := rl.Vector3Length(remaining)
		if length < geom.KindaSmallNumber {
			break
		}
		end := rl.Vector3Add(pos, remaining)

		var hit collision.HitResult
		if !c.query.GeomSweepSingle(&hit, c.capsule(), rl.QuaternionIdentity(), pos, end, c.Channel, &params, responses, filter.ObjectQueryParams{}) {
			pos = end
			break
		}
		if hit.Normal.Z >= walkable {
			c.grounded = true
			c.velocity.Z = min(c.velocity.Z, 0)
		}
		if hit.StartPenetrating {
			// Depenetrate first; the motion is retried from the new position.
			pos = rl.Vector3Add(pos, rl.Vector3Scale(hit.Normal, hit.PenetrationDepth+c.SkinWidth))
			continue
		}

		// Advance to the contact, then step off the surface by the skin width.
		pos = rl.Vector3Add(pos, rl.Vector3Scale(remaining, hit.Time))
		pos = rl.Vector3Add(pos, rl.Vector3Scale(hit.Normal, c.SkinWidth))

		// Slide the rest of the motion along the hit plane.
		left := rl.Vector3Scale(remaining, 1-hit.Time)
		remaining = rl.Vector3Subtract(left, rl.Vector3Scale(hit.Normal, rl.Vector3DotProduct(left, hit.Normal)))
	}

	g.Transform.Position = pos
	return rl.Vector3Subtract(pos, start)
}

// SimpleMove moves horizontally at speed and applies gravity.
func (c *CharacterMover) SimpleMove(speed rl.Vector3, deltaTime float32) {
	if c.UseGravity {
		if !c.grounded || c.velocity.Z > 0 {
			c.velocity.Z -= c.Gravity * deltaTime
		} else {
			// Keep pressing into the ground so it is detected next frame
			c.velocity.Z = -0.1
		}
	}

	motion := rl.Vector3{
		X: speed.X * deltaTime,
		Y: speed.Y * deltaTime,
		Z: c.velocity.Z * deltaTime,
	}

	c.grounded = false
	c.Move(motion)
}

func (c *CharacterMover) IsGrounded() bool { return c.grounded }

func (c *CharacterMover) Velocity() rl.Vector3 { return c.velocity }

// SetVelocityZ sets the vertical velocity, for jumps.
func (c *CharacterMover) SetVelocityZ(vz float32) { c.velocity.Z = vz }
