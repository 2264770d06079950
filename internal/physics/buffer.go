package physics

import "math"

// HitBuffer collects the result of one query: at most one blocking hit plus
// the touches nearer than it. Touches are held in a fixed-capacity slice, or a
// growable one when the buffer is created with maxTouches <= 0. Distance is the
// running cutoff; hits farther than it are rejected during traversal.
type HitBuffer[H QueryHit] struct {
	Block      H
	HasBlock   bool
	Touches    []H
	Overflowed bool

	maxTouches int
	distance   float32
}

func NewHitBuffer[H QueryHit](maxTouches int) *HitBuffer[H] {
	b := &HitBuffer[H]{maxTouches: maxTouches, distance: math.MaxFloat32}
	if maxTouches > 0 {
		b.Touches = make([]H, 0, maxTouches)
	}
	return b
}

// Reset empties the buffer and sets the cutoff distance.
func (b *HitBuffer[H]) Reset(maxDistance float32) {
	var zero H
	b.Block = zero
	b.HasBlock = false
	b.Touches = b.Touches[:0]
	b.Overflowed = false
	b.distance = maxDistance
}

func (b *HitBuffer[H]) Distance() float32 { return b.distance }

// Growable reports whether touches beyond the initial capacity are kept.
func (b *HitBuffer[H]) Growable() bool { return b.maxTouches <= 0 }

func (b *HitBuffer[H]) NumHits() int {
	n := len(b.Touches)
	if b.HasBlock {
		n++
	}
	return n
}

// Hits returns touches followed by the blocking hit, if any.
func (b *HitBuffer[H]) Hits() []H {
	out := make([]H, 0, b.NumHits())
	out = append(out, b.Touches...)
	if b.HasBlock {
		out = append(out, b.Block)
	}
	return out
}

// Insert adds a classified hit. A block nearer than the cutoff replaces the
// current block and drops touches beyond it. A touch is kept when it is not
// beyond the cutoff.
func (b *HitBuffer[H]) Insert(hit H, kind QueryHitType) bool {
	d := hit.HitDistance()
	switch kind {
	case HitBlock:
		if b.HasBlock && d >= b.Block.HitDistance() {
			return false
		}
		if d > b.distance {
			return false
		}
		b.Block = hit
		b.HasBlock = true
		b.distance = d
		kept := b.Touches[:0]
		for _, t := range b.Touches {
			if t.HitDistance() <= d {
				kept = append(kept, t)
			}
		}
		b.Touches = kept
		return true
	case HitTouch:
		if d > b.distance {
			return false
		}
		if b.maxTouches > 0 && len(b.Touches) >= b.maxTouches {
			b.Overflowed = true
			return false
		}
		b.Touches = append(b.Touches, hit)
		return true
	}
	return false
}

// Clone returns an independent copy, used to replay a query from the same state.
func (b *HitBuffer[H]) Clone() *HitBuffer[H] {
	c := *b
	if b.maxTouches > 0 {
		c.Touches = make([]H, len(b.Touches), b.maxTouches)
	} else {
		c.Touches = make([]H, len(b.Touches))
	}
	copy(c.Touches, b.Touches)
	return &c
}
