// Package sqaccel provides a flat scene-query accelerator over opaque payloads
// and a union that composes several accelerators behind one interface.
package sqaccel

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	log "github.com/sirupsen/logrus"

	"scenequery/internal/geom"
	"scenequery/internal/physics"
)

// Entry is owned by the Accelerator that created it. The payload is opaque;
// callers remove the entry before the payload goes away.
type Entry struct {
	Payload any
	Bounds  geom.AABB

	node *Node
	slot int
}

// Node groups entries. The accelerator keeps a single node today.
type Node struct {
	Entries []*Entry
}

// Accelerator tests queries against every entry's bounds in turn.
type Accelerator struct {
	Name string
	root Node
}

func New(name string) *Accelerator {
	return &Accelerator{Name: name}
}

// AddEntry registers payload with its world bounds.
func (a *Accelerator) AddEntry(payload any, bounds geom.AABB) *Entry {
	e := &Entry{Payload: payload, Bounds: bounds, node: &a.root, slot: len(a.root.Entries)}
	a.root.Entries = append(a.root.Entries, e)
	log.WithFields(log.Fields{"accelerator": a.Name, "entries": len(a.root.Entries)}).Debug("SQ: entry added")
	return e
}

// RemoveEntry swap-removes e; entry order is not preserved.
func (a *Accelerator) RemoveEntry(e *Entry) bool {
	if e == nil || e.node != &a.root {
		return false
	}
	entries := a.root.Entries
	last := len(entries) - 1
	if e.slot != last {
		moved := entries[last]
		entries[e.slot] = moved
		moved.slot = e.slot
	}
	entries[last] = nil
	a.root.Entries = entries[:last]
	e.node = nil
	return true
}

// UpdateBounds moves an entry.
func (a *Accelerator) UpdateBounds(e *Entry, bounds geom.AABB) {
	e.Bounds = bounds
}

func (a *Accelerator) Len() int { return len(a.root.Entries) }

func (a *Accelerator) Raycast(q physics.RaycastQuery, buf *physics.HitBuffer[physics.RaycastHit], f physics.QueryFilter) bool {
	for _, e := range a.root.Entries {
		t := physics.Target{Payload: e.Payload}
		kind := f.Classify(t)
		if kind == physics.HitNone {
			continue
		}
		maxDist := min(q.MaxDistance, buf.Distance())
		dist, normal, inside, ok := e.Bounds.RayIntersect(q.Origin, q.Dir, maxDist)
		if !ok {
			continue
		}
		var h physics.RaycastHit
		h.Target = t
		h.Flags = physics.HitDefault
		h.FaceIndex = physics.InvalidFaceIndex
		h.Distance = dist
		h.Normal = normal
		h.Position = rl.Vector3Add(q.Origin, rl.Vector3Scale(q.Dir, dist))
		if inside {
			h.Flags |= physics.HitInitialOverlap
		}
		if physics.Report(buf, f, t, h, kind) {
			return true
		}
	}
	return false
}

// Sweep treats the query as its world bounds and sweeps that box against each
// entry, as a ray against the entry grown by the query half extents.
func (a *Accelerator) Sweep(q physics.SweepQuery, buf *physics.HitBuffer[physics.SweepHit], f physics.QueryFilter) bool {
	qb := geom.WorldBounds(q.Geometry, q.Pose)
	center := qb.Center()
	half := qb.Extents()

	for _, e := range a.root.Entries {
		t := physics.Target{Payload: e.Payload}
		kind := f.Classify(t)
		if kind == physics.HitNone {
			continue
		}
		var h physics.SweepHit
		h.Target = t
		h.Flags = physics.HitDefault
		h.FaceIndex = physics.InvalidFaceIndex

		if qb.Intersects(e.Bounds) {
			h.Flags |= physics.HitInitialOverlap
			h.Position = q.Pose.P
			h.Normal = rl.Vector3Negate(q.Dir)
			if q.HitFlags&physics.HitMTD != 0 {
				mtv := qb.Resolve(e.Bounds)
				if depth := rl.Vector3Length(mtv); depth > 0 {
					h.Normal = rl.Vector3Scale(mtv, 1/depth)
					h.Distance = -depth
				}
			}
		} else {
			grown := geom.AABB{Min: rl.Vector3Subtract(e.Bounds.Min, half), Max: rl.Vector3Add(e.Bounds.Max, half)}
			maxDist := min(q.MaxDistance, buf.Distance())
			dist, normal, _, ok := grown.RayIntersect(center, q.Dir, maxDist)
			if !ok {
				continue
			}
			h.Distance = dist
			h.Normal = normal
			moved := rl.Vector3Add(center, rl.Vector3Scale(q.Dir, dist))
			h.Position = rl.Vector3Subtract(moved, rl.Vector3Multiply(normal, half))
		}
		if physics.Report(buf, f, t, h, kind) {
			return true
		}
	}
	return false
}

func (a *Accelerator) Overlap(q physics.OverlapQuery, buf *physics.HitBuffer[physics.OverlapHit], f physics.QueryFilter) bool {
	qb := geom.WorldBounds(q.Geometry, q.Pose)
	for _, e := range a.root.Entries {
		if !qb.Intersects(e.Bounds) {
			continue
		}
		t := physics.Target{Payload: e.Payload}
		kind := f.Classify(t)
		if kind == physics.HitNone {
			continue
		}
		if physics.Report(buf, f, t, physics.OverlapHit{Target: t}, kind) {
			return true
		}
	}
	return false
}
