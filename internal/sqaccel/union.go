package sqaccel

import (
	"scenequery/internal/physics"
)

// Union fans each query out to its children in registration order. All
// children write into the same hit buffer, so the union behaves like one
// accelerator holding every child's entries.
type Union struct {
	children []physics.SpatialAccelerator
}

func NewUnion(children ...physics.SpatialAccelerator) *Union {
	return &Union{children: children}
}

func (u *Union) Add(acc physics.SpatialAccelerator) {
	u.children = append(u.children, acc)
}

// Remove drops acc, keeping the order of the rest.
func (u *Union) Remove(acc physics.SpatialAccelerator) bool {
	for i, c := range u.children {
		if c == acc {
			u.children = append(u.children[:i], u.children[i+1:]...)
			return true
		}
	}
	return false
}

func (u *Union) Children() []physics.SpatialAccelerator { return u.children }

func (u *Union) Raycast(q physics.RaycastQuery, buf *physics.HitBuffer[physics.RaycastHit], f physics.QueryFilter) bool {
	for _, c := range u.children {
		if c.Raycast(q, buf, f) {
			return true
		}
	}
	return false
}

func (u *Union) Sweep(q physics.SweepQuery, buf *physics.HitBuffer[physics.SweepHit], f physics.QueryFilter) bool {
	for _, c := range u.children {
		if c.Sweep(q, buf, f) {
			return true
		}
	}
	return false
}

func (u *Union) Overlap(q physics.OverlapQuery, buf *physics.HitBuffer[physics.OverlapHit], f physics.QueryFilter) bool {
	for _, c := range u.children {
		if c.Overlap(q, buf, f) {
			return true
		}
	}
	return false
}
