package engine

type Scene struct {
	Name        string
	GameObjects []*GameObject

	// ObjectAdded and ObjectRemoved fire for top-level objects and their children.
	ObjectAdded   Event[*GameObject]
	ObjectRemoved Event[*GameObject]

	uidMap map[uint64]*GameObject
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
		uidMap:      make(map[uint64]*GameObject),
	}
}

func (s *Scene) AddGameObject(g *GameObject) {
	s.GameObjects = append(s.GameObjects, g)
	s.register(g)
}

func (s *Scene) register(g *GameObject) {
	if s.uidMap == nil {
		s.uidMap = make(map[uint64]*GameObject)
	}
	g.Scene = s
	s.uidMap[g.UID] = g
	s.ObjectAdded.Invoke(g)
	for _, child := range g.Children {
		s.register(child)
	}
}

func (s *Scene) unregister(g *GameObject) {
	for _, child := range g.Children {
		s.unregister(child)
	}
	delete(s.uidMap, g.UID)
	g.Scene = nil
	s.ObjectRemoved.Invoke(g)
}

// RemoveGameObject removes g and its descendants.
func (s *Scene) RemoveGameObject(g *GameObject) {
	if g.Scene != s {
		return
	}
	kept := s.GameObjects[:0]
	for _, obj := range s.GameObjects {
		if !isDescendant(obj, g) {
			kept = append(kept, obj)
		}
	}
	clear(s.GameObjects[len(kept):])
	s.GameObjects = kept
	s.unregister(g)
}

func isDescendant(obj, root *GameObject) bool {
	for p := obj; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// FindByName searches top-level objects in order, each before its children.
func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if found := findByName(g, name); found != nil {
			return found
		}
	}
	return nil
}

func findByName(g *GameObject, name string) *GameObject {
	if g.Name == name {
		return g
	}
	for _, child := range g.Children {
		if found := findByName(child, name); found != nil {
			return found
		}
	}
	return nil
}

// FindByUID looks up any object in the scene, children included.
func (s *Scene) FindByUID(uid uint64) *GameObject {
	return s.uidMap[uid]
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

func (s *Scene) Start() {
	for _, g := range s.GameObjects {
		g.Start()
	}
}

func (s *Scene) Update(deltaTime float32) {
	for _, g := range s.GameObjects {
		g.Update(deltaTime)
	}
}
