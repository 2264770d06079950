package components

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/engine"
	"scenequery/internal/filter"
	"scenequery/internal/geom"
	"scenequery/internal/physics"
)

func init() {
	engine.RegisterComponent("BoxCollider", boxColliderFactory)
	engine.RegisterComponent("SphereCollider", sphereColliderFactory)
	engine.RegisterComponent("CapsuleCollider", capsuleColliderFactory)
	engine.RegisterComponent("ConvexCollider", convexColliderFactory)
	engine.RegisterComponent("MeshCollider", meshColliderFactory)
	engine.RegisterComponent("HeightFieldCollider", heightFieldColliderFactory)
}

func boxColliderFactory(props map[string]any) (engine.Component, error) {
	size, err := propVec3(props, "size", rl.Vector3{X: 1, Y: 1, Z: 1})
	if err != nil {
		return nil, err
	}
	half, err := propVec3(props, "halfExtents", rl.Vector3Scale(size, 0.5))
	if err != nil {
		return nil, err
	}
	return newColliderFromProps(props, geom.Box{HalfExtents: half})
}

func sphereColliderFactory(props map[string]any) (engine.Component, error) {
	r, err := propFloat(props, "radius", 0.5)
	if err != nil {
		return nil, err
	}
	return newColliderFromProps(props, geom.Sphere{Radius: r})
}

func capsuleColliderFactory(props map[string]any) (engine.Component, error) {
	r, err := propFloat(props, "radius", 0.4)
	if err != nil {
		return nil, err
	}
	hh, err := propFloat(props, "halfHeight", 0.5)
	if err != nil {
		return nil, err
	}
	return newColliderFromProps(props, geom.Capsule{Radius: r, HalfHeight: hh})
}

func convexColliderFactory(props map[string]any) (engine.Component, error) {
	verts, err := propVec3List(props, "vertices")
	if err != nil {
		return nil, err
	}
	faces, err := propFaces(props, "faces")
	if err != nil {
		return nil, err
	}
	var hull *geom.ConvexHull
	if len(verts) == 0 {
		half, err := propVec3(props, "halfExtents", rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
		if err != nil {
			return nil, err
		}
		hull = geom.BoxHull(half)
	} else if hull, err = geom.NewConvexHull(verts, faces); err != nil {
		return nil, err
	}
	return newColliderFromProps(props, geom.ConvexMesh{Mesh: hull, Scale: rl.Vector3{X: 1, Y: 1, Z: 1}})
}

func meshColliderFactory(props map[string]any) (engine.Component, error) {
	verts, err := propVec3List(props, "vertices")
	if err != nil {
		return nil, err
	}
	flat, err := propIntList(props, "indices")
	if err != nil {
		return nil, err
	}
	if len(flat)%3 != 0 {
		return nil, fmt.Errorf("indices: length %d is not a multiple of 3", len(flat))
	}
	indices := make([][3]uint32, 0, len(flat)/3)
	for i := 0; i < len(flat); i += 3 {
		indices = append(indices, [3]uint32{uint32(flat[i]), uint32(flat[i+1]), uint32(flat[i+2])})
	}
	slots, err := propIntList(props, "faceMaterials")
	if err != nil {
		return nil, err
	}
	var materials []uint16
	for _, s := range slots {
		materials = append(materials, uint16(s))
	}
	mesh, err := geom.NewTriMesh(verts, indices, materials)
	if err != nil {
		return nil, err
	}
	doubleSided, err := propBool(props, "doubleSided", false)
	if err != nil {
		return nil, err
	}
	c, err := newColliderFromProps(props, geom.TriangleMesh{Mesh: mesh, Scale: rl.Vector3{X: 1, Y: 1, Z: 1}, DoubleSided: doubleSided})
	if err != nil {
		return nil, err
	}
	if _, ok := props["complexity"]; !ok {
		c.Complexity = filter.FlagComplexCollision
	}
	return c, nil
}

func heightFieldColliderFactory(props map[string]any) (engine.Component, error) {
	rows, err := propFloat(props, "rows", 0)
	if err != nil {
		return nil, err
	}
	cols, err := propFloat(props, "columns", 0)
	if err != nil {
		return nil, err
	}
	raw, err := propIntList(props, "heights")
	if err != nil {
		return nil, err
	}
	heights := make([]int16, len(raw))
	for i, h := range raw {
		heights[i] = int16(h)
	}
	holes, err := propIntList(props, "holes")
	if err != nil {
		return nil, err
	}
	var materials []uint8
	if len(holes) > 0 {
		materials = make([]uint8, 2*(int(rows)-1)*(int(cols)-1))
		for _, h := range holes {
			if h < 0 || h >= len(materials) {
				return nil, fmt.Errorf("holes: face %d out of range", h)
			}
			materials[h] = geom.HoleMaterial
		}
	}
	field, err := geom.NewHeightFieldData(int(rows), int(cols), heights, materials)
	if err != nil {
		return nil, err
	}
	hf := geom.HeightField{Field: field, HeightScale: 1, RowScale: 1, ColumnScale: 1}
	if hf.HeightScale, err = propFloat(props, "heightScale", 1); err != nil {
		return nil, err
	}
	if hf.RowScale, err = propFloat(props, "rowScale", 1); err != nil {
		return nil, err
	}
	if hf.ColumnScale, err = propFloat(props, "columnScale", 1); err != nil {
		return nil, err
	}
	c, err := newColliderFromProps(props, hf)
	if err != nil {
		return nil, err
	}
	if _, ok := props["complexity"]; !ok {
		c.Complexity = filter.FlagComplexCollision
	}
	return c, nil
}

func propFaces(props map[string]any, key string) ([][]int, error) {
	v, ok := props[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list", key)
	}
	faces := make([][]int, 0, len(list))
	for i, item := range list {
		face, err := propIntList(map[string]any{key: item}, key)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		faces = append(faces, face)
	}
	return faces, nil
}

// newColliderFromProps reads the settings shared by every collider type.
func newColliderFromProps(props map[string]any, g geom.Geometry) (*PrimitiveCollider, error) {
	if err := geom.Validate(g); err != nil {
		return nil, err
	}
	offset, err := propVec3(props, "offset", rl.Vector3{})
	if err != nil {
		return nil, err
	}
	rotation, err := propVec3(props, "rotation", rl.Vector3{})
	if err != nil {
		return nil, err
	}
	spec := ShapeSpec{Geometry: g, Offset: geom.NewTransform(offset, geom.FromEulerDegrees(rotation))}
	if spec.Bone, err = propString(props, "bone", ""); err != nil {
		return nil, err
	}
	if spec.Materials, err = propMaterials(props); err != nil {
		return nil, err
	}

	c := NewPrimitiveCollider(filter.WorldStatic, spec)
	objectType, err := propString(props, "objectType", "")
	if err != nil {
		return nil, err
	}
	if objectType != "" {
		if c.ObjectType, err = filter.ParseChannel(objectType); err != nil {
			return nil, err
		}
	}
	if c.Static, err = propBool(props, "static", true); err != nil {
		return nil, err
	}
	mask, err := propFloat(props, "mask", 0)
	if err != nil {
		return nil, err
	}
	c.Mask = filter.Mask(mask)
	if c.Complexity, err = propComplexity(props); err != nil {
		return nil, err
	}
	if c.Responses, err = propResponses(props); err != nil {
		return nil, err
	}
	if c.Instances, err = propVec3List(props, "instances"); err != nil {
		return nil, err
	}
	return c, nil
}

func propComplexity(props map[string]any) (uint32, error) {
	s, err := propString(props, "complexity", "both")
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(s) {
	case "simple":
		return filter.FlagSimpleCollision, nil
	case "complex":
		return filter.FlagComplexCollision, nil
	case "both":
		return filter.FlagSimpleCollision | filter.FlagComplexCollision, nil
	}
	return 0, fmt.Errorf("complexity: unknown value %q", s)
}

// propResponses reads "defaultResponse" and a "responses" map of channel to response.
func propResponses(props map[string]any) (filter.ResponseContainer, error) {
	var out filter.ResponseContainer
	def, err := propString(props, "defaultResponse", "block")
	if err != nil {
		return out, err
	}
	resp, err := filter.ParseResponse(def)
	if err != nil {
		return out, err
	}
	out.SetAll(resp)

	raw, ok := props["responses"]
	if !ok {
		return out, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return out, fmt.Errorf("responses: expected a map")
	}
	for name, v := range m {
		ch, err := filter.ParseChannel(name)
		if err != nil {
			return out, err
		}
		s, ok := v.(string)
		if !ok {
			return out, fmt.Errorf("responses.%s: expected string", name)
		}
		r, err := filter.ParseResponse(s)
		if err != nil {
			return out, err
		}
		out.Set(ch, r)
	}
	return out, nil
}

func propMaterials(props map[string]any) ([]*physics.Material, error) {
	if name, err := propString(props, "material", ""); err != nil {
		return nil, err
	} else if name != "" {
		return []*physics.Material{{Name: name}}, nil
	}
	raw, ok := props["materials"]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("materials: expected a list of names")
	}
	out := make([]*physics.Material, 0, len(list))
	for i, v := range list {
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("materials[%d]: expected string", i)
		}
		out = append(out, &physics.Material{Name: name})
	}
	return out, nil
}
