package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"scenequery/internal/collision"
	"scenequery/internal/engine"
)

var (
	ErrSceneFormat = errors.New("unsupported scene file format")
	ErrMissingType = errors.New("component has no type")
)

// --- File types ---

// SceneFile is the on-disk scene description. JSON and YAML share one layout.
type SceneFile struct {
	Name     string      `json:"name" yaml:"name"`
	CellSize float32     `json:"cellSize,omitempty" yaml:"cellSize,omitempty"`
	Objects  []ObjectDef `json:"objects" yaml:"objects"`
}

type ObjectDef struct {
	Name     string     `json:"name" yaml:"name"`
	Tags     []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Position [3]float32 `json:"position" yaml:"position"`
	Rotation [3]float32 `json:"rotation" yaml:"rotation"`
	Scale    [3]float32 `json:"scale" yaml:"scale"`
	// Async places the object's bodies in the async scene.
	Async bool `json:"async,omitempty" yaml:"async,omitempty"`
	// Components are registered component props keyed by "type".
	Components []map[string]any `json:"components" yaml:"components"`
	Children   []ObjectDef      `json:"children,omitempty" yaml:"children,omitempty"`
}

// --- Parsing ---

// ParseSceneFile decodes data as "json" or "yaml".
func ParseSceneFile(data []byte, format string) (*SceneFile, error) {
	var sf SceneFile
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parse scene: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parse scene: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrSceneFormat, format)
	}
	return &sf, nil
}

// ReadSceneFile picks the format from the file extension.
func ReadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseSceneFile(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// --- Loading ---

// LoadSceneFile reads path and builds a started world from it.
func LoadSceneFile(path string, opts Options) (*World, error) {
	sf, err := ReadSceneFile(path)
	if err != nil {
		return nil, err
	}
	if sf.Name == "" {
		sf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Build(sf, opts)
}

// Build creates a world from a parsed scene file and starts it.
func Build(sf *SceneFile, opts Options) (*World, error) {
	if sf.CellSize > 0 {
		opts.CellSize = sf.CellSize
	}
	w := New(sf.Name, opts)
	for i := range sf.Objects {
		def := &sf.Objects[i]
		g, err := buildObject(def)
		if err != nil {
			return nil, err
		}
		w.AddObject(g, def.Async)
	}
	w.Start()
	return w, nil
}

func buildObject(def *ObjectDef) (*engine.GameObject, error) {
	g := engine.NewGameObject(def.Name)
	g.Tags = def.Tags
	g.Transform.Position = vec3(def.Position)
	g.Transform.Rotation = vec3(def.Rotation)

	// Default scale to 1 if zero
	if def.Scale != [3]float32{} {
		g.Transform.Scale = vec3(def.Scale)
	}

	for i, props := range def.Components {
		typ, _ := props["type"].(string)
		if typ == "" {
			return nil, fmt.Errorf("object %q component %d: %w", def.Name, i, ErrMissingType)
		}
		c, err := engine.CreateComponent(typ, props)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", def.Name, err)
		}
		g.AddComponent(c)
	}

	for i := range def.Children {
		child, err := buildObject(&def.Children[i])
		if err != nil {
			return nil, err
		}
		g.AddChild(child)
	}
	return g, nil
}

func vec3(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// LoadConfigFor returns the collision config next to a scene file
// (<scene>.collision.toml) when one exists, or the defaults.
func LoadConfigFor(scenePath string) (collision.Config, error) {
	path := strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + ".collision.toml"
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return collision.DefaultConfig(), nil
	}
	return collision.LoadConfig(path)
}
