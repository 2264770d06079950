package engine

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownComponent = errors.New("unknown component type")

// ComponentFactory creates a Component from scene-file props.
type ComponentFactory func(props map[string]any) (Component, error)

var componentRegistry = map[string]ComponentFactory{}

// RegisterComponent makes a component type available to scene files by name.
// Registering the same name twice is a programming error.
func RegisterComponent(name string, factory ComponentFactory) {
	if _, exists := componentRegistry[name]; exists {
		panic(fmt.Sprintf("component %q already registered", name))
	}
	componentRegistry[name] = factory
}

// CreateComponent builds a registered component.
func CreateComponent(name string, props map[string]any) (Component, error) {
	factory, ok := componentRegistry[name]
	if !ok {
		return nil, fmt.Errorf("create %q: %w", name, ErrUnknownComponent)
	}
	c, err := factory(props)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	return c, nil
}

// RegisteredComponents returns the registered names in sorted order.
func RegisteredComponents() []string {
	names := make([]string, 0, len(componentRegistry))
	for name := range componentRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
