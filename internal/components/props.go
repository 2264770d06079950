package components

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Scene files arrive as JSON (float64 numbers) or YAML (int or float64).
func toFloat(v any) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	case uint64:
		return float32(n), true
	}
	return 0, false
}

func propFloat(props map[string]any, key string, fallback float32) (float32, error) {
	v, ok := props[key]
	if !ok {
		return fallback, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%s: expected number, got %T", key, v)
	}
	return f, nil
}

func propBool(props map[string]any, key string, fallback bool) (bool, error) {
	v, ok := props[key]
	if !ok {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected bool, got %T", key, v)
	}
	return b, nil
}

func propString(props map[string]any, key, fallback string) (string, error) {
	v, ok := props[key]
	if !ok {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}

func toVec3(v any) (rl.Vector3, bool) {
	list, ok := v.([]any)
	if !ok || len(list) != 3 {
		return rl.Vector3{}, false
	}
	var out [3]float32
	for i, item := range list {
		f, ok := toFloat(item)
		if !ok {
			return rl.Vector3{}, false
		}
		out[i] = f
	}
	return rl.Vector3{X: out[0], Y: out[1], Z: out[2]}, true
}

func propVec3(props map[string]any, key string, fallback rl.Vector3) (rl.Vector3, error) {
	v, ok := props[key]
	if !ok {
		return fallback, nil
	}
	vec, ok := toVec3(v)
	if !ok {
		return rl.Vector3{}, fmt.Errorf("%s: expected [x, y, z]", key)
	}
	return vec, nil
}

func propVec3List(props map[string]any, key string) ([]rl.Vector3, error) {
	v, ok := props[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list", key)
	}
	out := make([]rl.Vector3, 0, len(list))
	for i, item := range list {
		vec, ok := toVec3(item)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected [x, y, z]", key, i)
		}
		out = append(out, vec)
	}
	return out, nil
}

func propIntList(props map[string]any, key string) ([]int, error) {
	v, ok := props[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list", key)
	}
	out := make([]int, 0, len(list))
	for i, item := range list {
		f, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected number", key, i)
		}
		out = append(out, int(f))
	}
	return out, nil
}
