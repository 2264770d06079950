package collision

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidConfig = errors.New("invalid collision config")

// HitchMode selects what happens when a query runs longer than the hitch threshold.
type HitchMode uint8

const (
	HitchOff HitchMode = iota
	// HitchLog logs slow queries.
	HitchLog
	// HitchRepeat logs slow queries and replays them from a snapshot to time them again.
	HitchRepeat
)

func (m HitchMode) String() string {
	switch m {
	case HitchLog:
		return "log"
	case HitchRepeat:
		return "repeat"
	}
	return "off"
}

func (m HitchMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *HitchMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "off", "":
		*m = HitchOff
	case "log":
		*m = HitchLog
	case "repeat":
		*m = HitchRepeat
	default:
		return fmt.Errorf("unknown hitch mode %q", text)
	}
	return nil
}

type OverlapConfig struct {
	// DedupMapThreshold is the result count at which overlap merging switches
	// from a linear scan to a map.
	DedupMapThreshold int `toml:"dedup_map_threshold"`
}

type PenetrationConfig struct {
	SmallMTDInflation        float32 `toml:"small_mtd_inflation"`
	LargeMTDInflation        float32 `toml:"large_mtd_inflation"`
	OverlapTriangleInflation float32 `toml:"overlap_triangle_inflation"`
	MaxOverlapTriangles      int     `toml:"max_overlap_triangles"`
}

type QueryConfig struct {
	// HitBufferSize caps touches per scene in multi queries; 0 grows without limit.
	HitBufferSize   int  `toml:"hit_buffer_size"`
	TraceAsyncScene bool `toml:"trace_async_scene"`
}

type HitchConfig struct {
	Mode        HitchMode `toml:"mode"`
	ThresholdMS float64   `toml:"threshold_ms"`
	MaxRepeats  int       `toml:"max_repeats"`
}

func (h HitchConfig) Threshold() time.Duration {
	return time.Duration(h.ThresholdMS * float64(time.Millisecond))
}

// Config holds the collision tunables. It is passed to the World and Converter
// at construction and not changed afterwards.
type Config struct {
	Overlap     OverlapConfig     `toml:"overlap"`
	Penetration PenetrationConfig `toml:"penetration"`
	Query       QueryConfig       `toml:"query"`
	Hitch       HitchConfig       `toml:"hitch"`
}

func DefaultConfig() Config {
	return Config{
		Overlap: OverlapConfig{DedupMapThreshold: 3},
		Penetration: PenetrationConfig{
			SmallMTDInflation:        0.25,
			LargeMTDInflation:        1.75,
			OverlapTriangleInflation: 0.25,
			MaxOverlapTriangles:      64,
		},
		Query: QueryConfig{HitBufferSize: 128, TraceAsyncScene: true},
		Hitch: HitchConfig{Mode: HitchOff, ThresholdMS: 5, MaxRepeats: 1},
	}
}

func (c Config) Validate() error {
	switch {
	case c.Overlap.DedupMapThreshold < 0:
		return fmt.Errorf("%w: dedup_map_threshold %d is negative", ErrInvalidConfig, c.Overlap.DedupMapThreshold)
	case c.Penetration.SmallMTDInflation < 0 || c.Penetration.LargeMTDInflation < 0 || c.Penetration.OverlapTriangleInflation < 0:
		return fmt.Errorf("%w: inflations must not be negative", ErrInvalidConfig)
	case c.Penetration.MaxOverlapTriangles <= 0:
		return fmt.Errorf("%w: max_overlap_triangles must be positive", ErrInvalidConfig)
	case c.Query.HitBufferSize < 0:
		return fmt.Errorf("%w: hit_buffer_size %d is negative", ErrInvalidConfig, c.Query.HitBufferSize)
	case c.Hitch.ThresholdMS < 0 || c.Hitch.MaxRepeats < 0:
		return fmt.Errorf("%w: hitch threshold and repeats must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ParseConfig decodes TOML over the defaults. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse collision config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read collision config: %w", err)
	}
	return ParseConfig(data)
}
