package collision

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[overlap]
dedup_map_threshold = 8

[penetration]
large_mtd_inflation = 2.5

[hitch]
mode = "repeat"
threshold_ms = 2.5
max_repeats = 4
`))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Overlap.DedupMapThreshold)
	assert.Equal(t, float32(2.5), cfg.Penetration.LargeMTDInflation)
	assert.Equal(t, float32(0.25), cfg.Penetration.SmallMTDInflation, "unset keys keep defaults")
	assert.Equal(t, 128, cfg.Query.HitBufferSize)
	assert.True(t, cfg.Query.TraceAsyncScene)
	assert.Equal(t, HitchRepeat, cfg.Hitch.Mode)
	assert.Equal(t, 2500*time.Microsecond, cfg.Hitch.Threshold())
	assert.Equal(t, 4, cfg.Hitch.MaxRepeats)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfig([]byte("[overlap]\nthreshold = 3\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = ParseConfig([]byte("[hitch]\nmode = \"sometimes\"\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("[penetration]\nmax_overlap_triangles = 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseConfig([]byte("[query]\nhit_buffer_size = -1\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collision.toml")
	require.NoError(t, os.WriteFile(path, []byte("[query]\ntrace_async_scene = false\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Query.TraceAsyncScene)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestHitchModeText(t *testing.T) {
	for _, m := range []HitchMode{HitchOff, HitchLog, HitchRepeat} {
		text, err := m.MarshalText()
		require.NoError(t, err)
		var back HitchMode
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, m, back)
	}
	var m HitchMode
	require.NoError(t, m.UnmarshalText([]byte("LOG")))
	assert.Equal(t, HitchLog, m)
}
