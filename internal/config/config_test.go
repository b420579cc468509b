package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/tetrs/internal/config"
	"github.com/plus3/tetrs/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TETRS_CONFIG_DIR", dir)
	t.Setenv("TETRS_SEED", "99")
	t.Setenv("TETRS_DEBUG_UI", "true")
	t.Setenv("TETRS_DB_PATH", "")

	e, err := config.ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, dir, e.Dir())
	assert.Equal(t, uint64(99), e.Seed)
	assert.True(t, e.DebugUI)
	assert.Equal(t, filepath.Join(dir, "scores.db"), e.Database())

	t.Setenv("TETRS_DB_PATH", "/tmp/other.db")
	e, err = config.ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", e.Database())
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("TETRS_SEED", "not-a-number")
	_, err := config.ParseEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadCreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	f, err := config.Load(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "settings.json"))
	assert.Equal(t, filepath.Join(dir, "settings.json"), f.Path())
	assert.Equal(t, game.DefaultSettings(), f.Settings())
	assert.Equal(t, "player", f.Player())
	assert.InDelta(t, 0.6, f.Volume(), 1e-9)
}

func TestSetPersists(t *testing.T) {
	dir := t.TempDir()
	f, err := config.Load(dir)
	require.NoError(t, err)

	require.NoError(t, f.Set(config.KeyStartLevel, "4"))
	require.NoError(t, f.Set(config.KeyGhost, "false"))
	require.NoError(t, f.Set(config.KeyPlayer, "ada"))
	require.NoError(t, f.Set(config.KeyLockDelay, "0.75"))

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	settings := reloaded.Settings()
	assert.Equal(t, 4, settings.StartLevel)
	assert.False(t, settings.Ghost)
	assert.Equal(t, 0.75, settings.LockDelay)
	assert.Equal(t, "ada", reloaded.Player())

	v, ok := reloaded.Get(config.KeyPlayer)
	assert.True(t, ok)
	assert.Equal(t, "ada", v)
}

func TestSetRejects(t *testing.T) {
	dir := t.TempDir()
	f, err := config.Load(dir)
	require.NoError(t, err)

	assert.ErrorContains(t, f.Set("colour", "red"), "unknown setting")
	assert.Error(t, f.Set(config.KeyWidth, "wide"))
	assert.Error(t, f.Set(config.KeyDASRepeat, "0"), "zero repeat would never stop shifting")
	assert.Equal(t, game.DefaultSettings().DASRepeat, f.Settings().DASRepeat)

	_, ok := f.Get("colour")
	assert.False(t, ok)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{"), 0o644))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := config.Keys()
	assert.Contains(t, keys, config.KeyGhost)
	assert.IsNonDecreasing(t, keys)
}
