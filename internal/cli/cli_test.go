package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/tetrs/internal/config"
	"github.com/plus3/tetrs/internal/game"
	"github.com/plus3/tetrs/internal/scores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TETRS_CONFIG_DIR", dir)
	for _, key := range []string{"TETRS_DB_PATH", "TETRS_SEED", "TETRS_PLAYER", "TETRS_DEBUG_UI"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigSetAndShow(t *testing.T) {
	dir := tempConfig(t)

	out, err := run(t, "config", "set", config.KeyStartLevel, "5")
	require.NoError(t, err)
	assert.Contains(t, out, "start_level is now")

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "settings.json"))
	for _, key := range config.Keys() {
		assert.Contains(t, out, key)
	}

	file, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, file.Settings().StartLevel)
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	tempConfig(t)

	_, err := run(t, "config", "set", "speed", "9")
	assert.ErrorContains(t, err, "unknown setting")

	_, err = run(t, "config", "set", config.KeyWidth, "wide")
	assert.Error(t, err)

	_, err = run(t, "config", "set", config.KeyWidth)
	assert.Error(t, err)
}

func TestScoresEmpty(t *testing.T) {
	tempConfig(t)

	out, err := run(t, "scores")
	require.NoError(t, err)
	assert.Contains(t, out, "No scores recorded yet")
}

func TestScoresListsBestFirst(t *testing.T) {
	dir := tempConfig(t)

	store, err := scores.Open(filepath.Join(dir, "scores.db"))
	require.NoError(t, err)
	ctx := context.Background()
	for _, r := range []struct {
		player string
		score  int
	}{{"ada", 1200}, {"bob", 48000}, {"cy", 300}} {
		_, err := store.Record(ctx, r.player, game.Result{Score: r.score, Lines: 3})
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())

	out, err := run(t, "scores", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "48,000")
	assert.Contains(t, out, "1,200")
	assert.NotContains(t, out, "cy")
	assert.Less(t, bytes.Index([]byte(out), []byte("bob")), bytes.Index([]byte(out), []byte("ada")))
	assert.Contains(t, out, "of 3 runs")
}

func TestBench(t *testing.T) {
	tempConfig(t)

	out, err := run(t, "bench", "--games", "2", "--workers", "2", "--max-pieces", "20", "--seed", "3", "--per-game")
	require.NoError(t, err)
	assert.Contains(t, out, "# Bench Report")
	assert.Contains(t, out, "**Seeds:** 3..4")
	assert.Contains(t, out, "TOPPED OUT")
}

func TestPlayOptionsPrecedence(t *testing.T) {
	dir := tempConfig(t)
	_, err := run(t, "config", "set", config.KeyPlayer, "file-player")
	require.NoError(t, err)
	_, err = run(t, "config", "set", config.KeyStartLevel, "2")
	require.NoError(t, err)

	t.Setenv("TETRS_SEED", "99")
	t.Setenv("TETRS_PLAYER", "env-player")

	setup, store, err := playOptions(playCmd)
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, uint64(99), setup.Game.Seed)
	assert.Equal(t, 2, setup.Game.Settings.StartLevel)
	assert.Equal(t, 0, setup.Best)
	require.NotNil(t, setup.Game.Sink)

	require.NoError(t, setup.Game.Sink.Record(game.Result{Score: 700, Seed: 99}))
	best, err := store.Best(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-player", best.Player)
	require.NoError(t, store.Close())

	flags := playCmd.Flags()
	require.NoError(t, flags.Set("seed", "7"))
	require.NoError(t, flags.Set("level", "4"))
	t.Cleanup(func() {
		for _, name := range []string{"seed", "level"} {
			flags.Lookup(name).Changed = false
		}
		playSeed, playLevel = 0, 0
	})

	setup, store, err = playOptions(playCmd)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, uint64(7), setup.Game.Seed)
	assert.Equal(t, 4, setup.Game.Settings.StartLevel)
	assert.Equal(t, 700, setup.Best)
	assert.FileExists(t, filepath.Join(dir, "scores.db"))
}

func TestPlayOptionsWithoutScores(t *testing.T) {
	tempConfig(t)
	playNoScores = true
	t.Cleanup(func() { playNoScores = false })

	setup, store, err := playOptions(playCmd)
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.Nil(t, setup.Game.Sink)
	assert.NotZero(t, setup.Game.Seed, "an unset seed is drawn at random")
}
