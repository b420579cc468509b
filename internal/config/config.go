// Package config loads process settings from the environment and the
// player's settings file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/kirsle/configdir"
	"github.com/plus3/tetrs/internal/game"
	"github.com/spf13/viper"
)

// Env is read from TETRS_* environment variables.
type Env struct {
	ConfigDir string `env:"TETRS_CONFIG_DIR"`
	DBPath    string `env:"TETRS_DB_PATH"`
	Seed      uint64 `env:"TETRS_SEED"`
	DebugUI   bool   `env:"TETRS_DEBUG_UI"`
	Player    string `env:"TETRS_PLAYER"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Dir is the settings directory: TETRS_CONFIG_DIR, or the user config dir.
func (e Env) Dir() string {
	if e.ConfigDir != "" {
		return e.ConfigDir
	}
	return configdir.LocalConfig("tetrs")
}

// Database is the score database path: TETRS_DB_PATH, or scores.db in Dir.
func (e Env) Database() string {
	if e.DBPath != "" {
		return e.DBPath
	}
	return filepath.Join(e.Dir(), "scores.db")
}

// Setting keys in settings.json.
const (
	KeyPlayer         = "player"
	KeyVolume         = "volume"
	KeyWidth          = "width"
	KeyHeight         = "height"
	KeyStartLevel     = "start_level"
	KeyDASDelay       = "das_delay"
	KeyDASRepeat      = "das_repeat"
	KeySoftDropRepeat = "soft_drop_repeat"
	KeyLockDelay      = "lock_delay"
	KeyMaxLockResets  = "max_lock_resets"
	KeyGhost          = "ghost"
)

func defaults() map[string]any {
	d := game.DefaultSettings()
	return map[string]any{
		KeyPlayer:         "player",
		KeyVolume:         0.6,
		KeyWidth:          d.Width,
		KeyHeight:         d.Height,
		KeyStartLevel:     d.StartLevel,
		KeyDASDelay:       d.DASDelay,
		KeyDASRepeat:      d.DASRepeat,
		KeySoftDropRepeat: d.SoftDropRepeat,
		KeyLockDelay:      d.LockDelay,
		KeyMaxLockResets:  d.MaxLockResets,
		KeyGhost:          d.Ghost,
	}
}

// Keys lists every setting in name order.
func Keys() []string {
	keys := make([]string, 0, len(defaults()))
	for k := range defaults() {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// File is settings.json in the settings directory.
type File struct {
	v *viper.Viper
}

// Load reads dir/settings.json, creating the directory and a file with
// default values when they are missing.
func Load(dir string) (*File, error) {
	if err := configdir.MakePath(dir); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("settings")
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	for k, value := range defaults() {
		v.SetDefault(k, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		if err := v.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("write settings: %w", err)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}
	return &File{v: v}, nil
}

// Path is the file backing the settings.
func (f *File) Path() string {
	return f.v.ConfigFileUsed()
}

// Player is the name scores are recorded under.
func (f *File) Player() string {
	return f.v.GetString(KeyPlayer)
}

// Volume is the effect volume in [0, 1].
func (f *File) Volume() float64 {
	return min(max(f.v.GetFloat64(KeyVolume), 0), 1)
}

// Settings are the game timings from the file.
func (f *File) Settings() game.Settings {
	return game.Settings{
		Width:          f.v.GetInt(KeyWidth),
		Height:         f.v.GetInt(KeyHeight),
		StartLevel:     f.v.GetInt(KeyStartLevel),
		DASDelay:       f.v.GetFloat64(KeyDASDelay),
		DASRepeat:      f.v.GetFloat64(KeyDASRepeat),
		SoftDropRepeat: f.v.GetFloat64(KeySoftDropRepeat),
		LockDelay:      f.v.GetFloat64(KeyLockDelay),
		MaxLockResets:  f.v.GetInt(KeyMaxLockResets),
		Ghost:          f.v.GetBool(KeyGhost),
	}
}

// Get returns the current value of key.
func (f *File) Get(key string) (any, bool) {
	if _, ok := defaults()[key]; !ok {
		return nil, false
	}
	return f.v.Get(key), true
}

// Set parses value as the type of key, checks the resulting settings and
// writes the file.
func (f *File) Set(key, value string) error {
	def, ok := defaults()[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}

	var parsed any
	var err error
	switch def.(type) {
	case int:
		parsed, err = strconv.Atoi(value)
	case float64:
		parsed, err = strconv.ParseFloat(value, 64)
	case bool:
		parsed, err = strconv.ParseBool(value)
	default:
		parsed = value
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	old := f.v.Get(key)
	f.v.Set(key, parsed)
	if err := f.Settings().Validate(); err != nil {
		f.v.Set(key, old)
		return fmt.Errorf("setting %s: %w", key, err)
	}
	if err := f.v.WriteConfig(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
