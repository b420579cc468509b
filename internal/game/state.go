package game

import (
	"fmt"
	"image"
	"time"

	"github.com/plus3/tetrs/internal/board"
	"github.com/plus3/tetrs/internal/piece"
	"github.com/plus3/tetrs/internal/rules"
)

// Phase is the top-level state of a run.
type Phase uint8

const (
	Playing Phase = iota
	Paused
	GameOver
)

func (p Phase) String() string {
	switch p {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case GameOver:
		return "game over"
	}
	return "unknown"
}

// Playfield holds the well.
type Playfield struct {
	Board *board.Board
}

// Queue deals the upcoming pieces.
type Queue struct {
	Bag *piece.Bag
}

// GameState is the run's scoreboard and flow state.
type GameState struct {
	rules.Scoreboard
	Phase   Phase
	Hold    piece.Shape
	HasHold bool
	CanHold bool
	Pieces  int
	Elapsed float64
	Seed    uint64
}

func newGameState(seed uint64, startLevel int) GameState {
	return GameState{
		Scoreboard: rules.NewScoreboard(startLevel),
		CanHold:    true,
		Seed:       seed,
	}
}

// Result summarizes a finished run.
type Result struct {
	Score      int
	Lines      int
	Level      int
	StartLevel int
	Pieces     int
	Duration   time.Duration
	Seed       uint64
}

// Result snapshots the run so far.
func (s *GameState) Result() Result {
	return Result{
		Score:      s.Score,
		Lines:      s.Lines,
		Level:      s.Level,
		StartLevel: s.StartLevel,
		Pieces:     s.Pieces,
		Duration:   time.Duration(s.Elapsed * float64(time.Second)),
		Seed:       s.Seed,
	}
}

// Intents is one frame of player (or bot) input. Left, Right and SoftDrop are
// held states; the rest fire once on the frame they are set. Shift moves the
// piece that many columns immediately and is used by the autoplayer.
type Intents struct {
	Left      bool
	Right     bool
	SoftDrop  bool
	RotateCW  bool
	RotateCCW bool
	HardDrop  bool
	Hold      bool
	Pause     bool
	Restart   bool
	Shift     int
}

// Settings are the tunable timings of a run.
type Settings struct {
	Width          int
	Height         int
	StartLevel     int
	DASDelay       float64
	DASRepeat      float64
	SoftDropRepeat float64
	LockDelay      float64
	MaxLockResets  int
	Ghost          bool
}

// DefaultSettings returns the standard timings on a 10x18 well.
func DefaultSettings() Settings {
	return Settings{
		Width:          board.DefaultWidth,
		Height:         board.DefaultHeight,
		DASDelay:       0.2,
		DASRepeat:      0.05,
		SoftDropRepeat: 0.05,
		LockDelay:      0.5,
		MaxLockResets:  15,
		Ghost:          true,
	}
}

// SpawnPosition centers p's rotation box at the top of b.
func SpawnPosition(b *board.Board, p piece.Piece) image.Point {
	return image.Pt((b.Width()-piece.BoxSize(p.Shape))/2, 0)
}

// Validate rejects settings the systems cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.Width < 4 || s.Height < 4:
		return fmt.Errorf("board %dx%d is too small", s.Width, s.Height)
	case s.StartLevel < 0:
		return fmt.Errorf("start level %d is negative", s.StartLevel)
	case s.DASDelay < 0 || s.DASRepeat <= 0 || s.SoftDropRepeat <= 0:
		return fmt.Errorf("shift timings must be positive")
	case s.LockDelay < 0 || s.MaxLockResets < 0:
		return fmt.Errorf("lock delay settings must not be negative")
	}
	return nil
}
