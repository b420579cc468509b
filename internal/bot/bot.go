// Package bot plays the game by searching every drop of the falling piece
// and steering it to the best one.
package bot

import (
	"image"
	"math"

	"github.com/plus3/tetrs/internal/board"
	"github.com/plus3/tetrs/internal/game"
	"github.com/plus3/tetrs/internal/piece"
)

// Weights score a board after a candidate drop. Positive weights reward.
type Weights struct {
	Lines     float64
	Height    float64
	Holes     float64
	Bumpiness float64
}

// DefaultWeights is a well known hand-tuned set that clears lines steadily.
var DefaultWeights = Weights{
	Lines:     0.760666,
	Height:    -0.510066,
	Holes:     -0.35663,
	Bumpiness: -0.184483,
}

// Placement is a drop target: the orientation and the box column.
type Placement struct {
	Orientation piece.Orientation
	X           int
	Score       float64
}

// Evaluate scores b with w.
func Evaluate(b *board.Board, lines int, w Weights) float64 {
	heights := b.Heights()
	aggregate, bumpiness := 0, 0
	for i, h := range heights {
		aggregate += h
		if i > 0 {
			bumpiness += abs(h - heights[i-1])
		}
	}
	return w.Lines*float64(lines) +
		w.Height*float64(aggregate) +
		w.Holes*float64(b.Holes()) +
		w.Bumpiness*float64(bumpiness)
}

// Best searches every orientation and column for p dropped from row y and
// returns the highest scoring placement. Ties keep the first found, so the
// result depends only on the inputs.
func Best(b *board.Board, p piece.Piece, y int, w Weights) (Placement, bool) {
	best := Placement{Score: math.Inf(-1)}
	found := false

	seen := map[[4]image.Point]bool{}
	candidate := piece.New(p.Shape)
	candidate.Orientation = p.Orientation
	for range 4 {
		cells := candidate.Cells()
		if !seen[cells] {
			seen[cells] = true
			n := piece.BoxSize(p.Shape)
			for x := -n; x < b.Width(); x++ {
				pos := image.Pt(x, y)
				if !b.Fits(candidate, pos) {
					continue
				}
				trial := b.Clone()
				if trial.Lock(candidate, pos.Add(image.Pt(0, b.DropDistance(candidate, pos)))) {
					continue
				}
				score := Evaluate(trial, len(trial.ClearLines()), w)
				if score > best.Score {
					best = Placement{Orientation: candidate.Orientation, X: x, Score: score}
					found = true
				}
			}
		}
		candidate = candidate.Rotate(piece.Clockwise)
	}
	return best, found
}

// Bot turns placements into one frame of Intents at a time.
type Bot struct {
	Weights Weights

	pieces int
	target Placement
	ok     bool
}

// New returns a bot using DefaultWeights.
func New() *Bot {
	return &Bot{Weights: DefaultWeights}
}

// Intents decides the next frame's input for w. A new target is chosen each
// time a piece spawns; the bot rotates one step per frame, then shifts and
// hard drops in a single frame. It sends nothing while the run is paused or
// over, so pausing and resuming stay with the player.
func (b *Bot) Intents(w *game.World) game.Intents {
	state := w.State()
	if state.Phase != game.Playing {
		return game.Intents{}
	}

	p, pos, active := w.Active()
	if !active {
		return game.Intents{}
	}

	if state.Pieces != b.pieces {
		b.pieces = state.Pieces
		b.target, b.ok = Best(w.Board(), p, pos.Y, b.Weights)
	}
	if !b.ok {
		return game.Intents{HardDrop: true}
	}

	switch turns(p.Orientation, b.target.Orientation) {
	case 0:
		return game.Intents{Shift: b.target.X - pos.X, HardDrop: true}
	case 3:
		return game.Intents{RotateCCW: true}
	default:
		return game.Intents{RotateCW: true}
	}
}

// turns is the number of clockwise steps from one orientation to another.
func turns(from, to piece.Orientation) int {
	return (int(to) - int(from) + 4) % 4
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Play runs w with b until the run ends or maxPieces have spawned. It
// returns the number of frames stepped.
func Play(w *game.World, b *Bot, dt float64, maxPieces int) int {
	frames := 0
	for !w.Over() {
		if maxPieces > 0 && w.State().Pieces > maxPieces {
			break
		}
		w.Step(dt, b.Intents(w))
		frames++
	}
	return frames
}
