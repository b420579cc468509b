package game_test

import (
	"image"
	"testing"

	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/internal/game"
	"github.com/plus3/tetrs/internal/piece"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 60

func newWorld(t *testing.T, opts game.Options) *game.World {
	t.Helper()
	if opts.Settings == (game.Settings{}) {
		opts.Settings = game.DefaultSettings()
	}
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	w, err := game.NewWorld(opts)
	require.NoError(t, err)
	return w
}

// spawned steps once with no input and returns the new piece.
func spawned(t *testing.T, w *game.World) (piece.Piece, image.Point) {
	t.Helper()
	w.Step(0, game.Intents{})
	p, pos, ok := w.Active()
	require.True(t, ok, "a piece should be falling")
	return p, pos
}

func kinds(events []game.Event) []game.EventKind {
	var out []game.EventKind
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func count[T any](storage *ecs.Storage) int {
	n := 0
	for range ecs.NewView[T](storage).Values() {
		n++
	}
	return n
}

func TestNewWorldRejectsBadSettings(t *testing.T) {
	settings := game.DefaultSettings()
	settings.DASRepeat = 0

	_, err := game.NewWorld(game.Options{Settings: settings})
	assert.Error(t, err)

	settings = game.DefaultSettings()
	settings.Width = 3
	_, err = game.NewWorld(game.Options{Settings: settings})
	assert.Error(t, err)
}

func TestSpawnPosition(t *testing.T) {
	w := newWorld(t, game.Options{})
	first := w.Queue().Peek(1)[0]

	p, pos := spawned(t, w)
	assert.Equal(t, first, p.Shape)
	assert.Equal(t, piece.North, p.Orientation)
	assert.Equal(t, game.SpawnPosition(w.Board(), p), pos)
	assert.Equal(t, 0, pos.Y)
	assert.Equal(t, 1, w.State().Pieces)
	assert.Contains(t, kinds(w.Events()), game.EventSpawn)

	if p.Shape == piece.O {
		assert.Equal(t, 4, pos.X)
	} else {
		assert.Equal(t, 3, pos.X)
	}
}

func TestGravityMovesOneRowPerInterval(t *testing.T) {
	w := newWorld(t, game.Options{})
	_, start := spawned(t, w)

	w.Step(1.0, game.Intents{})
	_, pos, _ := w.Active()
	assert.Equal(t, start.Y, pos.Y)

	w.Step(1.0, game.Intents{})
	_, pos, _ = w.Active()
	assert.Equal(t, start.Y+1, pos.Y, "level 0 falls one row every 2s")

	w.Step(4.0, game.Intents{})
	_, pos, _ = w.Active()
	assert.Equal(t, start.Y+3, pos.Y)
}

func TestHardDropScoresAndLocks(t *testing.T) {
	w := newWorld(t, game.Options{})
	p, pos := spawned(t, w)
	d := w.Board().DropDistance(p, pos)
	require.Positive(t, d)

	w.Step(0, game.Intents{HardDrop: true})

	assert.Equal(t, 2*d, w.State().Score)
	assert.Equal(t, 4, w.Board().Count())
	assert.Equal(t, []game.EventKind{game.EventHardDrop, game.EventLock}, kinds(w.Events()))
	_, _, ok := w.Active()
	assert.False(t, ok, "locked piece is removed at the end of the frame")

	_, _ = spawned(t, w)
	assert.Equal(t, 2, w.State().Pieces)
}

// lower soft drops the piece n rows with one fresh press per row.
func lower(w *game.World, n int) {
	for range n {
		w.Step(0, game.Intents{SoftDrop: true})
		w.Step(0, game.Intents{})
	}
}

func TestLockDelay(t *testing.T) {
	w := newWorld(t, game.Options{})
	p, pos := spawned(t, w)
	d := w.Board().DropDistance(p, pos)

	lower(w, d)
	assert.Equal(t, d, w.State().Score, "one point per soft dropped row")

	w.Step(0.3, game.Intents{})
	_, _, ok := w.Active()
	require.True(t, ok, "resting less than the lock delay")

	w.Step(0.3, game.Intents{})
	_, _, ok = w.Active()
	assert.False(t, ok, "locked after resting 0.6s")
	assert.Equal(t, 4, w.Board().Count())
}

func TestMoveResetsLockDelay(t *testing.T) {
	w := newWorld(t, game.Options{})
	p, pos := spawned(t, w)
	lower(w, w.Board().DropDistance(p, pos))

	w.Step(0.3, game.Intents{})
	w.Step(0, game.Intents{Left: true})
	w.Step(0, game.Intents{})

	w.Step(0.3, game.Intents{})
	_, _, ok := w.Active()
	require.True(t, ok, "the move restarted the lock timer")

	w.Step(0.3, game.Intents{})
	_, _, ok = w.Active()
	assert.False(t, ok)
}

func TestLockResetsAreLimited(t *testing.T) {
	settings := game.DefaultSettings()
	settings.MaxLockResets = 0
	w := newWorld(t, game.Options{Settings: settings})
	p, pos := spawned(t, w)
	lower(w, w.Board().DropDistance(p, pos))

	w.Step(0.3, game.Intents{})
	w.Step(0, game.Intents{Left: true})
	w.Step(0.3, game.Intents{})

	_, _, ok := w.Active()
	assert.False(t, ok, "no resets left so the piece locks on time")
}

func TestLineClearScores(t *testing.T) {
	w := newWorld(t, game.Options{})
	p, pos := spawned(t, w)
	b := w.Board()
	d := b.DropDistance(p, pos)

	// Fill the floor row except where the piece lands.
	bottom := b.Height() - 1
	landing := map[int]bool{}
	inBottom := 0
	for _, c := range p.Cells() {
		if pos.Y+d+c.Y == bottom {
			landing[pos.X+c.X] = true
			inBottom++
		}
	}
	require.Positive(t, inBottom)
	for x := range b.Width() {
		if !landing[x] {
			b.Set(x, bottom, piece.O)
		}
	}

	w.Step(0, game.Intents{HardDrop: true})

	state := w.State()
	assert.Equal(t, 1, state.Lines)
	assert.Equal(t, 2*d+100, state.Score)
	assert.Equal(t, 4-inBottom, b.Count())
	assert.Contains(t, w.Events(), game.Event{
		Kind:   game.EventLineClear,
		Lines:  1,
		Points: 100,
		Rows:   []int{bottom},
	})
	assert.Equal(t, 1, count[struct{ *game.Flash }](w.Storage))
	assert.Equal(t, 1, count[struct{ *game.Popup }](w.Storage))

	// Effects expire.
	for range 60 {
		w.Step(frame, game.Intents{})
	}
	assert.Zero(t, count[struct{ *game.Flash }](w.Storage))
	assert.Zero(t, count[struct{ *game.Popup }](w.Storage))
}

func TestHold(t *testing.T) {
	w := newWorld(t, game.Options{})
	first, _ := spawned(t, w)
	next := w.Queue().Peek(1)[0]

	w.Step(0, game.Intents{Hold: true})
	p, pos, ok := w.Active()
	require.True(t, ok)
	state := w.State()
	assert.Equal(t, next, p.Shape, "empty hold draws from the queue")
	assert.Equal(t, game.SpawnPosition(w.Board(), p), pos)
	assert.Equal(t, first.Shape, state.Hold)
	assert.True(t, state.HasHold)
	assert.False(t, state.CanHold)

	w.Step(0, game.Intents{Hold: true})
	p, _, _ = w.Active()
	assert.Equal(t, next, p.Shape, "hold is used once per piece")

	w.Step(0, game.Intents{HardDrop: true})
	assert.True(t, w.State().CanHold)

	third, _ := spawned(t, w)
	w.Step(0, game.Intents{Hold: true})
	p, _, _ = w.Active()
	assert.Equal(t, first.Shape, p.Shape, "held piece comes back")
	assert.Equal(t, third.Shape, w.State().Hold)
}

func TestRotate(t *testing.T) {
	w := newWorld(t, game.Options{})
	p, _ := spawned(t, w)

	w.Step(0, game.Intents{RotateCW: true})
	got, _, _ := w.Active()
	assert.Equal(t, p.Orientation.Turn(piece.Clockwise), got.Orientation)
	assert.Contains(t, kinds(w.Events()), game.EventRotate)

	w.Step(0, game.Intents{RotateCCW: true})
	got, _, _ = w.Active()
	assert.Equal(t, p.Orientation, got.Orientation)
}

func TestAutoShiftReachesWall(t *testing.T) {
	w := newWorld(t, game.Options{})
	_, start := spawned(t, w)

	w.Step(frame, game.Intents{Left: true})
	_, pos, _ := w.Active()
	assert.Equal(t, start.X-1, pos.X, "first press moves at once")

	w.Step(0.15, game.Intents{Left: true})
	_, pos, _ = w.Active()
	assert.Equal(t, start.X-1, pos.X, "no repeat before the delay")

	for range 30 {
		w.Step(frame, game.Intents{Left: true})
	}
	p, pos, _ := w.Active()
	assert.Equal(t, 0, pos.X+p.Bounds().Min.X, "held left slides to the wall")
}

func TestShiftMovesImmediately(t *testing.T) {
	w := newWorld(t, game.Options{})
	_, start := spawned(t, w)

	w.Step(0, game.Intents{Shift: 2})
	_, pos, _ := w.Active()
	assert.Equal(t, start.X+2, pos.X)

	w.Step(0, game.Intents{Shift: -20})
	p, pos, _ := w.Active()
	assert.Equal(t, 0, pos.X+p.Bounds().Min.X, "shift stops at the wall")
}

func TestBlockedSpawnEndsRun(t *testing.T) {
	var results []game.Result
	w := newWorld(t, game.Options{
		Sink: game.SinkFunc(func(r game.Result) error {
			results = append(results, r)
			return nil
		}),
	})

	b := w.Board()
	for y := range 2 {
		for x := 1; x < b.Width(); x++ {
			b.Set(x, y, piece.I)
		}
	}

	w.Step(frame, game.Intents{})
	assert.Equal(t, game.GameOver, w.State().Phase)
	assert.True(t, w.Over())
	assert.Contains(t, kinds(w.Events()), game.EventGameOver)

	w.Step(frame, game.Intents{HardDrop: true})
	w.Step(frame, game.Intents{})
	require.Len(t, results, 1, "a run is recorded once")
	assert.Equal(t, uint64(7), results[0].Seed)
	assert.Zero(t, results[0].Pieces)
}

// worldStartingWith returns a world whose first piece is shape.
func worldStartingWith(t *testing.T, shape piece.Shape, opts game.Options) *game.World {
	t.Helper()
	for seed := uint64(1); seed <= 200; seed++ {
		opts.Seed = seed
		w := newWorld(t, opts)
		if w.Queue().Peek(1)[0] == shape {
			return w
		}
	}
	t.Fatalf("no seed starts with %v", shape)
	return nil
}

func TestLockAboveTopEndsRun(t *testing.T) {
	var results []game.Result
	w := worldStartingWith(t, piece.T, game.Options{
		Sink: game.SinkFunc(func(r game.Result) error {
			results = append(results, r)
			return nil
		}),
	})

	b := w.Board()
	for x := range b.Width() - 1 {
		b.Set(x, 2, piece.I)
	}

	_, start := spawned(t, w)
	require.Equal(t, image.Pt(3, 0), start)

	w.Step(0, game.Intents{RotateCW: true})
	p, pos, ok := w.Active()
	require.True(t, ok)
	require.Equal(t, piece.East, p.Orientation)
	require.Equal(t, image.Pt(2, -1), pos, "the kick lifts the piece above the top row")

	gameOvers := 0
	for range 120 {
		w.Step(frame, game.Intents{})
		for _, ev := range w.Events() {
			if ev.Kind == game.EventGameOver {
				gameOvers++
			}
		}
	}

	assert.Equal(t, game.GameOver, w.State().Phase)
	assert.Equal(t, 1, gameOvers)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, w.State().Pieces, "no piece spawns after a lock-out")
}

func TestPauseFreezesRun(t *testing.T) {
	w := newWorld(t, game.Options{})
	_, start := spawned(t, w)

	w.Step(0, game.Intents{Pause: true})
	assert.Equal(t, game.Paused, w.State().Phase)
	assert.Equal(t, []game.EventKind{game.EventPause}, kinds(w.Events()))

	w.Step(10, game.Intents{Left: true, HardDrop: true})
	_, pos, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, start, pos)
	assert.Zero(t, w.State().Elapsed)

	w.Step(0, game.Intents{Pause: true})
	assert.Equal(t, game.Playing, w.State().Phase)
	assert.Contains(t, kinds(w.Events()), game.EventResume)
}

func TestRestartReplaysSeed(t *testing.T) {
	w := newWorld(t, game.Options{})
	first, _ := spawned(t, w)
	for range 3 {
		w.Step(0, game.Intents{HardDrop: true})
		w.Step(0, game.Intents{})
	}
	require.NotZero(t, w.State().Score)

	w.Reset()

	state := w.State()
	assert.Equal(t, game.Playing, state.Phase)
	assert.Zero(t, state.Score)
	assert.Zero(t, w.Board().Count())
	assert.Equal(t, 1, state.Pieces)
	assert.Contains(t, kinds(w.Events()), game.EventRestart)

	p, _, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, first.Shape, p.Shape)
}

type recordingPlayer struct {
	played []game.EventKind
}

func (p *recordingPlayer) Play(ev game.Event) {
	p.played = append(p.played, ev.Kind)
}

func TestAudioPlaysEvents(t *testing.T) {
	player := &recordingPlayer{}
	w := newWorld(t, game.Options{Player: player})

	spawned(t, w)
	w.Step(0, game.Intents{HardDrop: true})

	assert.Equal(t, []game.EventKind{
		game.EventSpawn,
		game.EventHardDrop,
		game.EventLock,
	}, player.played)
}
