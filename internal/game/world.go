package game

import (
	"image"

	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/internal/board"
	"github.com/plus3/tetrs/internal/piece"
)

// Options configure a World. Player and Sink may be nil.
type Options struct {
	Settings Settings
	Seed     uint64
	Player   Player
	Sink     Sink
}

// World is one run: a storage with the game's singletons and the scheduler
// that steps it.
type World struct {
	Registry  *ecs.ComponentRegistry
	Storage   *ecs.Storage
	Scheduler *ecs.Scheduler

	intents  *ecs.Singleton[Intents]
	state    *ecs.Singleton[GameState]
	field    *ecs.Singleton[Playfield]
	queue    *ecs.Singleton[Queue]
	events   *ecs.Singleton[Events]
	settings *ecs.Singleton[Settings]
	active   *ecs.View[activePiece]
}

// NewWorld validates opts.Settings and builds a ready-to-step world.
func NewWorld(opts Options) (*World, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}

	registry := ecs.NewComponentRegistry()
	RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	w := &World{
		Registry: registry,
		Storage:  storage,
		intents:  ecs.NewSingleton[Intents](storage),
		state: ecs.NewSingleton(storage,
			newGameState(opts.Seed, opts.Settings.StartLevel)),
		field: ecs.NewSingleton(storage,
			Playfield{Board: board.New(opts.Settings.Width, opts.Settings.Height)}),
		queue:    ecs.NewSingleton(storage, Queue{Bag: piece.NewSeededBag(opts.Seed)}),
		events:   ecs.NewSingleton[Events](storage),
		settings: ecs.NewSingleton(storage, opts.Settings),
		active:   ecs.NewView[activePiece](storage),
	}

	w.Scheduler = ecs.NewScheduler(storage)
	w.Scheduler.Register(
		&ControlSystem{},
		&SpawnSystem{},
		&InputSystem{},
		&GravitySystem{},
		&LockSystem{},
		&EffectSystem{},
		&AudioSystem{Player: opts.Player},
		&RecordSystem{Sink: opts.Sink},
	)
	return w, nil
}

// Step runs one frame of dt seconds with in as that frame's input.
func (w *World) Step(dt float64, in Intents) {
	*w.intents.Get() = in
	w.Scheduler.Once(dt)
}

func (w *World) State() *GameState   { return w.state.Get() }
func (w *World) Board() *board.Board { return w.field.Get().Board }
func (w *World) Queue() *piece.Bag   { return w.queue.Get().Bag }
func (w *World) Events() []Event     { return w.events.Get().List }
func (w *World) Settings() Settings  { return *w.settings.Get() }

// Active returns the falling piece and its box position.
func (w *World) Active() (piece.Piece, image.Point, bool) {
	for e := range w.active.Values() {
		return e.Falling.Piece, e.Position.Point(), true
	}
	return piece.Piece{}, image.Point{}, false
}

// Over reports whether the run has ended.
func (w *World) Over() bool {
	return w.State().Phase == GameOver
}

// Reset restarts the run on the next Step.
func (w *World) Reset() {
	w.Step(0, Intents{Restart: true})
}
