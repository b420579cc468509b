package game

import (
	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/internal/piece"
)

// ControlSystem runs first each frame: it clears last frame's events,
// handles pause and restart, and advances the run clock.
type ControlSystem struct {
	Pieces ecs.Query[struct {
		ecs.EntityId
		*Falling
	}]
	Flashes ecs.Query[struct {
		ecs.EntityId
		*Flash
	}]
	Popups ecs.Query[struct {
		ecs.EntityId
		*Popup
	}]
	Intents  ecs.Singleton[Intents]
	State    ecs.Singleton[GameState]
	Field    ecs.Singleton[Playfield]
	Queue    ecs.Singleton[Queue]
	Events   ecs.Singleton[Events]
	Settings ecs.Singleton[Settings]
}

func (s *ControlSystem) Execute(frame *ecs.UpdateFrame) {
	events := s.Events.Get()
	events.List = events.List[:0]

	in := s.Intents.Get()
	state := s.State.Get()

	if in.Restart {
		// Later systems snapshot their queries after this one returns, so the
		// deletes are visible to them in this same frame.
		for id := range s.Pieces.Iter() {
			frame.Storage.Delete(id)
		}
		for id := range s.Flashes.Iter() {
			frame.Storage.Delete(id)
		}
		for id := range s.Popups.Iter() {
			frame.Storage.Delete(id)
		}
		s.Field.Get().Board.Reset()
		s.Queue.Get().Bag = piece.NewSeededBag(state.Seed)
		*state = newGameState(state.Seed, s.Settings.Get().StartLevel)
		events.Emit(EventRestart)
		return
	}

	if in.Pause {
		switch state.Phase {
		case Playing:
			state.Phase = Paused
			events.Emit(EventPause)
		case Paused:
			state.Phase = Playing
			events.Emit(EventResume)
		}
	}

	if state.Phase == Playing {
		state.Elapsed += frame.DeltaTime
	}
}

// SpawnSystem deals the next piece when none is falling.
type SpawnSystem struct {
	Pieces ecs.Query[struct{ *Falling }]
	State  ecs.Singleton[GameState]
	Field  ecs.Singleton[Playfield]
	Queue  ecs.Singleton[Queue]
	Events ecs.Singleton[Events]
}

func (s *SpawnSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state.Phase != Playing || s.Pieces.Len() > 0 {
		return
	}

	b := s.Field.Get().Board
	next := s.Queue.Get().Bag.Next()
	pos := SpawnPosition(b, next)

	if !b.Fits(next, pos) {
		endRun(state, s.Events.Get())
		return
	}

	// Spawned immediately so Input and Gravity act on it this frame.
	frame.Storage.Spawn(
		Position{X: pos.X, Y: pos.Y},
		Falling{Piece: next},
		Gravity{},
		LockDelay{},
		AutoShift{},
	)
	state.Pieces++
	s.Events.Get().Emit(EventSpawn)
}

func endRun(state *GameState, events *Events) {
	state.Phase = GameOver
	events.Emit(EventGameOver)
}
