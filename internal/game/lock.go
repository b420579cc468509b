package game

import (
	"fmt"
	"image"

	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/internal/rules"
)

// GravitySystem moves the falling piece down one row per tick interval of
// the current level.
type GravitySystem struct {
	Active ecs.Query[activePiece]
	State  ecs.Singleton[GameState]
	Field  ecs.Singleton[Playfield]
}

func (s *GravitySystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state.Phase != Playing {
		return
	}

	b := s.Field.Get().Board
	interval := rules.TickInterval(state.Level)

	for e := range s.Active.Values() {
		e.Gravity.Accumulator += frame.DeltaTime
		for e.Gravity.Accumulator >= interval {
			e.Gravity.Accumulator -= interval
			if !move(b, e, 0, 1) {
				e.Gravity.Accumulator = 0
				break
			}
		}
	}
}

// LockSystem locks a piece that has rested on the stack for the lock delay,
// or was hard dropped, then clears lines and scores them.
type LockSystem struct {
	Active   ecs.Query[activePiece]
	State    ecs.Singleton[GameState]
	Field    ecs.Singleton[Playfield]
	Events   ecs.Singleton[Events]
	Settings ecs.Singleton[Settings]
}

func (s *LockSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state.Phase != Playing {
		return
	}

	b := s.Field.Get().Board
	settings := s.Settings.Get()
	events := s.Events.Get()

	for e := range s.Active.Values() {
		grounded := !b.Fits(e.Falling.Piece, e.Position.Point().Add(image.Pt(0, 1)))
		if !grounded && !e.LockDelay.Force {
			e.LockDelay.Elapsed = 0
			continue
		}

		if !e.LockDelay.Force {
			e.LockDelay.Elapsed += frame.DeltaTime
			if e.LockDelay.Elapsed < settings.LockDelay {
				continue
			}
		}

		above := b.Lock(e.Falling.Piece, e.Position.Point())
		frame.Commands.Delete(e.EntityId)
		state.CanHold = true
		events.Emit(EventLock)

		if above {
			endRun(state, events)
			return
		}

		rows := b.ClearLines()
		if len(rows) == 0 {
			continue
		}

		level := state.Level
		points := state.Clear(len(rows))
		events.List = append(events.List, Event{
			Kind:   EventLineClear,
			Lines:  len(rows),
			Points: points,
			Rows:   rows,
		})
		if state.Level > level {
			events.Emit(EventLevelUp)
		}

		for _, row := range rows {
			frame.Commands.Spawn(Flash{Row: row, TTL: FlashTTL})
		}

		w, _ := e.Falling.Piece.Size()
		frame.Commands.Spawn(Popup{
			Text: popupText(len(rows), points),
			X:    float32(e.Position.X) + float32(w)/2,
			Y:    float32(rows[0]),
			TTL:  PopupTTL,
		})
	}
}

func popupText(lines, points int) string {
	if lines >= 4 {
		return fmt.Sprintf("TETRIS +%d", points)
	}
	return fmt.Sprintf("+%d", points)
}
