package game

import (
	"image"

	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/internal/board"
	"github.com/plus3/tetrs/internal/piece"
)

// InputSystem applies Intents to the falling piece: hold, rotation with
// kicks, shifting with delayed auto shift, soft drop and hard drop.
type InputSystem struct {
	Active   ecs.Query[activePiece]
	Intents  ecs.Singleton[Intents]
	State    ecs.Singleton[GameState]
	Field    ecs.Singleton[Playfield]
	Queue    ecs.Singleton[Queue]
	Events   ecs.Singleton[Events]
	Settings ecs.Singleton[Settings]
}

func (s *InputSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state.Phase != Playing {
		return
	}

	in := s.Intents.Get()
	b := s.Field.Get().Board
	events := s.Events.Get()
	settings := s.Settings.Get()

	for e := range s.Active.Values() {
		if in.Hold && state.CanHold {
			s.hold(e, state, b, events)
			continue
		}

		if in.RotateCW && rotateBy(b, e, piece.Clockwise) {
			touch(e, settings)
			events.Emit(EventRotate)
		}
		if in.RotateCCW && rotateBy(b, e, piece.CounterClockwise) {
			touch(e, settings)
			events.Emit(EventRotate)
		}

		if in.Shift != 0 {
			step := 1
			if in.Shift < 0 {
				step = -1
			}
			for n := in.Shift; n != 0 && move(b, e, step, 0); n -= step {
				touch(e, settings)
			}
		}

		autoShift(b, e, in, settings, frame.DeltaTime, func() {
			touch(e, settings)
			events.Emit(EventMove)
		})

		softDrop(b, e, in, settings, frame.DeltaTime, func() {
			state.SoftDrop(1)
			e.Gravity.Accumulator = 0
			events.Emit(EventSoftDrop)
		})

		if in.HardDrop {
			d := b.DropDistance(e.Falling.Piece, e.Position.Point())
			e.Position.Y += d
			state.HardDrop(d)
			e.LockDelay.Force = true
			events.Emit(EventHardDrop)
		}
	}
}

func (s *InputSystem) hold(e activePiece, state *GameState, b *board.Board, events *Events) {
	var next piece.Piece
	if state.HasHold {
		next = piece.New(state.Hold)
	} else {
		next = s.Queue.Get().Bag.Next()
	}
	state.Hold = e.Falling.Piece.Shape
	state.HasHold = true
	state.CanHold = false

	pos := SpawnPosition(b, next)
	e.Falling.Piece = next
	e.Position.X, e.Position.Y = pos.X, pos.Y
	*e.Gravity = Gravity{}
	*e.LockDelay = LockDelay{}
	events.Emit(EventHold)

	if !b.Fits(next, pos) {
		endRun(state, events)
	}
}

func move(b *board.Board, e activePiece, dx, dy int) bool {
	to := e.Position.Point().Add(image.Pt(dx, dy))
	if !b.Fits(e.Falling.Piece, to) {
		return false
	}
	e.Position.X, e.Position.Y = to.X, to.Y
	return true
}

// rotateBy tries each kick in order and keeps the first that fits.
func rotateBy(b *board.Board, e activePiece, r piece.Rotation) bool {
	rotated := e.Falling.Piece.Rotate(r)
	for _, kick := range e.Falling.Piece.Kicks(r) {
		to := e.Position.Point().Add(kick)
		if b.Fits(rotated, to) {
			e.Falling.Piece = rotated
			e.Position.X, e.Position.Y = to.X, to.Y
			return true
		}
	}
	return false
}

// touch restarts the lock timer of a grounded piece, a limited number of times.
func touch(e activePiece, settings *Settings) {
	if e.LockDelay.Elapsed > 0 && e.LockDelay.Resets < settings.MaxLockResets {
		e.LockDelay.Elapsed = 0
		e.LockDelay.Resets++
	}
}

func autoShift(b *board.Board, e activePiece, in *Intents, settings *Settings, dt float64, moved func()) {
	shift := e.AutoShift

	dir := 0
	switch {
	case in.Left && in.Right:
		dir = shift.Dir
	case in.Left:
		dir = -1
	case in.Right:
		dir = 1
	}

	if dir == 0 {
		shift.Dir, shift.Held, shift.Repeat = 0, 0, 0
		return
	}

	if dir != shift.Dir {
		shift.Dir, shift.Held, shift.Repeat = dir, 0, 0
		if move(b, e, dir, 0) {
			moved()
		}
		return
	}

	shift.Held += dt
	for shift.Held >= settings.DASDelay+shift.Repeat {
		shift.Repeat += settings.DASRepeat
		if move(b, e, dir, 0) {
			moved()
		}
	}
}

func softDrop(b *board.Board, e activePiece, in *Intents, settings *Settings, dt float64, dropped func()) {
	shift := e.AutoShift
	if !in.SoftDrop {
		shift.SoftHeld = false
		shift.SoftDrop = 0
		return
	}

	if !shift.SoftHeld {
		shift.SoftHeld = true
		shift.SoftDrop = 0
		if move(b, e, 0, 1) {
			dropped()
		}
		return
	}

	shift.SoftDrop += dt
	for shift.SoftDrop >= settings.SoftDropRepeat {
		shift.SoftDrop -= settings.SoftDropRepeat
		if move(b, e, 0, 1) {
			dropped()
		}
	}
}
