package game

import (
	"image"

	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/internal/piece"
)

// Position is the cell of the top-left corner of a piece's rotation box.
type Position struct {
	X, Y int
}

func (p Position) Point() image.Point {
	return image.Pt(p.X, p.Y)
}

// Falling marks the active piece.
type Falling struct {
	Piece piece.Piece
}

// Gravity accumulates seconds towards the next one-row fall.
type Gravity struct {
	Accumulator float64
}

// LockDelay tracks how long the piece has rested on the stack. Force locks on
// the next LockSystem pass, as after a hard drop.
type LockDelay struct {
	Elapsed float64
	Resets  int
	Force   bool
}

// AutoShift is the delayed auto shift state for held keys.
type AutoShift struct {
	Dir      int
	Held     float64
	Repeat   float64
	SoftHeld bool
	SoftDrop float64
}

// Flash highlights a cleared row for TTL seconds.
type Flash struct {
	Row int
	TTL float64
}

// Popup is floating score text. X and Y are in cells.
type Popup struct {
	Text string
	X, Y float32
	TTL  float64
}

const (
	FlashTTL  = 0.25
	PopupTTL  = 0.8
	popupRise = 2.0
)

// activePiece is the view every gameplay system uses for the falling piece.
type activePiece struct {
	ecs.EntityId
	*Position
	*Falling
	*Gravity
	*LockDelay
	*AutoShift
}

// RegisterComponents adds the game's component types to registry.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Falling](registry)
	ecs.RegisterComponent[Gravity](registry)
	ecs.RegisterComponent[LockDelay](registry)
	ecs.RegisterComponent[AutoShift](registry)
	ecs.RegisterComponent[Flash](registry)
	ecs.RegisterComponent[Popup](registry)
}
