package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/tetrs/internal/game"
)

// Keys reports keyboard state for the current tick.
type Keys interface {
	Pressed(k ebiten.Key) bool
	JustPressed(k ebiten.Key) bool
}

type ebitenKeys struct{}

func (ebitenKeys) Pressed(k ebiten.Key) bool     { return ebiten.IsKeyPressed(k) }
func (ebitenKeys) JustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

// Keymap binds keys to actions. Left, Right and SoftDrop act while held;
// every other action fires on the tick its key goes down.
type Keymap struct {
	Left      []ebiten.Key
	Right     []ebiten.Key
	SoftDrop  []ebiten.Key
	RotateCW  []ebiten.Key
	RotateCCW []ebiten.Key
	HardDrop  []ebiten.Key
	Hold      []ebiten.Key
	Pause     []ebiten.Key
	Restart   []ebiten.Key
	Quit      []ebiten.Key
	Autoplay  []ebiten.Key
	Debug     []ebiten.Key
}

// DefaultKeymap is the standard layout.
func DefaultKeymap() Keymap {
	return Keymap{
		Left:      []ebiten.Key{ebiten.KeyArrowLeft},
		Right:     []ebiten.Key{ebiten.KeyArrowRight},
		SoftDrop:  []ebiten.Key{ebiten.KeyArrowDown},
		RotateCW:  []ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyX},
		RotateCCW: []ebiten.Key{ebiten.KeyZ},
		HardDrop:  []ebiten.Key{ebiten.KeySpace},
		Hold:      []ebiten.Key{ebiten.KeyC, ebiten.KeyShiftLeft, ebiten.KeyShiftRight},
		Pause:     []ebiten.Key{ebiten.KeyP, ebiten.KeyEscape},
		Restart:   []ebiten.Key{ebiten.KeyR},
		Quit:      []ebiten.Key{ebiten.KeyQ},
		Autoplay:  []ebiten.Key{ebiten.KeyA},
		Debug:     []ebiten.Key{ebiten.KeyF3},
	}
}

func anyPressed(keys Keys, bound []ebiten.Key) bool {
	for _, k := range bound {
		if keys.Pressed(k) {
			return true
		}
	}
	return false
}

func anyJustPressed(keys Keys, bound []ebiten.Key) bool {
	for _, k := range bound {
		if keys.JustPressed(k) {
			return true
		}
	}
	return false
}

// Intents maps the keyboard to one frame of game input.
func (m Keymap) Intents(keys Keys) game.Intents {
	return game.Intents{
		Left:      anyPressed(keys, m.Left),
		Right:     anyPressed(keys, m.Right),
		SoftDrop:  anyPressed(keys, m.SoftDrop),
		RotateCW:  anyJustPressed(keys, m.RotateCW),
		RotateCCW: anyJustPressed(keys, m.RotateCCW),
		HardDrop:  anyJustPressed(keys, m.HardDrop),
		Hold:      anyJustPressed(keys, m.Hold),
		Pause:     anyJustPressed(keys, m.Pause),
		Restart:   anyJustPressed(keys, m.Restart),
	}
}
