// Package render draws a game world onto an ebiten image.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/internal/board"
	"github.com/plus3/tetrs/internal/game"
	"github.com/plus3/tetrs/internal/piece"
)

// Screen is the image the current Draw call renders into.
type Screen struct {
	*ebiten.Image
}

// HUD carries values shown beside the well that the world does not own.
type HUD struct {
	Best     int
	Autoplay bool
}

var (
	background = color.RGBA{245, 245, 240, 255}
	wallColor  = color.RGBA{90, 90, 100, 255}
	gridColor  = color.RGBA{230, 230, 225, 255}
	textShade  = color.RGBA{0, 0, 0, 140}
)

const (
	ghostAlpha   = 70
	sidebarWidth = 140
	previewCount = 3
)

// Layout places the well on screen.
type Layout struct {
	Block float32
	Wall  float32
	Cols  int
	Rows  int
}

// NewLayout sizes a layout for a board of cols x rows.
func NewLayout(cols, rows int) Layout {
	return Layout{
		Block: piece.DefaultBlock,
		Wall:  board.DefaultWallThickness,
		Cols:  cols,
		Rows:  rows,
	}
}

// Size is the screen size the layout needs.
func (l Layout) Size() (w, h int) {
	w = int(2*l.Wall+float32(l.Cols)*l.Block) + sidebarWidth
	h = int(2*l.Wall + float32(l.Rows)*l.Block)
	return w, h
}

// Cell is the top-left pixel of board cell (x, y).
func (l Layout) Cell(x, y int) (float32, float32) {
	return l.Wall + float32(x)*l.Block, l.Wall + float32(y)*l.Block
}

// Sidebar is the top-left pixel of the HUD column.
func (l Layout) Sidebar() (int, int) {
	return int(2*l.Wall+float32(l.Cols)*l.Block) + 10, int(l.Wall)
}

// RenderSystem draws the well, the stack, the falling piece with its ghost,
// line clear effects and the HUD.
type RenderSystem struct {
	Active ecs.Query[struct {
		*game.Position
		*game.Falling
	}]
	Flashes  ecs.Query[struct{ *game.Flash }]
	Popups   ecs.Query[struct{ *game.Popup }]
	Screen   ecs.Singleton[Screen]
	Field    ecs.Singleton[game.Playfield]
	State    ecs.Singleton[game.GameState]
	Queue    ecs.Singleton[game.Queue]
	Settings ecs.Singleton[game.Settings]
	HUD      ecs.Singleton[HUD]

	Layout Layout
}

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get()
	if screen == nil || screen.Image == nil {
		return
	}
	dst := screen.Image
	b := s.Field.Get().Board
	l := s.Layout

	dst.Fill(background)
	s.drawWell(dst, b)

	for e := range s.Active.Values() {
		pos := e.Position.Point()
		if s.Settings.Get().Ghost {
			ghost := pos.Add(image.Pt(0, b.DropDistance(e.Falling.Piece, pos)))
			c := e.Falling.Piece.Color()
			c.A = ghostAlpha
			s.drawPiece(dst, e.Falling.Piece, ghost, c)
		}
		s.drawPiece(dst, e.Falling.Piece, pos, e.Falling.Piece.Color())
	}

	for f := range s.Flashes.Values() {
		alpha := f.Flash.TTL / game.FlashTTL
		x, y := l.Cell(0, f.Flash.Row)
		vector.DrawFilledRect(dst, x, y, float32(l.Cols)*l.Block, l.Block,
			color.RGBA{255, 255, 255, uint8(clamp01(alpha) * 255)}, false)
	}

	for p := range s.Popups.Values() {
		x := l.Wall + p.Popup.X*l.Block
		y := l.Wall + p.Popup.Y*l.Block
		ebitenutil.DebugPrintAt(dst, p.Popup.Text, int(x)-len(p.Popup.Text)*3, int(y))
	}

	s.drawSidebar(dst)
}

func (s *RenderSystem) drawWell(dst *ebiten.Image, b *board.Board) {
	l := s.Layout
	for _, wall := range b.Walls(l.Block, l.Wall) {
		vector.DrawFilledRect(dst, l.Wall+wall.X, l.Wall+wall.Y, wall.W, wall.H, wallColor, false)
	}
	for y := range b.Height() {
		for x := range b.Width() {
			px, py := l.Cell(x, y)
			if shape, ok := b.At(x, y); ok {
				drawBlock(dst, px, py, l.Block, shape.Color())
				continue
			}
			vector.StrokeRect(dst, px, py, l.Block, l.Block, 1, gridColor, false)
		}
	}
}

func (s *RenderSystem) drawPiece(dst *ebiten.Image, p piece.Piece, pos image.Point, c color.RGBA) {
	for _, cell := range p.Cells() {
		y := pos.Y + cell.Y
		if y < 0 {
			continue
		}
		px, py := s.Layout.Cell(pos.X+cell.X, y)
		drawBlock(dst, px, py, s.Layout.Block, c)
	}
}

func drawBlock(dst *ebiten.Image, x, y, size float32, c color.RGBA) {
	vector.DrawFilledRect(dst, x, y, size, size, c, false)
	vector.StrokeRect(dst, x, y, size, size, 1, color.RGBA{0, 0, 0, c.A / 3}, false)
}

func (s *RenderSystem) drawSidebar(dst *ebiten.Image) {
	state := s.State.Get()
	hud := s.HUD.Get()
	x, y := s.Layout.Sidebar()

	lines := Lines(state, s.Queue.Get().Bag.Peek(previewCount), hud)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(dst, line, x, y+i*16)
	}

	if next := s.Queue.Get().Bag.Peek(1); len(next) > 0 {
		p := piece.New(next[0])
		block := s.Layout.Block / 2
		px, py := Preview(p, block, float32(x), float32(y+len(lines)*16+8), sidebarWidth-20)
		for _, cell := range p.Cells() {
			drawBlock(dst, px+float32(cell.X)*block, py+float32(cell.Y)*block, block, p.Color())
		}
	}

	if msg := Banner(state.Phase); msg != "" {
		w, h := s.Layout.Size()
		vector.DrawFilledRect(dst, 0, float32(h)/2-20, float32(w), 40, textShade, false)
		ebitenutil.DebugPrintAt(dst, msg, 20, h/2-8)
	}
}

// Preview is where to draw p's rotation box at block size so the piece sits
// centered in a row of width w starting at (x, y).
func Preview(p piece.Piece, block, x, y, w float32) (float32, float32) {
	pw, _ := p.PixelSize(block)
	b := p.Bounds()
	return x + (w-pw)/2 - float32(b.Min.X)*block, y - float32(b.Min.Y)*block
}

// Lines is the HUD text, one entry per row.
func Lines(state *game.GameState, next []piece.Shape, hud *HUD) []string {
	hold := "-"
	if state.HasHold {
		hold = state.Hold.String()
	}
	queue := ""
	for _, s := range next {
		queue += s.String()
	}

	lines := []string{
		fmt.Sprintf("SCORE %d", state.Score),
		fmt.Sprintf("LEVEL %d", state.Level),
		fmt.Sprintf("LINES %d", state.Lines),
		"",
		"NEXT  " + queue,
		"HOLD  " + hold,
	}
	if hud != nil {
		lines = append(lines, "", fmt.Sprintf("BEST  %d", max(hud.Best, state.Score)))
		if hud.Autoplay {
			lines = append(lines, "", "AUTOPLAY")
		}
	}
	return lines
}

// Banner is the overlay message for phase, empty while playing.
func Banner(phase game.Phase) string {
	switch phase {
	case game.Paused:
		return "PAUSED  (P to resume)"
	case game.GameOver:
		return "GAME OVER  (R to restart)"
	}
	return ""
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
