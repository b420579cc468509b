// Package board models the well: which cells hold locked blocks, whether a
// piece fits, locking, line clears and the wall rectangles drawn around it.
package board

import (
	"fmt"
	"image"
	"strings"

	"github.com/kamstrup/intmap"
	"github.com/plus3/tetrs/internal/piece"
)

const (
	DefaultWidth  = 10
	DefaultHeight = 18
)

// Board is a Width x Height grid. Row 0 is the top. Locked cells are kept in
// a sparse map keyed by y*Width+x.
type Board struct {
	width, height int
	cells         *intmap.Map[int, piece.Shape]
}

// New creates an empty board.
func New(width, height int) *Board {
	if width < 4 || height < 4 {
		panic(fmt.Sprintf("board: %dx%d is too small", width, height))
	}
	return &Board{
		width:  width,
		height: height,
		cells:  intmap.New[int, piece.Shape](width * height),
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) key(x, y int) int {
	return y*b.width + x
}

func (b *Board) inside(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the shape locked at (x, y).
func (b *Board) At(x, y int) (piece.Shape, bool) {
	if !b.inside(x, y) {
		return 0, false
	}
	return b.cells.Get(b.key(x, y))
}

// Set fills (x, y). Out of range cells are ignored.
func (b *Board) Set(x, y int, s piece.Shape) {
	if b.inside(x, y) {
		b.cells.Put(b.key(x, y), s)
	}
}

// Clear empties (x, y).
func (b *Board) Clear(x, y int) {
	if b.inside(x, y) {
		b.cells.Del(b.key(x, y))
	}
}

// Count returns the number of locked cells.
func (b *Board) Count() int {
	return b.cells.Len()
}

// Blocked reports whether a piece cell may not occupy (x, y). Cells past the
// sides or the floor are blocked; rows above the top are open.
func (b *Board) Blocked(x, y int) bool {
	if x < 0 || x >= b.width || y >= b.height {
		return true
	}
	if y < 0 {
		return false
	}
	_, ok := b.cells.Get(b.key(x, y))
	return ok
}

// Fits reports whether p with its box at pos overlaps nothing.
func (b *Board) Fits(p piece.Piece, pos image.Point) bool {
	for _, c := range p.Cells() {
		if b.Blocked(pos.X+c.X, pos.Y+c.Y) {
			return false
		}
	}
	return true
}

// DropDistance is how many rows p can fall from pos.
func (b *Board) DropDistance(p piece.Piece, pos image.Point) int {
	d := 0
	for b.Fits(p, pos.Add(image.Pt(0, d+1))) {
		d++
	}
	return d
}

// Lock writes p into the grid. It reports whether any cell landed above the
// top row; those cells are dropped.
func (b *Board) Lock(p piece.Piece, pos image.Point) (above bool) {
	for _, c := range p.Cells() {
		x, y := pos.X+c.X, pos.Y+c.Y
		if y < 0 {
			above = true
			continue
		}
		b.Set(x, y, p.Shape)
	}
	return above
}

func (b *Board) rowFull(y int) bool {
	for x := 0; x < b.width; x++ {
		if _, ok := b.cells.Get(b.key(x, y)); !ok {
			return false
		}
	}
	return true
}

// FullRows lists complete rows from top to bottom without clearing them.
func (b *Board) FullRows() []int {
	var rows []int
	for y := 0; y < b.height; y++ {
		if b.rowFull(y) {
			rows = append(rows, y)
		}
	}
	return rows
}

// ClearLines removes complete rows, drops everything above them and returns
// the removed rows from top to bottom.
func (b *Board) ClearLines() []int {
	rows := b.FullRows()
	if len(rows) == 0 {
		return nil
	}

	full := make(map[int]bool, len(rows))
	for _, y := range rows {
		full[y] = true
	}

	write := b.height - 1
	for read := b.height - 1; read >= 0; read-- {
		if full[read] {
			continue
		}
		if write != read {
			for x := 0; x < b.width; x++ {
				if s, ok := b.cells.Get(b.key(x, read)); ok {
					b.cells.Put(b.key(x, write), s)
				} else {
					b.cells.Del(b.key(x, write))
				}
			}
		}
		write--
	}
	for ; write >= 0; write-- {
		for x := 0; x < b.width; x++ {
			b.cells.Del(b.key(x, write))
		}
	}
	return rows
}

// Heights returns the stack height of every column.
func (b *Board) Heights() []int {
	heights := make([]int, b.width)
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			if _, ok := b.cells.Get(b.key(x, y)); ok {
				heights[x] = b.height - y
				break
			}
		}
	}
	return heights
}

// Holes counts empty cells with a filled cell somewhere above them.
func (b *Board) Holes() int {
	holes := 0
	for x := 0; x < b.width; x++ {
		covered := false
		for y := 0; y < b.height; y++ {
			_, ok := b.cells.Get(b.key(x, y))
			switch {
			case ok:
				covered = true
			case covered:
				holes++
			}
		}
	}
	return holes
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	c := New(b.width, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if s, ok := b.cells.Get(b.key(x, y)); ok {
				c.cells.Put(c.key(x, y), s)
			}
		}
	}
	return c
}

// Reset empties the board.
func (b *Board) Reset() {
	b.cells.Clear()
}

// String draws the board one row per line, '.' for empty cells.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if s, ok := b.cells.Get(b.key(x, y)); ok {
				sb.WriteString(s.String())
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parse reads the String format. Every row must have the same width; '#'
// stands for a filled cell of unknown shape and is stored as I.
func Parse(text string) (*Board, error) {
	var rows []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse board: empty")
	}

	b := New(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != b.width {
			return nil, fmt.Errorf("parse board: row %d has width %d, want %d", y, len(row), b.width)
		}
		for x, r := range row {
			switch r {
			case '.':
			case '#':
				b.Set(x, y, piece.I)
			default:
				s, ok := piece.ParseShape(r)
				if !ok {
					return nil, fmt.Errorf("parse board: unknown cell %q at %d,%d", r, x, y)
				}
				b.Set(x, y, s)
			}
		}
	}
	return b, nil
}
