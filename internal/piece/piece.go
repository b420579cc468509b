// Package piece defines the seven tetrominoes: their cells in each
// orientation, bounding size, display color and wall kicks.
package piece

import (
	"image"
	"image/color"
	"math/rand/v2"
)

// Shape identifies a tetromino.
type Shape uint8

const (
	I Shape = iota
	O
	T
	J
	L
	S
	Z
)

// Count is the number of shapes.
const Count = 7

// DefaultBlock is the width of one cell in pixels.
const DefaultBlock float32 = 20

var shapeNames = [Count]string{"I", "O", "T", "J", "L", "S", "Z"}

// Shapes returns every shape in catalog order.
func Shapes() []Shape {
	return []Shape{I, O, T, J, L, S, Z}
}

func (s Shape) String() string {
	if int(s) < Count {
		return shapeNames[s]
	}
	return "?"
}

// ParseShape maps a letter to a shape.
func ParseShape(r rune) (Shape, bool) {
	for i, name := range shapeNames {
		if rune(name[0]) == r {
			return Shape(i), true
		}
	}
	return 0, false
}

// Orientation is one of four rotation states.
type Orientation uint8

const (
	North Orientation = iota
	East
	South
	West
)

func (o Orientation) String() string {
	switch o {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return "?"
}

// Rotation is a turn direction.
type Rotation int

const (
	Clockwise        Rotation = 1
	CounterClockwise Rotation = -1
)

// Turn applies r to o.
func (o Orientation) Turn(r Rotation) Orientation {
	return Orientation((int(o) + int(r) + 4) % 4)
}

// Piece is a shape in an orientation. Cells are offsets inside the shape's
// rotation box with y growing downwards.
type Piece struct {
	Shape       Shape
	Orientation Orientation
}

// New returns shape in its spawn orientation.
func New(shape Shape) Piece {
	return Piece{Shape: shape, Orientation: North}
}

// Random picks a shape uniformly.
func Random(rng *rand.Rand) Piece {
	return New(Shape(rng.IntN(Count)))
}

// Rotate returns the piece turned by r.
func (p Piece) Rotate(r Rotation) Piece {
	p.Orientation = p.Orientation.Turn(r)
	return p
}

func (p Piece) String() string {
	return p.Shape.String() + "/" + p.Orientation.String()
}

// spawn cells, North orientation.
var spawnCells = [Count][4]image.Point{
	I: {{0, 1}, {1, 1}, {2, 1}, {3, 1}},
	O: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	T: {{1, 0}, {0, 1}, {1, 1}, {2, 1}},
	J: {{0, 0}, {0, 1}, {1, 1}, {2, 1}},
	L: {{2, 0}, {0, 1}, {1, 1}, {2, 1}},
	S: {{1, 0}, {2, 0}, {0, 1}, {1, 1}},
	Z: {{0, 0}, {1, 0}, {1, 1}, {2, 1}},
}

var cellTable [Count][4][4]image.Point

func init() {
	for s := range Count {
		n := BoxSize(Shape(s))
		cells := spawnCells[s]
		for o := range 4 {
			cellTable[s][o] = cells
			for i, c := range cells {
				cells[i] = image.Pt(n-1-c.Y, c.X)
			}
		}
	}
}

// BoxSize is the side of the square the shape rotates in.
func BoxSize(s Shape) int {
	switch s {
	case I:
		return 4
	case O:
		return 2
	}
	return 3
}

// Cells returns the four occupied offsets.
func (p Piece) Cells() [4]image.Point {
	return cellTable[p.Shape][p.Orientation]
}

// Bounds is the tight rectangle around Cells.
func (p Piece) Bounds() image.Rectangle {
	cells := p.Cells()
	r := image.Rectangle{Min: cells[0], Max: cells[0].Add(image.Pt(1, 1))}
	for _, c := range cells[1:] {
		r = r.Union(image.Rectangle{Min: c, Max: c.Add(image.Pt(1, 1))})
	}
	return r
}

// Size returns the width and height of the piece in cells. It follows the
// orientation, so I is 4x1 at North and 1x4 at East.
func (p Piece) Size() (w, h int) {
	b := p.Bounds()
	return b.Dx(), b.Dy()
}

// PixelSize scales Size by block.
func (p Piece) PixelSize(block float32) (w, h float32) {
	cw, ch := p.Size()
	return float32(cw) * block, float32(ch) * block
}

var colors = [Count]color.RGBA{
	I: {77, 112, 166, 255},
	O: {242, 140, 41, 255},
	T: {224, 87, 89, 255},
	J: {117, 181, 176, 255},
	L: {89, 161, 79, 255},
	S: {176, 120, 161, 255},
	Z: {237, 199, 71, 255},
}

// Color returns the fixed display color of the shape.
func (s Shape) Color() color.RGBA {
	return colors[s]
}

// Color returns the display color of the piece's shape.
func (p Piece) Color() color.RGBA {
	return p.Shape.Color()
}
