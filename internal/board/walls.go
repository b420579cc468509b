package board

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float32
}

// DefaultWallThickness is the wall width in pixels.
const DefaultWallThickness float32 = 10

// Walls returns the left, right, top and bottom wall rectangles around the
// well, with the well's top-left corner at the origin.
func (b *Board) Walls(block, thickness float32) [4]Rect {
	w := float32(b.width) * block
	h := float32(b.height) * block
	return [4]Rect{
		{X: -thickness, Y: -thickness, W: thickness, H: h + 2*thickness},
		{X: w, Y: -thickness, W: thickness, H: h + 2*thickness},
		{X: 0, Y: -thickness, W: w, H: thickness},
		{X: 0, Y: h, W: w, H: thickness},
	}
}
