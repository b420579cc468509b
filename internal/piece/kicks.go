package piece

import "image"

// Kick tables list offsets with y pointing up, as they are usually published.
// Kicks converts them to board coordinates.
var (
	standardKicks = map[[2]Orientation][5]image.Point{
		{North, East}:  {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		{East, North}:  {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		{East, South}:  {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		{South, East}:  {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		{South, West}:  {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
		{West, South}:  {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		{West, North}:  {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		{North, West}:  {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	}
	iKicks = map[[2]Orientation][5]image.Point{
		{North, East}: {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
		{East, North}: {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
		{East, South}: {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
		{South, East}: {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		{South, West}: {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
		{West, South}: {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
		{West, North}: {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		{North, West}: {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
	}
)

// Kicks returns the translations to try, in order, when rotating p by r.
// The first entry is always the unshifted rotation. O never kicks.
func (p Piece) Kicks(r Rotation) []image.Point {
	if p.Shape == O {
		return []image.Point{{}}
	}

	table := standardKicks
	if p.Shape == I {
		table = iKicks
	}

	tests := table[[2]Orientation{p.Orientation, p.Orientation.Turn(r)}]
	out := make([]image.Point, len(tests))
	for i, t := range tests {
		out[i] = image.Pt(t.X, -t.Y)
	}
	return out
}
