package piece

import "math/rand/v2"

// Bag deals shapes in shuffled runs of all seven.
type Bag struct {
	rng   *rand.Rand
	queue []Shape
}

// NewBag creates a bag drawing from rng.
func NewBag(rng *rand.Rand) *Bag {
	return &Bag{rng: rng}
}

// NewSeededBag creates a bag with its own deterministic source.
func NewSeededBag(seed uint64) *Bag {
	return NewBag(rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)))
}

func (b *Bag) refill() {
	run := Shapes()
	b.rng.Shuffle(len(run), func(i, j int) {
		run[i], run[j] = run[j], run[i]
	})
	b.queue = append(b.queue, run...)
}

// Next removes and returns the next piece.
func (b *Bag) Next() Piece {
	if len(b.queue) == 0 {
		b.refill()
	}
	s := b.queue[0]
	b.queue = b.queue[1:]
	return New(s)
}

// Peek returns the next n shapes without consuming them.
func (b *Bag) Peek(n int) []Shape {
	for len(b.queue) < n {
		b.refill()
	}
	out := make([]Shape, n)
	copy(out, b.queue)
	return out
}
