package piece

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBagWindows(t *testing.T) {
	bag := NewSeededBag(42)

	for window := 0; window < 20; window++ {
		seen := map[Shape]int{}
		for i := 0; i < Count; i++ {
			seen[bag.Next().Shape]++
		}
		for _, s := range Shapes() {
			assert.Equal(t, 1, seen[s], "window %d shape %s", window, s)
		}
	}
}

func TestBagPeekDoesNotConsume(t *testing.T) {
	bag := NewSeededBag(7)

	bag.Next()
	upcoming := bag.Peek(10)
	assert.Len(t, upcoming, 10)

	for _, want := range upcoming {
		assert.Equal(t, want, bag.Next().Shape)
	}
}

func TestSeededBagIsDeterministic(t *testing.T) {
	a, b := NewSeededBag(99), NewSeededBag(99)
	assert.Equal(t, a.Peek(21), b.Peek(21))
}
