package ecs

import (
	"iter"
	"reflect"
)

// componentColumn is the type-erased column of one component type inside an
// archetype. Slot indices are shared by every column of the archetype.
type componentColumn interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Compact() map[int]int
	Iter() iter.Seq[int]
}

// ComponentRegistry maps component types to column factories. Every type used
// with a Storage has to be registered first.
type ComponentRegistry struct {
	factories map[reflect.Type]func() componentColumn
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() componentColumn),
	}
}

// RegisterComponent registers T with the registry. Registering the same type
// twice is harmless.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() componentColumn {
		return &blockColumn[T]{}
	}
}

// Registered reports whether t has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) column(t reflect.Type) componentColumn {
	factory, ok := r.factories[t]
	if !ok {
		panic("ecs: component type " + t.String() + " not registered")
	}
	return factory()
}

const blockSize = 64

type block[T any] struct {
	items  [blockSize]T
	filled [blockSize]bool
}

// blockColumn stores components in fixed-size heap blocks. Blocks are
// allocated individually, so a pointer handed out by Get stays valid while the
// column grows; only Compact moves components.
type blockColumn[T any] struct {
	blocks    []*block[T]
	free      []int
	next      int
	liveCount int
}

func (c *blockColumn[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case T:
		value = v
	case *T:
		value = *v
	default:
		panic("ecs: cannot store " + reflect.TypeOf(item).String() + " in column of " + reflect.TypeFor[T]().String())
	}

	var index int
	if n := len(c.free); n > 0 {
		index = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		index = c.next
		c.next++
		if index/blockSize >= len(c.blocks) {
			c.blocks = append(c.blocks, &block[T]{})
		}
	}

	b := c.blocks[index/blockSize]
	b.items[index%blockSize] = value
	b.filled[index%blockSize] = true
	c.liveCount++
	return index
}

func (c *blockColumn[T]) slot(index int) (*block[T], int, bool) {
	if index < 0 || index >= c.next {
		return nil, 0, false
	}
	b := c.blocks[index/blockSize]
	return b, index % blockSize, b.filled[index%blockSize]
}

func (c *blockColumn[T]) Get(index int) any {
	b, i, ok := c.slot(index)
	if !ok {
		return nil
	}
	return &b.items[i]
}

func (c *blockColumn[T]) Has(index int) bool {
	_, _, ok := c.slot(index)
	return ok
}

func (c *blockColumn[T]) Delete(index int) {
	b, i, ok := c.slot(index)
	if !ok {
		return
	}
	var zero T
	b.items[i] = zero
	b.filled[i] = false
	c.free = append(c.free, index)
	c.liveCount--
}

func (c *blockColumn[T]) Len() int {
	return c.liveCount
}

// Compact packs live components to the front and returns old->new indices.
func (c *blockColumn[T]) Compact() map[int]int {
	moved := make(map[int]int, c.liveCount)
	packed := make([]*block[T], 0, (c.liveCount+blockSize-1)/blockSize)

	write := 0
	for read := 0; read < c.next; read++ {
		src := c.blocks[read/blockSize]
		if !src.filled[read%blockSize] {
			continue
		}
		if write/blockSize >= len(packed) {
			packed = append(packed, &block[T]{})
		}
		dst := packed[write/blockSize]
		dst.items[write%blockSize] = src.items[read%blockSize]
		dst.filled[write%blockSize] = true
		moved[read] = write
		write++
	}

	c.blocks = packed
	c.free = nil
	c.next = write
	return moved
}

func (c *blockColumn[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < c.next; i++ {
			if !c.blocks[i/blockSize].filled[i%blockSize] {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}
