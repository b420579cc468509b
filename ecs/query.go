package ecs

import "iter"

// Query is a View that caches matching archetypes and snapshots its results
// once per frame. The Scheduler initializes Query fields of systems and calls
// Execute before each system runs.
type Query[T any] struct {
	view       *View[T]
	storage    *Storage
	archetypes []*Archetype
	seen       int

	ids    []EntityId
	values []T
	valid  bool
}

// NewQuery creates a query outside of a scheduler.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to storage and drops all caches.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.archetypes = nil
	q.seen = -1
	q.valid = false
}

func (q *Query[T]) refreshArchetypes() {
	if len(q.storage.archetypes) == q.seen {
		return
	}
	q.seen = len(q.storage.archetypes)
	q.archetypes = q.archetypes[:0]
	for _, archetype := range q.storage.archetypes {
		if q.view.matches(archetype) {
			q.archetypes = append(q.archetypes, archetype)
		}
	}
}

// Execute snapshots every matching entity. Pointers in the snapshot stay
// valid until the next structural change to those entities.
func (q *Query[T]) Execute() {
	q.refreshArchetypes()

	q.ids = q.ids[:0]
	q.values = q.values[:0]
	for _, archetype := range q.archetypes {
		for id, out := range q.view.iterArchetype(archetype) {
			q.ids = append(q.ids, id)
			q.values = append(q.values, out)
		}
	}
	q.valid = true
}

func (q *Query[T]) mustBeExecuted() {
	if !q.valid {
		panic("ecs: query read before Execute")
	}
}

// Iter yields the snapshot taken by the last Execute.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	q.mustBeExecuted()
	return func(yield func(EntityId, T) bool) {
		for i := range q.ids {
			if !yield(q.ids[i], q.values[i]) {
				return
			}
		}
	}
}

// Values is Iter without ids.
func (q *Query[T]) Values() iter.Seq[T] {
	q.mustBeExecuted()
	return func(yield func(T) bool) {
		for i := range q.values {
			if !yield(q.values[i]) {
				return
			}
		}
	}
}

// Len returns the snapshot size.
func (q *Query[T]) Len() int {
	q.mustBeExecuted()
	return len(q.ids)
}

// First returns the first entity of the snapshot.
func (q *Query[T]) First() (EntityId, T, bool) {
	q.mustBeExecuted()
	if len(q.ids) == 0 {
		var zero T
		return 0, zero, false
	}
	return q.ids[0], q.values[0], true
}

// Get reads one entity through the query's view, bypassing the snapshot.
func (q *Query[T]) Get(id EntityId) *T {
	return q.view.Get(id)
}
