package ecs_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/plus3/tetrs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	tests := []struct {
		archetypeId uint32
		index       uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("archetype=%d,index=%d", tt.archetypeId, tt.index), func(t *testing.T) {
			id := ecs.NewEntityId(tt.archetypeId, tt.index)
			assert.Equal(t, tt.archetypeId, id.ArchetypeId())
			assert.Equal(t, tt.index, id.Index())
		})
	}
}

func TestSpawnEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5}, Score(32))
	assert.NotEqual(t, ecs.EntityId(0), id)
	assert.True(t, storage.Exists(id))

	pos := ecs.ReadComponent[Position](storage, id)
	require.NotNil(t, pos)
	assert.Equal(t, Position{X: 1, Y: 2}, *pos)

	score := ecs.ReadComponent[Score](storage, id)
	require.NotNil(t, score)
	assert.Equal(t, Score(32), *score)

	assert.Nil(t, ecs.ReadComponent[Health](storage, id))
}

func TestSpawnSameTypesShareArchetype(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{}, Velocity{})
	b := storage.Spawn(Velocity{}, Position{})
	c := storage.Spawn(Position{})

	assert.Equal(t, a.ArchetypeId(), b.ArchetypeId())
	assert.NotEqual(t, a.ArchetypeId(), c.ArchetypeId())
	assert.NotNil(t, storage.GetArchetype(Velocity{}, Position{}))
	assert.Nil(t, storage.GetArchetype(Health{}))
}

func TestSpawnPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { storage.Spawn() })
	assert.Panics(t, func() { storage.Spawn(Position{}, Position{}) })
	assert.Panics(t, func() { storage.Spawn(struct{ Unregistered int }{}) })
}

func TestDeleteEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1})
	other := storage.Spawn(Position{X: 2})

	storage.Delete(id)
	assert.False(t, storage.Exists(id))
	assert.Nil(t, storage.GetComponent(id, reflect.TypeFor[Position]()))
	assert.True(t, storage.Exists(other))

	// Freed slots are reused.
	reused := storage.Spawn(Position{X: 3})
	assert.Equal(t, id, reused)

	storage.Delete(ecs.NewEntityId(0xDEAD, 7))
}

func TestComponentPointersStayValidWhileGrowing(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	first := storage.Spawn(Position{X: 42})
	pos := ecs.ReadComponent[Position](storage, first)

	for i := 0; i < 500; i++ {
		storage.Spawn(Position{X: float32(i)})
	}

	pos.Y = 7
	assert.Equal(t, float32(42), ecs.ReadComponent[Position](storage, first).X)
	assert.Equal(t, float32(7), ecs.ReadComponent[Position](storage, first).Y)
}

func TestAddComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1, Y: 2})
	newId := storage.AddComponent(id, Velocity{DX: 3})

	assert.NotEqual(t, id, newId)
	assert.False(t, storage.Exists(id))
	assert.True(t, storage.HasComponent(newId, reflect.TypeFor[Velocity]()))
	assert.Equal(t, Position{X: 1, Y: 2}, *ecs.ReadComponent[Position](storage, newId))
	assert.Equal(t, Velocity{DX: 3}, *ecs.ReadComponent[Velocity](storage, newId))

	t.Run("existing type overwrites in place", func(t *testing.T) {
		sameId := storage.AddComponent(newId, &Velocity{DX: 9})
		assert.Equal(t, newId, sameId)
		assert.Equal(t, float32(9), ecs.ReadComponent[Velocity](storage, newId).DX)
	})

	t.Run("missing entity", func(t *testing.T) {
		assert.Equal(t, ecs.EntityId(0), storage.AddComponent(id, Health{}))
	})
}

func TestRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1}, Velocity{DX: 2})
	newId := storage.RemoveComponent(id, reflect.TypeFor[Velocity]())

	assert.NotEqual(t, id, newId)
	assert.False(t, storage.HasComponent(newId, reflect.TypeFor[Velocity]()))
	assert.Equal(t, float32(1), ecs.ReadComponent[Position](storage, newId).X)

	assert.Equal(t, newId, storage.RemoveComponent(newId, reflect.TypeFor[Health]()))

	assert.Equal(t, ecs.EntityId(0), storage.RemoveComponent(newId, reflect.TypeFor[Position]()))
	assert.False(t, storage.Exists(newId))
}

func TestSingletons(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	var missing *Health
	assert.False(t, storage.ReadSingleton(&missing))

	storage.AddSingleton(Health{Current: 5, Max: 10})

	var health *Health
	require.True(t, storage.ReadSingleton(&health))
	assert.Equal(t, 5, health.Current)

	storage.AddSingleton(&Health{Current: 7, Max: 10})
	assert.Equal(t, 7, health.Current, "replacing a singleton keeps its address")

	assert.Panics(t, func() { storage.ReadSingleton(health) })
}

func TestCompactKeepsRefs(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	ids := make([]ecs.EntityId, 5)
	for i := range ids {
		ids[i] = storage.Spawn(Position{X: float32(i)})
	}
	ref := storage.CreateEntityRef(ids[4])

	storage.Delete(ids[0])
	storage.Delete(ids[2])
	storage.Compact()

	resolved, ok := storage.ResolveEntityRef(ref)
	require.True(t, ok)
	assert.Equal(t, float32(4), ecs.ReadComponent[Position](storage, resolved).X)
	assert.Equal(t, uint32(2), resolved.Index())
}
