package ecs

import "reflect"

// Commands buffers structural changes made while systems iterate. The
// scheduler flushes the buffer after every frame.
type Commands struct {
	spawns  [][]any
	deletes []EntityId
	adds    []componentChange
	removes []componentChange
	defers  []func()
}

type componentChange struct {
	entity    EntityId
	component any
	typ       reflect.Type
}

// Spawn queues a new entity.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues an entity for deletion.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues attaching component to entity.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, componentChange{entity: entity, component: component})
}

// RemoveComponent queues detaching compType from entity.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, componentChange{entity: entity, typ: compType})
}

// Defer queues fn to run after all other queued changes.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Pending reports whether anything is queued.
func (c *Commands) Pending() bool {
	return len(c.spawns)+len(c.deletes)+len(c.adds)+len(c.removes)+len(c.defers) > 0
}

// Flush applies queued changes in order deletes, removes, adds, spawns,
// defers, then resets the buffer. Changes to an entity deleted in the same
// flush are dropped. An entity that moves archetype is followed through later
// changes queued against its old id.
func (c *Commands) Flush(storage *Storage) {
	deleted := make(map[EntityId]bool, len(c.deletes))
	for _, id := range c.deletes {
		storage.Delete(id)
		deleted[id] = true
	}

	moved := make(map[EntityId]EntityId)
	current := func(id EntityId) EntityId {
		for {
			next, ok := moved[id]
			if !ok {
				return id
			}
			id = next
		}
	}

	for _, cmd := range c.removes {
		if deleted[cmd.entity] {
			continue
		}
		id := current(cmd.entity)
		if newId := storage.RemoveComponent(id, cmd.typ); newId != id {
			moved[id] = newId
		}
	}

	for _, cmd := range c.adds {
		if deleted[cmd.entity] {
			continue
		}
		id := current(cmd.entity)
		if newId := storage.AddComponent(id, cmd.component); newId != id {
			moved[id] = newId
		}
	}

	for _, components := range c.spawns {
		storage.Spawn(components...)
	}

	defers := c.defers
	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = nil

	// Work queued by a deferred func waits for the next flush.
	for _, fn := range defers {
		fn()
	}
}
