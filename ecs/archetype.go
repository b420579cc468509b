package ecs

import (
	"reflect"
	"slices"
	"sort"
	"weak"

	"github.com/kamstrup/intmap"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

func sortTypes(types []reflect.Type) {
	sort.Sort(byTypeName(types))
}

// Archetype holds every entity that has exactly the same set of component
// types, one column per type.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []componentColumn
	refs    *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

// NewArchetype creates an archetype for the given sorted component types.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]componentColumn, len(types)),
		refs:    intmap.New[EntityId, weak.Pointer[EntityRef]](64),
	}
	for i, typ := range types {
		a.columns[i] = registry.column(typ)
	}
	return a
}

func (a *Archetype) columnIndex(t reflect.Type) int {
	for i, typ := range a.types {
		if typ == t {
			return i
		}
	}
	return -1
}

// Spawn stores one component per column and returns the shared slot index.
func (a *Archetype) Spawn(components []any) uint32 {
	if len(components) != len(a.types) {
		panic("ecs: archetype spawn needs one component per type")
	}

	slot := -1
	for _, comp := range components {
		idx := a.columnIndex(componentType(comp))
		if idx < 0 {
			panic("ecs: component " + componentType(comp).String() + " does not belong to archetype")
		}
		slot = a.columns[idx].Append(comp)
	}
	return uint32(slot)
}

// GetComponent returns a pointer to the component of type t at index, or nil.
func (a *Archetype) GetComponent(index uint32, t reflect.Type) any {
	idx := a.columnIndex(t)
	if idx < 0 {
		return nil
	}
	return a.columns[idx].Get(int(index))
}

// Delete frees the slot. Other slots keep their indices.
func (a *Archetype) Delete(index uint32) {
	id := NewEntityId(a.id, index)
	if ptr, ok := a.refs.Get(id); ok {
		if ref := ptr.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(id)
	}

	for _, column := range a.columns {
		column.Delete(int(index))
	}
}

// HasComponent reports whether the archetype has a column for t.
func (a *Archetype) HasComponent(t reflect.Type) bool {
	return slices.Contains(a.types, t)
}

// ID returns the archetype id.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	if len(a.columns) == 0 {
		return 0
	}
	return a.columns[0].Len()
}

// Compact removes holes left by deletions. Live EntityRefs are rewritten to
// the new slots; ids obtained before the call are invalid afterwards.
func (a *Archetype) Compact() {
	if len(a.columns) == 0 {
		return
	}

	moved := a.columns[0].Compact()
	for _, column := range a.columns[1:] {
		column.Compact()
	}

	kept := make(map[EntityId]weak.Pointer[EntityRef], len(moved))
	for from, to := range moved {
		ptr, ok := a.refs.Get(NewEntityId(a.id, uint32(from)))
		if !ok {
			continue
		}
		if ref := ptr.Value(); ref != nil {
			ref.Id = NewEntityId(a.id, uint32(to))
			kept[ref.Id] = ptr
		}
	}

	a.refs.Clear()
	for id, ptr := range kept {
		a.refs.Put(id, ptr)
	}
}

// Iter yields the id of every live entity.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.columns) == 0 {
			return
		}
		for index := range a.columns[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}
