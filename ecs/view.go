package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

type viewField struct {
	typ      reflect.Type
	offset   uintptr
	optional bool
}

// View reads a fixed combination of components as one struct.
//
// T is a struct whose fields are pointers to component types. Embedded fields
// are required; named fields may carry `ecs:"optional"` and are left nil when
// the entity lacks that component. A field of type EntityId receives the id of
// the entity being read.
type View[T any] struct {
	storage  *Storage
	fields   []viewField
	idOffset uintptr
	hasId    bool
}

var entityIdType = reflect.TypeFor[EntityId]()

// NewView builds the field layout for T. It panics when T is not a valid view
// struct.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("ecs: view type must be a struct, got " + structType.String())
	}

	v := &View[T]{storage: storage}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			if v.hasId {
				panic("ecs: view " + structType.String() + " has more than one EntityId field")
			}
			v.hasId = true
			v.idOffset = field.Offset
			continue
		}

		if field.Type.Kind() != reflect.Ptr {
			panic("ecs: view field " + field.Name + " must be a pointer to a component")
		}

		optional := false
		if tag, ok := field.Tag.Lookup("ecs"); ok && !field.Anonymous {
			if tag != "optional" {
				panic("ecs: invalid tag \"" + tag + "\" on view field " + field.Name)
			}
			optional = true
		}

		v.fields = append(v.fields, viewField{
			typ:      field.Type.Elem(),
			offset:   field.Offset,
			optional: optional,
		})
	}

	if len(v.fields) == 0 {
		panic("ecs: view " + structType.String() + " has no component fields")
	}
	return v
}

func (v *View[T]) matches(archetype *Archetype) bool {
	for _, f := range v.fields {
		if !f.optional && !archetype.HasComponent(f.typ) {
			return false
		}
	}
	return true
}

// columnsFor maps each view field to an archetype column, -1 where absent.
func (v *View[T]) columnsFor(archetype *Archetype) []int {
	cols := make([]int, len(v.fields))
	for i, f := range v.fields {
		cols[i] = archetype.columnIndex(f.typ)
	}
	return cols
}

func setField(base unsafe.Pointer, offset uintptr, component any) {
	dst := (*unsafe.Pointer)(unsafe.Add(base, offset))
	if component == nil {
		*dst = nil
		return
	}
	*dst = (*iface)(unsafe.Pointer(&component)).data
}

func (v *View[T]) fill(out *T, archetype *Archetype, index int, cols []int) bool {
	base := unsafe.Pointer(out)
	for i, col := range cols {
		var component any
		if col >= 0 {
			component = archetype.columns[col].Get(index)
		}
		if component == nil && !v.fields[i].optional {
			return false
		}
		setField(base, v.fields[i].offset, component)
	}
	if v.hasId {
		*(*EntityId)(unsafe.Add(base, v.idOffset)) = NewEntityId(archetype.id, uint32(index))
	}
	return true
}

// Fill points the fields of out at the entity's components. It returns false
// when a required component is missing.
func (v *View[T]) Fill(id EntityId, out *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok || !v.matches(archetype) {
		return false
	}
	return v.fill(out, archetype, int(id.Index()), v.columnsFor(archetype))
}

// Get returns the view for id, or nil.
func (v *View[T]) Get(id EntityId) *T {
	var out T
	if !v.Fill(id, &out) {
		return nil
	}
	return &out
}

// GetRef is Get for an EntityRef.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	id, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(id)
}

func (v *View[T]) iterArchetype(archetype *Archetype) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		if len(archetype.columns) == 0 {
			return
		}
		cols := v.columnsFor(archetype)

		var out T
		for index := range archetype.columns[0].Iter() {
			if !v.fill(&out, archetype, index, cols) {
				continue
			}
			if !yield(NewEntityId(archetype.id, uint32(index)), out) {
				return
			}
		}
	}
}

// Iter walks the storage directly. Use a Query inside systems.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, archetype := range v.storage.archetypes {
			if !v.matches(archetype) {
				continue
			}
			for id, out := range v.iterArchetype(archetype) {
				if !yield(id, out) {
					return
				}
			}
		}
	}
}

// Values is Iter without ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, out := range v.Iter() {
			if !yield(out) {
				return
			}
		}
	}
}

// Spawn creates an entity from the non-nil component fields of data. The
// components are copied.
func (v *View[T]) Spawn(data T) EntityId {
	base := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.fields))
	for _, f := range v.fields {
		ptr := *(*unsafe.Pointer)(unsafe.Add(base, f.offset))
		if ptr == nil {
			if !f.optional {
				panic("ecs: required view field " + f.typ.String() + " is nil in Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(f.typ, ptr).Interface())
	}
	return v.storage.Spawn(components...)
}
