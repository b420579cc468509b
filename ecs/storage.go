package ecs

import (
	"reflect"
	"unsafe"
	"weak"
)

// iface mirrors the runtime layout of a non-empty interface value.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

type singletonEntry struct {
	value   reflect.Value // *T
	dataPtr unsafe.Pointer
}

// Storage owns all archetypes and singletons of one world.
type Storage struct {
	archetypes map[uint32]*Archetype
	singletons map[reflect.Type]*singletonEntry
	registry   *ComponentRegistry
}

// NewStorage creates an empty world using registry for component columns.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		singletons: make(map[reflect.Type]*singletonEntry),
		registry:   registry,
	}
}

// Registry returns the registry the storage was created with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// componentType returns the stored type for a component value. Pointers are
// dereferenced once; reference-like kinds are rejected.
func componentType(comp any) reflect.Type {
	t := reflect.TypeOf(comp)
	if t == nil {
		panic("ecs: nil component")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		panic("ecs: components cannot be pointers, maps, channels, or functions")
	}
	return t
}

func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		types = append(types, componentType(comp))
	}
	sortTypes(types)
	for i := 1; i < len(types); i++ {
		if types[i] == types[i-1] {
			panic("ecs: duplicate component type " + types[i].String())
		}
	}
	return types
}

// hashTypes is FNV-1a over the runtime type pointers of sorted types.
func hashTypes(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		ptr := uintptr((*iface)(unsafe.Pointer(&t)).data)
		h ^= uint32(ptr)
		h *= prime
		if unsafe.Sizeof(ptr) == 8 {
			h ^= uint32(uint64(ptr) >> 32)
			h *= prime
		}
	}
	return h
}

// archetypeFor returns the archetype for sorted types, creating it on first
// use. Hash collisions probe to the next free id; id zero is never used so
// that EntityId zero can mean "no entity".
func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	id := hashTypes(types)
	for {
		if id == 0 {
			id++
			continue
		}
		archetype, ok := s.archetypes[id]
		if !ok {
			archetype = NewArchetype(id, types, s.registry)
			s.archetypes[id] = archetype
			return archetype
		}
		if slicesEqual(archetype.types, types) {
			return archetype
		}
		id++
	}
}

func (s *Storage) lookupArchetype(types []reflect.Type) *Archetype {
	id := hashTypes(types)
	for {
		if id == 0 {
			id++
			continue
		}
		archetype, ok := s.archetypes[id]
		if !ok {
			return nil
		}
		if slicesEqual(archetype.types, types) {
			return archetype
		}
		id++
	}
}

func slicesEqual(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GetArchetype returns the archetype holding exactly the given component
// values' types, or nil.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	return s.lookupArchetype(extractComponentTypes(components))
}

// GetArchetypeByTypes is GetArchetype for reflect types. types is sorted in place.
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sortTypes(types)
	return s.lookupArchetype(types)
}

// Archetypes yields every archetype in no particular order.
func (s *Storage) Archetypes() func(yield func(*Archetype) bool) {
	return func(yield func(*Archetype) bool) {
		for _, archetype := range s.archetypes {
			if !yield(archetype) {
				return
			}
		}
	}
}

// Spawn creates an entity from the given components. Values and pointers to
// values are both accepted; pointed-to values are copied.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("ecs: cannot spawn entity without components")
	}

	archetype := s.archetypeFor(extractComponentTypes(components))
	return NewEntityId(archetype.id, archetype.Spawn(components))
}

// Delete removes the entity. Unknown ids are ignored.
func (s *Storage) Delete(id EntityId) {
	if archetype, ok := s.archetypes[id.ArchetypeId()]; ok {
		archetype.Delete(id.Index())
	}
}

// Exists reports whether id names a live entity.
func (s *Storage) Exists(id EntityId) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok || len(archetype.columns) == 0 {
		return false
	}
	return archetype.columns[0].Has(int(id.Index()))
}

// move copies an entity into the archetype for newTypes, with extra replacing
// or adding one component, and fixes up its EntityRef.
func (s *Storage) move(id EntityId, from *Archetype, newTypes []reflect.Type, extra any) EntityId {
	to := s.archetypeFor(newTypes)

	var extraType reflect.Type
	if extra != nil {
		extraType = componentType(extra)
	}

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		if typ == extraType {
			components = append(components, extra)
			continue
		}
		components = append(components, from.GetComponent(id.Index(), typ))
	}

	newId := NewEntityId(to.id, to.Spawn(components))

	if ptr, ok := from.refs.Get(id); ok {
		if ref := ptr.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = to
			to.refs.Put(newId, ptr)
		}
		from.refs.Del(id)
	}

	for _, column := range from.columns {
		column.Delete(int(id.Index()))
	}
	return newId
}

// AddComponent attaches component to the entity and returns its new id. If the
// entity already has that type the value is overwritten in place.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	if !s.Exists(id) {
		return 0
	}
	from := s.archetypes[id.ArchetypeId()]

	compType := componentType(component)
	if existing := from.GetComponent(id.Index(), compType); existing != nil {
		dst := reflect.ValueOf(existing).Elem()
		src := reflect.ValueOf(component)
		if src.Kind() == reflect.Ptr {
			src = src.Elem()
		}
		dst.Set(src)
		return id
	}

	newTypes := make([]reflect.Type, 0, len(from.types)+1)
	newTypes = append(newTypes, from.types...)
	newTypes = append(newTypes, compType)
	sortTypes(newTypes)

	return s.move(id, from, newTypes, component)
}

// RemoveComponent detaches compType and returns the new id. Removing the last
// component deletes the entity and returns zero.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) EntityId {
	if !s.Exists(id) {
		return 0
	}
	from := s.archetypes[id.ArchetypeId()]
	if !from.HasComponent(compType) {
		return id
	}

	newTypes := make([]reflect.Type, 0, len(from.types)-1)
	for _, typ := range from.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
		}
	}

	if len(newTypes) == 0 {
		from.Delete(id.Index())
		return 0
	}
	return s.move(id, from, newTypes, nil)
}

// GetComponent returns a pointer to the entity's component of compType, or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), compType)
}

// HasComponent reports whether the entity's archetype includes compType.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}
	return archetype.HasComponent(compType)
}

// Compact compacts every archetype. Previously obtained EntityIds are invalid
// afterwards; EntityRefs are updated.
func (s *Storage) Compact() {
	for _, archetype := range s.archetypes {
		archetype.Compact()
	}
}

// CreateEntityRef returns the shared reference for id, creating it if needed.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil || !s.Exists(id) {
		return nil
	}

	if ptr, ok := archetype.refs.Get(id); ok {
		if ref := ptr.Value(); ref != nil {
			return ref
		}
		archetype.refs.Del(id)
	}

	ref := &EntityRef{Id: id, Archetype: archetype}
	archetype.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the current id for ref.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if !ref.Valid() {
		return 0, false
	}
	return ref.Id, true
}

// InvalidateEntityRef detaches ref from its entity without deleting the entity.
func (s *Storage) InvalidateEntityRef(ref *EntityRef) bool {
	if !ref.Valid() {
		return false
	}
	if archetype := s.archetypes[ref.Id.ArchetypeId()]; archetype != nil {
		archetype.refs.Del(ref.Id)
	}
	ref.Id = 0
	ref.Archetype = nil
	return true
}

// AddSingleton stores value as the singleton of its type, replacing the
// contents of an existing one so that cached pointers stay valid.
func (s *Storage) AddSingleton(value any) {
	t := componentType(value)
	src := reflect.ValueOf(value)
	if src.Kind() == reflect.Ptr {
		src = src.Elem()
	}

	if entry, ok := s.singletons[t]; ok {
		entry.value.Elem().Set(src)
		return
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(src)
	s.singletons[t] = &singletonEntry{
		value:   ptr,
		dataPtr: ptr.UnsafePointer(),
	}
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// ReadSingleton points *target at the singleton of type T. target must be a
// **T. Returns false when no such singleton exists.
func (s *Storage) ReadSingleton(target any) bool {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Ptr {
		panic("ecs: ReadSingleton target must be a pointer to a pointer")
	}

	entry := s.singletons[rv.Elem().Type().Elem()]
	if entry == nil {
		return false
	}
	rv.Elem().Set(entry.value)
	return true
}

// ComponentReader is implemented by Storage.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T component or nil.
func ReadComponent[T any](reader ComponentReader, id EntityId) *T {
	comp, _ := reader.GetComponent(id, reflect.TypeFor[T]()).(*T)
	return comp
}
