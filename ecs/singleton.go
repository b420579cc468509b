package ecs

import (
	"reflect"
	"unsafe"
)

// Singleton accesses a component that belongs to the world rather than to an
// entity. The pointer is resolved once and cached.
type Singleton[T any] struct {
	storage *Storage
	ptr     unsafe.Pointer
}

// NewSingleton returns an accessor for T, storing initial (or the zero value)
// first if the storage has no T yet.
func NewSingleton[T any](storage *Storage, initial ...T) *Singleton[T] {
	if storage.getSingletonEntry(reflect.TypeFor[T]()) == nil {
		var value T
		if len(initial) > 0 {
			value = initial[0]
		}
		storage.AddSingleton(&value)
	}

	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the accessor to storage. Called by the Scheduler.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.ptr = nil
	s.resolve()
}

func (s *Singleton[T]) resolve() {
	if s.ptr != nil || s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.ptr = entry.dataPtr
	}
}

// Get returns the singleton, or nil if it was never added.
func (s *Singleton[T]) Get() *T {
	s.resolve()
	return (*T)(s.ptr)
}

// Exists reports whether the singleton has been added.
func (s *Singleton[T]) Exists() bool {
	s.resolve()
	return s.ptr != nil
}
