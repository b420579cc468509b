package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats summarizes how often and how long systems ran.
type SchedulerStats struct {
	SystemCount     int
	FrameCount      int64
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats holds timings for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type storageBinder interface {
	Init(storage *Storage)
}

type queryExecutor interface {
	Execute()
}

type registeredSystem struct {
	system  System
	queries []queryExecutor
	stats   SystemStats
}

// Scheduler runs systems in registration order against one Storage and
// flushes the shared Commands buffer after each pass.
type Scheduler struct {
	storage  *Storage
	systems  []*registeredSystem
	commands Commands
	frames   int64
}

// NewScheduler creates a scheduler for storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{storage: storage}
}

// Storage returns the storage systems run against.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Register appends systems, binding their Query and Singleton fields.
func (s *Scheduler) Register(systems ...System) {
	for _, system := range systems {
		s.systems = append(s.systems, &registeredSystem{
			system:  system,
			queries: s.bind(system),
			stats: SystemStats{
				Name:        systemName(system),
				MinDuration: time.Duration(1<<63 - 1),
			},
		})
	}
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// bind initializes every addressable field that knows how to bind itself to a
// storage and returns the ones that need executing per frame.
func (s *Scheduler) bind(system System) []queryExecutor {
	v := reflect.ValueOf(system)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil
	}
	v = v.Elem()

	var queries []queryExecutor
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		addr := field.Addr().Interface()
		binder, ok := addr.(storageBinder)
		if !ok {
			continue
		}
		binder.Init(s.storage)

		if q, ok := addr.(queryExecutor); ok {
			queries = append(queries, q)
		}
	}
	return queries
}

// Once runs every system once with dt seconds of elapsed time.
func (s *Scheduler) Once(dt float64) {
	frame := &UpdateFrame{
		DeltaTime: dt,
		Commands:  &s.commands,
		Storage:   s.storage,
	}

	for _, rs := range s.systems {
		start := time.Now()
		for _, q := range rs.queries {
			q.Execute()
		}
		rs.system.Execute(frame)
		rs.record(time.Since(start))
	}

	s.commands.Flush(s.storage)
	s.frames++
}

func (rs *registeredSystem) record(d time.Duration) {
	st := &rs.stats
	st.ExecutionCount++
	st.LastDuration = d
	st.TotalDuration += d
	if d < st.MinDuration {
		st.MinDuration = d
	}
	if d > st.MaxDuration {
		st.MaxDuration = d
	}
}

// Run calls Once on every tick of interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Once(now.Sub(last).Seconds())
			last = now
		}
	}
}

// GetStats returns a copy of the current timings.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		FrameCount:  s.frames,
		Systems:     make([]SystemStats, len(s.systems)),
	}
	for i, rs := range s.systems {
		st := rs.stats
		if st.ExecutionCount > 0 {
			st.AvgDuration = st.TotalDuration / time.Duration(st.ExecutionCount)
		} else {
			st.MinDuration = 0
		}
		stats.Systems[i] = st
		stats.TotalExecutions += st.ExecutionCount
	}
	return stats
}
