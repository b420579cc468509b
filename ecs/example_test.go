package ecs_test

import (
	"context"
	"fmt"
	"time"

	"github.com/plus3/tetrs/ecs"
)

type Transform struct {
	X, Y float32
}

type Speed struct {
	DX, DY float32
}

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Transform
		*Speed
	}]
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	for entity := range s.Entities.Values() {
		entity.Transform.X += entity.Speed.DX * float32(frame.DeltaTime)
		entity.Transform.Y += entity.Speed.DY * float32(frame.DeltaTime)
	}
}

type Clock struct {
	Frames int
	Time   float64
}

type ClockSystem struct {
	Clock ecs.Singleton[Clock]
}

func (s *ClockSystem) Execute(frame *ecs.UpdateFrame) {
	clock := s.Clock.Get()
	clock.Frames++
	clock.Time += frame.DeltaTime
}

// ExampleScheduler registers two systems and steps the world by hand. Query
// and Singleton fields are bound on Register.
func ExampleScheduler() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Speed](registry)
	storage := ecs.NewStorage(registry)
	ecs.NewSingleton[Clock](storage)

	storage.Spawn(Transform{X: 0, Y: 0}, Speed{DX: 10, DY: 5})
	storage.Spawn(Transform{X: 100, Y: 100}, Speed{DX: -5, DY: -5})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MovementSystem{}, &ClockSystem{})

	scheduler.Once(0.5)
	scheduler.Once(0.5)

	view := ecs.NewView[struct{ *Transform }](storage)
	for item := range view.Values() {
		fmt.Printf("(%.0f, %.0f)\n", item.Transform.X, item.Transform.Y)
	}

	var clock *Clock
	storage.ReadSingleton(&clock)
	fmt.Printf("frames=%d time=%.1f\n", clock.Frames, clock.Time)

	// Output:
	// (10, 5)
	// (95, 95)
	// frames=2 time=1.0
}

// ExampleScheduler_Run drives the systems from a ticker until the context ends.
func ExampleScheduler_Run() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Speed](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(Transform{}, Speed{DX: 1, DY: 1})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MovementSystem{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx, 5*time.Millisecond)

	fmt.Println("stopped")
	// Output:
	// stopped
}

// ExampleView shows an optional field and the entity id field.
func ExampleView() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Speed](registry)
	storage := ecs.NewStorage(registry)

	id := storage.Spawn(Transform{X: 3, Y: 4})

	view := ecs.NewView[struct {
		ecs.EntityId
		*Transform
		Speed *Speed `ecs:"optional"`
	}](storage)

	item := view.Get(id)
	fmt.Println(item.EntityId == id, item.Transform.X, item.Speed == nil)

	// Output:
	// true 3 true
}

// ExampleCommands queues structural changes and applies them in one go.
func ExampleCommands() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Speed](registry)
	storage := ecs.NewStorage(registry)

	id := storage.Spawn(Transform{})

	var commands ecs.Commands
	commands.AddComponent(id, Speed{DX: 1})
	commands.Spawn(Transform{X: 9})
	commands.Defer(func() {
		fmt.Println("entities:", storage.CollectStats().TotalEntityCount)
	})
	commands.Flush(storage)

	// Output:
	// entities: 2
}
