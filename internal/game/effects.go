package game

import (
	"log"

	"github.com/plus3/tetrs/ecs"
)

// EffectSystem ages row flashes and score popups and removes expired ones.
type EffectSystem struct {
	Flashes ecs.Query[struct {
		ecs.EntityId
		*Flash
	}]
	Popups ecs.Query[struct {
		ecs.EntityId
		*Popup
	}]
}

func (s *EffectSystem) Execute(frame *ecs.UpdateFrame) {
	for id, f := range s.Flashes.Iter() {
		f.Flash.TTL -= frame.DeltaTime
		if f.Flash.TTL <= 0 {
			frame.Commands.Delete(id)
		}
	}
	for id, p := range s.Popups.Iter() {
		p.Popup.TTL -= frame.DeltaTime
		p.Popup.Y -= float32(popupRise * frame.DeltaTime)
		if p.Popup.TTL <= 0 {
			frame.Commands.Delete(id)
		}
	}
}

// AudioSystem plays a sound for each event of the frame.
type AudioSystem struct {
	Events ecs.Singleton[Events]
	Player Player
}

func (s *AudioSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Player == nil {
		return
	}
	for _, ev := range s.Events.Get().List {
		s.Player.Play(ev)
	}
}

// RecordSystem hands the result of a finished run to Sink.
type RecordSystem struct {
	State  ecs.Singleton[GameState]
	Events ecs.Singleton[Events]
	Sink   Sink
}

func (s *RecordSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Sink == nil || !s.Events.Get().Has(EventGameOver) {
		return
	}
	result := s.State.Get().Result()
	if err := s.Sink.Record(result); err != nil {
		log.Printf("tetrs: record score %d: %v", result.Score, err)
	}
}
