package app

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/ecs/debugui"
	debugui_ebiten "github.com/plus3/tetrs/ecs/debugui/ebiten"
	"github.com/plus3/tetrs/internal/game"
)

// enableDebugUI spawns the overlay windows into the world and builds the
// scheduler that emits them between the backend's BeginFrame and EndFrame.
func (a *App) enableDebugUI(backend debugui_ebiten.ImguiBackend) {
	storage := a.World.Storage
	debugui.Register(a.World.Registry)

	a.imgui = ecs.NewSingleton(storage, backend)
	a.capture = ecs.NewSingleton[debugui.ImguiInputState](storage)

	storage.Spawn(debugui.PerformanceWindow(storage, map[string]*ecs.Scheduler{
		"update": a.World.Scheduler,
		"render": a.Render,
	}))
	storage.Spawn(debugui.ArchetypeWindow(storage))
	storage.Spawn(debugui.InspectorWindow(storage, "Falling piece",
		reflect.TypeFor[game.Falling](), reflect.TypeFor[game.Position]()))
	storage.Spawn(stateWindow(a.World))

	a.debug = ecs.NewScheduler(storage)
	a.debug.Register(&debugui.ImguiSystem{})
	a.showUI = true
}

// stateWindow shows the run's scoreboard, the queue and the well as text.
func stateWindow(w *game.World) debugui.ImguiItem {
	return debugui.ImguiItem{Render: func() {
		imgui.SetNextWindowPosV(imgui.NewVec2(380, 280), imgui.CondOnce, imgui.NewVec2(0, 0))
		imgui.SetNextWindowSizeV(imgui.NewVec2(260, 460), imgui.CondOnce)
		if !imgui.BeginV("Game", nil, imgui.WindowFlagsNone) {
			imgui.End()
			return
		}

		state := w.State()
		imgui.Text(fmt.Sprintf("Phase: %s", state.Phase))
		imgui.Text(fmt.Sprintf("Score: %d  Lines: %d  Level: %d", state.Score, state.Lines, state.Level))
		imgui.Text(fmt.Sprintf("Pieces: %d  Time: %.1fs  Seed: %d", state.Pieces, state.Elapsed, state.Seed))

		var next []string
		for _, s := range w.Queue().Peek(5) {
			next = append(next, s.String())
		}
		imgui.Text("Next: " + strings.Join(next, " "))

		if p, pos, ok := w.Active(); ok {
			imgui.Text(fmt.Sprintf("Active: %s at %d,%d", p, pos.X, pos.Y))
		}

		imgui.Separator()
		b := w.Board()
		imgui.Text(fmt.Sprintf("Holes: %d  Heights: %v", b.Holes(), b.Heights()))
		imgui.Text(b.String())

		imgui.End()
	}}
}
