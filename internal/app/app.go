// Package app hosts a game world in an ebiten window.
package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/ecs/debugui"
	debugui_ebiten "github.com/plus3/tetrs/ecs/debugui/ebiten"
	"github.com/plus3/tetrs/internal/bot"
	"github.com/plus3/tetrs/internal/game"
	"github.com/plus3/tetrs/internal/render"
)

// TickRate is the fixed update rate.
const TickRate = 60

const title = "tetrs"

// Options configure an App.
type Options struct {
	Game     game.Options
	Best     int
	Autoplay bool
	DebugUI  bool
	Keymap   Keymap
}

// App implements ebiten.Game. Update steps the world at a fixed rate; Draw
// runs a separate render scheduler over the same storage.
type App struct {
	World    *game.World
	Render   *ecs.Scheduler
	Keymap   Keymap
	Autoplay *bot.Bot

	layout render.Layout
	keys   Keys
	screen *ecs.Singleton[render.Screen]
	hud    *ecs.Singleton[render.HUD]

	debug   *ecs.Scheduler
	imgui   *ecs.Singleton[debugui_ebiten.ImguiBackend]
	capture *ecs.Singleton[debugui.ImguiInputState]
	showUI  bool
}

// New builds the world and its schedulers. With opts.DebugUI the Dear ImGui
// backend is created, which also opens the window.
func New(opts Options) (*App, error) {
	w, err := game.NewWorld(opts.Game)
	if err != nil {
		return nil, err
	}

	keymap := opts.Keymap
	if keymap.HardDrop == nil {
		keymap = DefaultKeymap()
	}

	a := &App{
		World:  w,
		layout: render.NewLayout(opts.Game.Settings.Width, opts.Game.Settings.Height),
		Keymap: keymap,
		keys:   ebitenKeys{},
		screen: ecs.NewSingleton[render.Screen](w.Storage),
		hud: ecs.NewSingleton(w.Storage, render.HUD{
			Best:     opts.Best,
			Autoplay: opts.Autoplay,
		}),
	}
	if opts.Autoplay {
		a.Autoplay = bot.New()
	}

	a.Render = ecs.NewScheduler(w.Storage)
	a.Render.Register(&render.RenderSystem{Layout: a.layout})

	if opts.DebugUI {
		width, height := a.layout.Size()
		a.enableDebugUI(debugui_ebiten.NewImguiBackend(title, width*2, height*2))
	}
	return a, nil
}

// Run opens the window and blocks until it closes.
func (a *App) Run() error {
	w, h := a.layout.Size()
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(TickRate)
	return ebiten.RunGame(a)
}

func (a *App) Update() error {
	if anyJustPressed(a.keys, a.Keymap.Quit) {
		return ebiten.Termination
	}
	if anyJustPressed(a.keys, a.Keymap.Debug) && a.debug != nil {
		a.showUI = !a.showUI
	}
	if anyJustPressed(a.keys, a.Keymap.Autoplay) {
		a.toggleAutoplay()
	}

	var in game.Intents
	switch {
	case a.capture != nil && a.showUI && a.capture.Get().WantCaptureKeyboard:
	case a.Autoplay != nil:
		in = a.Autoplay.Intents(a.World)
		// Pause and restart stay with the player.
		keys := a.Keymap.Intents(a.keys)
		in.Pause = in.Pause || keys.Pause
		in.Restart = keys.Restart
	default:
		in = a.Keymap.Intents(a.keys)
	}

	a.World.Step(1.0/TickRate, in)

	if hud := a.hud.Get(); a.World.Over() {
		hud.Best = max(hud.Best, a.World.State().Score)
	}

	if a.debug != nil && a.showUI {
		backend := a.imgui.Get()
		backend.BeginFrame()
		a.debug.Once(1.0 / TickRate)
		backend.EndFrame()
	}
	return nil
}

func (a *App) toggleAutoplay() {
	if a.Autoplay == nil {
		a.Autoplay = bot.New()
	} else {
		a.Autoplay = nil
	}
	a.hud.Get().Autoplay = a.Autoplay != nil
}

func (a *App) Draw(screen *ebiten.Image) {
	a.screen.Get().Image = screen
	a.Render.Once(0)
	a.screen.Get().Image = nil

	if a.debug != nil && a.showUI {
		a.imgui.Get().Draw(screen)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := a.layout.Size()
	if a.debug != nil {
		a.imgui.Get().Layout(w, h)
	}
	return w, h
}
