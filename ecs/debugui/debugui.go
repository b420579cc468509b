// Package debugui renders Dear ImGui windows from inside an ECS world.
//
// Windows are entities carrying an ImguiItem. ImguiSystem defers each item's
// Render func to the end of the frame so that widgets are emitted between the
// backend's BeginFrame and EndFrame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tetrs/ecs"
)

// ImguiItem holds a Dear ImGui render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState is a singleton telling game systems whether ImGui wants the
// mouse or keyboard this frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem updates ImguiInputState and queues every ImguiItem.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	io := imgui.CurrentIO()
	if state := i.InputState.Get(); state != nil {
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for item := range i.Items.Values() {
		if item.ImguiItem.Render != nil {
			frame.Commands.Defer(item.ImguiItem.Render)
		}
	}
}

// Register adds the debugui component types to registry.
func Register(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
}
