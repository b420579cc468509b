package debugui

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tetrs/ecs"
)

// ArchetypeWindow lists archetypes by size with their singletons below.
func ArchetypeWindow(storage *ecs.Storage) ImguiItem {
	return ImguiItem{Render: func() {
		imgui.SetNextWindowPosV(imgui.NewVec2(10, 340), imgui.CondOnce, imgui.NewVec2(0, 0))
		imgui.SetNextWindowSizeV(imgui.NewVec2(360, 220), imgui.CondOnce)
		if !imgui.BeginV("Archetypes", nil, imgui.WindowFlagsNone) {
			imgui.End()
			return
		}

		stats := storage.CollectStats()
		const flags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("archetypes", 3, flags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("ID")
			imgui.TableSetupColumn("Components")
			imgui.TableSetupColumn("Entities")
			imgui.TableHeadersRow()

			for _, arch := range stats.ArchetypeBreakdown {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("0x%08X", arch.ID))
				imgui.TableNextColumn()
				imgui.Text(strings.Join(arch.ComponentTypes, ", "))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", arch.EntityCount))
			}
			imgui.EndTable()
		}

		if imgui.TreeNodeStr("Singletons") {
			for _, name := range stats.SingletonTypes {
				imgui.BulletText(name)
			}
			imgui.TreePop()
		}

		imgui.End()
	}}
}

// InspectorWindow shows the current component values of every entity whose
// archetype includes all of the given types.
func InspectorWindow(storage *ecs.Storage, title string, with ...reflect.Type) ImguiItem {
	return ImguiItem{Render: func() {
		imgui.SetNextWindowPosV(imgui.NewVec2(380, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
		imgui.SetNextWindowSizeV(imgui.NewVec2(320, 260), imgui.CondOnce)
		if !imgui.BeginV(title, nil, imgui.WindowFlagsNone) {
			imgui.End()
			return
		}

		for archetype := range storage.Archetypes() {
			if !hasAll(archetype, with) {
				continue
			}
			for id := range archetype.Iter() {
				if !imgui.TreeNodeStr(fmt.Sprintf("entity %d", id)) {
					continue
				}
				for _, t := range archetype.Types() {
					imgui.Text(fmt.Sprintf("%s: %+v", t.Name(), reflect.ValueOf(storage.GetComponent(id, t)).Elem().Interface()))
				}
				imgui.TreePop()
			}
		}

		imgui.End()
	}}
}

func hasAll(archetype *ecs.Archetype, types []reflect.Type) bool {
	for _, t := range types {
		if !archetype.HasComponent(t) {
			return false
		}
	}
	return true
}
