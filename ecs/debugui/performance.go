package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tetrs/ecs"
)

// FrameTimer measures wall time between calls.
type FrameTimer struct {
	last time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{last: time.Now()}
}

// Tick returns seconds since the previous Tick.
func (ft *FrameTimer) Tick() float32 {
	now := time.Now()
	dt := float32(now.Sub(ft.last).Seconds())
	ft.last = now
	return dt
}

// FrameHistory is a ring of frame times in milliseconds.
type FrameHistory struct {
	samples []float32
	next    int
	filled  bool
}

func NewFrameHistory(size int) *FrameHistory {
	return &FrameHistory{samples: make([]float32, size)}
}

// Add records one frame of dt seconds.
func (h *FrameHistory) Add(dt float32) {
	h.samples[h.next] = dt * 1000
	h.next = (h.next + 1) % len(h.samples)
	if h.next == 0 {
		h.filled = true
	}
}

// Average returns the mean frame time in milliseconds over recorded frames.
func (h *FrameHistory) Average() float32 {
	n := h.next
	if h.filled {
		n = len(h.samples)
	}
	if n == 0 {
		return 0
	}
	var sum float32
	for _, s := range h.samples[:n] {
		sum += s
	}
	return sum / float32(n)
}

// PerformanceWindow shows frame times, storage totals and per-system timings
// for every scheduler in schedulers.
func PerformanceWindow(storage *ecs.Storage, schedulers map[string]*ecs.Scheduler) ImguiItem {
	timer := NewFrameTimer()
	history := NewFrameHistory(120)

	return ImguiItem{Render: func() {
		history.Add(timer.Tick())

		imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
		imgui.SetNextWindowSizeV(imgui.NewVec2(360, 320), imgui.CondOnce)
		if !imgui.BeginV("Performance", nil, imgui.WindowFlagsNone) {
			imgui.End()
			return
		}

		avg := history.Average()
		if avg > 0 {
			imgui.Text(fmt.Sprintf("Frame: %.2f ms (%.0f FPS)", avg, 1000/avg))
		}
		imgui.PlotLinesFloatPtr("##frametime", &history.samples[0], int32(len(history.samples)))

		stats := storage.CollectStats()
		imgui.Separator()
		imgui.Text(fmt.Sprintf("Entities: %d  Archetypes: %d  Singletons: %d",
			stats.TotalEntityCount, stats.ArchetypeCount, stats.SingletonCount))

		for name, scheduler := range schedulers {
			if !imgui.TreeNodeStr(name) {
				continue
			}
			schedulerTable(name, scheduler.GetStats())
			imgui.TreePop()
		}

		imgui.End()
	}}
}

func schedulerTable(id string, stats *ecs.SchedulerStats) {
	const flags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV(id+"##systems", 4, flags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Last")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, sys := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(sys.Name)
		imgui.TableNextColumn()
		imgui.Text(sys.LastDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.MaxDuration.String())
	}
	imgui.EndTable()
}
