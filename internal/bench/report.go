package bench

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// Report is the outcome of Run.
type Report struct {
	Options Options
	Games   []GameResult

	TotalTime   time.Duration
	TotalFrames int
	TotalLines  int
	TotalPieces int
	ToppedOut   int
	Scores      []int
	BestScore   int
	MeanScore   float64

	// Update holds the per-game average frame time.
	Update  Stats
	Systems []SystemTotal

	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

// SystemTotal is one system's timings summed over every game.
type SystemTotal struct {
	Name       string
	Executions int64
	Total      time.Duration
	Avg        time.Duration
	Max        time.Duration
}

const reportTemplate = `
# Bench Report

## Configuration
- **Games:** {{.Options.Games}} ({{.Options.Workers}} workers)
- **Piece limit:** {{.Options.MaxPieces}}
- **Seeds:** {{.Options.Seed}}..{{seedEnd .Options}}
- **Board:** {{.Options.Settings.Width}}x{{.Options.Settings.Height}}, start level {{.Options.Settings.StartLevel}}

## Play
- **Pieces:** {{comma .TotalPieces}}
- **Lines:** {{comma .TotalLines}}
- **Topped out:** {{.ToppedOut}} of {{len .Games}}
- **Best score:** {{comma .BestScore}}
- **Mean score:** {{printf "%.1f" .MeanScore}}

## Performance
- **Total time:** {{.TotalTime}}
- **Frames:** {{comma .TotalFrames}}
- **Frame time (per-game average):**
  - **Avg:** {{.Update.Avg}}
  - **Min:** {{.Update.Min}}
  - **Max:** {{.Update.Max}}

| System | Executions | Avg | Max |
|---|---|---|---|
{{range .Systems}}| {{.Name}} | {{comma .Executions}} | {{.Avg}} | {{.Max}} |
{{end}}
## Memory
- Heap Alloc:  {{bytes .MemStatsStart.HeapAlloc}} (start) -> {{bytes .MemStatsEnd.HeapAlloc}} (end)
- Total Alloc: {{bytes (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}} during run
- Sys Memory:  {{bytes .MemStatsStart.Sys}} (start) -> {{bytes .MemStatsEnd.Sys}} (end)
- Num GC:      {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}} cycles, {{ns (bsub .MemStatsEnd.PauseTotalNs .MemStatsStart.PauseTotalNs)}} paused
`

var reportFuncs = template.FuncMap{
	"comma": func(v any) string {
		switch n := v.(type) {
		case int:
			return humanize.Comma(int64(n))
		case int64:
			return humanize.Comma(n)
		}
		return "N/A"
	},
	"bytes": func(v uint64) string {
		return humanize.IBytes(v)
	},
	"bsub": func(a, b uint64) uint64 {
		if b > a {
			return 0
		}
		return a - b
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
	"seedEnd": func(o Options) uint64 {
		return o.Seed + uint64(o.Games) - 1
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

// Generate writes the report as markdown.
func (r *Report) Generate(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}
