// Package bench plays many headless games with the bot and reports how the
// engine and the bot performed.
package bench

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/plus3/tetrs/ecs"
	"github.com/plus3/tetrs/internal/bot"
	"github.com/plus3/tetrs/internal/game"
	"golang.org/x/sync/errgroup"
)

// Options configure a run.
type Options struct {
	Games     int
	Workers   int
	MaxPieces int
	Seed      uint64
	DeltaTime float64
	Settings  game.Settings
}

// DefaultOptions plays 8 games of up to 500 pieces on all cores.
func DefaultOptions() Options {
	return Options{
		Games:     8,
		Workers:   runtime.GOMAXPROCS(0),
		MaxPieces: 500,
		Seed:      1,
		DeltaTime: 1.0 / 60,
		Settings:  game.DefaultSettings(),
	}
}

// GameResult is one finished (or capped) game.
type GameResult struct {
	game.Result
	Frames    int
	ToppedOut bool
	Wall      time.Duration
	Update    Stats
	Systems   []ecs.SystemStats
}

// Stats summarizes a set of durations.
type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

// Finalize computes Min, Max and Avg from Samples.
func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]
	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// Run plays opts.Games games, at most opts.Workers at a time. Game i uses
// seed opts.Seed+i, so a run is reproducible.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Games <= 0 {
		return nil, fmt.Errorf("bench needs at least one game")
	}
	if opts.MaxPieces <= 0 {
		return nil, fmt.Errorf("bench needs a positive piece limit")
	}
	if opts.DeltaTime <= 0 {
		return nil, fmt.Errorf("bench delta time must be positive")
	}
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Options: opts, Games: make([]GameResult, opts.Games)}
	runtime.ReadMemStats(&report.MemStatsStart)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i := range opts.Games {
		g.Go(func() error {
			result, err := playOne(ctx, opts, opts.Seed+uint64(i))
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			report.Games[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.TotalTime = time.Since(start)
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.summarize()
	return report, nil
}

// ctxCheckEvery is how many frames pass between context checks.
const ctxCheckEvery = 256

func playOne(ctx context.Context, opts Options, seed uint64) (GameResult, error) {
	w, err := game.NewWorld(game.Options{Settings: opts.Settings, Seed: seed})
	if err != nil {
		return GameResult{}, err
	}
	b := bot.New()

	var res GameResult
	start := time.Now()
	for !w.Over() && w.State().Pieces <= opts.MaxPieces {
		if res.Frames%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return GameResult{}, err
			}
		}
		in := b.Intents(w)
		updateStart := time.Now()
		w.Step(opts.DeltaTime, in)
		res.Update.Samples = append(res.Update.Samples, time.Since(updateStart))
		res.Frames++
	}
	res.Wall = time.Since(start)
	res.Update.Finalize()
	res.Update.Samples = nil

	res.Result = w.State().Result()
	res.ToppedOut = w.Over()
	res.Systems = w.Scheduler.GetStats().Systems
	return res, nil
}

func (r *Report) summarize() {
	systems := map[string]*SystemTotal{}
	var order []string

	for _, g := range r.Games {
		r.TotalFrames += g.Frames
		r.TotalLines += g.Lines
		r.TotalPieces += g.Pieces
		if g.ToppedOut {
			r.ToppedOut++
		}
		r.Scores = append(r.Scores, g.Score)
		r.Update.Samples = append(r.Update.Samples, g.Update.Avg)

		for _, st := range g.Systems {
			total, ok := systems[st.Name]
			if !ok {
				total = &SystemTotal{Name: st.Name}
				systems[st.Name] = total
				order = append(order, st.Name)
			}
			total.Executions += st.ExecutionCount
			total.Total += st.TotalDuration
			total.Max = max(total.Max, st.MaxDuration)
		}
	}
	r.Update.Finalize()

	for _, name := range order {
		total := systems[name]
		if total.Executions > 0 {
			total.Avg = total.Total / time.Duration(total.Executions)
		}
		r.Systems = append(r.Systems, *total)
	}

	slices.Sort(r.Scores)
	slices.Reverse(r.Scores)
	if len(r.Scores) > 0 {
		r.BestScore = r.Scores[0]
		sum := 0
		for _, s := range r.Scores {
			sum += s
		}
		r.MeanScore = float64(sum) / float64(len(r.Scores))
	}
}
