package cli

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/plus3/tetrs/internal/bench"
	"github.com/spf13/cobra"
)

var (
	benchGames     int
	benchWorkers   int
	benchMaxPieces int
	benchSeed      uint64
	benchPerGame   bool
)

func init() {
	rootCmd.AddCommand(benchCmd)
	def := bench.DefaultOptions()
	benchCmd.Flags().IntVar(&benchGames, "games", def.Games, "number of games")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", def.Workers, "games played at once")
	benchCmd.Flags().IntVar(&benchMaxPieces, "max-pieces", def.MaxPieces, "piece limit per game, must be positive")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", def.Seed, "seed of the first game")
	benchCmd.Flags().BoolVar(&benchPerGame, "per-game", false, "also print one row per game")
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Let the bot play headless games and report timings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		_, file, err := loadConfig()
		if err != nil {
			return err
		}

		opts := bench.DefaultOptions()
		opts.Games = benchGames
		opts.Workers = benchWorkers
		opts.MaxPieces = benchMaxPieces
		opts.Seed = benchSeed
		opts.Settings = file.Settings()

		report, err := bench.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := report.Generate(out); err != nil {
			return err
		}
		if !benchPerGame {
			return nil
		}

		data := make([][]string, 0, len(report.Games))
		for _, g := range report.Games {
			over := ""
			if g.ToppedOut {
				over = "yes"
			}
			data = append(data, []string{
				strconv.FormatUint(g.Seed, 10),
				humanize.Comma(int64(g.Score)),
				strconv.Itoa(g.Lines),
				strconv.Itoa(g.Pieces),
				humanize.Comma(int64(g.Frames)),
				over,
				g.Update.Avg.String(),
			})
		}
		printTable(out, []string{"Seed", "Score", "Lines", "Pieces", "Frames", "Topped out", "Avg frame"}, data)
		return nil
	},
}
