package cli

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"

	"github.com/plus3/tetrs/internal/app"
	"github.com/plus3/tetrs/internal/audio"
	"github.com/plus3/tetrs/internal/game"
	"github.com/plus3/tetrs/internal/scores"
	"github.com/spf13/cobra"
)

var (
	playSeed     uint64
	playLevel    int
	playAutoplay bool
	playDebugUI  bool
	playNoScores bool
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "seed for the piece sequence, random when 0")
	playCmd.Flags().IntVar(&playLevel, "level", 0, "starting level")
	playCmd.Flags().BoolVar(&playAutoplay, "autoplay", false, "let the bot play")
	playCmd.Flags().BoolVar(&playDebugUI, "debug-ui", false, "enable the F3 debug overlay")
	playCmd.Flags().BoolVar(&playNoScores, "no-scores", false, "do not record finished runs")
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the game window.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		opts, store, err := playOptions(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		opts.Game.Player = audio.NewPlayer(audio.NewContext(), opts.volume)
		a, err := app.New(opts.Options)
		if err != nil {
			return err
		}
		return a.Run()
	},
}

type playSetup struct {
	app.Options
	volume float64
}

// playOptions resolves flags over env over the settings file. The returned
// store is nil when scores are disabled.
func playOptions(cmd *cobra.Command) (playSetup, *scores.Store, error) {
	env, file, err := loadConfig()
	if err != nil {
		return playSetup{}, nil, err
	}

	settings := file.Settings()
	if cmd.Flags().Changed("level") {
		settings.StartLevel = playLevel
	}
	if err := settings.Validate(); err != nil {
		return playSetup{}, nil, err
	}

	seed := env.Seed
	if cmd.Flags().Changed("seed") {
		seed = playSeed
	}
	if seed == 0 {
		seed = rand.Uint64()
	}

	player := file.Player()
	if env.Player != "" {
		player = env.Player
	}

	setup := playSetup{
		Options: app.Options{
			Game: game.Options{
				Settings: settings,
				Seed:     seed,
			},
			Autoplay: playAutoplay,
			DebugUI:  playDebugUI || env.DebugUI,
		},
		volume: file.Volume(),
	}
	if playNoScores {
		return setup, nil, nil
	}

	store, err := scores.Open(env.Database())
	if err != nil {
		return playSetup{}, nil, err
	}
	setup.Game.Sink = store.Sink(player)

	best, err := store.Best(context.Background())
	switch {
	case err == nil:
		setup.Best = best.Score
	case !errors.Is(err, scores.ErrNoScores):
		log.Printf("read best score: %v", err)
	}
	log.Printf("seed %d, recording as %s", seed, player)
	return setup, store, nil
}
