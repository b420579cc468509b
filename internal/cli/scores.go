package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/plus3/tetrs/internal/scores"
	"github.com/spf13/cobra"
)

var scoresLimit int

func init() {
	rootCmd.AddCommand(scoresCmd)
	scoresCmd.Flags().IntVarP(&scoresLimit, "limit", "n", 10, "number of entries to show")
}

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "List the best recorded runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		env, _, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := scores.Open(env.Database())
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		top, err := store.Top(ctx, scoresLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(top) == 0 {
			fmt.Fprintln(out, "No scores recorded yet. Run", emph("tetrs play"), "to set one.")
			return nil
		}
		total, err := store.Count(ctx)
		if err != nil {
			return err
		}

		data := make([][]string, 0, len(top))
		for i, e := range top {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				e.Player,
				humanize.Comma(int64(e.Score)),
				strconv.Itoa(e.Lines),
				strconv.Itoa(e.Level),
				strconv.Itoa(e.Pieces),
				e.Duration.Round(time.Second).String(),
				humanize.Time(e.PlayedAt),
			})
		}
		printTable(out, []string{"#", "Player", "Score", "Lines", "Level", "Pieces", "Time", "Played"}, data)
		fmt.Fprintf(out, "\n%s of %s runs\n", emph(len(top)), humanize.Comma(int64(total)))
		return nil
	},
}
