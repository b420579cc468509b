// Package cli is the tetrs command line.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/plus3/tetrs/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "tetrs",
	Version:       version,
	Short:         "Falling blocks on an entity component system",
	SilenceErrors: true,
}

var (
	emph = color.New(color.FgBlue, color.Bold).SprintFunc()
	warn = color.New(color.FgYellow, color.Bold).SprintFunc()
)

func init() {
	log.SetPrefix("tetrs: ")
	log.SetFlags(0)
}

// Execute runs the command named by os.Args.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, warn("Error:"), err)
		return err
	}
	return nil
}

// loadConfig reads the environment and the settings file it points at.
func loadConfig() (config.Env, *config.File, error) {
	env, err := config.ParseEnv()
	if err != nil {
		return config.Env{}, nil, err
	}
	file, err := config.Load(env.Dir())
	if err != nil {
		return config.Env{}, nil, err
	}
	return env, file, nil
}

func printTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)

	table.SetHeader(header)
	table.SetHeaderLine(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(true)

	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnSeparator("  ")
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("     ")

	table.AppendBulk(data)

	table.Render()
}
