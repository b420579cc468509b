package cli

import (
	"fmt"

	"github.com/plus3/tetrs/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage game settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting and where it is stored.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		env, file, err := loadConfig()
		if err != nil {
			return err
		}

		var data [][]string
		for _, key := range config.Keys() {
			value, _ := file.Get(key)
			data = append(data, []string{key, fmt.Sprint(value)})
		}
		out := cmd.OutOrStdout()
		printTable(out, []string{"Key", "Value"}, data)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "settings:", emph(file.Path()))
		fmt.Fprintln(out, "scores:  ", emph(env.Database()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		_, file, err := loadConfig()
		if err != nil {
			return err
		}
		if err := file.Set(args[0], args[1]); err != nil {
			return err
		}
		value, _ := file.Get(args[0])
		fmt.Fprintln(cmd.OutOrStdout(), args[0], "is now", emph(fmt.Sprint(value)))
		return nil
	},
}
