package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comicmeta/cmi/cmd"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cmi",
		Short: "A CLI comic metadata injector",
		Long: `A CLI application that resolves manga metadata from AniList and embeds
it (plus an optional cover image) into CBZ archives, converting legacy
CBR archives to CBZ along the way.
`,
	}

	// Parse persistent flags
	rootCmd.PersistentFlags().StringVar(&cmd.FlagConfigFolder, "config-dir", cmd.FlagConfigFolder, "Config folder")
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagConfigFile, "config", "c", cmd.FlagConfigFile, "Config file")
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagLogFile, "log", "l", cmd.FlagLogFile, "Log file")
	rootCmd.PersistentFlags().CountVarP(&cmd.FlagLogLevel, "verbose", "v", "Verbose level")

	rootCmd.PersistentFlags().BoolVar(&cmd.FlagDryRun, "dry-run", false, "Dry run mode")

	rootCmd.AddCommand(cmd.ProcessCommand())
	rootCmd.AddCommand(cmd.SearchCommand())
	rootCmd.AddCommand(cmd.UpdateCommand())
	rootCmd.AddCommand(cmd.VersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
