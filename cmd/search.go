package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/comicmeta/cmi/pkg/anilist"
	"github.com/comicmeta/cmi/pkg/config"
	"github.com/comicmeta/cmi/pkg/logger"
	"github.com/comicmeta/cmi/pkg/titlekey"
)

func SearchCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search AniList and print the candidates",
		Long:  `Runs the same normalized search the process command uses and prints the candidate table.`,

		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			// init core
			if !initialized {
				initCore(false)
				initialized = true
			}

			// set log
			log := logger.GetLogger("search")

			cfg := config.Config

			term := titlekey.Normalize(strings.Join(args, " "))

			client := anilist.New(cfg.Anilist.Endpoint, cfg.Anilist.PerPage,
				time.Duration(cfg.Anilist.TimeoutSecs)*time.Second, logger.GetLogger("anilist"))

			candidates, err := client.Search(ctx, term)
			if err != nil {
				log.WithError(err).Fatalf("Search failed for %q", term)
			}

			if len(candidates) == 0 {
				log.Warnf("No results for %q", term)
				return
			}

			fmt.Println(renderCandidateTable(candidates))
		},
	}

	return command
}
