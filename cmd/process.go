package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/comicmeta/cmi/pkg/anilist"
	"github.com/comicmeta/cmi/pkg/config"
	"github.com/comicmeta/cmi/pkg/convert"
	"github.com/comicmeta/cmi/pkg/expression"
	"github.com/comicmeta/cmi/pkg/extract"
	"github.com/comicmeta/cmi/pkg/ledger"
	"github.com/comicmeta/cmi/pkg/logger"
	"github.com/comicmeta/cmi/pkg/metacache"
	"github.com/comicmeta/cmi/pkg/notification"
	"github.com/comicmeta/cmi/pkg/paths"
	"github.com/comicmeta/cmi/pkg/processor"
	"github.com/comicmeta/cmi/pkg/resolver"
)

func ProcessCommand() *cobra.Command {
	var (
		flagPrefer    string
		flagNoCovers  bool
		flagParent    bool
		flagRecursive bool
	)

	command := &cobra.Command{
		Use:   "process [FOLDER...]",
		Short: "Resolve metadata and inject it into comic archives",
		Long: `Each folder is matched to an AniList record, then every CBZ in it gets
a ComicInfo.xml (and optionally a cover image) injected; CBR archives are
converted to CBZ first.`,

		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			// init core
			if !initialized {
				initCore(true)
				initialized = true
			}

			// set log
			log := logger.GetLogger("process")

			cfg := config.Config

			// collect folders to process
			var folders []string
			for _, arg := range args {
				switch {
				case flagRecursive:
					found, err := paths.FindArchiveFolders(arg)
					if err != nil {
						log.WithError(err).Fatalf("Failed scanning %q for archive folders", arg)
					}
					folders = append(folders, found...)
				case flagParent:
					found, err := paths.FindFolders(arg)
					if err != nil {
						log.WithError(err).Fatalf("Failed listing subfolders of %q", arg)
					}
					folders = append(folders, found...)
				default:
					folders = append(folders, arg)
				}
			}

			if len(folders) == 0 {
				log.Fatal("No folders to process")
			}

			// compile skip filters up front so a bad filter fails the run immediately
			skipFilters, err := expression.Compile(cfg.Filters.Skip)
			if err != nil {
				log.WithError(err).Fatal("Failed compiling skip filters")
			}

			// metadata cache
			cache := metacache.New(cfg.CachePath, logger.GetLogger("cache"))
			if err := cache.Load(); err != nil {
				log.WithError(err).Warn("Failed loading metadata cache, starting with an empty one")
			}

			// anilist client + resolver
			anilistClient := anilist.New(cfg.Anilist.Endpoint, cfg.Anilist.PerPage,
				time.Duration(cfg.Anilist.TimeoutSecs)*time.Second, logger.GetLogger("anilist"))

			prefer := cfg.TitlePreference
			if flagPrefer != "" {
				prefer = flagPrefer
			}

			chooser := newCLIChooser(anilistClient, logger.GetLogger("chooser"))
			res := resolver.New(cache, anilistClient, chooser, logger.GetLogger("resolver"))

			// conversion pipeline
			extractor := extract.New(time.Duration(cfg.ExtractTimeout)*time.Second, logger.GetLogger("extract"))
			converter := convert.New(extractor, ledger.New(cfg.LedgerPath), logger.GetLogger("convert"))

			noti := notification.NewDiscordSender(log, cfg.Notifications)

			proc := processor.New(res, anilistClient, converter, extractor, cache, skipFilters,
				processor.Options{
					TitlePreference: prefer,
					AddCovers:       cfg.AddCovers && !flagNoCovers,
					DryRun:          FlagDryRun,
				}, log)

			proc.Run(ctx, folders, noti)
		},
	}

	command.Flags().StringVar(&flagPrefer, "prefer", "", "Title preference (romaji|english), overrides config")
	command.Flags().BoolVar(&flagNoCovers, "no-covers", false, "Do not download or add cover images")
	command.Flags().BoolVar(&flagParent, "parent", false, "Treat each FOLDER as a parent; process its subfolders")
	command.Flags().BoolVar(&flagRecursive, "recursive", false, "Recursively process every folder containing archives")

	return command
}
