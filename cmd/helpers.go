package cmd

import (
	"log"
	"path/filepath"

	"github.com/comicmeta/cmi/pkg/config"
	"github.com/comicmeta/cmi/pkg/logger"
	"github.com/comicmeta/cmi/pkg/runtime"
)

var (
	// Global flags
	FlagLogLevel     = 0
	FlagConfigFile   = "config.yaml"
	FlagConfigFolder = config.GetDefaultConfigDirectory("cmi", "config.yaml")
	FlagLogFile      = "activity.log"

	FlagDryRun bool

	initialized bool
)

// initCore sets up logging and configuration. Commands call it once before
// doing any work.
func initCore(showAppInfo bool) {
	// logging
	logFilePath := filepath.Join(FlagConfigFolder, FlagLogFile)
	if err := logger.Init(FlagLogLevel, logFilePath); err != nil {
		log.Fatalf("Failed initializing logger: %v", err)
	}

	initLog := logger.GetLogger("cmi")

	// config
	configFilePath := filepath.Join(FlagConfigFolder, FlagConfigFile)
	if err := config.Init(configFilePath); err != nil {
		initLog.WithError(err).Fatal("Failed initializing config")
	}

	if showAppInfo {
		initLog.Infof("Using %s = %s (%s@%s)", "version", runtime.Version, runtime.GitCommit, runtime.Timestamp)
		initLog.Infof("Using %s = %q", "config", configFilePath)
		logger.ShowUsing(initLog)

		if FlagDryRun {
			initLog.Warn("Dry-run mode enabled, no archives will be modified")
		}
	}
}
