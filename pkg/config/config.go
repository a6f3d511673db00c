package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/pkg/errors"
)

/* Structs */

type Configuration struct {
	Anilist         AnilistConfig       `koanf:"anilist"`
	CachePath       string              `koanf:"cache_path"`
	LedgerPath      string              `koanf:"ledger_path"`
	TitlePreference string              `koanf:"title_preference"`
	AddCovers       bool                `koanf:"add_covers"`
	ExtractTimeout  int                 `koanf:"extract_timeout_secs"`
	Filters         FiltersConfig       `koanf:"filters"`
	Notifications   NotificationsConfig `koanf:"notifications"`
}

type AnilistConfig struct {
	Endpoint    string `koanf:"endpoint"`
	PerPage     int    `koanf:"per_page"`
	TimeoutSecs int    `koanf:"timeout_secs"`
}

type FiltersConfig struct {
	// Skip holds expressions evaluated against each folder; any match skips
	// the folder.
	Skip []string `koanf:"skip"`
}

/* Vars */

var (
	Config *Configuration

	// Delimiter used by koanf
	Delimiter = "."

	// K is the global koanf instance
	K = koanf.New(Delimiter)
)

/* Public */

// Init loads the configuration file, creating one with defaults when it
// does not exist. Relative cache/ledger paths are resolved against the
// config file's directory.
func Init(configFilePath string) error {
	defaults := newDefaultConfiguration()

	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		if err := defaults.save(configFilePath); err != nil {
			return errors.Wrap(err, "create default configuration")
		}
	}

	if err := K.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return errors.Wrap(err, "load default configuration")
	}

	if err := K.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
		return errors.Wrapf(err, "load configuration: %s", configFilePath)
	}

	cfg := &Configuration{}
	if err := K.Unmarshal("", cfg); err != nil {
		return errors.Wrap(err, "unmarshal configuration")
	}

	configDir := filepath.Dir(configFilePath)
	cfg.CachePath = resolvePath(configDir, cfg.CachePath)
	cfg.LedgerPath = resolvePath(configDir, cfg.LedgerPath)

	Config = cfg
	return nil
}

// GetDefaultConfigDirectory returns the folder the config file lives in,
// preferring the user config dir and falling back to the working directory.
func GetDefaultConfigDirectory(appName string, configFile string) string {
	if userDir, err := os.UserConfigDir(); err == nil {
		appDir := filepath.Join(userDir, appName)
		if _, err := os.Stat(filepath.Join(appDir, configFile)); err == nil {
			return appDir
		}
		if err := os.MkdirAll(appDir, 0o755); err == nil {
			return appDir
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return "."
}

/* Private */

func newDefaultConfiguration() *Configuration {
	return &Configuration{
		Anilist: AnilistConfig{
			Endpoint:    "https://graphql.anilist.co",
			PerPage:     6,
			TimeoutSecs: 20,
		},
		CachePath:       "manga_cache.json",
		LedgerPath:      "converted_cbr.log",
		TitlePreference: "english",
		AddCovers:       true,
		ExtractTimeout:  120,
		Filters: FiltersConfig{
			Skip: []string{},
		},
		Notifications: NotificationsConfig{
			Detailed: true,
		},
	}
}

func (c *Configuration) save(path string) error {
	k := koanf.New(Delimiter)
	if err := k.Load(structs.Provider(c, "koanf"), nil); err != nil {
		return err
	}

	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func resolvePath(baseDir string, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
