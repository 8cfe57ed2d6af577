package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"

	"github.com/redjax/notedeck/internal/utils"
)

const envPrefix = "NOTEDECK_"

// Config holds the application configuration
type Config struct {
	ConfigFile  string `koanf:"config.file"`
	DataDir     string `koanf:"data.dir"`
	StorageDir  string `koanf:"storage.dir"`
	ArchiveName string `koanf:"archive.name"`
	TrashDir    string `koanf:"trash.dir"`
	BookmarksDB string `koanf:"bookmarks.db"`
	PrefsDir    string `koanf:"prefs.dir"`
	LogFile     string `koanf:"log.file"`
	LogLevel    string `koanf:"log.level"`

	Extensions []string `koanf:"notes.extensions"`
	Bundles    []string `koanf:"notes.bundles"`

	ShowAll     bool `koanf:"sidebar.all"`
	ShowInbox   bool `koanf:"sidebar.inbox"`
	ShowTodo    bool `koanf:"sidebar.todo"`
	ShowArchive bool `koanf:"sidebar.archive"`
	ShowTrash   bool `koanf:"sidebar.trash"`

	CopyWorkers   int           `koanf:"copy.workers"`
	WatchDebounce time.Duration `koanf:"watch.debounce"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
// Paths left empty are derived from DataDir by Resolve.
func DefaultConfig() *Config {
	dataDir, err := utils.GetAppDataDir()
	if err != nil {
		dataDir = filepath.Join(".", ".notedeck")
	}

	return &Config{
		DataDir:       dataDir,
		ArchiveName:   "Archive",
		LogLevel:      "info",
		Extensions:    []string{".md", ".markdown", ".txt"},
		Bundles:       []string{".textbundle"},
		ShowAll:       true,
		ShowInbox:     true,
		ShowTodo:      true,
		ShowArchive:   true,
		ShowTrash:     true,
		CopyWorkers:   4,
		WatchDebounce: 300 * time.Millisecond,
	}
}

// Load layers the config file, NOTEDECK_ environment variables and changed CLI
// flags over the defaults.
func Load(flagSet *pflag.FlagSet, configFile string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if configFile == "" {
		if candidate := filepath.Join(cfg.DataDir, "notedeck.yml"); fileExists(candidate) {
			configFile = candidate
		}
	}

	if configFile != "" {
		parser, err := parserForFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("unsupported config file format: %w", err)
		}
		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
		cfg.ConfigFile = configFile
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	if flagSet != nil {
		if err := k.Load(posflag.ProviderWithFlag(flagSet, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("error loading flags: %w", err)
		}
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagKey maps the persistent CLI flags onto config keys. Unchanged flags are skipped.
func flagKey(f *pflag.Flag) (string, interface{}) {
	if !f.Changed {
		return "", nil
	}

	switch f.Name {
	case "debug":
		if f.Value.String() == "true" {
			return "log.level", "debug"
		}
		return "", nil
	case "storage":
		return "storage.dir", f.Value.String()
	case "data-dir":
		return "data.dir", f.Value.String()
	default:
		return "", nil
	}
}

// Resolve expands ~ in every path and derives unset paths from DataDir.
func (c *Config) Resolve() error {
	var err error
	if c.DataDir, err = homedir.Expand(c.DataDir); err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}

	derived := []struct {
		target *string
		def    string
	}{
		{&c.StorageDir, filepath.Join(c.DataDir, "storage")},
		{&c.TrashDir, filepath.Join(c.DataDir, "trash")},
		{&c.BookmarksDB, filepath.Join(c.DataDir, "bookmarks.db")},
		{&c.PrefsDir, filepath.Join(c.DataDir, "prefs")},
		{&c.LogFile, filepath.Join(c.DataDir, "notedeck.log")},
	}
	for _, d := range derived {
		if *d.target == "" {
			*d.target = d.def
			continue
		}
		if *d.target, err = homedir.Expand(*d.target); err != nil {
			return fmt.Errorf("invalid path %q: %w", *d.target, err)
		}
	}

	if c.CopyWorkers < 1 {
		c.CopyWorkers = 1
	}
	if c.ArchiveName == "" {
		c.ArchiveName = "Archive"
	}
	return nil
}

// EnsureDirs creates the data directories the app writes into.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.StorageDir, c.TrashDir, c.PrefsDir, filepath.Dir(c.BookmarksDB), filepath.Dir(c.LogFile)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func parserForFile(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".env":
		return dotenv.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}
