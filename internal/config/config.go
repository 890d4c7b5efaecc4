package config

import (
	"fmt"
	"holdem-server/internal/util"
	"holdem-server/pkg/holdem"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config provides configuration for the poker server
type Config struct {
	loaded bool
	Addr   string `yaml:"addr"`
	Log    struct {
		Level             string `yaml:"level"`
		Format            string `yaml:"format"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	Store struct {
		Driver         string `yaml:"driver"`
		PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
		SQLitePath     string `yaml:"sqlitePath" envconfig:"sqlite_path"`
		MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" envconfig:"timeout_seconds"`
		Retries        int    `yaml:"retries"`
	} `yaml:"store"`
	Table struct {
		StartingChips      int `yaml:"startingChips" envconfig:"starting_chips"`
		SmallBlind         int `yaml:"smallBlind" envconfig:"small_blind"`
		BigBlind           int `yaml:"bigBlind" envconfig:"big_blind"`
		MaxSeats           int `yaml:"maxSeats" envconfig:"max_seats"`
		IdleTimeoutSeconds int `yaml:"idleTimeoutSeconds" envconfig:"idle_timeout_seconds"`
	} `yaml:"table"`
	AI struct {
		ScriptsPath string `yaml:"scriptsPath" envconfig:"scripts_path"`
	} `yaml:"ai"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"allowed_origins"`
	} `yaml:"cors"`
}

var config Config

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	opts := holdem.DefaultOptions()

	var c Config
	c.Addr = ":5000"
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Store.Driver = StoreMemory
	c.Store.SQLitePath = "data/holdem.db"
	c.Store.MigrationsPath = "./sql"
	c.Store.TimeoutSeconds = 5
	c.Store.Retries = 3
	c.Table.StartingChips = opts.StartingChips
	c.Table.SmallBlind = opts.SmallBlind
	c.Table.BigBlind = opts.BigBlind
	c.Table.MaxSeats = opts.MaxSeats
	c.Table.IdleTimeoutSeconds = 1800
	c.CORS.AllowedOrigins = []string{"*"}
	return c
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// The YAML file is optional. Environment variables prefixed with HOLDEM_ take precedence over it.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("HOLDEM_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return fmt.Errorf("could not decode %s: %w", configFile, err)
		}
	case !os.IsNotExist(err):
		return err
	}

	if err := envconfig.Process("holdem", &cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}

// Validate checks the values that cannot be used as is
func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	if c.Store.Driver == StorePostgres && c.Store.PGDSN == "" {
		return fmt.Errorf("store.pgDsn is required by the postgres driver")
	}

	if c.Store.Driver == StoreSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlitePath is required by the sqlite driver")
	}

	return c.TableOptions().Validate()
}

// TableOptions returns the options new tables are created with
func (c Config) TableOptions() holdem.Options {
	return holdem.Options{
		SmallBlind:    c.Table.SmallBlind,
		BigBlind:      c.Table.BigBlind,
		StartingChips: c.Table.StartingChips,
		MaxSeats:      c.Table.MaxSeats,
	}
}

// StoreTimeout bounds a single snapshot read or write
func (c Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// IdleTimeout is how long a table without clients is kept in memory
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.Table.IdleTimeoutSeconds) * time.Second
}
