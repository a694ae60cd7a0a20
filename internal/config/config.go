// Package config provides Viper-based configuration loading for the crawl and
// cleaning commands.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SRD_CRAWL_CACHE_DIR.
const EnvPrefix = "SRD"

// DefaultSkipPages lists monster pages that cannot be parsed as a single
// statblock: races, pages with many strike-throughs, pages with several
// variants or disjunctions in one table.
var DefaultSkipPages = []string{
	"https://dnd-wiki.org/wiki/SRD:Lizardfolk",
	"https://dnd-wiki.org/wiki/SRD:Blue",
	"https://dnd-wiki.org/wiki/SRD:Deinonychus",
	"https://dnd-wiki.org/wiki/SRD:Gelatinous_Cube",
	"https://dnd-wiki.org/wiki/SRD:Megaraptor",
	"https://dnd-wiki.org/wiki/SRD:Ghaele",
	"https://dnd-wiki.org/wiki/SRD:Large_Animated_Object",
	"https://dnd-wiki.org/wiki/SRD:Huge_Animated_Object",
	"https://dnd-wiki.org/wiki/SRD:Colossal_Animated_Object",
	"https://dnd-wiki.org/wiki/SRD:Gargantuan_Animated_Object",
	"https://dnd-wiki.org/wiki/SRD:Psicrystal",
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink: "stderr", "stdout", or a file path.
	Output string `mapstructure:"output"`
}

// CrawlConfig holds page fetching settings for the monster crawl.
type CrawlConfig struct {
	// CacheDir holds one file per fetched URL.
	CacheDir string `mapstructure:"cache_dir"`
	// Timeout bounds a single HTTP fetch.
	Timeout time.Duration `mapstructure:"timeout"`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent"`
	// InsecureHosts are fetched without TLS certificate verification.
	InsecureHosts []string `mapstructure:"insecure_hosts"`
	// SkipPages are monster URLs dropped before fetching.
	SkipPages []string `mapstructure:"skip_pages"`
}

// SpellsConfig names the lookup tables used when cleaning spells.
type SpellsConfig struct {
	PagesPath   string `mapstructure:"pages_path"`
	RenamesPath string `mapstructure:"renames_path"`
}

// OutputConfig controls how record files are written.
type OutputConfig struct {
	// Format is "json" or "yaml".
	Format string `mapstructure:"format"`
}

// StoreConfig selects an optional record store written alongside the file.
type StoreConfig struct {
	// Driver is "none", "postgres", or "sqlite".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// HealthTimeout bounds the ping run before a store or migration is used.
	HealthTimeout   time.Duration `mapstructure:"health_timeout"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Crawl    CrawlConfig    `mapstructure:"crawl"`
	Spells   SpellsConfig   `mapstructure:"spells"`
	Output   OutputConfig   `mapstructure:"output"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateLogging(c.Logging),
		validateCrawl(c.Crawl),
		validateSpells(c.Spells),
		validateOutput(c.Output),
		validateStore(c.Store),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	// The database section only matters when records go to PostgreSQL.
	if c.Store.Driver == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateCrawl(c CrawlConfig) error {
	var errs []string
	if c.CacheDir == "" {
		errs = append(errs, "crawl.cache_dir must not be empty")
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("crawl.timeout must be positive, got %s", c.Timeout))
	}
	for _, h := range c.InsecureHosts {
		if strings.TrimSpace(h) == "" || strings.Contains(h, "/") {
			errs = append(errs, fmt.Sprintf("crawl.insecure_hosts entries must be bare host names, got %q", h))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSpells(s SpellsConfig) error {
	var errs []string
	if s.PagesPath == "" {
		errs = append(errs, "spells.pages_path must not be empty")
	}
	if s.RenamesPath == "" {
		errs = append(errs, "spells.renames_path must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	if o.Format != "json" && o.Format != "yaml" {
		return fmt.Errorf("output.format must be one of [json, yaml], got %q", o.Format)
	}
	return nil
}

func validateStore(s StoreConfig) error {
	switch s.Driver {
	case "none", "postgres":
		return nil
	case "sqlite":
		if s.SQLitePath == "" {
			return errors.New("store.sqlite_path must not be empty when store.driver is sqlite")
		}
		return nil
	default:
		return fmt.Errorf("store.driver must be one of [none, postgres, sqlite], got %q", s.Driver)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.HealthTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("database.health_timeout must be > 0, got %s", d.HealthTimeout))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path loads the
// defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("crawl.cache_dir", "cache")
	v.SetDefault("crawl.timeout", "30s")
	v.SetDefault("crawl.user_agent", "srdcrawl/1.0")
	v.SetDefault("crawl.insecure_hosts", []string{"dnd-wiki.org"})
	v.SetDefault("crawl.skip_pages", DefaultSkipPages)

	v.SetDefault("spells.pages_path", "spells-pages.txt")
	v.SetDefault("spells.renames_path", "spells-renames.txt")

	v.SetDefault("output.format", "json")

	v.SetDefault("store.driver", "none")
	v.SetDefault("store.sqlite_path", "srd.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "srd")
	v.SetDefault("database.password", "srd")
	v.SetDefault("database.name", "srd")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.health_timeout", "5s")
}
