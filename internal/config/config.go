// Package config loads tempo's settings from a TOML file, an optional .env
// file and TEMPO_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/sadopc/tempo/internal/stats"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

type Config struct {
	DBPath      string `toml:"db_path"`
	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	LogJSON     bool   `toml:"log_json"`
	Timezone    string `toml:"timezone"`
	DailyGoal   int    `toml:"daily_goal_minutes"`
	Granularity string `toml:"granularity"`
	Domain      string `toml:"domain"`
	APIAddr     string `toml:"api_addr"`
	NowRefresh  string `toml:"now_refresh"`
}

// Dir returns ~/.config/tempo.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tempo"), nil
}

// DefaultPath returns ~/.config/tempo/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	c := Config{
		LogLevel:    "info",
		Timezone:    "Local",
		DailyGoal:   480,
		Granularity: string(stats.Week),
		Domain:      string(stats.All),
		APIAddr:     "127.0.0.1:8787",
		NowRefresh:  "1m",
	}
	if dir, err := Dir(); err == nil {
		c.DBPath = filepath.Join(dir, "tempo.db")
		c.LogFile = filepath.Join(dir, "tempo.log")
	}
	return c
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error. envFiles are read
// as dotenv files; with none given, ./.env is tried. Variables already in
// the process environment win over dotenv values.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(readEnv(envFiles)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readEnv(files []string) func(string) (string, bool) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	dotenv := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			continue
		}
		for k, v := range vals {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TEMPO_DB_PATH":   &c.DBPath,
		"TEMPO_LOG_LEVEL": &c.LogLevel,
		"TEMPO_LOG_FILE":  &c.LogFile,
		"TEMPO_TIMEZONE":  &c.Timezone,
		"TEMPO_API_ADDR":  &c.APIAddr,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("TEMPO_LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TEMPO_LOG_JSON: %w", err)
		}
		c.LogJSON = b
	}
	if v, ok := lookup("TEMPO_DAILY_GOAL"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TEMPO_DAILY_GOAL: %w", err)
		}
		c.DailyGoal = n
	}
	return nil
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	if _, err := stats.ParseGranularity(c.Granularity); err != nil {
		return fmt.Errorf("config granularity: %w", err)
	}
	if _, err := stats.ParseDomain(c.Domain); err != nil {
		return fmt.Errorf("config domain: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.DailyGoal < 0 {
		return fmt.Errorf("config daily_goal_minutes: must be >= 0, got %d", c.DailyGoal)
	}
	if d, err := time.ParseDuration(c.NowRefresh); err != nil || d <= 0 {
		return fmt.Errorf("config now_refresh: invalid duration %q", c.NowRefresh)
	}
	if c.DBPath == "" {
		return errors.New("config db_path: empty")
	}
	return nil
}

// Location resolves Timezone; "" and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, c.Timezone, err)
	}
	return loc, nil
}

// Refresh is how often a long-running host re-samples the clock.
func (c *Config) Refresh() time.Duration {
	d, err := time.ParseDuration(c.NowRefresh)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

func (c *Config) GranularityValue() stats.Granularity {
	g, err := stats.ParseGranularity(c.Granularity)
	if err != nil {
		return stats.Week
	}
	return g
}

func (c *Config) DomainValue() stats.Domain {
	d, err := stats.ParseDomain(c.Domain)
	if err != nil {
		return stats.All
	}
	return d
}

// Marshal renders c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
