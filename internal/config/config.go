// internal/config/config.go
//
// Settings for the snake server.
//
// Load order (later wins):
//  1. the embedded default document (assets/snake.yaml);
//  2. an optional YAML file with the same layout (SNAKE_CONFIG);
//  3. environment variables: PORT, LOG_LEVEL, STORE, DB_PATH, JWT_SECRET,
//     DAILY_SALT, CLIENT_ORIGIN, SNAKE_SEED.
//
// Validation reports every problem at once and wraps the result with
// game.ErrInvalidConfiguration.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/snake/assets"
	"github.com/robalobadob/snake/internal/game"
)

type Config struct {
	AppName string `yaml:"display_app_name"`
	World   World  `yaml:"world"`
	Server  Server `yaml:"server"`
	Daily   Daily  `yaml:"daily"`
	Log     Log    `yaml:"log"`
}

// World describes the board and the snake at session start.
type World struct {
	Columns   int     `yaml:"columns"`
	Rows      int     `yaml:"rows"`
	Start     Point   `yaml:"start"`
	Length    int     `yaml:"length"`
	Direction string  `yaml:"direction"`
	Seed      *uint64 `yaml:"seed"`
}

type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type Server struct {
	Port           string        `yaml:"port"`
	Store          string        `yaml:"store"`
	DBPath         string        `yaml:"db_path"`
	ClientOrigin   string        `yaml:"client_origin"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	JWTSecret      string        `yaml:"jwt_secret"`
}

type Daily struct {
	Salt string `yaml:"salt"`
}

type Log struct {
	Level string `yaml:"level"`
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Load builds the configuration from the embedded defaults, the file at
// path (skipped when empty) and the environment.
func Load(path string) (*Config, error) {
	def, err := assets.DefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("read default config: %w", err)
	}
	cfg, err := Parse(def)
	if err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML document without applying defaults or validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Server.Port, "PORT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Server.Store, "STORE")
	setString(&c.Server.DBPath, "DB_PATH")
	setString(&c.Server.JWTSecret, "JWT_SECRET")
	setString(&c.Server.ClientOrigin, "CLIENT_ORIGIN")
	setString(&c.Daily.Salt, "DAILY_SALT")

	if v := os.Getenv("SNAKE_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: SNAKE_SEED: %v", game.ErrInvalidConfiguration, err)
		}
		c.World.Seed = &n
	}
	return nil
}

// Validate checks every field and reports all failures together.
func (c *Config) Validate() error {
	var merr *multierror.Error

	if c.World.Columns <= 0 || c.World.Rows <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("world: columns and rows must be positive, got %dx%d",
			c.World.Columns, c.World.Rows))
	}
	if c.World.Length < 1 {
		merr = multierror.Append(merr, fmt.Errorf("world: length must be at least 1, got %d", c.World.Length))
	}
	if _, err := game.ParseDirection(c.World.Direction); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("world: %w", err))
	}
	if merr.ErrorOrNil() == nil {
		// dry run: the start layout must fit inside the grid
		opts := c.GameOptions()
		opts.Seed = 1
		if _, err := game.New(opts); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("world: %w", err))
		}
	}
	if c.Server.Port == "" {
		merr = multierror.Append(merr, errors.New("server: port is required"))
	}
	switch c.Server.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.Server.DBPath == "" {
			merr = multierror.Append(merr, errors.New("server: db_path is required for the sqlite store"))
		}
	default:
		merr = multierror.Append(merr, fmt.Errorf("server: unknown store %q", c.Server.Store))
	}
	if c.Server.TokenTTL <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("server: token_ttl must be positive, got %s", c.Server.TokenTTL))
	}
	if c.Server.JWTSecret == "" {
		merr = multierror.Append(merr, errors.New("server: jwt_secret is required"))
	}
	if len(c.Daily.Salt) > 64 {
		merr = multierror.Append(merr, errors.New("daily: salt must be at most 64 bytes"))
	}

	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", game.ErrInvalidConfiguration, err)
	}
	return nil
}

// GameOptions converts the world section into engine options. A start
// layout that does not fit the grid is reported by game.New.
func (c *Config) GameOptions() game.Options {
	dir, _ := game.ParseDirection(c.World.Direction)
	opts := game.Options{
		Columns:   c.World.Columns,
		Rows:      c.World.Rows,
		Start:     game.Cell{X: c.World.Start.X, Y: c.World.Start.Y},
		Length:    c.World.Length,
		Direction: dir,
	}
	if c.World.Seed != nil {
		opts.Seed = *c.World.Seed
	}
	return opts
}
