package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	World     WorldConfig     `toml:"world" yaml:"world"`
	Loops     LoopsConfig     `toml:"loops" yaml:"loops"`
	Sinks     SinksConfig     `toml:"sinks" yaml:"sinks"`
	Display   DisplayConfig   `toml:"display" yaml:"display"`
	Roster    RosterConfig    `toml:"roster" yaml:"roster"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry" yaml:"telemetry"`
}

type WorldConfig struct {
	Width      int    `toml:"width" yaml:"width"`
	Height     int    `toml:"height" yaml:"height"`
	Population int    `toml:"population" yaml:"population"`
	NamePrefix string `toml:"name_prefix" yaml:"name_prefix"`
	Seed       int64  `toml:"seed" yaml:"seed"` // 0 = wall clock
}

type LoopsConfig struct {
	Move     time.Duration `toml:"move" yaml:"move"`
	Combat   time.Duration `toml:"combat" yaml:"combat"`
	Render   time.Duration `toml:"render" yaml:"render"`
	Duration time.Duration `toml:"duration" yaml:"duration"`
}

type SinksConfig struct {
	Console   bool   `toml:"console" yaml:"console"`
	Color     bool   `toml:"color" yaml:"color"`
	BattleLog string `toml:"battle_log" yaml:"battle_log"` // "" disables
	Ledger    string `toml:"ledger" yaml:"ledger"`         // sqlite path, "" disables
}

type DisplayConfig struct {
	Mode string `toml:"mode" yaml:"mode"` // "text", "tui" or "none"
}

type RosterConfig struct {
	Path string `toml:"path" yaml:"path"`
}

type ServerConfig struct {
	Enabled     bool   `toml:"enabled" yaml:"enabled"`
	BindAddress string `toml:"bind_address" yaml:"bind_address"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type TelemetryConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// Load reads path over the defaults, picking the decoder by extension. An
// empty path means defaults only. Environment overrides apply last.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)

		default:
			err = toml.Unmarshal(data, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv reads .env files into the environment if they exist.
func LoadDotEnv(files ...string) error {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}

	if len(present) == 0 {
		return nil
	}

	return godotenv.Load(present...)
}

func Defaults() *Config {
	return &Config{
		World: WorldConfig{
			Width:      100,
			Height:     100,
			Population: 50,
			NamePrefix: "NPC_",
		},
		Loops: LoopsConfig{
			Move:     100 * time.Millisecond,
			Combat:   200 * time.Millisecond,
			Render:   time.Second,
			Duration: 30 * time.Second,
		},
		Sinks: SinksConfig{
			Console:   true,
			Color:     true,
			BattleLog: "battle_log.txt",
		},
		Display: DisplayConfig{
			Mode: "text",
		},
		Roster: RosterConfig{
			Path: "npcs.txt",
		},
		Server: ServerConfig{
			Enabled:     false,
			BindAddress: ":8000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", c.World.Width, c.World.Height)
	}

	if c.World.Population < 0 {
		return fmt.Errorf("world population must not be negative, got %d", c.World.Population)
	}

	if c.Loops.Move <= 0 || c.Loops.Combat <= 0 || c.Loops.Render <= 0 {
		return fmt.Errorf("loop intervals must be positive")
	}

	switch c.Display.Mode {
	case "text", "tui", "none":

	default:
		return fmt.Errorf("unknown display mode %q", c.Display.Mode)
	}

	return nil
}

// PORT is honoured the way hosting platforms set it
func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.BindAddress = ":" + port
	}

	if v := os.Getenv("NPCBATTLE_BIND"); v != "" {
		cfg.Server.BindAddress = v
	}

	if v := os.Getenv("NPCBATTLE_SERVER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NPCBATTLE_SERVER: %w", err)
		}
		cfg.Server.Enabled = b
	}

	if v := os.Getenv("NPCBATTLE_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("NPCBATTLE_SEED: %w", err)
		}
		cfg.World.Seed = seed
	}

	if v := os.Getenv("NPCBATTLE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("NPCBATTLE_TELEMETRY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NPCBATTLE_TELEMETRY: %w", err)
		}
		cfg.Telemetry.Enabled = b
	}

	return nil
}
