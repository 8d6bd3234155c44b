package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"treasurehunt/game"
	"treasurehunt/protocol"
)

type Config struct {
	Addr           string   `env:"TREASURE_ADDR" envDefault:":8080"`
	DBPath         string   `env:"TREASURE_DB_PATH" envDefault:"data/treasure.db"`
	AllowedOrigins []string `env:"TREASURE_ALLOWED_ORIGINS" envSeparator:","`
	Seed           int64    `env:"TREASURE_SEED"`
	TickHz         int      `env:"TREASURE_TICK_HZ" envDefault:"20"`
	BroadcastHz    int      `env:"TREASURE_BROADCAST_HZ" envDefault:"5"`

	CollectRadius         float64 `env:"TREASURE_COLLECT_RADIUS" envDefault:"0.8"`
	PlacementMinDistance  float64 `env:"TREASURE_PLACEMENT_MIN" envDefault:"1"`
	PlacementDistanceSpan float64 `env:"TREASURE_PLACEMENT_SPAN" envDefault:"2"`
	TreasureHeight        float64 `env:"TREASURE_HEIGHT" envDefault:"0.3"`

	OTelEndpoint string `env:"TREASURE_OTEL_ENDPOINT"`
	ServiceName  string `env:"TREASURE_SERVICE_NAME" envDefault:"treasurehunt"`
}

// Load reads an optional .env file, then parses the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Tuning() game.Tuning {
	return game.Tuning{
		CollectRadius:         c.CollectRadius,
		PlacementMinDistance:  c.PlacementMinDistance,
		PlacementDistanceSpan: c.PlacementDistanceSpan,
		TreasureHeight:        c.TreasureHeight,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr is required")
	}
	if c.TickHz <= 0 || c.BroadcastHz <= 0 {
		return fmt.Errorf("config: tick and broadcast rates must be > 0 (tick=%d broadcast=%d)", c.TickHz, c.BroadcastHz)
	}
	if c.BroadcastHz > c.TickHz {
		return fmt.Errorf("config: broadcast rate %d exceeds tick rate %d", c.BroadcastHz, c.TickHz)
	}
	if err := c.Tuning().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Default is the configuration with every env default applied.
func Default() Config {
	t := game.DefaultTuning()
	return Config{
		Addr:                  ":8080",
		DBPath:                "data/treasure.db",
		TickHz:                protocol.SimTickHz,
		BroadcastHz:           protocol.BroadcastHz,
		CollectRadius:         t.CollectRadius,
		PlacementMinDistance:  t.PlacementMinDistance,
		PlacementDistanceSpan: t.PlacementDistanceSpan,
		TreasureHeight:        t.TreasureHeight,
		ServiceName:           "treasurehunt",
	}
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil
}
