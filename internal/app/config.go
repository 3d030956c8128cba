package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/WolfTailVale/ItemCreator/internal/telemetry"
)

// Config is read from ITEMCREATOR_* environment variables.
type Config struct {
	Addr            string        `env:"ITEMCREATOR_ADDR" envDefault:":8080"`
	ConfigPath      string        `env:"ITEMCREATOR_CONFIG" envDefault:"config.json"`
	TickRate        int           `env:"ITEMCREATOR_TICK_RATE" envDefault:"20"`
	CommandCapacity int           `env:"ITEMCREATOR_COMMAND_CAPACITY" envDefault:"1024"`
	PerActorLimit   int           `env:"ITEMCREATOR_PER_ACTOR_LIMIT" envDefault:"32"`
	LogSinks        []string      `env:"ITEMCREATOR_LOG_SINKS" envSeparator:"," envDefault:"console"`
	LogJSONPath     string        `env:"ITEMCREATOR_LOG_JSON_PATH" envDefault:"logs/itemcreator.jsonl"`
	LogLevel        string        `env:"ITEMCREATOR_LOG_LEVEL" envDefault:"info"`
	ZapDevelopment  bool          `env:"ITEMCREATOR_ZAP_DEVELOPMENT"`
	FloorRadius     int           `env:"ITEMCREATOR_FLOOR_RADIUS" envDefault:"16"`
	ShutdownTimeout time.Duration `env:"ITEMCREATOR_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	Logger telemetry.Logger
}

// LoadConfig parses the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
