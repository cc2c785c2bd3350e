package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server is the process configuration read from the environment.
type Server struct {
	Addr           string   `env:"LOBBY_ADDR"            envDefault:":8080"`
	LogLevel       string   `env:"LOBBY_LOG_LEVEL"       envDefault:"info"`
	ConfigPath     string   `env:"LOBBY_CONFIG"`
	AllowedOrigins []string `env:"LOBBY_ALLOWED_ORIGINS" envSeparator:","`
	// BotDelay overrides bot_move_delay_ms from the lobby file when set.
	BotDelay *time.Duration `env:"LOBBY_BOT_DELAY"`
}

// ParseEnv loads Server from the process environment.
func ParseEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ParseEnvMap loads Server from an explicit variable set, such as the Nakama runtime env.
func ParseEnvMap(vars map[string]string) (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Apply folds the environment overrides into l.
func (s Server) Apply(l Lobby) Lobby {
	if s.BotDelay != nil {
		l.BotMoveDelayMS = int(s.BotDelay.Milliseconds())
	}
	return l
}
