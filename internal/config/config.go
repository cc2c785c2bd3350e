package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Lobby holds the tuning that shapes every session.
type Lobby struct {
	// BotMoveDelayMS paces consecutive bot moves. Zero plays them back to back.
	BotMoveDelayMS int      `json:"bot_move_delay_ms"`
	BotPassWeight  int      `json:"bot_pass_weight"`
	BotLevel       string   `json:"bot_level"`
	BotNames       []string `json:"bot_names"`
}

// DefaultLobby is used for any field the file leaves out.
func DefaultLobby() Lobby {
	return Lobby{
		BotMoveDelayMS: 800,
		BotPassWeight:  4,
		BotLevel:       "random",
	}
}

// LoadLobby reads the lobby configuration from path. An empty path returns the defaults.
func LoadLobby(path string) (Lobby, error) {
	cfg := DefaultLobby()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Lobby{}, fmt.Errorf("failed to read lobby config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Lobby{}, fmt.Errorf("failed to unmarshal lobby config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Lobby{}, err
	}
	return cfg, nil
}

// Validate rejects values no session could run with.
func (l Lobby) Validate() error {
	if l.BotMoveDelayMS < 0 {
		return fmt.Errorf("bot_move_delay_ms must not be negative, got %d", l.BotMoveDelayMS)
	}
	if l.BotPassWeight < 1 {
		return fmt.Errorf("bot_pass_weight must be at least 1, got %d", l.BotPassWeight)
	}
	if len(l.BotNames) > 4 {
		return fmt.Errorf("bot_names has %d entries, at most 4 allowed", len(l.BotNames))
	}
	return nil
}

// BotDelay returns BotMoveDelayMS as a duration.
func (l Lobby) BotDelay() time.Duration {
	return time.Duration(l.BotMoveDelayMS) * time.Millisecond
}
