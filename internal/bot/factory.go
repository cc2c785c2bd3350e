package bot

import (
	"fmt"
	"math/rand"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota
	BotLevelPassive
)

// ParseLevel maps a config string to a BotLevel. The empty string is BotLevelRandom.
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random":
		return BotLevelRandom, nil
	case "passive":
		return BotLevelPassive, nil
	default:
		return 0, fmt.Errorf("unknown bot level %q", s)
	}
}

// NewBrain creates a new AI brain based on the specified level.
// The rng is owned by the brain and must not be shared across goroutines.
func NewBrain(level BotLevel, rng *rand.Rand, tuning Tuning) (Brain, error) {
	if rng == nil {
		return nil, fmt.Errorf("bot brain needs an rng")
	}
	switch level {
	case BotLevelRandom:
		return &RandomBot{rng: rng, tuning: tuning}, nil
	case BotLevelPassive:
		return &PassiveBot{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
