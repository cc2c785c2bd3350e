package bot

import (
	"errors"

	"fivehundred/internal/rules"
)

// ErrNoLegalActions is returned when a brain is asked to move with nothing to choose from.
var ErrNoLegalActions = errors.New("no legal actions")

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	Choose(view rules.View, legal []rules.Action) (rules.Action, error)
}
