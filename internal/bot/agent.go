package bot

import (
	"fmt"

	"fivehundred/internal/domain"
	"fivehundred/internal/rules"
)

// Agent represents an autonomous bot player seated at a position.
type Agent struct {
	Name     string
	Position domain.Position
	Strategy Brain
}

// NewAgent seats a bot named from roster at pos.
func NewAgent(roster Roster, pos domain.Position, brain Brain) *Agent {
	return &Agent{Name: roster.NameFor(pos), Position: pos, Strategy: brain}
}

// Play asks the agent to pick its move from the engine's current legal actions.
func (a *Agent) Play(engine rules.Engine) (rules.Action, error) {
	view := engine.View()
	if view.Turn != a.Position.Index() {
		return rules.Action{}, fmt.Errorf("bot %s asked to act on seat %d's turn", a.Name, view.Turn)
	}
	move, err := a.Strategy.Choose(view, engine.LegalActions())
	if err != nil {
		return rules.Action{}, fmt.Errorf("bot %s: %w", a.Name, err)
	}
	move.Seat = a.Position.Index()
	return move, nil
}
