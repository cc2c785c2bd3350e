package view

import (
	"fivehundred/internal/domain"
	"fivehundred/internal/rules"
)

// ActionType is the "type" of a client action.
type ActionType string

const (
	ActionMovePosition ActionType = "move-position"
	ActionStartGame    ActionType = "start-game"
	ActionMakeBid      ActionType = "make-bid"
	ActionPass         ActionType = "pass"
	ActionPlayCard     ActionType = "play-card"
	ActionDiscardCard  ActionType = "discard-card"
)

// Action is a client move. It is also how legal actions are listed to the player.
type Action struct {
	Type     ActionType       `json:"type"`
	Position *domain.Position `json:"position,omitempty"`
	Bid      *rules.Bid       `json:"bid,omitempty"`
	Card     *rules.Card      `json:"card,omitempty"`
}

// Update is the inbound envelope: the phase the client believes is current and its action.
type Update struct {
	Phase  domain.Phase `json:"state"`
	Action Action       `json:"action"`
}

// FromRules converts an engine action to its wire form.
func FromRules(a rules.Action) Action {
	switch a.Kind {
	case rules.ActionBid:
		b := a.Bid
		return Action{Type: ActionMakeBid, Bid: &b}
	case rules.ActionPass:
		return Action{Type: ActionPass}
	case rules.ActionDiscard:
		c := a.Card
		return Action{Type: ActionDiscardCard, Card: &c}
	default:
		c := a.Card
		return Action{Type: ActionPlayCard, Card: &c}
	}
}

// ToRules converts a game action for the given engine seat. It reports false for
// lobby actions and for game actions missing their payload.
func (a Action) ToRules(seat int) (rules.Action, bool) {
	switch a.Type {
	case ActionMakeBid:
		if a.Bid == nil {
			return rules.Action{}, false
		}
		return rules.Action{Kind: rules.ActionBid, Seat: seat, Bid: *a.Bid}, true
	case ActionPass:
		return rules.Action{Kind: rules.ActionPass, Seat: seat}, true
	case ActionPlayCard, ActionDiscardCard:
		if a.Card == nil {
			return rules.Action{}, false
		}
		kind := rules.ActionPlay
		if a.Type == ActionDiscardCard {
			kind = rules.ActionDiscard
		}
		return rules.Action{Kind: kind, Seat: seat, Card: *a.Card}, true
	}
	return rules.Action{}, false
}

// IsGameAction reports whether a is forwarded to the rules engine.
func (a Action) IsGameAction() bool {
	switch a.Type {
	case ActionMakeBid, ActionPass, ActionPlayCard, ActionDiscardCard:
		return true
	}
	return false
}
