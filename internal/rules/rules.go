// Package rules defines the contract between the lobby and a card-game rules engine.
//
// The engine owns dealing, legality, trick resolution and scoring. The lobby
// only submits actions on behalf of seats and reads the perfect-information
// view to build redacted snapshots.
package rules

import (
	"errors"
	"fmt"
)

// ErrIllegalAction is returned (wrapped) whenever an engine rejects an action.
var ErrIllegalAction = errors.New("illegal action")

// IllegalActionError carries the rejected action and the engine's reason.
type IllegalActionError struct {
	Action Action
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal %s by seat %d: %s", e.Action.Kind, e.Action.Seat, e.Reason)
}

func (e *IllegalActionError) Unwrap() error { return ErrIllegalAction }

// Reject builds an IllegalActionError.
func Reject(a Action, format string, args ...any) error {
	return &IllegalActionError{Action: a, Reason: fmt.Sprintf(format, args...)}
}

// SubPhase is the engine's stage within a round.
type SubPhase string

const (
	SubPhaseBidding  SubPhase = "bidding"
	SubPhaseDiscard  SubPhase = "discard"
	SubPhasePlay     SubPhase = "play"
	SubPhaseFinished SubPhase = "finished"
)

// ActionKind enumerates engine actions.
type ActionKind string

const (
	ActionBid     ActionKind = "bid"
	ActionPass    ActionKind = "pass"
	ActionDiscard ActionKind = "discard"
	ActionPlay    ActionKind = "play"
)

// Action is a single move submitted for a seat.
type Action struct {
	Kind ActionKind
	Seat int
	Bid  Bid  // ActionBid only
	Card Card // ActionDiscard and ActionPlay
}

// IsPass reports whether the action is a pass.
func (a Action) IsPass() bool { return a.Kind == ActionPass }

// Bid is a contract offer: a number of tricks in a denomination.
type Bid struct {
	Tricks int  `json:"tricks"`
	Suit   Suit `json:"suit"`
}

// Value returns the five-hundred score value for the bid.
func (b Bid) Value() int {
	return 40 + 20*b.Suit.bidOrder() + 100*(b.Tricks-6)
}

// Beats reports whether b outranks other.
func (b Bid) Beats(other Bid) bool { return b.Value() > other.Value() }

// BidRecord is one entry in a seat's bid history.
type BidRecord struct {
	Pass bool `json:"pass,omitempty"`
	Bid  *Bid `json:"bid,omitempty"`
}

// Contract is the winning bid and the seat that made it.
type Contract struct {
	Bid      Bid
	Declarer int
}

// Play is a card laid to a trick.
type Play struct {
	Seat int
	Card Card
}

// View is the perfect-information snapshot. Callers must redact it before sending.
type View struct {
	SubPhase  SubPhase
	Hands     [][]Card
	Scores    []int // per team, seats i and i+2 share a team
	Turn      int   // -1 when no seat is to act
	Bids      [][]BidRecord
	Contract  *Contract
	Trick     []Play
	LastTrick []Play
	Trump     Suit // empty until a contract exists
	Lead      int  // -1 until the discard has resolved
	Dealer    int
}

// Engine is an opaque card-game state machine for one session.
type Engine interface {
	// Apply submits a for a.Seat. Rejections wrap ErrIllegalAction and leave state unchanged.
	Apply(a Action) error
	// LegalActions lists the moves available to the seat whose turn it is.
	LegalActions() []Action
	View() View
	IsOver() bool
}

// Factory initializes an engine for the given number of seats.
type Factory func(seats int) (Engine, error)
