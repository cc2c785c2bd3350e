package domain

import (
	"context"
	"fmt"
)

// Phase represents the lifecycle stage of a game session.
type Phase string

const (
	// PhaseSetup is the pre-game state where players join and pick positions.
	PhaseSetup Phase = "setup"
	// PhasePlay is the active game state where the rules engine drives turns.
	PhasePlay Phase = "play"
	// PhaseOver is the terminal state after the rules engine reports completion.
	PhaseOver Phase = "over"
)

// rank orders phases so transitions can be checked for monotonicity.
func (p Phase) rank() int {
	switch p {
	case PhaseSetup:
		return 0
	case PhasePlay:
		return 1
	case PhaseOver:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo reports whether moving from p to next keeps the phase monotone.
func (p Phase) CanAdvanceTo(next Phase) bool {
	return next.rank() > p.rank() && p.rank() >= 0
}

// Position is one of the four compass seats at the table.
type Position int

const (
	North Position = iota
	East
	South
	West
)

// Positions lists every seat in turn order.
var Positions = [4]Position{North, East, South, West}

// TableSize is the number of positions at a table.
const TableSize = len(Positions)

var positionNames = [4]string{"N", "E", "S", "W"}

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

// Valid reports whether p names one of the four seats.
func (p Position) Valid() bool {
	return p >= North && p <= West
}

// Index returns the engine seat index for the position.
func (p Position) Index() int { return int(p) }

// PositionAt maps an engine seat index back to a position.
func PositionAt(index int) (Position, bool) {
	if index < 0 || index >= TableSize {
		return 0, false
	}
	return Positions[index], true
}

// ParsePosition parses the one-letter wire form.
func ParsePosition(s string) (Position, error) {
	for i, name := range positionNames {
		if name == s {
			return Position(i), nil
		}
	}
	return 0, fmt.Errorf("unknown position %q", s)
}

func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid position %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	parsed, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SeatKind distinguishes human seats from automated ones.
type SeatKind int

const (
	SeatHuman SeatKind = iota
	SeatBot
)

func (k SeatKind) String() string {
	if k == SeatBot {
		return "bot"
	}
	return "human"
}

// Conn is the outbound half of a human player's connection.
type Conn interface {
	ID() string
	Send(ctx context.Context, data []byte) error
}

// Seat holds state for one occupied position.
type Seat struct {
	Identity string
	Position Position
	Host     bool
	Kind     SeatKind
	Conn     Conn // nil for bots
}

// NewHumanSeat builds a seat backed by a live connection.
func NewHumanSeat(identity string, conn Conn, pos Position) *Seat {
	return &Seat{Identity: identity, Position: pos, Kind: SeatHuman, Conn: conn}
}

// NewBotSeat builds an automated seat. Bots are never host.
func NewBotSeat(name string, pos Position) *Seat {
	return &Seat{Identity: name, Position: pos, Kind: SeatBot}
}

// IsHuman reports whether the seat is held by a connected player.
func (s *Seat) IsHuman() bool { return s != nil && s.Kind == SeatHuman }

// IsBot reports whether the seat is automated.
func (s *Seat) IsBot() bool { return s != nil && s.Kind == SeatBot }
