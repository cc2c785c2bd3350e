package domain

import (
	"errors"
	"sort"
)

var (
	ErrPositionTaken = errors.New("position already occupied")
	ErrInvalidSeat   = errors.New("invalid seat")
)

// Table is the ordered set of seats in a session, at most one per position.
type Table struct {
	seats []*Seat
}

// Seats returns the seats sorted by position. The slice must not be modified.
func (t *Table) Seats() []*Seat { return t.seats }

// Len returns the number of occupied positions.
func (t *Table) Len() int { return len(t.seats) }

// At returns the seat at pos or nil.
func (t *Table) At(pos Position) *Seat {
	for _, s := range t.seats {
		if s.Position == pos {
			return s
		}
	}
	return nil
}

// Find returns the human seat with the given identity or nil.
func (t *Table) Find(identity string) *Seat {
	for _, s := range t.seats {
		if s.IsHuman() && s.Identity == identity {
			return s
		}
	}
	return nil
}

// Humans returns the human seats in position order.
func (t *Table) Humans() []*Seat {
	out := make([]*Seat, 0, len(t.seats))
	for _, s := range t.seats {
		if s.IsHuman() {
			out = append(out, s)
		}
	}
	return out
}

// HumanCount returns the number of human-occupied positions.
func (t *Table) HumanCount() int {
	n := 0
	for _, s := range t.seats {
		if s.IsHuman() {
			n++
		}
	}
	return n
}

// Host returns the current host seat or nil.
func (t *Table) Host() *Seat {
	for _, s := range t.seats {
		if s.Host {
			return s
		}
	}
	return nil
}

// Vacant returns the positions without a seat, in order.
func (t *Table) Vacant() []Position {
	var out []Position
	for _, p := range Positions {
		if t.At(p) == nil {
			out = append(out, p)
		}
	}
	return out
}

// LowestVacant returns the first position without a seat.
func (t *Table) LowestVacant() (Position, bool) {
	vacant := t.Vacant()
	if len(vacant) == 0 {
		return 0, false
	}
	return vacant[0], true
}

// FirstBot returns the lowest-ordered bot seat or nil.
func (t *Table) FirstBot() *Seat {
	for _, s := range t.seats {
		if s.IsBot() {
			return s
		}
	}
	return nil
}

// Full reports whether every position holds a seat.
func (t *Table) Full() bool { return len(t.seats) == TableSize }

// Add places seat at its position.
func (t *Table) Add(seat *Seat) error {
	if seat == nil || !seat.Position.Valid() {
		return ErrInvalidSeat
	}
	if t.At(seat.Position) != nil {
		return ErrPositionTaken
	}
	t.seats = append(t.seats, seat)
	t.Sort()
	return nil
}

// Remove drops seat from the table and reports whether it was present.
func (t *Table) Remove(seat *Seat) bool {
	for i, s := range t.seats {
		if s == seat {
			t.seats = append(t.seats[:i], t.seats[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps whatever occupies seat.Position for seat.
func (t *Table) Replace(seat *Seat) *Seat {
	old := t.At(seat.Position)
	if old != nil {
		t.Remove(old)
	}
	t.seats = append(t.seats, seat)
	t.Sort()
	return old
}

// Move reassigns seat to target if target is free.
func (t *Table) Move(seat *Seat, target Position) error {
	if !target.Valid() {
		return ErrInvalidSeat
	}
	if other := t.At(target); other != nil && other != seat {
		return ErrPositionTaken
	}
	seat.Position = target
	t.Sort()
	return nil
}

// PromoteHost makes the first human by position the host if no human holds it.
// It returns the new host, or nil when the host did not change.
func (t *Table) PromoteHost() *Seat {
	if h := t.Host(); h != nil && h.IsHuman() {
		return nil
	}
	for _, s := range t.seats {
		s.Host = false
	}
	for _, s := range t.seats {
		if s.IsHuman() {
			s.Host = true
			return s
		}
	}
	return nil
}

// Sort orders seats by position.
func (t *Table) Sort() {
	sort.SliceStable(t.seats, func(i, j int) bool {
		return t.seats[i].Position < t.seats[j].Position
	})
}
