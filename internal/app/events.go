package app

import (
	"fivehundred/internal/domain"
	"fivehundred/internal/view"
)

// EventKind identifies what a broadcast carries.
type EventKind string

const (
	EventState EventKind = "state"
	EventAlert EventKind = "alert"
)

// Event is an outbound message with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Alert      view.Alert // EventAlert only
	Recipients []string   // identities; empty means every human
	Except     string     // identity skipped even when Recipients is empty
}

func stateEvent() Event { return Event{Kind: EventState} }

func alertEvent(status view.AlertStatus, username string) Event {
	return Event{Kind: EventAlert, Alert: view.NewAlert(status, username)}
}

func (e Event) reaches(seat *domain.Seat) bool {
	if !seat.IsHuman() || seat.Identity == e.Except {
		return false
	}
	if len(e.Recipients) == 0 {
		return true
	}
	for _, r := range e.Recipients {
		if r == seat.Identity {
			return true
		}
	}
	return false
}
