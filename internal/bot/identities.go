package bot

import (
	"strings"

	"fivehundred/internal/domain"
)

var defaultNames = [domain.TableSize]string{"Bot North", "Bot East", "Bot South", "Bot West"}

// Roster maps table positions to bot display names.
type Roster struct {
	names [domain.TableSize]string
}

// NewRoster takes names in position order; blank or missing entries use the defaults.
func NewRoster(names []string) Roster {
	r := Roster{names: defaultNames}
	for i, n := range names {
		if i >= domain.TableSize {
			break
		}
		if n = strings.TrimSpace(n); n != "" {
			r.names[i] = n
		}
	}
	return r
}

// NameFor returns the bot name used at pos.
func (r Roster) NameFor(pos domain.Position) string {
	if !pos.Valid() {
		return "Bot"
	}
	if r.names[pos] == "" {
		return defaultNames[pos]
	}
	return r.names[pos]
}
