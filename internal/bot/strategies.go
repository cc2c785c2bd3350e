package bot

import (
	"math/rand"

	"fivehundred/internal/rules"
)

// RandomBot picks uniformly among legal actions, leaning towards passing while bidding.
type RandomBot struct {
	rng    *rand.Rand
	tuning Tuning
}

func (b *RandomBot) Choose(view rules.View, legal []rules.Action) (rules.Action, error) {
	if len(legal) == 0 {
		return rules.Action{}, ErrNoLegalActions
	}
	if view.SubPhase != rules.SubPhaseBidding {
		return legal[b.rng.Intn(len(legal))], nil
	}

	var pass *rules.Action
	candidates := make([]rules.Action, 0, len(legal)+b.tuning.passWeight())
	for i := range legal {
		if legal[i].IsPass() {
			pass = &legal[i]
			continue
		}
		candidates = append(candidates, legal[i])
	}
	if pass != nil {
		for i := 0; i < b.tuning.passWeight(); i++ {
			candidates = append(candidates, *pass)
		}
	}
	return candidates[b.rng.Intn(len(candidates))], nil
}

// PassiveBot never bids and otherwise plays a random legal card.
type PassiveBot struct {
	rng *rand.Rand
}

func (b *PassiveBot) Choose(view rules.View, legal []rules.Action) (rules.Action, error) {
	if len(legal) == 0 {
		return rules.Action{}, ErrNoLegalActions
	}
	for _, a := range legal {
		if a.IsPass() {
			return a, nil
		}
	}
	return legal[b.rng.Intn(len(legal))], nil
}
