package view

import (
	"fivehundred/internal/domain"
	"fivehundred/internal/rules"
)

// Input is everything Build needs about a session.
type Input struct {
	Code  string
	Phase domain.Phase
	Seats []*domain.Seat
	// Engine is nil until the game has started.
	Engine *rules.View
	// Legal holds the legal actions of the seat to act.
	Legal []rules.Action
}

// Build projects in into the snapshot sent to the human named recipient.
func Build(in Input, recipient string) State {
	st := State{
		Type:     TypeState,
		State:    in.Phase,
		Gamecode: in.Code,
		Players:  make([]Player, 0, domain.TableSize),
	}

	byPos := make(map[domain.Position]*domain.Seat, len(in.Seats))
	for _, s := range in.Seats {
		byPos[s.Position] = s
	}

	for _, pos := range domain.Positions {
		seat := byPos[pos]
		if seat == nil {
			st.Players = append(st.Players, Player{Position: pos, Type: PlayerEmpty})
			continue
		}
		p := Player{
			Position: pos,
			Type:     PlayerHuman,
			Username: seat.Identity,
			Host:     seat.Host,
			You:      seat.IsHuman() && seat.Identity == recipient,
		}
		if seat.IsBot() {
			p.Type = PlayerBot
		}
		if in.Engine != nil {
			p.Play = seatPlay(in, pos, p.You)
		}
		st.Players = append(st.Players, p)
	}

	if in.Engine != nil {
		st.Round = round(in.Engine)
	}
	return st
}

func seatPlay(in Input, pos domain.Position, own bool) *SeatPlay {
	v := in.Engine
	idx := pos.Index()
	sp := &SeatPlay{Turn: v.Turn == idx}
	if idx < len(v.Hands) {
		sp.Cards = len(v.Hands[idx])
		if own {
			sp.Hand = rules.SortHand(v.Hands[idx], v.Trump)
		}
	}
	if own && sp.Turn {
		for _, a := range in.Legal {
			if a.Seat == idx {
				sp.Legal = append(sp.Legal, FromRules(a))
			}
		}
	}
	if v.SubPhase == rules.SubPhaseBidding && idx < len(v.Bids) {
		sp.Bids = append([]rules.BidRecord(nil), v.Bids[idx]...)
	}
	return sp
}

func round(v *rules.View) *Round {
	r := &Round{
		Phase:  v.SubPhase,
		Scores: append([]int(nil), v.Scores...),
		Trump:  v.Trump,
	}
	if pos, ok := domain.PositionAt(v.Dealer); ok {
		r.Dealer = pos
	}
	if v.Contract != nil {
		if decl, ok := domain.PositionAt(v.Contract.Declarer); ok {
			r.Contract = &Contract{Bid: v.Contract.Bid, Declarer: decl}
		}
		r.Trick = plays(v.Trick)
		r.LastTrick = plays(v.LastTrick)
	}
	if lead, ok := domain.PositionAt(v.Lead); ok {
		r.Lead = &lead
	}
	return r
}

func plays(in []rules.Play) []Play {
	if len(in) == 0 {
		return nil
	}
	out := make([]Play, 0, len(in))
	for _, p := range in {
		if pos, ok := domain.PositionAt(p.Seat); ok {
			out = append(out, Play{Position: pos, Card: p.Card})
		}
	}
	return out
}
