package practice

import (
	"errors"
	"math/rand"
	"testing"

	"fivehundred/internal/rules"
)

func countCards(e *Engine) int {
	n := len(e.kitty) + len(e.trick) + e.discarded
	for _, h := range e.hands {
		n += len(h)
	}
	for t := range e.tricks {
		n += e.tricks[t] * Seats
	}
	return n
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 43 {
		t.Fatalf("deck size = %d, want 43", len(deck))
	}
	seen := make(map[rules.Card]bool)
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card %v", c)
		}
		seen[c] = true
	}
	if !seen[rules.JokerCard] {
		t.Fatalf("deck has no joker")
	}
}

func TestDealStartsBidding(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	v := e.View()
	if v.SubPhase != rules.SubPhaseBidding {
		t.Fatalf("sub-phase = %s, want bidding", v.SubPhase)
	}
	if v.Turn != 1 {
		t.Fatalf("first bidder = %d, want dealer's left (1)", v.Turn)
	}
	for s, h := range v.Hands {
		if len(h) != handSize {
			t.Fatalf("seat %d hand = %d cards, want %d", s, len(h), handSize)
		}
	}
	if v.Lead != -1 || v.Contract != nil {
		t.Fatalf("lead/contract should be unset before bidding resolves: %+v", v)
	}
}

func TestApplyRejectsWrongSeat(t *testing.T) {
	e := New(rand.New(rand.NewSource(2)))
	err := e.Apply(rules.Action{Kind: rules.ActionPass, Seat: 0})
	if !errors.Is(err, rules.ErrIllegalAction) {
		t.Fatalf("out of turn pass err = %v, want ErrIllegalAction", err)
	}
	if len(e.View().Bids[0]) != 0 {
		t.Fatalf("rejected action must not be recorded")
	}
}

func TestFourPassesRedeal(t *testing.T) {
	e := New(rand.New(rand.NewSource(3)))
	for i := 0; i < Seats; i++ {
		if err := e.Apply(rules.Action{Kind: rules.ActionPass, Seat: e.turn}); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}
	v := e.View()
	if v.Dealer != 1 || v.Turn != 2 || v.SubPhase != rules.SubPhaseBidding {
		t.Fatalf("after redeal dealer=%d turn=%d sub=%s, want 1, 2, bidding", v.Dealer, v.Turn, v.SubPhase)
	}
}

func TestContractAndDiscard(t *testing.T) {
	e := New(rand.New(rand.NewSource(4)))
	bid := rules.Bid{Tricks: 6, Suit: rules.Hearts}
	if err := e.Apply(rules.Action{Kind: rules.ActionBid, Seat: 1, Bid: bid}); err != nil {
		t.Fatalf("bid: %v", err)
	}
	lower := rules.Action{Kind: rules.ActionBid, Seat: 2, Bid: rules.Bid{Tricks: 6, Suit: rules.Spades}}
	if err := e.Apply(lower); !errors.Is(err, rules.ErrIllegalAction) {
		t.Fatalf("underbid err = %v, want ErrIllegalAction", err)
	}
	for _, seat := range []int{2, 3, 0} {
		if err := e.Apply(rules.Action{Kind: rules.ActionPass, Seat: seat}); err != nil {
			t.Fatalf("pass seat %d: %v", seat, err)
		}
	}

	v := e.View()
	if v.SubPhase != rules.SubPhaseDiscard || v.Contract == nil || v.Contract.Declarer != 1 {
		t.Fatalf("expected discard by seat 1, got %+v", v)
	}
	if len(v.Hands[1]) != handSize+discardSize || v.Trump != rules.Hearts {
		t.Fatalf("declarer hand = %d, trump = %s", len(v.Hands[1]), v.Trump)
	}

	for i := 0; i < discardSize; i++ {
		legal := e.LegalActions()
		if err := e.Apply(legal[0]); err != nil {
			t.Fatalf("discard %d: %v", i, err)
		}
	}
	v = e.View()
	if v.SubPhase != rules.SubPhasePlay || v.Lead != 1 || v.Turn != 1 {
		t.Fatalf("after discard sub=%s lead=%d turn=%d", v.SubPhase, v.Lead, v.Turn)
	}
	if len(v.Hands[1]) != handSize {
		t.Fatalf("declarer hand after discard = %d", len(v.Hands[1]))
	}
}

func TestTrickWinner(t *testing.T) {
	tests := []struct {
		name  string
		trump rules.Suit
		trick []rules.Play
		want  int
	}{
		{
			name:  "highest of led suit",
			trump: rules.Spades,
			trick: []rules.Play{
				{Seat: 0, Card: rules.Card{Suit: rules.Hearts, Rank: 9}},
				{Seat: 1, Card: rules.Card{Suit: rules.Hearts, Rank: rules.King}},
				{Seat: 2, Card: rules.Card{Suit: rules.Clubs, Rank: rules.Ace}},
				{Seat: 3, Card: rules.Card{Suit: rules.Hearts, Rank: 10}},
			},
			want: 1,
		},
		{
			name:  "low trump takes it",
			trump: rules.Spades,
			trick: []rules.Play{
				{Seat: 0, Card: rules.Card{Suit: rules.Hearts, Rank: rules.Ace}},
				{Seat: 1, Card: rules.Card{Suit: rules.Spades, Rank: 5}},
				{Seat: 2, Card: rules.Card{Suit: rules.Hearts, Rank: rules.King}},
				{Seat: 3, Card: rules.Card{Suit: rules.Clubs, Rank: 6}},
			},
			want: 1,
		},
		{
			name:  "joker beats everything",
			trump: rules.NoTrumps,
			trick: []rules.Play{
				{Seat: 0, Card: rules.Card{Suit: rules.Hearts, Rank: rules.Ace}},
				{Seat: 1, Card: rules.Card{Suit: rules.Hearts, Rank: 7}},
				{Seat: 2, Card: rules.JokerCard},
				{Seat: 3, Card: rules.Card{Suit: rules.Hearts, Rank: rules.King}},
			},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Engine{contract: &rules.Contract{Bid: rules.Bid{Tricks: 6, Suit: tt.trump}}, trick: tt.trick}
			if got := e.trickWinner(); got != tt.want {
				t.Fatalf("trickWinner() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRandomPlaythroughKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := New(rand.New(rand.NewSource(8)))
	for step := 0; step < 20000 && !e.IsOver(); step++ {
		legal := e.LegalActions()
		if len(legal) == 0 {
			t.Fatalf("step %d: no legal actions in %s", step, e.sub)
		}
		a := legal[rng.Intn(len(legal))]
		if err := e.Apply(a); err != nil {
			t.Fatalf("step %d: legal action %+v rejected: %v", step, a, err)
		}
		if n := countCards(e); n != 43 {
			t.Fatalf("step %d: %d cards accounted for, want 43", step, n)
		}
	}
	if e.IsOver() {
		if e.LegalActions() != nil || e.View().Turn != -1 {
			t.Fatalf("finished game should expose no turn")
		}
	}
}
