package rules

import (
	"fmt"
	"sort"
)

// Suit is a card suit or, for bids, a denomination.
type Suit string

const (
	Spades   Suit = "S"
	Clubs    Suit = "C"
	Diamonds Suit = "D"
	Hearts   Suit = "H"
	NoTrumps Suit = "NT"
	Joker    Suit = "JK"
)

// BidSuits lists bid denominations from lowest to highest.
var BidSuits = []Suit{Spades, Clubs, Diamonds, Hearts, NoTrumps}

// handCycle is the fixed suit order used when laying out a hand.
var handCycle = []Suit{Spades, Diamonds, Clubs, Hearts}

func (s Suit) bidOrder() int {
	for i, b := range BidSuits {
		if b == s {
			return i
		}
	}
	return -1
}

// ValidBidSuit reports whether s can name a contract.
func (s Suit) ValidBidSuit() bool { return s.bidOrder() >= 0 }

// Rank values. Number cards use their face value.
const (
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14
)

// Card is a single playing card. The joker has Suit Joker and Rank 0.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// JokerCard is the single joker in the deck.
var JokerCard = Card{Suit: Joker}

// IsJoker reports whether c is the joker.
func (c Card) IsJoker() bool { return c.Suit == Joker }

func (c Card) String() string {
	if c.IsJoker() {
		return "JK"
	}
	switch c.Rank {
	case Jack:
		return "J" + string(c.Suit)
	case Queen:
		return "Q" + string(c.Suit)
	case King:
		return "K" + string(c.Suit)
	case Ace:
		return "A" + string(c.Suit)
	default:
		return fmt.Sprintf("%d%s", c.Rank, c.Suit)
	}
}

// EffectiveSuit returns the suit c counts as under trump. The joker belongs to
// the trump suit, or stands alone at no-trumps.
func EffectiveSuit(c Card, trump Suit) Suit {
	if c.IsJoker() && trump != NoTrumps && trump != "" {
		return trump
	}
	return c.Suit
}

// SortHand returns a copy of hand ordered for display: joker first, then the
// trump suit high to low, then the other suits in a fixed cyclic order starting
// after trump, each high to low.
func SortHand(hand []Card, trump Suit) []Card {
	out := append([]Card(nil), hand...)
	order := suitOrder(trump)
	key := func(c Card) int {
		if c.IsJoker() {
			return -1
		}
		return order[c.Suit]
	}
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := key(out[i]), key(out[j])
		if ki != kj {
			return ki < kj
		}
		return out[i].Rank > out[j].Rank
	})
	return out
}

func suitOrder(trump Suit) map[Suit]int {
	start := 0
	for i, s := range handCycle {
		if s == trump {
			start = i
			break
		}
	}
	order := make(map[Suit]int, len(handCycle))
	for i := range handCycle {
		order[handCycle[(start+i)%len(handCycle)]] = i
	}
	return order
}
