// Package view turns session state into the per-recipient messages sent to clients.
package view

import (
	"encoding/json"

	"fivehundred/internal/domain"
	"fivehundred/internal/rules"
)

// Message types on the wire.
const (
	TypeConnectResult = "connect-result"
	TypeState         = "state"
	TypeAlert         = "alert"
)

// Message is one of ConnectResult, State or Alert.
type Message interface {
	messageType() string
}

// Marshal encodes any outbound message.
func Marshal(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// ConnectStatus is the outcome of a create or join request.
type ConnectStatus string

const (
	StatusOK              ConnectStatus = "ok"
	StatusNoSuchGame      ConnectStatus = "no-such-game"
	StatusGameFull        ConnectStatus = "game-full"
	StatusUsernameTaken   ConnectStatus = "username-taken"
	StatusInvalidUsername ConnectStatus = "invalid-username"
	StatusGameOver        ConnectStatus = "game-over"
)

// ConnectResult answers a client's hello.
type ConnectResult struct {
	Type     string        `json:"type"`
	Status   ConnectStatus `json:"status"`
	Gamecode string        `json:"gamecode,omitempty"`
}

func (ConnectResult) messageType() string { return TypeConnectResult }

func NewConnectResult(status ConnectStatus, code string) ConnectResult {
	return ConnectResult{Type: TypeConnectResult, Status: status, Gamecode: code}
}

// AlertStatus names a notice about another player or a rejected move.
type AlertStatus string

const (
	AlertPlayerJoined  AlertStatus = "player-joined"
	AlertPlayerLeft    AlertStatus = "player-left"
	AlertNewHost       AlertStatus = "new-host"
	AlertIllegalAction AlertStatus = "illegal-action"
)

// Alert is a one-off notice. You is only set for new-host.
type Alert struct {
	Type     string      `json:"type"`
	Status   AlertStatus `json:"status"`
	Username string      `json:"username"`
	You      *bool       `json:"you,omitempty"`
	Message  string      `json:"message,omitempty"`
}

func (Alert) messageType() string { return TypeAlert }

func NewAlert(status AlertStatus, username string) Alert {
	return Alert{Type: TypeAlert, Status: status, Username: username}
}

// For returns the copy of a sent to recipient.
func (a Alert) For(recipient string) Alert {
	if a.Status == AlertNewHost {
		you := a.Username == recipient
		a.You = &you
	}
	return a
}

// State is the full snapshot for one recipient.
type State struct {
	Type     string       `json:"type"`
	State    domain.Phase `json:"state"`
	Gamecode string       `json:"gamecode"`
	Players  []Player     `json:"players"`
	Round    *Round       `json:"round,omitempty"`
}

func (State) messageType() string { return TypeState }

// Seat entry kinds.
const (
	PlayerHuman = "human"
	PlayerBot   = "bot"
	PlayerEmpty = "empty"
)

// Player is one position at the table.
type Player struct {
	Position domain.Position `json:"position"`
	Type     string          `json:"type"`
	Username string          `json:"username,omitempty"`
	Host     bool            `json:"host"`
	You      bool            `json:"you"`
	Play     *SeatPlay       `json:"play,omitempty"`
}

// SeatPlay is the in-game part of a seat entry. Hand and Legal are only ever
// filled on the recipient's own entry.
type SeatPlay struct {
	Turn  bool              `json:"turn"`
	Cards int               `json:"cards"`
	Hand  []rules.Card      `json:"hand,omitempty"`
	Legal []Action          `json:"legal,omitempty"`
	Bids  []rules.BidRecord `json:"bids,omitempty"`
}

// Round is the public state of the current round.
type Round struct {
	Phase     rules.SubPhase   `json:"phase"`
	Scores    []int            `json:"scores"`
	Dealer    domain.Position  `json:"dealer"`
	Trump     rules.Suit       `json:"trump,omitempty"`
	Contract  *Contract        `json:"contract,omitempty"`
	Trick     []Play           `json:"trick,omitempty"`
	LastTrick []Play           `json:"lastTrick,omitempty"`
	Lead      *domain.Position `json:"lead,omitempty"`
}

type Contract struct {
	Bid      rules.Bid       `json:"bid"`
	Declarer domain.Position `json:"declarer"`
}

type Play struct {
	Position domain.Position `json:"position"`
	Card     rules.Card      `json:"card"`
}
