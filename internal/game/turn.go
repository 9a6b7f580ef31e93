package game

import (
	"fmt"
	"strings"
	"time"
)

type TurnType string

const (
	TurnInitialDeal TurnType = "INITIAL_DEAL"
	TurnPlayerHit   TurnType = "PLAYER_HIT"
	TurnPlayerStand TurnType = "PLAYER_STAND"
	TurnDealerHit   TurnType = "DEALER_HIT"
	TurnDealerStand TurnType = "DEALER_STAND"
)

var turnTypeNames = map[TurnType]string{
	TurnInitialDeal: "Initial deal",
	TurnPlayerHit:   "Player hits",
	TurnPlayerStand: "Player stands",
	TurnDealerHit:   "Dealer hits",
	TurnDealerStand: "Dealer stands",
}

func (t TurnType) Valid() bool {
	_, ok := turnTypeNames[t]
	return ok
}

func (t TurnType) DisplayName() string { return turnTypeNames[t] }

// IsHit reports whether a turn of this type draws a card.
func (t TurnType) IsHit() bool { return t == TurnPlayerHit || t == TurnDealerHit }

type TurnOwner string

const (
	OwnerSystem TurnOwner = "SYSTEM"
	OwnerPlayer TurnOwner = "PLAYER"
	OwnerDealer TurnOwner = "DEALER"
)

var turnOwnerNames = map[TurnOwner]string{
	OwnerSystem: "System",
	OwnerPlayer: "Player",
	OwnerDealer: "Dealer",
}

func (o TurnOwner) Valid() bool {
	_, ok := turnOwnerNames[o]
	return ok
}

func (o TurnOwner) DisplayName() string { return turnOwnerNames[o] }

// Turn is one logged step of a game. Card is nil unless the turn drew one.
type Turn struct {
	Number    int       `json:"turnNumber"`
	Type      TurnType  `json:"type"`
	Owner     TurnOwner `json:"owner"`
	Card      *Card     `json:"card"`
	HandValue int       `json:"handValue"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn validates and builds a turn.
func NewTurn(number int, typ TurnType, owner TurnOwner, card *Card, handValue int, ts time.Time) (Turn, error) {
	if number <= 0 {
		return Turn{}, fmt.Errorf("%w: turn number must be positive, got %d", ErrInvalidState, number)
	}
	if !typ.Valid() {
		return Turn{}, fmt.Errorf("%w: unknown turn type %q", ErrInvalidState, typ)
	}
	if !owner.Valid() {
		return Turn{}, fmt.Errorf("%w: unknown turn owner %q", ErrInvalidState, owner)
	}
	if handValue < 0 {
		return Turn{}, fmt.Errorf("%w: hand value cannot be negative, got %d", ErrInvalidState, handValue)
	}
	if typ.IsHit() && card == nil {
		return Turn{}, fmt.Errorf("%w: %s turn requires a card", ErrInvalidState, typ)
	}
	if !typ.IsHit() && card != nil {
		return Turn{}, fmt.Errorf("%w: %s turn cannot carry a card", ErrInvalidState, typ)
	}
	if ts.IsZero() {
		return Turn{}, fmt.Errorf("%w: turn timestamp is required", ErrInvalidState)
	}
	var owned *Card
	if card != nil {
		c := *card
		owned = &c
	}
	return Turn{Number: number, Type: typ, Owner: owner, Card: owned, HandValue: handValue, Timestamp: ts}, nil
}

func playerHit(number int, card Card, value int, ts time.Time) Turn {
	return Turn{Number: number, Type: TurnPlayerHit, Owner: OwnerPlayer, Card: &card, HandValue: value, Timestamp: ts}
}

func playerStand(number, value int, ts time.Time) Turn {
	return Turn{Number: number, Type: TurnPlayerStand, Owner: OwnerPlayer, HandValue: value, Timestamp: ts}
}

func dealerHit(number int, card Card, value int, ts time.Time) Turn {
	return Turn{Number: number, Type: TurnDealerHit, Owner: OwnerDealer, Card: &card, HandValue: value, Timestamp: ts}
}

func dealerStand(number, value int, ts time.Time) Turn {
	return Turn{Number: number, Type: TurnDealerStand, Owner: OwnerDealer, HandValue: value, Timestamp: ts}
}

func (t Turn) HasCard() bool {
	return t.Card != nil
}

// Description renders the turn for logs and terminals, e.g.
// "Player - Player hits: K♦ (Total: 30)".
func (t Turn) Description() string {
	var b strings.Builder
	b.WriteString(t.Owner.DisplayName())
	b.WriteString(" - ")
	b.WriteString(t.Type.DisplayName())
	if t.Card != nil {
		b.WriteString(": ")
		b.WriteString(t.Card.Symbol())
	}
	fmt.Fprintf(&b, " (Total: %d)", t.HandValue)
	return b.String()
}
