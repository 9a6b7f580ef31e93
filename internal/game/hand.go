package game

import (
	"fmt"
	"strings"
)

const (
	BlackjackValue = 21
	blackjackCards = 2
	aceBonus       = 10
)

// Hand is an append-only list of cards held by the player or the dealer.
type Hand struct {
	cards []Card
}

func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make([]Card, 0, len(cards)+4)}
	h.cards = append(h.cards, cards...)
	return h
}

// Add appends a card to the hand.
func (h *Hand) Add(card Card) {
	h.cards = append(h.cards, card)
}

// Value totals the hand with every Ace counted as 1, then promotes Aces to 11
// one at a time while the total stays at or below 21.
func (h *Hand) Value() int {
	value, _ := h.score()
	return value
}

// IsSoft reports whether at least one Ace is being counted as 11.
func (h *Hand) IsSoft() bool {
	_, soft := h.score()
	return soft
}

func (h *Hand) score() (int, bool) {
	value := 0
	aces := 0
	for _, c := range h.cards {
		value += c.Value()
		if c.IsAce() {
			aces++
		}
	}

	soft := false
	for aces > 0 && value+aceBonus <= BlackjackValue {
		value += aceBonus
		aces--
		soft = true
	}
	return value, soft
}

func (h *Hand) IsBusted() bool {
	return h.Value() > BlackjackValue
}

// IsBlackjack reports a two-card 21.
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == blackjackCards && h.Value() == BlackjackValue
}

// FirstCard returns the up-card, or false for an empty hand.
func (h *Hand) FirstCard() (Card, bool) {
	if len(h.cards) == 0 {
		return Card{}, false
	}
	return h.cards[0], true
}

// Cards returns a copy of the cards in the order they were dealt.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

func (h *Hand) Len() int {
	return len(h.cards)
}

func (h *Hand) IsEmpty() bool {
	return len(h.cards) == 0
}

// Symbols returns the card symbols in deal order.
func (h *Hand) Symbols() []string {
	out := make([]string, len(h.cards))
	for i, c := range h.cards {
		out[i] = c.Symbol()
	}
	return out
}

func (h *Hand) String() string {
	return fmt.Sprintf("Hand{cards=[%s], value=%d}", strings.Join(h.Symbols(), " "), h.Value())
}
