package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Suit int
type Rank int

// Suits in construction order.
const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var suits = []Suit{Hearts, Diamonds, Clubs, Spades}

var ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

type suitInfo struct {
	symbol string
	name   string
	red    bool
}

var suitTable = map[Suit]suitInfo{
	Hearts:   {symbol: "♥", name: "Hearts", red: true},
	Diamonds: {symbol: "♦", name: "Diamonds", red: true},
	Clubs:    {symbol: "♣", name: "Clubs"},
	Spades:   {symbol: "♠", name: "Spades"},
}

type rankInfo struct {
	value  int
	symbol string
	name   string
}

var rankTable = map[Rank]rankInfo{
	Ace:   {value: 1, symbol: "A", name: "Ace"},
	Two:   {value: 2, symbol: "2", name: "Two"},
	Three: {value: 3, symbol: "3", name: "Three"},
	Four:  {value: 4, symbol: "4", name: "Four"},
	Five:  {value: 5, symbol: "5", name: "Five"},
	Six:   {value: 6, symbol: "6", name: "Six"},
	Seven: {value: 7, symbol: "7", name: "Seven"},
	Eight: {value: 8, symbol: "8", name: "Eight"},
	Nine:  {value: 9, symbol: "9", name: "Nine"},
	Ten:   {value: 10, symbol: "10", name: "Ten"},
	Jack:  {value: 10, symbol: "J", name: "Jack"},
	Queen: {value: 10, symbol: "Q", name: "Queen"},
	King:  {value: 10, symbol: "K", name: "King"},
}

func (s Suit) Valid() bool {
	_, ok := suitTable[s]
	return ok
}

// Symbol returns the suit glyph, e.g. "♥".
func (s Suit) Symbol() string { return suitTable[s].symbol }

func (s Suit) String() string { return suitTable[s].name }

func (s Suit) IsRed() bool { return suitTable[s].red }

func (s Suit) IsBlack() bool { return s.Valid() && !suitTable[s].red }

func (r Rank) Valid() bool {
	_, ok := rankTable[r]
	return ok
}

// Value returns the scoring value of the rank with an Ace counted low.
func (r Rank) Value() int { return rankTable[r].value }

func (r Rank) Symbol() string { return rankTable[r].symbol }

func (r Rank) String() string { return rankTable[r].name }

func (r Rank) IsAce() bool { return r == Ace }

func (r Rank) IsFace() bool { return r == Jack || r == Queen || r == King }

// Card is an immutable playing card. Two cards are equal when rank and suit match.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard returns a card, rejecting unknown ranks or suits.
func NewCard(rank Rank, suit Suit) (Card, error) {
	if !rank.Valid() {
		return Card{}, fmt.Errorf("%w: unknown rank %d", ErrInvalidState, rank)
	}
	if !suit.Valid() {
		return Card{}, fmt.Errorf("%w: unknown suit %d", ErrInvalidState, suit)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// Value returns the blackjack value of the card, Ace counted as 1.
func (c Card) Value() int { return c.Rank.Value() }

func (c Card) IsAce() bool { return c.Rank.IsAce() }

func (c Card) IsFace() bool { return c.Rank.IsFace() }

// Symbol returns the short form used on the wire, e.g. "10♥" or "K♠".
func (c Card) Symbol() string { return c.Rank.Symbol() + c.Suit.Symbol() }

func (c Card) String() string { return c.Symbol() }

// DisplayName returns the long form, e.g. "Queen of Spades".
func (c Card) DisplayName() string {
	return c.Rank.String() + " of " + c.Suit.String()
}

func (c Card) MarshalJSON() ([]byte, error) {
	if !c.Rank.Valid() || !c.Suit.Valid() {
		return nil, fmt.Errorf("%w: cannot encode card %d/%d", ErrInvalidState, c.Rank, c.Suit)
	}
	return json.Marshal(c.Symbol())
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses shorthand such as "10♠", "10s", "Kd" or "AH".
func ParseCard(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("%w: invalid card shorthand %q", ErrInvalidState, s)
	}

	// Suit glyphs are multi-byte, so try them before single letters.
	var suit Suit
	var rest string
	found := false
	for _, candidate := range suits {
		if strings.HasSuffix(s, candidate.Symbol()) {
			suit, rest, found = candidate, strings.TrimSuffix(s, candidate.Symbol()), true
			break
		}
	}
	if !found {
		rest = s[:len(s)-1]
		switch s[len(s)-1:] {
		case "h", "H":
			suit = Hearts
		case "d", "D":
			suit = Diamonds
		case "c", "C":
			suit = Clubs
		case "s", "S":
			suit = Spades
		default:
			return Card{}, fmt.Errorf("%w: invalid card suit in %q", ErrInvalidState, s)
		}
	}

	for _, rank := range ranks {
		if strings.EqualFold(rest, rank.Symbol()) {
			return Card{Rank: rank, Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("%w: invalid card rank in %q", ErrInvalidState, s)
}

// MustParseCards parses a list of shorthands and panics on the first bad one.
// Intended for fixtures.
func MustParseCards(symbols ...string) []Card {
	cards := make([]Card, 0, len(symbols))
	for _, s := range symbols {
		c, err := ParseCard(s)
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
	}
	return cards
}
