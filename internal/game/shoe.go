package game

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	CardsPerDeck     = 52
	MinDeckCount     = 1
	MaxDeckCount     = 8
	DefaultDeckCount = 1
)

// ValidateDeckCount reports whether n decks can make up a shoe.
func ValidateDeckCount(n int) error {
	if n < MinDeckCount || n > MaxDeckCount {
		return fmt.Errorf("%w: deck count must be between %d and %d, got %d",
			ErrInvalidConfiguration, MinDeckCount, MaxDeckCount, n)
	}
	return nil
}

// Shoe is a fixed sequence of cards consumed front to back. The card order is
// set once at construction; only Draw moves the cursor.
type Shoe struct {
	cards  []Card
	cursor int
}

// ShuffleFunc permutes cards in place.
type ShuffleFunc func(cards []Card)

// RandomShuffle returns a Fisher-Yates shuffle over r. A nil r gets a source
// seeded from the clock.
func RandomShuffle(r *rand.Rand) ShuffleFunc {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return func(cards []Card) {
		for i := len(cards) - 1; i > 0; i-- {
			j := r.Intn(i + 1)
			cards[i], cards[j] = cards[j], cards[i]
		}
	}
}

// NewShuffledShoe builds deckCount standard decks and shuffles them once.
func NewShuffledShoe(deckCount int) (*Shoe, error) {
	return NewShoe(deckCount, RandomShuffle(nil))
}

// NewShoe builds deckCount standard decks in suit-major, rank-minor order and
// applies shuffle to them. A nil shuffle leaves the cards ordered.
func NewShoe(deckCount int, shuffle ShuffleFunc) (*Shoe, error) {
	if err := ValidateDeckCount(deckCount); err != nil {
		return nil, err
	}
	cards := orderedCards(deckCount)
	if shuffle != nil {
		shuffle(cards)
	}
	return &Shoe{cards: cards}, nil
}

// NewOrderedShoe returns a single unshuffled deck.
func NewOrderedShoe() *Shoe {
	return &Shoe{cards: orderedCards(1)}
}

// NewStackedShoe returns a single ordered deck with top moved to the front in
// the given order. Every card in top must be distinct, since a deck holds one
// of each.
func NewStackedShoe(top ...Card) (*Shoe, error) {
	if len(top) > CardsPerDeck {
		return nil, fmt.Errorf("%w: cannot stack %d cards on one deck", ErrInvalidConfiguration, len(top))
	}
	seen := make(map[Card]bool, len(top))
	for _, c := range top {
		if !c.Rank.Valid() || !c.Suit.Valid() {
			return nil, fmt.Errorf("%w: invalid card %d/%d", ErrInvalidConfiguration, c.Rank, c.Suit)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: card %s stacked twice", ErrInvalidConfiguration, c)
		}
		seen[c] = true
	}

	cards := make([]Card, 0, CardsPerDeck)
	cards = append(cards, top...)
	for _, c := range orderedCards(1) {
		if !seen[c] {
			cards = append(cards, c)
		}
	}
	return &Shoe{cards: cards}, nil
}

// ReconstituteShoe rebuilds a shoe from persisted cards and cursor.
func ReconstituteShoe(cards []Card, cursor int) (*Shoe, error) {
	if len(cards) == 0 || len(cards)%CardsPerDeck != 0 {
		return nil, fmt.Errorf("%w: shoe size must be a positive multiple of %d, got %d",
			ErrInvalidState, CardsPerDeck, len(cards))
	}
	if cursor < 0 || cursor > len(cards) {
		return nil, fmt.Errorf("%w: shoe cursor must be between 0 and %d, got %d",
			ErrInvalidState, len(cards), cursor)
	}
	for i, c := range cards {
		if !c.Rank.Valid() || !c.Suit.Valid() {
			return nil, fmt.Errorf("%w: invalid card at position %d", ErrInvalidState, i)
		}
	}
	owned := make([]Card, len(cards))
	copy(owned, cards)
	return &Shoe{cards: owned, cursor: cursor}, nil
}

func orderedCards(deckCount int) []Card {
	cards := make([]Card, 0, deckCount*CardsPerDeck)
	for d := 0; d < deckCount; d++ {
		for _, suit := range suits {
			for _, rank := range ranks {
				cards = append(cards, Card{Rank: rank, Suit: suit})
			}
		}
	}
	return cards
}

// Draw returns the card under the cursor and advances it.
func (s *Shoe) Draw() (Card, error) {
	if s.cursor >= len(s.cards) {
		return Card{}, ErrShoeExhausted
	}
	card := s.cards[s.cursor]
	s.cursor++
	return card, nil
}

// Remaining returns the number of cards left to draw.
func (s *Shoe) Remaining() int {
	return len(s.cards) - s.cursor
}

func (s *Shoe) IsEmpty() bool {
	return s.Remaining() == 0
}

func (s *Shoe) Size() int {
	return len(s.cards)
}

func (s *Shoe) Cursor() int {
	return s.cursor
}

func (s *Shoe) DeckCount() int {
	return len(s.cards) / CardsPerDeck
}

func (s *Shoe) clone() *Shoe {
	return &Shoe{cards: s.Cards(), cursor: s.cursor}
}

// Cards returns a copy of the full card sequence, drawn cards included.
func (s *Shoe) Cards() []Card {
	out := make([]Card, len(s.cards))
	copy(out, s.cards)
	return out
}

func (s *Shoe) String() string {
	return fmt.Sprintf("Shoe{total=%d, remaining=%d, cursor=%d}", len(s.cards), s.Remaining(), s.cursor)
}
