package game

import (
	"fmt"
	"strings"
	"time"
)

// ShoeSnapshot is the persisted form of a shoe.
type ShoeSnapshot struct {
	Cards  []Card `json:"cards"`
	Cursor int    `json:"cursor"`
}

// Snapshot is the persisted form of a game. It carries everything needed to
// rebuild the game except pending notifications, which are transient.
type Snapshot struct {
	ID         string       `json:"id"`
	PlayerID   string       `json:"playerId"`
	PlayerHand []Card       `json:"playerHand"`
	DealerHand []Card       `json:"dealerHand"`
	Shoe       ShoeSnapshot `json:"shoe"`
	Status     Status       `json:"status"`
	Turns      []Turn       `json:"turnHistory"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Snapshot captures the game's current state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		ID:         g.id,
		PlayerID:   g.playerID,
		PlayerHand: g.playerHand.Cards(),
		DealerHand: g.dealerHand.Cards(),
		Shoe: ShoeSnapshot{
			Cards:  g.shoe.Cards(),
			Cursor: g.shoe.cursor,
		},
		Status:    g.status,
		Turns:     g.Turns(),
		CreatedAt: g.createdAt,
		UpdatedAt: g.updatedAt,
	}
}

// Reconstitute rebuilds a game from persisted fields. Field-level checks
// apply, but the rules of play are not replayed: a finished game is accepted
// as it is.
func Reconstitute(s Snapshot, opts ...Option) (*Game, error) {
	if strings.TrimSpace(s.ID) == "" {
		return nil, fmt.Errorf("%w: game id cannot be empty", ErrInvalidState)
	}
	if strings.TrimSpace(s.PlayerID) == "" {
		return nil, fmt.Errorf("%w: player id cannot be empty", ErrInvalidState)
	}
	if !s.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidState, s.Status)
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		return nil, fmt.Errorf("%w: timestamps are required", ErrInvalidState)
	}

	shoe, err := ReconstituteShoe(s.Shoe.Cards, s.Shoe.Cursor)
	if err != nil {
		return nil, err
	}
	playerHand, err := reconstituteHand("player", s.PlayerHand)
	if err != nil {
		return nil, err
	}
	dealerHand, err := reconstituteHand("dealer", s.DealerHand)
	if err != nil {
		return nil, err
	}

	turns := make([]Turn, 0, len(s.Turns))
	for i, t := range s.Turns {
		checked, err := NewTurn(t.Number, t.Type, t.Owner, t.Card, t.HandValue, t.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i+1, err)
		}
		if i > 0 && checked.Number <= turns[i-1].Number {
			return nil, fmt.Errorf("%w: turn numbers must increase, got %d after %d",
				ErrInvalidState, checked.Number, turns[i-1].Number)
		}
		turns = append(turns, checked)
	}

	o := buildOptions(opts)
	return &Game{
		id:         s.ID,
		playerID:   s.PlayerID,
		playerHand: playerHand,
		dealerHand: dealerHand,
		shoe:       shoe,
		status:     s.Status,
		turns:      turns,
		createdAt:  s.CreatedAt,
		updatedAt:  s.UpdatedAt,
		now:        o.now,
	}, nil
}

func reconstituteHand(owner string, cards []Card) (*Hand, error) {
	for i, c := range cards {
		if !c.Rank.Valid() || !c.Suit.Valid() {
			return nil, fmt.Errorf("%w: invalid card at position %d of %s hand", ErrInvalidState, i, owner)
		}
	}
	return NewHand(cards...), nil
}
