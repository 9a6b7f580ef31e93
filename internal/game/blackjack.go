package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DealerStandsOn is the lowest total the dealer stands on.
const DealerStandsOn = 17

const initialDealCards = 3

// Game is a single-player blackjack round. It owns its shoe, both hands and
// the turn log. A Game is not safe for concurrent use; callers serialize
// access per game id.
type Game struct {
	id         string
	playerID   string
	playerHand *Hand
	dealerHand *Hand
	shoe       *Shoe
	status     Status
	turns      []Turn
	createdAt  time.Time
	updatedAt  time.Time

	pending []GameFinished
	now     func() time.Time
}

type options struct {
	deckCount int
	shoe      *Shoe
	now       func() time.Time
}

type Option func(*options)

// WithDeckCount sets how many decks go into a fresh shoe.
func WithDeckCount(n int) Option {
	return func(o *options) { o.deckCount = n }
}

// WithShoe deals from a copy of the given shoe instead of a freshly shuffled
// one. Later draws on s do not affect the game.
func WithShoe(s *Shoe) Option {
	return func(o *options) { o.shoe = s }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func buildOptions(opts []Option) options {
	o := options{deckCount: DefaultDeckCount, now: defaultClock}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = defaultClock
	}
	return o
}

// NewGameID returns a fresh game identifier.
func NewGameID() string {
	return "game-" + uuid.New().String()
}

// NewGame starts a game for playerID: two cards to the player, then one to
// the dealer. The deal itself is not logged as a turn.
func NewGame(playerID string, opts ...Option) (*Game, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("%w: player id cannot be empty", ErrInvalidConfiguration)
	}
	o := buildOptions(opts)
	if err := ValidateDeckCount(o.deckCount); err != nil {
		return nil, err
	}

	var shoe *Shoe
	if o.shoe != nil {
		shoe = o.shoe.clone()
	} else {
		var err error
		shoe, err = NewShuffledShoe(o.deckCount)
		if err != nil {
			return nil, err
		}
	}
	if shoe.Remaining() < initialDealCards {
		return nil, fmt.Errorf("initial deal needs %d cards, shoe has %d: %w",
			initialDealCards, shoe.Remaining(), ErrShoeExhausted)
	}

	now := o.now()
	g := &Game{
		id:         NewGameID(),
		playerID:   playerID,
		playerHand: NewHand(),
		dealerHand: NewHand(),
		shoe:       shoe,
		status:     Playing,
		turns:      []Turn{},
		createdAt:  now,
		updatedAt:  now,
		now:        o.now,
	}
	g.dealInitialCards()
	return g, nil
}

func (g *Game) dealInitialCards() {
	// Remaining was checked by the caller.
	for _, h := range []*Hand{g.playerHand, g.playerHand, g.dealerHand} {
		card, _ := g.shoe.Draw()
		h.Add(card)
	}
}

// Hit draws one card for the player. A bust ends the game as a dealer win.
func (g *Game) Hit() (Turn, error) {
	if err := g.ensurePlaying(); err != nil {
		return Turn{}, err
	}

	card, err := g.shoe.Draw()
	if err != nil {
		return Turn{}, err
	}
	g.playerHand.Add(card)

	now := g.now()
	turn := playerHit(g.nextTurnNumber(), card, g.playerHand.Value(), now)
	g.turns = append(g.turns, turn)

	if g.playerHand.IsBusted() {
		g.finish(DealerWin, now)
	}
	g.updatedAt = now
	return turn, nil
}

// Stand ends the player's turn, plays the dealer out and settles the game.
// It returns the turns appended by this call: the player's stand, every
// dealer hit and the dealer's stand.
func (g *Game) Stand() ([]Turn, error) {
	if err := g.ensurePlaying(); err != nil {
		return nil, err
	}
	if need := g.dealerDrawsNeeded(); need > g.shoe.Remaining() {
		return nil, fmt.Errorf("dealer needs %d cards, shoe has %d: %w", need, g.shoe.Remaining(), ErrShoeExhausted)
	}

	now := g.now()
	appended := make([]Turn, 0, 4)
	record := func(t Turn) {
		g.turns = append(g.turns, t)
		appended = append(appended, t)
	}

	record(playerStand(g.nextTurnNumber(), g.playerHand.Value(), now))

	for g.dealerHand.Value() < DealerStandsOn {
		card, err := g.shoe.Draw()
		if err != nil {
			// unreachable after dealerDrawsNeeded
			return nil, err
		}
		g.dealerHand.Add(card)
		record(dealerHit(g.nextTurnNumber(), card, g.dealerHand.Value(), g.now()))
	}

	now = g.now()
	record(dealerStand(g.nextTurnNumber(), g.dealerHand.Value(), now))

	g.finish(g.resolve(), now)
	g.updatedAt = now
	return appended, nil
}

// dealerDrawsNeeded replays the dealer policy against the upcoming shoe cards
// without drawing, so Stand either completes or leaves the game untouched.
// It returns Remaining()+1 when the shoe runs out first.
func (g *Game) dealerDrawsNeeded() int {
	probe := NewHand(g.dealerHand.cards...)
	n := 0
	for probe.Value() < DealerStandsOn {
		idx := g.shoe.cursor + n
		if idx >= len(g.shoe.cards) {
			return g.shoe.Remaining() + 1
		}
		probe.Add(g.shoe.cards[idx])
		n++
	}
	return n
}

// resolve decides a stood game. A busted dealer loses before values are compared.
func (g *Game) resolve() Status {
	if g.dealerHand.IsBusted() {
		return PlayerWin
	}
	player, dealer := g.playerHand.Value(), g.dealerHand.Value()
	switch {
	case player > dealer:
		return PlayerWin
	case dealer > player:
		return DealerWin
	default:
		return Tie
	}
}

func (g *Game) finish(status Status, at time.Time) {
	if g.status.IsFinished() || !status.IsFinished() {
		return
	}
	g.status = status
	g.pending = append(g.pending, GameFinished{
		GameID:     g.id,
		PlayerID:   g.playerID,
		Status:     status,
		OccurredAt: at,
	})
}

func (g *Game) ensurePlaying() error {
	if g.status.IsFinished() {
		return fmt.Errorf("%w with status: %s", ErrGameAlreadyFinished, g.status.DisplayName())
	}
	return nil
}

// nextTurnNumber follows the last logged turn. Restored logs may have gaps.
func (g *Game) nextTurnNumber() int {
	if len(g.turns) == 0 {
		return 1
	}
	return g.turns[len(g.turns)-1].Number + 1
}

func (g *Game) ID() string { return g.id }

func (g *Game) PlayerID() string { return g.playerID }

func (g *Game) Status() Status { return g.status }

func (g *Game) IsFinished() bool { return g.status.IsFinished() }

// PlayerHand returns a copy of the player's hand.
func (g *Game) PlayerHand() *Hand { return NewHand(g.playerHand.cards...) }

// DealerHand returns a copy of the dealer's hand.
func (g *Game) DealerHand() *Hand { return NewHand(g.dealerHand.cards...) }

// ShoeRemaining returns how many cards are left to deal.
func (g *Game) ShoeRemaining() int { return g.shoe.Remaining() }

func (g *Game) DeckCount() int { return g.shoe.DeckCount() }

// Turns returns a copy of the turn log.
func (g *Game) Turns() []Turn {
	out := make([]Turn, len(g.turns))
	copy(out, g.turns)
	return out
}

func (g *Game) CreatedAt() time.Time { return g.createdAt }

func (g *Game) UpdatedAt() time.Time { return g.updatedAt }

// DealerVisibleCards is the up-card while playing and the whole hand once
// the game is over.
func (g *Game) DealerVisibleCards() []Card {
	if g.status.IsFinished() {
		return g.dealerHand.Cards()
	}
	if c, ok := g.dealerHand.FirstCard(); ok {
		return []Card{c}
	}
	return []Card{}
}

func (g *Game) DealerVisibleValue() int {
	return NewHand(g.DealerVisibleCards()...).Value()
}

// PendingNotifications returns the queued finished-game notifications.
func (g *Game) PendingNotifications() []GameFinished {
	out := make([]GameFinished, len(g.pending))
	copy(out, g.pending)
	return out
}

func (g *Game) ClearNotifications() {
	g.pending = nil
}

// DrainNotifications returns the queued notifications and clears the queue.
func (g *Game) DrainNotifications() []GameFinished {
	out := g.pending
	g.pending = nil
	return out
}

// Equal compares games by id only.
func (g *Game) Equal(other *Game) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.id == other.id
}

func (g *Game) String() string {
	return fmt.Sprintf("Game{id=%s, playerId=%s, status=%s, playerHandValue=%d, dealerHandValue=%d, turnCount=%d}",
		g.id, g.playerID, g.status, g.playerHand.Value(), g.dealerHand.Value(), len(g.turns))
}
