package game

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func stackedGame(t *testing.T, top ...string) *Game {
	t.Helper()
	shoe, err := NewStackedShoe(MustParseCards(top...)...)
	require.NoError(t, err)
	g, err := NewGame("player-1", WithShoe(shoe), WithClock(tickingClock()))
	require.NoError(t, err)
	return g
}

func turnTypes(turns []Turn) []TurnType {
	out := make([]TurnType, len(turns))
	for i, t := range turns {
		out[i] = t.Type
	}
	return out
}

func TestNewGameDealsInitialCards(t *testing.T) {
	g := stackedGame(t, "9♥", "9♠", "10♣")

	assert.True(t, strings.HasPrefix(g.ID(), "game-"))
	assert.Equal(t, "player-1", g.PlayerID())
	assert.Equal(t, Playing, g.Status())
	assert.Equal(t, MustParseCards("9♥", "9♠"), g.PlayerHand().Cards())
	assert.Equal(t, MustParseCards("10♣"), g.DealerHand().Cards())
	assert.Empty(t, g.Turns())
	assert.Empty(t, g.PendingNotifications())
	assert.Equal(t, CardsPerDeck-3, g.ShoeRemaining())
	assert.Equal(t, g.CreatedAt(), g.UpdatedAt())
}

func TestNewGameWithDeckCount(t *testing.T) {
	g, err := NewGame("player-1", WithDeckCount(6))
	require.NoError(t, err)
	assert.Equal(t, 6, g.DeckCount())
	assert.Equal(t, 6*CardsPerDeck-3, g.ShoeRemaining())

	g, err = NewGame("player-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultDeckCount, g.DeckCount())
}

func TestNewGameValidation(t *testing.T) {
	_, err := NewGame("  ")
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewGame("player-1", WithDeckCount(0))
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewGame("player-1", WithDeckCount(9))
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	shoe, err := ReconstituteShoe(NewOrderedShoe().Cards(), CardsPerDeck-2)
	require.NoError(t, err)
	_, err = NewGame("player-1", WithShoe(shoe))
	require.ErrorIs(t, err, ErrShoeExhausted)
}

func TestStandDealerWins(t *testing.T) {
	g := stackedGame(t, "9♥", "9♠", "10♣", "K♦", "7♦")

	turns, err := g.Stand()
	require.NoError(t, err)

	assert.Equal(t, []TurnType{TurnPlayerStand, TurnDealerHit, TurnDealerStand}, turnTypes(turns))
	assert.Equal(t, 18, turns[0].HandValue)
	require.NotNil(t, turns[1].Card)
	assert.Equal(t, Card{Rank: King, Suit: Diamonds}, *turns[1].Card)
	assert.Equal(t, 20, turns[1].HandValue)
	assert.Equal(t, 20, turns[2].HandValue)
	assert.Equal(t, DealerWin, g.Status())
	assert.Equal(t, turns, g.Turns())
	assert.Len(t, g.PendingNotifications(), 1)
}

func TestHitBustsPlayer(t *testing.T) {
	g := stackedGame(t, "K♥", "Q♠", "5♣", "K♦")
	assert.Equal(t, 20, g.PlayerHand().Value())

	turn, err := g.Hit()
	require.NoError(t, err)

	assert.Equal(t, 1, turn.Number)
	assert.Equal(t, TurnPlayerHit, turn.Type)
	assert.Equal(t, OwnerPlayer, turn.Owner)
	require.NotNil(t, turn.Card)
	assert.Equal(t, Card{Rank: King, Suit: Diamonds}, *turn.Card)
	assert.Equal(t, 30, turn.HandValue)
	assert.Equal(t, DealerWin, g.Status())

	notes := g.PendingNotifications()
	require.Len(t, notes, 1)
	assert.Equal(t, GameFinished{
		GameID:     g.ID(),
		PlayerID:   "player-1",
		Status:     DealerWin,
		OccurredAt: turn.Timestamp,
	}, notes[0])
	assert.Equal(t, turn.Timestamp, g.UpdatedAt())
}

func TestStandTie(t *testing.T) {
	g := stackedGame(t, "10♥", "9♠", "10♣", "9♦")

	turns, err := g.Stand()
	require.NoError(t, err)
	assert.Len(t, turns, 3)
	assert.Equal(t, 19, turns[2].HandValue)
	assert.Equal(t, Tie, g.Status())
}

func TestStandPlayerWinsOnHigherValue(t *testing.T) {
	g := stackedGame(t, "10♥", "K♠", "9♣", "9♦")

	_, err := g.Stand()
	require.NoError(t, err)
	assert.Equal(t, 18, g.DealerHand().Value())
	assert.Equal(t, PlayerWin, g.Status())
}

func TestStandDealerBusts(t *testing.T) {
	g := stackedGame(t, "9♥", "9♠", "10♣", "5♦", "K♦")

	turns, err := g.Stand()
	require.NoError(t, err)
	assert.Equal(t, []TurnType{TurnPlayerStand, TurnDealerHit, TurnDealerHit, TurnDealerStand}, turnTypes(turns))
	assert.Equal(t, 25, turns[3].HandValue)
	assert.True(t, g.DealerHand().IsBusted())
	assert.Equal(t, PlayerWin, g.Status())
}

func TestDealerStandsOnSoftSeventeen(t *testing.T) {
	g := stackedGame(t, "10♥", "9♠", "A♣", "6♦")

	turns, err := g.Stand()
	require.NoError(t, err)
	assert.Equal(t, 17, g.DealerHand().Value())
	assert.Equal(t, 2, g.DealerHand().Len())
	assert.Len(t, turns, 3)
	assert.Equal(t, PlayerWin, g.Status())
}

func TestTurnNumbersContinueAcrossActions(t *testing.T) {
	g := stackedGame(t, "2♥", "3♠", "10♣", "4♦", "7♦")

	_, err := g.Hit()
	require.NoError(t, err)
	_, err = g.Stand()
	require.NoError(t, err)

	for i, turn := range g.Turns() {
		assert.Equal(t, i+1, turn.Number)
	}
	assert.Equal(t, []TurnType{TurnPlayerHit, TurnPlayerStand, TurnDealerHit, TurnDealerStand}, turnTypes(g.Turns()))
}

func TestTurnNumbersFollowRestoredLog(t *testing.T) {
	g := stackedGame(t, "2♥", "3♠", "10♣", "4♦", "7♦")
	_, err := g.Hit()
	require.NoError(t, err)

	snap := g.Snapshot()
	snap.Turns[0].Number = 5
	restored, err := Reconstitute(snap, WithClock(tickingClock()))
	require.NoError(t, err)

	turn, err := restored.Hit()
	require.NoError(t, err)
	assert.Equal(t, 6, turn.Number)

	turns, err := restored.Stand()
	require.NoError(t, err)
	last := turn.Number
	for _, tr := range turns {
		assert.Greater(t, tr.Number, last)
		last = tr.Number
	}
}

func TestGameOwnsItsShoe(t *testing.T) {
	shoe, err := NewStackedShoe(MustParseCards("9♥", "9♠", "10♣", "K♦", "7♦")...)
	require.NoError(t, err)

	first, err := NewGame("player-1", WithShoe(shoe))
	require.NoError(t, err)
	second, err := NewGame("player-2", WithShoe(shoe))
	require.NoError(t, err)

	// Dealing did not consume the caller's shoe.
	assert.Equal(t, CardsPerDeck, shoe.Remaining())
	card, err := shoe.Draw()
	require.NoError(t, err)
	assert.Equal(t, MustParseCards("9♥")[0], card)

	assert.Equal(t, first.PlayerHand().Cards(), second.PlayerHand().Cards())
	_, err = first.Stand()
	require.NoError(t, err)
	assert.Equal(t, CardsPerDeck-3, second.ShoeRemaining())
	assert.Equal(t, CardsPerDeck-4, first.ShoeRemaining())
}

func TestFinishedGameRejectsActions(t *testing.T) {
	g := stackedGame(t, "K♥", "Q♠", "5♣", "K♦")
	_, err := g.Hit()
	require.NoError(t, err)

	turnsBefore := g.Turns()
	remaining := g.ShoeRemaining()
	handSize := g.PlayerHand().Len()
	updated := g.UpdatedAt()

	_, err = g.Hit()
	require.ErrorIs(t, err, ErrGameAlreadyFinished)
	_, err = g.Stand()
	require.ErrorIs(t, err, ErrGameAlreadyFinished)

	assert.Equal(t, turnsBefore, g.Turns())
	assert.Equal(t, remaining, g.ShoeRemaining())
	assert.Equal(t, handSize, g.PlayerHand().Len())
	assert.Equal(t, updated, g.UpdatedAt())
	assert.Len(t, g.PendingNotifications(), 1)
}

func exhaustedGame(t *testing.T) *Game {
	t.Helper()
	// J♠ Q♠ K♠ are the last three cards of an ordered deck.
	shoe, err := ReconstituteShoe(NewOrderedShoe().Cards(), CardsPerDeck-3)
	require.NoError(t, err)
	g, err := NewGame("player-1", WithShoe(shoe))
	require.NoError(t, err)
	return g
}

func TestHitOnExhaustedShoe(t *testing.T) {
	g := exhaustedGame(t)

	_, err := g.Hit()
	require.ErrorIs(t, err, ErrShoeExhausted)
	assert.Equal(t, Playing, g.Status())
	assert.Equal(t, 2, g.PlayerHand().Len())
	assert.Empty(t, g.Turns())
}

func TestStandOnExhaustedShoeLeavesGameUntouched(t *testing.T) {
	g := exhaustedGame(t)
	require.Equal(t, 10, g.DealerHand().Value())

	_, err := g.Stand()
	require.ErrorIs(t, err, ErrShoeExhausted)
	assert.Equal(t, Playing, g.Status())
	assert.Empty(t, g.Turns())
	assert.Equal(t, 1, g.DealerHand().Len())
	assert.Empty(t, g.PendingNotifications())
}

func TestNotificationsDrain(t *testing.T) {
	g := stackedGame(t, "10♥", "9♠", "10♣", "9♦")
	_, err := g.Stand()
	require.NoError(t, err)

	peeked := g.PendingNotifications()
	require.Len(t, peeked, 1)
	peeked[0].Status = PlayerWin
	assert.Equal(t, Tie, g.PendingNotifications()[0].Status)

	drained := g.DrainNotifications()
	require.Len(t, drained, 1)
	assert.Equal(t, Tie, drained[0].Status)
	assert.Empty(t, g.PendingNotifications())
	assert.Empty(t, g.DrainNotifications())

	g2 := stackedGame(t, "10♥", "9♠", "10♣", "9♦")
	_, err = g2.Stand()
	require.NoError(t, err)
	g2.ClearNotifications()
	assert.Empty(t, g2.PendingNotifications())
}

func TestDealerVisibleCards(t *testing.T) {
	g := stackedGame(t, "9♥", "9♠", "10♣", "K♦")
	assert.Equal(t, MustParseCards("10♣"), g.DealerVisibleCards())
	assert.Equal(t, 10, g.DealerVisibleValue())

	_, err := g.Stand()
	require.NoError(t, err)
	assert.Equal(t, MustParseCards("10♣", "K♦"), g.DealerVisibleCards())
	assert.Equal(t, 20, g.DealerVisibleValue())
}

func TestGameEqualityByID(t *testing.T) {
	g := stackedGame(t, "9♥", "9♠", "10♣")
	other := stackedGame(t, "9♥", "9♠", "10♣")
	assert.False(t, g.Equal(other))

	restored, err := Reconstitute(g.Snapshot())
	require.NoError(t, err)
	_, err = restored.Hit()
	require.NoError(t, err)
	assert.True(t, g.Equal(restored))
}

// Random play must respect the rules regardless of the cards.
func TestRandomPlayInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(2026))

	for i := 0; i < 500; i++ {
		deckCount := 1 + r.Intn(MaxDeckCount)
		shoe, err := NewShoe(deckCount, RandomShuffle(r))
		require.NoError(t, err)
		g, err := NewGame("player-1", WithShoe(shoe))
		require.NoError(t, err)

		for !g.IsFinished() {
			if r.Intn(3) == 0 && g.PlayerHand().Value() < 21 {
				before := g.PlayerHand().Len()
				turnsBefore := len(g.Turns())
				_, err := g.Hit()
				require.NoError(t, err)
				require.Equal(t, before+1, g.PlayerHand().Len())
				require.Equal(t, turnsBefore+1, len(g.Turns()))
				continue
			}
			_, err := g.Stand()
			require.NoError(t, err)
			dealer := g.DealerHand()
			require.True(t, dealer.Value() >= DealerStandsOn || dealer.IsBusted())
		}

		require.True(t, g.Status().IsFinished())
		require.Len(t, g.PendingNotifications(), 1)

		hits := 0
		for _, turn := range g.Turns() {
			if turn.Type.IsHit() {
				hits++
			}
		}
		consumed := deckCount*CardsPerDeck - g.ShoeRemaining()
		require.Equal(t, initialDealCards+hits, consumed)
		require.Equal(t, g.PlayerHand().Len()+g.DealerHand().Len(), consumed)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := stackedGame(t, "2♥", "3♠", "10♣", "4♦", "7♦")
	_, err := g.Hit()
	require.NoError(t, err)

	data, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	restored, err := Reconstitute(snap, WithClock(tickingClock()))
	require.NoError(t, err)
	assert.Equal(t, g.Snapshot(), restored.Snapshot())

	// Both copies play out identically from here.
	origTurns, err := g.Stand()
	require.NoError(t, err)
	restoredTurns, err := restored.Stand()
	require.NoError(t, err)
	assert.Equal(t, turnTypes(origTurns), turnTypes(restoredTurns))
	assert.Equal(t, g.Status(), restored.Status())
	assert.Equal(t, g.DealerHand().Cards(), restored.DealerHand().Cards())
}

func TestReconstituteAcceptsFinishedGame(t *testing.T) {
	g := stackedGame(t, "K♥", "Q♠", "5♣", "K♦")
	_, err := g.Hit()
	require.NoError(t, err)

	restored, err := Reconstitute(g.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, DealerWin, restored.Status())
	assert.Empty(t, restored.PendingNotifications())

	_, err = restored.Stand()
	require.ErrorIs(t, err, ErrGameAlreadyFinished)
}

func TestReconstituteValidation(t *testing.T) {
	base := stackedGame(t, "2♥", "3♠", "10♣", "4♦").Snapshot()

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"blank id", func(s *Snapshot) { s.ID = "" }},
		{"blank player", func(s *Snapshot) { s.PlayerID = " " }},
		{"unknown status", func(s *Snapshot) { s.Status = "WON" }},
		{"zero created", func(s *Snapshot) { s.CreatedAt = time.Time{} }},
		{"short shoe", func(s *Snapshot) { s.Shoe.Cards = s.Shoe.Cards[:10] }},
		{"cursor past end", func(s *Snapshot) { s.Shoe.Cursor = 53 }},
		{"bad hand card", func(s *Snapshot) { s.PlayerHand = append(s.PlayerHand, Card{}) }},
		{"negative hand value", func(s *Snapshot) {
			s.Turns = []Turn{{Number: 1, Type: TurnPlayerStand, Owner: OwnerPlayer, HandValue: -3, Timestamp: s.CreatedAt}}
		}},
		{"turn numbers repeat", func(s *Snapshot) {
			s.Turns = []Turn{
				{Number: 1, Type: TurnPlayerStand, Owner: OwnerPlayer, HandValue: 5, Timestamp: s.CreatedAt},
				{Number: 1, Type: TurnDealerStand, Owner: OwnerDealer, HandValue: 17, Timestamp: s.CreatedAt},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			s.Shoe.Cards = append([]Card{}, base.Shoe.Cards...)
			s.PlayerHand = append([]Card{}, base.PlayerHand...)
			tt.mutate(&s)
			_, err := Reconstitute(s)
			require.ErrorIs(t, err, ErrInvalidState)
		})
	}
}
