package store

import (
	"context"
	"testing"
	"time"

	"github.com/calvinwijaya/blackjack/internal/db"
	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	database, err := db.NewDatabase(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return map[string]Store{
		"memory":   NewMemoryStore(),
		"database": NewDatabaseStore(database),
	}
}

func newGame(t *testing.T, playerID string, created time.Time) *game.Game {
	t.Helper()
	shoe, err := game.NewStackedShoe(game.MustParseCards("9♥", "9♠", "10♣", "K♦", "7♦")...)
	require.NoError(t, err)
	g, err := game.NewGame(playerID, game.WithShoe(shoe), game.WithClock(func() time.Time { return created }))
	require.NoError(t, err)
	return g
}

func TestGames(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

			first := newGame(t, "player-a", base)
			second := newGame(t, "player-b", base.Add(time.Minute))
			third := newGame(t, "player-a", base.Add(2*time.Minute))
			for _, g := range []*game.Game{first, second, third} {
				require.NoError(t, s.SaveGame(ctx, g))
			}

			loaded, err := s.GetGame(ctx, first.ID())
			require.NoError(t, err)
			assert.Equal(t, first.Snapshot(), loaded.Snapshot())

			// Mutating a loaded copy does not touch the store until saved.
			_, err = loaded.Stand()
			require.NoError(t, err)
			again, err := s.GetGame(ctx, first.ID())
			require.NoError(t, err)
			assert.Equal(t, game.Playing, again.Status())

			require.NoError(t, s.SaveGame(ctx, loaded))
			again, err = s.GetGame(ctx, first.ID())
			require.NoError(t, err)
			assert.Equal(t, game.DealerWin, again.Status())

			all, err := s.ListGames(ctx, 10, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, third.ID(), all[0].ID())
			assert.Equal(t, second.ID(), all[1].ID())
			assert.Equal(t, first.ID(), all[2].ID())

			paged, err := s.ListGames(ctx, 1, 1)
			require.NoError(t, err)
			require.Len(t, paged, 1)
			assert.Equal(t, second.ID(), paged[0].ID())

			empty, err := s.ListGames(ctx, 10, 30)
			require.NoError(t, err)
			assert.Empty(t, empty)

			mine, err := s.ListGamesByPlayer(ctx, "player-a", 10, 0)
			require.NoError(t, err)
			require.Len(t, mine, 2)
			assert.Equal(t, third.ID(), mine[0].ID())

			n, err := s.CountGamesByPlayer(ctx, "player-a")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			require.NoError(t, s.DeleteGame(ctx, second.ID()))
			require.ErrorIs(t, s.DeleteGame(ctx, second.ID()), ErrGameNotFound)
			_, err = s.GetGame(ctx, second.ID())
			require.ErrorIs(t, err, ErrGameNotFound)

			require.NoError(t, s.DeleteGamesByPlayer(ctx, "player-a"))
			n, err = s.CountGames(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestPlayers(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			p, err := player.New("Alice")
			require.NoError(t, err)
			require.NoError(t, s.SavePlayer(ctx, p))

			// Stored players are copies.
			require.NoError(t, p.RecordResult(game.PlayerWin))
			loaded, err := s.GetPlayer(ctx, p.ID)
			require.NoError(t, err)
			assert.Zero(t, loaded.GamesPlayed)

			require.NoError(t, s.SavePlayer(ctx, p))
			byName, err := s.GetPlayerByName(ctx, "Alice")
			require.NoError(t, err)
			assert.Equal(t, p.ID, byName.ID)
			assert.Equal(t, 1, byName.GamesWon)

			_, err = s.GetPlayerByName(ctx, "Bob")
			require.ErrorIs(t, err, ErrPlayerNotFound)

			require.NoError(t, s.DeletePlayer(ctx, p.ID))
			require.ErrorIs(t, s.DeletePlayer(ctx, p.ID), ErrPlayerNotFound)
			_, err = s.GetPlayer(ctx, p.ID)
			require.ErrorIs(t, err, ErrPlayerNotFound)
		})
	}
}

func TestRanking(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			save := func(name string, results ...game.Status) {
				p, err := player.New(name)
				require.NoError(t, err)
				for _, r := range results {
					require.NoError(t, p.RecordResult(r))
				}
				require.NoError(t, s.SavePlayer(ctx, p))
			}
			save("Zed", game.PlayerWin, game.DealerWin)
			save("Amy", game.PlayerWin, game.DealerWin)
			save("Max", game.PlayerWin, game.PlayerWin, game.DealerWin, game.DealerWin)
			save("Top", game.PlayerWin)
			save("New")

			ranking, err := s.ListRanking(ctx, 10, 0)
			require.NoError(t, err)

			var names []string
			for _, p := range ranking {
				names = append(names, p.Name)
			}
			assert.Equal(t, []string{"Top", "Max", "Amy", "Zed", "New"}, names)

			page, err := s.ListRanking(ctx, 2, 2)
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, "Amy", page[0].Name)

			n, err := s.CountPlayers(ctx)
			require.NoError(t, err)
			assert.Equal(t, 5, n)
		})
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, window(items, 2, 0))
	assert.Equal(t, []int{5}, window(items, 2, 4))
	assert.Equal(t, []int{}, window(items, 2, 5))
	assert.Equal(t, []int{3, 4, 5}, window(items, 10, 2))
}
