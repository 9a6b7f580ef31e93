package store

import (
	"context"
	"errors"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// Store defines the interface for game and player storage. Games handed out
// are independent copies: mutating one has no effect until it is saved.
type Store interface {
	// SaveGame inserts or replaces a game
	SaveGame(ctx context.Context, g *game.Game) error

	// GetGame retrieves a game by ID
	GetGame(ctx context.Context, id string) (*game.Game, error)

	// ListGames returns games newest first
	ListGames(ctx context.Context, limit, offset int) ([]*game.Game, error)

	CountGames(ctx context.Context) (int, error)

	// ListGamesByPlayer returns one player's games newest first
	ListGamesByPlayer(ctx context.Context, playerID string, limit, offset int) ([]*game.Game, error)

	CountGamesByPlayer(ctx context.Context, playerID string) (int, error)

	// DeleteGame removes a game from the store
	DeleteGame(ctx context.Context, id string) error

	DeleteGamesByPlayer(ctx context.Context, playerID string) error

	// SavePlayer inserts or replaces a player
	SavePlayer(ctx context.Context, p *player.Player) error

	GetPlayer(ctx context.Context, id string) (*player.Player, error)

	GetPlayerByName(ctx context.Context, name string) (*player.Player, error)

	DeletePlayer(ctx context.Context, id string) error

	// ListRanking orders players by win rate, then games won, then name
	ListRanking(ctx context.Context, limit, offset int) ([]*player.Player, error)

	CountPlayers(ctx context.Context) (int, error)
}
