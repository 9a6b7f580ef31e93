package store

import (
	"context"
	"errors"

	"github.com/calvinwijaya/blackjack/internal/db"
	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
)

// DatabaseStore is a database implementation of Store
type DatabaseStore struct {
	db *db.Database
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{
		db: database,
	}
}

func (s *DatabaseStore) SaveGame(ctx context.Context, g *game.Game) error {
	return s.db.SaveGame(ctx, g.Snapshot())
}

func (s *DatabaseStore) GetGame(ctx context.Context, id string) (*game.Game, error) {
	snap, err := s.db.GetGame(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrGameNotFound)
	}
	return game.Reconstitute(snap)
}

func (s *DatabaseStore) ListGames(ctx context.Context, limit, offset int) ([]*game.Game, error) {
	snaps, err := s.db.ListGames(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return reconstituteAll(snaps)
}

func (s *DatabaseStore) CountGames(ctx context.Context) (int, error) {
	return s.db.CountGames(ctx)
}

func (s *DatabaseStore) ListGamesByPlayer(ctx context.Context, playerID string, limit, offset int) ([]*game.Game, error) {
	snaps, err := s.db.ListGamesByPlayer(ctx, playerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return reconstituteAll(snaps)
}

func (s *DatabaseStore) CountGamesByPlayer(ctx context.Context, playerID string) (int, error) {
	return s.db.CountGamesByPlayer(ctx, playerID)
}

func (s *DatabaseStore) DeleteGame(ctx context.Context, id string) error {
	return mapNotFound(s.db.DeleteGame(ctx, id), ErrGameNotFound)
}

func (s *DatabaseStore) DeleteGamesByPlayer(ctx context.Context, playerID string) error {
	return s.db.DeleteGamesByPlayer(ctx, playerID)
}

func (s *DatabaseStore) SavePlayer(ctx context.Context, p *player.Player) error {
	return s.db.SavePlayer(ctx, p)
}

func (s *DatabaseStore) GetPlayer(ctx context.Context, id string) (*player.Player, error) {
	p, err := s.db.GetPlayer(ctx, id)
	return p, mapNotFound(err, ErrPlayerNotFound)
}

func (s *DatabaseStore) GetPlayerByName(ctx context.Context, name string) (*player.Player, error) {
	p, err := s.db.GetPlayerByName(ctx, name)
	return p, mapNotFound(err, ErrPlayerNotFound)
}

func (s *DatabaseStore) DeletePlayer(ctx context.Context, id string) error {
	return mapNotFound(s.db.DeletePlayer(ctx, id), ErrPlayerNotFound)
}

func (s *DatabaseStore) ListRanking(ctx context.Context, limit, offset int) ([]*player.Player, error) {
	return s.db.ListPlayersByWinRate(ctx, limit, offset)
}

func (s *DatabaseStore) CountPlayers(ctx context.Context) (int, error) {
	return s.db.CountPlayers(ctx)
}

func mapNotFound(err, target error) error {
	if errors.Is(err, db.ErrNotFound) {
		return target
	}
	return err
}

func reconstituteAll(snaps []game.Snapshot) ([]*game.Game, error) {
	games := make([]*game.Game, 0, len(snaps))
	for _, snap := range snaps {
		g, err := game.Reconstitute(snap)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}
