package service

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/log"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
	"github.com/calvinwijaya/blackjack/internal/store"
)

// PlayerService owns player registration, renames, deletion and the
// statistics fed by finished games.
// Updates to one player and registrations of one name are serialized.
type PlayerService struct {
	store  store.Store
	logger log.Logger
	locks  *keyedMutex
}

func NewPlayerService(s store.Store, logger log.Logger) *PlayerService {
	return &PlayerService{
		store:  s,
		logger: logger.With("module", "players"),
		locks:  newKeyedMutex(),
	}
}

func playerKey(id string) string { return "player:" + id }

func nameKey(name string) string { return "name:" + name }

// FindOrCreate returns the player with the given name, registering them if
// the name is new.
func (s *PlayerService) FindOrCreate(ctx context.Context, name string) (*player.Player, error) {
	name, err := player.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(nameKey(name))
	defer unlock()

	p, err := s.store.GetPlayerByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrPlayerNotFound) {
		return nil, err
	}

	p, err = player.New(name)
	if err != nil {
		return nil, err
	}
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("error saving player: %w", err)
	}
	s.logger.Info("player registered", "player", p.ID, "name", p.Name)
	return p, nil
}

func (s *PlayerService) Get(ctx context.Context, id string) (PlayerView, error) {
	p, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return PlayerView{}, err
	}
	return NewPlayerView(p), nil
}

// Rename changes a player's name. Names stay unique.
func (s *PlayerService) Rename(ctx context.Context, id, name string) (PlayerView, error) {
	name, err := player.NormalizeName(name)
	if err != nil {
		return PlayerView{}, err
	}

	// Player before name; FindOrCreate only ever takes the name lock.
	unlockPlayer := s.locks.Lock(playerKey(id))
	defer unlockPlayer()
	unlockName := s.locks.Lock(nameKey(name))
	defer unlockName()

	p, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return PlayerView{}, err
	}
	if err := p.Rename(name); err != nil {
		return PlayerView{}, err
	}

	other, err := s.store.GetPlayerByName(ctx, p.Name)
	switch {
	case err == nil && other.ID != p.ID:
		return PlayerView{}, fmt.Errorf("%w: player name %q is already taken", ErrInvalidRequest, p.Name)
	case err != nil && !errors.Is(err, store.ErrPlayerNotFound):
		return PlayerView{}, err
	}

	if err := s.store.SavePlayer(ctx, p); err != nil {
		return PlayerView{}, fmt.Errorf("error saving player: %w", err)
	}
	s.logger.Info("player renamed", "player", p.ID, "name", p.Name)
	return NewPlayerView(p), nil
}

// Delete removes a player together with all of their games.
func (s *PlayerService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(playerKey(id))
	defer unlock()

	if _, err := s.store.GetPlayer(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteGamesByPlayer(ctx, id); err != nil {
		return fmt.Errorf("error deleting games of player %s: %w", id, err)
	}
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("player deleted", "player", id)
	return nil
}

func (s *PlayerService) Ranking(ctx context.Context, page, size int) (Page[RankingEntry], error) {
	req, err := NewPageRequest(page, size)
	if err != nil {
		return Page[RankingEntry]{}, err
	}

	players, err := s.store.ListRanking(ctx, req.Size, req.Offset())
	if err != nil {
		return Page[RankingEntry]{}, err
	}
	total, err := s.store.CountPlayers(ctx)
	if err != nil {
		return Page[RankingEntry]{}, err
	}

	entries := make([]RankingEntry, 0, len(players))
	for i, p := range players {
		entries = append(entries, RankingEntry{Position: req.Offset() + i + 1, PlayerView: NewPlayerView(p)})
	}
	return newPage(req, entries, total), nil
}

// RecordResult applies a finished game to its player's statistics.
func (s *PlayerService) RecordResult(ctx context.Context, event game.GameFinished) error {
	unlock := s.locks.Lock(playerKey(event.PlayerID))
	defer unlock()

	p, err := s.store.GetPlayer(ctx, event.PlayerID)
	if err != nil {
		return err
	}
	if err := p.RecordResult(event.Status); err != nil {
		return err
	}
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return fmt.Errorf("error saving player: %w", err)
	}
	s.logger.Debug("statistics updated", "player", p.ID, "game", event.GameID, "status", event.Status.String())
	return nil
}
