package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cosmossdk.io/log"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/store"
)

type Action string

const (
	ActionHit   Action = "HIT"
	ActionStand Action = "STAND"
)

// ParseAction accepts HIT or STAND in any case.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionHit, ActionStand:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q, expected HIT or STAND", ErrInvalidAction, s)
}

// GameService runs the game use cases on top of a Store.
type GameService struct {
	store        store.Store
	players      *PlayerService
	logger       log.Logger
	defaultDecks int
	locks        *keyedMutex
	newShoe      ShoeFactory
}

// ShoeFactory builds the shoe for a new game.
type ShoeFactory func(deckCount int) (*game.Shoe, error)

type GameServiceOption func(*GameService)

// WithDefaultDecks sets the deck count used when a request leaves it out.
func WithDefaultDecks(n int) GameServiceOption {
	return func(s *GameService) { s.defaultDecks = n }
}

// WithShoeFactory replaces the shuffled shoe every new game gets.
func WithShoeFactory(f ShoeFactory) GameServiceOption {
	return func(s *GameService) { s.newShoe = f }
}

func NewGameService(s store.Store, players *PlayerService, logger log.Logger, opts ...GameServiceOption) *GameService {
	svc := &GameService{
		store:        s,
		players:      players,
		logger:       logger.With("module", "games"),
		defaultDecks: game.DefaultDeckCount,
		locks:        newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateGame starts a game for the named player, registering the player on
// first use. A zero deckCount means the configured default.
func (s *GameService) CreateGame(ctx context.Context, playerName string, deckCount int) (GameView, error) {
	if deckCount == 0 {
		deckCount = s.defaultDecks
	}
	if err := game.ValidateDeckCount(deckCount); err != nil {
		return GameView{}, err
	}

	p, err := s.players.FindOrCreate(ctx, playerName)
	if err != nil {
		return GameView{}, err
	}

	opts := []game.Option{game.WithDeckCount(deckCount)}
	if s.newShoe != nil {
		shoe, err := s.newShoe(deckCount)
		if err != nil {
			return GameView{}, err
		}
		opts = append(opts, game.WithShoe(shoe))
	}
	g, err := game.NewGame(p.ID, opts...)
	if err != nil {
		return GameView{}, err
	}
	if err := s.store.SaveGame(ctx, g); err != nil {
		return GameView{}, fmt.Errorf("error saving game: %w", err)
	}

	s.logger.Info("game created", "game", g.ID(), "player", p.ID, "decks", deckCount)
	return NewGameView(g, p.Name), nil
}

// Play applies a HIT or STAND. Results of a game that finishes are recorded
// in the player's statistics once the game itself has been saved.
func (s *GameService) Play(ctx context.Context, gameID, action string) (GameView, error) {
	a, err := ParseAction(action)
	if err != nil {
		return GameView{}, err
	}

	unlock := s.locks.Lock(gameID)
	defer unlock()

	g, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return GameView{}, err
	}

	switch a {
	case ActionHit:
		_, err = g.Hit()
	case ActionStand:
		_, err = g.Stand()
	}
	if err != nil {
		return GameView{}, err
	}

	if err := s.store.SaveGame(ctx, g); err != nil {
		return GameView{}, fmt.Errorf("error saving game: %w", err)
	}
	s.logger.Info("action applied", "game", g.ID(), "action", string(a), "status", g.Status().String())

	for _, event := range g.DrainNotifications() {
		if err := s.players.RecordResult(ctx, event); err != nil {
			s.logger.Error("failed to record game result", "game", event.GameID, "player", event.PlayerID, "err", err)
		}
	}

	return s.view(ctx, g)
}

func (s *GameService) GetGame(ctx context.Context, id string) (GameView, error) {
	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return GameView{}, err
	}
	return s.view(ctx, g)
}

// ListGames pages through all games, newest first.
func (s *GameService) ListGames(ctx context.Context, page, size int) (Page[GameView], error) {
	req, err := NewPageRequest(page, size)
	if err != nil {
		return Page[GameView]{}, err
	}

	games, err := s.store.ListGames(ctx, req.Size, req.Offset())
	if err != nil {
		return Page[GameView]{}, err
	}
	total, err := s.store.CountGames(ctx)
	if err != nil {
		return Page[GameView]{}, err
	}
	return s.page(ctx, req, games, total)
}

// GamesByPlayer pages through one player's games, newest first.
func (s *GameService) GamesByPlayer(ctx context.Context, playerID string, page, size int) (Page[GameView], error) {
	req, err := NewPageRequest(page, size)
	if err != nil {
		return Page[GameView]{}, err
	}
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		return Page[GameView]{}, err
	}

	games, err := s.store.ListGamesByPlayer(ctx, playerID, req.Size, req.Offset())
	if err != nil {
		return Page[GameView]{}, err
	}
	total, err := s.store.CountGamesByPlayer(ctx, playerID)
	if err != nil {
		return Page[GameView]{}, err
	}
	return s.page(ctx, req, games, total)
}

func (s *GameService) DeleteGame(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.store.DeleteGame(ctx, id); err != nil {
		return err
	}
	s.logger.Info("game deleted", "game", id)
	return nil
}

func (s *GameService) page(ctx context.Context, req PageRequest, games []*game.Game, total int) (Page[GameView], error) {
	names := make(map[string]string)
	views := make([]GameView, 0, len(games))
	for _, g := range games {
		name, ok := names[g.PlayerID()]
		if !ok {
			var err error
			if name, err = s.playerName(ctx, g.PlayerID()); err != nil {
				return Page[GameView]{}, err
			}
			names[g.PlayerID()] = name
		}
		views = append(views, NewGameView(g, name))
	}
	return newPage(req, views, total), nil
}

func (s *GameService) view(ctx context.Context, g *game.Game) (GameView, error) {
	name, err := s.playerName(ctx, g.PlayerID())
	if err != nil {
		return GameView{}, err
	}
	return NewGameView(g, name), nil
}

// playerName tolerates a missing player so that orphaned games still render.
func (s *GameService) playerName(ctx context.Context, playerID string) (string, error) {
	p, err := s.store.GetPlayer(ctx, playerID)
	if errors.Is(err, store.ErrPlayerNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
