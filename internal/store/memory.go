package store

import (
	"context"
	"sort"
	"sync"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
)

// MemoryStore is an in-memory implementation of Store. Games are kept as
// snapshots so callers never share state with the store.
type MemoryStore struct {
	games   map[string]game.Snapshot
	players map[string]player.Player
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]game.Snapshot),
		players: make(map[string]player.Player),
	}
}

func (s *MemoryStore) SaveGame(_ context.Context, g *game.Game) error {
	snap := g.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[snap.ID] = snap
	return nil
}

func (s *MemoryStore) GetGame(_ context.Context, id string) (*game.Game, error) {
	s.mu.RLock()
	snap, exists := s.games[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrGameNotFound
	}
	return game.Reconstitute(snap)
}

func (s *MemoryStore) ListGames(_ context.Context, limit, offset int) ([]*game.Game, error) {
	return s.listGames(func(game.Snapshot) bool { return true }, limit, offset)
}

func (s *MemoryStore) CountGames(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games), nil
}

func (s *MemoryStore) ListGamesByPlayer(_ context.Context, playerID string, limit, offset int) ([]*game.Game, error) {
	return s.listGames(func(snap game.Snapshot) bool { return snap.PlayerID == playerID }, limit, offset)
}

func (s *MemoryStore) CountGamesByPlayer(_ context.Context, playerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, snap := range s.games {
		if snap.PlayerID == playerID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) listGames(keep func(game.Snapshot) bool, limit, offset int) ([]*game.Game, error) {
	s.mu.RLock()
	matched := make([]game.Snapshot, 0, len(s.games))
	for _, snap := range s.games {
		if keep(snap) {
			matched = append(matched, snap)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	games := []*game.Game{}
	for _, snap := range window(matched, limit, offset) {
		g, err := game.Reconstitute(snap)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

func (s *MemoryStore) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; !exists {
		return ErrGameNotFound
	}
	delete(s.games, id)
	return nil
}

func (s *MemoryStore) DeleteGamesByPlayer(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, snap := range s.games {
		if snap.PlayerID == playerID {
			delete(s.games, id)
		}
	}
	return nil
}

func (s *MemoryStore) SavePlayer(_ context.Context, p *player.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, id string) (*player.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.players[id]
	if !exists {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetPlayerByName(_ context.Context, name string) (*player.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.players {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, ErrPlayerNotFound
}

func (s *MemoryStore) DeletePlayer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[id]; !exists {
		return ErrPlayerNotFound
	}
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) ListRanking(_ context.Context, limit, offset int) ([]*player.Player, error) {
	s.mu.RLock()
	all := make([]*player.Player, 0, len(s.players))
	for _, p := range s.players {
		p := p
		all = append(all, &p)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.WinRate() != b.WinRate() {
			return a.WinRate() > b.WinRate()
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		return a.Name < b.Name
	})
	return window(all, limit, offset), nil
}

func (s *MemoryStore) CountPlayers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players), nil
}

// window applies limit/offset paging to an already sorted slice.
func window[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
