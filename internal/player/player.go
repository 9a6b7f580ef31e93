package player

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/google/uuid"
)

const (
	MinNameLength = 2
	MaxNameLength = 50
)

var (
	ErrInvalidName       = errors.New("invalid player name")
	ErrInvalidStatistics = errors.New("invalid player statistics")
	ErrGameInProgress    = errors.New("cannot record result for game still in progress")
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)

// NormalizeName trims and validates a player name.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	case len(name) < MinNameLength:
		return "", fmt.Errorf("%w: name must be at least %d characters long", ErrInvalidName, MinNameLength)
	case len(name) > MaxNameLength:
		return "", fmt.Errorf("%w: name must not exceed %d characters", ErrInvalidName, MaxNameLength)
	case !validName.MatchString(name):
		return "", fmt.Errorf("%w: name can only contain letters, numbers, spaces, hyphens and underscores", ErrInvalidName)
	}
	return name, nil
}

// Player holds a player's identity and game record. The win rate is always
// derived from the counters.
type Player struct {
	ID          string    `json:"playerId"`
	Name        string    `json:"playerName"`
	GamesPlayed int       `json:"gamesPlayed"`
	GamesWon    int       `json:"gamesWon"`
	GamesLost   int       `json:"gamesLost"`
	GamesTied   int       `json:"gamesTied"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewID() string {
	return "player-" + uuid.New().String()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// New registers a player with an empty record.
func New(name string) (*Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	ts := now()
	return &Player{ID: NewID(), Name: name, CreatedAt: ts, UpdatedAt: ts}, nil
}

// Reconstitute rebuilds a player from stored fields.
func Reconstitute(p Player) (*Player, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: player id cannot be empty", ErrInvalidStatistics)
	}
	name, err := NormalizeName(p.Name)
	if err != nil {
		return nil, err
	}
	p.Name = name
	if p.GamesPlayed < 0 || p.GamesWon < 0 || p.GamesLost < 0 || p.GamesTied < 0 {
		return nil, fmt.Errorf("%w: counters cannot be negative", ErrInvalidStatistics)
	}
	if p.GamesWon+p.GamesLost+p.GamesTied != p.GamesPlayed {
		return nil, fmt.Errorf("%w: %d won + %d lost + %d tied != %d played",
			ErrInvalidStatistics, p.GamesWon, p.GamesLost, p.GamesTied, p.GamesPlayed)
	}
	return &p, nil
}

// Rename validates and sets a new name.
func (p *Player) Rename(name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	p.Name = name
	p.UpdatedAt = now()
	return nil
}

// RecordResult counts a finished game towards the player's record.
func (p *Player) RecordResult(status game.Status) error {
	switch status {
	case game.PlayerWin:
		p.GamesWon++
	case game.DealerWin:
		p.GamesLost++
	case game.Tie:
		p.GamesTied++
	case game.Playing:
		return ErrGameInProgress
	default:
		return fmt.Errorf("%w: unexpected game status %q", ErrInvalidStatistics, status)
	}
	p.GamesPlayed++
	p.UpdatedAt = now()
	return nil
}

// WinRate returns won/played as a percentage, 0 before any game.
func (p *Player) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.GamesWon) / float64(p.GamesPlayed) * 100
}

func (p *Player) String() string {
	return fmt.Sprintf("Player{id=%s, name=%s, gamesPlayed=%d, gamesWon=%d, gamesLost=%d, gamesTied=%d, winRate=%.2f%%}",
		p.ID, p.Name, p.GamesPlayed, p.GamesWon, p.GamesLost, p.GamesTied, p.WinRate())
}
