package service

import (
	"time"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
)

// GameView is what clients see of a game. The dealer's hole card stays
// hidden until the game is over.
type GameView struct {
	GameID             string      `json:"gameId"`
	PlayerID           string      `json:"playerId"`
	PlayerName         string      `json:"playerName"`
	PlayerHand         []game.Card `json:"playerHand"`
	DealerVisibleCards []game.Card `json:"dealerVisibleCards"`
	PlayerHandValue    int         `json:"playerHandValue"`
	DealerVisibleValue int         `json:"dealerVisibleValue"`
	Status             game.Status `json:"status"`
	TurnHistory        []game.Turn `json:"turnHistory"`
	CardsRemaining     int         `json:"cardsRemaining"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

func NewGameView(g *game.Game, playerName string) GameView {
	hand := g.PlayerHand()
	return GameView{
		GameID:             g.ID(),
		PlayerID:           g.PlayerID(),
		PlayerName:         playerName,
		PlayerHand:         hand.Cards(),
		DealerVisibleCards: g.DealerVisibleCards(),
		PlayerHandValue:    hand.Value(),
		DealerVisibleValue: g.DealerVisibleValue(),
		Status:             g.Status(),
		TurnHistory:        g.Turns(),
		CardsRemaining:     g.ShoeRemaining(),
		CreatedAt:          g.CreatedAt(),
		UpdatedAt:          g.UpdatedAt(),
	}
}

type PlayerView struct {
	PlayerID    string    `json:"playerId"`
	PlayerName  string    `json:"playerName"`
	GamesPlayed int       `json:"gamesPlayed"`
	GamesWon    int       `json:"gamesWon"`
	GamesLost   int       `json:"gamesLost"`
	GamesTied   int       `json:"gamesTied"`
	WinRate     float64   `json:"winRate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewPlayerView(p *player.Player) PlayerView {
	return PlayerView{
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		GamesPlayed: p.GamesPlayed,
		GamesWon:    p.GamesWon,
		GamesLost:   p.GamesLost,
		GamesTied:   p.GamesTied,
		WinRate:     p.WinRate(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// RankingEntry is a player view with its 1-based position in the ranking.
type RankingEntry struct {
	Position int `json:"position"`
	PlayerView
}
