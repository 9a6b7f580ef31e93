package game

import "time"

// GameFinished is queued on a game when it reaches a terminal status. The
// statistics side consumes it after the game has been saved.
type GameFinished struct {
	GameID     string    `json:"gameId"`
	PlayerID   string    `json:"playerId"`
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}
