package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type Database struct {
	db     *sql.DB
	driver string
}

// NewDatabase opens a connection for driver ("sqlite3" or "postgres") and
// creates the tables if they don't exist.
func NewDatabase(ctx context.Context, driver, dsn string) (*Database, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if driver == DriverSQLite {
		// One writer at a time; this also keeps a ":memory:" database alive.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	d := &Database{db: db, driver: driver}
	if err := d.initTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) jsonType() string {
	if d.driver == DriverPostgres {
		return "JSONB"
	}
	return "TEXT"
}

// initTables creates the necessary tables if they don't exist
func (d *Database) initTables(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			games_played INTEGER NOT NULL DEFAULT 0,
			games_won INTEGER NOT NULL DEFAULT 0,
			games_lost INTEGER NOT NULL DEFAULT 0,
			games_tied INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating players table: %w", err)
	}

	_, err = d.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			game_state %s NOT NULL
		)
	`, d.jsonType()))
	if err != nil {
		return fmt.Errorf("error creating games table: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_games_player_id ON games (player_id)`)
	if err != nil {
		return fmt.Errorf("error creating games index: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// SaveGame inserts or replaces a game.
func (d *Database) SaveGame(ctx context.Context, s game.Snapshot) error {
	state, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error encoding game %s: %w", s.ID, err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO games (id, player_id, status, created_at, updated_at, game_state)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET status = $3, updated_at = $5, game_state = $6
	`, s.ID, s.PlayerID, string(s.Status), s.CreatedAt, s.UpdatedAt, string(state))
	if err != nil {
		return fmt.Errorf("error saving game %s: %w", s.ID, err)
	}
	return nil
}

// GetGame retrieves a game by ID
func (d *Database) GetGame(ctx context.Context, id string) (game.Snapshot, error) {
	var state []byte
	err := d.db.QueryRowContext(ctx, `SELECT game_state FROM games WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("error loading game %s: %w", id, err)
	}
	return decodeGame(state)
}

// ListGames returns games newest first.
func (d *Database) ListGames(ctx context.Context, limit, offset int) ([]game.Snapshot, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT game_state FROM games ORDER BY created_at DESC, id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing games: %w", err)
	}
	return scanGames(rows)
}

// ListGamesByPlayer returns one player's games newest first.
func (d *Database) ListGamesByPlayer(ctx context.Context, playerID string, limit, offset int) ([]game.Snapshot, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT game_state FROM games WHERE player_id = $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3
	`, playerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing games for player %s: %w", playerID, err)
	}
	return scanGames(rows)
}

func (d *Database) CountGames(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting games: %w", err)
	}
	return n, nil
}

func (d *Database) CountGamesByPlayer(ctx context.Context, playerID string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE player_id = $1`, playerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting games for player %s: %w", playerID, err)
	}
	return n, nil
}

// DeleteGame removes a game, returning ErrNotFound if there was none.
func (d *Database) DeleteGame(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting game %s: %w", id, err)
	}
	return requireAffected(res)
}

func (d *Database) DeleteGamesByPlayer(ctx context.Context, playerID string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM games WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("error deleting games for player %s: %w", playerID, err)
	}
	return nil
}

func scanGames(rows *sql.Rows) ([]game.Snapshot, error) {
	defer rows.Close()

	games := []game.Snapshot{}
	for rows.Next() {
		var state []byte
		if err := rows.Scan(&state); err != nil {
			return nil, err
		}
		s, err := decodeGame(state)
		if err != nil {
			return nil, err
		}
		games = append(games, s)
	}
	return games, rows.Err()
}

func decodeGame(state []byte) (game.Snapshot, error) {
	var s game.Snapshot
	if err := json.Unmarshal(state, &s); err != nil {
		return game.Snapshot{}, fmt.Errorf("error decoding game state: %w", err)
	}
	return s, nil
}

// SavePlayer inserts or updates a player.
func (d *Database) SavePlayer(ctx context.Context, p *player.Player) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO players (id, name, games_played, games_won, games_lost, games_tied, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, games_played = $3, games_won = $4, games_lost = $5, games_tied = $6, updated_at = $8
	`, p.ID, p.Name, p.GamesPlayed, p.GamesWon, p.GamesLost, p.GamesTied, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving player %s: %w", p.ID, err)
	}
	return nil
}

const playerColumns = `id, name, games_played, games_won, games_lost, games_tied, created_at, updated_at`

// GetPlayer retrieves a player from the database by ID
func (d *Database) GetPlayer(ctx context.Context, id string) (*player.Player, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

// GetPlayerByName retrieves a player by exact name.
func (d *Database) GetPlayerByName(ctx context.Context, name string) (*player.Player, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE name = $1`, name)
	return scanPlayer(row)
}

func (d *Database) DeletePlayer(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting player %s: %w", id, err)
	}
	return requireAffected(res)
}

// ListPlayersByWinRate orders by win rate, then wins, then name.
func (d *Database) ListPlayersByWinRate(ctx context.Context, limit, offset int) ([]*player.Player, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+playerColumns+` FROM players
		ORDER BY CASE WHEN games_played = 0 THEN 0 ELSE CAST(games_won AS REAL) / games_played END DESC,
			games_won DESC, name ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing ranking: %w", err)
	}
	defer rows.Close()

	players := []*player.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (d *Database) CountPlayers(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting players: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*player.Player, error) {
	var p player.Player
	err := row.Scan(&p.ID, &p.Name, &p.GamesPlayed, &p.GamesWon, &p.GamesLost, &p.GamesTied, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading player: %w", err)
	}
	return player.Reconstitute(p)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
