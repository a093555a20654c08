package models

import (
	"database/sql"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Player is a row of the players table populated by the ETL pipeline.
type Player struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Position    string         `db:"position" json:"position"`
	College     sql.NullString `db:"college" json:"college,omitempty"`
	DraftYear   sql.NullInt64  `db:"draft_year" json:"draft_year,omitempty"`
	Teams       pq.StringArray `db:"teams" json:"teams,omitempty"`
	FirstSeason sql.NullInt64  `db:"first_season" json:"first_season,omitempty"`
	LastSeason  sql.NullInt64  `db:"last_season" json:"last_season,omitempty"`
}

// PlayerConnection is an undirected typed edge between two players.
type PlayerConnection struct {
	ID             int64          `db:"id" json:"id"`
	Player1ID      string         `db:"player1_id" json:"player1_id"`
	Player2ID      string         `db:"player2_id" json:"player2_id"`
	ConnectionType string         `db:"connection_type" json:"connection_type"`
	Metadata       types.JSONText `db:"metadata" json:"metadata,omitempty"`
}

// SeasonalStat carries the per-season fantasy production used for endpoint tiering.
type SeasonalStat struct {
	PlayerID         string  `db:"player_id" json:"player_id"`
	Season           int     `db:"season" json:"season"`
	FantasyPointsPPR float64 `db:"fantasy_points_ppr" json:"fantasy_points_ppr"`
}

// UserStats is the persistent win/loss and high-score record per user.
type UserStats struct {
	UserID                string `db:"user_id" json:"user_id"`
	SinglePlayerHighScore int    `db:"single_player_high_score" json:"single_player_high_score"`
	MultiplayerWins       int    `db:"multiplayer_wins" json:"multiplayer_wins"`
	MultiplayerLosses     int    `db:"multiplayer_losses" json:"multiplayer_losses"`
}
