package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const statsMarkTTL = 24 * time.Hour

// StatsWriter persists win/loss counters and single-player high scores. Writes
// are idempotent per session: a Redis SETNX mark plus an in-process set guard
// against double counting across retries and redeliveries.
type StatsWriter struct {
	db  *sqlx.DB
	rdb *redis.Client

	mu       sync.Mutex
	recorded map[string]bool
}

// NewStatsWriter creates the stats write path. rdb may be nil; idempotency then
// rests on the in-process set alone.
func NewStatsWriter(db *sqlx.DB, rdb *redis.Client) *StatsWriter {
	return &StatsWriter{
		db:       db,
		rdb:      rdb,
		recorded: make(map[string]bool),
	}
}

// RecordSessionOutcome applies exactly one stats increment per participant role
// for the session. Re-invocations for the same session are no-ops.
func (w *StatsWriter) RecordSessionOutcome(ctx context.Context, o Outcome) error {
	if !w.claim(ctx, o.SessionID) {
		return nil
	}

	switch o.Mode {
	case ModeSingle:
		if o.WinnerUserID == "" {
			return nil // abandoned or failed solo run, nothing to record
		}
		return w.recordHighScore(ctx, o.WinnerUserID, o.Score)
	case ModeMultiplayer:
		if o.WinnerUserID == "" {
			return nil // draw (timeout), no increments
		}
		for _, userID := range o.UserIDs {
			if userID == o.WinnerUserID {
				if err := w.incrementWins(ctx, userID); err != nil {
					return err
				}
			} else {
				if err := w.incrementLosses(ctx, userID); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return fmt.Errorf("unknown mode %q", o.Mode)
}

// claim marks the session as recorded. Returns false when a previous
// invocation already claimed it.
func (w *StatsWriter) claim(ctx context.Context, sessionID string) bool {
	w.mu.Lock()
	already := w.recorded[sessionID]
	if !already {
		w.recorded[sessionID] = true
	}
	w.mu.Unlock()
	if already {
		return false
	}

	if w.rdb != nil {
		ok, err := w.rdb.SetNX(ctx, "stats_recorded:"+sessionID, "1", statsMarkTTL).Result()
		if err != nil {
			// Redis down: fall through on the in-process claim, best effort
			log.Printf("[STATS] Redis idempotency mark failed for session %s: %v", sessionID, err)
			return true
		}
		return ok
	}
	return true
}

func (w *StatsWriter) recordHighScore(ctx context.Context, userID string, score int) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, single_player_high_score)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET single_player_high_score = GREATEST(user_stats.single_player_high_score, EXCLUDED.single_player_high_score)
	`, userID, score)
	if err != nil {
		return fmt.Errorf("record high score for %s: %w", userID, err)
	}
	return nil
}

func (w *StatsWriter) incrementWins(ctx context.Context, userID string) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, multiplayer_wins)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET multiplayer_wins = user_stats.multiplayer_wins + 1
	`, userID)
	if err != nil {
		return fmt.Errorf("increment wins for %s: %w", userID, err)
	}
	return nil
}

func (w *StatsWriter) incrementLosses(ctx context.Context, userID string) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, multiplayer_losses)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET multiplayer_losses = user_stats.multiplayer_losses + 1
	`, userID)
	if err != nil {
		return fmt.Errorf("increment losses for %s: %w", userID, err)
	}
	return nil
}
