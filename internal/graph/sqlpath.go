package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SQLPathfinder evaluates the same depth-bounded search as Pathfinder, but as a
// recursive query inside Postgres. The cycle check and hop bound live in the
// query itself. Both implementations must return the same paths on the same
// graph; the cross-check test in sqlpath_test.go holds them to that.
type SQLPathfinder struct {
	db       *sqlx.DB
	maxDepth int
}

// NewSQLPathfinder creates a SQL-backed pathfinder with the given hop bound.
func NewSQLPathfinder(db *sqlx.DB, maxDepth int) *SQLPathfinder {
	return &SQLPathfinder{db: db, maxDepth: maxDepth}
}

const recursiveWalkSQL = `
WITH RECURSIVE edges AS (
    SELECT player1_id AS cur, player2_id AS next
    FROM player_connections
    WHERE connection_type = ANY($3)
    UNION
    SELECT player2_id, player1_id
    FROM player_connections
    WHERE connection_type = ANY($3)
), walk AS (
    SELECT ARRAY[$1]::text[] AS path, $1::text AS node, 0 AS depth
    UNION ALL
    SELECT w.path || e.next, e.next, w.depth + 1
    FROM walk w
    JOIN edges e ON e.cur = w.node
    WHERE w.depth < $4
      AND NOT e.next = ANY(w.path)
)
SELECT path
FROM walk
WHERE node = $2`

// ShortestPath returns one minimum-length node sequence or nil when end is
// unreachable within the hop bound.
func (p *SQLPathfinder) ShortestPath(ctx context.Context, start, end string, allowed TypeSet) ([]string, error) {
	if start == end {
		return []string{start}, nil
	}
	query := recursiveWalkSQL + ` ORDER BY depth, path LIMIT 1`
	var path pq.StringArray
	err := p.db.QueryRowxContext(ctx, query, start, end, typeArray(allowed), p.maxDepth).Scan(&path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("recursive path query: %w", err)
	}
	return []string(path), nil
}

// ShortestPaths returns up to k distinct node sequences of minimum length.
func (p *SQLPathfinder) ShortestPaths(ctx context.Context, start, end string, allowed TypeSet, k int) ([][]string, error) {
	if k <= 0 {
		return nil, nil
	}
	if start == end {
		return [][]string{{start}}, nil
	}
	query := recursiveWalkSQL + `
  AND depth = (SELECT MIN(depth) FROM walk WHERE node = $2)
ORDER BY path
LIMIT $5`
	rows, err := p.db.QueryxContext(ctx, query, start, end, typeArray(allowed), p.maxDepth, k)
	if err != nil {
		return nil, fmt.Errorf("recursive paths query: %w", err)
	}
	defer rows.Close()

	var paths [][]string
	for rows.Next() {
		var path pq.StringArray
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan path row: %w", err)
		}
		paths = append(paths, []string(path))
	}
	return paths, rows.Err()
}

func typeArray(allowed TypeSet) pq.StringArray {
	out := make(pq.StringArray, 0, len(allowed))
	for _, t := range []ConnectionType{TypeTeammate, TypeCollege, TypeDraftClass, TypePosition} {
		if allowed.Contains(t) {
			out = append(out, string(t))
		}
	}
	return out
}
