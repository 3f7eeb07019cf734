// internal/daily/store.go
//
// SQLite persistence for daily puzzle results and the per-date leaderboard.
// Each user gets one recorded result per date (UNIQUE(user_id, date) in the
// schema; inserts past the first are ignored).
package daily

import (
	"context"
	"database/sql"
)

// Result is one user's finished daily puzzle.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	WordIndex int    `json:"wordIndex"`
	Guesses   int    `json:"guesses"`
	Solved    bool   `json:"solved"`
	ElapsedMs int    `json:"elapsedMs"`
}

// LeaderboardRow is one line of the per-date leaderboard.
type LeaderboardRow struct {
	UserID    string `json:"userId"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store wraps the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a recorded result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a finished daily puzzle; duplicate (user, date) rows
// are ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO daily_results
            (user_id, date, word_index, guesses, solved, elapsed_ms)
        VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Date, r.WordIndex, r.Guesses, r.Solved, r.ElapsedMs,
	)
	return err
}

// Leaderboard returns the top solved results for a date, fastest first, then
// fewest guesses, then submission order.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT user_id, guesses, elapsed_ms
        FROM daily_results
        WHERE date=? AND solved=1
        ORDER BY elapsed_ms ASC, guesses ASC, created_at ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
