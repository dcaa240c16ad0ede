package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/game"
)

// Archive stores generated question sets and finished session results.
type Archive struct {
	pool *pgxpool.Pool
}

func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// SaveSet stores a validated question set as JSONB.
func (a *Archive) SaveSet(ctx context.Context, mode domain.GameMode, questions []domain.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal question set: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO question_sets (mode, question_count, questions) VALUES ($1, $2, $3::jsonb)`,
		string(mode), len(questions), string(data),
	)
	if err != nil {
		return fmt.Errorf("save question set: %w", err)
	}
	return nil
}

// SaveResult stores a finished session. Saving the same session twice keeps the first row.
func (a *Archive) SaveResult(ctx context.Context, s game.Summary) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO session_results (
			session_id, mode, score, total_points, correct_count, total_questions,
			percentage, stars, surrendered, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, finished_at) DO NOTHING`,
		s.SessionID, string(s.Mode), s.Score, s.TotalPoints, s.CorrectCount, s.TotalQuestions,
		s.Percentage, s.Stars, s.Surrendered, s.StartedAt, s.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save session result: %w", err)
	}
	return nil
}

// RecentResults returns the latest finished sessions, newest first.
func (a *Archive) RecentResults(ctx context.Context, limit int) ([]game.Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.pool.Query(ctx, `
		SELECT session_id, mode, score, total_points, correct_count, total_questions,
			percentage, stars, surrendered, started_at, finished_at
		FROM session_results
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query session results: %w", err)
	}
	defer rows.Close()

	results := make([]game.Summary, 0, limit)
	for rows.Next() {
		var (
			s    game.Summary
			mode string
		)
		if err := rows.Scan(
			&s.SessionID, &mode, &s.Score, &s.TotalPoints, &s.CorrectCount, &s.TotalQuestions,
			&s.Percentage, &s.Stars, &s.Surrendered, &s.StartedAt, &s.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session result: %w", err)
		}
		s.Mode = domain.GameMode(mode)
		results = append(results, s)
	}
	return results, rows.Err()
}

// Prune deletes results and question sets older than retention and reports the
// number of rows removed.
func (a *Archive) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	tag, err := a.pool.Exec(ctx, `DELETE FROM session_results WHERE finished_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune session results: %w", err)
	}
	removed := tag.RowsAffected()
	tag, err = a.pool.Exec(ctx, `DELETE FROM question_sets WHERE created_at < $1`, cutoff)
	if err != nil {
		return removed, fmt.Errorf("prune question sets: %w", err)
	}
	return removed + tag.RowsAffected(), nil
}
