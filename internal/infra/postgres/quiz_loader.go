package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"artquiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizLoader loads quiz definition JSONB from Postgres in progression order.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuizzes(ctx context.Context) ([]domain.QuizDefinition, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM quiz_definitions ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.QuizDefinition
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		var quiz domain.QuizDefinition
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	return quizzes, nil
}

// ImportQuizzes replaces the stored definitions with quizzes, keeping their order.
func ImportQuizzes(ctx context.Context, pool *pgxpool.Pool, quizzes []domain.QuizDefinition) error {
	return pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM quiz_definitions`); err != nil {
			return fmt.Errorf("clear quizzes: %w", err)
		}
		for i, q := range quizzes {
			data, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("marshal quiz %s: %w", q.ID, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO quiz_definitions (id, position, data) VALUES ($1, $2, $3::jsonb)`,
				q.ID, i, string(data),
			); err != nil {
				return fmt.Errorf("insert quiz %s: %w", q.ID, err)
			}
		}
		return nil
	})
}
