package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
	"github.com/letsssgooo/cricketQuiz/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id          UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	score       INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	total_time  INTEGER NOT NULL,
	redirect    TEXT NOT NULL DEFAULT '',
	answers     JSONB NOT NULL DEFAULT '[]'
)`

const uniqueViolation = "23505"

// Storage реализует storage.Storage поверх PostgreSQL.
type Storage struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage подключается к базе по dsn.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Storage{pool: pool}, nil
}

// Migrate создает таблицу попыток, если ее нет.
func (s *Storage) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) SaveAttempt(ctx context.Context, attempt *models.Attempt) error {
	if err := storage.Validate(attempt); err != nil {
		return err
	}

	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	query := `
	INSERT INTO attempts (id, started_at, finished_at, score, total, total_time, redirect, answers)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(
		ctx,
		query,
		attempt.ID,
		attempt.StartedAt,
		attempt.FinishedAt,
		attempt.Score,
		attempt.Total,
		attempt.TotalTime,
		attempt.Redirect,
		string(answers),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrAlreadyExists, attempt.ID)
	}

	return err
}

func (s *Storage) GetAttempt(ctx context.Context, id string) (*models.Attempt, error) {
	query := `
	SELECT id::text, started_at, finished_at, score, total, total_time, redirect, answers
	FROM attempts WHERE id = $1
	`

	attempt, err := scanAttempt(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return attempt, nil
}

func (s *Storage) ListAttempts(ctx context.Context, limit int) ([]*models.Attempt, error) {
	query := `
	SELECT id::text, started_at, finished_at, score, total, total_time, redirect, answers
	FROM attempts ORDER BY finished_at DESC, id
	`

	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}

func scanAttempt(row pgx.Row) (*models.Attempt, error) {
	var (
		attempt models.Attempt
		answers []byte
	)

	err := row.Scan(
		&attempt.ID,
		&attempt.StartedAt,
		&attempt.FinishedAt,
		&attempt.Score,
		&attempt.Total,
		&attempt.TotalTime,
		&attempt.Redirect,
		&answers,
	)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(answers, &attempt.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers of attempt %s: %w", attempt.ID, err)
	}

	return &attempt, nil
}
