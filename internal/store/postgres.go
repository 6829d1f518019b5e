package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const sessionColumns = `session_id, name, items, config, created_at, updated_at`

func (s *PostgresStore) CreateSession(ctx context.Context, session *Session) error {
	itemsJSON, _ := json.Marshal(session.Items)
	configJSON, _ := json.Marshal(session.Config)

	return s.pool.QueryRow(ctx, `
		INSERT INTO faceoff_sessions (name, items, config)
		VALUES ($1, $2, $3)
		RETURNING session_id, created_at, updated_at`,
		session.Name, itemsJSON, configJSON,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	session := &Session{}
	var itemsJSON, configJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM faceoff_sessions WHERE session_id = $1`, id,
	).Scan(
		&session.ID, &session.Name, &itemsJSON, &configJSON,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &session.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(configJSON, &session.Config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter SessionFilter) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM faceoff_sessions WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Name != "" {
		n++
		query += fmt.Sprintf(" AND name = $%d", n)
		args = append(args, filter.Name)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session := &Session{}
		var itemsJSON, configJSON []byte
		if err := rows.Scan(
			&session.ID, &session.Name, &itemsJSON, &configJSON,
			&session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsJSON, &session.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		if err := json.Unmarshal(configJSON, &session.Config); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	// Comparisons cascade via FK.
	_, err := s.pool.Exec(ctx, `DELETE FROM faceoff_sessions WHERE session_id = $1`, id)
	return err
}

func (s *PostgresStore) RecordComparison(ctx context.Context, c *Comparison) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO faceoff_comparisons (session_id, winner, loser, judge_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		c.SessionID, c.Winner, c.Loser, c.JudgeID,
	).Scan(&c.ID, &c.CreatedAt)
}

func (s *PostgresStore) ListComparisons(ctx context.Context, sessionID uuid.UUID) ([]*Comparison, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, winner, loser, judge_id, created_at
		FROM faceoff_comparisons
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comparisons []*Comparison
	for rows.Next() {
		c := &Comparison{}
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Winner, &c.Loser, &c.JudgeID, &c.CreatedAt); err != nil {
			return nil, err
		}
		comparisons = append(comparisons, c)
	}
	return comparisons, rows.Err()
}

func (s *PostgresStore) DeleteComparisons(ctx context.Context, sessionID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM faceoff_comparisons WHERE session_id = $1`, sessionID)
	return err
}

func (s *PostgresStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM faceoff_sessions),
			(SELECT count(*) FROM faceoff_comparisons)`,
	).Scan(&stats.TotalSessions, &stats.TotalComparisons)
	if err != nil {
		return nil, err
	}
	if stats.TotalSessions > 0 {
		stats.AvgComparisons = float64(stats.TotalComparisons) / float64(stats.TotalSessions)
	}
	return stats, nil
}
