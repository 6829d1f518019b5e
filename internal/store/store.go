package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MatchwellLabs/Faceoff/internal/ranking"
)

// Session is the persisted description of one ranking session: the
// deduplicated item list and the engine configuration it was built
// with. Live rating state is not stored; it is reconstructed by
// replaying the comparison log.
type Session struct {
	ID        uuid.UUID      `json:"session_id"`
	Name      string         `json:"name"`
	Items     []string       `json:"items"`
	Config    ranking.Config `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Comparison is one append-only entry of a session's judgment log.
type Comparison struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Winner    string    `json:"winner"`
	Loser     string    `json:"loser"`
	JudgeID   string    `json:"judge_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionFilter struct {
	Name   string
	Limit  int
	Offset int
}

type Stats struct {
	TotalSessions    int     `json:"total_sessions"`
	TotalComparisons int     `json:"total_comparisons"`
	AvgComparisons   float64 `json:"avg_comparisons_per_session"`
}

type Store interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]*Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	RecordComparison(ctx context.Context, c *Comparison) error
	ListComparisons(ctx context.Context, sessionID uuid.UUID) ([]*Comparison, error)
	DeleteComparisons(ctx context.Context, sessionID uuid.UUID) error

	GetStats(ctx context.Context) (*Stats, error)

	Close() error
}
