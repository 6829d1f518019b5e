package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MatchwellLabs/Faceoff/internal/ranking"
	"github.com/MatchwellLabs/Faceoff/internal/store"
)

var ErrSessionNotFound = errors.New("session not found")

// liveSession pairs a session's metadata with its in-memory engine.
// The engine defines no internal synchronization, so every access goes
// through mu.
type liveSession struct {
	mu     sync.Mutex
	meta   *store.Session
	engine *ranking.Session
}

// Registry owns all live ranking sessions. The store is optional: with
// a nil store the service runs memory-only and sessions do not survive
// a restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveSession
	store    store.Store
	logger   *slog.Logger
}

func NewRegistry(s store.Store, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*liveSession),
		store:    s,
		logger:   logger,
	}
}

// restore rebuilds one session's engine by replaying its comparison
// log. Replay is safe because resubmitting a compared pair is a no-op
// in the engine.
func (r *Registry) restore(ctx context.Context, meta *store.Session) (*liveSession, error) {
	engine, err := ranking.New(meta.Items, meta.Config, r.logger)
	if err != nil {
		return nil, fmt.Errorf("rebuild session %s: %w", meta.ID, err)
	}
	log, err := r.store.ListComparisons(ctx, meta.ID)
	if err != nil {
		return nil, fmt.Errorf("list comparisons for %s: %w", meta.ID, err)
	}
	for _, c := range log {
		if err := engine.SubmitComparison(c.Winner, c.Loser); err != nil {
			r.logger.Warn("dropping invalid logged comparison",
				"session_id", meta.ID, "winner", c.Winner, "loser", c.Loser, "error", err)
		}
	}
	return &liveSession{meta: meta, engine: engine}, nil
}

// Rehydrate loads every persisted session into memory. Sessions whose
// stored items or config can no longer build an engine are skipped.
func (r *Registry) Rehydrate(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	sessions, err := r.store.ListSessions(ctx, store.SessionFilter{})
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	for _, meta := range sessions {
		ls, err := r.restore(ctx, meta)
		if err != nil {
			if errors.Is(err, ranking.ErrTooFewItems) || errors.Is(err, ranking.ErrInvalidConfig) {
				r.logger.Warn("skipping unrecoverable session", "session_id", meta.ID, "error", err)
				continue
			}
			return err
		}

		r.mu.Lock()
		r.sessions[meta.ID] = ls
		r.mu.Unlock()
		r.logger.Info("session rehydrated",
			"session_id", meta.ID, "comparisons", ls.engine.ComparedPairs())
	}
	return nil
}

// Create builds a new engine over the items, persists the session when
// a store is configured, and registers it. Returns the metadata and
// any construction warnings (duplicate items collapsed).
func (r *Registry) Create(ctx context.Context, name string, items []string, cfg ranking.Config) (*store.Session, []string, error) {
	engine, err := ranking.New(items, cfg, r.logger)
	if err != nil {
		return nil, nil, err
	}

	meta := &store.Session{
		Name:   name,
		Items:  engine.Items(),
		Config: cfg,
	}
	if r.store != nil {
		if err := r.store.CreateSession(ctx, meta); err != nil {
			return nil, nil, fmt.Errorf("persist session: %w", err)
		}
	} else {
		meta.ID = uuid.New()
		meta.CreatedAt = time.Now()
		meta.UpdatedAt = meta.CreatedAt
	}

	r.mu.Lock()
	r.sessions[meta.ID] = &liveSession{meta: meta, engine: engine}
	r.mu.Unlock()

	return meta, engine.Warnings(), nil
}

// With runs fn with exclusive access to one session's metadata and
// engine. Everything the handlers do to an engine happens inside fn.
// A session missing from memory is fetched from the store and restored
// first, so an instance can serve sessions it did not create.
func (r *Registry) With(ctx context.Context, id uuid.UUID, fn func(meta *store.Session, engine *ranking.Session) error) error {
	ls, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return fn(ls.meta, ls.engine)
}

func (r *Registry) lookup(ctx context.Context, id uuid.UUID) (*liveSession, error) {
	r.mu.RLock()
	ls, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return ls, nil
	}
	if r.store == nil {
		return nil, ErrSessionNotFound
	}

	meta, err := r.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if meta == nil {
		return nil, ErrSessionNotFound
	}
	ls, err = r.restore(ctx, meta)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A concurrent request may have restored it already.
	if existing, ok := r.sessions[id]; ok {
		return existing, nil
	}
	r.sessions[id] = ls
	r.logger.Info("session restored from store",
		"session_id", id, "comparisons", ls.engine.ComparedPairs())
	return ls, nil
}

// RecordComparison appends to the persisted comparison log, if any.
func (r *Registry) RecordComparison(ctx context.Context, c *store.Comparison) error {
	if r.store == nil {
		return nil
	}
	return r.store.RecordComparison(ctx, c)
}

// ClearComparisons empties the persisted comparison log, if any.
func (r *Registry) ClearComparisons(ctx context.Context, id uuid.UUID) error {
	if r.store == nil {
		return nil
	}
	return r.store.DeleteComparisons(ctx, id)
}

// Delete removes a session from the registry and the store.
func (r *Registry) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	if r.store != nil {
		if err := r.store.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	return nil
}

// List returns the metadata of every live session.
func (r *Registry) List() []*store.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*store.Session, 0, len(r.sessions))
	for _, ls := range r.sessions {
		out = append(out, ls.meta)
	}
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
