package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/MatchwellLabs/Faceoff/internal/ranking"
	"github.com/MatchwellLabs/Faceoff/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryCreateMemoryOnly(t *testing.T) {
	reg := NewRegistry(nil, testLogger())

	meta, warnings, err := reg.Create(context.Background(), "test", []string{"a", "b"}, ranking.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ID == uuid.Nil {
		t.Error("expected a generated session id without a store")
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if reg.Count() != 1 {
		t.Errorf("expected 1 live session, got %d", reg.Count())
	}
}

func TestRegistryCreatePropagatesEngineErrors(t *testing.T) {
	reg := NewRegistry(nil, testLogger())

	_, _, err := reg.Create(context.Background(), "", []string{"only"}, ranking.DefaultConfig())
	if !errors.Is(err, ranking.ErrTooFewItems) {
		t.Errorf("expected ErrTooFewItems, got %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("failed create must not register a session, got %d", reg.Count())
	}
}

func TestRegistryWithUnknownSession(t *testing.T) {
	reg := NewRegistry(nil, testLogger())

	err := reg.With(context.Background(), uuid.New(), func(_ *store.Session, _ *ranking.Session) error {
		t.Error("fn must not run for an unknown session")
		return nil
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistryWithRestoresFromStore(t *testing.T) {
	ms := newMockStore()
	ctx := context.Background()

	meta := &store.Session{Name: "elsewhere", Items: []string{"a", "b", "c"}, Config: ranking.DefaultConfig()}
	if err := ms.CreateSession(ctx, meta); err != nil {
		t.Fatal(err)
	}
	if err := ms.RecordComparison(ctx, &store.Comparison{SessionID: meta.ID, Winner: "a", Loser: "b"}); err != nil {
		t.Fatal(err)
	}

	// No Rehydrate: the session is only in the store, as if another
	// instance created it.
	reg := NewRegistry(ms, testLogger())
	err := reg.With(ctx, meta.ID, func(m *store.Session, engine *ranking.Session) error {
		if m.Name != "elsewhere" {
			t.Errorf("unexpected metadata: %+v", m)
		}
		if engine.ComparedPairs() != 1 {
			t.Errorf("expected 1 replayed comparison, got %d", engine.ComparedPairs())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected session restored on access, got %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("restored session should be registered, got %d live", reg.Count())
	}
}

func TestRegistryDelete(t *testing.T) {
	reg := NewRegistry(nil, testLogger())
	meta, _, err := reg.Create(context.Background(), "", []string{"a", "b"}, ranking.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.Delete(context.Background(), meta.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := reg.Delete(context.Background(), meta.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second delete should report not found, got %v", err)
	}
}

func TestRegistryRehydrateReplaysLog(t *testing.T) {
	ms := newMockStore()
	ctx := context.Background()

	meta := &store.Session{Name: "restored", Items: []string{"a", "b", "c"}, Config: ranking.DefaultConfig()}
	if err := ms.CreateSession(ctx, meta); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*store.Comparison{
		{SessionID: meta.ID, Winner: "a", Loser: "b", JudgeID: "j1"},
		{SessionID: meta.ID, Winner: "a", Loser: "c", JudgeID: "j1"},
	} {
		if err := ms.RecordComparison(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	reg := NewRegistry(ms, testLogger())
	if err := reg.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if reg.Count() != 1 {
		t.Fatalf("expected 1 rehydrated session, got %d", reg.Count())
	}

	err := reg.With(ctx, meta.ID, func(_ *store.Session, engine *ranking.Session) error {
		if engine.ComparedPairs() != 2 {
			t.Errorf("expected 2 replayed comparisons, got %d", engine.ComparedPairs())
		}
		rankings := engine.Rankings()
		if rankings[0].Item != "a" {
			t.Errorf("expected a on top after replay, got %q", rankings[0].Item)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRegistryRehydrateSkipsInvalidLogEntries(t *testing.T) {
	ms := newMockStore()
	ctx := context.Background()

	meta := &store.Session{Items: []string{"a", "b"}, Config: ranking.DefaultConfig()}
	if err := ms.CreateSession(ctx, meta); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*store.Comparison{
		{SessionID: meta.ID, Winner: "ghost", Loser: "b"},
		{SessionID: meta.ID, Winner: "a", Loser: "b"},
	} {
		if err := ms.RecordComparison(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	reg := NewRegistry(ms, testLogger())
	if err := reg.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}

	err := reg.With(ctx, meta.ID, func(_ *store.Session, engine *ranking.Session) error {
		if engine.ComparedPairs() != 1 {
			t.Errorf("invalid entry should be dropped, got %d compared pairs", engine.ComparedPairs())
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
