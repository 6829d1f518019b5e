package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/MatchwellLabs/Faceoff/internal/events"
	"github.com/MatchwellLabs/Faceoff/internal/store"
)

type AdminHandler struct {
	registry *Registry
	store    store.Store
	events   events.Client
}

func NewAdminHandler(r *Registry, s store.Store, ev events.Client) *AdminHandler {
	return &AdminHandler{registry: r, store: s, events: ev}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		// Memory-only mode: report what the registry knows.
		writeJSON(w, http.StatusOK, &store.Stats{TotalSessions: h.registry.Count()})
		return
	}

	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectStats, events.StatsEvent{
			Sessions:    stats.TotalSessions,
			Comparisons: stats.TotalComparisons,
			Timestamp:   time.Now(),
		})
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	if err := h.registry.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectSessionDeleted(id.String()),
			events.SessionDeletedEvent{SessionID: id.String()})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
