package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MatchwellLabs/Faceoff/internal/events"
	"github.com/MatchwellLabs/Faceoff/internal/ranking"
	"github.com/MatchwellLabs/Faceoff/internal/store"
)

type SessionsHandler struct {
	registry     *Registry
	events       events.Client
	defaults     ranking.Config
	defaultBatch int
}

func NewSessionsHandler(r *Registry, ev events.Client, defaults ranking.Config, defaultBatch int) *SessionsHandler {
	if defaultBatch <= 0 {
		defaultBatch = ranking.DefaultBatchSize
	}
	return &SessionsHandler{registry: r, events: ev, defaults: defaults, defaultBatch: defaultBatch}
}

type ConfigOverrides struct {
	KFactor             *float64 `json:"k_factor,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	LowComparisonWeight *float64 `json:"low_comparison_weight,omitempty"`
	ConfidenceWeight    *float64 `json:"confidence_weight,omitempty"`
	ProximityWeight     *float64 `json:"proximity_weight,omitempty"`
}

func (o *ConfigOverrides) apply(cfg ranking.Config) ranking.Config {
	if o == nil {
		return cfg
	}
	if o.KFactor != nil {
		cfg.KFactor = *o.KFactor
	}
	if o.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *o.ConfidenceThreshold
	}
	if o.LowComparisonWeight != nil {
		cfg.Weights.LowComparison = *o.LowComparisonWeight
	}
	if o.ConfidenceWeight != nil {
		cfg.Weights.Confidence = *o.ConfidenceWeight
	}
	if o.ProximityWeight != nil {
		cfg.Weights.Proximity = *o.ProximityWeight
	}
	return cfg
}

type CreateSessionRequest struct {
	Name   string           `json:"name,omitempty"`
	Items  []string         `json:"items"`
	Config *ConfigOverrides `json:"config,omitempty"`
}

type SessionResponse struct {
	ID            uuid.UUID      `json:"session_id"`
	Name          string         `json:"name,omitempty"`
	Items         []string       `json:"items"`
	Config        ranking.Config `json:"config"`
	TotalPairs    int            `json:"total_pairs"`
	ComparedPairs int            `json:"compared_pairs"`
	Complete      bool           `json:"complete"`
	Warnings      []string       `json:"warnings,omitempty"`
}

func sessionResponse(meta *store.Session, engine *ranking.Session) SessionResponse {
	return SessionResponse{
		ID:            meta.ID,
		Name:          meta.Name,
		Items:         meta.Items,
		Config:        meta.Config,
		TotalPairs:    engine.TotalPairs(),
		ComparedPairs: engine.ComparedPairs(),
		Complete:      engine.IsComplete(),
		Warnings:      engine.Warnings(),
	}
}

func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items required"})
		return
	}

	cfg := req.Config.apply(h.defaults)
	meta, warnings, err := h.registry.Create(r.Context(), req.Name, req.Items, cfg)
	if err != nil {
		if errors.Is(err, ranking.ErrTooFewItems) || errors.Is(err, ranking.ErrInvalidConfig) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	metricSessionsCreated.Inc()
	h.publish(events.SubjectSessionCreated(meta.ID.String()), events.SessionCreatedEvent{
		SessionID: meta.ID.String(),
		Name:      meta.Name,
		Items:     meta.Items,
		Pairs:     len(meta.Items) * (len(meta.Items) - 1) / 2,
	})

	resp := SessionResponse{
		ID:         meta.ID,
		Name:       meta.Name,
		Items:      meta.Items,
		Config:     meta.Config,
		TotalPairs: len(meta.Items) * (len(meta.Items) - 1) / 2,
		Warnings:   warnings,
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions := h.registry.List()
	out := make([]SessionResponse, 0, len(sessions))
	for _, meta := range sessions {
		_ = h.registry.With(r.Context(), meta.ID, func(m *store.Session, engine *ranking.Session) error {
			out = append(out, sessionResponse(m, engine))
			return nil
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var resp SessionResponse
	err := h.registry.With(r.Context(), id, func(meta *store.Session, engine *ranking.Session) error {
		resp = sessionResponse(meta, engine)
		return nil
	})
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type SubmitComparisonRequest struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

type SubmitComparisonResponse struct {
	Duplicate bool `json:"duplicate"`
	Complete  bool `json:"complete"`
}

func (h *SessionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req SubmitComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Winner == "" || req.Loser == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "winner and loser required"})
		return
	}

	judgeID := JudgeFrom(r.Context())

	var resp SubmitComparisonResponse
	err := h.registry.With(r.Context(), id, func(meta *store.Session, engine *ranking.Session) error {
		if err := engine.ValidateComparison(req.Winner, req.Loser); err != nil {
			return err
		}
		if engine.HasCompared(req.Winner, req.Loser) {
			resp.Duplicate = true
			resp.Complete = engine.IsComplete()
			metricComparisonsDuplicate.Inc()
			return nil
		}
		wasComplete := engine.IsComplete()

		// Persist before applying: a failed write leaves the engine
		// untouched, so the judge's retry goes through.
		if err := h.registry.RecordComparison(r.Context(), &store.Comparison{
			SessionID: meta.ID,
			Winner:    req.Winner,
			Loser:     req.Loser,
			JudgeID:   judgeID,
		}); err != nil {
			return err
		}
		if err := engine.SubmitComparison(req.Winner, req.Loser); err != nil {
			return err
		}
		resp.Complete = engine.IsComplete()
		metricComparisonsRecorded.Inc()

		h.publish(events.SubjectComparisonRecorded(meta.ID.String()), events.ComparisonRecordedEvent{
			SessionID: meta.ID.String(),
			Winner:    req.Winner,
			Loser:     req.Loser,
			JudgeID:   judgeID,
			Compared:  engine.ComparedPairs(),
			Total:     engine.TotalPairs(),
		})
		if resp.Complete && !wasComplete {
			metricSessionsCompleted.Inc()
			h.publish(events.SubjectSessionCompleted(meta.ID.String()), events.SessionCompletedEvent{
				SessionID: meta.ID.String(),
				Compared:  engine.ComparedPairs(),
				Total:     engine.TotalPairs(),
			})
		}
		return nil
	})
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionsHandler) writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, ranking.ErrUnknownItem), errors.Is(err, ranking.ErrSameItem):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (h *SessionsHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var rankings []ranking.Ranking
	err := h.registry.With(r.Context(), id, func(_ *store.Session, engine *ranking.Session) error {
		rankings = engine.Rankings()
		return nil
	})
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}

type NextMatchesResponse struct {
	Matches  []ranking.Pair `json:"matches"`
	Complete bool           `json:"complete"`
}

func (h *SessionsHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	count := h.defaultBatch
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid count"})
			return
		}
		count = n
	}

	var resp NextMatchesResponse
	err := h.registry.With(r.Context(), id, func(_ *store.Session, engine *ranking.Session) error {
		resp.Matches = engine.NextMatches(count)
		resp.Complete = engine.IsComplete()
		return nil
	})
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if resp.Matches == nil {
		resp.Matches = []ranking.Pair{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	err := h.registry.With(r.Context(), id, func(meta *store.Session, engine *ranking.Session) error {
		// Clear the log before the in-memory state: a failed clear
		// must not leave a stale log for replay to resurrect.
		if err := h.registry.ClearComparisons(r.Context(), meta.ID); err != nil {
			return err
		}
		engine.Reset()
		return nil
	})
	if err != nil {
		writeLookupError(w, err)
		return
	}

	h.publish(events.SubjectSessionReset(id.String()), events.SessionResetEvent{SessionID: id.String()})
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type SessionStatus struct {
	Complete      bool    `json:"complete"`
	ComparedPairs int     `json:"compared_pairs"`
	TotalPairs    int     `json:"total_pairs"`
	Progress      float64 `json:"progress"`
}

func (h *SessionsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var status SessionStatus
	err := h.registry.With(r.Context(), id, func(_ *store.Session, engine *ranking.Session) error {
		status = SessionStatus{
			Complete:      engine.IsComplete(),
			ComparedPairs: engine.ComparedPairs(),
			TotalPairs:    engine.TotalPairs(),
		}
		if status.TotalPairs > 0 {
			status.Progress = float64(status.ComparedPairs) / float64(status.TotalPairs)
		}
		return nil
	})
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *SessionsHandler) publish(subject string, payload interface{}) {
	if h.events == nil {
		return
	}
	_ = h.events.Publish(subject, payload)
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
