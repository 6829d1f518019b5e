// Package ranking implements a pairwise-comparison ranking engine. A
// Session holds a fixed set of named items, updates Elo-style strength
// scores as an external judge declares winners, schedules the most
// informative pairs to compare next, and reports when further
// comparisons would add little value.
//
// A Session is deliberately single-threaded: every method runs to
// completion with no internal locking, and the host must serialize
// access to one instance.
package ranking

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

var (
	ErrTooFewItems = errors.New("at least 2 distinct items required")
	ErrUnknownItem = errors.New("item is not part of this session")
	ErrSameItem    = errors.New("winner and loser must differ")
)

// Record is the mutable rating state of one item. Confidence is always
// derived from Comparisons, never set independently.
type Record struct {
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	Comparisons int     `json:"comparisons"`
}

// Ranking is one row of the session standings.
type Ranking struct {
	Item       string  `json:"item"`
	Score      float64 `json:"score"` // min-max normalized to [0,1]
	Rank       int     `json:"rank"`
	Confidence float64 `json:"confidence"`
}

// Session is the stateful ranking engine. Construct with New, feed it
// comparison outcomes, and read rankings and next matches back.
type Session struct {
	cfg      Config
	logger   *slog.Logger
	items    []string // deduplicated, first-occurrence order
	records  map[string]*Record
	universe []Pair
	compared map[string]bool // keyed by Pair.Key()
	warnings []string
}

// New builds a session over the given items. Duplicate identifiers are
// collapsed to their first occurrence and reported via Warnings; fewer
// than 2 distinct identifiers is an error.
func New(items []string, cfg Config, logger *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]bool, len(items))
	deduped := make([]string, 0, len(items))
	duplicates := 0
	for _, id := range items {
		if seen[id] {
			duplicates++
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}

	if len(deduped) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewItems, len(deduped))
	}

	s := &Session{
		cfg:    cfg,
		logger: logger,
		items:  deduped,
	}
	if duplicates > 0 {
		warning := fmt.Sprintf("%d duplicate item(s) removed", duplicates)
		s.warnings = append(s.warnings, warning)
		logger.Warn("duplicate items collapsed", "removed", duplicates, "kept", len(deduped))
	}
	s.Reset()
	return s, nil
}

// Reset discards all comparison results and rebuilds the rating records
// and pair universe from the original item list. Configuration is
// untouched.
func (s *Session) Reset() {
	s.records = make(map[string]*Record, len(s.items))
	for _, id := range s.items {
		s.records[id] = &Record{Score: InitialScore}
	}
	s.universe = buildUniverse(s.items)
	s.compared = make(map[string]bool, len(s.universe))
}

// ValidateComparison checks a winner/loser submission without touching
// any state: both identifiers must be session items and must differ.
func (s *Session) ValidateComparison(winner, loser string) error {
	if winner == loser {
		return fmt.Errorf("%w: %q", ErrSameItem, winner)
	}
	if _, ok := s.records[winner]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, winner)
	}
	if _, ok := s.records[loser]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, loser)
	}
	return nil
}

// HasCompared reports whether the pair has been judged, in either
// orientation. Unknown identifiers report false.
func (s *Session) HasCompared(a, b string) bool {
	return s.compared[Pair{A: a, B: b}.Key()]
}

// SubmitComparison records that winner beat loser and updates both
// ratings. Re-submitting a pair that has already been compared (in
// either orientation) is a no-op. On error, no state changes.
func (s *Session) SubmitComparison(winner, loser string) error {
	if err := s.ValidateComparison(winner, loser); err != nil {
		return err
	}

	key := Pair{A: winner, B: loser}.Key()
	if s.compared[key] {
		return nil
	}
	w := s.records[winner]
	l := s.records[loser]

	expectedWinner := expectedScore(w.Score, l.Score)
	expectedLoser := 1.0 - expectedWinner

	w.Score += s.cfg.KFactor * (1.0 - expectedWinner)
	l.Score += s.cfg.KFactor * (0.0 - expectedLoser)

	w.Comparisons++
	l.Comparisons++
	w.Confidence = confidenceFor(w.Comparisons)
	l.Confidence = confidenceFor(l.Comparisons)

	s.compared[key] = true
	return nil
}

// IsComplete reports whether the session should stop requesting
// comparisons: every pair has been compared, or every item has reached
// the configured confidence threshold.
func (s *Session) IsComplete() bool {
	if len(s.compared) >= len(s.universe) {
		return true
	}
	for _, r := range s.records {
		if r.Confidence < s.cfg.ConfidenceThreshold {
			return false
		}
	}
	return true
}

// Rankings returns the current standings: one entry per item with its
// min-max normalized score, confidence, and 1-based rank by descending
// normalized score. Tied items keep their first-occurrence order.
func (s *Session) Rankings() []Ranking {
	norm := s.normalizedScores()

	out := make([]Ranking, 0, len(s.items))
	for _, id := range s.items {
		out = append(out, Ranking{
			Item:       id,
			Score:      norm[id],
			Confidence: s.records[id].Confidence,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// normalizedScores maps every item to (score-min)/(max-min) across all
// current scores. When all scores are equal, every item gets 0.5.
func (s *Session) normalizedScores() map[string]float64 {
	min, max := s.records[s.items[0]].Score, s.records[s.items[0]].Score
	for _, id := range s.items[1:] {
		score := s.records[id].Score
		if score < min {
			min = score
		}
		if score > max {
			max = score
		}
	}

	norm := make(map[string]float64, len(s.items))
	for _, id := range s.items {
		if max == min {
			norm[id] = 0.5
			continue
		}
		norm[id] = (s.records[id].Score - min) / (max - min)
	}
	return norm
}

// Items returns the deduplicated item list in first-occurrence order.
func (s *Session) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Record returns a copy of one item's rating state.
func (s *Session) Record(id string) (Record, bool) {
	r, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Warnings returns non-fatal conditions observed at construction, such
// as duplicate items having been collapsed.
func (s *Session) Warnings() []string {
	return s.warnings
}

// TotalPairs returns the size of the pair universe: n*(n-1)/2.
func (s *Session) TotalPairs() int {
	return len(s.universe)
}

// ComparedPairs returns how many distinct pairs have been compared.
func (s *Session) ComparedPairs() int {
	return len(s.compared)
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}
