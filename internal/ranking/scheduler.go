package ranking

import "sort"

// DefaultBatchSize is how many matches NextMatches returns when the
// caller does not ask for a specific count.
const DefaultBatchSize = 10

// NextMatches returns up to n uncompared pairs ranked most- to
// least-informative. n <= 0 means DefaultBatchSize. The result is empty
// once the session is complete.
//
// Each candidate pair scores
//
//	wLow + wConf*(1-avgConfidence) + wProx*(1/(1+|normA-normB|))
//
// over min-max normalized item scores. The low-comparison term is a
// flat contribution for every candidate (candidates are uncompared by
// construction); it is kept for parity with the weight magnitudes
// rather than as a per-pair discriminator. Ties keep the pair
// universe's enumeration order.
func (s *Session) NextMatches(n int) []Pair {
	if n <= 0 {
		n = DefaultBatchSize
	}
	if s.IsComplete() {
		return nil
	}

	norm := s.normalizedScores()
	w := s.cfg.Weights

	type candidate struct {
		pair  Pair
		score float64
	}
	candidates := make([]candidate, 0, len(s.universe)-len(s.compared))
	for _, p := range s.universe {
		if s.compared[p.Key()] {
			continue
		}
		avgConfidence := (s.records[p.A].Confidence + s.records[p.B].Confidence) / 2.0
		proximity := 1.0 / (1.0 + abs(norm[p.A]-norm[p.B]))
		score := w.LowComparison + w.Confidence*(1.0-avgConfidence) + w.Proximity*proximity
		candidates = append(candidates, candidate{pair: p, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]Pair, n)
	for i := 0; i < n; i++ {
		out[i] = candidates[i].pair
	}
	return out
}

// NextMatch returns the single most informative uncompared pair, or
// false once the session is complete.
func (s *Session) NextMatch() (Pair, bool) {
	matches := s.NextMatches(1)
	if len(matches) == 0 {
		return Pair{}, false
	}
	return matches[0], true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
