package ranking

import "math"

// InitialScore is the rating every item starts from. Scores are only
// meaningful relative to each other within one session.
const InitialScore = 1200.0

// expectedScore computes the logistic expected win probability of a
// player rated ra against one rated rb.
func expectedScore(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, (rb-ra)/400.0))
}

// confidenceFor derives an item's confidence from its comparison count:
// 0 with no comparisons, asymptotically approaching 1.
func confidenceFor(comparisons int) float64 {
	return 1.0 - 1.0/(1.0+float64(comparisons))
}
