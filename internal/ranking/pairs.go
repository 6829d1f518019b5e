package ranking

// pairKeySep joins the two identifiers of a canonical pair key. The unit
// separator cannot appear in any realistic item name, so the composite
// key is unambiguous.
const pairKeySep = "\x1f"

// Pair is an unordered pair of item identifiers, stored in the
// orientation it was enumerated in.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Key returns the order-independent identity of the pair: both
// identifiers sorted lexicographically and joined with pairKeySep.
// (A,B) and (B,A) yield the same key.
func (p Pair) Key() string {
	if p.B < p.A {
		return p.B + pairKeySep + p.A
	}
	return p.A + pairKeySep + p.B
}

// buildUniverse enumerates every unordered pair (items[i], items[j]) for
// i<j in list order. This enumeration order is the tie-break order used
// by the scheduler.
func buildUniverse(items []string) []Pair {
	universe := make([]Pair, 0, len(items)*(len(items)-1)/2)
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			universe = append(universe, Pair{A: items[i], B: items[j]})
		}
	}
	return universe
}
