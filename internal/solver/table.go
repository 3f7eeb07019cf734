// internal/solver/table.go
//
// Pattern table: grouping candidate solutions by the feedback pattern a
// given guess would produce against each of them. The grouped form feeds the
// candidate filter; the histogram-only form is the hot path of the entropy
// ranker, which needs bucket sizes but never the member words.
package solver

// BuildTable groups every candidate by the pattern Score(guess, candidate)
// yields. Candidates whose length differs from the guess can never match and
// are ignored. The input slice is not mutated.
func BuildTable(guess string, candidates []string) map[Pattern][]string {
	out := make(map[Pattern][]string)
	for _, c := range candidates {
		if len(c) != len(guess) {
			continue
		}
		p := PatternFromCode(scoreCode(guess, c), len(guess))
		out[p] = append(out[p], c)
	}
	return out
}

// countPatterns fills buckets (indexed by pattern code, len 3^L) with the
// number of candidates producing each pattern under guess, and returns the
// number of candidates counted. The caller owns buckets and must zero it
// between calls; reusing one slice keeps the ranker allocation-free per
// guess word.
func countPatterns(guess string, candidates []string, buckets []int) int {
	n := 0
	for _, c := range candidates {
		if len(c) != len(guess) {
			continue
		}
		buckets[scoreCode(guess, c)]++
		n++
	}
	return n
}
