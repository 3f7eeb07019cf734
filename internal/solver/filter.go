// internal/solver/filter.go
//
// Candidate filter: incremental narrowing of the remaining solution set by
// one guess/feedback pair. Equivalent to selecting a single bucket of the
// pattern table, but exposed separately because the session calls it once
// per turn while the table builder runs across the whole guess dictionary.
package solver

// Narrow returns the subset of candidates for which Score(guess, c) == p.
// The result is always a fresh slice and always a subset of candidates; an
// empty result is a valid, reportable state (no candidates remain), not a
// fault. Candidates of a different length than the guess never match.
func Narrow(candidates []string, guess string, p Pattern) []string {
	if p.Len() != len(guess) {
		return nil
	}
	want := p.Code()
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if len(c) == len(guess) {
			if scoreCode(guess, c) == want {
				out = append(out, c)
			}
		}
	}
	return out
}
