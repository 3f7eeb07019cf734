// internal/solver/rank.go
//
// Entropy ranking of candidate guesses. For each word in the guess pool the
// ranker builds the histogram of feedback patterns across the remaining
// candidate solutions and computes its Shannon entropy: the expected number
// of bits of information the guess yields when the true solution is uniform
// over the candidates. This is the asymptotic hot path of the whole solver
// (|pool| × |candidates| × L scorer invocations), so the per-guess work is
// data-parallel across a fixed worker pool. Parallel and sequential runs
// produce identical output: the scores are pure functions of the inputs and
// the final ordering is a deterministic sort.
package solver

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Suggestion is one ranked guess. Ephemeral: recomputed per request.
type Suggestion struct {
	// Word is the suggested guess.
	Word string `json:"word"`
	// ExpectedInfo is the expected information of the guess in bits,
	// in [0, log2(candidates)].
	ExpectedInfo float64 `json:"expectedInfoBits"`
	// PossibleSolution is true when the word is itself still a candidate
	// solution, not just a probe.
	PossibleSolution bool `json:"possibleSolution"`
}

// Ranker scores guesses from a fixed pool against shifting candidate sets.
// The pool is the full guess dictionary and is shared, read-only, across any
// number of concurrent Rank calls.
type Ranker struct {
	pool    []string
	workers int
}

// NewRanker builds a Ranker over pool. workers bounds the parallel fan-out
// of Rank; values < 1 default to GOMAXPROCS.
func NewRanker(pool []string, workers int) *Ranker {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ranker{pool: pool, workers: workers}
}

// Rank scores every pool word against candidates and returns the top n
// suggestions sorted by descending expected information. Ties prefer words
// that are themselves possible solutions, then lexicographic order, so the
// output is fully deterministic. n <= 0 returns the whole ranking.
//
// An empty pool or candidate set yields an empty (non-error) result; the
// caller decides whether that is terminal. Cancellation is cooperative,
// checked between guess words, and all-or-nothing: a cancelled call returns
// no partial ranking.
func (r *Ranker) Rank(ctx context.Context, candidates []string, n int) ([]Suggestion, error) {
	if len(r.pool) == 0 || len(candidates) == 0 {
		return []Suggestion{}, nil
	}

	scores := make([]float64, len(r.pool))
	space := PatternSpace(len(r.pool[0]))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for chunk := range chunks(len(r.pool), r.workers) {
		chunk := chunk
		g.Go(func() error {
			buckets := make([]int, space)
			for i := chunk.lo; i < chunk.hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				scores[i] = expectedInfo(r.pool[i], candidates, buckets)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inCandidates := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		inCandidates[c] = struct{}{}
	}

	out := make([]Suggestion, len(r.pool))
	for i, w := range r.pool {
		_, possible := inCandidates[w]
		out[i] = Suggestion{Word: w, ExpectedInfo: scores[i], PossibleSolution: possible}
	}
	sort.Slice(out, func(i, j int) bool { return lessSuggestion(out[j], out[i]) })

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

// Pool returns the size of the guess pool.
func (r *Ranker) Pool() int { return len(r.pool) }

// lessSuggestion is the ranking order read backwards: a < b when a ranks
// strictly worse than b.
func lessSuggestion(a, b Suggestion) bool {
	if a.ExpectedInfo != b.ExpectedInfo {
		return a.ExpectedInfo < b.ExpectedInfo
	}
	if a.PossibleSolution != b.PossibleSolution {
		return !a.PossibleSolution
	}
	return a.Word > b.Word
}

// expectedInfo computes −Σ p·log2(p) over the nonempty pattern buckets of
// guess against candidates. buckets is scratch space of size 3^L, zeroed on
// return. 0 when one or fewer candidates remain.
func expectedInfo(guess string, candidates []string, buckets []int) float64 {
	n := countPatterns(guess, candidates, buckets)
	if n <= 1 {
		for i := range buckets {
			buckets[i] = 0
		}
		return 0
	}
	total := float64(n)
	bits := 0.0
	for i, c := range buckets {
		if c > 0 {
			p := float64(c) / total
			bits -= p * math.Log2(p)
			buckets[i] = 0
		}
	}
	return bits
}

type span struct{ lo, hi int }

// chunks splits [0, n) into at most k contiguous spans of near-equal size.
func chunks(n, k int) <-chan span {
	if k > n {
		k = n
	}
	ch := make(chan span, k)
	size := n / k
	rem := n % k
	lo := 0
	for i := 0; i < k; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		ch <- span{lo: lo, hi: hi}
		lo = hi
	}
	close(ch)
	return ch
}
