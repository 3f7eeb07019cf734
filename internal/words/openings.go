// internal/words/openings.go
//
// Opening cache: a precomputed ranking for the fresh-session state. Ranking
// the full guess dictionary against the full solution list is the single
// most expensive computation the solver performs and its result is identical
// for every new session, so it can be generated once (offline or at startup)
// and loaded here.
//
// File format: one suggestion per line, "word bits", sorted or not — the
// loader re-sorts with the ranker's exact ordering.
package words

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wordlesmith/wordle-solver/internal/solver"
)

// LoadOpenings reads a precomputed opening list from path. An empty path is
// not an error and yields no cache.
func LoadOpenings(path string, d *Dictionaries) ([]solver.Suggestion, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseOpenings(f, path, d)
}

// ParseOpenings parses "word bits" lines. Every word must be in the allowed
// dictionary; bits must be a non-negative float. Malformed lines fail the
// whole load, same contract as the dictionaries themselves.
func ParseOpenings(r io.Reader, source string, d *Dictionaries) ([]solver.Suggestion, error) {
	var out []solver.Suggestion
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		fields := strings.Fields(raw)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: malformed opening line %q", source, line, raw)
		}
		word := strings.ToLower(fields[0])
		if !d.IsAllowed(word) {
			return nil, fmt.Errorf("%s:%d: opening word %q is not in the allowed dictionary", source, line, word)
		}
		bits, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || bits < 0 {
			return nil, fmt.Errorf("%s:%d: malformed bits value %q", source, line, fields[1])
		}
		out = append(out, solver.Suggestion{
			Word:             word,
			ExpectedInfo:     bits,
			PossibleSolution: d.IsAnswer(word),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	// Same order Rank produces: bits desc, possible solutions first, then
	// lexicographic.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ExpectedInfo != b.ExpectedInfo {
			return a.ExpectedInfo > b.ExpectedInfo
		}
		if a.PossibleSolution != b.PossibleSolution {
			return a.PossibleSolution
		}
		return a.Word < b.Word
	})
	return out, nil
}
