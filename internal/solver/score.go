// internal/solver/score.go
//
// Feedback scoring for a guess against a hidden solution.
// Responsibilities:
//   - Mark: the per-letter feedback enum (excluded/misplaced/correct).
//   - Pattern: a full row of marks, packed into a base-3 code so it is
//     comparable, cheap to copy, and usable as a map key or bucket index.
//   - Score: the two-pass duplicate-letter scoring rule.
//
// The two-pass rule is the single most bug-prone piece of the solver and
// everything else is built on top of it, so its exact behavior is pinned by
// literal fixtures in score_test.go.
package solver

import (
	"encoding/json"
	"fmt"
	"math"
)

const alphabetSize = 26

// Mark is the feedback for one guess letter.
// Ordinal values are the base-3 digits used by Pattern codes.
type Mark uint8

const (
	MarkExcluded  Mark = 0 // letter does not occur (or no occurrences remain)
	MarkMisplaced Mark = 1 // letter occurs elsewhere in the solution
	MarkCorrect   Mark = 2 // letter is in this exact position
)

// markNames maps Mark ordinals to their wire names.
var markNames = [...]string{"excluded", "misplaced", "correct"}

func (m Mark) String() string {
	if int(m) < len(markNames) {
		return markNames[m]
	}
	return fmt.Sprintf("mark(%d)", uint8(m))
}

// ParseMark converts a wire name back to a Mark.
func ParseMark(s string) (Mark, error) {
	for i, name := range markNames {
		if s == name {
			return Mark(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMark, s)
}

func (m Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mark) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseMark(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Pattern is an ordered row of L marks packed into a base-3 number, where the
// left-most mark is digit 0. For L=5 all codes fit in [0, 243).
type Pattern struct {
	code uint32
	size uint8
}

// NewPattern packs a slice of marks into a Pattern.
func NewPattern(marks []Mark) Pattern {
	var code, mult uint32 = 0, 1
	for _, m := range marks {
		code += uint32(m) * mult
		mult *= 3
	}
	return Pattern{code: code, size: uint8(len(marks))}
}

// PatternFromCode rebuilds a Pattern from a bucket code produced by Code().
func PatternFromCode(code, size int) Pattern {
	return Pattern{code: uint32(code), size: uint8(size)}
}

// ParseMarks converts wire names (e.g. from the HTTP boundary) to a Pattern.
func ParseMarks(names []string) (Pattern, error) {
	marks := make([]Mark, len(names))
	for i, s := range names {
		m, err := ParseMark(s)
		if err != nil {
			return Pattern{}, err
		}
		marks[i] = m
	}
	return NewPattern(marks), nil
}

// Marks unpacks the pattern back into a mark slice.
func (p Pattern) Marks() []Mark {
	out := make([]Mark, p.size)
	code := p.code
	for i := range out {
		out[i] = Mark(code % 3)
		code /= 3
	}
	return out
}

// Len reports the number of marks in the pattern.
func (p Pattern) Len() int { return int(p.size) }

// Code returns the unique bucket index of the pattern, in [0, 3^Len).
func (p Pattern) Code() int { return int(p.code) }

// AllCorrect reports whether every mark is MarkCorrect, i.e. the guess is the
// solution. The all-correct code is 3^L - 1.
func (p Pattern) AllCorrect() bool {
	return p.size > 0 && p.code == uint32(PatternSpace(int(p.size))-1)
}

// String renders the pattern with the usual share-grid emoji.
func (p Pattern) String() string {
	var out string
	for _, m := range p.Marks() {
		switch m {
		case MarkCorrect:
			out += "🟩"
		case MarkMisplaced:
			out += "🟨"
		default:
			out += "⬛"
		}
	}
	return out
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Marks())
}

func (p *Pattern) UnmarshalJSON(b []byte) error {
	var marks []Mark
	if err := json.Unmarshal(b, &marks); err != nil {
		return err
	}
	*p = NewPattern(marks)
	return nil
}

// PatternSpace returns the number of distinct patterns for a word length,
// i.e. 3^size.
func PatternSpace(size int) int {
	return int(math.Pow(3, float64(size)) + 0.5)
}

// Score computes the feedback pattern for guess against solution using the
// standard two-pass rule.
//
// Pass 1 marks exact matches Correct and consumes those solution letters.
// Pass 2 walks the remaining positions left to right: a guess letter with
// unconsumed solution occurrences left is Misplaced (consuming one),
// otherwise Excluded. Pool accounting uses solution-side multiplicities only,
// so a letter guessed more often than it occurs yields exactly as many
// Correct+Misplaced marks as the solution holds, Correct taking priority.
func Score(guess, solution string) (Pattern, error) {
	if len(guess) != len(solution) {
		return Pattern{}, fmt.Errorf("%w: guess %d letters, solution %d", ErrLengthMismatch, len(guess), len(solution))
	}
	if !isLowerAlpha(guess) || !isLowerAlpha(solution) {
		return Pattern{}, ErrInvalidWord
	}
	return PatternFromCode(scoreCode(guess, solution), len(guess)), nil
}

// scoreCode is the allocation-free core of Score. Both words must already be
// validated: equal length, lowercase a–z.
func scoreCode(guess, solution string) int {
	var counts [alphabetSize]int8

	// First pass: collect the letter pool of non-hit solution positions.
	// Hit positions contribute a Correct digit immediately.
	code, mult := 0, 1
	for i := 0; i < len(guess); i++ {
		if guess[i] == solution[i] {
			code += int(MarkCorrect) * mult
		} else {
			counts[solution[i]-'a']++
		}
		mult *= 3
	}

	// Second pass: resolve misplaced/excluded for the non-hit positions.
	mult = 1
	for i := 0; i < len(guess); i++ {
		if guess[i] != solution[i] {
			j := guess[i] - 'a'
			if counts[j] > 0 {
				counts[j]--
				code += int(MarkMisplaced) * mult
			}
		}
		mult *= 3
	}
	return code
}

// isLowerAlpha checks that a string consists only of lowercase a–z.
func isLowerAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
