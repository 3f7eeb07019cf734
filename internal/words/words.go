// internal/words/words.go
//
// Word list management for the solver.
//
// Responsibilities:
//   - Load the solution list (eligible answers) and the allowed guess list
//     from files, readers, or the embedded defaults.
//   - Validate every entry strictly: a malformed line (wrong length,
//     non-alphabetic) fails the whole load with an EntryError naming the
//     offending line. No partial dictionaries.
//   - Hold both lists as an immutable value shared by all sessions.
//
// Word lists:
//   - "answers": canonical solutions (fixed-length lowercase words).
//   - "allowed": valid guesses (always a superset of answers).
//
// Configuration:
//   WORDS_ANSWERS_FILE=/path/to/answers.txt
//   WORDS_ALLOWED_FILE=/path/to/allowed.txt
//   If only one file is set it serves both roles; with neither set the
//   embedded defaults from the assets package are used.
package words

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wordlesmith/wordle-solver/assets"
)

// DefaultWordLength is the classic puzzle size.
const DefaultWordLength = 5

// EntryError reports a malformed dictionary line. It fails the entire load:
// dictionaries are either fully valid or not loaded at all.
type EntryError struct {
	Source string // file path or list label
	Line   int    // 1-based line number
	Text   string // the offending line, as read
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s:%d: invalid dictionary entry %q: %s", e.Source, e.Line, e.Text, e.Reason)
}

// Config selects where dictionaries come from.
type Config struct {
	AnswersPath string // optional answers file
	AllowedPath string // optional allowed-guesses file
	WordLength  int    // 0 means DefaultWordLength
}

// FromEnv builds a Config from the environment variables above.
func FromEnv(wordLength int) Config {
	return Config{
		AnswersPath: os.Getenv("WORDS_ANSWERS_FILE"),
		AllowedPath: os.Getenv("WORDS_ALLOWED_FILE"),
		WordLength:  wordLength,
	}
}

// Dictionaries is the loaded, read-only word list pair. It is safe to share
// across any number of concurrent sessions; all accessors copy or return
// scalars.
type Dictionaries struct {
	wordLen    int
	answers    []string
	allowed    []string // answers ∪ guesses, answers first, deduplicated
	answerSet  map[string]struct{}
	allowedSet map[string]struct{}
}

// Load reads dictionaries per cfg. Missing paths fall back as documented on
// the package.
func Load(cfg Config) (*Dictionaries, error) {
	wordLen := cfg.WordLength
	if wordLen <= 0 {
		wordLen = DefaultWordLength
	}

	var ansList, allowList []string
	var err error
	switch {
	case cfg.AnswersPath != "" && cfg.AllowedPath != "":
		if ansList, err = readWordFile(cfg.AnswersPath, wordLen); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(cfg.AllowedPath, wordLen); err != nil {
			return nil, err
		}

	case cfg.AllowedPath != "":
		if allowList, err = readWordFile(cfg.AllowedPath, wordLen); err != nil {
			return nil, err
		}
		ansList = allowList

	case cfg.AnswersPath != "":
		if ansList, err = readWordFile(cfg.AnswersPath, wordLen); err != nil {
			return nil, err
		}
		allowList = ansList

	default:
		if ansList, err = parseWords(strings.NewReader(assets.DefaultAnswers), "embedded answers", wordLen); err != nil {
			return nil, err
		}
		if allowList, err = parseWords(strings.NewReader(assets.DefaultAllowed), "embedded allowed", wordLen); err != nil {
			return nil, err
		}
	}

	return build(ansList, allowList, wordLen)
}

// Read loads dictionaries from two already-open sources. Useful for tests
// and for callers that own the I/O.
func Read(answers, allowed io.Reader, wordLen int) (*Dictionaries, error) {
	if wordLen <= 0 {
		wordLen = DefaultWordLength
	}
	ansList, err := parseWords(answers, "answers", wordLen)
	if err != nil {
		return nil, err
	}
	allowList, err := parseWords(allowed, "allowed", wordLen)
	if err != nil {
		return nil, err
	}
	return build(ansList, allowList, wordLen)
}

// build assembles the immutable dictionary pair, ensuring the allowed list
// covers every answer and dropping duplicates while preserving order.
func build(ansList, allowList []string, wordLen int) (*Dictionaries, error) {
	if len(ansList) == 0 {
		return nil, fmt.Errorf("words: answers list is empty")
	}

	d := &Dictionaries{
		wordLen:    wordLen,
		answerSet:  make(map[string]struct{}, len(ansList)),
		allowedSet: make(map[string]struct{}, len(ansList)+len(allowList)),
	}
	for _, w := range ansList {
		if _, dup := d.answerSet[w]; dup {
			continue
		}
		d.answerSet[w] = struct{}{}
		d.allowedSet[w] = struct{}{}
		d.answers = append(d.answers, w)
		d.allowed = append(d.allowed, w)
	}
	for _, w := range allowList {
		if _, dup := d.allowedSet[w]; dup {
			continue
		}
		d.allowedSet[w] = struct{}{}
		d.allowed = append(d.allowed, w)
	}
	return d, nil
}

// readWordFile loads one word per line from a file.
func readWordFile(path string, wordLen int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseWords(f, path, wordLen)
}

// parseWords reads one word per line, lowercasing and trimming. Blank lines
// and '#' comments are skipped; anything else must be exactly wordLen
// lowercase letters or the load fails.
func parseWords(r io.Reader, source string, wordLen int) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		w := strings.ToLower(strings.TrimSpace(raw))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if len(w) != wordLen {
			return nil, &EntryError{Source: source, Line: line, Text: raw,
				Reason: fmt.Sprintf("want %d letters, got %d", wordLen, len(w))}
		}
		if !isLowerAlpha(w) {
			return nil, &EntryError{Source: source, Line: line, Text: raw,
				Reason: "must contain only letters a-z"}
		}
		out = append(out, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return out, nil
}

func isLowerAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// WordLength reports the fixed letter count of every word in both lists.
func (d *Dictionaries) WordLength() int { return d.wordLen }

// Answers returns a copy of the solution list, in load order.
func (d *Dictionaries) Answers() []string {
	return append([]string(nil), d.answers...)
}

// Allowed returns a copy of the guess list (answers ∪ guesses), in load order.
func (d *Dictionaries) Allowed() []string {
	return append([]string(nil), d.allowed...)
}

// IsAllowed reports whether w is a valid guess.
func (d *Dictionaries) IsAllowed(w string) bool {
	_, ok := d.allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an eligible solution.
func (d *Dictionaries) IsAnswer(w string) bool {
	_, ok := d.answerSet[strings.ToLower(w)]
	return ok
}

// AnswerAt returns the answer at index i in load order; used by the daily
// mode's deterministic word pick.
func (d *Dictionaries) AnswerAt(i int) string { return d.answers[i] }

// Stats returns counts of loaded words: (answers, allowed).
func (d *Dictionaries) Stats() (answersCount, allowedCount int) {
	return len(d.answers), len(d.allowed)
}
