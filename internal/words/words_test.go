package words

import (
	"errors"
	"strings"
	"testing"
)

func TestReadBuildsDictionaries(t *testing.T) {
	answers := "crane\nslate\n# comment\n\ntrace\n"
	allowed := "AUREI\n crane \nroate\n"
	d, err := Read(strings.NewReader(answers), strings.NewReader(allowed), 5)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got, want := d.WordLength(), 5; got != want {
		t.Fatalf("WordLength = %d, want %d", got, want)
	}
	a, g := d.Stats()
	if a != 3 {
		t.Fatalf("answers count = %d, want 3", a)
	}
	// allowed = 3 answers + aurei + roate, with the duplicate crane dropped.
	if g != 5 {
		t.Fatalf("allowed count = %d, want 5", g)
	}
	if !d.IsAnswer("trace") || d.IsAnswer("aurei") {
		t.Fatal("answer membership wrong")
	}
	if !d.IsAllowed("aurei") || !d.IsAllowed("CRANE") || d.IsAllowed("zzzzz") {
		t.Fatal("allowed membership wrong")
	}
	if d.AnswerAt(0) != "crane" {
		t.Fatalf("AnswerAt(0) = %q, want crane (load order)", d.AnswerAt(0))
	}
}

func TestReadRejectsMalformedEntry(t *testing.T) {
	tests := []struct {
		name    string
		answers string
		line    int
		text    string
	}{
		{"wrong length", "crane\ncranes\n", 2, "cranes"},
		{"non alphabetic", "crane\ncr4ne\n", 2, "cr4ne"},
		{"punctuation", "cra-e\n", 1, "cra-e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.answers), strings.NewReader(""), 5)
			var entryErr *EntryError
			if !errors.As(err, &entryErr) {
				t.Fatalf("got %v, want *EntryError", err)
			}
			if entryErr.Line != tt.line || entryErr.Text != tt.text {
				t.Fatalf("EntryError = %+v, want line %d text %q", entryErr, tt.line, tt.text)
			}
			if !strings.Contains(entryErr.Error(), tt.text) {
				t.Fatalf("error message %q does not name the offending line", entryErr.Error())
			}
		})
	}
}

func TestReadRejectsEmptyAnswers(t *testing.T) {
	if _, err := Read(strings.NewReader("# nothing\n"), strings.NewReader("crane\n"), 5); err == nil {
		t.Fatal("empty answers list accepted")
	}
}

func TestReadCustomWordLength(t *testing.T) {
	d, err := Read(strings.NewReader("abc\nxyz\n"), strings.NewReader("foo\n"), 3)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if a, g := d.Stats(); a != 2 || g != 3 {
		t.Fatalf("Stats = (%d, %d), want (2, 3)", a, g)
	}
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	d, err := Load(Config{})
	if err != nil {
		t.Fatalf("Load with no paths: %v", err)
	}
	a, g := d.Stats()
	if a == 0 || g <= a {
		t.Fatalf("Stats = (%d, %d); want answers > 0 and allowed superset", a, g)
	}
	if !d.IsAnswer("crane") {
		t.Fatal("embedded answers missing crane")
	}
	if !d.IsAllowed("aurei") {
		t.Fatal("embedded allowed missing probe words")
	}
}

func TestAccessorsCopy(t *testing.T) {
	d, err := Read(strings.NewReader("crane\nslate\n"), strings.NewReader(""), 5)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	got := d.Answers()
	got[0] = "mutat"
	if d.AnswerAt(0) != "crane" {
		t.Fatal("Answers() exposed internal slice")
	}
}

func TestParseOpenings(t *testing.T) {
	d, err := Read(strings.NewReader("crane\nslate\ntrace\n"), strings.NewReader("aurei\n"), 5)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	src := "slate 1.50\naurei 1.50\ncrane 1.584963\n"
	out, err := ParseOpenings(strings.NewReader(src), "test", d)
	if err != nil {
		t.Fatalf("ParseOpenings error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("parsed %d openings, want 3", len(out))
	}
	// crane has the most bits; slate beats aurei on the possible-solution
	// tie-break.
	if out[0].Word != "crane" || out[1].Word != "slate" || out[2].Word != "aurei" {
		t.Fatalf("order = %q,%q,%q", out[0].Word, out[1].Word, out[2].Word)
	}
	if !out[1].PossibleSolution || out[2].PossibleSolution {
		t.Fatal("PossibleSolution flags wrong")
	}
}

func TestParseOpeningsRejectsBadLines(t *testing.T) {
	d, _ := Read(strings.NewReader("crane\n"), strings.NewReader(""), 5)
	for _, src := range []string{
		"crane\n",           // missing bits
		"crane notafloat\n", // unparsable bits
		"zzzzz 1.0\n",       // not in dictionary
		"crane -0.5\n",      // negative bits
	} {
		if _, err := ParseOpenings(strings.NewReader(src), "test", d); err == nil {
			t.Fatalf("accepted malformed openings %q", src)
		}
	}
}
