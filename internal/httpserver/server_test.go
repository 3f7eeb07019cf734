package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wordlesmith/wordle-solver/internal/daily"
	"github.com/wordlesmith/wordle-solver/internal/store"
	"github.com/wordlesmith/wordle-solver/internal/words"
)

const testAnswers = "crane\nslate\ntrace\n"
const testAllowed = "aurei\nzzzzz\n"

// newTestServer spins up a server over an in-memory SQLite DB and a
// three-word answer list.
func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../sql/001_init.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	dicts, err := words.Read(strings.NewReader(testAnswers), strings.NewReader(testAllowed), 5)
	if err != nil {
		t.Fatalf("build dicts: %v", err)
	}

	srv := New(Options{
		Store:   store.NewMemoryStore(),
		DB:      db,
		Dicts:   dicts,
		Workers: 1,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	return ts, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	res, err := c.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var out T
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	ts, c := newTestServer(t)
	res, err := c.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", res.StatusCode)
	}
}

func TestSolverFlow(t *testing.T) {
	ts, c := newTestServer(t)

	res := postJSON(t, c, ts.URL+"/solver/new", map[string]any{})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("new status = %d", res.StatusCode)
	}
	created := decode[map[string]any](t, res)
	id, _ := created["sessionId"].(string)
	if id == "" {
		t.Fatal("missing sessionId")
	}
	if got := created["remaining"].(float64); got != 3 {
		t.Fatalf("remaining = %v, want 3", got)
	}

	res, err := c.Get(ts.URL + "/solver/suggest?sessionId=" + id + "&n=3")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("suggest status = %d", res.StatusCode)
	}
	sugg := decode[struct {
		State       string `json:"state"`
		Suggestions []struct {
			Word         string  `json:"word"`
			ExpectedInfo float64 `json:"expectedInfoBits"`
		} `json:"suggestions"`
	}](t, res)
	if sugg.State != "fresh" {
		t.Fatalf("state = %q, want fresh", sugg.State)
	}
	if len(sugg.Suggestions) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(sugg.Suggestions))
	}
	// crane, slate, trace each split the pool into singletons: log2(3) bits.
	if got := sugg.Suggestions[0].ExpectedInfo; got < 1.58 || got > 1.59 {
		t.Fatalf("top expected info = %v", got)
	}

	res = postJSON(t, c, ts.URL+"/solver/guess", map[string]any{
		"sessionId": id,
		"guess":     "crane",
		"marks":     []string{"correct", "correct", "correct", "correct", "correct"},
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("guess status = %d", res.StatusCode)
	}
	snap := decode[map[string]any](t, res)
	if snap["state"] != "solved" {
		t.Fatalf("state = %v, want solved", snap["state"])
	}

	// Guessing after a solve conflicts.
	res = postJSON(t, c, ts.URL+"/solver/guess", map[string]any{
		"sessionId": id,
		"guess":     "slate",
		"marks":     []string{"excluded", "excluded", "excluded", "excluded", "excluded"},
	})
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("post-solve guess status = %d, want 409", res.StatusCode)
	}
}

func TestSolverReset(t *testing.T) {
	ts, c := newTestServer(t)

	created := decode[map[string]any](t, postJSON(t, c, ts.URL+"/solver/new", map[string]any{}))
	id := created["sessionId"].(string)

	postJSON(t, c, ts.URL+"/solver/guess", map[string]any{
		"sessionId": id,
		"guess":     "crane",
		"marks":     []string{"correct", "correct", "correct", "correct", "correct"},
	}).Body.Close()

	snap := decode[map[string]any](t, postJSON(t, c, ts.URL+"/solver/reset", map[string]any{"sessionId": id}))
	if snap["state"] != "fresh" {
		t.Fatalf("state after reset = %v, want fresh", snap["state"])
	}
	if got := snap["remaining"].(float64); got != 3 {
		t.Fatalf("remaining after reset = %v, want 3", got)
	}
}

func TestGuessErrorMapping(t *testing.T) {
	ts, c := newTestServer(t)

	created := decode[map[string]any](t, postJSON(t, c, ts.URL+"/solver/new", map[string]any{}))
	id := created["sessionId"].(string)

	cases := []struct {
		name  string
		body  map[string]any
		wantS int
	}{
		{"unknown mark", map[string]any{
			"sessionId": id, "guess": "crane",
			"marks": []string{"green", "correct", "correct", "correct", "correct"},
		}, http.StatusBadRequest},
		{"short marks", map[string]any{
			"sessionId": id, "guess": "crane",
			"marks": []string{"correct"},
		}, http.StatusBadRequest},
		{"guess too long", map[string]any{
			"sessionId": id, "guess": "cranes",
			"marks": []string{"correct", "correct", "correct", "correct", "correct"},
		}, http.StatusBadRequest},
		{"missing session", map[string]any{
			"sessionId": "nope", "guess": "crane",
			"marks": []string{"correct", "correct", "correct", "correct", "correct"},
		}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := postJSON(t, c, ts.URL+"/solver/guess", tc.body)
			res.Body.Close()
			if res.StatusCode != tc.wantS {
				t.Fatalf("status = %d, want %d", res.StatusCode, tc.wantS)
			}
		})
	}
}

func TestContradictionConflicts(t *testing.T) {
	ts, c := newTestServer(t)

	created := decode[map[string]any](t, postJSON(t, c, ts.URL+"/solver/new", map[string]any{}))
	id := created["sessionId"].(string)

	// All-excluded feedback for "crane" rules out every candidate.
	res := postJSON(t, c, ts.URL+"/solver/guess", map[string]any{
		"sessionId": id,
		"guess":     "crane",
		"marks":     []string{"excluded", "excluded", "excluded", "excluded", "excluded"},
	})
	snap := decode[map[string]any](t, res)
	if snap["state"] != "exhausted" {
		t.Fatalf("state = %v, want exhausted", snap["state"])
	}

	res, err := c.Get(ts.URL + "/solver/suggest?sessionId=" + id)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("suggest status = %d, want 409", res.StatusCode)
	}
}

func TestAuthFlow(t *testing.T) {
	ts, c := newTestServer(t)

	res := postJSON(t, c, ts.URL+"/auth/signup", map[string]string{
		"username": "Player_One", "password": "hunter22pass",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signup status = %d", res.StatusCode)
	}
	signed := decode[struct {
		User  authUser `json:"user"`
		Token string   `json:"token"`
	}](t, res)
	if signed.User.Username != "player_one" {
		t.Fatalf("username = %q, want normalized player_one", signed.User.Username)
	}
	if signed.Token == "" {
		t.Fatal("missing token")
	}

	// Cookie jar carries the session; /auth/me should resolve.
	res, err := c.Get(ts.URL + "/auth/me")
	if err != nil {
		t.Fatal(err)
	}
	me := decode[authUser](t, res)
	if me.ID != signed.User.ID {
		t.Fatalf("me.ID = %q, want %q", me.ID, signed.User.ID)
	}

	// Duplicate signup conflicts.
	res = postJSON(t, c, ts.URL+"/auth/signup", map[string]string{
		"username": "player_one", "password": "hunter22pass",
	})
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", res.StatusCode)
	}

	// Bearer auth works without the cookie.
	bare := &http.Client{}
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/stats/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed.Token)
	res, err = bare.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	stats := decode[userStats](t, res)
	if stats.SolvesPlayed != 0 {
		t.Fatalf("fresh account solvesPlayed = %d", stats.SolvesPlayed)
	}

	// No token at all is rejected.
	res, err = bare.Get(ts.URL + "/stats/me")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated stats status = %d, want 401", res.StatusCode)
	}
}

func TestDailyFlow(t *testing.T) {
	t.Setenv("DAILY_SALT", "test_salt")
	ts, c := newTestServer(t)

	res := postJSON(t, c, ts.URL+"/daily/new", map[string]any{})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("daily new status = %d", res.StatusCode)
	}
	started := decode[map[string]any](t, res)
	if started["wordLength"].(float64) != 5 {
		t.Fatalf("wordLength = %v", started["wordLength"])
	}

	// The hidden answer is deterministic from date + salt.
	answers := []string{"crane", "slate", "trace"}
	answer := answers[daily.WordIndex(time.Now(), "test_salt", len(answers))]

	res = postJSON(t, c, ts.URL+"/daily/guess", map[string]string{"guess": answer})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("daily guess status = %d", res.StatusCode)
	}
	out := decode[struct {
		Solved bool   `json:"solved"`
		State  string `json:"state"`
		Turn   int    `json:"turn"`
	}](t, res)
	if !out.Solved || out.Turn != 1 {
		t.Fatalf("solved=%v turn=%d, want first-guess solve", out.Solved, out.Turn)
	}

	// One play per day.
	res = postJSON(t, c, ts.URL+"/daily/new", map[string]any{})
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("replay status = %d, want 409", res.StatusCode)
	}

	// The solve shows on the leaderboard.
	res, err := c.Get(ts.URL + "/daily/leaderboard")
	if err != nil {
		t.Fatal(err)
	}
	lb := decode[struct {
		Results []daily.LeaderboardRow `json:"results"`
	}](t, res)
	if len(lb.Results) != 1 || lb.Results[0].Guesses != 1 {
		t.Fatalf("leaderboard = %+v, want single one-guess entry", lb.Results)
	}
}

func TestAutoplay(t *testing.T) {
	ts, c := newTestServer(t)

	res := postJSON(t, c, ts.URL+"/debug/autoplay", map[string]any{"answer": "slate"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("autoplay status = %d", res.StatusCode)
	}
	snap := decode[map[string]any](t, res)
	if snap["state"] != "solved" {
		t.Fatalf("autoplay state = %v, want solved", snap["state"])
	}

	res = postJSON(t, c, ts.URL+"/debug/autoplay", map[string]any{"answer": "toolong"})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad answer status = %d, want 400", res.StatusCode)
	}
}

func TestDailyRejectsUnknownWord(t *testing.T) {
	t.Setenv("DAILY_SALT", "test_salt")
	ts, c := newTestServer(t)

	postJSON(t, c, ts.URL+"/daily/new", map[string]any{}).Body.Close()

	res := postJSON(t, c, ts.URL+"/daily/guess", map[string]string{"guess": "qwert"})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown word status = %d, want 400", res.StatusCode)
	}
}
