// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Puzzle" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's puzzle (one play per user/day)
//   - POST /daily/guess       → submit a guess; marks are scored server-side
//   - GET  /daily/leaderboard → top solved results for a date
//
// The hidden answer is picked deterministically from date + salt, so every
// player faces the same word. A solver session rides along to narrow the
// candidate set and surface suggestions after every guess.
package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/wordlesmith/wordle-solver/internal/daily"
	"github.com/wordlesmith/wordle-solver/internal/solver"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active games keyed by ownerID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession holds transient in-memory state for an in-progress daily game.
type dailySession struct {
	OwnerID   string
	Date      string
	Answer    string
	WordIndex int
	Session   *solver.Session
	StartedAt time.Time
	Guesses   int
	Done      bool
}

// mountDaily registers the /daily routes on r.
func (s *Server) mountDaily(r chi.Router) {
	ds := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "dev_daily_salt"),
		sessions: make(map[string]*dailySession),
	}
	r.Post("/daily/new", ds.handleNew)
	r.Post("/daily/guess", ds.handleGuess)
	r.Get("/daily/leaderboard", ds.handleLeaderboard)
}

func (ds *dailyServer) key(ownerID, date string) string { return ownerID + "|" + date }

type dailyNewRes struct {
	Date       string `json:"date"`
	WordLength int    `json:"wordLength"`
	MaxTurns   int    `json:"maxTurns"`
}

// handleNew starts (or rejects, if already played) today's puzzle for the
// requesting identity.
func (ds *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	owner := ds.srv.ownerID(w, r)
	now := time.Now()
	date := daily.DateKey(now)

	played, err := ds.store.AlreadyPlayed(r.Context(), owner, date)
	if err != nil {
		log.Warn().Err(err).Msg("daily already-played check")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if played {
		http.Error(w, `{"error":"already_played"}`, http.StatusConflict)
		return
	}

	answers := ds.srv.dicts.Answers()
	idx := daily.WordIndex(now, ds.salt, len(answers))
	answer := ds.srv.dicts.AnswerAt(idx)

	maxTurns := ds.srv.maxTurns
	if maxTurns <= 0 {
		maxTurns = 6
	}
	sess, err := solver.NewSession(solver.Config{
		Solutions: answers,
		Ranker:    ds.srv.ranker,
		Openings:  ds.srv.openings,
		MaxTurns:  maxTurns,
	})
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}

	ds.mu.Lock()
	ds.sessions[ds.key(owner, date)] = &dailySession{
		OwnerID:   owner,
		Date:      date,
		Answer:    answer,
		WordIndex: idx,
		Session:   sess,
		StartedAt: time.Now().UTC(),
	}
	ds.mu.Unlock()

	_ = json.NewEncoder(w).Encode(dailyNewRes{
		Date:       date,
		WordLength: ds.srv.dicts.WordLength(),
		MaxTurns:   maxTurns,
	})
}

type dailyGuessReq struct {
	Guess string `json:"guess"`
}

type dailyGuessRes struct {
	Marks       solver.Pattern      `json:"marks"`
	State       solver.State        `json:"state"`
	Turn        int                 `json:"turn"`
	Solved      bool                `json:"solved"`
	Suggestions []solver.Suggestion `json:"suggestions,omitempty"`
}

// handleGuess scores a guess against the hidden daily answer and advances the
// game. The solver session narrows alongside and provides hints.
func (ds *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	owner := ds.srv.ownerID(w, r)
	date := daily.DateKey(time.Now())

	var req dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	ds.mu.Lock()
	game := ds.sessions[ds.key(owner, date)]
	ds.mu.Unlock()
	if game == nil {
		http.Error(w, `{"error":"no_active_game"}`, http.StatusNotFound)
		return
	}
	if game.Done {
		http.Error(w, `{"error":"already_played"}`, http.StatusConflict)
		return
	}
	if !ds.srv.dicts.IsAllowed(req.Guess) {
		http.Error(w, `{"error":"not_in_word_list"}`, http.StatusBadRequest)
		return
	}

	p, err := solver.Score(req.Guess, game.Answer)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	ds.mu.Lock()
	snap, err := game.Session.RecordGuess(req.Guess, p)
	if err != nil {
		ds.mu.Unlock()
		writeSolverError(w, err)
		return
	}
	game.Guesses = snap.Turn
	solved := p.AllCorrect()
	finished := solved || snap.State == solver.StateExhausted ||
		(snap.MaxTurns > 0 && snap.Turn >= snap.MaxTurns)
	game.Done = finished
	ds.mu.Unlock()
	if finished {
		res := daily.Result{
			UserID:    owner,
			Date:      date,
			WordIndex: game.WordIndex,
			Guesses:   game.Guesses,
			Solved:    solved,
			ElapsedMs: int(time.Since(game.StartedAt).Milliseconds()),
		}
		if err := ds.store.InsertResult(r.Context(), res); err != nil {
			log.Warn().Err(err).Str("owner", owner).Msg("persist daily result")
		}
		ds.mu.Lock()
		delete(ds.sessions, ds.key(owner, date))
		ds.mu.Unlock()
	}

	var sugg []solver.Suggestion
	if !finished {
		if sugg, err = game.Session.Suggest(r.Context(), 5); err != nil {
			sugg = nil
		}
	}
	_ = json.NewEncoder(w).Encode(dailyGuessRes{
		Marks:       p,
		State:       snap.State,
		Turn:        snap.Turn,
		Solved:      solved,
		Suggestions: sugg,
	})
}

// handleLeaderboard returns the fastest solved results for a date
// (today when the query parameter is absent).
func (ds *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := ds.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Warn().Err(err).Str("date", date).Msg("daily leaderboard")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "results": rows})
}
