// internal/httpserver/server.go
//
// HTTP wiring for the solver backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Solver endpoints (optional auth): POST /solver/new, POST /solver/guess,
//     GET /solver/suggest, POST /solver/reset.
//   - Daily puzzle endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints (require auth): /auth/*, /stats/me,
//     /solves/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token
//     is present; routes still run for guests.
//   - The solver core is pure; everything stateful lives in the store and DB.
package httpserver

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/wordlesmith/wordle-solver/internal/solver"
	"github.com/wordlesmith/wordle-solver/internal/store"
	"github.com/wordlesmith/wordle-solver/internal/words"
)

// Options carries everything a Server depends on.
type Options struct {
	Store    store.Store
	DB       *sql.DB
	Dicts    *words.Dictionaries
	Openings []solver.Suggestion // optional precomputed first-turn ranking
	MaxTurns int                 // per-session guess limit; 0 = unlimited
	Workers  int                 // ranker parallelism; 0 = GOMAXPROCS
}

// Server bundles router, session store, dictionaries, and DB handle.
type Server struct {
	r        *chi.Mux
	store    store.Store
	db       *sql.DB
	dicts    *words.Dictionaries
	ranker   *solver.Ranker
	openings []solver.Suggestion
	maxTurns int
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		store:    opts.Store,
		db:       opts.DB,
		dicts:    opts.Dicts,
		ranker:   solver.NewRanker(opts.Dicts.Allowed(), opts.Workers),
		openings: opts.Openings,
		maxTurns: opts.MaxTurns,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time (ranking is CPU-heavy)
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-solver","endpoints":["/health","POST /solver/new","POST /solver/guess","GET /solver/suggest","POST /solver/reset","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.dicts.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"answers": a, "allowed": g, "wordLength": s.dicts.WordLength()})
	})
	s.r.Post("/debug/autoplay", s.handleAutoplay)

	// Solver endpoints — OPTIONAL AUTH (guests can solve)
	s.r.With(s.withOptionalAuth()).Post("/solver/new", s.handleNewSession)
	s.r.With(s.withOptionalAuth()).Post("/solver/guess", s.handleRecordGuess)
	s.r.With(s.withOptionalAuth()).Get("/solver/suggest", s.handleSuggest)
	s.r.With(s.withOptionalAuth()).Post("/solver/reset", s.handleReset)

	// Daily puzzle — OPTIONAL AUTH (guests can play; results persisted)
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats (require auth)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ SOLVER --------------------------------------

type newSessionReq struct {
	MaxTurns *int `json:"maxTurns"` // optional per-session override
}
type newSessionRes struct {
	SessionID  string `json:"sessionId"`
	WordLength int    `json:"wordLength"`
	Remaining  int    `json:"remaining"`
	MaxTurns   int    `json:"maxTurns,omitempty"`
}

// handleNewSession creates a fresh solve session in memory and persists a DB
// "owner" row (user_id or anonymous_id) for history/stats.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	maxTurns := s.maxTurns
	if req.MaxTurns != nil && *req.MaxTurns >= 0 {
		maxTurns = *req.MaxTurns
	}

	sess, err := solver.NewSession(solver.Config{
		Solutions: s.dicts.Answers(),
		Ranker:    s.ranker,
		Openings:  s.openings,
		MaxTurns:  maxTurns,
	})
	if err != nil {
		log.Error().Err(err).Msg("new session")
		http.Error(w, `{"error":"session_failed"}`, http.StatusInternalServerError)
		return
	}

	h := &store.Handle{
		ID:        genID(),
		OwnerID:   s.ownerID(w, r),
		Session:   sess,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(r.Context(), h); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.insertSolveRow(r, h)

	a, _ := s.dicts.Stats()
	_ = json.NewEncoder(w).Encode(newSessionRes{
		SessionID:  h.ID,
		WordLength: s.dicts.WordLength(),
		Remaining:  a,
		MaxTurns:   maxTurns,
	})
}

type recordGuessReq struct {
	SessionID string   `json:"sessionId"`
	Guess     string   `json:"guess"`
	Marks     []string `json:"marks"` // per-letter: excluded|misplaced|correct
}

// handleRecordGuess applies a guess/feedback pair to a session, narrowing
// its candidate set, and persists progress best-effort.
func (s *Server) handleRecordGuess(w http.ResponseWriter, r *http.Request) {
	var req recordGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	h, err := s.store.Get(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	p, err := solver.ParseMarks(req.Marks)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	h.Lock()
	snap, err := h.Session.RecordGuess(req.Guess, p)
	h.Unlock()
	if err != nil {
		writeSolverError(w, err)
		return
	}

	s.updateSolveRow(r, h, snap)
	_ = json.NewEncoder(w).Encode(snap)
}

type suggestRes struct {
	State       solver.State        `json:"state"`
	Remaining   int                 `json:"remaining"`
	EntropyBits float64             `json:"remainingEntropyBits"`
	Suggestions []solver.Suggestion `json:"suggestions"`
}

// handleSuggest returns the top-N ranked guesses for a session's current
// candidate set. Read-only; valid while the session is unsolved.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("sessionId")
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			n = parsed
		}
	}
	h, err := s.store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	h.Lock()
	sugg, err := h.Session.Suggest(r.Context(), n)
	snap := h.Session.Snapshot()
	h.Unlock()
	if err != nil {
		writeSolverError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(suggestRes{
		State:       snap.State,
		Remaining:   snap.Remaining,
		EntropyBits: snap.RemainingEntropy,
		Suggestions: sugg,
	})
}

type resetReq struct {
	SessionID string `json:"sessionId"`
}

// handleReset returns a session to its fresh state.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	h, err := s.store.Get(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	h.Lock()
	h.Session.Reset()
	snap := h.Session.Snapshot()
	h.Unlock()
	_ = json.NewEncoder(w).Encode(snap)
}

type autoplayReq struct {
	Answer   string `json:"answer"`
	MaxTurns int    `json:"maxTurns"`
}

// handleAutoplay plays a throwaway session against a known answer and
// returns the finished snapshot. Diagnostics only: handy for benchmarking
// opening caches and sanity-checking dictionaries.
func (s *Server) handleAutoplay(w http.ResponseWriter, r *http.Request) {
	var req autoplayReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := solver.NewSession(solver.Config{
		Solutions: s.dicts.Answers(),
		Ranker:    s.ranker,
		Openings:  s.openings,
		MaxTurns:  req.MaxTurns,
	})
	if err != nil {
		http.Error(w, `{"error":"session_failed"}`, http.StatusInternalServerError)
		return
	}
	snap, err := sess.Autoplay(r.Context(), req.Answer)
	if err != nil {
		writeSolverError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// writeSolverError maps solver sentinel errors onto HTTP statuses with the
// usual JSON error shape.
func writeSolverError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	name := "bad_request"
	switch {
	case errors.Is(err, solver.ErrLengthMismatch):
		name = "length_mismatch"
	case errors.Is(err, solver.ErrInvalidWord):
		name = "invalid_word"
	case errors.Is(err, solver.ErrInvalidMark):
		name = "invalid_marks"
	case errors.Is(err, solver.ErrInvalidState):
		code, name = http.StatusConflict, "invalid_state"
	case errors.Is(err, solver.ErrNoCandidates):
		code, name = http.StatusConflict, "no_candidates_remain"
	case errors.Is(err, solver.ErrTurnsExhausted):
		code, name = http.StatusConflict, "turns_exhausted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code, name = http.StatusServiceUnavailable, "timeout"
	default:
		code, name = http.StatusInternalServerError, "internal"
	}
	http.Error(w, `{"error":"`+name+`"}`, code)
}

// --------------------------- solve persistence ------------------------------

// insertSolveRow persists the owner row for a new session (best effort).
func (s *Server) insertSolveRow(r *http.Request, h *store.Handle) {
	now := time.Now().UTC().Format(time.RFC3339)
	var err error
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		_, err = s.db.Exec(`INSERT INTO solves (id, user_id, started_at, status, guesses)
		                    VALUES (?,?,?,?,0)`, h.ID, me.ID, now, "solving")
	} else {
		_, err = s.db.Exec(`INSERT INTO solves (id, anonymous_id, started_at, status, guesses)
		                    VALUES (?,?,?,?,0)`, h.ID, h.OwnerID, now, "solving")
	}
	if err != nil {
		log.Warn().Err(err).Str("sessionId", h.ID).Msg("insert solve row")
	}
}

// updateSolveRow persists counters/history after a guess and bumps user
// stats when the puzzle resolves (best effort, non-fatal if it fails).
func (s *Server) updateSolveRow(r *http.Request, h *store.Handle, snap solver.Snapshot) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	ownerClause := `anonymous_id=?`
	ownerArg := any(h.OwnerID)
	if me != nil {
		ownerClause = `user_id=?`
		ownerArg = any(me.ID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Warn().Err(err).Msg("begin solve tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE solves SET guesses=?, remaining=? WHERE id=? AND `+ownerClause,
		snap.Turn, snap.Remaining, h.ID, ownerArg); err != nil {
		log.Warn().Err(err).Msg("update solve progress")
	}

	if snap.State == solver.StateSolved || snap.State == solver.StateExhausted {
		if _, err := tx.Exec(`UPDATE solves SET status=?, finished_at=? WHERE id=? AND `+ownerClause,
			string(snap.State), time.Now().UTC().Format(time.RFC3339), h.ID, ownerArg); err != nil {
			log.Warn().Err(err).Msg("finish solve")
		}
		if me != nil {
			if err := bumpStats(tx, me.ID, snap.State == solver.StateSolved); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	_ = tx.Commit()
}

// ------------------------------- small util --------------------------------

// ownerID returns the authenticated user ID when present, otherwise the
// anonymous cookie ID (setting the cookie if needed).
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID
	}
	return s.ensureAnonID(w, r)
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	s := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b[:])
	if len(s) > 22 {
		return s[:22]
	}
	return s
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
