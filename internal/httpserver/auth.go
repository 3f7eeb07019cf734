// internal/httpserver/auth.go
//
// Cookie/bearer JWT auth, user accounts, and per-user solve stats.
// Responsibilities:
//   - POST /auth/signup, /auth/login, /auth/logout; GET /auth/me.
//   - GET /stats/me (solve counters + streak), GET /solves/mine (history).
//   - Middleware: withOptionalAuth (decorate if token valid), requireAuth.
//   - Anonymous identity cookie for guests, claimed on first login.
package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type ctxUserKey struct{}

const anonCookieName = "wordle_anon_id"

type authUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

type userStats struct {
	SolvesPlayed int `json:"solvesPlayed"`
	Solved       int `json:"solved"`
	Streak       int `json:"streak"`
}

func (s *Server) mountAuthRoutes() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.requireAuth()).Get("/me", s.handleMe)
	})
	s.r.With(s.requireAuth()).Get("/stats/me", s.handleMyStats)
	s.r.With(s.requireAuth()).Get("/solves/mine", s.handleMySolves)
}

// ------------------------------- handlers ----------------------------------

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	req.Username = normalizeUsername(req.Username)
	if msg := validateSignup(req.Username, req.Password); msg != "" {
		http.Error(w, `{"error":"`+msg+`"}`, http.StatusBadRequest)
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	u, err := s.createUser(req.Username, hash)
	if err != nil {
		// sqlite UNIQUE violation on username
		http.Error(w, `{"error":"username_taken"}`, http.StatusConflict)
		return
	}
	s.claimAnonSolves(r, u.ID)
	s.issueSession(w, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	u, hash, err := s.findUserByUsername(normalizeUsername(req.Username))
	if err != nil || !checkPassword(hash, req.Password) {
		http.Error(w, `{"error":"invalid_credentials"}`, http.StatusUnauthorized)
		return
	}
	s.claimAnonSolves(r, u.ID)
	s.issueSession(w, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	_ = json.NewEncoder(w).Encode(me)
}

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	var st userStats
	err := s.db.QueryRow(`SELECT solves_played, solved, streak FROM users WHERE id = ?`, me.ID).
		Scan(&st.SolvesPlayed, &st.Solved, &st.Streak)
	if err != nil {
		log.Warn().Err(err).Str("user", me.ID).Msg("read stats")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}

type solveRow struct {
	ID         string  `json:"id"`
	StartedAt  string  `json:"startedAt"`
	FinishedAt *string `json:"finishedAt"`
	Status     string  `json:"status"`
	Guesses    int     `json:"guesses"`
	Remaining  *int    `json:"remaining"`
}

func (s *Server) handleMySolves(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	rows, err := s.db.Query(`SELECT id, started_at, finished_at, status, guesses, remaining
	                         FROM solves WHERE user_id = ?
	                         ORDER BY started_at DESC LIMIT 50`, me.ID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	out := []solveRow{}
	for rows.Next() {
		var sr solveRow
		if err := rows.Scan(&sr.ID, &sr.StartedAt, &sr.FinishedAt, &sr.Status, &sr.Guesses, &sr.Remaining); err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		out = append(out, sr)
	}
	_ = json.NewEncoder(w).Encode(out)
}

// issueSession signs a JWT for u, sets the auth cookie, and writes the user.
func (s *Server) issueSession(w http.ResponseWriter, u *authUser) {
	token, err := signJWT(u.ID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	setAuthCookie(w, token)
	_ = json.NewEncoder(w).Encode(map[string]any{"user": u, "token": token})
}

// ------------------------------ middleware ---------------------------------

// withOptionalAuth attaches the user to the context when a valid token is
// present; invalid or absent tokens fall through as guest requests.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, ok := parseToken(bearerOrCookie(r)); ok {
				if u, err := s.findUserByID(uid); err == nil {
					r = r.WithContext(contextWithUser(r, u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects requests without a valid token.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := parseToken(bearerOrCookie(r))
			if !ok {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			u, err := s.findUserByID(uid)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithUser(r, u)))
		})
	}
}

func contextWithUser(r *http.Request, u *authUser) context.Context {
	return context.WithValue(r.Context(), ctxUserKey{}, u)
}

// bearerOrCookie extracts the token from the Authorization header, falling
// back to the auth cookie.
func bearerOrCookie(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(cookieName()); err == nil {
		return c.Value
	}
	return ""
}

// ----------------------------- JWT + cookies --------------------------------

func jwtSecret() []byte { return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")) }

func jwtTTL() time.Duration {
	days := 14
	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

func cookieName() string { return getEnv("COOKIE_NAME", "wordle_auth") }

func signJWT(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtTTL())),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

// parseToken verifies an HS256 token and returns its subject.
func parseToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !parsed.Valid {
		return "", false
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwtTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ensureAnonID returns the request's anonymous identity, minting a cookie
// when none exists yet.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// claimAnonSolves reassigns a guest's solve history to the account they just
// signed into. Best effort.
func (s *Server) claimAnonSolves(r *http.Request, userID string) {
	c, err := r.Cookie(anonCookieName)
	if err != nil || c.Value == "" {
		return
	}
	if _, err := s.db.Exec(`UPDATE solves SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`,
		userID, c.Value); err != nil {
		log.Warn().Err(err).Msg("claim anonymous solves")
	}
}

// ------------------------------- user store --------------------------------

func (s *Server) createUser(username, passwordHash string) (*authUser, error) {
	u := &authUser{
		ID:        genID(),
		Username:  username,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err := s.db.Exec(`INSERT INTO users (id, username, password_hash, created_at)
	                     VALUES (?,?,?,?)`, u.ID, u.Username, passwordHash, u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Server) findUserByUsername(username string) (*authUser, string, error) {
	var u authUser
	var hash string
	err := s.db.QueryRow(`SELECT id, username, password_hash, created_at
	                      FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &hash, &u.CreatedAt)
	if err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}

func (s *Server) findUserByID(id string) (*authUser, error) {
	var u authUser
	err := s.db.QueryRow(`SELECT id, username, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// bumpStats increments a user's solve counters inside tx. A solved puzzle
// extends the streak; an exhausted one resets it.
func bumpStats(tx *sql.Tx, userID string, solved bool) error {
	if solved {
		_, err := tx.Exec(`UPDATE users SET solves_played = solves_played + 1,
		                   solved = solved + 1, streak = streak + 1 WHERE id = ?`, userID)
		return err
	}
	_, err := tx.Exec(`UPDATE users SET solves_played = solves_played + 1,
	                   streak = 0 WHERE id = ?`, userID)
	return err
}

// ------------------------------- validation --------------------------------

func normalizeUsername(u string) string { return strings.ToLower(strings.TrimSpace(u)) }

// validateSignup returns an error code string, or "" when valid.
func validateSignup(username, password string) string {
	if len(username) < 3 || len(username) > 24 {
		return "username_length"
	}
	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return "username_charset"
		}
	}
	if len(password) < 8 || len(password) > 72 {
		return "password_length"
	}
	return ""
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
