// main.go
//
// Entry point for the solver server. Loads configuration from the
// environment (with .env support), word lists, the opening-guess cache,
// and the SQLite database, then starts the HTTP server.

package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wordlesmith/wordle-solver/internal/httpserver"
	"github.com/wordlesmith/wordle-solver/internal/store"
	"github.com/wordlesmith/wordle-solver/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dicts, err := words.Load(words.FromEnv(envInt("WORD_LENGTH", words.DefaultWordLength)))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	answers, allowed := dicts.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

	openings, err := words.LoadOpenings(os.Getenv("WORDS_OPENINGS_FILE"), dicts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load opening cache")
	}
	if len(openings) > 0 {
		log.Info().Int("entries", len(openings)).Msg("opening cache loaded")
	}

	db, err := openDB(getEnv("SQLITE_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	srv := httpserver.New(httpserver.Options{
		Store:    store.NewMemoryStore(),
		DB:       db,
		Dicts:    dicts,
		Openings: openings,
		MaxTurns: envInt("MAX_TURNS", 0),
		Workers:  envInt("RANK_WORKERS", 0),
	})

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting solver server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
