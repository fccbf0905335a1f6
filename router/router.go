// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/handlers"
	"github.com/danielhkuo/livepoll/live"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/store"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// One engine per process so every socket shares the session groups
	engine := live.NewEngine(store.New(db), cfg.BroadcastConcurrency)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg)
	socketHandler := handlers.NewSocketHandler(engine, cfg)

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(cfg.TokenSecret, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))

	// Polls
	mux.HandleFunc("POST /poll/create", protected(pollHandler.CreatePoll))
	mux.HandleFunc("GET /poll/history", protected(pollHandler.History))
	mux.HandleFunc("GET /poll/{id}", protected(pollHandler.GetPoll))

	// Session lifecycle
	mux.HandleFunc("POST /session/start", protected(sessionHandler.Start))
	mux.HandleFunc("POST /session/end", protected(sessionHandler.End))
	// Participants are anonymous; the session document is public
	mux.HandleFunc("GET /session/{code}", middleware.WithLogging(sessionHandler.Get))

	// Live sessions; the socket logs its own lifetime
	mux.HandleFunc("GET /ws", socketHandler.Serve)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("livepoll API v1"))
	})

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RequestID(handler)
	return handler
}
