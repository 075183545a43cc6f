// Package server implements the spendlens backend HTTP API: auth,
// categories, transactions, budgets, computed budget alerts, summaries, and
// the chatbot endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"spendlens/internal/bus"
	"spendlens/internal/chatbot"
	"spendlens/internal/store"
)

const tokenTTL = 24 * time.Hour

// Config controls the server runtime.
type Config struct {
	Addr string
}

// Server wires the store, chatbot engine, and change bus behind the API.
type Server struct {
	cfg   Config
	store *store.Store
	chat  *chatbot.Engine
	bus   *bus.Bus
	log   zerolog.Logger
	now   func() time.Time
}

// New returns a server. The chatbot engine and bus may be nil; the chat
// endpoint then returns 503 and mutations simply skip broadcasting.
func New(cfg Config, st *store.Store, chat *chatbot.Engine, b *bus.Bus, log zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8990"
	}
	return &Server{
		cfg:   cfg,
		store: st,
		chat:  chat,
		bus:   b,
		log:   log.With().Str("component", "server").Logger(),
		now:   time.Now,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.auth(s.handleLogout))

	mux.HandleFunc("GET /api/alerts", s.auth(s.handleAlerts))
	mux.HandleFunc("GET /api/summary", s.auth(s.handleSummary))

	mux.HandleFunc("GET /api/categories", s.auth(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.auth(s.handleCreateCategory))

	mux.HandleFunc("GET /api/transactions", s.auth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.auth(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.auth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.auth(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.auth(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.auth(s.handleSetBudget))

	mux.HandleFunc("POST /api/chatbot/chat", s.auth(s.handleChat))
	mux.HandleFunc("POST /api/chatbot/forecast", s.auth(s.handleForecast))
	mux.HandleFunc("GET /api/chatbot/risk-analysis", s.auth(s.handleRiskAnalysis))
	mux.HandleFunc("GET /api/chatbot/insights", s.auth(s.handleInsights))

	return s.logRequests(mux)
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
}

type ctxKey int

const userIDKey ctxKey = 0

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// auth resolves the bearer token to a user before calling next.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		uid, err := s.store.UserForToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrTokenExpired) {
				s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			s.log.Error().Err(err).Msg("resolving token")
			s.writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encoding response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) publish(kind string) {
	if s.bus != nil {
		s.bus.Publish(bus.Event{Kind: kind})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
