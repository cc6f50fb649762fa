// Package mockapi is a local stand-in for the ci5 network API. It lets
// the hardware verification flow run end to end without a device: the
// complete endpoint plays the part of "ci5 verify <challenge>".
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dreamswag/ci5dev/internal/metrics"
	"github.com/dreamswag/ci5dev/internal/provider/ci5"
)

type CompleteRequest struct {
	Challenge string `json:"challenge"`
	HWID      string `json:"hwid,omitempty"`
}

type CompleteResponse struct {
	SessionVerified bool   `json:"session_verified"`
	HWID            string `json:"hwid"`
}

type Server struct {
	store    *Store
	manifest []byte
	log      *zap.Logger
	metrics  *metrics.Metrics
}

type Option func(*Server)

func WithManifest(data []byte) Option {
	return func(s *Server) {
		s.manifest = data
	}
}

// WithManifestFile serves the file at path as /corks.json.
func WithManifestFile(path string) (Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, errors.New("manifest is not valid JSON")
	}
	return WithManifest(data), nil
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithStore(store *Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		store: NewStore(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Store() *Store {
	return s.store
}

// Router mounts:
//
//	POST /v1/challenge/create
//	GET  /v1/identity/check?session=<id>
//	POST /v1/challenge/complete
//	GET  /corks.json
//	GET  /metrics
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(requestLogging(s.log))

	r.Route("/v1", func(r chi.Router) {
		r.With(chiMiddleware.AllowContentType("application/json")).Post("/challenge/create", s.createChallenge)
		r.With(chiMiddleware.AllowContentType("application/json")).Post("/challenge/complete", s.completeChallenge)
		r.Get("/identity/check", s.identityCheck)
	})
	r.Get("/corks.json", s.serveManifest)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}

func (s *Server) createChallenge(w http.ResponseWriter, r *http.Request) {
	var req ci5.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Challenge == "" || req.SessionID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	expires := time.UnixMilli(req.Expires)
	if !expires.After(s.store.now()) {
		http.Error(w, "challenge already expired", http.StatusBadRequest)
		return
	}

	s.store.CreateChallenge(req.Challenge, req.SessionID, expires)
	s.log.Info("challenge created", zap.String("challenge", req.Challenge), zap.Time("expires", expires))

	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Server) completeChallenge(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Challenge == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	hwid, err := s.store.Complete(req.Challenge, req.HWID)
	switch {
	case errors.Is(err, ErrUnknownChallenge):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, ErrExpiredChallenge):
		http.Error(w, err.Error(), http.StatusGone)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.log.Info("challenge completed", zap.String("challenge", req.Challenge))
	writeJSON(w, http.StatusOK, CompleteResponse{SessionVerified: true, HWID: hwid})
}

func (s *Server) identityCheck(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session == "" {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}

	hwid, ok := s.store.Identity(session)
	writeJSON(w, http.StatusOK, ci5.IdentityResponse{Verified: ok, HWID: hwid})
}

func (s *Server) serveManifest(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.manifest)
}

// Run serves the router on addr until ctx is cancelled, purging expired
// challenges in the background.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	StartChallengeCleaner(ctx, s.store, time.Minute, s.log)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("mock ci5 API listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
