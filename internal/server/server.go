// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/dshills/carverdict/internal/listing"
	"github.com/dshills/carverdict/internal/profile"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/schema"
	"github.com/dshills/carverdict/internal/signals"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 64 << 10

// Analyzer is the pipeline the server delegates to.
type Analyzer interface {
	Analyze(ctx context.Context, req listing.Request) (*report.Result, error)
}

// Server serves the analysis API.
type Server struct {
	analyzer Analyzer
	logger   zerolog.Logger
	timeout  time.Duration
}

// New returns a Server. timeout bounds each analysis; zero means no limit
// beyond the per-collaborator timeouts.
func New(a Analyzer, logger zerolog.Logger, timeout time.Duration) *Server {
	return &Server{analyzer: a, logger: logger, timeout: timeout}
}

// Routes returns a chi.Router with every handler mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.getHealthz)
	r.Get("/v1/profiles", s.getProfiles)
	r.Post("/v1/analyze", s.postAnalyze)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getProfiles(w http.ResponseWriter, _ *http.Request) {
	names, err := profile.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"profiles": names})
}

func (s *Server) postAnalyze(w http.ResponseWriter, r *http.Request) {
	var req listing.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.analyzer.Analyze(ctx, req)
	switch {
	case errors.Is(err, listing.ErrInvalidRequest), errors.Is(err, signals.ErrInvalidVIN):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("analysis failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "analysis failed"})
		return
	}

	if verrs := schema.Validate(res); len(verrs) > 0 {
		for _, e := range verrs {
			s.logger.Error().Str("path", e.Path).Str("problem", e.Message).Msg("result failed validation")
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "result failed validation"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
