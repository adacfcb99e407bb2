// Package api serves the market over HTTP and websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"token-pulse/internal/domain"
	"token-pulse/internal/feed"
	"token-pulse/internal/lookup"
	"token-pulse/internal/market"
	"token-pulse/internal/observability"
	"token-pulse/internal/storage"
)

// FeedStatus reports feed counters for /status.
type FeedStatus interface {
	Stats() feed.RunnerStats
}

// Server represents an HTTP server with all routes configured.
type Server struct {
	store   *market.Store
	hub     *Hub
	feed    FeedStatus
	samples storage.PriceSampleStore
	logger  *log.Logger
	started time.Time
	mux     *http.ServeMux
	server  *http.Server
}

// Options contains configuration for creating a Server.
type Options struct {
	Addr    string                   // Default: ":8080"
	Store   *market.Store            // Required
	Hub     *Hub                     // Default: NewHub(Store, Logger)
	Feed    FeedStatus               // Optional
	Samples storage.PriceSampleStore // Optional, requires Feed for the run ID
	Logger  *log.Logger
}

// NewServer creates a new HTTP server with configured routes.
func NewServer(opts Options) *Server {
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	hub := opts.Hub
	if hub == nil {
		hub = NewHub(opts.Store, logger)
	}

	mux := http.NewServeMux()
	s := &Server{
		store:   opts.Store,
		hub:     hub,
		feed:    opts.Feed,
		samples: opts.Samples,
		logger:  logger,
		started: time.Now(),
		mux:     mux,
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
	s.registerRoutes()
	return s
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.Handle("GET /metrics", observability.Handler())

	s.mux.HandleFunc("GET /api/categories", s.handleCategories)
	s.mux.HandleFunc("GET /api/categories/{status}", s.handleCategory)
	s.mux.HandleFunc("GET /api/categories/{status}/filter", s.handleGetFilter)
	s.mux.HandleFunc("PUT /api/categories/{status}/filter", s.handlePutFilter)
	s.mux.HandleFunc("GET /api/tokens/{id}", s.handleToken)
	s.mux.HandleFunc("GET /api/tokens/{id}/samples", s.handleSamples)

	s.mux.Handle("GET /ws", s.hub)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.logger.Printf("Starting HTTP server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:     "running",
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Version:    s.store.Version(),
		Ticks:      s.store.Ticks(),
		Digest:     s.store.Digest(),
		WSClients:  s.hub.Clients(),
		Categories: s.store.Categories(),
	}
	if s.feed != nil {
		stats := s.feed.Stats()
		resp.RunID = stats.RunID
		resp.Overruns = stats.Overruns
		resp.SamplesArchived = stats.SamplesArchived
		resp.ArchiveErrors = stats.ArchiveErrors
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Categories())
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	status, ok := s.status(w, r)
	if !ok {
		return
	}

	opt := domain.SortTrending
	if raw := r.URL.Query().Get("sort"); raw != "" {
		opt = domain.SortOption(raw)
		if !opt.IsValid() {
			writeError(w, http.StatusBadRequest, "unknown sort option: "+raw)
			return
		}
	}

	cat, err := s.store.Category(status, opt)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CategoryView{
		Status:        status,
		Title:         status.DisplayName(),
		Sort:          opt,
		Version:       cat.Version,
		Count:         len(cat.Records),
		Total:         cat.Total,
		ActiveFilters: cat.Filter.ActiveCount(),
		Filter:        cat.Filter,
		Tokens:        newTokenViews(cat.Records),
	})
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	status, ok := s.status(w, r)
	if !ok {
		return
	}
	spec, err := s.store.Filter(status)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handlePutFilter(w http.ResponseWriter, r *http.Request) {
	status, ok := s.status(w, r)
	if !ok {
		return
	}

	var req filterRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter body: "+err.Error())
		return
	}

	spec, err := req.spec()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := s.store.SetFilter(status, spec)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	applied, err := s.store.Filter(status)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Printf("Filter for %s replaced: %d active rules (version %d)", status, applied.ActiveCount(), version)
	writeJSON(w, http.StatusOK, map[string]any{
		"version": version,
		"filter":  applied,
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Token(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenDetail(rec))
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	if s.samples == nil || s.feed == nil {
		writeError(w, http.StatusNotFound, "sample archive not configured")
		return
	}

	id := r.PathValue("id")
	if _, err := s.store.Token(id); err != nil {
		s.writeStoreError(w, err)
		return
	}

	q := r.URL.Query()
	from, err := tickParam(q.Get("from"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from: "+err.Error())
		return
	}
	to, err := tickParam(q.Get("to"), math.MaxInt64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to: "+err.Error())
		return
	}
	if from > to {
		writeError(w, http.StatusBadRequest, "from must not exceed to")
		return
	}

	runID := s.feed.Stats().RunID
	samples, err := s.samples.GetByTickRange(r.Context(), runID, id, from, to)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	if samples == nil {
		samples = []*domain.PriceSample{}
	}

	resp := SamplesResponse{
		RunID:   runID,
		TokenID: id,
		Count:   len(samples),
		Samples: samples,
	}
	if len(samples) > 0 {
		change, err := lookup.ChangeBetween(samples[0].Tick, samples[len(samples)-1].Tick, samples)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		resp.Change = change
	}
	if raw := q.Get("at"); raw != "" {
		at, err := tickParam(raw, 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at: "+err.Error())
			return
		}
		sample, err := lookup.SampleAt(at, samples)
		if errors.Is(err, lookup.ErrNoPriceData) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		resp.At = sample
	}
	writeJSON(w, http.StatusOK, resp)
}

// tickParam parses a non-negative tick query value, returning def when empty.
func tickParam(raw string, def int64) (int64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New("must be non-negative")
	}
	return v, nil
}

// status parses the {status} path value, writing a 404 if unknown.
func (s *Server) status(w http.ResponseWriter, r *http.Request) (domain.Status, bool) {
	status, err := domain.ParseStatus(r.PathValue("status"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return status, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownStatus), errors.Is(err, market.ErrTokenNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, market.ErrNotInitialized):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
