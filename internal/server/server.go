package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/runnerr0/lookback/internal/storage"
)

// defaultPageSize is used when the configured page size is missing or
// nonsensical.
const defaultPageSize = 300

// Server exposes stored browsing history over localhost HTTP. The data
// endpoint speaks the pagination protocol the loader consumes: pages
// ordered newest first, bounded by start_time, offset past boundary
// duplicates, empty array once exhausted.
type Server struct {
	src      storage.Source
	pageSize int
	addr     string
	started  time.Time

	httpServer *http.Server
}

// New creates a Server serving pages from src.
func New(host string, port int, src storage.Source, pageSize int) *Server {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Server{
		src:      src,
		pageSize: pageSize,
		addr:     fmt.Sprintf("%s:%d", host, port),
		started:  time.Now(),
	}
}

// Handler returns the route table. Exposed so tests can drive the
// server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/history/data", s.handleData)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", MetricsHandler())
	return mux
}

// Start registers metrics and serves until Shutdown is called or the
// listener fails.
func (s *Server) Start() error {
	initMetrics()

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("serving history on http://%s", s.addr)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// handleData serves one page of history.
//
// offset defaults to 0; start_time is optional and bounds the page to
// entries at or before that timestamp, so a request without it gets the
// latest page. Malformed parameters are a 400, never an empty page: an
// empty array is reserved for genuine end of history.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	inFlightRequests.Inc()
	defer inFlightRequests.Dec()

	status := s.serveData(w, r)
	recordHTTPRequest(r.Method, "/history/data", strconv.Itoa(status), time.Since(start))
}

func (s *Server) serveData(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		return writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	}

	q := r.URL.Query()

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return writeJSON(w, http.StatusBadRequest, errorBody("invalid offset"))
		}
		offset = n
	}

	// No start_time bound means the latest page.
	startTime := int64(math.MaxInt64)
	if raw := q.Get("start_time"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return writeJSON(w, http.StatusBadRequest, errorBody("invalid start_time"))
		}
		startTime = n
	}

	entries, err := s.src.EntriesBefore(r.Context(), startTime, offset, s.pageSize)
	if err != nil {
		log.Printf("history query failed: %v", err)
		return writeJSON(w, http.StatusInternalServerError, errorBody("query failed"))
	}

	// Untitled visits are served with the URL standing in for the title.
	for i := range entries {
		if entries[i].Title == "" {
			entries[i].Title = entries[i].URL
		}
	}

	pagesServed.Inc()
	entriesServed.Add(float64(len(entries)))
	return writeJSON(w, http.StatusOK, entries)
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Visits int64  `json:"visits"`
}

// handleHealth reports liveness plus a storage probe. An unreachable
// database makes the whole service unhealthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{
		Status: "healthy",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}

	stats, err := s.src.Stats(ctx)
	if err != nil {
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Visits = stats.TotalVisits

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return status
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
