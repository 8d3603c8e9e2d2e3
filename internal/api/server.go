// Package api is the HTTP surface: the synchronous analysis endpoint, the
// WebSocket streaming endpoint, and the session/report/alert read API.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/mirador-data/behavior.report/internal/db"
	"github.com/mirador-data/behavior.report/internal/inference"
	"github.com/mirador-data/behavior.report/internal/monitoring"
	"github.com/mirador-data/behavior.report/internal/session"
	"github.com/mirador-data/behavior.report/internal/version"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Config wires the server's collaborators and the analysis tuning shared
// with the streaming path. Zero tuning values fall back to the vision
// defaults.
type Config struct {
	DB       *db.DB
	Sessions *session.Manager
	Models   *inference.Loader
	Metrics  *monitoring.Metrics

	// Heuristics and the working raster apply to the synchronous analyze
	// path; hand them the same materialized tuning the session manager
	// gets so both paths classify an image identically.
	Heuristics    vision.HeuristicParams
	WorkingWidth  int
	WorkingHeight int
}

type Server struct {
	db       *db.DB
	sessions *session.Manager
	models   *inference.Loader
	metrics  *monitoring.Metrics

	heuristics    vision.HeuristicParams
	workingWidth  int
	workingHeight int
}

func NewServer(cfg Config) *Server {
	return &Server{
		db:            cfg.DB,
		sessions:      cfg.Sessions,
		models:        cfg.Models,
		metrics:       cfg.Metrics,
		heuristics:    cfg.Heuristics,
		workingWidth:  cfg.WorkingWidth,
		workingHeight: cfg.WorkingHeight,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/persons/{person_id}/sessions", s.listPersonSessions)
	mux.HandleFunc("GET /api/persons/{person_id}/report", s.personReport)
	mux.HandleFunc("GET /api/persons/{person_id}/alerts", s.listPersonAlerts)
	mux.HandleFunc("POST /api/alerts/{alert_id}/review", s.reviewAlert)
	mux.HandleFunc("GET /api/sessions/{session_id}", s.sessionDetail)
	mux.HandleFunc("GET /api/sessions/{session_id}/chart", s.sessionChart)
	mux.HandleFunc("GET /api/dashboard", s.dashboardStats)
	mux.HandleFunc("GET /ws/analysis/{person_id}", s.handleStream)
	mux.HandleFunc("GET /healthz", s.healthz)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok " + version.String()))
}
