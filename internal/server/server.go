// Package server exposes the summary and cheapest operations over HTTP,
// mirroring the route layout the core az-scout server mounts plugins under.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/azscout/regions-cheapest/internal/summary"
)

// Summarizer is the service surface the routes need.
type Summarizer interface {
	Summary(ctx context.Context, p summary.Params) summary.SummaryResult
	Cheapest(ctx context.Context, p summary.Params) ([]summary.RankedRow, string)
}

// Server serves the plugin HTTP routes.
type Server struct {
	service Summarizer
	logger  zerolog.Logger
}

// New returns a Server for the given service.
func New(service Summarizer, logger zerolog.Logger) *Server {
	return &Server{service: service, logger: logger}
}

// Handler builds the route mux wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/plugins/regions-cheapest/summary", s.handleSummary)
	mux.HandleFunc("/plugins/regions-cheapest/cheapest", s.handleCheapest)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return s.requestLog(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLog logs one line per request with a generated request id.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	params := summary.Params{
		TenantID: q.Get("tenantId"),
		Currency: q.Get("currency"),
		GroupBy:  q.Get("groupBy"),
	}

	result := s.service.Summary(r.Context(), params)

	if params.GroupBy == "geography" {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"groups":       groupByGeography(result.Rows),
			"timestampUtc": result.TimestampUTC,
			"currency":     result.Currency,
			"dataSource":   result.DataSource,
			"coveragePct":  result.CoveragePct,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"rows":         result.Rows,
		"timestampUtc": result.TimestampUTC,
		"currency":     result.Currency,
		"dataSource":   result.DataSource,
		"coveragePct":  result.CoveragePct,
	})
}

func (s *Server) handleCheapest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	params := summary.Params{
		TenantID: q.Get("tenantId"),
		Currency: q.Get("currency"),
		TopN:     parseTopN(q.Get("topN")),
	}

	rows, dataSource := s.service.Cheapest(r.Context(), params)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"rows":       rows,
		"dataSource": dataSource,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}

// groupByGeography buckets rows by their geography label, keeping the sort
// order within each bucket.
func groupByGeography(rows []summary.RegionStatsRow) map[string][]summary.RegionStatsRow {
	groups := make(map[string][]summary.RegionStatsRow)
	for _, row := range rows {
		groups[row.Geography] = append(groups[row.Geography], row)
	}
	return groups
}

func parseTopN(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
