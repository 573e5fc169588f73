// Package api serves completed run output over HTTP: raw result files from
// the output directory plus summaries aggregated on demand. The API is
// read-only; runs are started from the CLI, never over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"oracle/domain/core"
	"oracle/domain/report"
	"oracle/domain/simulation"
)

// Server exposes results from one output directory
type Server struct {
	router     *chi.Mux
	outputDir  string
	aggregator *report.Aggregator
}

// NewServer builds the router over an output directory
func NewServer(outputDir string, aggregator *report.Aggregator) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		outputDir:  outputDir,
		aggregator: aggregator,
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/v1/domains", s.handleListDomains)
	s.router.Get("/api/v1/domains/{domain}/results", s.handleAllResults)
	s.router.Get("/api/v1/domains/{domain}/results/{category}", s.handleCategoryResults)
	s.router.Get("/api/v1/domains/{domain}/summary", s.handleSummary)
	return s
}

// Handler returns the HTTP handler for mounting or serving
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving the API on addr
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("[API] Listening on %s (output dir %s)", addr, s.outputDir)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListDomains scans the output directory for *_all_results.json files
func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot read output directory")
		return
	}

	var domains []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), "_all_results.json"); ok {
			domains = append(domains, name)
		}
	}
	if domains == nil {
		domains = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": domains})
}

func (s *Server) handleAllResults(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	results, err := s.loadResults(fmt.Sprintf("%s_all_results.json", domain))
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no results for domain %q", domain))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleCategoryResults(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	category := chi.URLParam(r, "category")
	results, err := s.loadResults(fmt.Sprintf("%s_%s_results.json", domain, category))
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no results for %q/%q", domain, category))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleSummary aggregates the persisted run on demand, so the summary always
// reflects whatever result files are on disk.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	results, err := s.loadResults(fmt.Sprintf("%s_all_results.json", domain))
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no results for domain %q", domain))
		return
	}

	byCategory := make(map[string][]simulation.Result)
	for _, res := range results {
		byCategory[res.Category] = append(byCategory[res.Category], res)
	}
	summary := s.aggregator.Aggregate(domain, byCategory)
	summary.GeneratedAt = core.Now()
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) loadResults(name string) ([]simulation.Result, error) {
	// URL params feed file names; reject anything that escapes the directory
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return nil, fmt.Errorf("invalid name %q", name)
	}
	raw, err := os.ReadFile(filepath.Join(s.outputDir, name))
	if err != nil {
		return nil, err
	}
	var results []simulation.Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
