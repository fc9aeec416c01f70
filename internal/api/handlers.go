package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/nishad/srake-eutils/internal/errors"
	"github.com/nishad/srake-eutils/internal/runinfo"
)

// RunsResponse is the body of GET /api/v1/runs
type RunsResponse struct {
	Term  string        `json:"term"`
	Count int           `json:"count"`
	Saved int           `json:"saved,omitempty"`
	Runs  []runinfo.Run `json:"runs"`
}

// handleRoot returns API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "srake-eutils gateway",
		"description": "FASTA and SRA run lookups over NCBI E-utilities",
		"endpoints": map[string]string{
			"fasta":  "/api/v1/fasta/{accession}",
			"runs":   "/api/v1/runs?term=",
			"health": "/api/v1/health",
		},
	}
	s.writeJSON(w, http.StatusOK, info)
}

// handleHealth returns health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"cache":     s.store != nil,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if s.store != nil {
		if count, err := s.store.CountRuns(); err == nil {
			health["cached_runs"] = count
		}
	}
	s.writeJSON(w, http.StatusOK, health)
}

// handleGetFASTA streams the FASTA record for an accession as plain text
func (s *Server) handleGetFASTA(w http.ResponseWriter, r *http.Request) {
	accession := mux.Vars(r)["accession"]

	fasta, err := s.lookup.FetchFASTA(r.Context(), accession)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if fasta == nil {
		s.writeError(w, http.StatusNotFound, "no FASTA record found for "+accession)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := fasta.WriteTo(w); err != nil {
		// Headers are already sent; the client sees a truncated body
		log.Printf("Error streaming FASTA for %s: %v", accession, err)
	}
}

// handleGetRuns lists the runs matching a search term
func (s *Server) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	term := query.Get("term")
	if term == "" {
		s.writeError(w, http.StatusBadRequest, "term parameter is required")
		return
	}

	save := false
	if v := query.Get("save"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "save must be a boolean")
			return
		}
		save = parsed
	}
	if save && s.store == nil {
		s.writeError(w, http.StatusBadRequest, "run cache is not enabled")
		return
	}

	runs, err := s.lookup.FetchRuns(r.Context(), term)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	runs, err = runinfo.Filter(runs, query.Get("filter"))
	if errors.IsKind(err, errors.KindValidation) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := RunsResponse{Term: term, Count: len(runs), Runs: runs}
	if resp.Runs == nil {
		resp.Runs = []runinfo.Run{}
	}

	if save {
		saved, err := s.store.SaveRuns(term, runs)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Saved = saved
	}

	s.writeJSON(w, http.StatusOK, resp)
}
