package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nishad/srake-eutils/internal/eutils"
	"github.com/nishad/srake-eutils/internal/runinfo"
	"github.com/nishad/srake-eutils/internal/store"
)

// Lookup is the pair of remote lookups the gateway exposes.
type Lookup interface {
	FetchFASTA(ctx context.Context, acc string) (*eutils.FASTA, error)
	FetchRuns(ctx context.Context, term string) ([]runinfo.Run, error)
}

// Server represents the HTTP gateway
type Server struct {
	router *mux.Router
	server *http.Server
	lookup Lookup
	store  *store.Store // optional run cache
}

// Config holds server configuration
type Config struct {
	Host       string
	Port       int
	EnableCORS bool
}

// NewServer creates a new gateway. runStore may be nil, in which case
// requests asking to save runs are rejected.
func NewServer(cfg *Config, lookup Lookup, runStore *store.Store) *Server {
	s := &Server{
		router: mux.NewRouter(),
		lookup: lookup,
		store:  runStore,
	}

	s.setupRoutes()

	if cfg.EnableCORS {
		s.router.Use(corsMiddleware)
	}
	s.router.Use(loggingMiddleware)
	s.router.Use(jsonMiddleware)

	// No write timeout: FASTA bodies are streamed as they arrive
	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/fasta/{accession}", s.handleGetFASTA).Methods("GET")
	api.HandleFunc("/runs", s.handleGetRuns).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
}

// Handler returns the routed handler, for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting eutils gateway on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down eutils gateway...")
	return s.server.Shutdown(ctx)
}

// Middleware functions

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.RequestURI, time.Since(start))
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Helper functions

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  status,
	})
}
