// Package vizserver serves step-by-step grid searches to a browser.
package vizserver

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/pdrpinto/gridastar/internal/mapstore"
)

//go:embed static/index.html
var indexPage []byte

// Config holds the search settings applied to every run.
type Config struct {
	Workers        int
	MaxExpansions  int
	StreamInterval time.Duration
	// MaxRuns caps the runs held at once. Creating one more evicts the
	// oldest finished run, or the oldest run if none has finished.
	MaxRuns        int
}

// Server owns the live runs. A nil map store disables the /maps routes
// and map= runs.
type Server struct {
	router   *way.Router
	store    *mapstore.Store
	logger   log.FieldLogger
	upgrader websocket.Upgrader
	registry *prometheus.Registry
	metrics  *metrics
	config   Config

	mu      sync.Mutex
	runs    map[string]*run
	created uint64
}

func New(config Config, store *mapstore.Store, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if config.Workers < 1 {
		config.Workers = 4
	}
	if config.StreamInterval <= 0 {
		config.StreamInterval = 50 * time.Millisecond
	}
	if config.MaxRuns < 1 {
		config.MaxRuns = 32
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		store:    store,
		logger:   logger,
		registry: registry,
		metrics:  newMetrics(registry),
		config:   config,
		runs:     make(map[string]*run),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", "/", s.handleIndex)
	s.router.HandleFunc("POST", "/runs", s.handleCreateRun)
	s.router.HandleFunc("GET", "/runs/:id/next", s.handleNext)
	s.router.HandleFunc("GET", "/runs/:id/stream", s.handleStream)
	s.router.HandleFunc("DELETE", "/runs/:id", s.handleDeleteRun)
	s.router.HandleFunc("GET", "/maps", s.handleListMaps)
	s.router.HandleFunc("GET", "/maps/:name", s.handleGetMap)
	s.router.HandleFunc("PUT", "/maps/:name", s.handlePutMap)
	s.router.Handle("GET", "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	s.router.ServeHTTP(w, r)
	s.logger.WithFields(log.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"duration": time.Since(started),
	}).Debug("request served")
}

// Close stops every live run.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.runs {
		r.close()
		delete(s.runs, id)
	}
	s.metrics.runsActive.Set(0)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
