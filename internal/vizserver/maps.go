package vizserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matryer/way"

	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/internal/mapstore"
)

const maxMapBytes = 1 << 20

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		http.Error(w, "map store not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	names, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"maps": names})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	g, err := s.store.Load(r.Context(), way.Param(r.Context(), "name"))
	switch {
	case errors.Is(err, mapstore.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_ = g.Format(w)
}

// handlePutMap stores the text map in the request body; ?diagonal=true
// enables diagonal moves for runs started from it.
func (s *Server) handlePutMap(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := way.Param(r.Context(), "name")
	g, err := grid.Parse(io.LimitReader(r.Body, maxMapBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if v, err := strconv.ParseBool(r.URL.Query().Get("diagonal")); err == nil {
		g.Diagonal = v
	}
	if err := s.store.Save(r.Context(), name, g); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.WithField("map", name).Info("map saved")
	w.WriteHeader(http.StatusNoContent)
}
