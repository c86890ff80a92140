package vizserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/internal/mapstore"
)

type run struct {
	mu       sync.Mutex
	id       string
	sequence uint64
	grid     *grid.Grid
	walls    [][2]int
	stepper  *gridastar.Stepper
	finished bool
}

func (r *run) close() {
	r.stepper.Close()
}

type snapshot struct {
	ID       string   `json:"id"`
	Step     int      `json:"step"`
	W        int      `json:"w"`
	H        int      `json:"h"`
	Walls    [][2]int `json:"walls"`
	Open     [][2]int `json:"open,omitempty"`
	Closed   [][2]int `json:"closed,omitempty"`
	Current  [2]int   `json:"current"`
	Start    [2]int   `json:"start"`
	Goal     [2]int   `json:"goal"`
	Done     bool     `json:"done"`
	Found    bool     `json:"found"`
	Path     [][2]int `json:"path,omitempty"`
	Cost     float64  `json:"cost,omitempty"`
	Expanded int      `json:"expanded"`
	Error    string   `json:"error,omitempty"`
}

func point(location gridastar.Location) [2]int {
	return [2]int{location.X, location.Y}
}

func pointList(locations []gridastar.Location) [][2]int {
	if len(locations) == 0 {
		return nil
	}
	res := make([][2]int, 0, len(locations))
	for _, location := range locations {
		res = append(res, point(location))
	}
	return res
}

// step advances r once and converts the result for the browser.
// A hit expansion limit is reported in the snapshot, not as an error.
func (s *Server) step(r *run) (snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.stepper.Step()
	if err != nil && !errors.Is(err, gridastar.ErrExpansionLimit) {
		return snapshot{}, err
	}
	s.metrics.steps.Inc()

	out := snapshot{
		ID:       r.id,
		Step:     st.StepIndex,
		W:        r.grid.Width,
		H:        r.grid.Height,
		Walls:    r.walls,
		Open:     pointList(st.Open),
		Closed:   pointList(st.Closed),
		Current:  point(st.Current),
		Start:    point(r.grid.Start),
		Goal:     point(r.grid.Goal),
		Done:     st.Done,
		Found:    st.Found,
		Path:     pointList(st.Path),
		Cost:     st.TotalCost,
		Expanded: st.ExpandedNodes,
	}
	if err != nil {
		out.Error = err.Error()
	}

	if st.Done && !r.finished {
		r.finished = true
		r.stepper.Close()
		outcome := "no_path"
		switch {
		case st.Found:
			outcome = "found"
		case err != nil:
			outcome = "limit"
		}
		s.metrics.runsFinished.WithLabelValues(outcome).Inc()
		s.metrics.expandedNodes.Observe(float64(st.ExpandedNodes))
		s.logger.WithFields(log.Fields{
			"run":      r.id,
			"outcome":  outcome,
			"expanded": st.ExpandedNodes,
			"cost":     st.TotalCost,
		}).Info("run finished")
	}
	return out, nil
}

func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*run, bool) {
	id := way.Param(r.Context(), "id")
	s.mu.Lock()
	found, ok := s.runs[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
	}
	return found, ok
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		g   *grid.Grid
		err error
	)
	if name := q.Get("map"); name != "" {
		if s.store == nil {
			http.Error(w, "map store not configured", http.StatusServiceUnavailable)
			return
		}
		g, err = s.store.Load(r.Context(), name)
		if errors.Is(err, mapstore.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	} else {
		g, err = grid.Generate(generateOptions(q.Get))
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	heuristic := gridastar.Manhattan
	if g.Diagonal {
		heuristic = gridastar.Octile
	}
	id := uuid.NewString()
	stepper, err := gridastar.NewStepper(context.Background(), g, g.Start, g.Goal, heuristic,
		gridastar.WithWorkers(s.config.Workers),
		gridastar.WithMaxExpansions(s.config.MaxExpansions),
		gridastar.WithLogger(s.logger.WithField("run", id)),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	created := &run{id: id, grid: g, walls: pointList(g.Walls()), stepper: stepper}
	s.mu.Lock()
	var evicted *run
	if len(s.runs) >= s.config.MaxRuns {
		evicted = s.evictLocked()
	}
	s.created++
	created.sequence = s.created
	s.runs[id] = created
	s.mu.Unlock()
	if evicted != nil {
		evicted.close()
		s.metrics.runsActive.Dec()
		s.logger.WithField("run", evicted.id).Info("run evicted")
	}
	s.metrics.runsCreated.Inc()
	s.metrics.runsActive.Inc()
	s.logger.WithFields(log.Fields{"run": id, "w": g.Width, "h": g.Height}).Info("run created")

	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id, "w": g.Width, "h": g.Height})
}

// evictLocked removes the oldest finished run, or the oldest run when none
// has finished, and returns it for the caller to close. s.mu must be held.
func (s *Server) evictLocked() *run {
	var oldest, oldestFinished *run
	for _, candidate := range s.runs {
		if oldest == nil || candidate.sequence < oldest.sequence {
			oldest = candidate
		}
		candidate.mu.Lock()
		finished := candidate.finished
		candidate.mu.Unlock()
		if finished && (oldestFinished == nil || candidate.sequence < oldestFinished.sequence) {
			oldestFinished = candidate
		}
	}
	if oldestFinished != nil {
		oldest = oldestFinished
	}
	if oldest != nil {
		delete(s.runs, oldest.id)
	}
	return oldest
}

// maxSide bounds each generated dimension.
const maxSide = 512

// generateOptions reads grid generation settings from query values,
// keeping defaults for anything missing or too small. Sizes above maxSide
// are clamped.
func generateOptions(get func(string) string) grid.GenerateOptions {
	options := grid.DefaultGenerateOptions()
	if v, err := strconv.Atoi(get("w")); err == nil && v > 4 {
		options.Width = min(v, maxSide)
	}
	if v, err := strconv.Atoi(get("h")); err == nil && v > 4 {
		options.Height = min(v, maxSide)
	}
	if v, err := strconv.Atoi(get("clusters")); err == nil && v > 0 {
		options.Clusters = min(v, maxSide)
	}
	if v, err := strconv.Atoi(get("steps")); err == nil && v > 0 {
		options.Steps = min(v, maxSide*maxSide)
	}
	if v, err := strconv.ParseFloat(get("density"), 64); err == nil && v >= 0 && v <= 1 {
		options.Density = v
	}
	if v, err := strconv.ParseFloat(get("noise"), 64); err == nil && v >= 0 && v <= 1 {
		options.Noise = v
	}
	if v, err := strconv.ParseInt(get("seed"), 10, 64); err == nil {
		options.Seed = v
	}
	if v, err := strconv.ParseBool(get("diagonal")); err == nil {
		options.Diagonal = v
	}
	return options
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	found, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	out, err := s.step(found)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStream upgrades to a websocket and pushes one snapshot per interval
// until the run is done or the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	found, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	interval := s.config.StreamInterval
	if v, err := strconv.Atoi(r.URL.Query().Get("interval_ms")); err == nil && v >= 0 {
		interval = time.Duration(v) * time.Millisecond
	}

	con, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("stream websocket upgrade failed")
		return
	}
	defer con.Close()

	for {
		out, err := s.step(found)
		if err != nil {
			_ = con.WriteJSON(snapshot{ID: found.id, Done: true, Error: err.Error()})
			return
		}
		if err := con.WriteJSON(out); err != nil {
			s.logger.WithError(err).WithField("run", found.id).Debug("stream client gone")
			return
		}
		if out.Done {
			_ = con.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
			return
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := way.Param(r.Context(), "id")
	s.mu.Lock()
	found, ok := s.runs[id]
	delete(s.runs, id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	found.close()
	s.metrics.runsActive.Dec()
	w.WriteHeader(http.StatusNoContent)
}
