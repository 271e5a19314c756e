// Package server hosts named PID controllers over HTTP.
//
// Every controller is guarded by its own mutex, so concurrent requests for
// the same controller are applied one at a time. An update whose timestamp
// does not advance answers a correction of 0, exactly as the controller
// does; the response carries no separate rejection flag.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/numjson"
	"github.com/san-kum/pidsim/internal/pid"
)

var (
	ErrExists   = errors.New("server: controller already exists")
	ErrNotFound = errors.New("server: controller not found")
	ErrBadName  = errors.New("server: controller name required")
)

type entry struct {
	mu   sync.Mutex
	ctrl *pid.Controller
}

// Server is an http.Handler hosting named controllers.
type Server struct {
	mu      sync.RWMutex
	entries map[string]*entry
	clock   pid.Clock
	log     *zap.Logger
	router  *mux.Router
}

// Option configures a Server in New.
type Option func(*Server)

// WithClock sets the clock for omitted origins and timestamps.
func WithClock(c pid.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns an empty Server reading pid.Monotonic unless WithClock says
// otherwise.
func New(opts ...Option) *Server {
	s := &Server{
		entries: make(map[string]*entry),
		clock:   pid.Monotonic,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.HandleFunc("/controllers", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/controllers", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/controllers/{name}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/controllers/{name}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/controllers/{name}/update", s.handleUpdate).Methods(http.MethodPost)
	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Create registers a controller. A nil origin reads the server clock.
func (s *Server) Create(name string, g pid.Gains, origin *float64) error {
	if name == "" {
		return ErrBadName
	}

	opts := []pid.Option{pid.WithClock(s.clock)}
	if origin != nil {
		opts = append(opts, pid.WithOrigin(*origin))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return ErrExists
	}
	s.entries[name] = &entry{ctrl: pid.NewWithGains(g, opts...)}
	return nil
}

// Update feeds one error reading to a controller. A nil timestamp reads
// the server clock at call time.
func (s *Server) Update(name string, err float64, timestamp *float64) (float64, error) {
	e, ok := s.lookup(name)
	if !ok {
		return 0, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if timestamp == nil {
		return e.ctrl.Update(err), nil
	}
	return e.ctrl.UpdateAt(err, *timestamp), nil
}

// Describe returns a controller's gains and state.
func (s *Server) Describe(name string) (ControllerView, error) {
	e, ok := s.lookup(name)
	if !ok {
		return ControllerView{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return newView(name, e.ctrl), nil
}

func (s *Server) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return ErrNotFound
	}
	delete(s.entries, name)
	return nil
}

// Names lists hosted controllers, sorted.
func (s *Server) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) lookup(name string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return e, ok
}

type CreateRequest struct {
	Name   string   `json:"name"`
	Kp     float64  `json:"kp"`
	Ki     float64  `json:"ki"`
	Kd     float64  `json:"kd"`
	Origin *float64 `json:"origin,omitempty"`
}

type UpdateRequest struct {
	Error     float64  `json:"error"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// UpdateResponse carries the correction. A correction that overflowed is
// sent as "+Inf" or "-Inf", and NaN as "NaN".
type UpdateResponse struct {
	Correction numjson.Float `json:"correction"`
}

// ControllerView is a controller's gains and state as served over HTTP.
type ControllerView struct {
	Name  string    `json:"name"`
	Gains GainsView `json:"gains"`
	State StateView `json:"state"`
}

type GainsView struct {
	Kp numjson.Float `json:"kp"`
	Ki numjson.Float `json:"ki"`
	Kd numjson.Float `json:"kd"`
}

func (g GainsView) Gains() pid.Gains {
	return pid.Gains{Kp: float64(g.Kp), Ki: float64(g.Ki), Kd: float64(g.Kd)}
}

type StateView struct {
	Proportional  numjson.Float `json:"proportional"`
	Integral      numjson.Float `json:"integral"`
	Derivative    numjson.Float `json:"derivative"`
	PreviousTime  numjson.Float `json:"previous_time"`
	PreviousError numjson.Float `json:"previous_error"`
}

func (v StateView) State() pid.State {
	return pid.State{
		Proportional:  float64(v.Proportional),
		Integral:      float64(v.Integral),
		Derivative:    float64(v.Derivative),
		PreviousTime:  float64(v.PreviousTime),
		PreviousError: float64(v.PreviousError),
	}
}

func newView(name string, ctrl *pid.Controller) ControllerView {
	g, st := ctrl.Gains(), ctrl.Snapshot()
	return ControllerView{
		Name: name,
		Gains: GainsView{
			Kp: numjson.Float(g.Kp),
			Ki: numjson.Float(g.Ki),
			Kd: numjson.Float(g.Kd),
		},
		State: StateView{
			Proportional:  numjson.Float(st.Proportional),
			Integral:      numjson.Float(st.Integral),
			Derivative:    numjson.Float(st.Derivative),
			PreviousTime:  numjson.Float(st.PreviousTime),
			PreviousError: numjson.Float(st.PreviousError),
		},
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"controllers": s.Names()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	g := pid.Gains{Kp: req.Kp, Ki: req.Ki, Kd: req.Kd}
	if err := s.Create(req.Name, g, req.Origin); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrExists) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	s.log.Info("controller created",
		zap.String("name", req.Name),
		zap.Float64("kp", g.Kp),
		zap.Float64("ki", g.Ki),
		zap.Float64("kd", g.Kd))

	view, _ := s.Describe(req.Name)
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := s.Describe(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.Delete(name); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.log.Info("controller deleted", zap.String("name", name))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	name := mux.Vars(r)["name"]
	u, err := s.Update(name, req.Error, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	s.log.Debug("controller updated",
		zap.String("name", name),
		zap.Float64("error", req.Error),
		zap.Float64("correction", u))

	writeJSON(w, http.StatusOK, UpdateResponse{Correction: numjson.Float(u)})
}

// writeJSON encodes v before committing the status, so an encoding failure
// still answers with a JSON error.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
