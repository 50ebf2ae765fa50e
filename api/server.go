package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/game/service"
	"github.com/wricardo/fifteen-puzzle/static"
	"github.com/wricardo/fifteen-puzzle/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service  service.PuzzleService
	hub      *websocket.Hub
	router   *mux.Router
	staticFS fs.FS
}

// Option configures a Server
type Option func(*Server)

// WithStaticFS replaces the embedded browser page
func WithStaticFS(fsys fs.FS) Option {
	return func(s *Server) {
		s.staticFS = fsys
	}
}

// NewServer creates a new API server. hub may be nil, in which case state is
// not pushed to WebSocket clients and /ws is unavailable.
func NewServer(puzzleService service.PuzzleService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service:  puzzleService,
		hub:      hub,
		router:   mux.NewRouter(),
		staticFS: static.FS(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Puzzle operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetPuzzleState).Methods("GET")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/shuffle", s.handleShuffle).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/background", s.handleSetBackground).Methods("PUT")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Operations
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// Browser page
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(s.staticFS)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrOffBoard),
		errors.Is(err, service.ErrInvalidSteps),
		errors.Is(err, engine.ErrInvalidBackground):
		status = http.StatusBadRequest
	}
	respondError(w, status, err.Error())
}

// broadcast pushes the new puzzle state to the session's WebSocket clients
func (s *Server) broadcast(sessionID string, view *service.PuzzleView) {
	if s.hub != nil && view != nil {
		s.hub.BroadcastToSession(sessionID, view)
	}
}

// decodeOptionalBody decodes a JSON body into dst; an empty body is allowed
func decodeOptionalBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}

	if err := decodeOptionalBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.ConfigID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[SESSION] created session=%s config=%s", session.ID, session.ConfigName)
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[SESSION] deleted session=%s", sessionID)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Puzzle Operation Handlers

func (s *Server) handleGetPuzzleState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetPuzzleState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.X == nil || req.Y == nil {
		respondError(w, http.StatusBadRequest, "Both x and y are required")
		return
	}

	pos := engine.Position{X: *req.X, Y: *req.Y}
	result, err := s.service.MoveTile(r.Context(), sessionID, pos)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if result.Success {
		s.broadcast(sessionID, result.Puzzle)
	}

	// Compact server log for observability
	if result.Success && result.Puzzle != nil {
		log.Printf("[MOVE] session=%s %s tile=%d at=(%d,%d) shifted=%v moves=%d solved=%t",
			sessionID, result.Kind, result.Tile, pos.X, pos.Y, result.Shifted, result.Puzzle.MoveCount, result.Puzzle.Solved)
	} else {
		log.Printf("[MOVE] session=%s IGNORED at=(%d,%d)", sessionID, pos.X, pos.Y)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var opts service.ShuffleOptions
	if err := decodeOptionalBody(r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.service.Shuffle(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, view)
	log.Printf("[SHUFFLE] session=%s steps=%d seeded=%t", sessionID, opts.Steps, opts.Seed != nil)

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Puzzle reset successfully",
		"state":   state,
	})
}

func (s *Server) handleSetBackground(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Index *int `json:"index"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		respondError(w, http.StatusBadRequest, "Request body must be {\"index\": n}")
		return
	}

	view, err := s.service.SetBackground(r.Context(), sessionID, *req.Index)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, view)
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	state, err := s.service.GetPuzzleState(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)

	// New watchers start from the current board
	s.broadcast(sessionID, state)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
