package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/mux"
	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/fifteen-puzzle/game/config"
	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/game/service"
	"github.com/wricardo/fifteen-puzzle/transport/websocket"
)

// MockPuzzleService implements service.PuzzleService for testing
type MockPuzzleService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Puzzle Operations
	MoveTileFunc      func(ctx context.Context, sessionID string, pos engine.Position) (*service.MoveResult, error)
	ShuffleFunc       func(ctx context.Context, sessionID string, opts service.ShuffleOptions) (*service.PuzzleView, error)
	ResetFunc         func(ctx context.Context, sessionID string) (*service.PuzzleView, error)
	SetBackgroundFunc func(ctx context.Context, sessionID string, index int) (*service.PuzzleView, error)

	// Puzzle State
	GetPuzzleStateFunc func(ctx context.Context, sessionID string) (*service.PuzzleView, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
}

// Session Management
func (m *MockPuzzleService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: configName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockPuzzleService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockPuzzleService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockPuzzleService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Puzzle Operations
func (m *MockPuzzleService) MoveTile(ctx context.Context, sessionID string, pos engine.Position) (*service.MoveResult, error) {
	if m.MoveTileFunc != nil {
		return m.MoveTileFunc(ctx, sessionID, pos)
	}
	return &service.MoveResult{
		Success: true,
		Kind:    string(engine.MoveSingle),
		Puzzle:  &service.PuzzleView{SessionID: sessionID},
	}, nil
}

func (m *MockPuzzleService) Shuffle(ctx context.Context, sessionID string, opts service.ShuffleOptions) (*service.PuzzleView, error) {
	if m.ShuffleFunc != nil {
		return m.ShuffleFunc(ctx, sessionID, opts)
	}
	return &service.PuzzleView{SessionID: sessionID}, nil
}

func (m *MockPuzzleService) Reset(ctx context.Context, sessionID string) (*service.PuzzleView, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &service.PuzzleView{SessionID: sessionID}, nil
}

func (m *MockPuzzleService) SetBackground(ctx context.Context, sessionID string, index int) (*service.PuzzleView, error) {
	if m.SetBackgroundFunc != nil {
		return m.SetBackgroundFunc(ctx, sessionID, index)
	}
	return &service.PuzzleView{SessionID: sessionID, Background: service.Background{Index: index}}, nil
}

// Puzzle State
func (m *MockPuzzleService) GetPuzzleState(ctx context.Context, sessionID string) (*service.PuzzleView, error) {
	if m.GetPuzzleStateFunc != nil {
		return m.GetPuzzleStateFunc(ctx, sessionID)
	}
	return &service.PuzzleView{SessionID: sessionID}, nil
}

func (m *MockPuzzleService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		TotalMoves: 0,
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

// Configuration
func (m *MockPuzzleService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockPuzzleService) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.PuzzleConfig{
		Name:        configName,
		Description: "Test config",
	}, nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockPuzzleService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockPuzzleService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockPuzzleService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "" {
						t.Errorf("Expected empty config name, got %s", configName)
					}
					return &service.SessionInfo{
						ID:             "a1b2",
						ConfigName:     "classic",
						CreatedAt:      time.Now(),
						LastAccessedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "a1b2" {
					t.Errorf("Expected session ID a1b2, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific config",
			requestBody: map[string]string{"config_id": "quick"},
			setupMock: func(m *MockPuzzleService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "quick" {
						t.Errorf("Expected config name 'quick', got %s", configName)
					}
					return &service.SessionInfo{ID: "c3d4", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ConfigName != "quick" {
					t.Errorf("Expected config name 'quick', got %s", resp.ConfigName)
				}
			},
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "nope"},
			setupMock: func(m *MockPuzzleService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: 'nope'", service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockPuzzleService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPuzzleService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateSession_InvalidBody(t *testing.T) {
	server := setupTestServer(t, &MockPuzzleService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{not json"))

	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions := func() []*service.SessionInfo {
		return []*service.SessionInfo{
			{ID: "old", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Hour)},
			{ID: "mid", CreatedAt: base.Add(time.Hour), LastAccessedAt: base.Add(time.Hour)},
			{ID: "new", CreatedAt: base.Add(2 * time.Hour), LastAccessedAt: base.Add(2 * time.Hour)},
		}
	}

	tests := []struct {
		name           string
		query          string
		listErr        error
		expectedStatus int
		expectedIDs    []string
		expectedTotal  float64
	}{
		{"Default sorts by last access, newest first", "", nil, http.StatusOK, []string{"old", "new", "mid"}, 3},
		{"Sort by creation ascending", "?sort=created&order=asc", nil, http.StatusOK, []string{"old", "mid", "new"}, 3},
		{"Limit keeps the total", "?sort=created&limit=2", nil, http.StatusOK, []string{"new", "mid"}, 3},
		{"Handle service error", "", fmt.Errorf("database error"), http.StatusInternalServerError, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPuzzleService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
					if tt.listErr != nil {
						return nil, tt.listErr
					}
					return sessions(), nil
				},
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedIDs == nil {
				return
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    float64                `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Count != len(tt.expectedIDs) || resp.Total != tt.expectedTotal {
				t.Errorf("Expected count %d total %v, got %d %v", len(tt.expectedIDs), tt.expectedTotal, resp.Count, resp.Total)
			}
			for i, id := range tt.expectedIDs {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("Expected session %d to be %s, got %+v", i, id, resp.Sessions)
					break
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		expectedStatus int
	}{
		{"Get existing session", "a1b2", http.StatusOK},
		{"Session not found", "nonexistent", http.StatusNotFound},
	}

	mockService := &MockPuzzleService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "a1b2" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: sessionID, ConfigName: "classic"}, nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		expectedStatus int
		expectedBody   string
	}{
		{"Delete existing session", "a1b2", http.StatusOK, "Session a1b2 deleted"},
		{"Delete non-existent session", "nonexistent", http.StatusNotFound, "session not found"},
	}

	mockService := &MockPuzzleService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "a1b2" {
				return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/"+tt.sessionID, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, w.Body.String())
			}
		})
	}
}

// Puzzle Operations Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockPuzzleService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Single step",
			requestBody: map[string]int{"x": 2, "y": 3},
			setupMock: func(m *MockPuzzleService) {
				m.MoveTileFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.MoveResult, error) {
					if pos != (engine.Position{X: 2, Y: 3}) {
						t.Errorf("Expected position (2,3), got %s", pos)
					}
					return &service.MoveResult{
						Success: true,
						Kind:    string(engine.MoveSingle),
						Tile:    15,
						Shifted: []int{15},
						Puzzle:  &service.PuzzleView{SessionID: sessionID, MoveCount: 1},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if !resp.Success || resp.Tile != 15 || resp.Puzzle.MoveCount != 1 {
					t.Errorf("Unexpected move result: %+v", resp)
				}
			},
		},
		{
			name:        "Origin is a valid coordinate",
			requestBody: map[string]int{"x": 0, "y": 0},
			setupMock: func(m *MockPuzzleService) {
				m.MoveTileFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.MoveResult, error) {
					if pos != (engine.Position{}) {
						t.Errorf("Expected position (0,0), got %s", pos)
					}
					return &service.MoveResult{Kind: string(engine.MoveNone)}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if resp.Success {
					t.Error("Expected an ignored selection")
				}
			},
		},
		{
			name:           "Missing coordinate",
			requestBody:    map[string]int{"x": 1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid body",
			requestBody:    "up",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Off the board",
			requestBody: map[string]int{"x": 4, "y": 0},
			setupMock: func(m *MockPuzzleService) {
				m.MoveTileFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.MoveResult, error) {
					return nil, fmt.Errorf("%w: %s", service.ErrOffBoard, pos)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Session not found",
			requestBody: map[string]int{"x": 1, "y": 1},
			setupMock: func(m *MockPuzzleService) {
				m.MoveTileFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.MoveResult, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPuzzleService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a1b2/move", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestShuffle(t *testing.T) {
	seed := int64(7)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedOpts   service.ShuffleOptions
		shuffleErr     error
		expectedStatus int
	}{
		{"Empty body uses config default", nil, service.ShuffleOptions{}, nil, http.StatusOK},
		{"Explicit steps and seed", map[string]int64{"steps": 30, "seed": seed}, service.ShuffleOptions{Steps: 30, Seed: &seed}, nil, http.StatusOK},
		{"Invalid steps", map[string]int{"steps": -1}, service.ShuffleOptions{Steps: -1}, service.ErrInvalidSteps, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPuzzleService{
				ShuffleFunc: func(ctx context.Context, sessionID string, opts service.ShuffleOptions) (*service.PuzzleView, error) {
					if opts.Steps != tt.expectedOpts.Steps {
						t.Errorf("Expected steps %d, got %d", tt.expectedOpts.Steps, opts.Steps)
					}
					if (opts.Seed == nil) != (tt.expectedOpts.Seed == nil) ||
						(opts.Seed != nil && *opts.Seed != *tt.expectedOpts.Seed) {
						t.Errorf("Expected seed %v, got %v", tt.expectedOpts.Seed, opts.Seed)
					}
					if tt.shuffleErr != nil {
						return nil, tt.shuffleErr
					}
					return &service.PuzzleView{SessionID: sessionID, Message: "Shuffled"}, nil
				},
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a1b2/shuffle", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestReset(t *testing.T) {
	mockService := &MockPuzzleService{
		ResetFunc: func(ctx context.Context, sessionID string) (*service.PuzzleView, error) {
			if sessionID != "a1b2" {
				return nil, service.ErrSessionNotFound
			}
			return &service.PuzzleView{SessionID: sessionID, Message: "Welcome"}, nil
		},
	}
	server := setupTestServer(t, mockService)

	t.Run("Reset existing session", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a1b2/reset", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp struct {
			Message string              `json:"message"`
			State   *service.PuzzleView `json:"state"`
		}
		parseResponse(t, w, &resp)
		if resp.State == nil || resp.State.Message != "Welcome" {
			t.Errorf("Expected reset state in response, got %+v", resp)
		}
	})

	t.Run("Reset unknown session", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/zzzz/reset", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestSetBackground(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{"Valid index", map[string]int{"index": 1}, http.StatusOK},
		{"Out of range", map[string]int{"index": 9}, http.StatusBadRequest},
		{"Missing index", map[string]string{}, http.StatusBadRequest},
	}

	mockService := &MockPuzzleService{
		SetBackgroundFunc: func(ctx context.Context, sessionID string, index int) (*service.PuzzleView, error) {
			if index > 3 {
				return nil, fmt.Errorf("%w: %d", engine.ErrInvalidBackground, index)
			}
			return &service.PuzzleView{Background: service.Background{Index: index, Name: "Toad"}}, nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("PUT", "/api/sessions/a1b2/background", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedPage  int
		expectedLimit int
		expectedOrder string
	}{
		{"Default pagination", "", 1, 20, "desc"},
		{"Custom pagination", "?page=2&limit=5&order=asc", 2, 5, "asc"},
		{"Invalid values fall back", "?page=-1&limit=abc&order=sideways", 1, 20, "desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPuzzleService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					if opts.Page != tt.expectedPage || opts.Limit != tt.expectedLimit || opts.Order != tt.expectedOrder {
						t.Errorf("Expected page=%d limit=%d order=%s, got %+v",
							tt.expectedPage, tt.expectedLimit, tt.expectedOrder, opts)
					}
					return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
				},
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/a1b2/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
		})
	}
}

func TestGetPuzzleState(t *testing.T) {
	mockService := &MockPuzzleService{
		GetPuzzleStateFunc: func(ctx context.Context, sessionID string) (*service.PuzzleView, error) {
			if sessionID != "a1b2" {
				return nil, service.ErrSessionNotFound
			}
			return &service.PuzzleView{
				SessionID: sessionID,
				Blank:     engine.BottomRight,
				Movable:   []engine.Position{{X: 2, Y: 3}, {X: 3, Y: 2}},
				Stats:     "Moves: 0, Time: 0s",
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/a1b2/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var view service.PuzzleView
	parseResponse(t, w, &view)
	if view.Blank != engine.BottomRight || len(view.Movable) != 2 {
		t.Errorf("Unexpected puzzle state: %+v", view)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/zzzz/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Configuration Tests

func TestListConfigs(t *testing.T) {
	mockService := &MockPuzzleService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{
				{ConfigID: "classic", Name: "Classic", ShuffleSteps: 200, Backgrounds: []string{"Mario", "Toad"}},
				{ConfigID: "quick", Name: "Quick", ShuffleSteps: 30},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var configs []service.ConfigInfo
	parseResponse(t, w, &configs)
	if len(configs) != 2 || configs[0].ConfigID != "classic" || len(configs[0].Backgrounds) != 2 {
		t.Errorf("Unexpected configs: %+v", configs)
	}
}

func TestGetConfig(t *testing.T) {
	mockService := &MockPuzzleService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
			if configName != "classic" {
				return nil, service.ErrConfigNotFound
			}
			return engine.DefaultPuzzleConfig(), nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/classic", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var config engine.PuzzleConfig
	parseResponse(t, w, &config)
	if len(config.Backgrounds) != 4 {
		t.Errorf("Expected 4 backgrounds, got %d", len(config.Backgrounds))
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Operational endpoints

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(t, &MockPuzzleService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("Unexpected health response: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected metrics endpoint to respond 200, got %d", w.Code)
	}
}

func TestStaticPage(t *testing.T) {
	t.Run("embedded page", func(t *testing.T) {
		server := setupTestServer(t, &MockPuzzleService{})
		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Fifteen Puzzle") {
			t.Errorf("Expected the embedded page, got %d", w.Code)
		}
	})

	t.Run("custom file system", func(t *testing.T) {
		fsys := fstest.MapFS{"index.html": {Data: []byte("<h1>custom</h1>")}}
		server := NewServer(&MockPuzzleService{}, nil, WithStaticFS(fsys))
		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		if !strings.Contains(w.Body.String(), "custom") {
			t.Errorf("Expected the custom page, got %s", w.Body.String())
		}
	})
}

func TestStaticPage_ServesConfiguredAssets(t *testing.T) {
	configs, err := config.NewManager("../configs")
	if err != nil {
		t.Skip("Skipping test - configs directory not found")
	}
	list, err := configs.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	puzzleConfigs := []*engine.PuzzleConfig{engine.DefaultPuzzleConfig()}
	for _, info := range list {
		puzzleConfig, err := configs.LoadConfig(info.Filename)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", info.Filename, err)
		}
		puzzleConfigs = append(puzzleConfigs, puzzleConfig)
	}

	server := setupTestServer(t, &MockPuzzleService{})
	for _, puzzleConfig := range puzzleConfigs {
		paths := []string{}
		for _, bg := range puzzleConfig.Backgrounds {
			paths = append(paths, bg.Image)
		}
		if puzzleConfig.VictorySound != "" {
			paths = append(paths, puzzleConfig.VictorySound)
		}

		for _, path := range paths {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/"+path, nil))

			if w.Code != http.StatusOK {
				t.Errorf("%s: expected %s to be served, got %d", puzzleConfig.Name, path, w.Code)
			}
			if w.Body.Len() == 0 {
				t.Errorf("%s: %s is empty", puzzleConfig.Name, path)
			}
		}
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	mockService := &MockPuzzleService{
		GetPuzzleStateFunc: func(ctx context.Context, sessionID string) (*service.PuzzleView, error) {
			if sessionID != "a1b2" {
				return nil, service.ErrSessionNotFound
			}
			return &service.PuzzleView{SessionID: sessionID, MoveCount: 3}, nil
		},
	}

	server := setupTestServer(t, mockService)
	ts := httptest.NewServer(server)
	defer ts.Close()

	t.Run("missing session parameter", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/ws")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/ws?session=zzzz")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("receives current state then updates", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=a1b2"
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect to WebSocket: %v", err)
		}
		defer conn.Close()

		readMessage := func() websocket.Message {
			conn.SetReadDeadline(time.Now().Add(time.Second))
			_, data, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("Failed to read WebSocket message: %v", err)
			}
			var msg websocket.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("Failed to unmarshal message: %v", err)
			}
			return msg
		}

		initial := readMessage()
		if initial.Event != service.EventStateUpdate || initial.State == nil || initial.State.MoveCount != 3 {
			t.Errorf("Expected the current state on connect, got %+v", initial)
		}

		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a1b2/move", map[string]int{"x": 2, "y": 3}))

		update := readMessage()
		if update.Event != service.EventStateUpdate || update.State == nil || update.State.SessionID != "a1b2" {
			t.Errorf("Expected a state update after the move, got %+v", update)
		}
	})
}
