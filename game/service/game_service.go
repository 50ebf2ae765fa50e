package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/fifteen-puzzle/game/engine"
)

// PuzzleService defines all puzzle-related operations
type PuzzleService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Puzzle Operations
	MoveTile(ctx context.Context, sessionID string, pos engine.Position) (*MoveResult, error)
	Shuffle(ctx context.Context, sessionID string, opts ShuffleOptions) (*PuzzleView, error)
	Reset(ctx context.Context, sessionID string) (*PuzzleView, error)
	SetBackground(ctx context.Context, sessionID string, index int) (*PuzzleView, error)

	// Puzzle State
	GetPuzzleState(ctx context.Context, sessionID string) (*PuzzleView, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.PuzzleConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.PuzzleConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// ConfigManager handles puzzle configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PuzzleConfig
}

// Notifier pushes asynchronous puzzle events to whoever watches a session
type Notifier interface {
	BroadcastEvent(sessionID string, event string, data interface{})
}

// Session represents an active puzzle session
type Session struct {
	ID             string
	Engine         *engine.PuzzleEngine
	Config         *engine.PuzzleConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// ticker drives the elapsed-time display; nil when the clock is idle
	ticker   *Ticker
	tickerMu sync.Mutex

	watched bool
}

// Ticker returns the session's running ticker, or nil when the clock is idle
func (s *Session) Ticker() *Ticker {
	s.tickerMu.Lock()
	defer s.tickerMu.Unlock()
	return s.ticker
}

// RestartTicker stops the current ticker, if any, and installs a new one
func (s *Session) RestartTicker(interval time.Duration, fn func(t *Ticker, tick int64)) *Ticker {
	s.tickerMu.Lock()
	defer s.tickerMu.Unlock()
	s.ticker.Stop()
	s.ticker = StartTicker(interval, fn)
	return s.ticker
}

// StopTicker stops and forgets the session's ticker
func (s *Session) StopTicker() {
	s.tickerMu.Lock()
	defer s.tickerMu.Unlock()
	s.ticker.Stop()
	s.ticker = nil
}
