package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/metrics"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrOffBoard        = errors.New("position is off the board")
	ErrInvalidSteps    = errors.New("invalid shuffle steps")
)

// Option customises the puzzle service
type Option func(*puzzleServiceImpl)

// WithNotifier sets where tick and solved events are pushed
func WithNotifier(n Notifier) Option {
	return func(s *puzzleServiceImpl) {
		s.notifier = n
	}
}

// WithTickInterval overrides the configured elapsed-time tick period
func WithTickInterval(d time.Duration) Option {
	return func(s *puzzleServiceImpl) {
		s.tickInterval = d
	}
}

// puzzleServiceImpl implements the PuzzleService interface. Engines are not
// safe for concurrent use, so every call that touches one, ticker callbacks
// included, runs under mu.
type puzzleServiceImpl struct {
	sessions     SessionManager
	configs      ConfigManager
	notifier     Notifier
	tickInterval time.Duration
	mu           sync.Mutex
}

// NewPuzzleService creates a new puzzle service instance
func NewPuzzleService(sessions SessionManager, configs ConfigManager, opts ...Option) PuzzleService {
	s := &puzzleServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *puzzleServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new puzzle session
func (s *puzzleServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.PuzzleConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.watch(sess)
	s.restartClock(sess)
	metrics.SetActiveSessions(s.sessions.Count())

	info := s.sessionInfo(sess)
	if configName != "" {
		info.ConfigName = configName
	}
	return info, nil
}

// GetSession retrieves session information
func (s *puzzleServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *puzzleServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession stops the session's clock and removes it
func (s *puzzleServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		sess.StopTicker()
	}
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}

	metrics.SetActiveSessions(s.sessions.Count())
	return nil
}

// MoveTile applies a tile selection to the session's board
func (s *puzzleServiceImpl) MoveTile(ctx context.Context, sessionID string, pos engine.Position) (*MoveResult, error) {
	if !pos.InBounds() {
		return nil, fmt.Errorf("%w: %s", ErrOffBoard, pos)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	res := sess.Engine.MoveTile(pos)
	if res.Err != nil {
		metrics.RecordInvariantViolation()
	}

	events := []PuzzleEvent{}
	if res.Moved {
		metrics.RecordMove(string(res.Kind))
		events = append(events, PuzzleEvent{
			Type:      string(res.Kind),
			Message:   moveMessage(res),
			Timestamp: time.Now(),
			Position:  &pos,
		})
	} else {
		metrics.RecordIgnoredSelection()
	}

	if res.Event != nil {
		events = append(events, PuzzleEvent{
			Type:      EventSolved,
			Message:   res.Event.Message,
			Timestamp: res.Event.SolvedAt,
		})
	}

	state := sess.Engine.GetState()
	return &MoveResult{
		Success: res.Moved,
		Kind:    string(res.Kind),
		Tile:    res.Tile,
		Shifted: res.Shifted,
		Puzzle:  s.view(sess),
		Message: state.Message,
		Events:  events,
	}, nil
}

// Shuffle scrambles the session's board and restarts its clock
func (s *puzzleServiceImpl) Shuffle(ctx context.Context, sessionID string, opts ShuffleOptions) (*PuzzleView, error) {
	if opts.Steps < 0 || opts.Steps > engine.MaxShuffleSteps {
		return nil, fmt.Errorf("%w: %d (allowed 0-%d)", ErrInvalidSteps, opts.Steps, engine.MaxShuffleSteps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	steps := opts.Steps
	if steps == 0 {
		steps = sess.Config.EffectiveShuffleSteps()
	}

	if opts.Seed != nil {
		sess.Engine.ShuffleWithRand(steps, rand.New(rand.NewSource(*opts.Seed)))
	} else {
		sess.Engine.Shuffle(steps)
	}

	metrics.RecordShuffle()
	s.restartClock(sess)
	return s.view(sess), nil
}

// Reset puts the session's board back in solved order and restarts its clock
func (s *puzzleServiceImpl) Reset(ctx context.Context, sessionID string) (*PuzzleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Reinitialize()
	s.restartClock(sess)
	return s.view(sess), nil
}

// SetBackground selects the session's skin
func (s *puzzleServiceImpl) SetBackground(ctx context.Context, sessionID string, index int) (*PuzzleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.SetBackground(index); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// GetPuzzleState retrieves the current board
func (s *puzzleServiceImpl) GetPuzzleState(ctx context.Context, sessionID string) (*PuzzleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// GetMoveHistory returns paginated move history
func (s *puzzleServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	moves := []engine.MoveHistoryEntry{}
	// Pages past the end are empty, and never reach the offset arithmetic
	if opts.Page <= totalPages {
		start := (opts.Page - 1) * opts.Limit
		end := start + opts.Limit
		if end > total {
			end = total
		}

		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else if start < total {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available puzzle configurations
func (s *puzzleServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle configuration
func (s *puzzleServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(configName)
}

// getSession looks a session up and marks it accessed. Caller holds mu.
func (s *puzzleServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	s.watch(sess)
	return sess, nil
}

// watch subscribes the service to the session's solved event once
func (s *puzzleServiceImpl) watch(sess *Session) {
	if sess.watched {
		return
	}
	sess.watched = true

	sess.Engine.OnSolved(func(ev engine.SolvedEvent) {
		// Fired from inside MoveTile, so mu is already held
		sess.StopTicker()
		metrics.RecordSolve(ev.MoveCount)
		log.Printf("[SOLVED] session=%s round=%s moves=%d time=%ds", sess.ID, ev.Round, ev.MoveCount, ev.ElapsedSeconds)

		s.notify(sess.ID, EventSolved, SolvedInfo{
			Round:          ev.Round,
			MoveCount:      ev.MoveCount,
			ElapsedSeconds: ev.ElapsedSeconds,
			Message:        ev.Message,
			PlaySound:      true,
			Sound:          sess.Config.VictorySound,
		})
	})
}

// restartClock replaces the session's ticker. Caller holds mu.
func (s *puzzleServiceImpl) restartClock(sess *Session) {
	interval := s.tickInterval
	if interval <= 0 {
		interval = time.Duration(sess.Config.EffectiveTickSeconds()) * time.Second
	}

	sess.RestartTicker(interval, func(t *Ticker, tick int64) {
		s.mu.Lock()
		defer s.mu.Unlock()

		// A replaced or stopped ticker may still fire once
		if t.Stopped() || sess.Ticker() != t {
			return
		}

		s.notify(sess.ID, EventTick, TickInfo{
			Round:          sess.Engine.GetState().Round,
			Tick:           tick,
			MoveCount:      sess.Engine.MoveCount(),
			ElapsedSeconds: int(sess.Engine.Elapsed() / time.Second),
			Stats:          sess.Engine.StatsLine(),
		})
	})
}

func (s *puzzleServiceImpl) notify(sessionID, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastEvent(sessionID, event, data)
	}
}

// view builds the adapter snapshot of a session's board
func (s *puzzleServiceImpl) view(sess *Session) *PuzzleView {
	eng := sess.Engine
	state := eng.GetState()

	movable := make([]engine.Position, 0, 4)
	for _, tile := range eng.MovableTiles() {
		movable = append(movable, tile.Position)
	}

	bg := Background{Index: state.Background}
	if state.Background >= 0 && state.Background < len(sess.Config.Backgrounds) {
		bg.Name = sess.Config.Backgrounds[state.Background].Name
		bg.Image = sess.Config.Backgrounds[state.Background].Image
	}

	return &PuzzleView{
		SessionID:      sess.ID,
		Round:          state.Round,
		Positions:      eng.CurrentPositions(),
		Grid:           engine.Grid(state),
		Blank:          eng.BlankPosition(),
		Movable:        movable,
		MoveCount:      eng.MoveCount(),
		Solved:         eng.IsSolved(),
		ElapsedSeconds: int(eng.Elapsed() / time.Second),
		Stats:          eng.StatsLine(),
		Message:        state.Message,
		Background:     bg,
		TotalMoves:     state.TotalMoves,
	}
}

func (s *puzzleServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Puzzle:         s.view(sess),
		PuzzleConfig:   sess.Config,
	}
}

func moveMessage(res engine.MoveResult) string {
	if res.Kind == engine.MoveSlide {
		return fmt.Sprintf("Slid tiles %v toward the blank", res.Shifted)
	}
	return fmt.Sprintf("Moved tile %d", res.Tile)
}
