package engine

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidBackground = errors.New("invalid background index")

// Logger receives diagnostics the engine cannot return to its caller
type Logger interface {
	Printf(format string, v ...interface{})
}

// Engine provides the main interface for puzzle operations
type Engine interface {
	// State management
	GetState() *PuzzleState
	SetState(state *PuzzleState) error
	Reinitialize() *PuzzleState
	IsSolved() bool
	MoveCount() int
	BlankPosition() Position
	CurrentPositions() map[int]Position
	Tiles() []Tile
	Elapsed() time.Duration
	StatsLine() string

	// Movement operations
	MoveTile(pos Position) MoveResult
	IsAdjacent(pos Position) bool
	IsMovable(pos Position) bool
	MovableTiles() []Tile
	Shuffle(steps int) *PuzzleState
	ShuffleWithRand(steps int, rng *rand.Rand) *PuzzleState
	CheckWinCondition() bool

	// Events
	OnSolved(listener func(SolvedEvent))

	// Configuration
	GetConfig() *PuzzleConfig
	SetConfig(config *PuzzleConfig) error
	SetBackground(index int) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// Option customises a PuzzleEngine
type Option func(*PuzzleEngine)

// WithRand sets the random source used by Shuffle
func WithRand(rng *rand.Rand) Option {
	return func(e *PuzzleEngine) {
		e.rng = rng
	}
}

// WithClock sets the time source for round and solve timestamps
func WithClock(now func() time.Time) Option {
	return func(e *PuzzleEngine) {
		e.now = now
	}
}

// WithLogger sets where invariant violations are reported
func WithLogger(logger Logger) Option {
	return func(e *PuzzleEngine) {
		e.logger = logger
	}
}

// PuzzleEngine implements the Engine interface
type PuzzleEngine struct {
	state     *PuzzleState
	config    *PuzzleConfig
	rng       *rand.Rand
	now       func() time.Time
	logger    Logger
	listeners []func(SolvedEvent)
}

// NewEngine creates a new puzzle engine with the provided configuration.
// The board starts in solved order, ready to be shuffled.
func NewEngine(config *PuzzleConfig, opts ...Option) (*PuzzleEngine, error) {
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}

	e := newEngine(config, opts)
	return e, nil
}

// NewEngineWithDefaults creates a new puzzle engine with the built-in configuration
func NewEngineWithDefaults(opts ...Option) *PuzzleEngine {
	return newEngine(DefaultPuzzleConfig(), opts)
}

func newEngine(config *PuzzleConfig, opts []Option) *PuzzleEngine {
	e := &PuzzleEngine{
		config: config,
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(e.now().UnixNano()))
	}

	e.state = NewSolvedState()
	e.state.Background = config.DefaultBackground
	e.startRound(config.Messages.Welcome)
	return e
}

// GetState returns the current puzzle state
func (e *PuzzleEngine) GetState() *PuzzleState {
	return e.state
}

// SetState replaces the puzzle state after checking the board invariant
func (e *PuzzleEngine) SetState(state *PuzzleState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := state.Validate(); err != nil {
		return err
	}
	e.state = state
	return nil
}

// Reinitialize puts the tiles back in solved order and starts a new round.
// Cumulative history and the selected background survive.
func (e *PuzzleEngine) Reinitialize() *PuzzleState {
	prev := e.state

	e.state = NewSolvedState()
	e.state.Background = prev.Background
	e.state.MoveHistory = prev.MoveHistory
	e.state.TotalMoves = prev.TotalMoves
	e.startRound(e.config.Messages.Welcome)

	return e.state
}

// IsSolved returns whether the puzzle has been solved in this round
func (e *PuzzleEngine) IsSolved() bool {
	return e.state.Solved
}

// MoveCount returns the number of counted moves in this round
func (e *PuzzleEngine) MoveCount() int {
	return e.state.MoveCount
}

// BlankPosition returns the position of the blank cell
func (e *PuzzleEngine) BlankPosition() Position {
	return e.state.Blank
}

// CurrentPositions maps tile values to their current positions
func (e *PuzzleEngine) CurrentPositions() map[int]Position {
	return e.state.CurrentPositions()
}

// Elapsed returns the time spent in this round, frozen once solved
func (e *PuzzleEngine) Elapsed() time.Duration {
	if e.state.SolvedAt != nil {
		return e.state.SolvedAt.Sub(e.state.StartedAt)
	}
	return e.now().Sub(e.state.StartedAt)
}

// MoveTile moves the selected tile, records the move and fires the solved
// event when the move completes the puzzle
func (e *PuzzleEngine) MoveTile(pos Position) MoveResult {
	wasSolved := e.state.Solved
	result := e.state.MoveTile(pos)

	if result.Err != nil {
		e.logger.Printf("puzzle invariant violated on round %s: %v", e.state.Round, result.Err)
	}
	if !result.Moved {
		return result
	}

	tile := e.state.Tiles[result.Tile-1]
	e.state.addMoveToHistory(result, pos, tile.Position, e.now().Unix())

	if result.Solved && !wasSolved {
		event := e.markSolved()
		result.Event = &event
		for _, listener := range e.listeners {
			listener(event)
		}
	}

	return result
}

// IsAdjacent reports whether pos is one cell from the blank along one axis
func (e *PuzzleEngine) IsAdjacent(pos Position) bool {
	return e.state.IsAdjacent(pos)
}

// IsMovable reports whether the tile at pos can slide into the blank
func (e *PuzzleEngine) IsMovable(pos Position) bool {
	return e.state.IsMovable(pos)
}

// Tiles returns a copy of the tiles, indexed by value-1
func (e *PuzzleEngine) Tiles() []Tile {
	return append([]Tile(nil), e.state.Tiles...)
}

// MovableTiles returns the tiles adjacent to the blank
func (e *PuzzleEngine) MovableTiles() []Tile {
	return e.state.MovableTiles()
}

// Shuffle scrambles the board with steps random single-step moves and starts
// a new round with a zero move count
func (e *PuzzleEngine) Shuffle(steps int) *PuzzleState {
	return e.ShuffleWithRand(steps, e.rng)
}

// ShuffleWithRand is Shuffle with an explicit random source
func (e *PuzzleEngine) ShuffleWithRand(steps int, rng *rand.Rand) *PuzzleState {
	if steps < 0 {
		steps = 0
	}
	if steps > MaxShuffleSteps {
		steps = MaxShuffleSteps
	}

	e.state.Shuffle(steps, rng)
	e.startRound(e.config.Messages.Shuffled)
	return e.state
}

// CheckWinCondition reports whether the board is in solved order
func (e *PuzzleEngine) CheckWinCondition() bool {
	return e.state.CheckWinCondition()
}

// OnSolved registers a listener for the solved event
func (e *PuzzleEngine) OnSolved(listener func(SolvedEvent)) {
	if listener != nil {
		e.listeners = append(e.listeners, listener)
	}
}

// GetConfig returns the current puzzle configuration
func (e *PuzzleEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// SetConfig sets a new configuration and reinitializes the board
func (e *PuzzleEngine) SetConfig(config *PuzzleConfig) error {
	if err := ValidatePuzzleConfig(config); err != nil {
		return err
	}

	e.config = config
	e.Reinitialize()
	e.state.Background = config.DefaultBackground
	return nil
}

// SetBackground selects one of the configured skins
func (e *PuzzleEngine) SetBackground(index int) error {
	if index < 0 || index >= len(e.config.Backgrounds) {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidBackground, index, len(e.config.Backgrounds))
	}
	e.state.Background = index
	return nil
}

// GetMoveHistory returns the complete move history
func (e *PuzzleEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *PuzzleEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// StatsLine formats the moves/time status line
func (e *PuzzleEngine) StatsLine() string {
	format := e.config.Messages.Stats
	if format == "" {
		format = "Moves: %d, Time: %ds"
	}
	return fmt.Sprintf(format, e.state.MoveCount, int(e.Elapsed()/time.Second))
}

// startRound stamps a new round on the current board
func (e *PuzzleEngine) startRound(message string) {
	e.state.Round = uuid.NewString()
	e.state.StartedAt = e.now()
	e.state.SolvedAt = nil
	e.state.MoveCount = 0
	e.state.Solved = false
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.ConfigName = e.config.Name
	e.state.Message = message
}

// markSolved records the solve on the state and builds its event
func (e *PuzzleEngine) markSolved() SolvedEvent {
	solvedAt := e.now()
	e.state.SolvedAt = &solvedAt
	e.state.Message = fmt.Sprintf(e.config.Messages.Victory, e.state.MoveCount)

	return SolvedEvent{
		Round:          e.state.Round,
		MoveCount:      e.state.MoveCount,
		ElapsedSeconds: int(solvedAt.Sub(e.state.StartedAt) / time.Second),
		SolvedAt:       solvedAt,
		Message:        e.state.Message,
	}
}
