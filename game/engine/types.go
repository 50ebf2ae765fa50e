package engine

import (
	"fmt"
	"time"
)

const (
	// Board dimensions
	GridSize  = 4
	CellCount = GridSize * GridSize
	TileCount = CellCount - 1

	// Shuffle limits
	DefaultShuffleSteps = 200
	MaxShuffleSteps     = 10000

	// Elapsed-time tick limits, in seconds
	DefaultTickSeconds = 1
	MaxTickSeconds     = 60
)

// Position represents x,y coordinates on the board, 0-indexed from the top-left
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the position is a cell of the board
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < GridSize && p.Y >= 0 && p.Y < GridSize
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// BottomRight is where the blank sits on a solved board
var BottomRight = Position{X: GridSize - 1, Y: GridSize - 1}

// HomePosition returns the cell a tile with the given value occupies when solved
func HomePosition(value int) Position {
	return Position{X: (value - 1) % GridSize, Y: (value - 1) / GridSize}
}

// Tile is one numbered piece of the puzzle
type Tile struct {
	Value    int      `json:"value"`
	Position Position `json:"position"`
}

// Home returns the tile's solved position
func (t Tile) Home() Position {
	return HomePosition(t.Value)
}

// AtHome reports whether the tile currently sits at its solved position
func (t Tile) AtHome() bool {
	return t.Position == t.Home()
}

// MoveKind classifies what a MoveTile call did
type MoveKind string

const (
	MoveNone   MoveKind = "none"
	MoveSingle MoveKind = "move"
	MoveSlide  MoveKind = "slide"
)

// PuzzleState represents the complete puzzle state
type PuzzleState struct {
	// Tiles is indexed by value-1, so Tiles[i].Value == i+1
	Tiles      []Tile   `json:"tiles"`
	Blank      Position `json:"blank"`
	MoveCount  int      `json:"move_count"`
	Solved     bool     `json:"solved"`
	Background int      `json:"background"`
	Message    string   `json:"message"`
	ConfigName string   `json:"config_name"`

	// Round identifies the current run of the puzzle. It changes on every
	// shuffle and reinitialization.
	Round     string     `json:"round"`
	StartedAt time.Time  `json:"started_at"`
	SolvedAt  *time.Time `json:"solved_at,omitempty"`

	// MoveHistory is cumulative across rounds; CurrentMoves only covers the
	// moves since the last shuffle or reinitialization.
	MoveHistory  []MoveHistoryEntry `json:"move_history"`
	TotalMoves   int                `json:"total_moves"`
	CurrentMoves []MoveHistoryEntry `json:"current_moves"`
}

// MoveHistoryEntry represents a single counted move in the puzzle history
type MoveHistoryEntry struct {
	Action     MoveKind `json:"action"`
	Tile       int      `json:"tile"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	Shifted    []int    `json:"shifted"`
	MoveNumber int      `json:"move_number"`
	Timestamp  int64    `json:"timestamp"`
}

// MoveResult describes the outcome of a MoveTile call
type MoveResult struct {
	Moved bool     `json:"moved"`
	Kind  MoveKind `json:"kind"`

	// Tile is the value of the selected tile; Shifted lists every tile that
	// moved, nearest to the blank first.
	Tile    int   `json:"tile,omitempty"`
	Shifted []int `json:"shifted,omitempty"`

	Blank     Position `json:"blank"`
	MoveCount int      `json:"move_count"`
	Solved    bool     `json:"solved"`

	// Event is set only on the move that solved the puzzle
	Event *SolvedEvent `json:"event,omitempty"`

	// Err reports an internal invariant violation; the board is left in the
	// last consistent state.
	Err error `json:"-"`
}

// SolvedEvent is emitted once per round, when a move first completes the puzzle
type SolvedEvent struct {
	Round          string    `json:"round"`
	MoveCount      int       `json:"move_count"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	SolvedAt       time.Time `json:"solved_at"`
	Message        string    `json:"message"`
}
