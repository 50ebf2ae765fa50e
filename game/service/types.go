package service

import (
	"time"

	"github.com/wricardo/fifteen-puzzle/game/engine"
)

// Event types pushed to session watchers
const (
	EventStateUpdate = "state_update"
	EventTick        = "tick"
	EventSolved      = "solved"
)

// SessionInfo provides information about a puzzle session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	Puzzle         *PuzzleView          `json:"puzzle"`
	PuzzleConfig   *engine.PuzzleConfig `json:"puzzle_config"`
}

// PuzzleView is the read-only snapshot adapters render from
type PuzzleView struct {
	SessionID string `json:"session_id"`
	Round     string `json:"round"`

	// Positions maps tile value to its cell; Grid lays the same out row by
	// row with 0 for the blank.
	Positions map[int]engine.Position               `json:"positions"`
	Grid      [engine.GridSize][engine.GridSize]int `json:"grid"`
	Blank     engine.Position                       `json:"blank"`
	Movable   []engine.Position                     `json:"movable"`

	MoveCount      int    `json:"move_count"`
	Solved         bool   `json:"solved"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Stats          string `json:"stats"`
	Message        string `json:"message"`

	Background Background `json:"background"`
	TotalMoves int        `json:"total_moves"`
}

// Background describes the selected skin
type Background struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success bool          `json:"success"`
	Kind    string        `json:"kind"`
	Tile    int           `json:"tile,omitempty"`
	Shifted []int         `json:"shifted,omitempty"`
	Puzzle  *PuzzleView   `json:"puzzle"`
	Message string        `json:"message"`
	Events  []PuzzleEvent `json:"events,omitempty"`
}

// PuzzleEvent represents something that happened during play
type PuzzleEvent struct {
	Type      string           `json:"type"` // "move", "slide", "solved", "shuffle", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// SolvedInfo is the payload of the solved event
type SolvedInfo struct {
	Round          string `json:"round"`
	MoveCount      int    `json:"move_count"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Message        string `json:"message"`
	PlaySound      bool   `json:"play_sound"`
	Sound          string `json:"sound,omitempty"`
}

// TickInfo is the payload of the elapsed-time tick
type TickInfo struct {
	Round          string `json:"round"`
	Tick           int64  `json:"tick"`
	MoveCount      int    `json:"move_count"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Stats          string `json:"stats"`
}

// ShuffleOptions configures a shuffle. Zero Steps uses the session's
// configured length; a Seed makes the shuffle reproducible.
type ShuffleOptions struct {
	Steps int    `json:"steps,omitempty"`
	Seed  *int64 `json:"seed,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle configuration
type ConfigInfo struct {
	Filename     string   `json:"filename"`
	ConfigID     string   `json:"config_id"` // The identifier to use for session creation
	Name         string   `json:"name"`      // Display name
	Description  string   `json:"description"`
	ShuffleSteps int      `json:"shuffle_steps"`
	Backgrounds  []string `json:"backgrounds"`
}
