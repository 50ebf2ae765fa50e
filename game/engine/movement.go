package engine

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrTileNotFound = errors.New("no tile at position")
	ErrInvalidState = errors.New("invalid puzzle state")
)

// NewSolvedState returns a board in solved order with the blank bottom-right
func NewSolvedState() *PuzzleState {
	tiles := make([]Tile, TileCount)
	for i := range tiles {
		value := i + 1
		tiles[i] = Tile{Value: value, Position: HomePosition(value)}
	}

	return &PuzzleState{
		Tiles:        tiles,
		Blank:        BottomRight,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
}

// IsAdjacent reports whether pos is exactly one cell from the blank along a
// single axis
func (s *PuzzleState) IsAdjacent(pos Position) bool {
	return pos.InBounds() && ManhattanDistance(pos, s.Blank) == 1
}

// IsMovable reports whether the tile at pos can make a single-step move
func (s *PuzzleState) IsMovable(pos Position) bool {
	return s.IsAdjacent(pos)
}

// TileAt returns the tile occupying pos
func (s *PuzzleState) TileAt(pos Position) (*Tile, bool) {
	for i := range s.Tiles {
		if s.Tiles[i].Position == pos {
			return &s.Tiles[i], true
		}
	}
	return nil, false
}

// MovableTiles returns the tiles adjacent to the blank
func (s *PuzzleState) MovableTiles() []Tile {
	movable := make([]Tile, 0, 4)
	for _, tile := range s.Tiles {
		if s.IsAdjacent(tile.Position) {
			movable = append(movable, tile)
		}
	}
	return movable
}

// CurrentPositions maps every tile value to its current position
func (s *PuzzleState) CurrentPositions() map[int]Position {
	positions := make(map[int]Position, len(s.Tiles))
	for _, tile := range s.Tiles {
		positions[tile.Value] = tile.Position
	}
	return positions
}

// CheckWinCondition reports whether the board is in solved order
func (s *PuzzleState) CheckWinCondition() bool {
	if s.Blank != BottomRight {
		return false
	}
	for _, tile := range s.Tiles {
		if !tile.AtHome() {
			return false
		}
	}
	return true
}

// MoveTile applies the selected tile's move to the board.
//
// An adjacent tile swaps with the blank. A tile further along the blank's row
// or column slides the run between them toward the blank, and the whole slide
// counts as one move. Anything else, and any selection on a solved board, is a
// no-op.
func (s *PuzzleState) MoveTile(pos Position) MoveResult {
	result := MoveResult{
		Kind:      MoveNone,
		Blank:     s.Blank,
		MoveCount: s.MoveCount,
		Solved:    s.Solved,
	}
	if s.Solved || !pos.InBounds() {
		return result
	}

	switch {
	case s.IsAdjacent(pos):
		tile, ok := s.TileAt(pos)
		if !ok {
			result.Err = fmt.Errorf("%w %s", ErrTileNotFound, pos)
			return result
		}
		s.swapWithBlank(tile)
		result.Kind = MoveSingle
		result.Shifted = []int{tile.Value}

	case pos.Y == s.Blank.Y && pos.X != s.Blank.X,
		pos.X == s.Blank.X && pos.Y != s.Blank.Y:
		shifted, err := s.slideToward(pos)
		result.Err = err
		if len(shifted) == 0 {
			return result
		}
		result.Kind = MoveSlide
		result.Shifted = shifted

	default:
		return result
	}

	result.Moved = true
	result.Tile = result.Shifted[len(result.Shifted)-1]
	s.MoveCount++
	s.Solved = s.CheckWinCondition()

	result.Blank = s.Blank
	result.MoveCount = s.MoveCount
	result.Solved = s.Solved
	return result
}

// Shuffle performs steps random single-step moves and starts a fresh count.
// It returns the blank's position before each step; replaying them in reverse
// order with MoveTile walks the board back to where it started.
func (s *PuzzleState) Shuffle(steps int, rng *rand.Rand) []Position {
	trail := make([]Position, 0, steps)
	for i := 0; i < steps; i++ {
		candidates := s.MovableTiles()
		if len(candidates) == 0 {
			break
		}
		pick := candidates[rng.Intn(len(candidates))]
		tile, _ := s.TileAt(pick.Position)
		trail = append(trail, s.Blank)
		s.swapWithBlank(tile)
	}

	s.MoveCount = 0
	s.Solved = false
	s.SolvedAt = nil
	return trail
}

// Validate checks that the tiles and the blank cover every cell exactly once
func (s *PuzzleState) Validate() error {
	if len(s.Tiles) != TileCount {
		return fmt.Errorf("%w: expected %d tiles, got %d", ErrInvalidState, TileCount, len(s.Tiles))
	}
	if !s.Blank.InBounds() {
		return fmt.Errorf("%w: blank %s is off the board", ErrInvalidState, s.Blank)
	}

	seen := map[Position]int{s.Blank: 0}
	for i, tile := range s.Tiles {
		if tile.Value != i+1 {
			return fmt.Errorf("%w: tile at index %d has value %d", ErrInvalidState, i, tile.Value)
		}
		if !tile.Position.InBounds() {
			return fmt.Errorf("%w: tile %d at %s is off the board", ErrInvalidState, tile.Value, tile.Position)
		}
		if other, taken := seen[tile.Position]; taken {
			if other == 0 {
				return fmt.Errorf("%w: tile %d shares %s with the blank", ErrInvalidState, tile.Value, tile.Position)
			}
			return fmt.Errorf("%w: tiles %d and %d share %s", ErrInvalidState, other, tile.Value, tile.Position)
		}
		seen[tile.Position] = tile.Value
	}
	return nil
}

// Clone returns a deep copy of the state
func (s *PuzzleState) Clone() *PuzzleState {
	clone := *s
	clone.Tiles = append([]Tile(nil), s.Tiles...)
	clone.MoveHistory = cloneHistory(s.MoveHistory)
	clone.CurrentMoves = cloneHistory(s.CurrentMoves)
	if s.SolvedAt != nil {
		solvedAt := *s.SolvedAt
		clone.SolvedAt = &solvedAt
	}
	return &clone
}

// swapWithBlank moves the tile into the blank cell and the blank into the
// tile's old cell
func (s *PuzzleState) swapWithBlank(tile *Tile) {
	tile.Position, s.Blank = s.Blank, tile.Position
}

// slideToward walks the blank one cell at a time to target, pulling the tile
// at each next cell into it. Tiles nearest the blank move first.
func (s *PuzzleState) slideToward(target Position) ([]int, error) {
	dx, dy := sign(target.X-s.Blank.X), sign(target.Y-s.Blank.Y)
	shifted := make([]int, 0, GridSize-1)

	for s.Blank != target {
		next := Position{X: s.Blank.X + dx, Y: s.Blank.Y + dy}
		tile, ok := s.TileAt(next)
		if !ok {
			return shifted, fmt.Errorf("%w %s during slide to %s", ErrTileNotFound, next, target)
		}
		s.swapWithBlank(tile)
		shifted = append(shifted, tile.Value)
	}
	return shifted, nil
}

// addMoveToHistory records a counted move in both history lists
func (s *PuzzleState) addMoveToHistory(result MoveResult, from, to Position, timestamp int64) {
	entry := MoveHistoryEntry{
		Action:     result.Kind,
		Tile:       result.Tile,
		From:       from,
		To:         to,
		Shifted:    append([]int(nil), result.Shifted...),
		MoveNumber: s.TotalMoves + 1,
		Timestamp:  timestamp,
	}
	s.MoveHistory = append(s.MoveHistory, entry)
	s.TotalMoves++
	s.CurrentMoves = append(s.CurrentMoves, entry)
}

func cloneHistory(entries []MoveHistoryEntry) []MoveHistoryEntry {
	if entries == nil {
		return nil
	}
	out := make([]MoveHistoryEntry, len(entries))
	for i, e := range entries {
		e.Shifted = append([]int(nil), e.Shifted...)
		out[i] = e
	}
	return out
}
