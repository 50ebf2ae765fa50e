package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestHomePosition(t *testing.T) {
	tests := []struct {
		value    int
		expected Position
	}{
		{1, Position{X: 0, Y: 0}},
		{4, Position{X: 3, Y: 0}},
		{5, Position{X: 0, Y: 1}},
		{12, Position{X: 3, Y: 2}},
		{15, Position{X: 2, Y: 3}},
	}

	for _, tt := range tests {
		if got := HomePosition(tt.value); got != tt.expected {
			t.Errorf("HomePosition(%d) = %s, expected %s", tt.value, got, tt.expected)
		}
	}
}

func TestPosition_InBounds(t *testing.T) {
	tests := []struct {
		pos      Position
		expected bool
	}{
		{Position{X: 0, Y: 0}, true},
		{Position{X: 3, Y: 3}, true},
		{Position{X: -1, Y: 0}, false},
		{Position{X: 0, Y: 4}, false},
		{Position{X: 4, Y: 4}, false},
	}

	for _, tt := range tests {
		if got := tt.pos.InBounds(); got != tt.expected {
			t.Errorf("%s.InBounds() = %v, expected %v", tt.pos, got, tt.expected)
		}
	}
}

func TestTile_AtHome(t *testing.T) {
	tile := Tile{Value: 7, Position: Position{X: 2, Y: 1}}
	if !tile.AtHome() {
		t.Errorf("Expected tile 7 at %s to be home", tile.Position)
	}

	tile.Position = Position{X: 3, Y: 1}
	if tile.AtHome() {
		t.Error("Expected moved tile not to be home")
	}
}

func TestDistanceHeuristics(t *testing.T) {
	state := NewSolvedState()
	if MisplacedTiles(state) != 0 || TotalManhattanDistance(state) != 0 {
		t.Fatal("Expected solved board to have zero heuristics")
	}

	state.MoveTile(Position{X: 0, Y: 3})

	// 13, 14, 15 each moved one cell right
	if got := MisplacedTiles(state); got != 3 {
		t.Errorf("Expected 3 misplaced tiles, got %d", got)
	}
	if got := TotalManhattanDistance(state); got != 3 {
		t.Errorf("Expected total distance 3, got %d", got)
	}
}

func TestPuzzleState_JSON(t *testing.T) {
	state := NewSolvedState()
	state.MoveTile(Position{X: 2, Y: 3})

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}

	for _, key := range []string{`"tiles"`, `"blank"`, `"move_count":1`, `"solved":false`, `"current_moves"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in JSON: %s", key, data)
		}
	}
	if strings.Contains(string(data), "solved_at") {
		t.Errorf("Expected solved_at to be omitted while in progress: %s", data)
	}

	var decoded PuzzleState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal state: %v", err)
	}
	if err := decoded.Validate(); err != nil {
		t.Errorf("Expected decoded state to be valid: %v", err)
	}
	if decoded.Blank != state.Blank {
		t.Errorf("Expected blank %s, got %s", state.Blank, decoded.Blank)
	}
}

func TestMoveResult_ErrNotSerialized(t *testing.T) {
	result := MoveResult{Kind: MoveNone, Err: ErrTileNotFound}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Failed to marshal result: %v", err)
	}
	if strings.Contains(string(data), "no tile") {
		t.Errorf("Expected internal error to stay out of JSON: %s", data)
	}
}
