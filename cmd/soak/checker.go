package main

import (
	"fmt"
	"math/rand"

	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/game/service"
)

// expectation is what a click should do to the board it was chosen for
type expectation int

const (
	expectStep expectation = iota
	expectSlide
	expectIgnore
)

func (e expectation) String() string {
	switch e {
	case expectStep:
		return "step"
	case expectSlide:
		return "slide"
	default:
		return "ignore"
	}
}

// pickClick chooses a cell to click on view: mostly tiles next to the blank,
// sometimes a longer slide, and sometimes a cell that must be ignored
func pickClick(rng *rand.Rand, view *service.PuzzleView) (engine.Position, expectation) {
	var aligned, offLine []engine.Position
	for y := 0; y < engine.GridSize; y++ {
		for x := 0; x < engine.GridSize; x++ {
			pos := engine.Position{X: x, Y: y}
			switch {
			case pos == view.Blank:
			case pos.X == view.Blank.X || pos.Y == view.Blank.Y:
				if engine.ManhattanDistance(pos, view.Blank) > 1 {
					aligned = append(aligned, pos)
				}
			default:
				offLine = append(offLine, pos)
			}
		}
	}

	roll := rng.Intn(100)
	var pos engine.Position
	var want expectation
	switch {
	case roll < 60 && len(view.Movable) > 0:
		pos, want = view.Movable[rng.Intn(len(view.Movable))], expectStep
	case roll < 85 && len(aligned) > 0:
		pos, want = aligned[rng.Intn(len(aligned))], expectSlide
	default:
		pos, want = offLine[rng.Intn(len(offLine))], expectIgnore
	}

	if view.Solved {
		want = expectIgnore
	}
	return pos, want
}

// checkMove compares a move result against the board it was played on and
// returns every rule the result breaks
func checkMove(before *service.PuzzleView, pos engine.Position, want expectation, result *service.MoveResult) []string {
	var violations []string
	fail := func(format string, args ...interface{}) {
		violations = append(violations, fmt.Sprintf("%s at %s: ", want, pos)+fmt.Sprintf(format, args...))
	}

	after := result.Puzzle
	if after == nil {
		fail("no puzzle in result")
		return violations
	}

	for _, problem := range checkBoard(after) {
		fail("%s", problem)
	}

	if want == expectIgnore {
		if result.Success {
			fail("click was applied")
		}
		if after.MoveCount != before.MoveCount {
			fail("move count changed from %d to %d", before.MoveCount, after.MoveCount)
		}
		if after.Grid != before.Grid {
			fail("board changed")
		}
		return violations
	}

	if !result.Success {
		fail("click was ignored")
		return violations
	}

	distance := engine.ManhattanDistance(pos, before.Blank)
	kind := string(engine.MoveSingle)
	if want == expectSlide {
		kind = string(engine.MoveSlide)
	}
	if result.Kind != kind {
		fail("kind %q, expected %q", result.Kind, kind)
	}
	if len(result.Shifted) != distance {
		fail("shifted %d tiles, expected %d", len(result.Shifted), distance)
	}
	if clicked := before.Grid[pos.Y][pos.X]; result.Tile != clicked {
		fail("reported tile %d, clicked tile %d", result.Tile, clicked)
	}
	if after.Blank != pos {
		fail("blank at %s, expected %s", after.Blank, pos)
	}
	if after.MoveCount != before.MoveCount+1 {
		fail("move count %d, expected %d", after.MoveCount, before.MoveCount+1)
	}
	// A move recomputes the solved flag
	if isSolvedGrid(after.Grid) && !after.Solved {
		fail("solving move left the solved flag unset")
	}
	return violations
}

// checkBoard verifies that a view describes a legal board
func checkBoard(view *service.PuzzleView) []string {
	var problems []string
	var seen [engine.CellCount]bool
	for y, row := range view.Grid {
		for x, v := range row {
			if v < 0 || v >= engine.CellCount || seen[v] {
				problems = append(problems, fmt.Sprintf("cell (%d,%d) holds %d", x, y, v))
				continue
			}
			seen[v] = true
		}
	}

	if !view.Blank.InBounds() || view.Grid[view.Blank.Y][view.Blank.X] != 0 {
		problems = append(problems, fmt.Sprintf("blank %s does not match the grid", view.Blank))
	}

	if view.Solved && !isSolvedGrid(view.Grid) {
		problems = append(problems, "solved flag set on an unsolved board")
	}
	return problems
}

func isSolvedGrid(grid [engine.GridSize][engine.GridSize]int) bool {
	return grid == engine.Grid(engine.NewSolvedState())
}
