package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// MisplacedTiles counts the tiles that are not at their home position
func MisplacedTiles(state *PuzzleState) int {
	count := 0
	for _, tile := range state.Tiles {
		if !tile.AtHome() {
			count++
		}
	}
	return count
}

// TotalManhattanDistance sums every tile's distance from its home position
func TotalManhattanDistance(state *PuzzleState) int {
	total := 0
	for _, tile := range state.Tiles {
		total += ManhattanDistance(tile.Position, tile.Home())
	}
	return total
}

// Grid lays the board out row by row, with 0 marking the blank
func Grid(state *PuzzleState) [GridSize][GridSize]int {
	var grid [GridSize][GridSize]int
	for _, tile := range state.Tiles {
		if tile.Position.InBounds() {
			grid[tile.Position.Y][tile.Position.X] = tile.Value
		}
	}
	return grid
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// sign returns -1, 0 or 1 matching the sign of x
func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
