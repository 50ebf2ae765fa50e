// Command analyze reports how well each puzzle configuration scrambles the
// board. For every config it runs a number of seeded shuffles of the
// configured length and prints the spread of misplaced tiles and total
// Manhattan distance, the two usual measures of how far a board is from
// solved.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/wricardo/fifteen-puzzle/game/config"
	"github.com/wricardo/fifteen-puzzle/game/engine"
)

const defaultTrials = 100

// ShuffleAnalysis summarises a batch of shuffles of one length
type ShuffleAnalysis struct {
	Steps  int
	Trials int

	MinMisplaced, MaxMisplaced int
	AvgMisplaced               float64

	MinDistance, MaxDistance int
	AvgDistance              float64

	// StillSolved counts shuffles that walked back to the solved board
	StillSolved int
	// BlankCorners counts shuffles that left the blank in a corner
	BlankCorners int
}

// analyzeShuffle runs trials shuffles of the given length, seeding trial i
// with seed+i so a report can be reproduced
func analyzeShuffle(steps, trials int, seed int64) ShuffleAnalysis {
	a := ShuffleAnalysis{Steps: steps, Trials: trials}
	if trials <= 0 {
		return a
	}

	totalMisplaced, totalDistance := 0, 0
	for i := 0; i < trials; i++ {
		state := engine.NewSolvedState()
		state.Shuffle(steps, rand.New(rand.NewSource(seed+int64(i))))

		misplaced := engine.MisplacedTiles(state)
		distance := engine.TotalManhattanDistance(state)
		totalMisplaced += misplaced
		totalDistance += distance

		if i == 0 || misplaced < a.MinMisplaced {
			a.MinMisplaced = misplaced
		}
		if misplaced > a.MaxMisplaced {
			a.MaxMisplaced = misplaced
		}
		if i == 0 || distance < a.MinDistance {
			a.MinDistance = distance
		}
		if distance > a.MaxDistance {
			a.MaxDistance = distance
		}

		if state.CheckWinCondition() {
			a.StillSolved++
		}
		if isCorner(state.Blank) {
			a.BlankCorners++
		}
	}

	a.AvgMisplaced = float64(totalMisplaced) / float64(trials)
	a.AvgDistance = float64(totalDistance) / float64(trials)
	return a
}

func isCorner(p engine.Position) bool {
	edge := engine.GridSize - 1
	return (p.X == 0 || p.X == edge) && (p.Y == 0 || p.Y == edge)
}

// analyzeConfig loads a config file and prints its shuffle analysis
func analyzeConfig(w io.Writer, path string, trials int) error {
	puzzleConfig, err := engine.LoadPuzzleConfig(path)
	if err != nil {
		return err
	}

	a := analyzeShuffle(puzzleConfig.EffectiveShuffleSteps(), trials, 1)

	fmt.Fprintf(w, "\n=== %s ===\n", puzzleConfig.Name)
	fmt.Fprintf(w, "File: %s\n", filepath.Base(path))
	fmt.Fprintf(w, "Description: %s\n", puzzleConfig.Description)
	fmt.Fprintf(w, "Shuffle: %d moves, %d trials\n", a.Steps, a.Trials)
	fmt.Fprintf(w, "\nMisplaced tiles: min %d, avg %.1f, max %d (of %d)\n",
		a.MinMisplaced, a.AvgMisplaced, a.MaxMisplaced, engine.TileCount)
	fmt.Fprintf(w, "Manhattan distance: min %d, avg %.1f, max %d\n",
		a.MinDistance, a.AvgDistance, a.MaxDistance)
	fmt.Fprintf(w, "Blank in a corner: %d/%d\n", a.BlankCorners, a.Trials)

	fmt.Fprintf(w, "\n=== Assessment ===\n")
	switch {
	case a.StillSolved > 0:
		fmt.Fprintf(w, "❌ %d shuffles returned to the solved board\n", a.StillSolved)
	case a.AvgMisplaced < engine.TileCount/2:
		fmt.Fprintf(w, "⚠️  Light scramble, most tiles stay home\n")
	case a.AvgDistance > 30:
		fmt.Fprintf(w, "✅ Thorough scramble\n")
	default:
		fmt.Fprintf(w, "✅ Moderate scramble\n")
	}
	return nil
}

func configFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range config.Extensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main analyzes every config in a directory (first argument, configs by
// default); an optional second argument sets the number of trials
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	trials := defaultTrials
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			fmt.Printf("Invalid trial count: %s\n", os.Args[2])
			os.Exit(1)
		}
		trials = n
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No configuration files found in %s\n", configDir)
		os.Exit(1)
	}

	failed := false
	for _, file := range files {
		if err := analyzeConfig(os.Stdout, file, trials); err != nil {
			fmt.Printf("Error analyzing %s: %v\n", file, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
