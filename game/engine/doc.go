// Package engine provides the core puzzle logic for the Fifteen Puzzle.
//
// The engine package implements the puzzle mechanics including:
//   - Tile and blank bookkeeping on a fixed 4x4 board
//   - Single-step moves and multi-tile row/column slides
//   - Shuffling by a random walk of legal moves
//   - Win detection and the one-shot solved event
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for puzzle operations,
// implemented by PuzzleEngine. PuzzleState is the model itself: the fifteen
// tiles, the blank, the move counter and the solved flag. PuzzleConfig
// carries cosmetic settings (skins, messages) and the default shuffle length.
//
// Usage:
//
//	config, err := engine.LoadPuzzleConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle.OnSolved(func(ev engine.SolvedEvent) {
//		fmt.Printf("solved in %d moves\n", ev.MoveCount)
//	})
//
//	puzzle.Shuffle(engine.DefaultShuffleSteps)
//	result := puzzle.MoveTile(engine.Position{X: 2, Y: 3})
//
// Rules:
//
// A tile next to the blank slides into it. Selecting a tile further away in
// the blank's row or column slides the whole run between them one cell toward
// the blank, counted as a single move. Anything else is ignored. The puzzle is
// solved when the blank sits in the bottom-right corner and every tile is at
// its home cell; a solved board accepts no moves until it is shuffled or
// reinitialized.
//
// A PuzzleEngine is not safe for concurrent use. Callers that share one
// between goroutines must serialise access themselves.
package engine
