// Package service provides the business logic layer for the Fifteen Puzzle.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Configuration lookup for new sessions
//   - Tile selection, shuffling and reinitialization
//   - The per-session elapsed-time clock
//   - Move history tracking
//
// Core Interfaces:
//
// PuzzleService is the main service interface used by every adapter.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages puzzle configuration loading and validation.
// Notifier receives the asynchronous tick and solved events.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the puzzle engine. Engines are not safe for concurrent use, so the service
// serialises every call that touches one behind a single mutex. The clock's
// callbacks take the same mutex and check that their ticker is still the
// session's current one, so a tick never races a move and a replaced clock
// never reports on a discarded round.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	puzzles := service.NewPuzzleService(sessionMgr, configMgr, service.WithNotifier(hub))
//
//	info, err := puzzles.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzles.Shuffle(ctx, info.ID, service.ShuffleOptions{})
//	result, err := puzzles.MoveTile(ctx, info.ID, engine.Position{X: 3, Y: 2})
package service
