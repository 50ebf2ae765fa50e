// Package websocket provides WebSocket transport for the Fifteen Puzzle.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Broadcasting of puzzle state after each change
//   - Delivery of the clock's tick events and the solved event
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. The Hub's Run goroutine owns the client registry;
// everything else talks to it over channels. Each client connection has a
// read goroutine and a write goroutine.
//
// Message Protocol:
//
// Every outgoing frame is one JSON Message:
//
//	{"session_id": "a1b2", "event": "state_update", "state": {...}}
//	{"session_id": "a1b2", "event": "tick", "data": {"tick": 12, "stats": "Moves: 3, Time: 12s"}}
//	{"session_id": "a1b2", "event": "solved", "data": {"move_count": 41, "play_sound": true}}
//
// Moves are sent through the JSON API, not over the socket.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	puzzles := service.NewPuzzleService(sessions, configs, service.WithNotifier(hub))
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Concurrency:
//
// BroadcastToSession and BroadcastEvent never block: messages go through a
// buffered queue and are dropped with a log line when it is full. This lets
// the puzzle service notify while holding its own lock.
package websocket
