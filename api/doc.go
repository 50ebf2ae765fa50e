// Package api provides HTTP REST API handlers for the Fifteen Puzzle.
//
// The api package implements:
//   - Session management endpoints
//   - Tile selection, shuffle and reinitialization endpoints
//   - Configuration listing
//   - WebSocket upgrade handling
//   - Static file serving for the browser page
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "quick"} is optional)
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete a session and stop its clock
//
// Puzzle Operations:
//   - GET /api/sessions/{id}/state - Current board, stats and movable cells
//   - POST /api/sessions/{id}/move - Select the tile at {"x": 2, "y": 3}
//   - POST /api/sessions/{id}/shuffle - Shuffle ({"steps": n, "seed": s} optional)
//   - POST /api/sessions/{id}/reset - Back to the solved welcome state
//   - PUT /api/sessions/{id}/background - Select a skin by {"index": n}
//   - GET /api/sessions/{id}/history - Move history with pagination
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Full configuration
//
// Operations:
//   - GET /ws?session={id} - WebSocket stream of state, tick and solved events
//   - GET /metrics - Prometheus metrics
//   - GET /healthz - Liveness
//
// Selecting a cell that is neither adjacent to nor in line with the blank is
// not an error; the response has success=false and the board is unchanged.
// Coordinates off the 4x4 board answer 400.
//
// Usage:
//
//	server := api.NewServer(puzzleService, hub)
//	http.ListenAndServe(":8080", server)
package api
