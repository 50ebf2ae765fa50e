// Package mcp provides a Model Context Protocol server for the Fifteen Puzzle.
//
// The server is a thin client: every tool proxies to the REST API, so the
// same sessions are visible from the browser, the API and AI agents.
//
// MCP Tools:
//   - puzzle_state: Board, statistics and movable cells
//   - move_tile: Select the tile at (x, y)
//   - shuffle: Scramble the board, optionally with steps and seed
//   - reset_puzzle: Back to the solved welcome state
//   - set_background: Pick the image skin
//   - move_history: Retrieve move history with pagination
//   - describe_cell: Tile value, home cell and whether it can move
//   - create_session, get_session, list_sessions, delete_session
//   - list_configs: List available puzzle configurations
//   - puzzle_instructions: Full rules
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: mounted at /mcp by the server command
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
