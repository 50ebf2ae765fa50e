package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Fifteen Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Fifteen Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Put tiles 1-15 back in order, left to right and top to bottom, with the blank
in the bottom-right corner.

AVAILABLE TOOLS:
- puzzle_state: Board, move count, elapsed time and movable cells
- move_tile: Select the tile at (x, y); it slides toward the blank
- shuffle: Scramble the board with random legal moves
- reset_puzzle: Back to the solved board and the welcome message
- set_background: Pick the image skin by index
- move_history: View past moves
- describe_cell: What sits at a cell and whether it can move
- create_session / get_session / list_sessions / delete_session
- list_configs: List available configurations
- puzzle_instructions: Full rules

Coordinates are 0-indexed from the top-left: x is the column, y the row.`),
	)

	c.registerTools()
}

// sessionSchema is the input schema shared by every tool that only needs a session
func sessionSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session ID",
			},
		},
		Required: []string{"session_id"},
	}
}

// cellSchema adds x/y coordinates to the session schema
func cellSchema(purpose string) mcp.ToolInputSchema {
	schema := sessionSchema()
	schema.Properties["x"] = map[string]interface{}{
		"type":        "integer",
		"description": fmt.Sprintf("Column of the %s (0-3, left to right)", purpose),
	}
	schema.Properties["y"] = map[string]interface{}{
		"type":        "integer",
		"description": fmt.Sprintf("Row of the %s (0-3, top to bottom)", purpose),
	}
	schema.Required = []string{"session_id", "x", "y"}
	return schema
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new puzzle session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the config to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active puzzle sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(),
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session and stop its clock",
		InputSchema: sessionSchema(),
	}, c.handleDeleteSession)

	// Puzzle operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_state",
		Description: "Get the current board, statistics and the cells that can move",
		InputSchema: sessionSchema(),
	}, c.handlePuzzleState)

	c.mcpServer.AddTool(mcp.Tool{
		Name: "move_tile",
		Description: "Select the tile at (x, y). A tile next to the blank slides into it; " +
			"a tile in the blank's row or column pushes the whole line. Anything else is ignored.",
		InputSchema: cellSchema("tile"),
	}, c.handleMoveTile)

	shuffleSchema := sessionSchema()
	shuffleSchema.Properties["steps"] = map[string]interface{}{
		"type":        "integer",
		"description": "Number of random moves (optional, defaults to the config's value)",
	}
	shuffleSchema.Properties["seed"] = map[string]interface{}{
		"type":        "integer",
		"description": "Random seed for a reproducible shuffle (optional)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "shuffle",
		Description: "Scramble the board with random legal moves and restart the clock",
		InputSchema: shuffleSchema,
	}, c.handleShuffle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_puzzle",
		Description: "Reset to the solved board with the welcome message",
		InputSchema: sessionSchema(),
	}, c.handleReset)

	backgroundSchema := sessionSchema()
	backgroundSchema.Properties["index"] = map[string]interface{}{
		"type":        "integer",
		"description": "Background index from the session's config",
	}
	backgroundSchema.Required = []string{"session_id", "index"}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_background",
		Description: "Select the image skin drawn on the tiles",
		InputSchema: backgroundSchema,
	}, c.handleSetBackground)

	historySchema := sessionSchema()
	historySchema.Properties["page"] = map[string]interface{}{
		"type":        "integer",
		"description": "Page number (default 1)",
	}
	historySchema.Properties["limit"] = map[string]interface{}{
		"type":        "integer",
		"description": "Moves per page (default 20)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the move history of a session",
		InputSchema: historySchema,
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe the tile at (x, y): its value, its home cell and whether it can move now",
		InputSchema: cellSchema("cell"),
	}, c.handleDescribeCell)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available puzzle configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_instructions",
		Description: "Get the complete rules of the puzzle",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handlePuzzleInstructions)
}

// GetMCPServer returns the underlying MCP server for stdio or HTTP transport
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg reads an optional integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configName := request.GetString("config_name", "")

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.Puzzle != nil {
		result += "\n" + formatPuzzleState(session.Puzzle)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		moves, solved := 0, false
		if s.Puzzle != nil {
			moves, solved = s.Puzzle.MoveCount, s.Puzzle.Solved
		}
		result += fmt.Sprintf("- %s (Config: %s, Created: %s, Moves: %d, Solved: %t)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), moves, solved)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handlePuzzleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state service.PuzzleView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPuzzleState(&state)), nil
}

func (c *Client) handleMoveTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]int{"x": x, "y": y}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(engine.Position{X: x, Y: y}, &result)), nil
}

func (c *Client) handleShuffle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	args := request.GetArguments()

	body := map[string]int64{}
	if steps, ok := intArg(args, "steps"); ok {
		body["steps"] = int64(steps)
	}
	if seed, ok := intArg(args, "seed"); ok {
		body["seed"] = int64(seed)
	}

	var state service.PuzzleView
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/shuffle"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Shuffled.\n\n" + formatPuzzleState(&state)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var response struct {
		Message string              `json:"message"`
		State   *service.PuzzleView `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatPuzzleState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSetBackground(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state service.PuzzleView
	if err := c.apiCall(ctx, "PUT", sessionPath(sessionID, "/background"), map[string]int{"index": index}, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Background set to %s (%s)", state.Background.Name, state.Background.Image)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	args := request.GetArguments()

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pos := engine.Position{X: x, Y: y}
	if !pos.InBounds() {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates %s are out of bounds. The board is %dx%d (0-%d for both x and y)",
			pos, engine.GridSize, engine.GridSize, engine.GridSize-1)), nil
	}

	var state service.PuzzleView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&state, pos)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Shuffle: %d moves, Backgrounds: %s\n\n",
			config.Name, config.ConfigID, config.Description, config.ShuffleSteps,
			strings.Join(config.Backgrounds, ", "))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePuzzleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Fifteen Puzzle - Complete Instructions

OBJECTIVE:
Fifteen numbered tiles sit on a 4x4 board with one empty cell (the blank).
Restore the order:

   1  2  3  4
   5  6  7  8
   9 10 11 12
  13 14 15  ·

COORDINATES:
- (x, y) is 0-indexed from the top-left corner
- x is the column (0-3), y is the row (0-3)
- A solved board has the blank at (3,3)

MOVES:
- Selecting a tile next to the blank slides it into the blank (one move)
- Selecting a tile in the blank's row or column pushes every tile between it
  and the blank one cell toward the blank (still one move)
- Selecting any other tile, or the blank itself, does nothing and is not counted
- puzzle_state lists the movable cells

FLOW:
1. create_session, then shuffle to scramble the board and start the clock
2. move_tile until the board is in order
3. The final move reports the victory message with your move count
4. A solved board ignores selections until you shuffle or reset_puzzle

STRATEGY:
- Solve the top row, then the second row, one tile at a time
- Finish the last two rows column by column, left to right
- Use a row or column slide to move several tiles in one counted move
- describe_cell tells you each tile's home cell

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatters

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatPuzzleState(session.Puzzle))
}

// formatBoard renders the grid with the blank as a dot
func formatBoard(state *service.PuzzleView) string {
	var b strings.Builder
	for y := 0; y < engine.GridSize; y++ {
		for x := 0; x < engine.GridSize; x++ {
			if value := state.Grid[y][x]; value == 0 {
				b.WriteString("  ·")
			} else {
				b.WriteString(fmt.Sprintf("%3d", value))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatPuzzleState(state *service.PuzzleView) string {
	if state == nil {
		return "No puzzle state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Moves: %d | Elapsed: %ds | Blank: %s | Background: %s\n\n",
		state.MoveCount, state.ElapsedSeconds, state.Blank, state.Background.Name))

	result.WriteString(formatBoard(state))

	if len(state.Movable) > 0 && !state.Solved {
		cells := make([]string, len(state.Movable))
		for i, pos := range state.Movable {
			cells[i] = fmt.Sprintf("%s=%d", pos, state.Grid[pos.Y][pos.X])
		}
		result.WriteString(fmt.Sprintf("\nMovable: %s\n", strings.Join(cells, " ")))
	}

	if state.Solved {
		result.WriteString("\n🎉 SOLVED!")
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatMoveResult(pos engine.Position, result *service.MoveResult) string {
	response := ""
	if result.Success {
		response = fmt.Sprintf("✓ %s: tile %d", result.Kind, result.Tile)
		if len(result.Shifted) > 1 {
			response += fmt.Sprintf(" (shifted %v)", result.Shifted)
		}
		response += "\n"
	} else {
		response = fmt.Sprintf("✗ Nothing to move at %s\n", pos)
	}

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatPuzzleState(result.Puzzle)
	return response
}

func describeCell(state *service.PuzzleView, pos engine.Position) string {
	value := state.Grid[pos.Y][pos.X]
	if value == 0 {
		return fmt.Sprintf("Cell %s is the blank. Select a tile in its row or column to move.", pos)
	}

	home := engine.HomePosition(value)
	movable := false
	for _, m := range state.Movable {
		if m == pos {
			movable = true
			break
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Cell %s holds tile %d\n", pos, value))
	if home == pos {
		b.WriteString("It is in its home position\n")
	} else {
		b.WriteString(fmt.Sprintf("Its home position is %s\n", home))
	}
	if movable && !state.Solved {
		b.WriteString("It can move now")
	} else {
		b.WriteString("It cannot move now")
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Move History (Page %d/%d), Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		result += fmt.Sprintf("%d. %s tile %d %s→%s\n",
			move.MoveNumber, move.Action, move.Tile, move.From, move.To)
	}

	return result
}
