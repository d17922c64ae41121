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

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/service"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Ruber Taxi",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ruber Taxi - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Drive a taxi around a tile city, pick up passengers at stands and deliver
them for fares. Keep the tank and the driver fed: fuel drains while moving
and is bought at pumps, hunger drains while moving and is fixed at diners.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: session management
- game_state: current snapshot (position, heading, fuel, hunger, money, job)
- drive: hold an input for a number of ticks (60 ticks = 1 second)
- toggle_jobs: pause or resume job offers
- reset_game: start a new run (the finished run goes to the score table)
- describe_tile: inspect one map tile
- list_configs / high_scores / game_instructions

NOTE: The 'intent' parameter on drive serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func boolProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config ID from list_configs (defaults to the server default)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get session details including run totals",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current snapshot of a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drive",
		Description: "Hold a control input for a number of ticks. Handbrake and toggle_jobs fire on the first tick only. Stops early on stop_on events, when blocked (if stop_on_blocked), or when the run ends.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id":  sessionIDProp(),
				"accelerate":  boolProp("Throttle forward"),
				"reverse":     boolProp("Throttle backward"),
				"brake":       boolProp("Brake toward zero speed"),
				"steer_left":  boolProp("Steer left"),
				"steer_right": boolProp("Steer right"),
				"handbrake":   boolProp("Toggle the handbrake (needed to park at pumps and diners)"),
				"interact":    boolProp("Interact with the current tile"),
				"toggle_jobs": boolProp("Toggle job offers on the first tick"),
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Ticks to run (1-%d, 60 per second)", engine.MaxDriveTicks),
				},
				"reset": boolProp("Reset the run before driving"),
				"stop_on": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Event types that end the drive early, e.g. passenger_boarded, job_completed, fuel_purchased",
				},
				"stop_on_blocked": boolProp("Stop as soon as the taxi hits a wall"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "What you are trying to achieve with this drive",
				},
			},
			Required: []string{"session_id", "ticks"},
		},
	}, c.handleDrive)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_jobs",
		Description: "Pause or resume job offers",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleToggleJobs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Start a new run. Run totals are kept.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Describe one map tile: its id, kind and whether the taxi can drive on it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Tile column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Tile row (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)

	// Configs and scores
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_scores",
		Description: "Best finished runs, optionally for one config",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Only runs on this config",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum entries",
				},
			},
		},
	}, c.handleHighScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Run serves the tools over stdio until the input closes
func (c *Client) Run() error {
	return server.ServeStdio(c.mcpServer)
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

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatSnapshot(&session.Snapshot))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Money: $%.2f, Served: %d, Last used: %s)\n",
			s.ID, s.ConfigName, s.Snapshot.Money, s.Snapshot.Served, s.LastAccessedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", url.PathEscape(sessionID)), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

// driveRequest builds the REST body from tool arguments
func driveRequest(args map[string]interface{}) service.DriveRequest {
	flag := func(key string) bool {
		v, _ := args[key].(bool)
		return v
	}

	req := service.DriveRequest{
		Input: engine.Input{
			Accelerate: flag("accelerate"),
			Reverse:    flag("reverse"),
			Brake:      flag("brake"),
			SteerLeft:  flag("steer_left"),
			SteerRight: flag("steer_right"),
			Handbrake:  flag("handbrake"),
			Interact:   flag("interact"),
			ToggleJobs: flag("toggle_jobs"),
		},
		Reset:         flag("reset"),
		StopOnBlocked: flag("stop_on_blocked"),
	}
	req.Ticks, _ = intArg(args, "ticks")

	if raw, ok := args["stop_on"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok && s != "" {
				req.StopOn = append(req.StopOn, engine.EventType(s))
			}
		}
	}
	return req
}

func (c *Client) handleDrive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	var result service.DriveResult
	path := fmt.Sprintf("/api/sessions/%s/drive", url.PathEscape(sessionID))
	if err := c.apiCall(ctx, "POST", path, driveRequest(args), &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDriveResult(sessionID, &result)), nil
}

func (c *Client) handleToggleJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap engine.Snapshot
	path := fmt.Sprintf("/api/sessions/%s/jobs/toggle", url.PathEscape(sessionID))
	if err := c.apiCall(ctx, "POST", path, nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "paused"
	if snap.AcceptingJobs {
		status = "accepting"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Jobs %s\n\n%s", status, formatSnapshot(&snap))), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message  string           `json:"message"`
		Snapshot *engine.Snapshot `json:"snapshot"`
	}

	path := fmt.Sprintf("/api/sessions/%s/reset", url.PathEscape(sessionID))
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.Snapshot))), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var info engine.TileInfo
	path := fmt.Sprintf("/api/sessions/%s/tiles/%d/%d", url.PathEscape(sessionID), x, y)
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTileInfo(&info)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Map: %dx%d, Stands: %d, Pumps: %d, Diners: %d, Start: $%.0f\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Width, config.Height, config.Pickups, config.FuelPumps, config.Diners, config.StartingMoney)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleHighScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query := url.Values{}
	if configID, _ := args["config_id"].(string); configID != "" {
		query.Set("config", configID)
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}

	path := "/api/scores"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Scores []service.ScoreEntry `json:"scores"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatScores(response.Scores)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `🚕 Ruber Taxi - Complete Instructions

GAME OBJECTIVE:
Earn money by driving passengers between taxi stands. A run ends when the
driver starves; the run's earnings then go to the high-score table.

THE WORLD:
• The map is a grid of square tiles (64 px by default). Positions are in pixels.
• Roads and special tiles are drivable. Grass and buildings block the taxi.
• Tile kinds: pickup (taxi stand), fuel_pump, food (diner), service (garage).
• Use describe_tile to check a tile before planning a route through it.

DRIVING:
• Heading is in degrees. Heading 0 drives up the screen (-y), 90 drives left (-x).
• accelerate / reverse change speed, brake pulls it toward zero, friction slows
  the taxi when no pedal is held.
• steer_left / steer_right turn the wheels. Turning only happens while moving.
• Walls stop the taxi dead: speed drops to zero and the "blocked" flag is set.
• One tick is 1/60 s. drive runs up to 600 ticks per call.

JOBS:
• While accepting jobs and idle, a job is offered: a pickup stand and a
  different delivery stand.
• Reach the pickup stand (within 50 px of its center) to board the passenger,
  then reach the delivery stand to collect the fare.
• Fare = floor(0.5 × distance / 100) dollars, distance in pixels between stands.
• toggle_jobs pauses new offers; a passenger already on board still rides.

FUEL AND FOOD:
• Fuel drains while moving. At 0 fuel the taxi coasts to a stop and is stranded.
• Park on a pump (handbrake on, nearly stopped) to buy fuel: $1 buys 2 units.
• Hunger drains while moving. At 0 the driver starves and the run ends.
• Park on a diner with at least $10 to eat and refill hunger.

MOVEMENT COMMANDS:
• drive {"accelerate": true, "ticks": 60} - one second of throttle
• drive {"brake": true, "ticks": 30} - slow down
• drive {"handbrake": true, "ticks": 1} - toggle the handbrake to park
• drive {"accelerate": true, "stop_on": ["passenger_boarded"], "ticks": 600}
• drive {"accelerate": true, "stop_on_blocked": true, "ticks": 300}

STRATEGY:
• Check game_state after each drive: position, tile, speed, fuel risk and the
  nearest pump and diner are reported.
• Short drives with stop conditions beat long blind ones.
• Plan a refuel stop before fuel risk reaches CRITICAL.

Good luck, and mind the meter!`

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nRuns: %d, Total served: %d, Total earned: $%d\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.Totals.Runs, session.Totals.TotalServed, session.Totals.TotalEarned,
		formatSnapshot(&session.Snapshot))
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Tick: %d | Position: (%.1f,%.1f) | Tile: (%d,%d)",
		snap.Tick, snap.Position.X, snap.Position.Y, snap.Tile.X, snap.Tile.Y)
	if snap.TileKind != "" {
		fmt.Fprintf(&b, " %s", snap.TileKind)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Heading: %.1f° | Speed: %.2f | Steering: %.2f",
		snap.Heading, snap.Speed, snap.SteeringAngle)
	if snap.Handbrake {
		b.WriteString(" | Handbrake ON")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Fuel: %.1f/%.0f | Hunger: %.1f/%.0f | Money: $%.2f | Served: %d\n",
		snap.Fuel, snap.MaxFuel, snap.Hunger, snap.MaxHunger, snap.Money, snap.Served)

	switch {
	case snap.Job != nil && snap.Phase == engine.PhasePickup:
		fmt.Fprintf(&b, "Job %s: pick up at (%d,%d), deliver to (%d,%d)\n",
			snap.Job.ID, snap.Job.Pickup.X, snap.Job.Pickup.Y, snap.Job.Delivery.X, snap.Job.Delivery.Y)
	case snap.Job != nil && snap.Phase == engine.PhaseDropoff:
		fmt.Fprintf(&b, "Job %s: passenger on board, deliver to (%d,%d)\n",
			snap.Job.ID, snap.Job.Delivery.X, snap.Job.Delivery.Y)
	case !snap.AcceptingJobs:
		b.WriteString("Jobs paused\n")
	default:
		b.WriteString("No job\n")
	}

	var flags []string
	if snap.Refueling {
		flags = append(flags, "refueling")
	}
	if snap.Blocked {
		flags = append(flags, "blocked")
	}
	if snap.Stranded {
		flags = append(flags, "stranded")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, "Status: %s\n", strings.Join(flags, ", "))
	}

	if snap.Starved {
		b.WriteString("\n💀 STARVED - reset to start a new run\n")
	}

	if snap.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", snap.Message)
	}

	return b.String()
}

func formatDriveResult(sessionID string, result *service.DriveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Ran %d/%d ticks", result.TicksRun, result.TicksRequested)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Stopped: %s", result.StopReason)
	if result.StopEvent != nil {
		fmt.Fprintf(&b, " on %s", result.StopEvent.Type)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Moved (%.1f,%.1f) → (%.1f,%.1f) | Fuel %.1f → %.1f | Money %+.2f\n",
		result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y,
		result.StartFuel, result.EndFuel, result.MoneyDelta)

	if result.FuelRisk != "" || result.HungerRisk != "" {
		fmt.Fprintf(&b, "Fuel risk: %s | Hunger risk: %s\n", result.FuelRisk, result.HungerRisk)
	}
	if result.NearestPump != nil {
		fmt.Fprintf(&b, "Nearest pump: (%d,%d)\n", result.NearestPump.X, result.NearestPump.Y)
	}
	if result.NearestDiner != nil {
		fmt.Fprintf(&b, "Nearest diner: (%d,%d)\n", result.NearestDiner.X, result.NearestDiner.Y)
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- [%d] %s: %s\n", event.Tick, event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(&result.Snapshot))
	return b.String()
}

func formatTileInfo(info *engine.TileInfo) string {
	if !info.InBounds {
		return fmt.Sprintf("Tile (%d,%d) is outside the map", info.X, info.Y)
	}

	kind := "plain"
	if info.Kind != "" {
		kind = string(info.Kind)
	}
	passable := "blocked"
	if info.Walkable {
		passable = "drivable"
	}
	return fmt.Sprintf("Tile (%d,%d): id=%d kind=%s %s\nCenter: (%.0f,%.0f)",
		info.X, info.Y, info.ID, kind, passable, info.Center.X, info.Center.Y)
}

func formatScores(scores []service.ScoreEntry) string {
	if len(scores) == 0 {
		return "No finished runs yet"
	}

	var b strings.Builder
	b.WriteString("High Scores:\n\n")
	for i, s := range scores {
		fmt.Fprintf(&b, "%2d. $%d earned, %d served (%s, session %s, run %d, %s)\n",
			i+1, s.Earned, s.Served, s.ConfigID, s.SessionID, s.Run, s.Reason)
	}
	return b.String()
}
