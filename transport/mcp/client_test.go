package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/service"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "ab12", "money": 50})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/ab12", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found: zz99"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error', got: %v", err)
	}

	err = client.apiCall(context.Background(), "GET", "/json", nil, nil)
	if err == nil || err.Error() != "session not found: zz99" {
		t.Errorf("Expected server error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		resp := service.SessionInfo{
			ID:         "ab12",
			ConfigName: gotBody["config_id"],
			Snapshot:   engine.Snapshot{Fuel: 100, MaxFuel: 100, Money: 50, AcceptingJobs: true},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(),
		callRequest("create_session", map[string]interface{}{"config_id": "classic"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Created session: ab12", "Config: classic", "Money: $50.00"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
	if gotBody["config_id"] != "classic" {
		t.Errorf("Expected config_id classic to be forwarded, got %v", gotBody)
	}
}

func TestDriveRequestFromArguments(t *testing.T) {
	req := driveRequest(map[string]interface{}{
		"accelerate":      true,
		"steer_right":     true,
		"handbrake":       true,
		"ticks":           float64(120),
		"reset":           true,
		"stop_on":         []interface{}{"passenger_boarded", "", 7, "job_completed"},
		"stop_on_blocked": true,
		"intent":          "head to the stand",
	})

	want := engine.Input{Accelerate: true, SteerRight: true, Handbrake: true}
	if req.Input != want {
		t.Errorf("Expected input %+v, got %+v", want, req.Input)
	}
	if req.Ticks != 120 || !req.Reset || !req.StopOnBlocked {
		t.Errorf("Unexpected request: %+v", req)
	}
	if len(req.StopOn) != 2 || req.StopOn[0] != engine.EventPassengerBoarded || req.StopOn[1] != engine.EventJobCompleted {
		t.Errorf("Unexpected stop_on: %v", req.StopOn)
	}
}

func TestClient_handleDrive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/ab12/drive" {
			t.Errorf("Expected POST /api/sessions/ab12/drive, got %s %s", r.Method, r.URL.Path)
		}
		var req service.DriveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad body: %v", err)
		}
		if !req.Input.Accelerate || req.Ticks != 60 {
			t.Errorf("Unexpected drive request: %+v", req)
		}

		ev := engine.Event{Type: engine.EventPassengerBoarded, Tick: 31, Message: "Passenger on board"}
		json.NewEncoder(w).Encode(service.DriveResult{
			TicksRequested: 60,
			TicksRun:       31,
			StopReason:     service.StopEvent,
			StopEvent:      &ev,
			Events:         []engine.Event{ev},
			StartPos:       tilemap.Vec2{X: 224, Y: 96},
			EndPos:         tilemap.Vec2{X: 160, Y: 96},
			StartFuel:      100,
			EndFuel:        99.6,
			FuelRisk:       "SAFE",
			HungerRisk:     "SAFE",
			NearestPump:    &tilemap.Point{X: 4, Y: 1},
			Snapshot: engine.Snapshot{
				Tick:  31,
				Phase: engine.PhaseDropoff,
				Job:   &engine.Job{ID: "j1", Pickup: tilemap.Point{X: 1, Y: 1}, Delivery: tilemap.Point{X: 8, Y: 1}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleDrive(context.Background(), callRequest("drive", map[string]interface{}{
		"session_id": "ab12",
		"accelerate": true,
		"ticks":      float64(60),
	}))
	if err != nil {
		t.Fatalf("handleDrive failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{
		"Ran 31/60 ticks",
		"Stopped: event on passenger_boarded",
		"Fuel risk: SAFE",
		"Nearest pump: (4,1)",
		"[31] passenger_boarded",
		"passenger on board, deliver to (8,1)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handleDrive_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": `unknown stop_on event "victory"`})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleDrive(context.Background(), callRequest("drive", map[string]interface{}{
		"session_id": "ab12",
		"ticks":      float64(1),
		"stop_on":    []interface{}{"victory"},
	}))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "victory") {
		t.Errorf("Expected server message, got: %s", text)
	}
}

func TestClient_handleDescribeTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/tiles/4/1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(engine.TileInfo{
			X: 4, Y: 1, ID: 4, Kind: tilemap.KindFuelPump, Walkable: true, InBounds: true,
			Center: tilemap.Vec2{X: 288, Y: 96},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleDescribeTile(context.Background(), callRequest("describe_tile", map[string]interface{}{
		"session_id": "ab12", "x": float64(4), "y": float64(1),
	}))
	if err != nil {
		t.Fatalf("handleDescribeTile failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "kind=fuel_pump drivable") || !strings.Contains(text, "Center: (288,96)") {
		t.Errorf("Unexpected tile description: %s", text)
	}

	result, _ = client.handleDescribeTile(context.Background(), callRequest("describe_tile", map[string]interface{}{
		"session_id": "ab12",
	}))
	if !result.IsError {
		t.Error("Expected error without coordinates")
	}
}

func TestClient_handleHighScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("config") != "classic" || r.URL.Query().Get("limit") != "3" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"scores": []service.ScoreEntry{
				{SessionID: "ab12", ConfigID: "classic", Earned: 14, Served: 3, Reason: "starved"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleHighScores(context.Background(), callRequest("high_scores", map[string]interface{}{
		"config_id": "classic", "limit": float64(3),
	}))
	if err != nil {
		t.Fatalf("handleHighScores failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "$14 earned, 3 served") {
		t.Errorf("Unexpected scores output: %s", text)
	}
}

func TestFormatSnapshot(t *testing.T) {
	snap := &engine.Snapshot{
		Tick:          90,
		Position:      tilemap.Vec2{X: 160, Y: 96},
		Tile:          tilemap.Point{X: 2, Y: 1},
		Heading:       90,
		Speed:         2.5,
		Fuel:          75,
		MaxFuel:       100,
		Hunger:        80,
		MaxHunger:     100,
		Money:         52,
		Served:        1,
		Phase:         engine.PhasePickup,
		AcceptingJobs: true,
		Job:           &engine.Job{ID: "j1", Pickup: tilemap.Point{X: 1, Y: 1}, Delivery: tilemap.Point{X: 8, Y: 1}},
		Blocked:       true,
		Message:       "Head to the stand",
	}

	result := formatSnapshot(snap)

	for _, field := range []string{
		"Tick: 90",
		"Position: (160.0,96.0)",
		"Fuel: 75.0/100",
		"Money: $52.00",
		"pick up at (1,1), deliver to (8,1)",
		"Status: blocked",
		"Head to the stand",
	} {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatSnapshot_Starved(t *testing.T) {
	result := formatSnapshot(&engine.Snapshot{Starved: true})
	if !strings.Contains(result, "💀 STARVED") {
		t.Errorf("Expected starved banner, got: %s", result)
	}
	if !strings.Contains(result, "Jobs paused") {
		t.Errorf("Expected jobs paused line, got: %s", result)
	}
	if formatSnapshot(nil) != "No game state available" {
		t.Error("Expected placeholder for nil snapshot")
	}
}

func TestFormatTileInfo_OutOfBounds(t *testing.T) {
	result := formatTileInfo(&engine.TileInfo{X: -1, Y: 3})
	if !strings.Contains(result, "outside the map") {
		t.Errorf("Unexpected output: %s", result)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{
		"Ruber Taxi - Complete Instructions",
		"GAME OBJECTIVE:",
		"DRIVING:",
		"JOBS:",
		"FUEL AND FOOD:",
		"MOVEMENT COMMANDS:",
		"STRATEGY:",
	} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
