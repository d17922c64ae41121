package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/settings"
)

const stripConfig = `{
  "name": "Main Strip",
  "description": "two stands joined by a road",
  "tiles": {"walkable": [1, 3, 4, 5, 6], "pickup": [3], "fuel_pump": [4], "food": [5], "service": [6]},
  "map": [
    "2,2,2,2,2,2,2,2,2,2",
    "2,3,1,1,4,5,1,1,3,2",
    "2,2,2,2,2,2,2,2,2,2"
  ],
  "spawn": {"x": 224, "y": 96},
  "spawn_heading": 90,
  "accept_jobs": true,
  "seed": 3
}`

func testSettings(t *testing.T) *settings.Settings {
	t.Helper()
	dir := t.TempDir()
	configDir := filepath.Join(dir, "configs")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "strip.json"), []byte(stripConfig), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := settings.Load("")
	if err != nil {
		t.Fatal(err)
	}
	s.ConfigDir = configDir
	s.SessionsDir = filepath.Join(dir, "sessions")
	s.ScoresDSN = ":memory:"
	return s
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Ruber Taxi Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	s := testSettings(t)

	svc, err := initializeServices(s, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	info, err := svc.game.CreateSession(context.Background(), "strip")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.SessionsDir, info.ID+".json")); err != nil {
		t.Errorf("Expected session file to be written: %v", err)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	s := testSettings(t)
	s.ConfigDir = "/non/existent/path"

	if _, err := initializeServices(s, zerolog.Nop()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		spec    string
		want    engine.Input
		wantErr bool
	}{
		{"", engine.Input{}, false},
		{"accelerate", engine.Input{Accelerate: true}, false},
		{"w, a", engine.Input{Accelerate: true, SteerLeft: true}, false},
		{"brake,handbrake,toggle_jobs", engine.Input{Brake: true, Handbrake: true, ToggleJobs: true}, false},
		{"Reverse,RIGHT,e", engine.Input{Reverse: true, SteerRight: true, Interact: true}, false},
		{"warp", engine.Input{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseInput(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInput(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseInput(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestSimulate(t *testing.T) {
	cfg, err := engine.ParseGameConfig([]byte(stripConfig))
	if err != nil {
		t.Fatal(err)
	}

	snap, events, err := simulate(cfg, engine.Input{Accelerate: true}, 120)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if snap.Tick != 120 {
		t.Errorf("Expected tick 120, got %d", snap.Tick)
	}
	if snap.Position.X >= 224 {
		t.Errorf("Expected the taxi to move west, got x=%.1f", snap.Position.X)
	}
	if snap.Job == nil || snap.Phase != engine.PhasePickup {
		t.Errorf("Expected an offered job waiting for pickup, got phase %q", snap.Phase)
	}
	for _, ev := range events {
		if ev.Type == engine.EventStarved {
			t.Errorf("Unexpected starvation after two seconds: %+v", ev)
		}
	}
}

func TestSimulateCommand(t *testing.T) {
	s := testSettings(t)

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out

	err := cmd.Run(context.Background(), []string{
		"rubertaxi", "--config-dir", s.ConfigDir,
		"simulate", "--config", "strip", "--ticks", "30", "--input", "accelerate",
	})
	if err != nil {
		t.Fatalf("simulate command failed: %v", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("Expected JSON snapshot, got %q: %v", out.String(), err)
	}
	if snap.Tick != 30 {
		t.Errorf("Expected tick 30, got %d", snap.Tick)
	}
}

func TestScoresCommand_Empty(t *testing.T) {
	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out

	if err := cmd.Run(context.Background(), []string{"rubertaxi", "--scores", ":memory:", "scores"}); err != nil {
		t.Fatalf("scores command failed: %v", err)
	}
	if !strings.Contains(out.String(), "No finished runs yet") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestLoadSettings_FlagsOverride(t *testing.T) {
	var got *settings.Settings
	cmd := newCommand()
	cmd.Commands = nil
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		var err error
		got, err = loadSettings(c)
		return err
	}

	err := cmd.Run(context.Background(), []string{"rubertaxi", "--port", "9191", "--host", "0.0.0.0", "--debug"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.Port != 9191 || got.Host != "0.0.0.0" || got.LogLevel != "debug" {
		t.Errorf("Flags not applied: %+v", got)
	}
	if got.ConfigDir == "" {
		t.Error("Config directory should keep its default")
	}
}
