package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/service"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id, configID string, config *engine.GameConfig) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id, configID string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, configID, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

// createTestConfig is one street between two taxi stands with a pump and
// a diner in the middle. The taxi spawns on tile (3,1) facing west.
func createTestConfig() *engine.GameConfig {
	cfg := engine.DefaultGameConfig()
	cfg.Name = "Test Strip"
	cfg.Description = "Test configuration"
	cfg.Map = []string{
		"2,2,2,2,2,2,2,2,2,2",
		"2,3,1,1,4,5,1,1,3,2",
		"2,2,2,2,2,2,2,2,2,2",
	}
	cfg.Spawn = tilemap.TileCenterWorld(3, 1, tilemap.DefaultTileSize)
	cfg.SpawnHeading = 90
	cfg.AcceptJobs = true
	cfg.Seed = 3
	return cfg
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := createTestConfig()
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    defaultConfig,
			"default": defaultConfig,
		},
		saved: make(map[string]*engine.GameConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ConfigID < result[j].ConfigID })
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.saved[name] = config
	return nil
}

// MockScoreStore keeps recorded runs in memory
type MockScoreStore struct {
	mu      sync.Mutex
	entries []service.ScoreEntry
	fail    bool
}

func (m *MockScoreStore) Record(ctx context.Context, entry service.ScoreEntry) (service.ScoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return service.ScoreEntry{}, errors.New("store unavailable")
	}
	entry.RunID = fmt.Sprintf("run-%d", len(m.entries)+1)
	entry.RecordedAt = time.Now()
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *MockScoreStore) Top(ctx context.Context, configID string, limit int) ([]service.ScoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []service.ScoreEntry
	for _, e := range m.entries {
		if configID == "" || e.ConfigID == configID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Earned > result[j].Earned })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockScoreStore) Entries() []service.ScoreEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.ScoreEntry(nil), m.entries...)
}

type fixture struct {
	ctx      context.Context
	sessions *MockSessionManager
	configs  *MockConfigManager
	scores   *MockScoreStore
	svc      service.GameService
	id       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		sessions: NewMockSessionManager(),
		configs:  NewMockConfigManager(),
		scores:   &MockScoreStore{},
	}
	f.svc = service.NewGameService(f.sessions, f.configs,
		service.WithScoreStore(f.scores),
		service.WithMeter(noop.NewMeterProvider().Meter("test")),
	)

	info, err := f.svc.CreateSession(f.ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	f.id = info.ID
	return f
}

func (f *fixture) engine() *engine.GameEngine {
	return f.sessions.sessions[f.id].Engine
}

// edit rewrites the session's engine state in place
func (f *fixture) edit(t *testing.T, mutate func(s *engine.State)) {
	t.Helper()
	eng := f.engine()
	state := eng.GetState()
	mutate(state)
	if err := eng.SetState(state); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
}

// parkAt puts the taxi at rest on tile p with the handbrake engaged
func (f *fixture) parkAt(t *testing.T, p tilemap.Point) {
	t.Helper()
	center := f.engine().Grid().TileCenter(p)
	f.edit(t, func(s *engine.State) {
		s.Vehicle.Position = center
		s.Vehicle.Speed = 0
		s.Vehicle.StoredMomentum = 0
		s.Vehicle.HandbrakeEngaged = true
	})
}

// completeJob delivers the current fare by parking at each end of it
func (f *fixture) completeJob(t *testing.T) *service.DriveResult {
	t.Helper()
	job := f.engine().GetState().Jobs.Current
	if job == nil {
		t.Fatal("Expected a job on offer")
	}

	f.parkAt(t, job.Pickup)
	res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
		Ticks:  5,
		StopOn: []engine.EventType{engine.EventPassengerBoarded},
	})
	if err != nil {
		t.Fatalf("Drive failed: %v", err)
	}
	if res.StopReason != service.StopEvent {
		t.Fatalf("Expected to board a passenger, got stop reason %s", res.StopReason)
	}

	f.parkAt(t, job.Delivery)
	res, err = f.svc.Drive(f.ctx, f.id, service.DriveRequest{
		Ticks:  5,
		StopOn: []engine.EventType{engine.EventJobCompleted},
	})
	if err != nil {
		t.Fatalf("Drive failed: %v", err)
	}
	if res.StopReason != service.StopEvent {
		t.Fatalf("Expected to complete the job, got stop reason %s", res.StopReason)
	}
	return res
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	tests := []struct {
		name       string
		configName string
		wantID     string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantID:     "default",
		},
		{
			name:       "create with specific config",
			configName: "test",
			wantID:     "test",
		},
		{
			name:       "create with .json suffix",
			configName: "test.json",
			wantID:     "test",
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if session == nil {
				t.Fatal("CreateSession() returned nil session")
			}
			if session.ConfigName != tt.wantID {
				t.Errorf("Expected config id %s, got %s", tt.wantID, session.ConfigName)
			}
			if session.Snapshot.Tick != 0 {
				t.Errorf("Expected tick 0, got %d", session.Snapshot.Tick)
			}
			if !session.Snapshot.AcceptingJobs {
				t.Error("Expected the session to accept jobs from the config")
			}
		})
	}

	t.Run("unknown config lists the available ones", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "nonexistent")
		if err == nil {
			t.Fatal("Expected error")
		}
		want := "config 'nonexistent' not found. Available configs: [default test]"
		if err.Error() != want {
			t.Errorf("Expected %q, got %q", want, err.Error())
		}
	})
}

func TestGameService_Drive(t *testing.T) {
	t.Run("accelerating moves the taxi west", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Input: engine.Input{Accelerate: true},
			Ticks: 10,
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.TicksRun != 10 || res.TicksRequested != 10 {
			t.Errorf("Expected 10 ticks, got run=%d requested=%d", res.TicksRun, res.TicksRequested)
		}
		if res.StopReason != service.StopCompleted {
			t.Errorf("Expected stop reason completed, got %s", res.StopReason)
		}
		if res.EndPos.X >= res.StartPos.X {
			t.Errorf("Expected taxi to move west: start %+v end %+v", res.StartPos, res.EndPos)
		}
		if res.EndPos.Y != res.StartPos.Y {
			t.Errorf("Expected no vertical drift: start %+v end %+v", res.StartPos, res.EndPos)
		}
		if res.EndFuel >= res.StartFuel {
			t.Errorf("Expected fuel to burn: start %g end %g", res.StartFuel, res.EndFuel)
		}
		if res.Snapshot.Tick != 10 {
			t.Errorf("Expected snapshot tick 10, got %d", res.Snapshot.Tick)
		}
		if res.FuelRisk != "SAFE" || res.HungerRisk != "SAFE" {
			t.Errorf("Expected SAFE risks, got fuel=%s hunger=%s", res.FuelRisk, res.HungerRisk)
		}
		if res.NearestPump == nil || *res.NearestPump != (tilemap.Point{X: 4, Y: 1}) {
			t.Errorf("Expected nearest pump (4,1), got %v", res.NearestPump)
		}
		if res.NearestDiner == nil || *res.NearestDiner != (tilemap.Point{X: 5, Y: 1}) {
			t.Errorf("Expected nearest diner (5,1), got %v", res.NearestDiner)
		}
		if f.sessions.saves == 0 {
			t.Error("Expected the session to be saved after driving")
		}
	})

	t.Run("zero ticks runs one", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.TicksRun != 1 {
			t.Errorf("Expected 1 tick, got %d", res.TicksRun)
		}
	})

	t.Run("requests above the limit are truncated", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{Ticks: 5000})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if !res.Truncated || res.Limit != engine.MaxDriveTicks {
			t.Errorf("Expected truncation at %d, got truncated=%v limit=%d", engine.MaxDriveTicks, res.Truncated, res.Limit)
		}
		if res.TicksRun != engine.MaxDriveTicks {
			t.Errorf("Expected %d ticks run, got %d", engine.MaxDriveTicks, res.TicksRun)
		}
		if res.TicksRequested != 5000 {
			t.Errorf("Expected 5000 ticks requested, got %d", res.TicksRequested)
		}
	})

	t.Run("stop on blocked", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Input:         engine.Input{Accelerate: true},
			Ticks:         engine.MaxDriveTicks,
			StopOnBlocked: true,
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.StopReason != service.StopBlocked {
			t.Fatalf("Expected stop reason blocked, got %s", res.StopReason)
		}
		if res.TicksRun >= engine.MaxDriveTicks {
			t.Errorf("Expected an early stop, ran %d ticks", res.TicksRun)
		}
		if !res.Snapshot.Blocked {
			t.Error("Expected final snapshot to be blocked")
		}
		if tx, _ := f.engine().Grid().WorldToTile(res.EndPos.X, res.EndPos.Y); tx != 1 {
			t.Errorf("Expected to stop on the westmost road tile, got tile x=%d", tx)
		}
	})

	t.Run("without stop on blocked the taxi keeps pushing", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Input: engine.Input{Accelerate: true},
			Ticks: 200,
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.StopReason != service.StopCompleted || res.TicksRun != 200 {
			t.Errorf("Expected 200 completed ticks, got %s after %d", res.StopReason, res.TicksRun)
		}
	})

	t.Run("stop on event", func(t *testing.T) {
		f := newFixture(t)
		job := f.engine().GetState().Jobs.Current
		if job == nil {
			t.Fatal("Expected a job on offer")
		}
		f.parkAt(t, job.Pickup)

		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Ticks:  50,
			StopOn: []engine.EventType{engine.EventPassengerBoarded},
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.StopReason != service.StopEvent {
			t.Fatalf("Expected stop reason event, got %s", res.StopReason)
		}
		if res.StopEvent == nil || res.StopEvent.Type != engine.EventPassengerBoarded {
			t.Errorf("Expected passenger_boarded stop event, got %+v", res.StopEvent)
		}
		if res.TicksRun != 1 {
			t.Errorf("Expected to stop after 1 tick, got %d", res.TicksRun)
		}
		if res.Snapshot.Phase != engine.PhaseDropoff {
			t.Errorf("Expected dropoff phase, got %s", res.Snapshot.Phase)
		}
	})

	t.Run("completed fare credits money", func(t *testing.T) {
		f := newFixture(t)
		res := f.completeJob(t)

		if res.MoneyDelta != 2 {
			t.Errorf("Expected a $2 fare, got money delta %g", res.MoneyDelta)
		}
		if res.Snapshot.Served != 1 {
			t.Errorf("Expected 1 served, got %d", res.Snapshot.Served)
		}
		if res.Snapshot.Phase != engine.PhasePickup {
			t.Errorf("Expected a new fare to be offered, phase %s", res.Snapshot.Phase)
		}
	})

	t.Run("edge inputs fire once", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Input: engine.Input{ToggleJobs: true},
			Ticks: 3,
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.Snapshot.AcceptingJobs {
			t.Error("Expected jobs to be toggled off exactly once")
		}
	})

	t.Run("starving stops the drive", func(t *testing.T) {
		f := newFixture(t)
		f.edit(t, func(s *engine.State) { s.Economy.Hunger = 0.001 })

		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Input: engine.Input{Accelerate: true},
			Ticks: 100,
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.StopReason != service.StopStarved {
			t.Fatalf("Expected stop reason starved, got %s", res.StopReason)
		}
		if res.TicksRun >= 100 {
			t.Errorf("Expected an early stop, ran %d ticks", res.TicksRun)
		}
		if res.Snapshot.Speed != 0 {
			t.Errorf("Expected a starved taxi to stand still, speed %g", res.Snapshot.Speed)
		}
		if res.HungerRisk != "CRITICAL" {
			t.Errorf("Expected CRITICAL hunger risk, got %s", res.HungerRisk)
		}
	})

	t.Run("running dry strands the taxi", func(t *testing.T) {
		f := newFixture(t)
		f.edit(t, func(s *engine.State) { s.Vehicle.Fuel = 0.01 })

		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Input: engine.Input{Accelerate: true},
			Ticks: 100,
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.StopReason != service.StopStranded {
			t.Fatalf("Expected stop reason stranded, got %s", res.StopReason)
		}
		if res.EndFuel != 0 {
			t.Errorf("Expected an empty tank, got %g", res.EndFuel)
		}
		if res.FuelRisk != "CRITICAL" {
			t.Errorf("Expected CRITICAL fuel risk, got %s", res.FuelRisk)
		}
	})

	t.Run("stranded taxi coasts on a handbrake boost", func(t *testing.T) {
		f := newFixture(t)
		f.edit(t, func(s *engine.State) {
			s.Vehicle.Fuel = 0
			s.Vehicle.Speed = 0
			s.Vehicle.HandbrakeEngaged = true
			s.Stranded = true
		})

		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Input: engine.Input{Handbrake: true},
			Ticks: 30,
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.TicksRun < 2 {
			t.Errorf("Expected the boost to coast past the first tick, ran %d", res.TicksRun)
		}
		for _, ev := range res.Events {
			if ev.Type == engine.EventStranded || ev.Type == engine.EventRecovered {
				t.Errorf("Expected no %s event while the tank stays empty", ev.Type)
			}
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Drive(f.ctx, "nonexistent", service.DriveRequest{Ticks: 1}); err == nil {
			t.Error("Expected error for unknown session")
		}
	})
}

func TestGameService_Scores(t *testing.T) {
	t.Run("reset records a run with fares", func(t *testing.T) {
		f := newFixture(t)
		f.completeJob(t)

		snap, err := f.svc.Reset(f.ctx, f.id)
		if err != nil {
			t.Fatalf("Reset failed: %v", err)
		}
		if snap.Served != 0 || snap.Tick != 0 {
			t.Errorf("Expected a fresh run, got served=%d tick=%d", snap.Served, snap.Tick)
		}

		entries := f.scores.Entries()
		if len(entries) != 1 {
			t.Fatalf("Expected 1 recorded run, got %d", len(entries))
		}
		e := entries[0]
		if e.Reason != service.ReasonReset || e.Served != 1 || e.Earned != 2 || e.Run != 0 {
			t.Errorf("Unexpected entry %+v", e)
		}
		if e.SessionID != f.id || e.ConfigID != "test" {
			t.Errorf("Unexpected entry identity %+v", e)
		}

		// The new run has served nobody yet
		if _, err := f.svc.Reset(f.ctx, f.id); err != nil {
			t.Fatalf("Reset failed: %v", err)
		}
		if got := len(f.scores.Entries()); got != 1 {
			t.Errorf("Expected empty runs to be skipped, got %d entries", got)
		}
	})

	t.Run("drive with reset records the previous run", func(t *testing.T) {
		f := newFixture(t)
		f.completeJob(t)

		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{Reset: true, Ticks: 1})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.Snapshot.Tick != 1 {
			t.Errorf("Expected the drive to start from a fresh run, tick %d", res.Snapshot.Tick)
		}
		if got := len(f.scores.Entries()); got != 1 {
			t.Errorf("Expected 1 recorded run, got %d", got)
		}

		info, err := f.svc.GetSession(f.ctx, f.id)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if info.Totals.Runs != 1 || info.Totals.TotalServed != 1 || info.Totals.TotalEarned != 2 {
			t.Errorf("Unexpected totals %+v", info.Totals)
		}
	})

	t.Run("starved run is recorded once", func(t *testing.T) {
		f := newFixture(t)
		f.completeJob(t)
		f.edit(t, func(s *engine.State) {
			s.Vehicle.HandbrakeEngaged = false
			s.Economy.Hunger = 0.001
		})

		res, err := f.svc.Drive(f.ctx, f.id, service.DriveRequest{
			Input: engine.Input{Accelerate: true},
			Ticks: 100,
		})
		if err != nil {
			t.Fatalf("Drive failed: %v", err)
		}
		if res.StopReason != service.StopStarved {
			t.Fatalf("Expected stop reason starved, got %s", res.StopReason)
		}

		entries := f.scores.Entries()
		if len(entries) != 1 || entries[0].Reason != service.ReasonStarved {
			t.Fatalf("Expected one starved entry, got %+v", entries)
		}

		if _, err := f.svc.Reset(f.ctx, f.id); err != nil {
			t.Fatalf("Reset failed: %v", err)
		}
		if got := len(f.scores.Entries()); got != 1 {
			t.Errorf("Expected the starved run not to be recorded again, got %d entries", got)
		}
	})

	t.Run("deleting a session retires its run", func(t *testing.T) {
		f := newFixture(t)
		f.completeJob(t)

		if err := f.svc.DeleteSession(f.ctx, f.id); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		entries := f.scores.Entries()
		if len(entries) != 1 || entries[0].Reason != service.ReasonRetired {
			t.Fatalf("Expected one retired entry, got %+v", entries)
		}
		if _, err := f.svc.GetSession(f.ctx, f.id); err == nil {
			t.Error("Expected session to be gone")
		}
	})

	t.Run("store failure does not fail the reset", func(t *testing.T) {
		f := newFixture(t)
		f.completeJob(t)
		f.scores.fail = true

		if _, err := f.svc.Reset(f.ctx, f.id); err != nil {
			t.Fatalf("Reset should succeed when the store fails: %v", err)
		}
	})

	t.Run("high scores", func(t *testing.T) {
		f := newFixture(t)
		f.completeJob(t)
		f.svc.Reset(f.ctx, f.id)

		scores, err := f.svc.HighScores(f.ctx, "test", 0)
		if err != nil {
			t.Fatalf("HighScores failed: %v", err)
		}
		if len(scores) != 1 || scores[0].RunID == "" {
			t.Errorf("Expected one scored run, got %+v", scores)
		}

		scores, err = f.svc.HighScores(f.ctx, "other", 5)
		if err != nil {
			t.Fatalf("HighScores failed: %v", err)
		}
		if len(scores) != 0 {
			t.Errorf("Expected no scores for another config, got %d", len(scores))
		}
	})

	t.Run("high scores without a store", func(t *testing.T) {
		svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
		scores, err := svc.HighScores(context.Background(), "", 10)
		if err != nil {
			t.Fatalf("HighScores failed: %v", err)
		}
		if scores == nil || len(scores) != 0 {
			t.Errorf("Expected an empty list, got %v", scores)
		}
	})
}

func TestGameService_Advance(t *testing.T) {
	f := newFixture(t)

	snap, err := f.svc.Advance(f.ctx, f.id, engine.Input{Accelerate: true}, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if snap.Tick != 6 {
		t.Errorf("Expected 6 steps for 100ms, got tick %d", snap.Tick)
	}

	snap, err = f.svc.Advance(f.ctx, f.id, engine.Input{}, 0)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if snap.Tick != 6 {
		t.Errorf("Expected a zero interval not to step, got tick %d", snap.Tick)
	}

	snap, err = f.svc.Advance(f.ctx, f.id, engine.Input{}, 10*time.Second)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if snap.Tick != 6+engine.MaxStepsPerTick {
		t.Errorf("Expected catch-up to be capped at %d steps, got tick %d", engine.MaxStepsPerTick, snap.Tick)
	}

	if f.sessions.saves != 0 {
		t.Errorf("Expected real-time advancement not to persist, got %d saves", f.sessions.saves)
	}

	if _, err := f.svc.Advance(f.ctx, "nonexistent", engine.Input{}, time.Second); err == nil {
		t.Error("Expected error for unknown session")
	}
}

func TestGameService_ToggleJobs(t *testing.T) {
	f := newFixture(t)

	snap, err := f.svc.ToggleJobs(f.ctx, f.id)
	if err != nil {
		t.Fatalf("ToggleJobs failed: %v", err)
	}
	if snap.AcceptingJobs {
		t.Error("Expected jobs to be off")
	}
	if snap.Job == nil {
		t.Error("Expected the offered fare to survive going off duty")
	}

	snap, err = f.svc.ToggleJobs(f.ctx, f.id)
	if err != nil {
		t.Fatalf("ToggleJobs failed: %v", err)
	}
	if !snap.AcceptingJobs {
		t.Error("Expected jobs to be back on")
	}
}

func TestGameService_DescribeTile(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		x, y     int
		kind     tilemap.Kind
		walkable bool
		inBounds bool
	}{
		{1, 1, tilemap.KindPickup, true, true},
		{4, 1, tilemap.KindFuelPump, true, true},
		{5, 1, tilemap.KindFood, true, true},
		{2, 1, tilemap.KindNone, true, true},
		{0, 0, tilemap.KindNone, false, true},
		{-1, 0, tilemap.KindNone, false, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d,%d", tt.x, tt.y), func(t *testing.T) {
			info, err := f.svc.DescribeTile(f.ctx, f.id, tt.x, tt.y)
			if err != nil {
				t.Fatalf("DescribeTile failed: %v", err)
			}
			if info.Kind != tt.kind || info.Walkable != tt.walkable || info.InBounds != tt.inBounds {
				t.Errorf("Unexpected tile info %+v", info)
			}
		})
	}
}

func TestGameService_ListSessions(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.CreateSession(f.ctx, ""); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	sessions, err := f.svc.ListSessions(f.ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(sessions))
	}
}

func TestGameService_Configs(t *testing.T) {
	f := newFixture(t)

	configs, err := f.svc.ListConfigs(f.ctx)
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(configs))
	}

	cfg, err := f.svc.LoadConfig(f.ctx, "test")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "Test Strip" {
		t.Errorf("Expected Test Strip, got %s", cfg.Name)
	}

	if err := f.svc.SaveConfig(f.ctx, "copy", cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if f.configs.saved["copy"] != cfg {
		t.Error("Expected config to be handed to the config manager")
	}
}
