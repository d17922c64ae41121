package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// DefaultScoreLimit is the number of high scores returned when none is asked for
const DefaultScoreLimit = 10

// Score reasons
const (
	ReasonStarved = "starved"
	ReasonReset   = "reset"
	ReasonRetired = "retired"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   ScoreStore
	logger   zerolog.Logger
	meter    metric.Meter
	metrics  *serviceMetrics
	mu       sync.RWMutex
}

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithScoreStore records finished runs in store
func WithScoreStore(store ScoreStore) Option {
	return func(s *gameServiceImpl) { s.scores = store }
}

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = logger }
}

// WithMeter sets the meter the service counters are created on. The default
// is the global otel meter provider, a no-op unless an SDK is installed.
func WithMeter(meter metric.Meter) Option {
	return func(s *gameServiceImpl) { s.meter = meter }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.meter == nil {
		s.meter = otel.Meter(MeterName)
	}
	s.metrics = newServiceMetrics(s.meter, s.logger)
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	state := sess.Engine.GetState()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       sess.Engine.Snapshot(),
		Totals: Totals{
			Runs:        state.Runs,
			TotalServed: state.TotalServed,
			TotalEarned: state.TotalEarned,
		},
		GameConfig: sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	configID := strings.TrimSuffix(configName, ".json")
	if configID != "" {
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.sessionCreated(ctx, configID)
	s.logger.Info().Str("session", sess.ID).Str("config", configID).Msg("session created")

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session. A run with delivered fares is recorded first.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		s.finishRun(ctx, sess, ReasonRetired)
	}

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// Drive applies one input for up to MaxDriveTicks ticks. It stops early when
// the driver starves or is stranded, when the car is blocked and the caller
// asked to stop on that, or when an event listed in StopOn fires.
func (s *gameServiceImpl) Drive(ctx context.Context, sessionID string, req DriveRequest) (*DriveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	eng := sess.Engine
	if req.Reset {
		s.finishRun(ctx, sess, ReasonReset)
		eng.Reset()
	}

	ticks := req.Ticks
	if ticks <= 0 {
		ticks = 1
	}

	result := &DriveResult{
		TicksRequested: ticks,
		Events:         make([]engine.Event, 0),
		StopReason:     StopCompleted,
	}
	if ticks > engine.MaxDriveTicks {
		result.Truncated = true
		result.Limit = engine.MaxDriveTicks
		ticks = engine.MaxDriveTicks
	}

	start := eng.Snapshot()
	result.StartPos = start.Position
	result.StartFuel = start.Fuel

	stopOn := make(map[engine.EventType]bool, len(req.StopOn))
	for _, t := range req.StopOn {
		stopOn[t] = true
	}

	in := req.Input
	for i := 0; i < ticks; i++ {
		snap := eng.Step(in)
		in = in.Levels()
		result.TicksRun++
		result.Events = append(result.Events, snap.Events...)

		if ev := firstEventOf(snap.Events, stopOn); ev != nil {
			result.StopReason = StopEvent
			result.StopEvent = ev
			break
		}
		if snap.Starved {
			result.StopReason = StopStarved
			break
		}
		if snap.Stranded && snap.Speed == 0 {
			result.StopReason = StopStranded
			break
		}
		if snap.Blocked && req.StopOnBlocked {
			result.StopReason = StopBlocked
			break
		}
	}

	end := eng.Snapshot()
	result.Snapshot = end
	result.EndPos = end.Position
	result.EndFuel = end.Fuel
	result.MoneyDelta = end.Money - start.Money
	result.Message = end.Message

	// Decision aids
	cfg := eng.GetConfig()
	state := eng.GetState()
	result.FuelRisk = riskCode(engine.AnalyzeFuelRisk(eng.Grid(), state.Vehicle, cfg.Vehicle))
	result.HungerRisk = riskCode(engine.AnalyzeHungerRisk(end.Hunger, cfg.Economy))
	result.NearestPump = nearest(eng.Grid(), end.Position, tilemap.KindFuelPump)
	result.NearestDiner = nearest(eng.Grid(), end.Position, tilemap.KindFood)

	s.metrics.observe(ctx, sess.ConfigID, result.TicksRun, result.Events)
	if hasEvent(result.Events, engine.EventStarved) {
		s.finishRun(ctx, sess, ReasonStarved)
	}

	// Auto-save session after driving
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Msg("failed to persist session after drive")
	}

	return result, nil
}

// Advance runs the real-time clock of a session forward by dt. Only ticks
// that produced events touch persistence.
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, in engine.Input, dt time.Duration) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	before := sess.Engine.Snapshot().Tick
	snap := sess.Engine.Tick(in, dt)

	s.metrics.observe(ctx, sess.ConfigID, int(snap.Tick-before), snap.Events)
	if len(snap.Events) > 0 {
		if hasEvent(snap.Events, engine.EventStarved) {
			s.finishRun(ctx, sess, ReasonStarved)
		}
		s.sessions.UpdateLastAccessed(sessionID)
	}

	return &snap, nil
}

// ToggleJobs flips whether the driver accepts fares
func (s *gameServiceImpl) ToggleJobs(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	snap := sess.Engine.ToggleJobs()
	s.sessions.UpdateLastAccessed(sessionID)

	return &snap, nil
}

// Reset restarts the session's run, recording the finished one
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.finishRun(ctx, sess, ReasonReset)
	snap := sess.Engine.Reset()
	s.sessions.UpdateLastAccessed(sessionID)

	return &snap, nil
}

// GetSnapshot returns the latest snapshot of a session
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	snap := sess.Engine.Snapshot()
	return &snap, nil
}

// DescribeTile reports the tile at (x, y) of a session's map
func (s *gameServiceImpl) DescribeTile(ctx context.Context, sessionID string, x, y int) (*engine.TileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	info := sess.Engine.DescribeTile(x, y)
	return &info, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// HighScores returns the best finished runs, optionally for one config
func (s *gameServiceImpl) HighScores(ctx context.Context, configID string, limit int) ([]ScoreEntry, error) {
	if s.scores == nil {
		return []ScoreEntry{}, nil
	}
	if limit <= 0 {
		limit = DefaultScoreLimit
	}
	return s.scores.Top(ctx, configID, limit)
}

// finishRun records the session's current run once, if it delivered anything.
// Callers hold s.mu.
func (s *gameServiceImpl) finishRun(ctx context.Context, sess *Session, reason string) {
	if s.scores == nil {
		return
	}
	state := sess.Engine.GetState()
	if state.Jobs.Served == 0 || sess.ScoredRuns > state.Runs {
		return
	}

	entry, err := s.scores.Record(ctx, ScoreEntry{
		SessionID: sess.ID,
		ConfigID:  sess.ConfigID,
		Run:       state.Runs,
		Served:    state.Jobs.Served,
		Earned:    state.Jobs.Earned,
		Money:     state.Economy.Money,
		Ticks:     state.Tick,
		Reason:    reason,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("session", sess.ID).Msg("failed to record high score")
		return
	}

	sess.ScoredRuns = state.Runs + 1
	s.logger.Info().
		Str("session", sess.ID).
		Str("run_id", entry.RunID).
		Int("served", entry.Served).
		Int("earned", entry.Earned).
		Str("reason", reason).
		Msg("run recorded")
}

func firstEventOf(events []engine.Event, types map[engine.EventType]bool) *engine.Event {
	if len(types) == 0 {
		return nil
	}
	for i := range events {
		if types[events[i].Type] {
			ev := events[i]
			return &ev
		}
	}
	return nil
}

func hasEvent(events []engine.Event, t engine.EventType) bool {
	for _, ev := range events {
		if ev.Type == t {
			return true
		}
	}
	return false
}

func nearest(grid *tilemap.Grid, from tilemap.Vec2, kind tilemap.Kind) *tilemap.Point {
	p, _, ok := engine.FindNearestOfKind(grid, from, kind)
	if !ok {
		return nil
	}
	return &p
}

func riskCode(text string) string {
	head, _, found := strings.Cut(text, ":")
	if !found {
		return "UNKNOWN"
	}
	switch code := strings.ToUpper(strings.TrimSpace(head)); code {
	case "CRITICAL", "DANGER", "CAUTION", "LOW", "WARNING", "SAFE":
		return code
	}
	return "UNKNOWN"
}
