package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Drive(ctx context.Context, sessionID string, req DriveRequest) (*DriveResult, error)
	Advance(ctx context.Context, sessionID string, in engine.Input, dt time.Duration) (*engine.Snapshot, error)
	ToggleJobs(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game State
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	DescribeTile(ctx context.Context, sessionID string, x, y int) (*engine.TileInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Scores
	HighScores(ctx context.Context, configID string, limit int) ([]ScoreEntry, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, configID string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// ScoreStore persists finished runs
type ScoreStore interface {
	Record(ctx context.Context, entry ScoreEntry) (ScoreEntry, error)
	Top(ctx context.Context, configID string, limit int) ([]ScoreEntry, error)
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// ScoredRuns counts the leading runs already in the score table, so a
	// run is recorded at most once.
	ScoredRuns int
}
