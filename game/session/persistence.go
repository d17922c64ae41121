package session

import (
	"time"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/service"
)

// SessionPersistence is the durable store behind Manager
type SessionPersistence interface {
	Save(session *service.Session) error
	// Load returns ErrSessionNotFound for an unknown id
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk form of a shift.
// The map is not stored; it is reloaded from the named config.
type PersistedSessionData struct {
	ID             string        `json:"id"`
	ConfigName     string        `json:"config_name"`
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	ScoredRuns     int           `json:"scored_runs,omitempty"`
	GameState      *engine.State `json:"game_state"`
}
