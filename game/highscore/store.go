// Package highscore keeps the table of finished taxi runs in a SQL database
// through gorm. SQLite is the default; a postgres:// DSN selects Postgres.
package highscore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wricardo/mcp-training/rubertaxi/game/service"
)

// ErrInvalidEntry is returned for entries that cannot be scored
var ErrInvalidEntry = errors.New("invalid score entry")

// Run is the database row of one finished run
type Run struct {
	ID         string    `gorm:"primaryKey;size:36"`
	SessionID  string    `gorm:"index;size:64"`
	ConfigID   string    `gorm:"index;size:128"`
	Run        int       `gorm:"not null"`
	Served     int       `gorm:"not null"`
	Earned     int       `gorm:"index;not null"`
	Money      float64   `gorm:"not null"`
	Ticks      uint64    `gorm:"not null"`
	Reason     string    `gorm:"size:16"`
	RecordedAt time.Time `gorm:"index"`
}

// TableName keeps the table name stable across struct renames
func (Run) TableName() string {
	return "runs"
}

func (r Run) entry() service.ScoreEntry {
	return service.ScoreEntry{
		RunID:      r.ID,
		SessionID:  r.SessionID,
		ConfigID:   r.ConfigID,
		Run:        r.Run,
		Served:     r.Served,
		Earned:     r.Earned,
		Money:      r.Money,
		Ticks:      r.Ticks,
		Reason:     r.Reason,
		RecordedAt: r.RecordedAt,
	}
}

// Store implements service.ScoreStore on gorm
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open connects to dsn and migrates the runs table. A DSN starting with
// postgres:// or postgresql:// opens Postgres; anything else is a SQLite
// file path, and ":memory:" an in-memory database.
func Open(dsn string, log zerolog.Logger) (*Store, error) {
	cfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		log.Debug().Msg("opening postgres score store")
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	case dsn == "" || dsn == ":memory:":
		db, err = gorm.Open(sqlite.Open("file::memory:"), cfg)
		if err == nil {
			// Every connection would get its own empty in-memory database
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	default:
		if dir := filepath.Dir(dsn); dir != "." {
			if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
				return nil, fmt.Errorf("failed to create score directory: %w", mkErr)
			}
		}
		log.Debug().Str("path", dsn).Msg("opening sqlite score store")
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open score store: %w", err)
	}

	return New(db, log)
}

// New wraps an open database and migrates the runs table
func New(db *gorm.DB, log zerolog.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("failed to migrate score store: %w", err)
	}
	return &Store{db: db, logger: log}, nil
}

// Record stores a finished run and returns it with its run ID and
// timestamp filled in
func (s *Store) Record(ctx context.Context, entry service.ScoreEntry) (service.ScoreEntry, error) {
	if entry.SessionID == "" || entry.ConfigID == "" {
		return service.ScoreEntry{}, fmt.Errorf("%w: session and config are required", ErrInvalidEntry)
	}
	if entry.Served < 0 || entry.Earned < 0 {
		return service.ScoreEntry{}, fmt.Errorf("%w: negative totals", ErrInvalidEntry)
	}

	if entry.RunID == "" {
		entry.RunID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	row := Run{
		ID:         entry.RunID,
		SessionID:  entry.SessionID,
		ConfigID:   entry.ConfigID,
		Run:        entry.Run,
		Served:     entry.Served,
		Earned:     entry.Earned,
		Money:      entry.Money,
		Ticks:      entry.Ticks,
		Reason:     entry.Reason,
		RecordedAt: entry.RecordedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return service.ScoreEntry{}, fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug().Str("run_id", row.ID).Str("config", row.ConfigID).Int("earned", row.Earned).Msg("run stored")
	return row.entry(), nil
}

// Top returns the best runs by fares earned, then fares served, then the
// earliest recording. An empty configID covers every config.
func (s *Store) Top(ctx context.Context, configID string, limit int) ([]service.ScoreEntry, error) {
	if limit <= 0 {
		limit = service.DefaultScoreLimit
	}

	q := s.db.WithContext(ctx).Model(&Run{})
	if configID != "" {
		q = q.Where("config_id = ?", configID)
	}

	var rows []Run
	if err := q.Order("earned DESC").Order("served DESC").Order("recorded_at ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	entries := make([]service.ScoreEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// Count returns how many runs are stored for configID, or for all configs
func (s *Store) Count(ctx context.Context, configID string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&Run{})
	if configID != "" {
		q = q.Where("config_id = ?", configID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
