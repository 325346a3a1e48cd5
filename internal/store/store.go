package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/rink-sequences/internal/engine"
)

var ErrNoDSN = errors.New("store: empty dsn")

// TransitionRecord is one applied message of a session, in order.
type TransitionRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	SessionID string    `gorm:"index:idx_session_seq,priority:1;not null" json:"session_id"`
	Seq       uint64    `gorm:"index:idx_session_seq,priority:2" json:"seq"`
	Kind      string    `gorm:"size:32;not null" json:"kind"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Msg decodes the stored payload back into a reducer message.
func (r TransitionRecord) Msg() (engine.Msg, error) {
	var m engine.Msg
	if err := json.Unmarshal([]byte(r.Payload), &m); err != nil {
		return engine.Msg{}, fmt.Errorf("decoding record %d: %w", r.Seq, err)
	}
	return m, nil
}

// Store persists session transitions through GORM.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres for postgres:// DSNs and to SQLite otherwise
// (a file path or ":memory:").
func Open(dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrNoDSN
	}

	pg := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")

	var dialector gorm.Dialector
	if pg {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if !pg {
		// every sqlite connection to :memory: is a separate database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&TransitionRecord{}); err != nil {
		return nil, fmt.Errorf("migrating: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends msg as transition seq of sessionID.
func (s *Store) Record(ctx context.Context, sessionID string, seq uint64, msg engine.Msg) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding msg: %w", err)
	}
	rec := TransitionRecord{
		SessionID: sessionID,
		Seq:       seq,
		Kind:      string(msg.Type),
		Payload:   string(payload),
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// List returns the transitions of sessionID ordered by seq.
func (s *Store) List(ctx context.Context, sessionID string) ([]TransitionRecord, error) {
	var recs []TransitionRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Messages returns the decoded message log of sessionID, suitable for engine.Replay.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]engine.Msg, error) {
	recs, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	msgs := make([]engine.Msg, 0, len(recs))
	for _, r := range recs {
		m, err := r.Msg()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
