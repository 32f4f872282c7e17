package database

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one persisted key.
type Entry struct {
	Key       string         `gorm:"column:store_key;primaryKey;type:varchar(128)"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "kv_entries" }

// Store persists values in the kv_entries table.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func New(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		db:  db,
		log: log.Named("store.database"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	var entry Entry
	err := s.db.WithContext(ctx).Where("store_key = ?", key).Take(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("failed to load value", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := storedomain.Decode(entry.Value, dst); err != nil {
		s.log.Warn("discarding undecodable value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return storedomain.ErrEmptyKey
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := Entry{Key: key, Value: datatypes.JSON(raw), UpdatedAt: s.now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("store_key IN ?", keys).Delete(&Entry{}).Error
}
