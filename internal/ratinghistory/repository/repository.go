package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ratinghistorydomain "github.com/smallbiznis/streetsignal/internal/ratinghistory/domain"
	"gorm.io/gorm"
)

type EloEntry struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    string       `gorm:"type:varchar(64);not null;index:idx_elo_history_user_created,priority:1"`
	NewElo    int          `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null;index:idx_elo_history_user_created,priority:2"`
}

func (EloEntry) TableName() string { return "elo_history" }

type Repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewRepository(db *gorm.DB, genID *snowflake.Node) ratinghistorydomain.Repository {
	return &Repository{db: db, genID: genID}
}

// Recent returns the newest limit rows for userID, oldest first.
func (r *Repository) Recent(ctx context.Context, userID string, limit int) ([]ratinghistorydomain.Snapshot, error) {
	var rows []EloEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]ratinghistorydomain.Snapshot, len(rows))
	for i, row := range rows {
		at := row.CreatedAt.UTC()
		out[len(rows)-1-i] = ratinghistorydomain.Snapshot{
			Rating:     row.NewElo,
			Label:      ratinghistorydomain.Label(at),
			RecordedAt: at,
		}
	}
	return out, nil
}

func (r *Repository) Append(ctx context.Context, userID string, s ratinghistorydomain.Snapshot) error {
	return r.db.WithContext(ctx).Create(&EloEntry{
		ID:        r.genID.Generate(),
		UserID:    userID,
		NewElo:    s.Rating,
		CreatedAt: s.RecordedAt.UTC(),
	}).Error
}
