package repository

import (
	"context"

	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Source reads the courts table.
type Source struct {
	db *gorm.DB
}

func NewSource(db *gorm.DB) *Source {
	return &Source{db: db}
}

func (s *Source) Query(ctx context.Context, box geo.BoundingBox, limit int) ([]catalogdomain.Record, error) {
	q := s.db.WithContext(ctx).
		Where("lat BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("lng BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []Court
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]catalogdomain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records, nil
}

// Upsert inserts courts or refreshes existing rows matched on osm_id.
func (s *Source) Upsert(ctx context.Context, courts []Court) (int64, error) {
	if len(courts) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "osm_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "lat", "lng", "max_players", "floor", "lighting", "water", "address", "city", "updated_at",
		}),
	}).Create(&courts)
	return res.RowsAffected, res.Error
}
