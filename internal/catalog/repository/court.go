package repository

import (
	"strconv"
	"time"

	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
)

// Court is a catalog row. OsmID is the identifier of the upstream dataset
// and the upsert key for imports.
type Court struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	OsmID      string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_courts_osm_id"`
	Name       string    `gorm:"type:text;not null"`
	Lat        float64   `gorm:"not null;index:ix_courts_lat_lng,priority:1"`
	Lng        float64   `gorm:"not null;index:ix_courts_lat_lng,priority:2"`
	MaxPlayers *int      `gorm:"column:max_players"`
	Floor      *string   `gorm:"type:text"`
	Lighting   *bool
	Water      *bool
	Address    string    `gorm:"type:text"`
	City       string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (Court) TableName() string { return "courts" }

func (c Court) Record() catalogdomain.Record {
	return catalogdomain.Record{
		ID:         strconv.FormatInt(c.ID, 10),
		Name:       c.Name,
		Lat:        c.Lat,
		Lng:        c.Lng,
		MaxPlayers: c.MaxPlayers,
		Floor:      c.Floor,
		Lighting:   c.Lighting,
		Water:      c.Water,
	}
}
