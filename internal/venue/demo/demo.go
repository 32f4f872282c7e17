// Package demo provides the bundled venues shown when no catalog data is available.
package demo

import (
	"time"

	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
)

// Provider returns the three demonstration courts in Nantes. Session start
// times and last signals are placed relative to now.
type Provider struct{}

func NewProvider() venuedomain.DefaultDataProvider {
	return Provider{}
}

func (Provider) Venues(now time.Time) []venuedomain.Venue {
	history1 := []float64{4.5, 4.7, 4.8, 4.6, 4.8}
	history2 := []float64{4.0, 4.1, 4.2, 4.3, 4.2}
	history3 := []float64{3.2, 3.4, 3.5, 3.6, 3.5}

	return []venuedomain.Venue{
		{
			ID:              "1",
			Handle:          "playground-des-machines",
			Name:            "Playground des Machines",
			Geo:             geo.Point{Lat: 47.2186, Lng: -1.5547},
			Status:          venuedomain.StatusHot,
			Occupancy:       venuedomain.Occupancy{Current: 8, Max: 15},
			Amenities:       venuedomain.Amenities{Lit: true, Water: true},
			Surface:         "Gomme",
			Vibe:            "Compétition",
			AmbienceScore:   venuedomain.ScoreOf(history1),
			AmbienceHistory: history1,
			ActiveSession: &venuedomain.Session{
				ID:        "s1",
				StartTime: now.Add(-30 * time.Minute),
				Players: []venuedomain.Player{
					{ID: "p1", Name: "Sarah B.", Status: venuedomain.PlayerPlaying},
					{ID: "p2", Name: "Moussa D.", Status: venuedomain.PlayerPlaying},
					{ID: "p3", Name: "Thomas R.", Status: venuedomain.PlayerWaiting},
				},
				VibeRatings: &venuedomain.VibeRatings{Competition: 8, Skill: 9, Friendly: 7, Intensity: 9},
			},
			LastSignalAt:    at(now.Add(-2 * time.Minute)),
			LastSignalLabel: "2 min ago",
			Visits:          15,
			LastVisit:       "3 days ago",
			Issues:          []string{},
			MVP:             &venuedomain.MVP{Name: "Sarah B.", DaysReigning: 12},
			Origin:          venuedomain.OriginDemo,
		},
		{
			ID:              "2",
			Handle:          "city-stade-malakoff",
			Name:            "City Stade Malakoff",
			Geo:             geo.Point{Lat: 47.2150, Lng: -1.5500},
			Status:          venuedomain.StatusActive,
			Occupancy:       venuedomain.Occupancy{Current: 3, Max: 10},
			Amenities:       venuedomain.Amenities{Lit: true},
			Surface:         "Bitume",
			Vibe:            "Pickup",
			AmbienceScore:   venuedomain.ScoreOf(history2),
			AmbienceHistory: history2,
			ActiveSession: &venuedomain.Session{
				ID:        "s2",
				StartTime: now.Add(-45 * time.Minute),
				Players: []venuedomain.Player{
					{ID: "p4", Name: "Thomas R.", Status: venuedomain.PlayerPlaying},
					{ID: "p5", Name: "Léa P.", Status: venuedomain.PlayerPlaying},
				},
				VibeRatings: &venuedomain.VibeRatings{Competition: 6, Skill: 7, Friendly: 8, Intensity: 6},
			},
			LastSignalAt:    at(now.Add(-15 * time.Minute)),
			LastSignalLabel: "15 min ago",
			Visits:          8,
			LastVisit:       "yesterday",
			Issues:          []string{"Filet manquant"},
			MVP:             &venuedomain.MVP{Name: "Thomas R.", DaysReigning: 5},
			Origin:          venuedomain.OriginDemo,
		},
		{
			ID:              "3",
			Handle:          "terrain-vieux-doulon",
			Name:            "Terrain Vieux Doulon",
			Geo:             geo.Point{Lat: 47.2250, Lng: -1.5600},
			Status:          venuedomain.StatusEmpty,
			Occupancy:       venuedomain.Occupancy{Current: 0, Max: 10},
			Amenities:       venuedomain.Amenities{Water: true},
			Surface:         "Béton",
			Vibe:            "Chill",
			AmbienceScore:   venuedomain.ScoreOf(history3),
			AmbienceHistory: history3,
			LastSignalAt:    at(now.Add(-24 * time.Hour)),
			LastSignalLabel: "yesterday",
			Visits:          2,
			LastVisit:       "2 weeks ago",
			Issues:          []string{},
			MVP:             &venuedomain.MVP{Name: "Mehdi K.", DaysReigning: 28},
			Origin:          venuedomain.OriginDemo,
		},
	}
}

func at(t time.Time) *time.Time { return &t }
