package domain

import (
	"errors"
	"time"

	"github.com/smallbiznis/streetsignal/pkg/geo"
)

var ErrVenueNotFound = errors.New("venue_not_found")

type PlayerStatus string

const (
	PlayerPlaying PlayerStatus = "playing"
	PlayerWaiting PlayerStatus = "waiting"
)

type Player struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Status PlayerStatus `json:"status"`
}

// VibeRatings are the four ambience axes, each within [0,10].
type VibeRatings struct {
	Competition float64 `json:"competition"`
	Skill       float64 `json:"skill"`
	Friendly    float64 `json:"friendly"`
	Intensity   float64 `json:"intensity"`
}

// Session is the live gathering at a venue.
type Session struct {
	ID          string       `json:"id"`
	StartTime   time.Time    `json:"startTime"`
	Players     []Player     `json:"players"`
	VibeRatings *VibeRatings `json:"vibeRatings,omitempty"`
}

// IndexOf returns the position of the player with id, or -1.
func (s *Session) IndexOf(id string) int {
	if s == nil {
		return -1
	}
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

type Occupancy struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type Amenities struct {
	Lit   bool `json:"lit"`
	Water bool `json:"water"`
}

type MVP struct {
	Name         string `json:"name"`
	DaysReigning int    `json:"daysReigning"`
}

type Origin string

const (
	OriginCatalog Origin = "catalog"
	OriginDemo    Origin = "demo"
)

// Venue is a play location. Favorite is filled from the registry's favorites
// set on read and is never stored on the entity.
type Venue struct {
	ID              string     `json:"id"`
	Handle          string     `json:"handle"`
	Name            string     `json:"name"`
	Geo             geo.Point  `json:"geo"`
	DistanceKm      float64    `json:"distanceKm"`
	DistanceLabel   string     `json:"distanceLabel"`
	Status          Status     `json:"status"`
	Occupancy       Occupancy  `json:"occupancy"`
	Amenities       Amenities  `json:"amenities"`
	Surface         string     `json:"surface"`
	Vibe            string     `json:"vibe,omitempty"`
	AmbienceScore   *float64   `json:"ambienceScore"`
	AmbienceHistory []float64  `json:"ambienceHistory"`
	ActiveSession   *Session   `json:"activeSession"`
	Favorite        bool       `json:"favorite"`
	LastSignalAt    *time.Time `json:"lastSignalAt"`
	LastSignalLabel string     `json:"lastSignalLabel,omitempty"`
	Visits          int        `json:"visits"`
	LastVisit       string     `json:"lastVisit,omitempty"`
	Issues          []string   `json:"issues"`
	MVP             *MVP       `json:"mvp,omitempty"`
	Origin          Origin     `json:"origin"`
}

// Clone returns a deep copy so callers can mutate freely.
func (v Venue) Clone() Venue {
	out := v
	if v.AmbienceScore != nil {
		score := *v.AmbienceScore
		out.AmbienceScore = &score
	}
	out.AmbienceHistory = append([]float64{}, v.AmbienceHistory...)
	out.Issues = append([]string{}, v.Issues...)
	if v.ActiveSession != nil {
		session := *v.ActiveSession
		session.Players = append([]Player(nil), v.ActiveSession.Players...)
		if v.ActiveSession.VibeRatings != nil {
			ratings := *v.ActiveSession.VibeRatings
			session.VibeRatings = &ratings
		}
		out.ActiveSession = &session
	}
	if v.LastSignalAt != nil {
		at := *v.LastSignalAt
		out.LastSignalAt = &at
	}
	if v.MVP != nil {
		mvp := *v.MVP
		out.MVP = &mvp
	}
	return out
}

// Locate sets the distance fields relative to ref.
func (v *Venue) Locate(ref geo.Point) {
	v.DistanceKm = geo.DistanceKm(ref, v.Geo)
	v.DistanceLabel = geo.FormatDistance(v.DistanceKm)
}

// Filter selects venues for display. Empty fields match everything.
type Filter struct {
	Lit   bool
	Water bool
	Query string
}

// DefaultDataProvider supplies the venues used when no catalog data exists.
type DefaultDataProvider interface {
	Venues(now time.Time) []Venue
}

type ReconcileOutcome string

const (
	OutcomeCatalog     ReconcileOutcome = "catalog"
	OutcomeEmptyRegion ReconcileOutcome = "empty_region"
	OutcomeKept        ReconcileOutcome = "kept"
	OutcomeDemo        ReconcileOutcome = "demo"
)

// StatusChange reports one decay transition.
type StatusChange struct {
	VenueID string `json:"venueId"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
