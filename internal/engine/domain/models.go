package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	locationdomain "github.com/smallbiznis/streetsignal/internal/location/domain"
	ratinghistorydomain "github.com/smallbiznis/streetsignal/internal/ratinghistory/domain"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
)

var ErrUnknownFlag = errors.New("unknown_flag")

// Profile is the local player. Karma and Rating are filled from the reward
// and rating services on read.
type Profile struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Handle string   `json:"handle"`
	Rank   string   `json:"rank"`
	Level  int      `json:"level"`
	Rating int      `json:"rating"`
	Karma  int64    `json:"karma"`
	City   string   `json:"city"`
	Badges []string `json:"badges"`
}

func DefaultProfile() Profile {
	return Profile{
		ID:     ratinghistorydomain.DefaultUserID,
		Name:   "Dydy P.",
		Handle: "@dydy_player",
		Rank:   "Street Legend",
		Level:  42,
		Rating: 1250,
		Karma:  450,
		City:   "Paris",
		Badges: []string{"Early Adopter", "Sniper", "Night Owl"},
	}
}

type Flag string

const (
	FlagOnboarded         Flag = "onboarded"
	FlagTutorialCompleted Flag = "tutorial_completed"
)

func ParseFlag(raw string) (Flag, error) {
	switch f := Flag(strings.ToLower(strings.TrimSpace(raw))); f {
	case FlagOnboarded, FlagTutorialCompleted:
		return f, nil
	default:
		return "", ErrUnknownFlag
	}
}

type Flags struct {
	Onboarded         bool `json:"onboarded"`
	TutorialCompleted bool `json:"tutorialCompleted"`
}

// State is the engine view exposed to callers.
type State struct {
	Location  geo.Point                    `json:"location"`
	DemoMode  bool                         `json:"demoMode"`
	City      string                       `json:"city"`
	Outcome   venuedomain.ReconcileOutcome `json:"outcome"`
	Venues    int                          `json:"venues"`
	Token     uint64                       `json:"token"`
	UpdatedAt time.Time                    `json:"updatedAt"`
}

// Update reports a location-triggered reconciliation. Applied is false when
// a newer request superseded it.
type Update struct {
	Token   uint64 `json:"token"`
	Applied bool   `json:"applied"`
	State   State  `json:"state"`
}

type Service interface {
	Start(ctx context.Context, provider locationdomain.Provider) (State, error)
	UpdateLocation(ctx context.Context, point geo.Point) (Update, error)
	State() State
	Profile(ctx context.Context) Profile
	Flags(ctx context.Context) Flags
	SetFlag(ctx context.Context, flag Flag) (Flags, error)
	ResetDemoData(ctx context.Context) (State, error)
}
