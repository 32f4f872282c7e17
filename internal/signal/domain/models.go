package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
)

var (
	ErrInvalidSignalType = errors.New("invalid_signal_type")
	ErrInvalidActor      = errors.New("invalid_actor")
)

type Type string

const (
	TypeComing Type = "coming"
	TypeHere   Type = "here"
)

func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case TypeComing, TypeHere:
		return t, nil
	default:
		return "", ErrInvalidSignalType
	}
}

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrInvalidActor
	}
	return nil
}

// Signal is the intent currently held by an actor at a venue.
type Signal struct {
	VenueID  string    `json:"venueId"`
	ActorID  string    `json:"actorId"`
	Type     Type      `json:"type"`
	IssuedAt time.Time `json:"issuedAt"`
}

// Outcome reports the venue after a signal. Applied is false for no-ops.
type Outcome struct {
	Venue   venuedomain.Venue `json:"venue"`
	Signal  *Signal           `json:"signal"`
	Applied bool              `json:"applied"`
}

type Service interface {
	Signal(ctx context.Context, venueID string, t Type, actor Actor) (Outcome, error)
	Leave(ctx context.Context, venueID string, actor Actor) (Outcome, error)
	Current(actorID, venueID string) (Signal, bool)
	Reset(ctx context.Context) error
}
