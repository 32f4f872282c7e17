package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/streetsignal/pkg/geo"
)

const (
	DefaultCountry = "France"
	UnknownCity    = "Ville inconnue"
)

var ErrLookupFailed = errors.New("reverse_geocode_failed")

// Place describes a reverse-geocoded position. City and FullAddress are nil
// when the lookup failed.
type Place struct {
	City        *string `json:"city"`
	FullAddress *string `json:"fullAddress"`
	Country     string  `json:"country"`
}

// Unresolved is the place returned when no lookup succeeded.
func Unresolved() Place {
	return Place{Country: DefaultCountry}
}

func (p Place) Resolved() bool {
	return p.City != nil
}

type Geocoder interface {
	Lookup(ctx context.Context, point geo.Point) (Place, error)
}

// Service answers lookups on a best-effort basis and never fails.
type Service interface {
	Resolve(ctx context.Context, point geo.Point) Place
}
