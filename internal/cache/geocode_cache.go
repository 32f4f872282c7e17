package cache

import (
	"fmt"
	"math"
	"time"
)

const (
	defaultPlaceTTL  = 6 * time.Hour
	defaultMissTTL   = 2 * time.Minute
	coordinateDigits = 3
)

// PlaceCache stores reverse-geocoding answers keyed by rounded coordinates.
// Roughly 100 m of movement maps to the same key.
type PlaceCache[V any] interface {
	Get(lat, lng float64) (V, bool)
	Set(lat, lng float64, place V)
	SetMiss(lat, lng float64, place V)
}

type placeCache[V any] struct {
	places  Cache[string, V]
	ttl     time.Duration
	missTTL time.Duration
}

func NewPlaceCache[V any]() PlaceCache[V] {
	return &placeCache[V]{
		places:  NewTTLCache[string, V](),
		ttl:     defaultPlaceTTL,
		missTTL: defaultMissTTL,
	}
}

func (c *placeCache[V]) Get(lat, lng float64) (V, bool) {
	return c.places.Get(coordinateKey(lat, lng))
}

func (c *placeCache[V]) Set(lat, lng float64, place V) {
	c.places.Set(coordinateKey(lat, lng), place, c.ttl)
}

// SetMiss remembers a failed lookup for a short time so a flapping upstream is not hammered.
func (c *placeCache[V]) SetMiss(lat, lng float64, place V) {
	c.places.Set(coordinateKey(lat, lng), place, c.missTTL)
}

func coordinateKey(lat, lng float64) string {
	scale := math.Pow(10, coordinateDigits)
	return fmt.Sprintf("%.3f|%.3f", math.Round(lat*scale)/scale, math.Round(lng*scale)/scale)
}
