package location

import (
	"context"
	"testing"

	"github.com/smallbiznis/streetsignal/internal/config"
	locationdomain "github.com/smallbiznis/streetsignal/internal/location/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestResolver() *Resolver {
	return NewResolver(Params{
		Config: config.Config{Demo: config.DemoConfig{Lat: 48.8566, Lng: 2.3522, City: "Paris"}},
		Log:    zap.NewNop(),
	})
}

func TestResolveDevicePosition(t *testing.T) {
	res := newTestResolver().Resolve(context.Background(), locationdomain.Fixed{Lat: 47.2184, Lng: -1.5536})

	assert.False(t, res.DemoMode)
	assert.Equal(t, geo.Point{Lat: 47.2184, Lng: -1.5536}, res.Point)
	assert.Empty(t, res.City)
}

func TestResolveFallsBackToDemo(t *testing.T) {
	r := newTestResolver()

	for _, provider := range []locationdomain.Provider{nil, locationdomain.Denied{}} {
		res := r.Resolve(context.Background(), provider)
		assert.True(t, res.DemoMode)
		assert.Equal(t, geo.Point{Lat: 48.8566, Lng: 2.3522}, res.Point)
		assert.Equal(t, "Paris", res.City)
	}
}
