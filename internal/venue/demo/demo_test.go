package demo

import (
	"testing"
	"time"

	"github.com/smallbiznis/streetsignal/internal/venue/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoVenuesHoldInvariants(t *testing.T) {
	venues := NewProvider().Venues(time.Now())
	require.Len(t, venues, 3)

	for _, v := range venues {
		assert.True(t, v.Status.Valid(), v.ID)
		assert.LessOrEqual(t, v.Occupancy.Current, v.Occupancy.Max, v.ID)
		assert.LessOrEqual(t, len(v.AmbienceHistory), 5, v.ID)
		require.NotNil(t, v.AmbienceScore, v.ID)
		assert.Equal(t, *domain.ScoreOf(v.AmbienceHistory), *v.AmbienceScore, v.ID)
		assert.Equal(t, domain.OriginDemo, v.Origin)
	}
	assert.Nil(t, venues[2].ActiveSession)
	assert.Equal(t, 2, venues[0].ActiveSession.IndexOf("p3"))
	assert.Equal(t, 4.7, *venues[0].AmbienceScore)
	assert.Equal(t, 4.2, *venues[1].AmbienceScore)
	assert.Equal(t, 3.4, *venues[2].AmbienceScore)
}

func TestDemoVenuesAreFreshCopies(t *testing.T) {
	p := NewProvider()
	first := p.Venues(time.Now())
	first[0].Occupancy.Current = 15
	first[0].AmbienceHistory[0] = 0

	second := p.Venues(time.Now())
	assert.Equal(t, 8, second[0].Occupancy.Current)
	assert.Equal(t, 4.5, second[0].AmbienceHistory[0])
}
