package importer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/smallbiznis/streetsignal/internal/catalog/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryWriter struct {
	courts []repository.Court
	err    error
}

func (w *memoryWriter) Upsert(_ context.Context, courts []repository.Court) (int64, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.courts = append(w.courts, courts...)
	return int64(len(courts)), nil
}

func TestClassifySurface(t *testing.T) {
	cases := map[string]string{
		"":                                 "Bitume",
		"Terrain de basket-ball découvert": "Bitume",
		"Salle multisports":                "Parquet",
		"Terrain couvert":                  "Parquet",
		"Plateau EPS":                      "Synthétique",
	}
	for family, want := range cases {
		assert.Equal(t, want, ClassifySurface(family), family)
	}
}

func TestToCourt(t *testing.T) {
	court, ok := ToCourt(Facility{
		ID:           "E123",
		TypeName:     "Basket-Ball",
		TypeFamily:   "Salle",
		Installation: "Gymnase Jean Jaurès",
		PostalCode:   "44000",
		Coordinates:  &Coordinates{Lat: 47.21, Lon: -1.55},
	})
	require.True(t, ok)
	assert.Equal(t, "E123", court.OsmID)
	assert.Equal(t, "Basket-Ball - Gymnase Jean Jaurès", court.Name)
	assert.Equal(t, "44000", court.City)
	assert.Equal(t, "Parquet", *court.Floor)
	assert.Equal(t, 20, *court.MaxPlayers)
	assert.False(t, *court.Lighting)

	_, ok = ToCourt(Facility{ID: "E124"})
	assert.False(t, ok)
	_, ok = ToCourt(Facility{Coordinates: &Coordinates{Lat: 1, Lon: 1}})
	assert.False(t, ok)
}

func TestImporterPagesUntilExhausted(t *testing.T) {
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, `equip_type_name like "Basket*"`, r.URL.Query().Get("where"))

		var results []Facility
		if offset < 4 {
			results = []Facility{
				{ID: "a" + strconv.Itoa(offset), TypeName: "Basket", Coordinates: &Coordinates{Lat: 47.2, Lon: -1.5}},
				{ID: "b" + strconv.Itoa(offset), TypeName: "Basket"},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"total_count": 4, "results": results})
	}))
	defer srv.Close()

	writer := &memoryWriter{}
	imp := New(NewClient(srv.URL, srv.Client()), writer, zap.NewNop(), WithBatchSize(2))

	stats, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, offsets)
	assert.Equal(t, Stats{Pages: 2, Fetched: 4, Imported: 2, Skipped: 2}, stats)
	assert.Len(t, writer.courts, 2)
}

func TestImporterStopsOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(NewClient(srv.URL, srv.Client()), &memoryWriter{}, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestImporterPropagatesWriteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []Facility{{ID: "x", Coordinates: &Coordinates{Lat: 1, Lon: 1}}}})
	}))
	defer srv.Close()

	writer := &memoryWriter{err: errors.New("disk full")}
	_, err := New(NewClient(srv.URL, srv.Client()), writer, nil, WithMaxPages(1)).Run(context.Background())
	assert.EqualError(t, err, "disk full")
}
