package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/spatial-data/internal/models"
)

func TestJitterLocation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := models.Location{Lon: -0.1278, Lat: 51.5074}

	for i := 0; i < 100; i++ {
		loc := jitterLocation(rng, base, 500)
		assert.InDelta(t, base.Lat, loc.Lat, 500/metersPerDegree)
		assert.InDelta(t, base.Lon, loc.Lon, 0.01)
	}
}

func TestZoneAround(t *testing.T) {
	c := models.Location{Lon: 2.3522, Lat: 48.8566}
	zone := zoneAround(c, 1000)

	require.NoError(t, zone.Validate())
	ring := zone.Polygon[0]
	assert.Less(t, ring[0][0], c.Lon)
	assert.Greater(t, ring[2][0], c.Lon)
	assert.Less(t, ring[0][1], c.Lat)
	assert.Greater(t, ring[2][1], c.Lat)
}

func TestSeedCity(t *testing.T) {
	var points, polygons int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}

		var rec models.SpatialRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Errorf("Invalid body: %v", err)
		}
		switch r.URL.Path {
		case "/spatial_data/point":
			points++
			assert.Equal(t, models.GeometryPoint, rec.Geometry.Type)
		case "/spatial_data/polygon":
			polygons++
			assert.Equal(t, "madrid-zone", rec.Name)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "stored", "id": "abc"})
	}))
	defer server.Close()

	s := &seeder{apiURL: server.URL, client: server.Client()}
	n, err := s.seedCity(rand.New(rand.NewSource(1)), cities[2], 2, 1000)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, points)
	assert.Equal(t, 1, polygons)
}

func TestSeedCity_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	s := &seeder{apiURL: server.URL, client: server.Client()}
	n, err := s.seedCity(rand.New(rand.NewSource(1)), cities[0], 1, 1000)

	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestCountNear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spatial_data/near_point", r.URL.Path)
		assert.Equal(t, "1500", r.URL.Query().Get("max_distance"))
		_, _ = w.Write([]byte(`{"data":[{"name":"a","geometry":{"type":"Point","coordinates":[1,2]}},{"name":"b","geometry":{"type":"Point","coordinates":[1,2]}}]}`))
	}))
	defer server.Close()

	s := &seeder{apiURL: server.URL, client: server.Client()}
	n, err := s.countNear(models.Location{Lon: 1, Lat: 2}, 1500)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
