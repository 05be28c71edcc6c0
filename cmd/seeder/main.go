package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/spatial-data/internal/models"
)

// City is a named seed location.
type City struct {
	Name     string
	Location models.Location
}

// Cities seeded with points and a surrounding zone
var cities = []City{
	{"london", models.Location{Lon: -0.1278, Lat: 51.5074}},
	{"new-york", models.Location{Lon: -74.0060, Lat: 40.7128}},
	{"madrid", models.Location{Lon: -3.7038, Lat: 40.4168}},
	{"nicosia", models.Location{Lon: 33.3823, Lat: 35.1856}},
	{"bogota", models.Location{Lon: -74.0721, Lat: 4.7110}},
	{"paris", models.Location{Lon: 2.3522, Lat: 48.8566}},
	{"istanbul", models.Location{Lon: 28.9784, Lat: 41.0082}},
	{"cardiff", models.Location{Lon: -3.1791, Lat: 51.4816}},
	{"tokyo", models.Location{Lon: 139.6503, Lat: 35.6762}},
	{"sydney", models.Location{Lon: 151.2093, Lat: -33.8688}},
}

const metersPerDegree = 111320.0

func jitterLocation(rng *rand.Rand, base models.Location, meters float64) models.Location {
	lonMetersPerDeg := metersPerDegree * math.Cos(base.Lat*math.Pi/180)
	dLat := (rng.Float64()*2 - 1) * (meters / metersPerDegree)
	dLon := (rng.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Location{Lon: base.Lon + dLon, Lat: base.Lat + dLat}
}

// zoneAround returns a closed square ring of half-width meters centered on c.
func zoneAround(c models.Location, meters float64) models.Geometry {
	dLat := meters / metersPerDegree
	dLon := meters / (metersPerDegree * math.Cos(c.Lat*math.Pi/180))
	return models.NewPolygon([][]float64{
		{c.Lon - dLon, c.Lat - dLat},
		{c.Lon + dLon, c.Lat - dLat},
		{c.Lon + dLon, c.Lat + dLat},
		{c.Lon - dLon, c.Lat + dLat},
		{c.Lon - dLon, c.Lat - dLat},
	})
}

type seeder struct {
	apiURL string
	client *http.Client
}

func (s *seeder) post(path string, record models.SpatialRecord) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	resp, err := s.client.Post(s.apiURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", record.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("storing %s failed with status: %d", record.Name, resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return result.ID, nil
}

// countNear asks the service how many points lie within meters of loc.
func (s *seeder) countNear(loc models.Location, meters int) (int, error) {
	q := url.Values{}
	q.Set("longitude", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("max_distance", strconv.Itoa(meters))

	resp, err := s.client.Get(s.apiURL + "/spatial_data/near_point?" + q.Encode())
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("near query failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Data []models.SpatialRecord `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return len(result.Data), nil
}

// seedCity stores pointsPerCity jittered points and one zone for c.
func (s *seeder) seedCity(rng *rand.Rand, c City, pointsPerCity int, zoneMeters float64) (int, error) {
	stored := 0
	for i := 0; i < pointsPerCity; i++ {
		rec := models.SpatialRecord{
			Name:     fmt.Sprintf("%s-point-%d", c.Name, i+1),
			Geometry: jitterLocation(rng, c.Location, zoneMeters/2).Point(),
		}
		id, err := s.post("/spatial_data/point", rec)
		if err != nil {
			return stored, err
		}
		stored++
		log.WithFields(log.Fields{"name": rec.Name, "id": id}).Debug("Stored point")
	}

	zone := models.SpatialRecord{Name: c.Name + "-zone", Geometry: zoneAround(c.Location, zoneMeters)}
	if _, err := s.post("/spatial_data/polygon", zone); err != nil {
		return stored, err
	}
	return stored + 1, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found (using environment variables)")
	}

	apiURL := strings.TrimSuffix(os.Getenv("API_BASE_URL"), "/")
	if apiURL == "" {
		apiURL = "http://localhost:8000"
	}

	pointsPerCity := 3
	if v := os.Getenv("SEED_POINTS_PER_CITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			pointsPerCity = n
		}
	}

	zoneMeters := 2000.0
	if v := os.Getenv("SEED_ZONE_METERS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			zoneMeters = f
		}
	}

	log.WithFields(log.Fields{
		"api_url":         apiURL,
		"points_per_city": pointsPerCity,
		"zone_meters":     zoneMeters,
	}).Info("Starting spatial data seeding")

	s := &seeder{apiURL: apiURL, client: &http.Client{Timeout: 10 * time.Second}}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	total := 0
	for _, c := range cities {
		n, err := s.seedCity(rng, c, pointsPerCity, zoneMeters)
		total += n
		if err != nil {
			log.WithError(err).WithField("city", c.Name).Error("Failed to seed city")
			continue
		}
		log.WithFields(log.Fields{"city": c.Name, "records": n}).Info("Seeded city")
	}

	if total == 0 {
		log.Fatal("No records stored. Ensure the API is reachable.")
	}

	near, err := s.countNear(cities[0].Location, int(zoneMeters))
	if err != nil {
		log.WithError(err).Warn("Near query check failed")
	} else {
		log.WithFields(log.Fields{"city": cities[0].Name, "points": near}).Info("Near query check")
	}
	log.WithField("records", total).Info("Seeding completed")
}
