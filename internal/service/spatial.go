package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/spatial-data/internal/db"
	"github.com/ukydev/spatial-data/internal/events"
	"github.com/ukydev/spatial-data/internal/metrics"
	"github.com/ukydev/spatial-data/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// DefaultMaxDistance is the proximity radius in meters used when the caller
// does not give one.
const DefaultMaxDistance = 5000

const defaultPublishTimeout = 5 * time.Second

var ErrNotFound = errors.New("spatial record not found")

// SpatialService builds store queries for spatial records and maps their
// results to domain outcomes.
type SpatialService struct {
	collection     db.SpatialCollection
	publisher      events.Publisher
	publishTimeout time.Duration
	now            func() time.Time
}

// NewSpatialService creates a service over collection. A nil publisher
// disables change events.
func NewSpatialService(collection db.SpatialCollection, publisher events.Publisher) *SpatialService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SpatialService{
		collection:     collection,
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
		now:            time.Now,
	}
}

// StorePoint validates and inserts a Point record.
func (s *SpatialService) StorePoint(ctx context.Context, record models.SpatialRecord) (string, error) {
	return s.store(ctx, record, models.GeometryPoint)
}

// StorePolygon validates and inserts a Polygon record.
func (s *SpatialService) StorePolygon(ctx context.Context, record models.SpatialRecord) (string, error) {
	return s.store(ctx, record, models.GeometryPolygon)
}

func (s *SpatialService) store(ctx context.Context, record models.SpatialRecord, expected models.GeometryType) (string, error) {
	if err := record.Validate(expected); err != nil {
		return "", err
	}
	id, err := s.collection.InsertRecord(ctx, record)
	if err != nil {
		return "", fmt.Errorf("insert %s record: %w", expected, err)
	}
	s.publish(ctx, events.Event{
		Action:       events.ActionStored,
		Name:         record.Name,
		GeometryType: expected,
		ID:           id,
	})
	return id, nil
}

// ListByType returns the records whose geometry has the given type, narrowed
// to one name when name is non-empty. The type is not checked against the
// supported set; an unknown type matches nothing.
func (s *SpatialService) ListByType(ctx context.Context, geometryType, name string) ([]models.SpatialRecord, error) {
	filter := bson.M{"geometry.type": geometryType}
	if name != "" {
		filter["name"] = name
	}
	records, err := s.collection.FindRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", geometryType, err)
	}
	return records, nil
}

// UpdatePoint replaces the first record named name with a Point record.
func (s *SpatialService) UpdatePoint(ctx context.Context, name string, record models.SpatialRecord) (*db.MatchResult, error) {
	return s.update(ctx, name, record, models.GeometryPoint)
}

// UpdatePolygon replaces the first record named name with a Polygon record.
func (s *SpatialService) UpdatePolygon(ctx context.Context, name string, record models.SpatialRecord) (*db.MatchResult, error) {
	return s.update(ctx, name, record, models.GeometryPolygon)
}

func (s *SpatialService) update(ctx context.Context, name string, record models.SpatialRecord, expected models.GeometryType) (*db.MatchResult, error) {
	if err := record.Validate(expected); err != nil {
		return nil, err
	}
	res, err := s.collection.UpdateRecord(ctx, bson.M{"name": name}, record)
	if err != nil {
		return nil, fmt.Errorf("update %s record %q: %w", expected, name, err)
	}
	if !res.Matched {
		return nil, ErrNotFound
	}
	s.publish(ctx, events.Event{
		Action:       events.ActionUpdated,
		Name:         record.Name,
		GeometryType: expected,
	})
	return res, nil
}

// FindNear returns Point records within maxDistance meters of loc, nearest
// first. The ordering comes from the store's $near operator.
func (s *SpatialService) FindNear(ctx context.Context, loc models.Location, maxDistance int) ([]models.SpatialRecord, error) {
	filter := bson.M{
		"geometry.type": string(models.GeometryPoint),
		"geometry": bson.M{
			"$near": bson.M{
				"$geometry":    queryPoint(loc),
				"$maxDistance": maxDistance,
			},
		},
	}
	records, err := s.collection.FindRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find near (%g, %g): %w", loc.Lon, loc.Lat, err)
	}
	return records, nil
}

// FindContaining returns records whose geometry intersects loc. A location
// outside the longitude/latitude ranges lies in no stored geometry, so it
// yields an empty result without a query.
func (s *SpatialService) FindContaining(ctx context.Context, loc models.Location) ([]models.SpatialRecord, error) {
	if !loc.InBounds() {
		return []models.SpatialRecord{}, nil
	}
	filter := bson.M{
		"geometry": bson.M{
			"$geoIntersects": bson.M{
				"$geometry": queryPoint(loc),
			},
		},
	}
	records, err := s.collection.FindRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find containing (%g, %g): %w", loc.Lon, loc.Lat, err)
	}
	return records, nil
}

// Ping reports whether the store is reachable.
func (s *SpatialService) Ping(ctx context.Context) error {
	return s.collection.Ping(ctx)
}

func queryPoint(loc models.Location) bson.M {
	return bson.M{"type": string(models.GeometryPoint), "coordinates": []float64{loc.Lon, loc.Lat}}
}

// publish hands the event to the publisher. Failures are logged and never
// reach the caller; the write has already succeeded.
func (s *SpatialService) publish(ctx context.Context, event events.Event) {
	event.Timestamp = s.now().UTC()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	err := s.publisher.Publish(pubCtx, event)
	metrics.ObserveEvent(string(event.Action), err)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"action":        event.Action,
			"name":          event.Name,
			"geometry_type": event.GeometryType,
		}).Warn("Failed to publish change event")
	}
}
