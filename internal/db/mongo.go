package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/spatial-data/internal/metrics"
	"github.com/ukydev/spatial-data/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// GeoIndexName is the name of the 2dsphere index on the geometry field.
const GeoIndexName = "geometry_2dsphere"

var errNilCollection = errors.New("mongo collection is nil")

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureGeoIndex creates the 2dsphere index on the geometry field. Creating an
// index that already exists with the same keys is a no-op.
func EnsureGeoIndex(ctx context.Context, coll *mongo.Collection) error {
	if coll == nil {
		return errNilCollection
	}
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "geometry", Value: "2dsphere"}},
		Options: options.Index().SetName(GeoIndexName),
	}
	if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create %s index: %w", GeoIndexName, err)
	}
	return nil
}

// MongoCollection wraps a MongoDB collection for spatial record operations.
type MongoCollection struct {
	Collection *mongo.Collection
}

// NewMongoCollection returns a SpatialCollection backed by coll.
func NewMongoCollection(coll *mongo.Collection) *MongoCollection {
	return &MongoCollection{Collection: coll}
}

// mongoRecordCursor wraps a MongoDB cursor for record queries.
type mongoRecordCursor struct {
	cursor *mongo.Cursor
}

// All retrieves all results from the cursor.
func (m *mongoRecordCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

// Close closes the cursor.
func (m *mongoRecordCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}

// InsertRecord inserts a record and returns the identifier MongoDB assigned.
// Names are not checked for collisions.
func (c *MongoCollection) InsertRecord(ctx context.Context, record models.SpatialRecord) (id string, err error) {
	if c.Collection == nil {
		return "", errNilCollection
	}
	start := time.Now()
	defer func() { metrics.ObserveStore("insert", err, time.Since(start).Seconds()) }()

	res, err := c.Collection.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// find runs filter with the internal identifier projected out.
func (c *MongoCollection) find(ctx context.Context, filter bson.M) (RecordCursor, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return &mongoRecordCursor{cursor: cursor}, nil
}

// FindRecords returns every record matching filter in store order. No match
// yields an empty slice.
func (c *MongoCollection) FindRecords(ctx context.Context, filter bson.M) (records []models.SpatialRecord, err error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	start := time.Now()
	defer func() { metrics.ObserveStore("find", err, time.Since(start).Seconds()) }()

	cursor, err := c.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.SpatialRecord{}
	}
	return records, nil
}

// UpdateRecord sets the record's fields on the first document matching
// filter. Nothing is inserted when no document matches.
func (c *MongoCollection) UpdateRecord(ctx context.Context, filter bson.M, record models.SpatialRecord) (result *MatchResult, err error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	start := time.Now()
	defer func() { metrics.ObserveStore("update", err, time.Since(start).Seconds()) }()

	res, err := c.Collection.UpdateOne(ctx, filter, bson.M{"$set": record})
	if err != nil {
		return nil, err
	}
	return &MatchResult{Matched: res.MatchedCount > 0, Modified: res.ModifiedCount > 0}, nil
}

// Ping checks that the backing deployment is reachable.
func (c *MongoCollection) Ping(ctx context.Context) error {
	if c.Collection == nil {
		return errNilCollection
	}
	return c.Collection.Database().Client().Ping(ctx, readpref.Primary())
}
