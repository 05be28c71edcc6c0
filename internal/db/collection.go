package db

import (
	"context"

	"github.com/ukydev/spatial-data/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// SpatialCollection defines the interface for spatial record operations.
type SpatialCollection interface {
	InsertRecord(ctx context.Context, record models.SpatialRecord) (string, error)
	FindRecords(ctx context.Context, filter bson.M) ([]models.SpatialRecord, error)
	UpdateRecord(ctx context.Context, filter bson.M, record models.SpatialRecord) (*MatchResult, error)
	Ping(ctx context.Context) error
}

// RecordCursor defines the interface for record cursor operations.
type RecordCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// MatchResult reports the outcome of an update.
type MatchResult struct {
	Matched  bool
	Modified bool
}
