// Package events publishes notifications about stored and updated spatial
// records.
package events

import (
	"context"
	"time"

	"github.com/ukydev/spatial-data/internal/models"
)

// Action names the write that produced an event.
type Action string

const (
	ActionStored  Action = "stored"
	ActionUpdated Action = "updated"
)

// Event describes a successful write to the spatial collection.
type Event struct {
	Action       Action              `json:"action"`
	Name         string              `json:"name"`
	GeometryType models.GeometryType `json:"geometry_type"`
	ID           string              `json:"id,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}

// Publisher delivers change events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() {}
