package models

import (
	"fmt"
	"strings"
)

// SpatialRecord is a named geometry stored in the spatial collection.
type SpatialRecord struct {
	Name     string   `bson:"name" json:"name"`
	Geometry Geometry `bson:"geometry" json:"geometry"`
}

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks the record name and that its geometry is a valid value of
// the expected type.
func (r SpatialRecord) Validate(expected GeometryType) error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if r.Geometry.Type != expected {
		return &ValidationError{
			Field:  "geometry.type",
			Reason: fmt.Sprintf("expected %q, got %q", expected, r.Geometry.Type),
		}
	}
	return r.Geometry.Validate()
}
