package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// GeometryType is the GeoJSON type tag of a stored geometry.
type GeometryType string

const (
	GeometryPoint   GeometryType = "Point"
	GeometryPolygon GeometryType = "Polygon"
)

// IsValidGeometryType checks if a geometry type is supported
func IsValidGeometryType(t GeometryType) bool {
	switch t {
	case GeometryPoint, GeometryPolygon:
		return true
	default:
		return false
	}
}

// Geometry is a GeoJSON Point or Polygon. Only the coordinate field matching
// Type is populated.
type Geometry struct {
	Type    GeometryType
	Point   []float64     // [lon, lat]
	Polygon [][][]float64 // linear rings, outer ring first
}

// geoJSON is the wire and storage shape of a Geometry.
type geoJSON struct {
	Type        GeometryType `json:"type" bson:"type"`
	Coordinates interface{}  `json:"coordinates" bson:"coordinates"`
}

// NewPoint builds a Point geometry.
func NewPoint(lon, lat float64) Geometry {
	return Geometry{Type: GeometryPoint, Point: []float64{lon, lat}}
}

// NewPolygon builds a Polygon geometry from its rings.
func NewPolygon(rings ...[][]float64) Geometry {
	return Geometry{Type: GeometryPolygon, Polygon: rings}
}

// Coordinates returns the coordinate value for the geometry's type.
func (g Geometry) Coordinates() interface{} {
	switch g.Type {
	case GeometryPoint:
		return g.Point
	case GeometryPolygon:
		return g.Polygon
	default:
		return nil
	}
}

// Validate checks coordinate arity and ring structure. Coordinate ranges are
// not checked.
func (g Geometry) Validate() error {
	switch g.Type {
	case GeometryPoint:
		if len(g.Point) != 2 {
			return &ValidationError{Field: "geometry.coordinates", Reason: "point must be [longitude, latitude]"}
		}
	case GeometryPolygon:
		if len(g.Polygon) == 0 {
			return &ValidationError{Field: "geometry.coordinates", Reason: "polygon must have at least one ring"}
		}
		for i, ring := range g.Polygon {
			if err := validateRing(ring); err != nil {
				return &ValidationError{Field: fmt.Sprintf("geometry.coordinates[%d]", i), Reason: err.Error()}
			}
		}
	default:
		return &ValidationError{Field: "geometry.type", Reason: fmt.Sprintf("unsupported geometry type %q", g.Type)}
	}
	return nil
}

func validateRing(ring [][]float64) error {
	if len(ring) < 4 {
		return fmt.Errorf("ring must have at least 4 positions, got %d", len(ring))
	}
	for i, pos := range ring {
		if len(pos) != 2 {
			return fmt.Errorf("position %d must be [longitude, latitude]", i)
		}
	}
	first, last := ring[0], ring[len(ring)-1]
	if first[0] != last[0] || first[1] != last[1] {
		return fmt.Errorf("ring is not closed")
	}
	return nil
}

// MarshalJSON encodes the geometry as a GeoJSON object.
func (g Geometry) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSON{Type: g.Type, Coordinates: g.Coordinates()})
}

// UnmarshalJSON decodes a GeoJSON object, rejecting unknown types and
// coordinates that do not fit the type.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        GeometryType    `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !IsValidGeometryType(raw.Type) {
		return &ValidationError{Field: "geometry.type", Reason: fmt.Sprintf("unsupported geometry type %q", raw.Type)}
	}
	if len(raw.Coordinates) == 0 || string(raw.Coordinates) == "null" {
		return &ValidationError{Field: "geometry.coordinates", Reason: "coordinates are required"}
	}

	out := Geometry{Type: raw.Type}
	var err error
	switch raw.Type {
	case GeometryPoint:
		err = json.Unmarshal(raw.Coordinates, &out.Point)
	case GeometryPolygon:
		err = json.Unmarshal(raw.Coordinates, &out.Polygon)
	}
	if err != nil {
		return &ValidationError{Field: "geometry.coordinates", Reason: fmt.Sprintf("malformed %s coordinates", raw.Type)}
	}
	*g = out
	return nil
}

// MarshalBSON stores the geometry as a GeoJSON document so a 2dsphere index
// can cover it.
func (g Geometry) MarshalBSON() ([]byte, error) {
	return bson.Marshal(geoJSON{Type: g.Type, Coordinates: g.Coordinates()})
}

// UnmarshalBSON decodes a stored GeoJSON document.
func (g *Geometry) UnmarshalBSON(data []byte) error {
	var raw struct {
		Type        GeometryType  `bson:"type"`
		Coordinates bson.RawValue `bson:"coordinates"`
	}
	if err := bson.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Geometry{Type: raw.Type}
	switch raw.Type {
	case GeometryPoint:
		if err := raw.Coordinates.Unmarshal(&out.Point); err != nil {
			return fmt.Errorf("decode point coordinates: %w", err)
		}
	case GeometryPolygon:
		if err := raw.Coordinates.Unmarshal(&out.Polygon); err != nil {
			return fmt.Errorf("decode polygon coordinates: %w", err)
		}
	default:
		return fmt.Errorf("unsupported stored geometry type %q", raw.Type)
	}
	*g = out
	return nil
}
