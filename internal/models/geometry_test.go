package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func square(x, y, size float64) [][]float64 {
	return [][]float64{
		{x, y},
		{x + size, y},
		{x + size, y + size},
		{x, y + size},
		{x, y},
	}
}

func TestIsValidGeometryType(t *testing.T) {
	tests := []struct {
		name     string
		gt       GeometryType
		expected bool
	}{
		{"point", GeometryPoint, true},
		{"polygon", GeometryPolygon, true},
		{"lowercase point", "point", false},
		{"line string", "LineString", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidGeometryType(tt.gt))
		})
	}
}

func TestGeometry_UnmarshalJSON(t *testing.T) {
	t.Run("point", func(t *testing.T) {
		var g Geometry
		err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[10.0,20.0]}`), &g)
		require.NoError(t, err)
		assert.Equal(t, GeometryPoint, g.Type)
		assert.Equal(t, []float64{10, 20}, g.Point)
		assert.Nil(t, g.Polygon)
	})

	t.Run("polygon", func(t *testing.T) {
		var g Geometry
		err := json.Unmarshal([]byte(`{"type":"Polygon","coordinates":[[[0,0],[20,0],[20,20],[0,20],[0,0]]]}`), &g)
		require.NoError(t, err)
		assert.Equal(t, GeometryPolygon, g.Type)
		assert.Equal(t, [][][]float64{square(0, 0, 20)}, g.Polygon)
	})

	failures := []struct {
		name  string
		body  string
		field string
	}{
		{"missing type", `{"coordinates":[1,2]}`, "geometry.type"},
		{"unknown type", `{"type":"LineString","coordinates":[[1,2],[3,4]]}`, "geometry.type"},
		{"missing coordinates", `{"type":"Point"}`, "geometry.coordinates"},
		{"null coordinates", `{"type":"Point","coordinates":null}`, "geometry.coordinates"},
		{"non-numeric coordinates", `{"type":"Point","coordinates":["a","b"]}`, "geometry.coordinates"},
		{"flat polygon", `{"type":"Polygon","coordinates":[1,2,3,4]}`, "geometry.coordinates"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			var g Geometry
			err := json.Unmarshal([]byte(tt.body), &g)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestGeometry_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewPoint(10, 20))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[10,20]}`, string(data))

	data, err = json.Marshal(NewPolygon(square(0, 0, 1)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`, string(data))
}

func TestGeometry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		g       Geometry
		wantErr bool
	}{
		{"valid point", NewPoint(1, 2), false},
		{"out of range point is accepted", NewPoint(1000, 1000), false},
		{"point with three values", Geometry{Type: GeometryPoint, Point: []float64{1, 2, 3}}, true},
		{"point with one value", Geometry{Type: GeometryPoint, Point: []float64{1}}, true},
		{"valid polygon", NewPolygon(square(0, 0, 5)), false},
		{"polygon with hole", NewPolygon(square(0, 0, 10), square(2, 2, 1)), false},
		{"polygon without rings", Geometry{Type: GeometryPolygon}, true},
		{"ring too short", NewPolygon([][]float64{{0, 0}, {1, 0}, {0, 0}}), true},
		{"ring not closed", NewPolygon([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}), true},
		{"position with three values", NewPolygon([][]float64{{0, 0, 0}, {1, 0}, {1, 1}, {0, 0}}), true},
		{"unknown type", Geometry{Type: "Circle"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGeometry_BSONShape(t *testing.T) {
	rec := SpatialRecord{Name: "zone", Geometry: NewPolygon(square(0, 0, 20))}

	data, err := bson.Marshal(rec)
	require.NoError(t, err)

	raw := bson.Raw(data)
	assert.Equal(t, "zone", raw.Lookup("name").StringValue())
	assert.Equal(t, "Polygon", raw.Lookup("geometry", "type").StringValue())

	rings, err := raw.Lookup("geometry", "coordinates").Array().Values()
	require.NoError(t, err)
	require.Len(t, rings, 1)
	positions, err := rings[0].Array().Values()
	require.NoError(t, err)
	assert.Len(t, positions, 5)

	var out SpatialRecord
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.Equal(t, rec, out)
}

func TestGeometry_UnmarshalBSON_UnknownType(t *testing.T) {
	data, err := bson.Marshal(bson.M{"type": "LineString", "coordinates": bson.A{bson.A{1.0, 2.0}}})
	require.NoError(t, err)

	var g Geometry
	assert.Error(t, bson.Unmarshal(data, &g))
}

func TestLocation(t *testing.T) {
	assert.True(t, Location{Lon: 10, Lat: 10}.InBounds())
	assert.True(t, Location{Lon: -180, Lat: 90}.InBounds())
	assert.False(t, Location{Lon: 1000, Lat: 1000}.InBounds())
	assert.False(t, Location{Lon: 0, Lat: -91}.InBounds())
	assert.Equal(t, NewPoint(3, 4), Location{Lon: 3, Lat: 4}.Point())
}
