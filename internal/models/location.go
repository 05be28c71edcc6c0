package models

// Location represents a query position in longitude/latitude order.
type Location struct {
	Lon float64 `bson:"lon" json:"longitude"`
	Lat float64 `bson:"lat" json:"latitude"`
}

// InBounds reports whether the location lies within the WGS84 longitude and
// latitude ranges.
func (l Location) InBounds() bool {
	return l.Lon >= -180 && l.Lon <= 180 && l.Lat >= -90 && l.Lat <= 90
}

// Point returns the location as a GeoJSON Point geometry.
func (l Location) Point() Geometry {
	return NewPoint(l.Lon, l.Lat)
}
