package domain

import "github.com/paulmach/orb"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Point returns the coordinates as an orb point (x=lon, y=lat), the GeoJSON axis order.
func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }
