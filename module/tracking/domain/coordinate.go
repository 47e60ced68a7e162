package domain

import "fmt"

// Coordinate is an immutable WGS84 position. Build one through NewCoordinate
// or call Validate before using a literal; out-of-range values are an error,
// never clamped.
type Coordinate struct {
	Lat      float64 `json:"latitude"`
	Lon      float64 `json:"longitude"`
	Altitude float64 `json:"altitude,omitempty"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

func NewCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f must be between -90 and 90", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %f must be between -180 and 180", ErrInvalidCoordinate, c.Lon)
	}
	if c.Accuracy < 0 {
		return fmt.Errorf("%w: accuracy %f must not be negative", ErrInvalidCoordinate, c.Accuracy)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}
