// Package geo is the pure geometry kernel: great-circle distances and
// point-in-shape tests over WGS84 coordinates. No state, no I/O.
package geo

import (
	"math"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

const (
	earthRadiusMeters = 6371000

	// Approximate length of one degree of latitude, used only for
	// bounding-box pre-filters, never for authoritative containment.
	kmPerDegreeLat = 111.32
)

// Distance returns the Haversine great-circle distance in meters.
func Distance(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Bearing returns the initial great-circle bearing from a to b in degrees
// [0, 360).
func Bearing(a, b domain.Coordinate) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLon := toRad(b.Lon - a.Lon)
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := toDeg(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// Box is a latitude/longitude aligned rectangle.
type Box struct {
	NorthEast domain.Coordinate
	SouthWest domain.Coordinate
}

// BoundingBox returns the box of the given radius around center. The
// longitude delta is widened by 1/cos(lat); near the poles the box degrades
// to the full longitude range, which only makes the pre-filter conservative.
func BoundingBox(center domain.Coordinate, radiusKm float64) Box {
	dLat := radiusKm / kmPerDegreeLat
	cosLat := math.Cos(toRad(center.Lat))
	dLon := 180.0
	if cosLat > 1e-6 {
		dLon = radiusKm / (kmPerDegreeLat * cosLat)
	}
	return Box{
		NorthEast: domain.Coordinate{Lat: center.Lat + dLat, Lon: center.Lon + dLon},
		SouthWest: domain.Coordinate{Lat: center.Lat - dLat, Lon: center.Lon - dLon},
	}
}

// BoxOfPoints returns the box enclosing all points, padded by marginMeters on
// every side. The zero Box is returned for an empty slice.
func BoxOfPoints(points []domain.Coordinate, marginMeters float64) Box {
	if len(points) == 0 {
		return Box{}
	}
	minLat, maxLat := points[0].Lat, points[0].Lat
	minLon, maxLon := points[0].Lon, points[0].Lon
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}
	box := Box{
		NorthEast: domain.Coordinate{Lat: maxLat, Lon: maxLon},
		SouthWest: domain.Coordinate{Lat: minLat, Lon: minLon},
	}
	if marginMeters <= 0 {
		return box
	}
	marginKm := marginMeters / 1000
	dLat := marginKm / kmPerDegreeLat
	cosLat := math.Cos(toRad((minLat + maxLat) / 2))
	dLon := 180.0
	if cosLat > 1e-6 {
		dLon = marginKm / (kmPerDegreeLat * cosLat)
	}
	box.NorthEast.Lat += dLat
	box.NorthEast.Lon += dLon
	box.SouthWest.Lat -= dLat
	box.SouthWest.Lon -= dLon
	return box
}

func PointInBox(p domain.Coordinate, box Box) bool {
	return p.Lat >= box.SouthWest.Lat && p.Lat <= box.NorthEast.Lat &&
		p.Lon >= box.SouthWest.Lon && p.Lon <= box.NorthEast.Lon
}

func PointInCircle(p, center domain.Coordinate, radiusMeters float64) bool {
	return Distance(p, center) <= radiusMeters
}

func PointInRectangle(p domain.Coordinate, box Box) bool {
	return PointInBox(p, box)
}

// PointInPolygon runs ray casting over the ordered vertex ring. Rings with
// fewer than 3 vertices are invalid input and always report false, keeping
// evaluation total.
func PointInPolygon(p domain.Coordinate, vertices []domain.Coordinate) bool {
	if len(vertices) < 3 {
		return false
	}
	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lon < (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lon {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PointInCorridor reports whether p lies within widthMeters/2 of the nearest
// segment of the centerline polyline.
func PointInCorridor(p domain.Coordinate, centerline []domain.Coordinate, widthMeters float64) bool {
	if len(centerline) < 2 || widthMeters <= 0 {
		return false
	}
	half := widthMeters / 2
	for i := 0; i < len(centerline)-1; i++ {
		if PointToSegmentDistance(p, centerline[i], centerline[i+1]) <= half {
			return true
		}
	}
	return false
}

// PointToSegmentDistance returns the minimum distance in meters from p to the
// segment ab, using an equirectangular projection local to the segment. Good
// enough at corridor scale, a few kilometers at most.
func PointToSegmentDistance(p, a, b domain.Coordinate) float64 {
	cosLat := math.Cos(toRad(a.Lat))
	ax, ay := 0.0, 0.0
	bx := (b.Lon - a.Lon) * cosLat
	by := b.Lat - a.Lat
	px := (p.Lon - a.Lon) * cosLat
	py := p.Lat - a.Lat

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := (px*dx + py*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	nearest := domain.Coordinate{
		Lat: a.Lat + t*dy,
		Lon: a.Lon + t*dx/cosLat,
	}
	return Distance(p, nearest)
}

// Centroid is the arithmetic mean of the points. Acceptable for paddock-sized
// areas, not geodesically exact.
func Centroid(points []domain.Coordinate) domain.Coordinate {
	if len(points) == 0 {
		return domain.Coordinate{}
	}
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return domain.Coordinate{Lat: lat / n, Lon: lon / n}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
