package geo

import (
	"math"
	"testing"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

func TestDistance_SamePoint(t *testing.T) {
	p := domain.Coordinate{Lat: 17.9869, Lon: -92.9303}
	if d := Distance(p, p); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := domain.Coordinate{Lat: 17.9869, Lon: -92.9303}
	b := domain.Coordinate{Lat: 18.0000, Lon: -92.9000}
	ab := Distance(a, b)
	ba := Distance(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestDistance_KnownValue(t *testing.T) {
	// one degree of latitude on the equator, ~111.2 km
	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 1, Lon: 0}
	d := Distance(a, b)
	if d < 111000 || d > 111500 {
		t.Fatalf("expected ~111.2 km, got %f m", d)
	}
}

func TestBearing(t *testing.T) {
	a := domain.Coordinate{Lat: 0, Lon: 0}
	north := domain.Coordinate{Lat: 1, Lon: 0}
	east := domain.Coordinate{Lat: 0, Lon: 1}
	if br := Bearing(a, north); math.Abs(br-0) > 0.01 {
		t.Errorf("expected bearing 0, got %f", br)
	}
	if br := Bearing(a, east); math.Abs(br-90) > 0.01 {
		t.Errorf("expected bearing 90, got %f", br)
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	center := domain.Coordinate{Lat: 17.9869, Lon: -92.9303}
	box := BoundingBox(center, 1.0)

	// any point within the radius must fall inside the box
	near := domain.Coordinate{Lat: 17.9869 + 0.005, Lon: -92.9303}
	if Distance(center, near) > 1000 {
		t.Fatal("test point unexpectedly outside radius")
	}
	if !PointInBox(near, box) {
		t.Fatal("point within radius fell outside bounding box")
	}
}

func TestPointInCircle(t *testing.T) {
	center := domain.Coordinate{Lat: 17.9869, Lon: -92.9303}
	inside := domain.Coordinate{Lat: 17.9869, Lon: -92.9310} // ~74m east
	outside := domain.Coordinate{Lat: 17.9869, Lon: -92.9400}

	if !PointInCircle(inside, center, 500) {
		t.Error("expected point inside 500m circle")
	}
	if PointInCircle(outside, center, 500) {
		t.Error("expected point outside 500m circle")
	}
}

func TestPointInRectangle(t *testing.T) {
	box := Box{
		NorthEast: domain.Coordinate{Lat: 18.0, Lon: -92.9},
		SouthWest: domain.Coordinate{Lat: 17.9, Lon: -93.0},
	}
	if !PointInRectangle(domain.Coordinate{Lat: 17.95, Lon: -92.95}, box) {
		t.Error("expected point inside rectangle")
	}
	if PointInRectangle(domain.Coordinate{Lat: 18.05, Lon: -92.95}, box) {
		t.Error("expected point outside rectangle")
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []domain.Coordinate{
		{Lat: 17.9, Lon: -93.0},
		{Lat: 17.9, Lon: -92.9},
		{Lat: 18.0, Lon: -92.9},
		{Lat: 18.0, Lon: -93.0},
	}
	if !PointInPolygon(domain.Coordinate{Lat: 17.95, Lon: -92.95}, square) {
		t.Error("expected point inside square")
	}
	if PointInPolygon(domain.Coordinate{Lat: 18.1, Lon: -92.95}, square) {
		t.Error("expected point outside square")
	}
}

func TestPointInPolygon_Degenerate(t *testing.T) {
	two := []domain.Coordinate{
		{Lat: 17.9, Lon: -93.0},
		{Lat: 18.0, Lon: -92.9},
	}
	points := []domain.Coordinate{
		{Lat: 17.95, Lon: -92.95},
		{Lat: 17.9, Lon: -93.0},
		{Lat: 0, Lon: 0},
	}
	for _, p := range points {
		if PointInPolygon(p, two) {
			t.Errorf("2-vertex polygon reported containment for %v", p)
		}
	}
	if PointInPolygon(domain.Coordinate{}, nil) {
		t.Error("nil polygon reported containment")
	}
}

func TestPointInCorridor(t *testing.T) {
	// corridor running east along latitude 17.9869
	centerline := []domain.Coordinate{
		{Lat: 17.9869, Lon: -92.9400},
		{Lat: 17.9869, Lon: -92.9300},
		{Lat: 17.9869, Lon: -92.9200},
	}
	onLine := domain.Coordinate{Lat: 17.9869, Lon: -92.9350}
	nearLine := domain.Coordinate{Lat: 17.9871, Lon: -92.9350} // ~22m north
	farAway := domain.Coordinate{Lat: 17.9920, Lon: -92.9350}  // ~570m north

	if !PointInCorridor(onLine, centerline, 100) {
		t.Error("point on centerline not in corridor")
	}
	if !PointInCorridor(nearLine, centerline, 100) {
		t.Error("point 22m off centerline not in 100m corridor")
	}
	if PointInCorridor(farAway, centerline, 100) {
		t.Error("point 570m off centerline reported in 100m corridor")
	}
	if PointInCorridor(onLine, centerline[:1], 100) {
		t.Error("single-point centerline reported containment")
	}
}

func TestPointToSegmentDistance_BeyondEnds(t *testing.T) {
	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 0.01}
	p := domain.Coordinate{Lat: 0, Lon: 0.02} // beyond b

	got := PointToSegmentDistance(p, a, b)
	want := Distance(p, b)
	if math.Abs(got-want) > 1.0 {
		t.Fatalf("expected distance to segment end %f, got %f", want, got)
	}
}

func TestCentroid(t *testing.T) {
	points := []domain.Coordinate{
		{Lat: 17.9, Lon: -93.0},
		{Lat: 18.1, Lon: -92.8},
	}
	c := Centroid(points)
	if math.Abs(c.Lat-18.0) > 1e-9 || math.Abs(c.Lon-(-92.9)) > 1e-9 {
		t.Fatalf("unexpected centroid %v", c)
	}
	if got := Centroid(nil); got != (domain.Coordinate{}) {
		t.Fatalf("expected zero coordinate for empty input, got %v", got)
	}
}
