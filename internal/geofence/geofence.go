// Package geofence decides whether a claimed coordinate lies within a venue's
// radius using great-circle distance on a spherical Earth.
package geofence

import (
	"math"

	dErrors "presence/pkg/domain-errors"
)

// EarthRadiusMeters is the mean Earth radius used by the Haversine formula.
const EarthRadiusMeters = 6_371_000.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Result is the outcome of a geofence check. DistanceMeters is never rounded.
type Result struct {
	DistanceMeters float64
	WithinRadius   bool
}

// ValidateCoordinate rejects non-finite or out-of-range coordinates.
func ValidateCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return dErrors.New(dErrors.CodeValidation, "coordinates must be finite numbers")
	}
	if lat < -90 || lat > 90 {
		return dErrors.New(dErrors.CodeValidation, "latitude must be within [-90, 90]")
	}
	if lng < -180 || lng > 180 {
		return dErrors.New(dErrors.CodeValidation, "longitude must be within [-180, 180]")
	}
	return nil
}

// Validate measures the distance from the user to the venue and compares it
// against radiusMeters. The boundary is inclusive.
func Validate(userLat, userLng, venueLat, venueLng, radiusMeters float64) (Result, error) {
	if err := ValidateCoordinate(userLat, userLng); err != nil {
		return Result{}, err
	}
	if err := ValidateCoordinate(venueLat, venueLng); err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid venue coordinates")
	}
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters < 0 {
		return Result{}, dErrors.New(dErrors.CodeValidation, "radius must be a non-negative finite number")
	}

	d := Distance(Point{userLat, userLng}, Point{venueLat, venueLng})
	return Result{DistanceMeters: d, WithinRadius: d <= radiusMeters}, nil
}

// Distance returns the Haversine great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLng := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
