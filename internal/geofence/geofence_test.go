package geofence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "presence/pkg/domain-errors"
)

// metersPerDegreeLat is the arc length of one degree of latitude on the model sphere.
const metersPerDegreeLat = EarthRadiusMeters * math.Pi / 180

func offsetNorth(p Point, meters float64) Point {
	return Point{Latitude: p.Latitude + meters/metersPerDegreeLat, Longitude: p.Longitude}
}

var venue = Point{Latitude: 40.4433, Longitude: -79.9436}

func TestValidate_Scenarios(t *testing.T) {
	t.Run("user 50m away is inside a 100m radius", func(t *testing.T) {
		user := offsetNorth(venue, 50)
		res, err := Validate(user.Latitude, user.Longitude, venue.Latitude, venue.Longitude, 100)
		require.NoError(t, err)
		assert.True(t, res.WithinRadius)
		assert.InDelta(t, 50, res.DistanceMeters, 0.01)
	})

	t.Run("user 150m away is outside a 100m radius", func(t *testing.T) {
		user := offsetNorth(venue, 150)
		res, err := Validate(user.Latitude, user.Longitude, venue.Latitude, venue.Longitude, 100)
		require.NoError(t, err)
		assert.False(t, res.WithinRadius)
		assert.InDelta(t, 150, res.DistanceMeters, 0.01)
	})

	t.Run("zero distance is inside a zero radius", func(t *testing.T) {
		res, err := Validate(venue.Latitude, venue.Longitude, venue.Latitude, venue.Longitude, 0)
		require.NoError(t, err)
		assert.True(t, res.WithinRadius)
		assert.Zero(t, res.DistanceMeters)
	})
}

func TestDistance_Properties(t *testing.T) {
	points := []Point{
		{0, 0},
		{51.5007, -0.1246},
		{-33.8568, 151.2153},
		{89.9, 179.9},
		{-89.9, -179.9},
		venue,
	}

	t.Run("distance to self is zero", func(t *testing.T) {
		for _, p := range points {
			assert.Zero(t, Distance(p, p))
		}
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		for _, a := range points {
			for _, b := range points {
				assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6)
			}
		}
	})

	t.Run("distance grows with angular separation", func(t *testing.T) {
		prev := 0.0
		for deg := 0.0; deg <= 180; deg += 0.5 {
			d := Distance(Point{0, 0}, Point{0, deg})
			assert.GreaterOrEqual(t, d, prev)
			prev = d
		}
		assert.InDelta(t, math.Pi*EarthRadiusMeters, prev, 1e-3)
	})

	t.Run("distance is never negative", func(t *testing.T) {
		for _, a := range points {
			for _, b := range points {
				assert.GreaterOrEqual(t, Distance(a, b), 0.0)
			}
		}
	})
}

func TestValidate_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name                           string
		uLat, uLng, vLat, vLng, radius float64
	}{
		{"NaN user latitude", math.NaN(), 0, 0, 0, 100},
		{"infinite user longitude", 0, math.Inf(1), 0, 0, 100},
		{"latitude out of range", 91, 0, 0, 0, 100},
		{"longitude out of range", 0, -181, 0, 0, 100},
		{"NaN venue", 0, 0, math.NaN(), 0, 100},
		{"negative radius", 0, 0, 0, 0, -1},
		{"NaN radius", 0, 0, 0, 0, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.uLat, tt.uLng, tt.vLat, tt.vLng, tt.radius)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}
