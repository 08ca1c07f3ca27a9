package common

import (
	"errors"
	"fmt"
	"math"
)

const earthRadiusKM = 6371.0

// FarAway is the distance assigned when either endpoint is unknown, so
// unsortable entries fall to the bottom of distance-ordered lists.
const FarAway = 999.0

var ErrInvalidLatLng = errors.New("invalid latitude or longitude")

type Location struct {
	Lat float64 `json:"lat" db:"lat"`
	Lng float64 `json:"lng" db:"lng"`
}

func NewLocation(lat, lng float64) Location {
	return Location{Lat: lat, Lng: lng}
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

func HaversineDistance(a, b Location) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	aLat := degreesToRadians(a.Lat)
	bLat := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(aLat)*math.Cos(bLat)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}

// DistanceOrFar computes the haversine distance between two nullable
// coordinate pairs. Missing coordinates yield a sentinel large distance
// rather than an error; worklist sorting tolerates unverified addresses.
func DistanceOrFar(lat1, lng1 float64, lat2, lng2 *float64) float64 {
	if lat2 == nil || lng2 == nil {
		return FarAway
	}
	if ValidateLatLng(lat1, lng1) != nil || ValidateLatLng(*lat2, *lng2) != nil {
		return FarAway
	}
	return HaversineDistance(NewLocation(lat1, lng1), NewLocation(*lat2, *lng2))
}

func ValidateLatLng(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidLatLng)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidLatLng)
	}
	return nil
}
