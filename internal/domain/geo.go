package domain

import (
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

// GeoPoint is a WGS84 coordinate pair, longitude first to match the
// [lng, lat] wire order clients send.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func (p GeoPoint) Validate() error {
	if p.Longitude < -180 || p.Longitude > 180 {
		return xerrors.ErrInvalidCoordinates
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return xerrors.ErrInvalidCoordinates
	}
	return nil
}

// IsZero reports whether the point was never set. (0,0) is open ocean,
// so it doubles as the missing-location sentinel.
func (p GeoPoint) IsZero() bool {
	return p.Longitude == 0 && p.Latitude == 0
}
