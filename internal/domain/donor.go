package domain

import (
	"time"
)

const (
	MinDonorRadiusKm = 1
	MaxDonorRadiusKm = 50

	// DonationCooldown is the minimum wait between whole-blood donations.
	DonationCooldown = 3 * 30 * 24 * time.Hour
)

type Donor struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Phone               string     `json:"phone"`
	BloodType           BloodType  `json:"blood_type"`
	Location            GeoPoint   `json:"location"`
	Address             string     `json:"address"`
	MaxDistanceKm       int        `json:"max_distance_km"`
	IsAvailable         bool       `json:"is_available"`
	IsEmergencyEligible bool       `json:"is_emergency_eligible"`
	LastDonationAt      *time.Time `json:"last_donation_at,omitempty"`
	DonationCount       int        `json:"donation_count"`
	IsVerified          bool       `json:"is_verified"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CanDonate reports whether the donor's last donation is outside the
// cooldown window. Informational only; the matcher does not enforce it.
func (d *Donor) CanDonate() bool {
	if d.LastDonationAt == nil {
		return true
	}
	return time.Since(*d.LastDonationAt) >= DonationCooldown
}

// DonorCandidate is a donor annotated with the distance from a request's
// hospital, as returned by the geo search.
type DonorCandidate struct {
	Donor
	DistanceMeters float64 `json:"distance_meters"`
}
