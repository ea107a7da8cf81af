package domain

import (
	"time"

	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

type RequestStatus string

const (
	RequestActive             RequestStatus = "Active"
	RequestPartiallyFulfilled RequestStatus = "Partially Fulfilled"
	RequestFulfilled          RequestStatus = "Fulfilled"
	RequestExpired            RequestStatus = "Expired"
)

type MatchStatus string

const (
	MatchNotified  MatchStatus = "Notified"
	MatchConfirmed MatchStatus = "Confirmed"
	MatchDonated   MatchStatus = "Donated"
	MatchDeclined  MatchStatus = "Declined"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// MatchEntry records one donor's notification/response/donation state
// within a request. A donor appears at most once per request.
type MatchEntry struct {
	RequestID      string      `json:"request_id"`
	DonorID        string      `json:"donor_id"`
	Status         MatchStatus `json:"status"`
	DistanceMeters float64     `json:"distance_meters"`
	NotifiedAt     time.Time   `json:"notified_at"`
	RespondedAt    *time.Time  `json:"responded_at,omitempty"`
	DonatedAt      *time.Time  `json:"donated_at,omitempty"`

	// Denormalized donor fields for listings.
	DonorName      string    `json:"donor_name,omitempty"`
	DonorPhone     string    `json:"donor_phone,omitempty"`
	DonorBloodType BloodType `json:"donor_blood_type,omitempty"`
}

type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type BloodRequest struct {
	ID            string        `json:"id"`
	HospitalID    string        `json:"hospital_id"`
	PatientName   string        `json:"patient_name"`
	PatientAge    int           `json:"patient_age"`
	PatientGender Gender        `json:"patient_gender"`
	BloodType     BloodType     `json:"blood_type"`
	UnitsNeeded   int           `json:"units_needed"`
	Urgency       Urgency       `json:"urgency"`
	NeededBy      time.Time     `json:"needed_by"`
	Description   string        `json:"description"`
	IsEmergency   bool          `json:"is_emergency"`
	ContactInfo   ContactInfo   `json:"contact_info"`
	Status        RequestStatus `json:"status"`
	MatchedDonors []MatchEntry  `json:"matched_donors"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Denormalized hospital fields for listings.
	HospitalName    string `json:"hospital_name,omitempty"`
	HospitalPhone   string `json:"hospital_phone,omitempty"`
	HospitalAddress string `json:"hospital_address,omitempty"`
	HospitalCity    string `json:"hospital_city,omitempty"`
}

// RequiresEmergencyEligible reports whether matching must restrict to
// emergency-eligible donors.
func (r *BloodRequest) RequiresEmergencyEligible() bool {
	return r.IsEmergency || r.Urgency == UrgencyCritical
}

// Validate checks the field ranges a hospital-submitted request must satisfy.
func (r *BloodRequest) Validate() error {
	if r.PatientName == "" || r.Description == "" {
		return xerrors.ErrInvalidRequest
	}
	if r.PatientAge < 1 || r.PatientAge > 120 {
		return xerrors.ErrInvalidPatientAge
	}
	if !r.PatientGender.Valid() {
		return xerrors.ErrInvalidGender
	}
	if !r.BloodType.Valid() {
		return xerrors.ErrInvalidBloodType
	}
	if r.UnitsNeeded < 1 || r.UnitsNeeded > 10 {
		return xerrors.ErrInvalidUnitsNeeded
	}
	if !r.Urgency.Valid() {
		return xerrors.ErrInvalidUrgency
	}
	if r.NeededBy.IsZero() {
		return xerrors.ErrInvalidRequest
	}
	return nil
}
