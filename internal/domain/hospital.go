package domain

import "time"

type ContactPerson struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Phone       string `json:"phone"`
}

type Hospital struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	PasswordHash       string        `json:"-"`
	Phone              string        `json:"phone"`
	RegistrationNumber string        `json:"registration_number"`
	Location           GeoPoint      `json:"location"`
	Address            string        `json:"address"`
	City               string        `json:"city"`
	State              string        `json:"state"`
	Pincode            string        `json:"pincode"`
	ContactPerson      ContactPerson `json:"contact_person"`
	Services           []string      `json:"services"`
	IsVerified         bool          `json:"is_verified"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}
