package xerrors

import "errors"
import "github.com/jackc/pgx/v5/pgconn"

func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Registration / Login
var (
	ErrDonorAlreadyExists    = errors.New("donor already exists")
	ErrHospitalAlreadyExists = errors.New("hospital already exists")
	ErrDonorNotFound         = errors.New("donor not found")
	ErrHospitalNotFound      = errors.New("hospital not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailAlreadyInUse     = errors.New("email already in use")

	ErrEmailRequired    = errors.New("email required")
	ErrPasswordRequired = errors.New("password required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
)

// Domain validation
var (
	ErrInvalidBloodType   = errors.New("invalid blood type")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrMissingLocation    = errors.New("location is required")
	ErrInvalidMaxDistance = errors.New("max distance must be between 1 and 50 km")
	ErrInvalidPatientAge  = errors.New("patient age must be between 1 and 120")
	ErrInvalidUnitsNeeded = errors.New("units needed must be between 1 and 10")
	ErrInvalidUrgency     = errors.New("invalid urgency level")
	ErrInvalidGender      = errors.New("invalid patient gender")
	ErrInvalidResponse    = errors.New("response must be Confirmed or Declined")
)

// Requests / matches. Stale or already-resolved match entries surface as
// ErrMatchNotFound, same as a missing one.
var (
	ErrRequestNotFound = errors.New("blood request not found")
	ErrMatchNotFound   = errors.New("blood request or matched donor not found")
)

// Token
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
