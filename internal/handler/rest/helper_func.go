package handler

import (
	"errors"
	"net/http"

	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

// statusFor maps domain errors to their HTTP status class. Stale-state
// transitions surface as 404, same as a missing record.
func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrUnauthorized),
		errors.Is(err, xerrors.ErrInvalidCredentials),
		errors.Is(err, xerrors.ErrInvalidToken),
		errors.Is(err, xerrors.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrNotFound),
		errors.Is(err, xerrors.ErrDonorNotFound),
		errors.Is(err, xerrors.ErrHospitalNotFound),
		errors.Is(err, xerrors.ErrRequestNotFound),
		errors.Is(err, xerrors.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrDonorAlreadyExists),
		errors.Is(err, xerrors.ErrHospitalAlreadyExists),
		errors.Is(err, xerrors.ErrEmailAlreadyInUse):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrInvalidRequest),
		errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrEmailRequired),
		errors.Is(err, xerrors.ErrPasswordRequired),
		errors.Is(err, xerrors.ErrPasswordTooShort),
		errors.Is(err, xerrors.ErrInvalidBloodType),
		errors.Is(err, xerrors.ErrInvalidCoordinates),
		errors.Is(err, xerrors.ErrMissingLocation),
		errors.Is(err, xerrors.ErrInvalidMaxDistance),
		errors.Is(err, xerrors.ErrInvalidPatientAge),
		errors.Is(err, xerrors.ErrInvalidUnitsNeeded),
		errors.Is(err, xerrors.ErrInvalidUrgency),
		errors.Is(err, xerrors.ErrInvalidGender),
		errors.Is(err, xerrors.ErrInvalidResponse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor hides internals behind a generic message for 5xx errors.
func messageFor(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
