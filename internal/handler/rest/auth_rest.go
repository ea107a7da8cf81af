package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/middleware"
	"github.com/senseihimanshu/blood-donation/internal/usecase"
	"github.com/senseihimanshu/blood-donation/pkg/response"
)

type AuthHandler struct {
	authUsecase     *usecase.AuthUsecase
	donorUsecase    *usecase.DonorUsecase
	hospitalUsecase *usecase.HospitalUsecase
	logger          *zap.Logger
}

func NewAuthHandler(
	authUsecase *usecase.AuthUsecase,
	donorUsecase *usecase.DonorUsecase,
	hospitalUsecase *usecase.HospitalUsecase,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:     authUsecase,
		donorUsecase:    donorUsecase,
		hospitalUsecase: hospitalUsecase,
		logger:          logger,
	}
}

type geoPointBody struct {
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
}

func (g geoPointBody) toPoint() domain.GeoPoint {
	if len(g.Coordinates) != 2 {
		return domain.GeoPoint{}
	}
	return domain.GeoPoint{Longitude: g.Coordinates[0], Latitude: g.Coordinates[1]}
}

// RegisterDonor handles POST /api/auth/register/donor
func (h *AuthHandler) RegisterDonor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name                string           `json:"name"`
		Email               string           `json:"email"`
		Password            string           `json:"password"`
		Phone               string           `json:"phone"`
		BloodType           domain.BloodType `json:"blood_type"`
		Coordinates         []float64        `json:"coordinates"`
		Address             string           `json:"address"`
		MaxDistanceKm       int              `json:"max_distance_km"`
		IsEmergencyEligible bool             `json:"is_emergency_eligible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	donor, result, err := h.authUsecase.RegisterDonor(r.Context(), usecase.RegisterDonorInput{
		Name:                body.Name,
		Email:               body.Email,
		Password:            body.Password,
		Phone:               body.Phone,
		BloodType:           body.BloodType,
		Location:            geoPointBody{Coordinates: body.Coordinates}.toPoint(),
		Address:             body.Address,
		MaxDistanceKm:       body.MaxDistanceKm,
		IsEmergencyEligible: body.IsEmergencyEligible,
	})
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"token": result.Token,
		"user": map[string]interface{}{
			"id":         donor.ID,
			"name":       donor.Name,
			"email":      donor.Email,
			"blood_type": donor.BloodType,
			"type":       domain.RoleDonor,
		},
	})
}

// RegisterHospital handles POST /api/auth/register/hospital
func (h *AuthHandler) RegisterHospital(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name               string               `json:"name"`
		Email              string               `json:"email"`
		Password           string               `json:"password"`
		Phone              string               `json:"phone"`
		RegistrationNumber string               `json:"registration_number"`
		Coordinates        []float64            `json:"coordinates"`
		Address            string               `json:"address"`
		City               string               `json:"city"`
		State              string               `json:"state"`
		Pincode            string               `json:"pincode"`
		ContactPerson      domain.ContactPerson `json:"contact_person"`
		Services           []string             `json:"services"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hospital, result, err := h.authUsecase.RegisterHospital(r.Context(), usecase.RegisterHospitalInput{
		Name:               body.Name,
		Email:              body.Email,
		Password:           body.Password,
		Phone:              body.Phone,
		RegistrationNumber: body.RegistrationNumber,
		Location:           geoPointBody{Coordinates: body.Coordinates}.toPoint(),
		Address:            body.Address,
		City:               body.City,
		State:              body.State,
		Pincode:            body.Pincode,
		ContactPerson:      body.ContactPerson,
		Services:           body.Services,
	})
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"token": result.Token,
		"user": map[string]interface{}{
			"id":                  hospital.ID,
			"name":                hospital.Name,
			"email":               hospital.Email,
			"registration_number": hospital.RegistrationNumber,
			"type":                domain.RoleHospital,
		},
	})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginDonor handles POST /api/auth/login/donor
func (h *AuthHandler) LoginDonor(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	donor, result, err := h.authUsecase.LoginDonor(r.Context(), body.Email, body.Password)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"token": result.Token,
		"user": map[string]interface{}{
			"id":         donor.ID,
			"name":       donor.Name,
			"email":      donor.Email,
			"blood_type": donor.BloodType,
			"type":       domain.RoleDonor,
		},
	})
}

// LoginHospital handles POST /api/auth/login/hospital
func (h *AuthHandler) LoginHospital(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hospital, result, err := h.authUsecase.LoginHospital(r.Context(), body.Email, body.Password)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"token": result.Token,
		"user": map[string]interface{}{
			"id":                  hospital.ID,
			"name":                hospital.Name,
			"email":               hospital.Email,
			"registration_number": hospital.RegistrationNumber,
			"type":                domain.RoleHospital,
		},
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	switch identity.Role {
	case domain.RoleDonor:
		donor, err := h.donorUsecase.GetProfile(r.Context(), identity.ID)
		if err != nil {
			status := statusFor(err)
			response.Error(w, status, messageFor(err, status))
			return
		}
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"user": map[string]interface{}{
				"id":         donor.ID,
				"name":       donor.Name,
				"email":      donor.Email,
				"blood_type": donor.BloodType,
				"type":       domain.RoleDonor,
			},
		})
	case domain.RoleHospital:
		hospital, err := h.hospitalUsecase.GetProfile(r.Context(), identity.ID)
		if err != nil {
			status := statusFor(err)
			response.Error(w, status, messageFor(err, status))
			return
		}
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"user": map[string]interface{}{
				"id":                  hospital.ID,
				"name":                hospital.Name,
				"email":               hospital.Email,
				"registration_number": hospital.RegistrationNumber,
				"type":                domain.RoleHospital,
			},
		})
	}
}
