package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/middleware"
	"github.com/senseihimanshu/blood-donation/internal/usecase"
	"github.com/senseihimanshu/blood-donation/pkg/response"
)

type DonorHandler struct {
	donorUsecase *usecase.DonorUsecase
	logger       *zap.Logger
}

func NewDonorHandler(donorUsecase *usecase.DonorUsecase, logger *zap.Logger) *DonorHandler {
	return &DonorHandler{donorUsecase: donorUsecase, logger: logger}
}

func requireRole(w http.ResponseWriter, r *http.Request, role domain.Role) (domain.Identity, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return domain.Identity{}, false
	}
	if identity.Role != role {
		response.Error(w, http.StatusForbidden, "Access denied")
		return domain.Identity{}, false
	}
	return identity, true
}

// GetProfile handles GET /api/donors/profile
func (h *DonorHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleDonor)
	if !ok {
		return
	}

	donor, err := h.donorUsecase.GetProfile(r.Context(), identity.ID)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}
	response.JSON(w, http.StatusOK, donor)
}

// UpdateProfile handles PUT /api/donors/profile
func (h *DonorHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleDonor)
	if !ok {
		return
	}

	var body struct {
		Name        string           `json:"name"`
		Phone       string           `json:"phone"`
		BloodType   domain.BloodType `json:"blood_type"`
		Coordinates []float64        `json:"coordinates"`
		Address     string           `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	donor, err := h.donorUsecase.UpdateProfile(r.Context(), identity.ID, usecase.UpdateDonorProfileInput{
		Name:      body.Name,
		Phone:     body.Phone,
		BloodType: body.BloodType,
		Location:  geoPointBody{Coordinates: body.Coordinates}.toPoint(),
		Address:   body.Address,
	})
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}
	response.JSON(w, http.StatusOK, donor)
}

// ToggleAvailability handles PATCH /api/donors/availability-toggle
func (h *DonorHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleDonor)
	if !ok {
		return
	}

	v, err := h.donorUsecase.ToggleAvailability(r.Context(), identity.ID)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	state := "disabled"
	if v {
		state = "enabled"
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Availability " + state,
		"is_available": v,
	})
}

// ToggleEmergencyEligible handles PATCH /api/donors/emergency-toggle
func (h *DonorHandler) ToggleEmergencyEligible(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleDonor)
	if !ok {
		return
	}

	v, err := h.donorUsecase.ToggleEmergencyEligible(r.Context(), identity.ID)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	state := "disabled"
	if v {
		state = "enabled"
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":               "Emergency eligibility " + state,
		"is_emergency_eligible": v,
	})
}

// SetMaxDistance handles PATCH /api/donors/max-distance
func (h *DonorHandler) SetMaxDistance(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleDonor)
	if !ok {
		return
	}

	var body struct {
		MaxDistanceKm int `json:"max_distance_km"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.donorUsecase.SetMaxDistance(r.Context(), identity.ID, body.MaxDistanceKm); err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":         fmt.Sprintf("Max distance updated to %d km", body.MaxDistanceKm),
		"max_distance_km": body.MaxDistanceKm,
	})
}
