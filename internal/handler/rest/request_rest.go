package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/middleware"
	"github.com/senseihimanshu/blood-donation/internal/usecase"
	"github.com/senseihimanshu/blood-donation/pkg/response"
)

type RequestHandler struct {
	requestUsecase *usecase.RequestUsecase
	logger         *zap.Logger
}

func NewRequestHandler(requestUsecase *usecase.RequestUsecase, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{requestUsecase: requestUsecase, logger: logger}
}

// Create handles POST /api/requests (hospitals only)
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !identity.IsHospital() {
		response.Error(w, http.StatusForbidden, "Only hospitals can create blood requests")
		return
	}

	var body struct {
		PatientName   string             `json:"patient_name"`
		PatientAge    int                `json:"patient_age"`
		PatientGender domain.Gender      `json:"patient_gender"`
		BloodType     domain.BloodType   `json:"blood_type"`
		UnitsNeeded   int                `json:"units_needed"`
		Urgency       domain.Urgency     `json:"urgency"`
		NeededBy      time.Time          `json:"needed_by"`
		Description   string             `json:"description"`
		IsEmergency   bool               `json:"is_emergency"`
		ContactInfo   domain.ContactInfo `json:"contact_info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.requestUsecase.Create(r.Context(), identity, usecase.CreateRequestInput{
		PatientName:   body.PatientName,
		PatientAge:    body.PatientAge,
		PatientGender: body.PatientGender,
		BloodType:     body.BloodType,
		UnitsNeeded:   body.UnitsNeeded,
		Urgency:       body.Urgency,
		NeededBy:      body.NeededBy,
		Description:   body.Description,
		IsEmergency:   body.IsEmergency,
		ContactInfo:   body.ContactInfo,
	})
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	h.logger.Info("Blood request created",
		zap.String("request_id", result.Request.ID),
		zap.String("hospital_id", identity.ID),
		zap.Int("matched_donors", result.MatchedDonorCount))

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":              "Blood request created successfully",
		"blood_request":        result.Request,
		"matched_donors_count": result.MatchedDonorCount,
	})
}

// ListForHospital handles GET /api/requests/hospital
func (h *RequestHandler) ListForHospital(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleHospital)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	status := domain.RequestStatus(q.Get("status"))

	result, err := h.requestUsecase.ListForHospital(r.Context(), identity, status, page, limit)
	if err != nil {
		httpStatus := statusFor(err)
		response.Error(w, httpStatus, messageFor(err, httpStatus))
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// ListForDonor handles GET /api/requests/donor
func (h *RequestHandler) ListForDonor(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleDonor)
	if !ok {
		return
	}

	requests, err := h.requestUsecase.ListForDonor(r.Context(), identity)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}
	response.JSON(w, http.StatusOK, requests)
}

// Respond handles PATCH /api/requests/{id}/respond (donors only)
func (h *RequestHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleDonor)
	if !ok {
		return
	}

	var body struct {
		Response domain.MatchStatus `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.requestUsecase.Respond(r.Context(), identity, chi.URLParam(r, "id"), body.Response)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Response recorded: " + string(body.Response),
		"blood_request": req,
	})
}

// MarkDonated handles PATCH /api/requests/{id}/donated/{donorID} (hospitals only)
func (h *RequestHandler) MarkDonated(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleHospital)
	if !ok {
		return
	}

	req, err := h.requestUsecase.MarkDonated(r.Context(), identity,
		chi.URLParam(r, "id"), chi.URLParam(r, "donorID"))
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Donation recorded successfully",
		"blood_request": req,
	})
}

// ListEmergency handles GET /api/requests/emergency (public)
func (h *RequestHandler) ListEmergency(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requestUsecase.ListEmergency(r.Context())
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}
	response.JSON(w, http.StatusOK, requests)
}
