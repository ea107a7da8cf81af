package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/usecase"
	"github.com/senseihimanshu/blood-donation/pkg/response"
)

type HospitalHandler struct {
	hospitalUsecase *usecase.HospitalUsecase
	logger          *zap.Logger
}

func NewHospitalHandler(hospitalUsecase *usecase.HospitalUsecase, logger *zap.Logger) *HospitalHandler {
	return &HospitalHandler{hospitalUsecase: hospitalUsecase, logger: logger}
}

// GetProfile handles GET /api/hospitals/profile
func (h *HospitalHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleHospital)
	if !ok {
		return
	}

	hospital, err := h.hospitalUsecase.GetProfile(r.Context(), identity.ID)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}
	response.JSON(w, http.StatusOK, hospital)
}

// UpdateProfile handles PUT /api/hospitals/profile
func (h *HospitalHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, domain.RoleHospital)
	if !ok {
		return
	}

	var body struct {
		Name          string               `json:"name"`
		Phone         string               `json:"phone"`
		Coordinates   []float64            `json:"coordinates"`
		Address       string               `json:"address"`
		City          string               `json:"city"`
		State         string               `json:"state"`
		Pincode       string               `json:"pincode"`
		ContactPerson domain.ContactPerson `json:"contact_person"`
		Services      []string             `json:"services"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hospital, err := h.hospitalUsecase.UpdateProfile(r.Context(), identity.ID, usecase.UpdateHospitalProfileInput{
		Name:          body.Name,
		Phone:         body.Phone,
		Location:      geoPointBody{Coordinates: body.Coordinates}.toPoint(),
		Address:       body.Address,
		City:          body.City,
		State:         body.State,
		Pincode:       body.Pincode,
		ContactPerson: body.ContactPerson,
		Services:      body.Services,
	})
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}
	response.JSON(w, http.StatusOK, hospital)
}

// List handles GET /api/hospitals/list (public)
func (h *HospitalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	var services []string
	if s := q.Get("services"); s != "" {
		services = strings.Split(s, ",")
	}

	result, err := h.hospitalUsecase.List(r.Context(), q.Get("city"), services, page, limit)
	if err != nil {
		status := statusFor(err)
		response.Error(w, status, messageFor(err, status))
		return
	}
	response.JSON(w, http.StatusOK, result)
}
