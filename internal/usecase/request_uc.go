package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/pkg/notifier"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

const (
	emergencyCacheKey = "requests:emergency"
	emergencyCacheTTL = 30 * time.Second
	emergencyListCap  = 10
)

// Matcher produces the ranked donor candidate list for a request.
type Matcher interface {
	Match(ctx context.Context, req *domain.BloodRequest, hospitalLoc domain.GeoPoint) ([]domain.DonorCandidate, error)
}

// RequestStore is the request ledger: transactional create plus the
// conditional match-entry transitions.
type RequestStore interface {
	CreateWithMatches(ctx context.Context, req *domain.BloodRequest, matches []domain.DonorCandidate) (*domain.BloodRequest, error)
	RespondToMatch(ctx context.Context, requestID, donorID string, response domain.MatchStatus) (*domain.BloodRequest, error)
	MarkDonatedByHospital(ctx context.Context, requestID, hospitalID, donorID string) (*domain.BloodRequest, error)
	GetByID(ctx context.Context, id string) (*domain.BloodRequest, error)
	ListByHospital(ctx context.Context, hospitalID string, status domain.RequestStatus, limit, offset int) ([]*domain.BloodRequest, int, error)
	ListForDonor(ctx context.Context, donorID string) ([]*domain.BloodRequest, error)
	ListEmergency(ctx context.Context, limit int) ([]*domain.BloodRequest, error)
}

// DonorReader resolves donor records for notification payloads.
type DonorReader interface {
	GetByID(ctx context.Context, id string) (*domain.Donor, error)
}

// HospitalReader resolves the requesting hospital's record.
type HospitalReader interface {
	GetByID(ctx context.Context, id string) (*domain.Hospital, error)
}

type RequestUsecase struct {
	requests  RequestStore
	donors    DonorReader
	hospitals HospitalReader
	matcher   Matcher
	notifier  *notifier.Notifier
	rdb       *redis.Client
	logger    *zap.Logger
}

func NewRequestUsecase(
	requests RequestStore,
	donors DonorReader,
	hospitals HospitalReader,
	matcher Matcher,
	n *notifier.Notifier,
	rdb *redis.Client,
	logger *zap.Logger,
) *RequestUsecase {
	return &RequestUsecase{
		requests:  requests,
		donors:    donors,
		hospitals: hospitals,
		matcher:   matcher,
		notifier:  n,
		rdb:       rdb,
		logger:    logger,
	}
}

type CreateRequestInput struct {
	PatientName   string
	PatientAge    int
	PatientGender domain.Gender
	BloodType     domain.BloodType
	UnitsNeeded   int
	Urgency       domain.Urgency
	NeededBy      time.Time
	Description   string
	IsEmergency   bool
	ContactInfo   domain.ContactInfo
}

// CreateRequestResult is returned to the hospital on creation.
type CreateRequestResult struct {
	Request           *domain.BloodRequest `json:"blood_request"`
	MatchedDonorCount int                  `json:"matched_donors_count"`
}

// Create validates and persists a hospital's blood request together with
// its match list, then fans out newBloodRequest events to the matched
// donors' live sessions. Zero matches is a valid outcome; the request is
// still created Active.
func (uc *RequestUsecase) Create(ctx context.Context, actor domain.Identity, in CreateRequestInput) (*CreateRequestResult, error) {
	if !actor.IsHospital() {
		return nil, xerrors.ErrForbidden
	}

	hospital, err := uc.hospitals.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if hospital.Location.IsZero() {
		return nil, xerrors.ErrMissingLocation
	}

	req := &domain.BloodRequest{
		ID:            uuid.NewString(),
		HospitalID:    hospital.ID,
		PatientName:   in.PatientName,
		PatientAge:    in.PatientAge,
		PatientGender: in.PatientGender,
		BloodType:     in.BloodType,
		UnitsNeeded:   in.UnitsNeeded,
		Urgency:       in.Urgency,
		NeededBy:      in.NeededBy,
		Description:   in.Description,
		IsEmergency:   in.IsEmergency,
		ContactInfo:   in.ContactInfo,
		Status:        domain.RequestActive,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	matches, err := uc.matcher.Match(ctx, req, hospital.Location)
	if err != nil {
		return nil, err
	}

	created, err := uc.requests.CreateWithMatches(ctx, req, matches)
	if err != nil {
		return nil, fmt.Errorf("failed to persist blood request: %w", err)
	}

	for _, m := range matches {
		uc.notifier.Notify(
			domain.Identity{ID: m.ID, Role: domain.RoleDonor},
			notifier.EventNewBloodRequest,
			notifier.NewBloodRequestPayload{
				RequestID:    created.ID,
				HospitalName: hospital.Name,
				BloodType:    created.BloodType,
				Urgency:      created.Urgency,
				IsEmergency:  created.IsEmergency,
				DistanceKm:   int(math.Round(m.DistanceMeters / 1000)),
				NeededBy:     created.NeededBy,
			})
	}

	uc.invalidateEmergencyCache(ctx)

	return &CreateRequestResult{
		Request:           created,
		MatchedDonorCount: len(matches),
	}, nil
}

// Respond records a donor's Confirmed/Declined answer on their own match
// entry and pushes the response to the owning hospital's session.
func (uc *RequestUsecase) Respond(ctx context.Context, actor domain.Identity, requestID string, response domain.MatchStatus) (*domain.BloodRequest, error) {
	if !actor.IsDonor() {
		return nil, xerrors.ErrForbidden
	}
	if response != domain.MatchConfirmed && response != domain.MatchDeclined {
		return nil, xerrors.ErrInvalidResponse
	}

	req, err := uc.requests.RespondToMatch(ctx, requestID, actor.ID, response)
	if err != nil {
		return nil, err
	}

	donor, err := uc.donors.GetByID(ctx, actor.ID)
	if err != nil {
		uc.logger.Warn("Donor lookup failed after match response",
			zap.String("donor_id", actor.ID),
			zap.Error(err))
		return req, nil
	}

	uc.notifier.Notify(
		domain.Identity{ID: req.HospitalID, Role: domain.RoleHospital},
		notifier.EventDonorResponse,
		notifier.DonorResponsePayload{
			RequestID:  req.ID,
			DonorName:  donor.Name,
			DonorPhone: donor.Phone,
			Response:   response,
			BloodType:  donor.BloodType,
		})

	return req, nil
}

// MarkDonated lets the owning hospital move a Confirmed entry to Donated,
// updating the donor's donation history in the same transaction.
func (uc *RequestUsecase) MarkDonated(ctx context.Context, actor domain.Identity, requestID, donorID string) (*domain.BloodRequest, error) {
	if !actor.IsHospital() {
		return nil, xerrors.ErrForbidden
	}
	if donorID == "" {
		return nil, xerrors.ErrInvalidRequest
	}
	return uc.requests.MarkDonatedByHospital(ctx, requestID, actor.ID, donorID)
}

// RequestPage is one page of a hospital's requests.
type RequestPage struct {
	Requests    []*domain.BloodRequest `json:"requests"`
	Total       int                    `json:"total"`
	TotalPages  int                    `json:"total_pages"`
	CurrentPage int                    `json:"current_page"`
}

// ListForHospital returns the caller's own requests.
func (uc *RequestUsecase) ListForHospital(ctx context.Context, actor domain.Identity, status domain.RequestStatus, page, limit int) (*RequestPage, error) {
	if !actor.IsHospital() {
		return nil, xerrors.ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	requests, total, err := uc.requests.ListByHospital(ctx, actor.ID, status, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &RequestPage{
		Requests:    requests,
		Total:       total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}, nil
}

// ListForDonor returns open requests the donor is matched on.
func (uc *RequestUsecase) ListForDonor(ctx context.Context, actor domain.Identity) ([]*domain.BloodRequest, error) {
	if !actor.IsDonor() {
		return nil, xerrors.ErrForbidden
	}
	return uc.requests.ListForDonor(ctx, actor.ID)
}

// ListEmergency returns open emergency/Critical requests. Public read,
// served from a short-lived Redis cache when available.
func (uc *RequestUsecase) ListEmergency(ctx context.Context) ([]*domain.BloodRequest, error) {
	if uc.rdb != nil {
		if cached, err := uc.rdb.Get(ctx, emergencyCacheKey).Result(); err == nil {
			var requests []*domain.BloodRequest
			if json.Unmarshal([]byte(cached), &requests) == nil {
				return requests, nil
			}
		}
	}

	requests, err := uc.requests.ListEmergency(ctx, emergencyListCap)
	if err != nil {
		return nil, err
	}

	if uc.rdb != nil {
		if data, err := json.Marshal(requests); err == nil {
			// Fail open if Redis is unavailable.
			_ = uc.rdb.Set(ctx, emergencyCacheKey, data, emergencyCacheTTL).Err()
		}
	}
	return requests, nil
}

func (uc *RequestUsecase) invalidateEmergencyCache(ctx context.Context) {
	if uc.rdb == nil {
		return
	}
	if err := uc.rdb.Del(ctx, emergencyCacheKey).Err(); err != nil {
		uc.logger.Warn("Failed to invalidate emergency cache", zap.Error(err))
	}
}
