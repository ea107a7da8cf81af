package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/repository"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

type HospitalUsecase struct {
	hospitalRepo *repository.HospitalRepository
	logger       *zap.Logger
}

func NewHospitalUsecase(hospitalRepo *repository.HospitalRepository, logger *zap.Logger) *HospitalUsecase {
	return &HospitalUsecase{hospitalRepo: hospitalRepo, logger: logger}
}

func (uc *HospitalUsecase) GetProfile(ctx context.Context, hospitalID string) (*domain.Hospital, error) {
	return uc.hospitalRepo.GetByID(ctx, hospitalID)
}

type UpdateHospitalProfileInput struct {
	Name          string
	Phone         string
	Location      domain.GeoPoint
	Address       string
	City          string
	State         string
	Pincode       string
	ContactPerson domain.ContactPerson
	Services      []string
}

func (uc *HospitalUsecase) UpdateProfile(ctx context.Context, hospitalID string, in UpdateHospitalProfileInput) (*domain.Hospital, error) {
	if in.Location.IsZero() {
		return nil, xerrors.ErrMissingLocation
	}
	if err := in.Location.Validate(); err != nil {
		return nil, err
	}

	return uc.hospitalRepo.UpdateProfile(ctx, hospitalID, &domain.Hospital{
		Name:          in.Name,
		Phone:         in.Phone,
		Location:      in.Location,
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
		Pincode:       in.Pincode,
		ContactPerson: in.ContactPerson,
		Services:      in.Services,
	})
}

// HospitalPage is one page of the public hospital directory.
type HospitalPage struct {
	Hospitals   []*domain.Hospital `json:"hospitals"`
	Total       int                `json:"total"`
	TotalPages  int                `json:"total_pages"`
	CurrentPage int                `json:"current_page"`
}

// List returns verified hospitals for the public directory.
func (uc *HospitalUsecase) List(ctx context.Context, city string, services []string, page, limit int) (*HospitalPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	hospitals, total, err := uc.hospitalRepo.ListVerified(ctx, city, services, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &HospitalPage{
		Hospitals:   hospitals,
		Total:       total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}, nil
}
