package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/repository"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

type DonorUsecase struct {
	donorRepo *repository.DonorRepository
	logger    *zap.Logger
}

func NewDonorUsecase(donorRepo *repository.DonorRepository, logger *zap.Logger) *DonorUsecase {
	return &DonorUsecase{donorRepo: donorRepo, logger: logger}
}

func (uc *DonorUsecase) GetProfile(ctx context.Context, donorID string) (*domain.Donor, error) {
	return uc.donorRepo.GetByID(ctx, donorID)
}

type UpdateDonorProfileInput struct {
	Name      string
	Phone     string
	BloodType domain.BloodType
	Location  domain.GeoPoint
	Address   string
}

func (uc *DonorUsecase) UpdateProfile(ctx context.Context, donorID string, in UpdateDonorProfileInput) (*domain.Donor, error) {
	if !in.BloodType.Valid() {
		return nil, xerrors.ErrInvalidBloodType
	}
	if in.Location.IsZero() {
		return nil, xerrors.ErrMissingLocation
	}
	if err := in.Location.Validate(); err != nil {
		return nil, err
	}

	return uc.donorRepo.UpdateProfile(ctx, donorID, &domain.Donor{
		Name:      in.Name,
		Phone:     in.Phone,
		BloodType: in.BloodType,
		Location:  in.Location,
		Address:   in.Address,
	})
}

// ToggleAvailability flips whether the donor is considered by matching.
func (uc *DonorUsecase) ToggleAvailability(ctx context.Context, donorID string) (bool, error) {
	v, err := uc.donorRepo.ToggleAvailability(ctx, donorID)
	if err != nil {
		return false, err
	}
	uc.logger.Info("Donor availability toggled",
		zap.String("donor_id", donorID),
		zap.Bool("is_available", v))
	return v, nil
}

// ToggleEmergencyEligible flips inclusion in emergency/Critical matching.
func (uc *DonorUsecase) ToggleEmergencyEligible(ctx context.Context, donorID string) (bool, error) {
	v, err := uc.donorRepo.ToggleEmergencyEligible(ctx, donorID)
	if err != nil {
		return false, err
	}
	uc.logger.Info("Donor emergency eligibility toggled",
		zap.String("donor_id", donorID),
		zap.Bool("is_emergency_eligible", v))
	return v, nil
}

// SetMaxDistance updates the donor's search radius preference.
func (uc *DonorUsecase) SetMaxDistance(ctx context.Context, donorID string, km int) error {
	if km < domain.MinDonorRadiusKm || km > domain.MaxDonorRadiusKm {
		return xerrors.ErrInvalidMaxDistance
	}
	return uc.donorRepo.SetMaxDistance(ctx, donorID, km)
}
