package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/repository"
	"github.com/senseihimanshu/blood-donation/pkg/jwtutil"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

const bcryptCost = 12

type AuthUsecase struct {
	donorRepo    *repository.DonorRepository
	hospitalRepo *repository.HospitalRepository
	signer       *jwtutil.Signer
	logger       *zap.Logger
}

func NewAuthUsecase(
	donorRepo *repository.DonorRepository,
	hospitalRepo *repository.HospitalRepository,
	signer *jwtutil.Signer,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		donorRepo:    donorRepo,
		hospitalRepo: hospitalRepo,
		signer:       signer,
		logger:       logger,
	}
}

type RegisterDonorInput struct {
	Name                string
	Email               string
	Password            string
	Phone               string
	BloodType           domain.BloodType
	Location            domain.GeoPoint
	Address             string
	MaxDistanceKm       int
	IsEmergencyEligible bool
}

type RegisterHospitalInput struct {
	Name               string
	Email              string
	Password           string
	Phone              string
	RegistrationNumber string
	Location           domain.GeoPoint
	Address            string
	City               string
	State              string
	Pincode            string
	ContactPerson      domain.ContactPerson
	Services           []string
}

// AuthResult carries the issued token plus the authenticated principal.
type AuthResult struct {
	Token    string
	Identity domain.Identity
	Name     string
	Email    string
}

func (uc *AuthUsecase) RegisterDonor(ctx context.Context, in RegisterDonorInput) (*domain.Donor, *AuthResult, error) {
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, nil, err
	}
	if !in.BloodType.Valid() {
		return nil, nil, xerrors.ErrInvalidBloodType
	}
	if in.Location.IsZero() {
		return nil, nil, xerrors.ErrMissingLocation
	}
	if err := in.Location.Validate(); err != nil {
		return nil, nil, err
	}
	if in.MaxDistanceKm == 0 {
		in.MaxDistanceKm = 10
	}
	if in.MaxDistanceKm < domain.MinDonorRadiusKm || in.MaxDistanceKm > domain.MaxDonorRadiusKm {
		return nil, nil, xerrors.ErrInvalidMaxDistance
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	donor := &domain.Donor{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(in.Name),
		Email:               strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:        string(hash),
		Phone:               in.Phone,
		BloodType:           in.BloodType,
		Location:            in.Location,
		Address:             in.Address,
		MaxDistanceKm:       in.MaxDistanceKm,
		IsAvailable:         true,
		IsEmergencyEligible: in.IsEmergencyEligible,
	}

	created, err := uc.donorRepo.Create(ctx, donor)
	if err != nil {
		return nil, nil, err
	}

	result, err := uc.issueToken(created.ID, domain.RoleDonor, created.Name, created.Email)
	if err != nil {
		return nil, nil, err
	}
	return created, result, nil
}

func (uc *AuthUsecase) RegisterHospital(ctx context.Context, in RegisterHospitalInput) (*domain.Hospital, *AuthResult, error) {
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, nil, err
	}
	if in.RegistrationNumber == "" || in.Name == "" {
		return nil, nil, xerrors.ErrInvalidRequest
	}
	if in.Location.IsZero() {
		return nil, nil, xerrors.ErrMissingLocation
	}
	if err := in.Location.Validate(); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hospital := &domain.Hospital{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(in.Name),
		Email:              strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:       string(hash),
		Phone:              in.Phone,
		RegistrationNumber: in.RegistrationNumber,
		Location:           in.Location,
		Address:            in.Address,
		City:               in.City,
		State:              in.State,
		Pincode:            in.Pincode,
		ContactPerson:      in.ContactPerson,
		Services:           in.Services,
	}

	created, err := uc.hospitalRepo.Create(ctx, hospital)
	if err != nil {
		return nil, nil, err
	}

	result, err := uc.issueToken(created.ID, domain.RoleHospital, created.Name, created.Email)
	if err != nil {
		return nil, nil, err
	}
	return created, result, nil
}

// LoginDonor verifies donor credentials and issues a token.
func (uc *AuthUsecase) LoginDonor(ctx context.Context, email, password string) (*domain.Donor, *AuthResult, error) {
	donor, err := uc.donorRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, xerrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(donor.PasswordHash), []byte(password)) != nil {
		return nil, nil, xerrors.ErrInvalidCredentials
	}

	result, err := uc.issueToken(donor.ID, domain.RoleDonor, donor.Name, donor.Email)
	if err != nil {
		return nil, nil, err
	}
	return donor, result, nil
}

// LoginHospital verifies hospital credentials and issues a token.
func (uc *AuthUsecase) LoginHospital(ctx context.Context, email, password string) (*domain.Hospital, *AuthResult, error) {
	hospital, err := uc.hospitalRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, xerrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hospital.PasswordHash), []byte(password)) != nil {
		return nil, nil, xerrors.ErrInvalidCredentials
	}

	result, err := uc.issueToken(hospital.ID, domain.RoleHospital, hospital.Name, hospital.Email)
	if err != nil {
		return nil, nil, err
	}
	return hospital, result, nil
}

// Resolve maps verified token claims to a tagged identity. This is the
// only place the donor-or-hospital distinction is derived.
func (uc *AuthUsecase) Resolve(claims *jwtutil.Claims) (domain.Identity, error) {
	switch domain.Role(claims.Role) {
	case domain.RoleDonor, domain.RoleHospital:
		return domain.Identity{ID: claims.SubjectID, Role: domain.Role(claims.Role)}, nil
	default:
		return domain.Identity{}, xerrors.ErrInvalidToken
	}
}

func (uc *AuthUsecase) issueToken(id string, role domain.Role, name, email string) (*AuthResult, error) {
	token, err := uc.signer.Sign(id, string(role))
	if err != nil {
		uc.logger.Error("Failed to issue token",
			zap.String("subject_id", id),
			zap.Error(err))
		return nil, err
	}
	return &AuthResult{
		Token:    token,
		Identity: domain.Identity{ID: id, Role: role},
		Name:     name,
		Email:    email,
	}, nil
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return xerrors.ErrEmailRequired
	}
	if password == "" {
		return xerrors.ErrPasswordRequired
	}
	if len(password) < 6 {
		return xerrors.ErrPasswordTooShort
	}
	return nil
}
