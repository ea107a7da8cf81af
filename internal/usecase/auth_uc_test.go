package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/pkg/jwtutil"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

func testAuthUsecase() *AuthUsecase {
	signer := jwtutil.NewSigner("test-secret", "blood-donation", time.Hour)
	return NewAuthUsecase(nil, nil, signer, zap.NewNop())
}

func validDonorInput() RegisterDonorInput {
	return RegisterDonorInput{
		Name:      "Aarav Sharma",
		Email:     "aarav@example.com",
		Password:  "secret123",
		Phone:     "+91-9700000001",
		BloodType: domain.OPositive,
		Location:  domain.GeoPoint{Longitude: 77.209, Latitude: 28.614},
	}
}

func TestRegisterDonor_Validation(t *testing.T) {
	uc := testAuthUsecase()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*RegisterDonorInput)
		wantErr error
	}{
		{"missing email", func(in *RegisterDonorInput) { in.Email = " " }, xerrors.ErrEmailRequired},
		{"missing password", func(in *RegisterDonorInput) { in.Password = "" }, xerrors.ErrPasswordRequired},
		{"short password", func(in *RegisterDonorInput) { in.Password = "abc" }, xerrors.ErrPasswordTooShort},
		{"bad blood type", func(in *RegisterDonorInput) { in.BloodType = "C+" }, xerrors.ErrInvalidBloodType},
		{"missing location", func(in *RegisterDonorInput) { in.Location = domain.GeoPoint{} }, xerrors.ErrMissingLocation},
		{"radius too large", func(in *RegisterDonorInput) { in.MaxDistanceKm = 51 }, xerrors.ErrInvalidMaxDistance},
		{"negative radius", func(in *RegisterDonorInput) { in.MaxDistanceKm = -1 }, xerrors.ErrInvalidMaxDistance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validDonorInput()
			tt.mutate(&in)
			_, _, err := uc.RegisterDonor(ctx, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterHospital_Validation(t *testing.T) {
	uc := testAuthUsecase()
	ctx := context.Background()

	in := RegisterHospitalInput{
		Name:     "Apollo Hospital",
		Email:    "apollo@example.com",
		Password: "secret123",
		Location: domain.GeoPoint{Longitude: 77.209, Latitude: 28.614},
	}
	_, _, err := uc.RegisterHospital(ctx, in)
	assert.ErrorIs(t, err, xerrors.ErrInvalidRequest) // registration number missing

	in.RegistrationNumber = "REG-101"
	in.Location = domain.GeoPoint{}
	_, _, err = uc.RegisterHospital(ctx, in)
	assert.ErrorIs(t, err, xerrors.ErrMissingLocation)
}

func TestResolve(t *testing.T) {
	uc := testAuthUsecase()

	identity, err := uc.Resolve(&jwtutil.Claims{SubjectID: "d-1", Role: "donor"})
	assert.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: "d-1", Role: domain.RoleDonor}, identity)

	identity, err = uc.Resolve(&jwtutil.Claims{SubjectID: "h-1", Role: "hospital"})
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleHospital, identity.Role)

	_, err = uc.Resolve(&jwtutil.Claims{SubjectID: "a-1", Role: "admin"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidToken)
}
