package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/senseihimanshu/blood-donation/internal/domain"
)

func TestCompatibleDonorTypes_AlwaysIncludesSelf(t *testing.T) {
	for _, bt := range domain.AllBloodTypes {
		types := CompatibleDonorTypes(bt)
		assert.NotEmpty(t, types, "recipient %s", bt)
		assert.Contains(t, types, bt, "recipient %s must accept its own type", bt)
	}
}

func TestCompatibleDonorTypes_UniversalRecipient(t *testing.T) {
	types := CompatibleDonorTypes(domain.ABPositive)
	assert.Len(t, types, 8)
	assert.ElementsMatch(t, domain.AllBloodTypes, types)
}

func TestCompatibleDonorTypes_UniversalDonorOnly(t *testing.T) {
	assert.Equal(t, []domain.BloodType{domain.ONegative}, CompatibleDonorTypes(domain.ONegative))
}

func TestCompatibleDonorTypes_KnownPairs(t *testing.T) {
	tests := []struct {
		recipient domain.BloodType
		donors    []domain.BloodType
	}{
		{domain.APositive, []domain.BloodType{domain.APositive, domain.ANegative, domain.OPositive, domain.ONegative}},
		{domain.ANegative, []domain.BloodType{domain.ANegative, domain.ONegative}},
		{domain.BPositive, []domain.BloodType{domain.BPositive, domain.BNegative, domain.OPositive, domain.ONegative}},
		{domain.BNegative, []domain.BloodType{domain.BNegative, domain.ONegative}},
		{domain.ABNegative, []domain.BloodType{domain.ANegative, domain.BNegative, domain.ABNegative, domain.ONegative}},
		{domain.OPositive, []domain.BloodType{domain.OPositive, domain.ONegative}},
	}
	for _, tt := range tests {
		assert.ElementsMatch(t, tt.donors, CompatibleDonorTypes(tt.recipient), "recipient %s", tt.recipient)
	}
}

func TestCompatibleDonorTypes_UnknownFallsBackToExactMatch(t *testing.T) {
	types := CompatibleDonorTypes(domain.BloodType("X+"))
	assert.Equal(t, []domain.BloodType{domain.BloodType("X+")}, types)
}

func TestCompatibleDonorTypes_ReturnsCopy(t *testing.T) {
	types := CompatibleDonorTypes(domain.APositive)
	types[0] = domain.ONegative
	assert.Equal(t, domain.APositive, CompatibleDonorTypes(domain.APositive)[0])
}
