package matching

import (
	"github.com/senseihimanshu/blood-donation/internal/domain"
)

// compatibilityMap lists, per recipient blood type, the donor types that
// may supply it.
var compatibilityMap = map[domain.BloodType][]domain.BloodType{
	domain.APositive:  {domain.APositive, domain.ANegative, domain.OPositive, domain.ONegative},
	domain.ANegative:  {domain.ANegative, domain.ONegative},
	domain.BPositive:  {domain.BPositive, domain.BNegative, domain.OPositive, domain.ONegative},
	domain.BNegative:  {domain.BNegative, domain.ONegative},
	domain.ABPositive: {domain.APositive, domain.ANegative, domain.BPositive, domain.BNegative, domain.ABPositive, domain.ABNegative, domain.OPositive, domain.ONegative},
	domain.ABNegative: {domain.ANegative, domain.BNegative, domain.ABNegative, domain.ONegative},
	domain.OPositive:  {domain.OPositive, domain.ONegative},
	domain.ONegative:  {domain.ONegative},
}

// CompatibleDonorTypes returns the donor types that may supply the given
// recipient type. Unknown input degrades to exact-match-only rather than
// failing.
func CompatibleDonorTypes(recipient domain.BloodType) []domain.BloodType {
	types, ok := compatibilityMap[recipient]
	if !ok {
		return []domain.BloodType{recipient}
	}
	out := make([]domain.BloodType, len(types))
	copy(out, types)
	return out
}
