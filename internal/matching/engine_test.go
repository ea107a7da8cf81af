package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

// fakeDirectory mimics the donor store: it applies the criteria's
// attribute and radius predicates and annotates distances, like the SQL
// search does. Per-donor radius preferences are left to the engine.
type fakeDirectory struct {
	donors []fakeDonor
}

type fakeDonor struct {
	donor          domain.Donor
	distanceMeters float64
}

func (f *fakeDirectory) SearchNearby(_ context.Context, criteria SearchCriteria) ([]domain.DonorCandidate, error) {
	typeSet := make(map[domain.BloodType]bool, len(criteria.BloodTypes))
	for _, t := range criteria.BloodTypes {
		typeSet[t] = true
	}

	var out []domain.DonorCandidate
	for _, fd := range f.donors {
		if !typeSet[fd.donor.BloodType] {
			continue
		}
		if criteria.OnlyAvailable && !fd.donor.IsAvailable {
			continue
		}
		if criteria.OnlyEmergency && !fd.donor.IsEmergencyEligible {
			continue
		}
		if fd.distanceMeters > criteria.RadiusMeters {
			continue
		}
		out = append(out, domain.DonorCandidate{Donor: fd.donor, DistanceMeters: fd.distanceMeters})
	}
	return out, nil
}

func newDonor(id string, bt domain.BloodType, maxKm int, available, emergency bool) domain.Donor {
	return domain.Donor{
		ID:                  id,
		Name:                "Donor " + id,
		BloodType:           bt,
		MaxDistanceKm:       maxKm,
		IsAvailable:         available,
		IsEmergencyEligible: emergency,
	}
}

func testEngine(donors ...fakeDonor) *Engine {
	return NewEngine(&fakeDirectory{donors: donors}, zap.NewNop())
}

var delhi = domain.GeoPoint{Longitude: 77.209, Latitude: 28.614}

func TestMatch_EmergencyExcludesIneligibleDonors(t *testing.T) {
	// Donor A: O-, available, emergency-eligible, 2km away, radius 10km.
	// Donor B: O-, available, NOT emergency-eligible, 1km away.
	engine := testEngine(
		fakeDonor{donor: newDonor("A", domain.ONegative, 10, true, true), distanceMeters: 2000},
		fakeDonor{donor: newDonor("B", domain.ONegative, 10, true, false), distanceMeters: 1000},
	)

	req := &domain.BloodRequest{
		BloodType:   domain.ONegative,
		Urgency:     domain.UrgencyCritical,
		IsEmergency: true,
	}

	matches, err := engine.Match(context.Background(), req, delhi)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "A", matches[0].ID)
	assert.Equal(t, 2000.0, matches[0].DistanceMeters)
}

func TestMatch_RespectsDonorRadiusPreference(t *testing.T) {
	// 12km away but the donor only travels 10km.
	engine := testEngine(
		fakeDonor{donor: newDonor("near", domain.OPositive, 10, true, false), distanceMeters: 9_000},
		fakeDonor{donor: newDonor("far", domain.OPositive, 10, true, false), distanceMeters: 12_000},
	)

	req := &domain.BloodRequest{BloodType: domain.OPositive, Urgency: domain.UrgencyMedium}

	matches, err := engine.Match(context.Background(), req, delhi)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "near", matches[0].ID)
}

func TestMatch_OuterBoundCapsDonorPreference(t *testing.T) {
	// The donor would travel 50km, but sits outside the hard ceiling.
	engine := testEngine(
		fakeDonor{donor: newDonor("outside", domain.OPositive, 50, true, false), distanceMeters: 60_000},
	)

	req := &domain.BloodRequest{BloodType: domain.OPositive, Urgency: domain.UrgencyLow}

	matches, err := engine.Match(context.Background(), req, delhi)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatch_SortedAscendingAndCapped(t *testing.T) {
	var donors []fakeDonor
	for i := 0; i < 30; i++ {
		donors = append(donors, fakeDonor{
			donor:          newDonor(fmt.Sprintf("d%02d", i), domain.ABPositive, 50, true, false),
			distanceMeters: float64(30_000 - i*1000),
		})
	}
	engine := testEngine(donors...)

	req := &domain.BloodRequest{BloodType: domain.ABPositive, Urgency: domain.UrgencyHigh}

	matches, err := engine.Match(context.Background(), req, delhi)
	require.NoError(t, err)
	assert.Len(t, matches, MaxCandidates)

	seen := make(map[string]bool)
	for i, m := range matches {
		assert.False(t, seen[m.ID], "duplicate donor %s", m.ID)
		seen[m.ID] = true
		if i > 0 {
			assert.LessOrEqual(t, matches[i-1].DistanceMeters, m.DistanceMeters)
		}
	}
}

func TestMatch_CompatibilityDrivesSearch(t *testing.T) {
	// An A+ donor can never supply an O+ recipient.
	engine := testEngine(
		fakeDonor{donor: newDonor("a-pos", domain.APositive, 50, true, false), distanceMeters: 500},
		fakeDonor{donor: newDonor("o-neg", domain.ONegative, 50, true, false), distanceMeters: 800},
	)

	req := &domain.BloodRequest{BloodType: domain.OPositive, Urgency: domain.UrgencyMedium}

	matches, err := engine.Match(context.Background(), req, delhi)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "o-neg", matches[0].ID)
}

func TestMatch_UnavailableDonorsExcluded(t *testing.T) {
	engine := testEngine(
		fakeDonor{donor: newDonor("off", domain.ONegative, 50, false, true), distanceMeters: 100},
	)

	req := &domain.BloodRequest{BloodType: domain.ONegative, Urgency: domain.UrgencyCritical, IsEmergency: true}

	matches, err := engine.Match(context.Background(), req, delhi)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatch_ZeroMatchesIsNotAnError(t *testing.T) {
	engine := testEngine()

	req := &domain.BloodRequest{BloodType: domain.ABNegative, Urgency: domain.UrgencyLow}

	matches, err := engine.Match(context.Background(), req, delhi)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatch_MissingHospitalLocationFails(t *testing.T) {
	engine := testEngine(
		fakeDonor{donor: newDonor("A", domain.ONegative, 10, true, true), distanceMeters: 2000},
	)

	req := &domain.BloodRequest{BloodType: domain.ONegative, Urgency: domain.UrgencyHigh}

	_, err := engine.Match(context.Background(), req, domain.GeoPoint{})
	assert.ErrorIs(t, err, xerrors.ErrMissingLocation)
}
