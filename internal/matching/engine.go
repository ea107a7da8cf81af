package matching

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

const (
	// OuterRadiusMeters is the hard search ceiling; no donor preference
	// can widen it.
	OuterRadiusMeters = 50_000

	// MaxCandidates caps the match list per request.
	MaxCandidates = 20
)

// SearchCriteria is the donor filter handed to the geo store.
type SearchCriteria struct {
	Center        domain.GeoPoint
	RadiusMeters  float64
	BloodTypes    []domain.BloodType
	OnlyAvailable bool
	OnlyEmergency bool
}

// DonorSearcher is the geo-indexed donor directory. Results carry the
// distance from the search center and need not be ordered.
type DonorSearcher interface {
	SearchNearby(ctx context.Context, criteria SearchCriteria) ([]domain.DonorCandidate, error)
}

// Engine produces the ranked, capped candidate list for a blood request.
// It is a pure query; persisting the resulting match entries is the
// caller's job.
type Engine struct {
	donors DonorSearcher
	logger *zap.Logger
}

func NewEngine(donors DonorSearcher, logger *zap.Logger) *Engine {
	return &Engine{donors: donors, logger: logger}
}

// Match finds eligible donors for the request, ranked by distance from
// the hospital. An empty result is a valid outcome, not an error.
func (e *Engine) Match(ctx context.Context, req *domain.BloodRequest, hospitalLoc domain.GeoPoint) ([]domain.DonorCandidate, error) {
	if hospitalLoc.IsZero() {
		return nil, xerrors.ErrMissingLocation
	}
	if err := hospitalLoc.Validate(); err != nil {
		return nil, err
	}

	criteria := SearchCriteria{
		Center:        hospitalLoc,
		RadiusMeters:  OuterRadiusMeters,
		BloodTypes:    CompatibleDonorTypes(req.BloodType),
		OnlyAvailable: true,
		OnlyEmergency: req.RequiresEmergencyEligible(),
	}

	candidates, err := e.donors.SearchNearby(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("donor search failed: %w", err)
	}

	// Each donor's own radius preference can shrink the search bound,
	// never widen it.
	matched := candidates[:0]
	for _, c := range candidates {
		if c.DistanceMeters <= float64(c.MaxDistanceKm)*1000 {
			matched = append(matched, c)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].DistanceMeters < matched[j].DistanceMeters
	})

	if len(matched) > MaxCandidates {
		matched = matched[:MaxCandidates]
	}

	e.logger.Info("Matched donors for blood request",
		zap.String("blood_type", string(req.BloodType)),
		zap.Bool("emergency_only", criteria.OnlyEmergency),
		zap.Int("candidates", len(candidates)),
		zap.Int("matched", len(matched)))

	return matched, nil
}
