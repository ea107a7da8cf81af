package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/matching"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

const donorColumns = `
	id, name, email, password_hash, phone, blood_type,
	longitude, latitude, address, max_distance_km,
	is_available, is_emergency_eligible, last_donation_at,
	donation_count, is_verified, created_at, updated_at`

type DonorRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewDonorRepository(pool *pgxpool.Pool, logger *zap.Logger) *DonorRepository {
	return &DonorRepository{pool: pool, logger: logger}
}

func scanDonor(row pgx.Row) (*domain.Donor, error) {
	d := &domain.Donor{}
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.Phone, &d.BloodType,
		&d.Location.Longitude, &d.Location.Latitude, &d.Address, &d.MaxDistanceKm,
		&d.IsAvailable, &d.IsEmergencyEligible, &d.LastDonationAt,
		&d.DonationCount, &d.IsVerified, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a new donor record.
func (r *DonorRepository) Create(ctx context.Context, d *domain.Donor) (*domain.Donor, error) {
	query := `
		INSERT INTO donors (
			id, name, email, password_hash, phone, blood_type,
			longitude, latitude, address, max_distance_km,
			is_available, is_emergency_eligible
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + donorColumns

	created, err := scanDonor(r.pool.QueryRow(ctx, query,
		d.ID, d.Name, d.Email, d.PasswordHash, d.Phone, d.BloodType,
		d.Location.Longitude, d.Location.Latitude, d.Address, d.MaxDistanceKm,
		d.IsAvailable, d.IsEmergencyEligible,
	))
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return nil, xerrors.ErrDonorAlreadyExists
		}
		r.logger.Error("Failed to create donor",
			zap.String("email", d.Email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create donor: %w", err)
	}

	r.logger.Info("Donor registered",
		zap.String("donor_id", created.ID),
		zap.String("blood_type", string(created.BloodType)))
	return created, nil
}

// GetByID retrieves a donor by id.
func (r *DonorRepository) GetByID(ctx context.Context, id string) (*domain.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1`

	d, err := scanDonor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return d, nil
}

// GetByEmail retrieves a donor by email for login.
func (r *DonorRepository) GetByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE email = lower($1)`

	d, err := scanDonor(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to get donor by email: %w", err)
	}
	return d, nil
}

// UpdateProfile updates the mutable profile fields. Password, donation
// history and verification state are owned by other flows.
func (r *DonorRepository) UpdateProfile(ctx context.Context, id string, d *domain.Donor) (*domain.Donor, error) {
	query := `
		UPDATE donors SET
			name = $2, phone = $3, blood_type = $4,
			longitude = $5, latitude = $6, address = $7,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + donorColumns

	updated, err := scanDonor(r.pool.QueryRow(ctx, query,
		id, d.Name, d.Phone, d.BloodType,
		d.Location.Longitude, d.Location.Latitude, d.Address,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to update donor profile: %w", err)
	}
	return updated, nil
}

// ToggleAvailability flips is_available and returns the new value.
func (r *DonorRepository) ToggleAvailability(ctx context.Context, id string) (bool, error) {
	var v bool
	err := r.pool.QueryRow(ctx, `
		UPDATE donors SET is_available = NOT is_available, updated_at = now()
		WHERE id = $1
		RETURNING is_available`, id).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, xerrors.ErrDonorNotFound
		}
		return false, fmt.Errorf("failed to toggle availability: %w", err)
	}
	return v, nil
}

// ToggleEmergencyEligible flips is_emergency_eligible and returns the new value.
func (r *DonorRepository) ToggleEmergencyEligible(ctx context.Context, id string) (bool, error) {
	var v bool
	err := r.pool.QueryRow(ctx, `
		UPDATE donors SET is_emergency_eligible = NOT is_emergency_eligible, updated_at = now()
		WHERE id = $1
		RETURNING is_emergency_eligible`, id).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, xerrors.ErrDonorNotFound
		}
		return false, fmt.Errorf("failed to toggle emergency eligibility: %w", err)
	}
	return v, nil
}

// SetMaxDistance updates the donor's search radius preference.
func (r *DonorRepository) SetMaxDistance(ctx context.Context, id string, km int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE donors SET max_distance_km = $2, updated_at = now()
		WHERE id = $1`, id, km)
	if err != nil {
		return fmt.Errorf("failed to set max distance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrDonorNotFound
	}
	return nil
}

// SearchNearby runs the indexed radius search around the given center,
// annotating each donor with the haversine distance in meters. Attribute
// predicates are pushed into the query; per-donor radius preferences are
// applied by the matching engine.
func (r *DonorRepository) SearchNearby(ctx context.Context, criteria matching.SearchCriteria) ([]domain.DonorCandidate, error) {
	types := make([]string, len(criteria.BloodTypes))
	for i, t := range criteria.BloodTypes {
		types[i] = string(t)
	}

	// 6371000 * 2 * asin(sqrt(...)) is the haversine great-circle
	// distance in meters.
	query := `
		SELECT ` + donorColumns + `, distance_meters FROM (
			SELECT *,
				6371000 * 2 * asin(sqrt(
					power(sin(radians(latitude - $2) / 2), 2) +
					cos(radians($2)) * cos(radians(latitude)) *
					power(sin(radians(longitude - $1) / 2), 2)
				)) AS distance_meters
			FROM donors
			WHERE blood_type = ANY($3)
			  AND ($4 = false OR is_available = true)
			  AND ($5 = false OR is_emergency_eligible = true)
		) nearby
		WHERE distance_meters <= $6
		ORDER BY distance_meters`

	rows, err := r.pool.Query(ctx, query,
		criteria.Center.Longitude, criteria.Center.Latitude,
		types, criteria.OnlyAvailable, criteria.OnlyEmergency,
		criteria.RadiusMeters)
	if err != nil {
		r.logger.Error("Donor geo search failed", zap.Error(err))
		return nil, fmt.Errorf("donor geo search failed: %w", err)
	}
	defer rows.Close()

	var candidates []domain.DonorCandidate
	for rows.Next() {
		var c domain.DonorCandidate
		err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Phone, &c.BloodType,
			&c.Location.Longitude, &c.Location.Latitude, &c.Address, &c.MaxDistanceKm,
			&c.IsAvailable, &c.IsEmergencyEligible, &c.LastDonationAt,
			&c.DonationCount, &c.IsVerified, &c.CreatedAt, &c.UpdatedAt,
			&c.DistanceMeters,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donor candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("donor geo search failed: %w", err)
	}
	return candidates, nil
}
