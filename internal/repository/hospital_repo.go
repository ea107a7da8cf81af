package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

const hospitalColumns = `
	id, name, email, password_hash, phone, registration_number,
	longitude, latitude, address, city, state, pincode,
	contact_name, contact_designation, contact_phone,
	services, is_verified, created_at, updated_at`

type HospitalRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewHospitalRepository(pool *pgxpool.Pool, logger *zap.Logger) *HospitalRepository {
	return &HospitalRepository{pool: pool, logger: logger}
}

func scanHospital(row pgx.Row) (*domain.Hospital, error) {
	h := &domain.Hospital{}
	err := row.Scan(
		&h.ID, &h.Name, &h.Email, &h.PasswordHash, &h.Phone, &h.RegistrationNumber,
		&h.Location.Longitude, &h.Location.Latitude, &h.Address, &h.City, &h.State, &h.Pincode,
		&h.ContactPerson.Name, &h.ContactPerson.Designation, &h.ContactPerson.Phone,
		&h.Services, &h.IsVerified, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Create inserts a new hospital record.
func (r *HospitalRepository) Create(ctx context.Context, h *domain.Hospital) (*domain.Hospital, error) {
	query := `
		INSERT INTO hospitals (
			id, name, email, password_hash, phone, registration_number,
			longitude, latitude, address, city, state, pincode,
			contact_name, contact_designation, contact_phone, services
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + hospitalColumns

	created, err := scanHospital(r.pool.QueryRow(ctx, query,
		h.ID, h.Name, h.Email, h.PasswordHash, h.Phone, h.RegistrationNumber,
		h.Location.Longitude, h.Location.Latitude, h.Address, h.City, h.State, h.Pincode,
		h.ContactPerson.Name, h.ContactPerson.Designation, h.ContactPerson.Phone, h.Services,
	))
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return nil, xerrors.ErrHospitalAlreadyExists
		}
		r.logger.Error("Failed to create hospital",
			zap.String("email", h.Email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create hospital: %w", err)
	}

	r.logger.Info("Hospital registered",
		zap.String("hospital_id", created.ID),
		zap.String("city", created.City))
	return created, nil
}

// GetByID retrieves a hospital by id.
func (r *HospitalRepository) GetByID(ctx context.Context, id string) (*domain.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1`

	h, err := scanHospital(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrHospitalNotFound
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return h, nil
}

// GetByEmail retrieves a hospital by email for login.
func (r *HospitalRepository) GetByEmail(ctx context.Context, email string) (*domain.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE email = lower($1)`

	h, err := scanHospital(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrHospitalNotFound
		}
		return nil, fmt.Errorf("failed to get hospital by email: %w", err)
	}
	return h, nil
}

// UpdateProfile updates the mutable profile fields. Registration number
// and password are immutable through this path.
func (r *HospitalRepository) UpdateProfile(ctx context.Context, id string, h *domain.Hospital) (*domain.Hospital, error) {
	query := `
		UPDATE hospitals SET
			name = $2, phone = $3, longitude = $4, latitude = $5,
			address = $6, city = $7, state = $8, pincode = $9,
			contact_name = $10, contact_designation = $11, contact_phone = $12,
			services = $13, updated_at = now()
		WHERE id = $1
		RETURNING ` + hospitalColumns

	updated, err := scanHospital(r.pool.QueryRow(ctx, query,
		id, h.Name, h.Phone, h.Location.Longitude, h.Location.Latitude,
		h.Address, h.City, h.State, h.Pincode,
		h.ContactPerson.Name, h.ContactPerson.Designation, h.ContactPerson.Phone,
		h.Services,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrHospitalNotFound
		}
		return nil, fmt.Errorf("failed to update hospital profile: %w", err)
	}
	return updated, nil
}

// ListVerified returns verified hospitals, optionally filtered by city
// substring and offered services, sorted by name.
func (r *HospitalRepository) ListVerified(ctx context.Context, city string, services []string, limit, offset int) ([]*domain.Hospital, int, error) {
	query := `
		SELECT ` + hospitalColumns + `
		FROM hospitals
		WHERE is_verified = true
		  AND ($1 = '' OR city ILIKE '%' || $1 || '%')
		  AND (cardinality($2::text[]) = 0 OR services && $2)
		ORDER BY name
		LIMIT $3 OFFSET $4`

	if services == nil {
		services = []string{}
	}

	rows, err := r.pool.Query(ctx, query, city, services, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list hospitals: %w", err)
	}
	defer rows.Close()

	var hospitals []*domain.Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list hospitals: %w", err)
	}

	var total int
	err = r.pool.QueryRow(ctx, `
		SELECT count(*) FROM hospitals
		WHERE is_verified = true
		  AND ($1 = '' OR city ILIKE '%' || $1 || '%')
		  AND (cardinality($2::text[]) = 0 OR services && $2)`,
		city, services).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count hospitals: %w", err)
	}

	return hospitals, total, nil
}
