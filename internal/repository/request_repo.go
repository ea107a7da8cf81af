package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

const requestColumns = `
	r.id, r.hospital_id, r.patient_name, r.patient_age, r.patient_gender,
	r.blood_type, r.units_needed, r.urgency, r.needed_by, r.description,
	r.is_emergency, r.contact_phone, r.contact_email, r.status,
	r.created_at, r.updated_at`

type RequestRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewRequestRepository(pool *pgxpool.Pool, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{pool: pool, logger: logger}
}

func scanRequest(row pgx.Row) (*domain.BloodRequest, error) {
	r := &domain.BloodRequest{}
	err := row.Scan(
		&r.ID, &r.HospitalID, &r.PatientName, &r.PatientAge, &r.PatientGender,
		&r.BloodType, &r.UnitsNeeded, &r.Urgency, &r.NeededBy, &r.Description,
		&r.IsEmergency, &r.ContactInfo.Phone, &r.ContactInfo.Email, &r.Status,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateWithMatches persists the request and its initial match list in
// one transaction: a request is never observable without its matches.
func (repo *RequestRepository) CreateWithMatches(ctx context.Context, req *domain.BloodRequest, matches []domain.DonorCandidate) (*domain.BloodRequest, error) {
	tx, err := repo.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO blood_requests (
			id, hospital_id, patient_name, patient_age, patient_gender,
			blood_type, units_needed, urgency, needed_by, description,
			is_emergency, contact_phone, contact_email, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		req.ID, req.HospitalID, req.PatientName, req.PatientAge, req.PatientGender,
		req.BloodType, req.UnitsNeeded, req.Urgency, req.NeededBy, req.Description,
		req.IsEmergency, req.ContactInfo.Phone, req.ContactInfo.Email, domain.RequestActive,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		repo.logger.Error("Failed to insert blood request",
			zap.String("hospital_id", req.HospitalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to insert blood request: %w", err)
	}
	req.Status = domain.RequestActive

	now := time.Now()
	req.MatchedDonors = req.MatchedDonors[:0]
	for _, m := range matches {
		_, err := tx.Exec(ctx, `
			INSERT INTO match_entries (request_id, donor_id, status, distance_meters, notified_at)
			VALUES ($1, $2, $3, $4, $5)`,
			req.ID, m.ID, domain.MatchNotified, m.DistanceMeters, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert match entry: %w", err)
		}
		req.MatchedDonors = append(req.MatchedDonors, domain.MatchEntry{
			RequestID:      req.ID,
			DonorID:        m.ID,
			Status:         domain.MatchNotified,
			DistanceMeters: m.DistanceMeters,
			NotifiedAt:     now,
			DonorName:      m.Name,
			DonorPhone:     m.Phone,
			DonorBloodType: m.BloodType,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit blood request: %w", err)
	}

	repo.logger.Info("Blood request created",
		zap.String("request_id", req.ID),
		zap.String("blood_type", string(req.BloodType)),
		zap.Int("matched_donors", len(req.MatchedDonors)))
	return req, nil
}

// RespondToMatch moves a Notified entry to Confirmed or Declined via a
// single conditional update. A stale or already-resolved entry matches
// no row and reports ErrMatchNotFound; there is no read-modify-write.
func (repo *RequestRepository) RespondToMatch(ctx context.Context, requestID, donorID string, response domain.MatchStatus) (*domain.BloodRequest, error) {
	tag, err := repo.pool.Exec(ctx, `
		UPDATE match_entries
		SET status = $3, responded_at = now()
		WHERE request_id = $1 AND donor_id = $2 AND status = $4`,
		requestID, donorID, response, domain.MatchNotified)
	if err != nil {
		return nil, fmt.Errorf("failed to record match response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, xerrors.ErrMatchNotFound
	}

	repo.logger.Info("Donor responded to match",
		zap.String("request_id", requestID),
		zap.String("donor_id", donorID),
		zap.String("response", string(response)))

	return repo.GetByID(ctx, requestID)
}

// MarkDonatedByHospital moves a Confirmed entry to Donated and updates
// the donor's donation history in the same transaction. The entry lookup
// is scoped by request id + owning hospital + donor id + Confirmed, so a
// second call finds nothing and fails with ErrMatchNotFound.
func (repo *RequestRepository) MarkDonatedByHospital(ctx context.Context, requestID, hospitalID, donorID string) (*domain.BloodRequest, error) {
	tx, err := repo.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	tag, err := tx.Exec(ctx, `
		UPDATE match_entries m
		SET status = $4, donated_at = $5
		FROM blood_requests r
		WHERE m.request_id = r.id
		  AND m.request_id = $1 AND r.hospital_id = $2
		  AND m.donor_id = $3 AND m.status = $6`,
		requestID, hospitalID, donorID,
		domain.MatchDonated, now, domain.MatchConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to mark donation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, xerrors.ErrMatchNotFound
	}

	tag, err = tx.Exec(ctx, `
		UPDATE donors SET
			last_donation_at = $2,
			donation_count = donation_count + 1,
			updated_at = now()
		WHERE id = $1`, donorID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record donation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, xerrors.ErrDonorNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit donation: %w", err)
	}

	repo.logger.Info("Donation recorded",
		zap.String("request_id", requestID),
		zap.String("donor_id", donorID))

	return repo.GetByID(ctx, requestID)
}

// GetByID loads a request with its match entries and denormalized
// hospital/donor fields.
func (repo *RequestRepository) GetByID(ctx context.Context, id string) (*domain.BloodRequest, error) {
	query := `
		SELECT ` + requestColumns + `, h.name, h.phone, h.address, h.city
		FROM blood_requests r
		JOIN hospitals h ON h.id = r.hospital_id
		WHERE r.id = $1`

	req := &domain.BloodRequest{}
	err := repo.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.HospitalID, &req.PatientName, &req.PatientAge, &req.PatientGender,
		&req.BloodType, &req.UnitsNeeded, &req.Urgency, &req.NeededBy, &req.Description,
		&req.IsEmergency, &req.ContactInfo.Phone, &req.ContactInfo.Email, &req.Status,
		&req.CreatedAt, &req.UpdatedAt,
		&req.HospitalName, &req.HospitalPhone, &req.HospitalAddress, &req.HospitalCity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get blood request: %w", err)
	}

	if err := repo.loadMatches(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (repo *RequestRepository) loadMatches(ctx context.Context, req *domain.BloodRequest) error {
	rows, err := repo.pool.Query(ctx, `
		SELECT m.request_id, m.donor_id, m.status, m.distance_meters,
		       m.notified_at, m.responded_at, m.donated_at,
		       d.name, d.phone, d.blood_type
		FROM match_entries m
		JOIN donors d ON d.id = m.donor_id
		WHERE m.request_id = $1
		ORDER BY m.distance_meters`, req.ID)
	if err != nil {
		return fmt.Errorf("failed to load match entries: %w", err)
	}
	defer rows.Close()

	req.MatchedDonors = nil
	for rows.Next() {
		var m domain.MatchEntry
		err := rows.Scan(
			&m.RequestID, &m.DonorID, &m.Status, &m.DistanceMeters,
			&m.NotifiedAt, &m.RespondedAt, &m.DonatedAt,
			&m.DonorName, &m.DonorPhone, &m.DonorBloodType,
		)
		if err != nil {
			return fmt.Errorf("failed to scan match entry: %w", err)
		}
		req.MatchedDonors = append(req.MatchedDonors, m)
	}
	return rows.Err()
}

// ListByHospital returns the hospital's own requests, newest first.
func (repo *RequestRepository) ListByHospital(ctx context.Context, hospitalID string, status domain.RequestStatus, limit, offset int) ([]*domain.BloodRequest, int, error) {
	query := `
		SELECT ` + requestColumns + `, h.name, h.phone, h.address, h.city
		FROM blood_requests r
		JOIN hospitals h ON h.id = r.hospital_id
		WHERE r.hospital_id = $1
		  AND ($2 = '' OR r.status = $2)
		ORDER BY r.created_at DESC
		LIMIT $3 OFFSET $4`

	requests, err := repo.queryRequests(ctx, query, hospitalID, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = repo.pool.QueryRow(ctx, `
		SELECT count(*) FROM blood_requests
		WHERE hospital_id = $1 AND ($2 = '' OR status = $2)`,
		hospitalID, string(status)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count blood requests: %w", err)
	}
	return requests, total, nil
}

// ListForDonor returns open requests the donor is matched on, newest first.
func (repo *RequestRepository) ListForDonor(ctx context.Context, donorID string) ([]*domain.BloodRequest, error) {
	query := `
		SELECT ` + requestColumns + `, h.name, h.phone, h.address, h.city
		FROM blood_requests r
		JOIN hospitals h ON h.id = r.hospital_id
		JOIN match_entries m ON m.request_id = r.id
		WHERE m.donor_id = $1
		  AND r.status IN ($2, $3)
		ORDER BY r.created_at DESC`

	return repo.queryRequests(ctx, query, donorID,
		string(domain.RequestActive), string(domain.RequestPartiallyFulfilled))
}

// ListEmergency returns the newest open emergency/Critical requests.
// Public read; capped.
func (repo *RequestRepository) ListEmergency(ctx context.Context, limit int) ([]*domain.BloodRequest, error) {
	query := `
		SELECT ` + requestColumns + `, h.name, h.phone, h.address, h.city
		FROM blood_requests r
		JOIN hospitals h ON h.id = r.hospital_id
		WHERE (r.is_emergency = true OR r.urgency = $1)
		  AND r.status IN ($2, $3)
		ORDER BY r.created_at DESC
		LIMIT $4`

	return repo.queryRequests(ctx, query, string(domain.UrgencyCritical),
		string(domain.RequestActive), string(domain.RequestPartiallyFulfilled), limit)
}

func (repo *RequestRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*domain.BloodRequest, error) {
	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blood requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.BloodRequest
	for rows.Next() {
		req := &domain.BloodRequest{}
		err := rows.Scan(
			&req.ID, &req.HospitalID, &req.PatientName, &req.PatientAge, &req.PatientGender,
			&req.BloodType, &req.UnitsNeeded, &req.Urgency, &req.NeededBy, &req.Description,
			&req.IsEmergency, &req.ContactInfo.Phone, &req.ContactInfo.Email, &req.Status,
			&req.CreatedAt, &req.UpdatedAt,
			&req.HospitalName, &req.HospitalPhone, &req.HospitalAddress, &req.HospitalCity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blood request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list blood requests: %w", err)
	}

	for _, req := range requests {
		if err := repo.loadMatches(ctx, req); err != nil {
			return nil, err
		}
	}
	return requests, nil
}
