package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/pkg/notifier"
	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

// fakeRequestStore emulates the ledger's conditional-update semantics:
// a transition matches only when the entry is in the required prior
// state, otherwise it reports not-found.
type fakeRequestStore struct {
	requests map[string]*domain.BloodRequest
	donors   *fakeDonorReader
}

func newFakeRequestStore(donors *fakeDonorReader) *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[string]*domain.BloodRequest), donors: donors}
}

func (s *fakeRequestStore) CreateWithMatches(_ context.Context, req *domain.BloodRequest, matches []domain.DonorCandidate) (*domain.BloodRequest, error) {
	now := time.Now()
	req.Status = domain.RequestActive
	for _, m := range matches {
		req.MatchedDonors = append(req.MatchedDonors, domain.MatchEntry{
			RequestID:      req.ID,
			DonorID:        m.ID,
			Status:         domain.MatchNotified,
			DistanceMeters: m.DistanceMeters,
			NotifiedAt:     now,
		})
	}
	s.requests[req.ID] = req
	return req, nil
}

func (s *fakeRequestStore) RespondToMatch(_ context.Context, requestID, donorID string, response domain.MatchStatus) (*domain.BloodRequest, error) {
	req, ok := s.requests[requestID]
	if !ok {
		return nil, xerrors.ErrMatchNotFound
	}
	for i := range req.MatchedDonors {
		m := &req.MatchedDonors[i]
		if m.DonorID == donorID && m.Status == domain.MatchNotified {
			now := time.Now()
			m.Status = response
			m.RespondedAt = &now
			return req, nil
		}
	}
	return nil, xerrors.ErrMatchNotFound
}

func (s *fakeRequestStore) MarkDonatedByHospital(_ context.Context, requestID, hospitalID, donorID string) (*domain.BloodRequest, error) {
	req, ok := s.requests[requestID]
	if !ok || req.HospitalID != hospitalID {
		return nil, xerrors.ErrMatchNotFound
	}
	for i := range req.MatchedDonors {
		m := &req.MatchedDonors[i]
		if m.DonorID == donorID && m.Status == domain.MatchConfirmed {
			now := time.Now()
			m.Status = domain.MatchDonated
			m.DonatedAt = &now
			if d, ok := s.donors.donors[donorID]; ok {
				d.LastDonationAt = &now
				d.DonationCount++
			}
			return req, nil
		}
	}
	return nil, xerrors.ErrMatchNotFound
}

func (s *fakeRequestStore) GetByID(_ context.Context, id string) (*domain.BloodRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, xerrors.ErrRequestNotFound
	}
	return req, nil
}

func (s *fakeRequestStore) ListByHospital(_ context.Context, hospitalID string, _ domain.RequestStatus, _, _ int) ([]*domain.BloodRequest, int, error) {
	var out []*domain.BloodRequest
	for _, r := range s.requests {
		if r.HospitalID == hospitalID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (s *fakeRequestStore) ListForDonor(_ context.Context, donorID string) ([]*domain.BloodRequest, error) {
	var out []*domain.BloodRequest
	for _, r := range s.requests {
		for _, m := range r.MatchedDonors {
			if m.DonorID == donorID {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeRequestStore) ListEmergency(_ context.Context, limit int) ([]*domain.BloodRequest, error) {
	var out []*domain.BloodRequest
	for _, r := range s.requests {
		if (r.IsEmergency || r.Urgency == domain.UrgencyCritical) && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeDonorReader struct {
	donors map[string]*domain.Donor
}

func (f *fakeDonorReader) GetByID(_ context.Context, id string) (*domain.Donor, error) {
	d, ok := f.donors[id]
	if !ok {
		return nil, xerrors.ErrDonorNotFound
	}
	return d, nil
}

type fakeHospitalReader struct {
	hospitals map[string]*domain.Hospital
}

func (f *fakeHospitalReader) GetByID(_ context.Context, id string) (*domain.Hospital, error) {
	h, ok := f.hospitals[id]
	if !ok {
		return nil, xerrors.ErrHospitalNotFound
	}
	return h, nil
}

type fakeMatcher struct {
	matches []domain.DonorCandidate
}

func (f *fakeMatcher) Match(_ context.Context, _ *domain.BloodRequest, loc domain.GeoPoint) ([]domain.DonorCandidate, error) {
	if loc.IsZero() {
		return nil, xerrors.ErrMissingLocation
	}
	return f.matches, nil
}

// captureSender records every push delivered through the notifier.
type captureSender struct {
	sent []capturedEvent
}

type capturedEvent struct {
	identity domain.Identity
	event    notifier.Event
}

func (c *captureSender) Send(identity domain.Identity, message interface{}) {
	c.sent = append(c.sent, capturedEvent{identity: identity, event: message.(notifier.Event)})
}

type fixture struct {
	uc       *RequestUsecase
	store    *fakeRequestStore
	donors   *fakeDonorReader
	sender   *captureSender
	hospital domain.Identity
	donorA   domain.Identity
}

func newFixture(t *testing.T, matches ...domain.DonorCandidate) *fixture {
	t.Helper()

	donors := &fakeDonorReader{donors: map[string]*domain.Donor{
		"donor-a": {
			ID:        "donor-a",
			Name:      "Aarav Sharma",
			Phone:     "+91-9700000001",
			BloodType: domain.ONegative,
		},
	}}
	hospitals := &fakeHospitalReader{hospitals: map[string]*domain.Hospital{
		"hosp-1": {
			ID:       "hosp-1",
			Name:     "Apollo Hospital",
			Location: domain.GeoPoint{Longitude: 77.209, Latitude: 28.614},
		},
	}}
	store := newFakeRequestStore(donors)
	sender := &captureSender{}

	uc := NewRequestUsecase(store, donors, hospitals, &fakeMatcher{matches: matches},
		notifier.New(sender), nil, zap.NewNop())

	return &fixture{
		uc:       uc,
		store:    store,
		donors:   donors,
		sender:   sender,
		hospital: domain.Identity{ID: "hosp-1", Role: domain.RoleHospital},
		donorA:   domain.Identity{ID: "donor-a", Role: domain.RoleDonor},
	}
}

func validInput() CreateRequestInput {
	return CreateRequestInput{
		PatientName:   "Demo Patient",
		PatientAge:    34,
		PatientGender: domain.GenderFemale,
		BloodType:     domain.ONegative,
		UnitsNeeded:   2,
		Urgency:       domain.UrgencyCritical,
		NeededBy:      time.Now().Add(12 * time.Hour),
		Description:   "urgent transfusion",
		IsEmergency:   true,
		ContactInfo:   domain.ContactInfo{Phone: "123", Email: "a@b.c"},
	}
}

func TestCreate_NotifiesMatchedDonors(t *testing.T) {
	f := newFixture(t, domain.DonorCandidate{
		Donor:          domain.Donor{ID: "donor-a", Name: "Aarav Sharma", BloodType: domain.ONegative},
		DistanceMeters: 2400,
	})

	result, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, result.MatchedDonorCount)
	assert.Equal(t, domain.RequestActive, result.Request.Status)
	require.Len(t, result.Request.MatchedDonors, 1)
	assert.Equal(t, domain.MatchNotified, result.Request.MatchedDonors[0].Status)

	require.Len(t, f.sender.sent, 1)
	evt := f.sender.sent[0]
	assert.Equal(t, "donor_donor-a", evt.identity.ChannelKey())
	assert.Equal(t, notifier.EventNewBloodRequest, evt.event.Type)

	payload := evt.event.Payload.(notifier.NewBloodRequestPayload)
	assert.Equal(t, result.Request.ID, payload.RequestID)
	assert.Equal(t, "Apollo Hospital", payload.HospitalName)
	assert.Equal(t, domain.ONegative, payload.BloodType)
	assert.True(t, payload.IsEmergency)
	assert.Equal(t, 2, payload.DistanceKm) // 2400m rounds to 2km
}

func TestCreate_ZeroMatchesStillCreatesRequest(t *testing.T) {
	f := newFixture(t)

	result, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)
	assert.Equal(t, 0, result.MatchedDonorCount)
	assert.Equal(t, domain.RequestActive, result.Request.Status)
	assert.Empty(t, result.Request.MatchedDonors)
	assert.Empty(t, f.sender.sent)
}

func TestCreate_RequiresHospitalRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), f.donorA, validInput())
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.PatientAge = 150
	_, err := f.uc.Create(context.Background(), f.hospital, in)
	assert.ErrorIs(t, err, xerrors.ErrInvalidPatientAge)
}

func TestRespond_ConfirmNotifiesHospital(t *testing.T) {
	f := newFixture(t, domain.DonorCandidate{
		Donor: domain.Donor{ID: "donor-a", BloodType: domain.ONegative}, DistanceMeters: 2400,
	})
	result, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)
	f.sender.sent = nil

	req, err := f.uc.Respond(context.Background(), f.donorA, result.Request.ID, domain.MatchConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchConfirmed, req.MatchedDonors[0].Status)
	assert.NotNil(t, req.MatchedDonors[0].RespondedAt)

	require.Len(t, f.sender.sent, 1)
	evt := f.sender.sent[0]
	assert.Equal(t, "hospital_hosp-1", evt.identity.ChannelKey())
	assert.Equal(t, notifier.EventDonorResponse, evt.event.Type)

	payload := evt.event.Payload.(notifier.DonorResponsePayload)
	assert.Equal(t, "Aarav Sharma", payload.DonorName)
	assert.Equal(t, domain.MatchConfirmed, payload.Response)
	assert.Equal(t, domain.ONegative, payload.BloodType)
}

func TestRespond_DeclineTwiceFailsSecondTime(t *testing.T) {
	f := newFixture(t, domain.DonorCandidate{
		Donor: domain.Donor{ID: "donor-a", BloodType: domain.ONegative}, DistanceMeters: 2400,
	})
	result, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)

	_, err = f.uc.Respond(context.Background(), f.donorA, result.Request.ID, domain.MatchDeclined)
	require.NoError(t, err)

	_, err = f.uc.Respond(context.Background(), f.donorA, result.Request.ID, domain.MatchDeclined)
	assert.ErrorIs(t, err, xerrors.ErrMatchNotFound)

	req, err := f.store.GetByID(context.Background(), result.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchDeclined, req.MatchedDonors[0].Status)
}

func TestRespond_RejectsInvalidResponse(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Respond(context.Background(), f.donorA, "req-1", domain.MatchDonated)
	assert.ErrorIs(t, err, xerrors.ErrInvalidResponse)

	_, err = f.uc.Respond(context.Background(), f.donorA, "req-1", domain.MatchNotified)
	assert.ErrorIs(t, err, xerrors.ErrInvalidResponse)
}

func TestRespond_RequiresDonorRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Respond(context.Background(), f.hospital, "req-1", domain.MatchConfirmed)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestMarkDonated_FullFlow(t *testing.T) {
	f := newFixture(t, domain.DonorCandidate{
		Donor: domain.Donor{ID: "donor-a", BloodType: domain.ONegative}, DistanceMeters: 2400,
	})
	result, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)

	_, err = f.uc.Respond(context.Background(), f.donorA, result.Request.ID, domain.MatchConfirmed)
	require.NoError(t, err)

	req, err := f.uc.MarkDonated(context.Background(), f.hospital, result.Request.ID, "donor-a")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchDonated, req.MatchedDonors[0].Status)
	assert.NotNil(t, req.MatchedDonors[0].DonatedAt)

	donor := f.donors.donors["donor-a"]
	assert.Equal(t, 1, donor.DonationCount)
	assert.NotNil(t, donor.LastDonationAt)
}

func TestMarkDonated_TwiceFailsSecondTime(t *testing.T) {
	f := newFixture(t, domain.DonorCandidate{
		Donor: domain.Donor{ID: "donor-a", BloodType: domain.ONegative}, DistanceMeters: 2400,
	})
	result, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)

	_, err = f.uc.Respond(context.Background(), f.donorA, result.Request.ID, domain.MatchConfirmed)
	require.NoError(t, err)

	_, err = f.uc.MarkDonated(context.Background(), f.hospital, result.Request.ID, "donor-a")
	require.NoError(t, err)

	_, err = f.uc.MarkDonated(context.Background(), f.hospital, result.Request.ID, "donor-a")
	assert.ErrorIs(t, err, xerrors.ErrMatchNotFound)

	// Donation history bumped exactly once.
	assert.Equal(t, 1, f.donors.donors["donor-a"].DonationCount)
}

func TestMarkDonated_SkipsNotifiedEntries(t *testing.T) {
	f := newFixture(t, domain.DonorCandidate{
		Donor: domain.Donor{ID: "donor-a", BloodType: domain.ONegative}, DistanceMeters: 2400,
	})
	result, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)

	// Donor never confirmed; a donation cannot be recorded.
	_, err = f.uc.MarkDonated(context.Background(), f.hospital, result.Request.ID, "donor-a")
	assert.ErrorIs(t, err, xerrors.ErrMatchNotFound)
}

func TestMarkDonated_WrongHospitalFails(t *testing.T) {
	f := newFixture(t, domain.DonorCandidate{
		Donor: domain.Donor{ID: "donor-a", BloodType: domain.ONegative}, DistanceMeters: 2400,
	})
	result, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)

	_, err = f.uc.Respond(context.Background(), f.donorA, result.Request.ID, domain.MatchConfirmed)
	require.NoError(t, err)

	other := domain.Identity{ID: "hosp-2", Role: domain.RoleHospital}
	_, err = f.uc.MarkDonated(context.Background(), other, result.Request.ID, "donor-a")
	assert.ErrorIs(t, err, xerrors.ErrMatchNotFound)
}

func TestListEmergency_WithoutCache(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), f.hospital, validInput())
	require.NoError(t, err)

	requests, err := f.uc.ListEmergency(context.Background())
	require.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.True(t, requests[0].IsEmergency)
}
