package notifier

import (
	"time"

	"github.com/senseihimanshu/blood-donation/internal/domain"
)

// EventType names the push events this service emits.
type EventType string

const (
	// EventNewBloodRequest goes to every matched donor when a request
	// is created.
	EventNewBloodRequest EventType = "newBloodRequest"

	// EventDonorResponse goes to the owning hospital when a donor
	// confirms or declines.
	EventDonorResponse EventType = "donorResponse"
)

// Event is the wire envelope pushed over the websocket channel.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

// NewBloodRequestPayload is pushed to matched donors.
type NewBloodRequestPayload struct {
	RequestID    string           `json:"request_id"`
	HospitalName string           `json:"hospital"`
	BloodType    domain.BloodType `json:"blood_type"`
	Urgency      domain.Urgency   `json:"urgency"`
	IsEmergency  bool             `json:"is_emergency"`
	DistanceKm   int              `json:"distance"`
	NeededBy     time.Time        `json:"needed_by"`
}

// DonorResponsePayload is pushed to the owning hospital.
type DonorResponsePayload struct {
	RequestID  string             `json:"request_id"`
	DonorName  string             `json:"donor_name"`
	DonorPhone string             `json:"donor_phone"`
	Response   domain.MatchStatus `json:"response"`
	BloodType  domain.BloodType   `json:"blood_type"`
}

// Sender is the per-identity, fire-and-forget push channel. No delivery
// guarantee: identities with no live session miss the event.
type Sender interface {
	Send(identity domain.Identity, message interface{})
}

// Notifier fans domain events out to live sessions.
type Notifier struct {
	sender Sender
}

func New(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// Notify pushes one event to the identity's channel.
func (n *Notifier) Notify(identity domain.Identity, eventType EventType, payload interface{}) {
	n.sender.Send(identity, Event{Type: eventType, Payload: payload})
}
