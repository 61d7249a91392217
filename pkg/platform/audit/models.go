package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies outbox events for routing and retention downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: attendance
	// decisions and their overrides.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers credential material changes such as venue token
	// issuance and biometric enrollment review.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers everything else.
	CategoryOperations EventCategory = "operations"
)

// EventType names an outbox event.
type EventType string

const (
	EventVerificationEvaluated EventType = "attendance.verification_evaluated"
	EventStatusOverridden      EventType = "attendance.status_overridden"
	EventVenueTokenIssued      EventType = "venue_token.issued"
	EventEnrollmentSubmitted   EventType = "enrollment.submitted"
	EventEnrollmentReviewed    EventType = "enrollment.reviewed"
)

var eventCategories = map[EventType]EventCategory{
	EventVerificationEvaluated: CategoryCompliance,
	EventStatusOverridden:      CategoryCompliance,
	EventVenueTokenIssued:      CategorySecurity,
	EventEnrollmentSubmitted:   CategorySecurity,
	EventEnrollmentReviewed:    CategorySecurity,
}

// Category returns the event's category, defaulting to operations.
func (e EventType) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// OutboxEntry is one event waiting to be relayed to the broker. Entries are
// written in the same transaction as the state change they describe.
type OutboxEntry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     EventType
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// NewOutboxEntry builds an unpublished entry with a fresh ID.
func NewOutboxEntry(aggregateType, aggregateID string, eventType EventType, payload []byte, now time.Time) OutboxEntry {
	return OutboxEntry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}
