package automation

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what the automation pass did to a reservation.
type Action string

const (
	ActionAutoComplete Action = "auto_complete"
	ActionReminder     Action = "reminder"
)

// Urgency tiers for mileage reminders, derived from days overdue.
type Urgency string

const (
	UrgencyWarning  Urgency = "warning"  // under 3 days
	UrgencyUrgent   Urgency = "urgent"   // 3 to 6 days
	UrgencyCritical Urgency = "critical" // 7 days or more
)

// AuditEntry is the persisted trace of one automation action. Reminder
// throttling is decided from this log, never from in-memory state.
type AuditEntry struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	Action        Action
	Urgency       *Urgency
	Recipient     *string
	Success       bool
	ErrorText     *string
	SentAt        time.Time
}

// UrgencyFor maps days overdue to a reminder tier.
func UrgencyFor(daysOverdue int) Urgency {
	switch {
	case daysOverdue >= 7:
		return UrgencyCritical
	case daysOverdue >= 3:
		return UrgencyUrgent
	default:
		return UrgencyWarning
	}
}
