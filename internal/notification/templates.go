package notification

import (
	"fmt"
	"strings"
	"time"

	"fleet-reserve/internal/domain/automation"
)

// ReservationConfirmation builds the booking confirmation email.
func ReservationConfirmation(driverName, plate string, pickup, ret time.Time, destinations []string) Message {
	return Message{
		Subject: fmt.Sprintf("Reservation confirmed: %s, %s to %s",
			plate, pickup.Format("02/01/2006"), ret.Format("02/01/2006")),
		HTMLBody: fmt.Sprintf(
			"<p>Hello %s,</p>"+
				"<p>Your reservation is confirmed.</p>"+
				"<ul><li>Vehicle: <strong>%s</strong></li>"+
				"<li>Pickup: %s</li><li>Return: %s</li>"+
				"<li>Destinations: %s</li></ul>"+
				"<p>Remember to report the odometer reading when you return the vehicle.</p>",
			driverName, plate,
			pickup.Format("02/01/2006"), ret.Format("02/01/2006"),
			strings.Join(destinations, ", ")),
	}
}

// MileageReminder builds the overdue-mileage reminder with the urgency tier
// reflected in subject and tone.
func MileageReminder(driverName, plate string, returnDate time.Time, daysOverdue int, urgency automation.Urgency) Message {
	var prefix string
	switch urgency {
	case automation.UrgencyCritical:
		prefix = "[CRITICAL] "
	case automation.UrgencyUrgent:
		prefix = "[URGENT] "
	}

	return Message{
		Subject: fmt.Sprintf("%sPending odometer reading for vehicle %s", prefix, plate),
		HTMLBody: fmt.Sprintf(
			"<p>Hello %s,</p>"+
				"<p>Your trip with vehicle <strong>%s</strong> ended on %s and the final "+
				"odometer reading is still missing (%d day(s) overdue).</p>"+
				"<p>Please report the reading so the vehicle's maintenance schedule stays accurate.</p>",
			driverName, plate, returnDate.Format("02/01/2006"), daysOverdue),
	}
}

// MaintenanceAlert builds the fleet-admin notice for a vehicle that crossed a
// maintenance threshold.
func MaintenanceAlert(plate, status string, kmUntilRevision, marginRemaining int) Message {
	return Message{
		Subject: fmt.Sprintf("Maintenance alert (%s): vehicle %s", status, plate),
		HTMLBody: fmt.Sprintf(
			"<p>Vehicle <strong>%s</strong> is <strong>%s</strong>.</p>"+
				"<p>Km until revision: %d. Margin remaining: %d km.</p>",
			plate, status, kmUntilRevision, marginRemaining),
	}
}
