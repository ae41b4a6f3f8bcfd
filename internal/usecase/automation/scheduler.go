package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainAutomation "fleet-reserve/internal/domain/automation"
	domainDriver "fleet-reserve/internal/domain/driver"
	domainReservation "fleet-reserve/internal/domain/reservation"
	domainVehicle "fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/logger"
	"fleet-reserve/internal/notification"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Summary reports what one automation pass did.
type Summary struct {
	AutoCompleted     int `json:"auto_completed"`
	RemindersSent     int `json:"reminders_sent"`
	CooldownsReleased int `json:"cooldowns_released"`
	Skipped           int `json:"skipped"`
	Failed            int `json:"failed"`
}

// Options are the pass policy knobs; unset values fall back to defaults.
type Options struct {
	// AutoCompleteHour is the local hour from which overdue trips are force
	// completed. nil means the default; an explicit 0 is a valid midnight
	// window.
	AutoCompleteHour *int
	ReminderHours    []int
	ReminderThrottle time.Duration
	CooldownDays     int
	BatchSize        int
}

func (o *Options) applyDefaults() {
	if o.AutoCompleteHour == nil {
		h := 18
		o.AutoCompleteHour = &h
	}
	if len(o.ReminderHours) == 0 {
		o.ReminderHours = []int{8, 14, 20}
	}
	if o.ReminderThrottle <= 0 {
		o.ReminderThrottle = 24 * time.Hour
	}
	if o.CooldownDays <= 0 {
		o.CooldownDays = 2
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}
}

// Scheduler runs the overdue automation. Each pass re-reads persisted state,
// so a restarted process and a concurrently running replica both converge on
// the same work. Idempotency comes from the status-guarded writes and from
// the audit-log throttle, never from memory.
type Scheduler struct {
	reservationRepo domainReservation.Repository
	vehicleRepo     domainVehicle.Repository
	driverRepo      domainDriver.Repository
	auditRepo       domainAutomation.Repository
	notifier        notification.Sender
	clock           clockz.Clock
	loc             *time.Location
	opts            Options
}

func NewScheduler(
	reservationRepo domainReservation.Repository,
	vehicleRepo domainVehicle.Repository,
	driverRepo domainDriver.Repository,
	auditRepo domainAutomation.Repository,
	notifier notification.Sender,
	clock clockz.Clock,
	loc *time.Location,
	opts Options,
) *Scheduler {
	if clock == nil {
		clock = clockz.RealClock
	}
	if loc == nil {
		loc = time.UTC
	}
	opts.applyDefaults()
	return &Scheduler{
		reservationRepo: reservationRepo,
		vehicleRepo:     vehicleRepo,
		driverRepo:      driverRepo,
		auditRepo:       auditRepo,
		notifier:        notifier,
		clock:           clock,
		loc:             loc,
		opts:            opts,
	}
}

// Start runs passes on the given interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	logger.Info("Automation scheduler started",
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Automation scheduler stopped")
			return
		case <-s.clock.After(interval):
			summary, err := s.RunPass(ctx)
			if err != nil {
				logger.Error("Automation pass failed", zap.Error(err))
				continue
			}
			if summary.AutoCompleted > 0 || summary.RemindersSent > 0 || summary.CooldownsReleased > 0 || summary.Failed > 0 {
				logger.Info("Automation pass finished",
					zap.Int("auto_completed", summary.AutoCompleted),
					zap.Int("reminders_sent", summary.RemindersSent),
					zap.Int("cooldowns_released", summary.CooldownsReleased),
					zap.Int("skipped", summary.Skipped),
					zap.Int("failed", summary.Failed),
				)
			}
		}
	}
}

// RunPass executes one scheduled pass: it honors the configured windows and
// delegates to ForceRun for the work itself.
func (s *Scheduler) RunPass(ctx context.Context) (Summary, error) {
	now := s.clock.Now().In(s.loc)
	hour := now.Hour()

	return s.run(ctx, now, hour >= *s.opts.AutoCompleteHour, s.inReminderWindow(hour))
}

// ForceRun executes every stage regardless of the clock window. The admin
// surface uses it to re-run automation on demand.
func (s *Scheduler) ForceRun(ctx context.Context) (Summary, error) {
	return s.run(ctx, s.clock.Now().In(s.loc), true, true)
}

func (s *Scheduler) inReminderWindow(hour int) bool {
	for _, h := range s.opts.ReminderHours {
		if hour == h {
			return true
		}
	}
	return false
}

func (s *Scheduler) run(ctx context.Context, now time.Time, doAutoComplete, doReminders bool) (Summary, error) {
	var summary Summary

	released, err := s.vehicleRepo.ReleaseCooldowns(ctx, now)
	if err != nil {
		logger.Error("Cooldown release failed", zap.Error(err))
		summary.Failed++
	} else {
		summary.CooldownsReleased = int(released)
	}

	if doAutoComplete {
		s.autoCompleteOverdue(ctx, now, &summary)
	}
	if doReminders {
		s.sendReminders(ctx, now, &summary)
	}

	return summary, nil
}

// autoCompleteOverdue closes every active trip whose return date has passed.
// The reading stays null: only the driver knows the real mileage, so the trip
// lands in the pending-mileage state instead of guessing.
func (s *Scheduler) autoCompleteOverdue(ctx context.Context, now time.Time, summary *Summary) {
	today := domainReservation.DateOnly(now)

	due, err := s.reservationRepo.ListActiveDueBy(ctx, today, s.opts.BatchSize)
	if err != nil {
		logger.Error("Could not list overdue reservations", zap.Error(err))
		summary.Failed++
		return
	}

	for _, res := range due {
		if err := s.reservationRepo.AutoComplete(ctx, res.ID, now); err != nil {
			if errors.Is(err, domainReservation.ErrNotActive) {
				// Closed by a concurrent pass or a manual finalize.
				summary.Skipped++
				continue
			}
			logger.Error("Auto-complete failed",
				zap.String("reservation_id", res.ID.String()),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}

		cooldownUntil := today.AddDate(0, 0, s.opts.CooldownDays)
		if err := s.vehicleRepo.BeginCooldown(ctx, res.VehicleID, cooldownUntil); err != nil {
			logger.Error("Could not start cooldown after auto-complete",
				zap.String("vehicle_id", res.VehicleID.String()),
				zap.Error(err),
			)
		}

		s.appendAudit(ctx, &domainAutomation.AuditEntry{
			ReservationID: res.ID,
			Action:        domainAutomation.ActionAutoComplete,
			Success:       true,
			SentAt:        now,
		})

		logger.Info("Reservation auto-completed",
			zap.String("reservation_id", res.ID.String()),
			zap.String("event", "reservation_auto_completed"),
		)
		summary.AutoCompleted++
	}
}

// sendReminders emails drivers who owe an odometer reading. The audit log is
// the throttle: a reservation reminded within the throttle window is skipped.
func (s *Scheduler) sendReminders(ctx context.Context, now time.Time, summary *Summary) {
	if s.notifier == nil {
		logger.Warn("No notification sender configured, skipping reminders")
		return
	}

	today := domainReservation.DateOnly(now)

	pending, err := s.reservationRepo.ListPendingMileage(ctx, s.opts.BatchSize)
	if err != nil {
		logger.Error("Could not list pending-mileage reservations", zap.Error(err))
		summary.Failed++
		return
	}

	for _, res := range pending {
		lastSent, err := s.auditRepo.LastSuccessfulReminder(ctx, res.ID)
		if err != nil {
			logger.Error("Throttle lookup failed",
				zap.String("reservation_id", res.ID.String()),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}
		if lastSent != nil && now.Sub(*lastSent) < s.opts.ReminderThrottle {
			summary.Skipped++
			continue
		}

		driver, err := s.driverRepo.GetByID(ctx, res.DriverID)
		if err != nil {
			logger.Error("Driver lookup failed for reminder",
				zap.String("reservation_id", res.ID.String()),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}

		vehiclePlate := res.VehicleID.String()
		if v, err := s.vehicleRepo.GetByID(ctx, res.VehicleID); err == nil {
			vehiclePlate = v.Plate
		}

		daysOverdue := domainReservation.DaysBetween(res.ReturnDate, today)
		urgency := domainAutomation.UrgencyFor(daysOverdue)

		msg := notification.MileageReminder(driver.Name, vehiclePlate, res.ReturnDate, daysOverdue, urgency)
		msg.Recipient = driver.Email

		entry := &domainAutomation.AuditEntry{
			ReservationID: res.ID,
			Action:        domainAutomation.ActionReminder,
			Urgency:       &urgency,
			Recipient:     &driver.Email,
			SentAt:        now,
		}

		if err := s.notifier.Send(ctx, msg); err != nil {
			errText := err.Error()
			entry.ErrorText = &errText
			s.appendAudit(ctx, entry)
			logger.Error("Reminder email failed",
				zap.String("reservation_id", res.ID.String()),
				zap.String("urgency", string(urgency)),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}

		entry.Success = true
		s.appendAudit(ctx, entry)
		logger.Info("Mileage reminder sent",
			zap.String("reservation_id", res.ID.String()),
			zap.String("urgency", string(urgency)),
			zap.Int("days_overdue", daysOverdue),
			zap.String("event", "mileage_reminder_sent"),
		)
		summary.RemindersSent++
	}
}

func (s *Scheduler) appendAudit(ctx context.Context, entry *domainAutomation.AuditEntry) {
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		// A lost audit row weakens throttling but must not abort the pass.
		logger.Error("Audit append failed",
			zap.String("reservation_id", entry.ReservationID.String()),
			zap.Error(err),
		)
	}
}

// String implements a compact one-line form for log and response payloads.
func (s Summary) String() string {
	return fmt.Sprintf("auto_completed=%d reminders=%d cooldowns=%d skipped=%d failed=%d",
		s.AutoCompleted, s.RemindersSent, s.CooldownsReleased, s.Skipped, s.Failed)
}
