package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-reserve/internal/domain/automation"
	"fleet-reserve/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AutomationRepository struct {
	db *DB
}

func NewAutomationRepository(db *DB) *AutomationRepository {
	return &AutomationRepository{db: db}
}

func (r *AutomationRepository) Append(ctx context.Context, entry *automation.AuditEntry) error {
	entry.ID = uuid.New()

	dbModel := toAuditModel(entry)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

func (r *AutomationRepository) LastSuccessfulReminder(ctx context.Context, reservationID uuid.UUID) (*time.Time, error) {
	var dbModel models.AutomationAuditModel
	err := r.db.DB.WithContext(ctx).
		Where("reservation_id = ? AND action = ? AND success = true",
			reservationID, string(automation.ActionReminder)).
		Order("sent_at DESC").
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last reminder: %w", err)
	}

	sentAt := dbModel.SentAt
	return &sentAt, nil
}

func (r *AutomationRepository) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]*automation.AuditEntry, error) {
	var dbModels []models.AutomationAuditModel

	err := r.db.DB.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("sent_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*automation.AuditEntry, 0, len(dbModels))
	for i := range dbModels {
		entries = append(entries, toAuditEntity(&dbModels[i]))
	}

	return entries, nil
}

func toAuditModel(entry *automation.AuditEntry) *models.AutomationAuditModel {
	var urgency *string
	if entry.Urgency != nil {
		u := string(*entry.Urgency)
		urgency = &u
	}

	return &models.AutomationAuditModel{
		ID:            entry.ID,
		ReservationID: entry.ReservationID,
		Action:        string(entry.Action),
		Urgency:       urgency,
		Recipient:     entry.Recipient,
		Success:       entry.Success,
		ErrorText:     entry.ErrorText,
		SentAt:        entry.SentAt,
	}
}

func toAuditEntity(m *models.AutomationAuditModel) *automation.AuditEntry {
	var urgency *automation.Urgency
	if m.Urgency != nil {
		u := automation.Urgency(*m.Urgency)
		urgency = &u
	}

	return &automation.AuditEntry{
		ID:            m.ID,
		ReservationID: m.ReservationID,
		Action:        automation.Action(m.Action),
		Urgency:       urgency,
		Recipient:     m.Recipient,
		Success:       m.Success,
		ErrorText:     m.ErrorText,
		SentAt:        m.SentAt,
	}
}
