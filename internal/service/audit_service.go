package service

import (
	"context"

	"go-clinic-scheduling/internal/domain/entity"
	domainRepo "go-clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Audit actions recorded by the scheduling core.
const (
	AuditActionAppointmentBooked      = "appointment.booked"
	AuditActionAppointmentCancelled   = "appointment.cancelled"
	AuditActionAppointmentRescheduled = "appointment.rescheduled"
	AuditActionAppointmentCompleted   = "appointment.completed"
	AuditActionRuleUpdated            = "business_rule.updated"
	AuditActionPrescriptionIssued     = "prescription.issued"
)

type AuditService interface {
	Log(ctx context.Context, userID *uuid.UUID, action string, metadata entity.JSON)
}

type auditService struct {
	log       *logrus.Logger
	auditRepo domainRepo.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo domainRepo.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// Log writes an audit trail entry. Failures are logged and swallowed; an
// audit write must never fail the operation it describes.
func (s *auditService) Log(ctx context.Context, userID *uuid.UUID, action string, metadata entity.JSON) {
	entry := &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.log.Warnf("Failed to create audit log for action %s: %+v", action, err)
	}
}
