package repository

import (
	"context"

	"go-clinic-scheduling/internal/domain/entity"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
}
