package repository

import (
	"context"

	"go-clinic-scheduling/internal/domain/entity"
)

type BillingRepository interface {
	Create(ctx context.Context, billing *entity.Billing) error
}
