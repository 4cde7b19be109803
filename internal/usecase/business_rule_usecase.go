package usecase

import (
	"context"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/rules"
	"go-clinic-scheduling/internal/service"

	"github.com/sirupsen/logrus"
)

type BusinessRuleUsecase interface {
	GetAll(ctx context.Context) *rules.Rules
	Update(ctx context.Context, req *dto.UpdateBusinessRuleRequest) (*rules.Rules, error)
}

type businessRuleUsecase struct {
	log   *logrus.Logger
	rules *rules.Store
	audit service.AuditService
}

func NewBusinessRuleUsecase(log *logrus.Logger, rulesStore *rules.Store, audit service.AuditService) BusinessRuleUsecase {
	return &businessRuleUsecase{
		log:   log,
		rules: rulesStore,
		audit: audit,
	}
}

func (u *businessRuleUsecase) GetAll(ctx context.Context) *rules.Rules {
	return u.rules.Current()
}

// Update sets one rule by name. The new snapshot applies to bookings admitted
// after the swap; in-flight validation keeps the snapshot it started with.
func (u *businessRuleUsecase) Update(ctx context.Context, req *dto.UpdateBusinessRuleRequest) (*rules.Rules, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	updated, err := u.rules.Update(req.Name, req.Value)
	if err != nil {
		return nil, err
	}

	u.audit.Log(ctx, &userID, service.AuditActionRuleUpdated, entity.JSON{
		"rule":  req.Name,
		"value": req.Value,
	})

	u.log.Infof("Business rule updated: %s=%v", req.Name, req.Value)
	return updated, nil
}
