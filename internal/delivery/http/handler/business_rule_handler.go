package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/rules"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/response"
	"go-clinic-scheduling/pkg/validator"
)

type BusinessRuleHandler struct {
	ruleUsecase usecase.BusinessRuleUsecase
	validator   *validator.CustomValidator
}

func NewBusinessRuleHandler(ruleUsecase usecase.BusinessRuleUsecase, validator *validator.CustomValidator) *BusinessRuleHandler {
	return &BusinessRuleHandler{
		ruleUsecase: ruleUsecase,
		validator:   validator,
	}
}

func (h *BusinessRuleHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Business rules retrieved successfully", h.ruleUsecase.GetAll(r.Context()))
}

func (h *BusinessRuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateBusinessRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	updated, err := h.ruleUsecase.Update(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrUnknownRule):
			response.NotFound(w, "Unknown business rule")
		case errors.Is(err, rules.ErrInvalidRuleValue):
			response.BadRequest(w, "Invalid business rule value")
		default:
			response.InternalServerError(w, "Failed to update business rule")
		}
		return
	}

	response.Success(w, http.StatusOK, "Business rule updated successfully", updated)
}
