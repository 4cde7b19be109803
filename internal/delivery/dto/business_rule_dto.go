package dto

// UpdateBusinessRuleRequest sets a single named rule. Value is an int for
// numeric rules, a bool for ALLOW_EMERGENCY_SAME_DAY.
type UpdateBusinessRuleRequest struct {
	Name  string      `json:"name" validate:"required"`
	Value interface{} `json:"value" validate:"required"`
}
