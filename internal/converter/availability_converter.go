package converter

import (
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
)

// AvailabilityToResponse converts a DoctorAvailability entity to its response DTO
func AvailabilityToResponse(window *entity.DoctorAvailability) *dto.AvailabilityResponse {
	if window == nil {
		return nil
	}
	return &dto.AvailabilityResponse{
		ID:           window.ID,
		DoctorID:     window.DoctorID,
		DayOfWeek:    window.DayOfWeek,
		StartTime:    window.StartTime,
		EndTime:      window.EndTime,
		SlotDuration: window.SlotDuration,
		IsAvailable:  window.IsAvailable,
		CreatedAt:    window.CreatedAt,
		UpdatedAt:    window.UpdatedAt,
	}
}

// AvailabilitiesToResponses converts a slice of DoctorAvailability entities
func AvailabilitiesToResponses(windows []entity.DoctorAvailability) []dto.AvailabilityResponse {
	responses := make([]dto.AvailabilityResponse, len(windows))
	for i, window := range windows {
		responses[i] = *AvailabilityToResponse(&window)
	}
	return responses
}
