package converter

import (
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
)

// PrescriptionToResponse converts a Prescription entity to its response DTO
func PrescriptionToResponse(prescription *entity.Prescription) *dto.PrescriptionResponse {
	if prescription == nil {
		return nil
	}
	return &dto.PrescriptionResponse{
		ID:            prescription.ID,
		AppointmentID: prescription.AppointmentID,
		Medicines:     prescription.Medicines,
		Instructions:  prescription.Instructions,
		CreatedAt:     prescription.CreatedAt,
	}
}
