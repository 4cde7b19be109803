package converter

import (
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to its response DTO.
// Patient and doctor names are included only when the relations were preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:                 appointment.ID,
		PatientID:          appointment.PatientID,
		DoctorID:           appointment.DoctorID,
		StartTime:          appointment.StartTime,
		EndTime:            appointment.EndTime,
		Type:               string(appointment.Type),
		Status:             string(appointment.Status),
		QueueNumber:        appointment.QueueNumber,
		Priority:           appointment.Priority,
		Notes:              appointment.Notes,
		RescheduleCount:    appointment.RescheduleCount,
		CancellationReason: appointment.CancellationReason,
		CancelledAt:        appointment.CancelledAt,
		CreatedAt:          appointment.CreatedAt,
		UpdatedAt:          appointment.UpdatedAt,
	}

	if appointment.Patient.UserID != uuid.Nil {
		response.PatientName = appointment.Patient.FullName
	}
	if appointment.Doctor.UserID != uuid.Nil {
		response.DoctorName = appointment.Doctor.FullName
	}
	if appointment.Prescription != nil {
		response.Prescription = PrescriptionToResponse(appointment.Prescription)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		responses[i] = *AppointmentToResponse(&appointment)
	}
	return responses
}

// BillingToResponse converts a Billing entity to its response DTO
func BillingToResponse(billing *entity.Billing) *dto.BillingResponse {
	if billing == nil {
		return nil
	}
	return &dto.BillingResponse{
		ID:            billing.ID,
		AppointmentID: billing.AppointmentID,
		Amount:        billing.Amount.StringFixed(2),
		Status:        string(billing.Status),
		CreatedAt:     billing.CreatedAt,
	}
}
