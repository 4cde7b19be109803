package converter

import (
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
)

// DoctorProfileToResponse converts a DoctorProfile entity to its response DTO
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorProfileResponse {
	if profile == nil {
		return nil
	}
	return &dto.DoctorProfileResponse{
		UserID:                profile.UserID,
		FullName:              profile.FullName,
		Specialization:        profile.Specialization,
		ConsultationFee:       profile.ConsultationFee.StringFixed(2),
		IsVerified:            profile.IsVerified,
		MaxAppointmentsPerDay: profile.MaxAppointmentsPerDay,
		CreatedAt:             profile.CreatedAt,
	}
}

// PatientProfileToResponse converts a PatientProfile entity to its response DTO
func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil {
		return nil
	}
	response := &dto.PatientProfileResponse{
		UserID:      profile.UserID,
		FullName:    profile.FullName,
		PhoneNumber: profile.PhoneNumber,
		CreatedAt:   profile.CreatedAt,
	}
	if !profile.DateOfBirth.IsZero() {
		response.DateOfBirth = profile.DateOfBirth.Format("2006-01-02")
	}
	return response
}
