package handler

import (
	"encoding/json"
	"net/http"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/response"
	"go-clinic-scheduling/pkg/timewindow"
	"go-clinic-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Book(r.Context(), &req)
	if err != nil {
		h.writeAdmissionError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req dto.CancelAppointmentRequest
	if r.Body != nil {
		// An empty body is a cancellation without a reason.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.appointmentUsecase.Cancel(r.Context(), appointmentID, &req)
	if err != nil {
		h.writeLifecycleError(w, err, "Failed to cancel appointment")
		return
	}

	message := "Appointment cancelled successfully"
	if result.LateCancellation {
		message = "Appointment cancelled (late cancellation)"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req dto.RescheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Reschedule(r.Context(), appointmentID, &req)
	if err != nil {
		switch err {
		case usecase.ErrRescheduleLimit:
			response.Conflict(w, "Reschedule limit reached for this appointment")
		default:
			h.writeAdmissionOrLifecycleError(w, err, "Failed to reschedule appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := h.appointmentUsecase.Complete(r.Context(), appointmentID)
	if err != nil {
		switch err {
		case usecase.ErrNotAppointmentDoctor:
			response.Forbidden(w, "Only the attending doctor can complete this appointment")
		default:
			h.writeLifecycleError(w, err, "Failed to complete appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment completed successfully", result)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.Get(r.Context(), appointmentID)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrAppointmentNotOwned:
			response.Forbidden(w, "Appointment does not belong to you")
		default:
			response.InternalServerError(w, "Failed to get appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.GetMyAppointments(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return uuid.Nil, false
	}
	return appointmentID, true
}

// writeAdmissionError maps the admission chain's rejections: slot validation
// problems are 400, capacity and conflict problems are 409.
func (h *AppointmentHandler) writeAdmissionError(w http.ResponseWriter, err error) {
	switch err {
	case usecase.ErrDoctorNotFound:
		response.NotFound(w, "Doctor not found")
	case usecase.ErrDoctorNotVerified:
		response.Forbidden(w, "Doctor is not verified")
	case timewindow.ErrPastDatetime:
		response.BadRequest(w, "Appointment time is in the past")
	case service.ErrInvalidDuration:
		response.BadRequest(w, "Appointment duration is outside the allowed range")
	case service.ErrTooFarInAdvance:
		response.BadRequest(w, "Appointment is too far in advance")
	case service.ErrInsufficientNotice:
		response.BadRequest(w, "Appointment does not meet the minimum booking notice")
	case service.ErrPatientDailyLimit:
		response.Conflict(w, "Patient daily appointment limit reached")
	case service.ErrDoctorDailyLimit:
		response.Conflict(w, "Doctor daily appointment limit reached")
	case service.ErrDoctorUnavailable:
		response.Conflict(w, "Doctor has no availability on that day")
	case service.ErrOutsideAvailability:
		response.Conflict(w, "Appointment is outside the doctor's availability")
	case service.ErrSchedulingConflict:
		response.Conflict(w, "Time slot is already booked")
	case service.ErrDoctorLockNotAcquired:
		response.Conflict(w, "Doctor schedule is busy, please retry")
	default:
		response.InternalServerError(w, "Failed to book appointment")
	}
}

func (h *AppointmentHandler) writeLifecycleError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrAppointmentNotFound:
		response.NotFound(w, "Appointment not found")
	case usecase.ErrAppointmentNotOwned:
		response.Forbidden(w, "Appointment does not belong to you")
	case usecase.ErrAppointmentCancelled:
		response.Conflict(w, "Appointment is already cancelled")
	case usecase.ErrAppointmentCompleted:
		response.Conflict(w, "Appointment is already completed")
	default:
		response.InternalServerError(w, fallback)
	}
}

func (h *AppointmentHandler) writeAdmissionOrLifecycleError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrAppointmentNotFound, usecase.ErrAppointmentNotOwned,
		usecase.ErrAppointmentCancelled, usecase.ErrAppointmentCompleted:
		h.writeLifecycleError(w, err, fallback)
	default:
		h.writeAdmissionError(w, err)
	}
}
