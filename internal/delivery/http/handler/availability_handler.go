package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/response"
	"go-clinic-scheduling/pkg/timewindow"
	"go-clinic-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	window, err := h.availabilityUsecase.Create(r.Context(), &req)
	if err != nil {
		h.writeWindowError(w, err, "Failed to create availability")
		return
	}

	response.Success(w, http.StatusCreated, "Availability created successfully", window)
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	window, err := h.availabilityUsecase.Update(r.Context(), id, &req)
	if err != nil {
		h.writeWindowError(w, err, "Failed to update availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability updated successfully", window)
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.availabilityUsecase.Delete(r.Context(), id); err != nil {
		h.writeWindowError(w, err, "Failed to delete availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability deleted successfully", nil)
}

func (h *AvailabilityHandler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.pathDoctorID(w, r)
	if !ok {
		return
	}

	windows, err := h.availabilityUsecase.ListForDoctor(r.Context(), doctorID)
	if err != nil {
		response.InternalServerError(w, "Failed to list availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", windows)
}

// GetDaySlots returns the doctor's bookable slots for ?date=YYYY-MM-DD.
func (h *AvailabilityHandler) GetDaySlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.pathDoctorID(w, r)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date query parameter is required")
		return
	}

	slots, err := h.availabilityUsecase.GetDaySlots(r.Context(), doctorID, date)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDate:
			response.BadRequest(w, "Invalid date, expected YYYY-MM-DD")
		default:
			response.InternalServerError(w, "Failed to get slots")
		}
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

func (h *AvailabilityHandler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid availability ID", nil)
		return 0, false
	}
	return id, true
}

func (h *AvailabilityHandler) pathDoctorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return uuid.Nil, false
	}
	return doctorID, true
}

func (h *AvailabilityHandler) writeWindowError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrAvailabilityNotFound:
		response.NotFound(w, "Availability window not found")
	case usecase.ErrAvailabilityNotOwned:
		response.Forbidden(w, "Availability window does not belong to you")
	case usecase.ErrWindowOverlap:
		response.Conflict(w, "Availability window overlaps an existing window")
	case usecase.ErrWorkingHoursExceeded:
		response.BadRequest(w, "Total working hours for the day exceed the limit")
	case timewindow.ErrInvalidTimeFormat:
		response.BadRequest(w, "Time must be in HH:MM format")
	case timewindow.ErrTimeRangeOrder:
		response.BadRequest(w, "Start time must be before end time")
	default:
		response.InternalServerError(w, fallback)
	}
}
