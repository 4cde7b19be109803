package usecase

import (
	"context"
	"errors"
	"time"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/rules"
	"go-clinic-scheduling/pkg/timewindow"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAvailabilityNotFound = errors.New("availability window not found")
	ErrAvailabilityNotOwned = errors.New("availability window does not belong to you")
	ErrWindowOverlap        = errors.New("availability window overlaps an existing window")
	ErrWorkingHoursExceeded = errors.New("total working hours for the day exceed the limit")
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
)

type AvailabilityUsecase interface {
	Create(ctx context.Context, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error)
	Update(ctx context.Context, id int, req *dto.UpdateAvailabilityRequest) (*dto.AvailabilityResponse, error)
	Delete(ctx context.Context, id int) error
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.AvailabilityListResponse, error)
	GetDaySlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.DaySlotsResponse, error)
}

type availabilityUsecase struct {
	log              *logrus.Logger
	rules            *rules.Store
	availabilityRepo repository.AvailabilityRepository
	appointmentRepo  repository.AppointmentRepository
}

func NewAvailabilityUsecase(
	log *logrus.Logger,
	rulesStore *rules.Store,
	availabilityRepo repository.AvailabilityRepository,
	appointmentRepo repository.AppointmentRepository,
) AvailabilityUsecase {
	return &availabilityUsecase{
		log:              log,
		rules:            rulesStore,
		availabilityRepo: availabilityRepo,
		appointmentRepo:  appointmentRepo,
	}
}

// Create adds a weekly window for the logged-in doctor. Windows on the same
// weekday must not overlap, and the day's total hours stay under
// MAX_WORKING_HOURS_PER_DAY.
func (u *availabilityUsecase) Create(ctx context.Context, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	start, end, err := u.normalizeWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if err := u.checkDayBudget(ctx, doctorID, req.DayOfWeek, start, end, 0); err != nil {
		return nil, err
	}

	window := &entity.DoctorAvailability{
		DoctorID:     doctorID,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    start,
		EndTime:      end,
		SlotDuration: req.SlotDuration,
		IsAvailable:  true,
	}
	if window.SlotDuration == 0 {
		window.SlotDuration = u.rules.Current().DefaultSlotDurationMinutes
	}
	if req.IsAvailable != nil {
		window.IsAvailable = *req.IsAvailable
	}

	if err := u.availabilityRepo.Create(ctx, window); err != nil {
		u.log.Warnf("Failed to create availability for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	u.log.Infof("Availability created: doctor=%s, day=%d, window=%s-%s", doctorID, window.DayOfWeek, window.StartTime, window.EndTime)
	return converter.AvailabilityToResponse(window), nil
}

// Update replaces the window's schedule fields. Doctors may only touch their
// own windows; admins may touch any.
func (u *availabilityUsecase) Update(ctx context.Context, id int, req *dto.UpdateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	window, err := u.findOwnedWindow(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end, err := u.normalizeWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if err := u.checkDayBudget(ctx, window.DoctorID, req.DayOfWeek, start, end, window.ID); err != nil {
		return nil, err
	}

	window.DayOfWeek = req.DayOfWeek
	window.StartTime = start
	window.EndTime = end
	if req.SlotDuration != 0 {
		window.SlotDuration = req.SlotDuration
	}
	if req.IsAvailable != nil {
		window.IsAvailable = *req.IsAvailable
	}

	if err := u.availabilityRepo.Update(ctx, window); err != nil {
		u.log.Warnf("Failed to update availability %d: %+v", id, err)
		return nil, err
	}

	return converter.AvailabilityToResponse(window), nil
}

func (u *availabilityUsecase) Delete(ctx context.Context, id int) error {
	if _, err := u.findOwnedWindow(ctx, id); err != nil {
		return err
	}

	affected, err := u.availabilityRepo.Delete(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to delete availability %d: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrAvailabilityNotFound
	}
	return nil
}

func (u *availabilityUsecase) ListForDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.AvailabilityListResponse, error) {
	windows, err := u.availabilityRepo.FindByDoctorID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to list availability for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AvailabilityListResponse{
		Availabilities: converter.AvailabilitiesToResponses(windows),
		Total:          len(windows),
	}, nil
}

// GetDaySlots cuts the doctor's windows for the given date into bookable
// slots and marks the ones already taken by a non-cancelled appointment.
func (u *availabilityUsecase) GetDaySlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.DaySlotsResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return nil, ErrInvalidDate
	}

	windows, err := u.availabilityRepo.FindForDoctorOnWeekday(ctx, doctorID, int(day.Weekday()))
	if err != nil {
		u.log.Warnf("Failed to load windows for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	response := &dto.DaySlotsResponse{
		DoctorID: doctorID,
		Date:     date,
		Slots:    []dto.SlotResponse{},
	}

	for _, window := range windows {
		slots, err := u.cutWindow(ctx, doctorID, day, &window)
		if err != nil {
			return nil, err
		}
		response.Slots = append(response.Slots, slots...)
	}

	return response, nil
}

func (u *availabilityUsecase) cutWindow(ctx context.Context, doctorID uuid.UUID, day time.Time, window *entity.DoctorAvailability) ([]dto.SlotResponse, error) {
	opensAt, err := timewindow.ParseTimeOfDay(window.StartTime)
	if err != nil {
		return nil, err
	}
	closesAt, err := timewindow.ParseTimeOfDay(window.EndTime)
	if err != nil {
		return nil, err
	}

	step := time.Duration(window.SlotDuration) * time.Minute
	cursor := day.Add(time.Duration(opensAt.Seconds()) * time.Second)
	windowEnd := day.Add(time.Duration(closesAt.Seconds()) * time.Second)

	var slots []dto.SlotResponse
	for !cursor.Add(step).After(windowEnd) {
		slotEnd := cursor.Add(step)

		taken, err := u.appointmentRepo.FindOverlapping(ctx, doctorID, cursor, slotEnd, uuid.Nil)
		if err != nil {
			return nil, err
		}

		slots = append(slots, dto.SlotResponse{
			StartTime: cursor,
			EndTime:   slotEnd,
			Available: taken == nil && cursor.After(time.Now().UTC()),
		})
		cursor = slotEnd
	}
	return slots, nil
}

// normalizeWindow validates both bounds and returns them zero-padded so the
// stored strings compare lexicographically.
func (u *availabilityUsecase) normalizeWindow(startHHMM, endHHMM string) (string, string, error) {
	start, err := timewindow.ParseTimeOfDay(startHHMM)
	if err != nil {
		return "", "", err
	}
	end, err := timewindow.ParseTimeOfDay(endHHMM)
	if err != nil {
		return "", "", err
	}
	if err := timewindow.ValidateRange(start.String(), end.String()); err != nil {
		return "", "", err
	}
	return start.String(), end.String(), nil
}

// checkDayBudget rejects windows that overlap an existing window on the same
// weekday or push the day's total over MAX_WORKING_HOURS_PER_DAY. excludeID
// skips the window being updated.
func (u *availabilityUsecase) checkDayBudget(ctx context.Context, doctorID uuid.UUID, weekday int, start, end string, excludeID int) error {
	existing, err := u.availabilityRepo.FindForDoctorOnWeekday(ctx, doctorID, weekday)
	if err != nil {
		return err
	}

	totalHours, err := timewindow.DurationHours(start, end)
	if err != nil {
		return err
	}

	for _, w := range existing {
		if w.ID == excludeID {
			continue
		}
		if start < w.EndTime && end > w.StartTime {
			return ErrWindowOverlap
		}
		hours, err := timewindow.DurationHours(w.StartTime, w.EndTime)
		if err != nil {
			return err
		}
		totalHours += hours
	}

	if totalHours > float64(u.rules.Current().MaxWorkingHoursPerDay) {
		return ErrWorkingHoursExceeded
	}
	return nil
}

func (u *availabilityUsecase) findOwnedWindow(ctx context.Context, id int) (*entity.DoctorAvailability, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	window, err := u.availabilityRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find availability %d: %+v", id, err)
		return nil, err
	}
	if window == nil {
		return nil, ErrAvailabilityNotFound
	}

	if roleID, _ := middleware.GetRoleIDFromContext(ctx); roleID != entity.RoleIDAdmin && window.DoctorID != userID {
		return nil, ErrAvailabilityNotOwned
	}
	return window, nil
}
