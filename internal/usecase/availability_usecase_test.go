package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/rules"
	"go-clinic-scheduling/pkg/timewindow"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fakeAvailabilityRepo struct {
	nextID  int
	windows map[int]*entity.DoctorAvailability
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{windows: map[int]*entity.DoctorAvailability{}}
}

func (f *fakeAvailabilityRepo) Create(_ context.Context, w *entity.DoctorAvailability) error {
	f.nextID++
	w.ID = f.nextID
	stored := *w
	f.windows[w.ID] = &stored
	return nil
}

func (f *fakeAvailabilityRepo) Update(_ context.Context, w *entity.DoctorAvailability) error {
	stored := *w
	f.windows[w.ID] = &stored
	return nil
}

func (f *fakeAvailabilityRepo) Delete(_ context.Context, id int) (int64, error) {
	if _, ok := f.windows[id]; !ok {
		return 0, nil
	}
	delete(f.windows, id)
	return 1, nil
}

func (f *fakeAvailabilityRepo) FindByID(_ context.Context, id int) (*entity.DoctorAvailability, error) {
	w, ok := f.windows[id]
	if !ok {
		return nil, nil
	}
	found := *w
	return &found, nil
}

func (f *fakeAvailabilityRepo) FindByDoctorID(_ context.Context, doctorID uuid.UUID) ([]entity.DoctorAvailability, error) {
	var out []entity.DoctorAvailability
	for _, w := range f.windows {
		if w.DoctorID == doctorID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) FindForDoctorOnWeekday(_ context.Context, doctorID uuid.UUID, weekday int) ([]entity.DoctorAvailability, error) {
	var out []entity.DoctorAvailability
	for _, w := range f.windows {
		if w.DoctorID == doctorID && w.DayOfWeek == weekday && w.IsAvailable {
			out = append(out, *w)
		}
	}
	return out, nil
}

// slotAppointmentRepo adds real overlap behavior on top of the stub for the
// slot-cutting tests.
type slotAppointmentRepo struct {
	stubAppointmentRepo
	booked []entity.Appointment
}

func (s *slotAppointmentRepo) FindOverlapping(_ context.Context, doctorID uuid.UUID, start, end time.Time, _ uuid.UUID) (*entity.Appointment, error) {
	for _, a := range s.booked {
		if a.DoctorID == doctorID && !a.IsCancelled() && a.StartTime.Before(end) && a.EndTime.After(start) {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func newAvailabilityFixture(t *testing.T) (AvailabilityUsecase, *fakeAvailabilityRepo, *slotAppointmentRepo) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	windows := newFakeAvailabilityRepo()
	appts := &slotAppointmentRepo{stubAppointmentRepo: *newStubAppointmentRepo()}
	uc := NewAvailabilityUsecase(log, rules.NewStore(), windows, appts)
	return uc, windows, appts
}

func TestCreateAvailability_DefaultsSlotDuration(t *testing.T) {
	uc, _, _ := newAvailabilityFixture(t)
	doctorID := uuid.New()

	window, err := uc.Create(ctxForUser(doctorID, entity.RoleIDDoctor), &dto.CreateAvailabilityRequest{
		DayOfWeek: 2,
		StartTime: "9:00",
		EndTime:   "17:00",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if window.SlotDuration != 30 {
		t.Errorf("slot duration = %d, want default 30", window.SlotDuration)
	}
	// Bounds come back zero-padded.
	if window.StartTime != "09:00" {
		t.Errorf("start time = %s, want 09:00", window.StartTime)
	}
}

func TestCreateAvailability_RejectsBadWindows(t *testing.T) {
	uc, _, _ := newAvailabilityFixture(t)
	doctorID := uuid.New()
	ctx := ctxForUser(doctorID, entity.RoleIDDoctor)

	_, err := uc.Create(ctx, &dto.CreateAvailabilityRequest{DayOfWeek: 1, StartTime: "25:00", EndTime: "17:00"})
	if !errors.Is(err, timewindow.ErrInvalidTimeFormat) {
		t.Errorf("bad format: got %v, want ErrInvalidTimeFormat", err)
	}

	_, err = uc.Create(ctx, &dto.CreateAvailabilityRequest{DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00"})
	if !errors.Is(err, timewindow.ErrTimeRangeOrder) {
		t.Errorf("reversed: got %v, want ErrTimeRangeOrder", err)
	}
}

func TestCreateAvailability_RejectsOverlapAndHourBudget(t *testing.T) {
	uc, _, _ := newAvailabilityFixture(t)
	doctorID := uuid.New()
	ctx := ctxForUser(doctorID, entity.RoleIDDoctor)

	if _, err := uc.Create(ctx, &dto.CreateAvailabilityRequest{DayOfWeek: 1, StartTime: "09:00", EndTime: "13:00"}); err != nil {
		t.Fatalf("first window failed: %v", err)
	}

	// 12:00-14:00 overlaps 09:00-13:00.
	_, err := uc.Create(ctx, &dto.CreateAvailabilityRequest{DayOfWeek: 1, StartTime: "12:00", EndTime: "14:00"})
	if !errors.Is(err, ErrWindowOverlap) {
		t.Errorf("overlap: got %v, want ErrWindowOverlap", err)
	}

	// 4h so far; another 9h blows through the 12h daily budget.
	_, err = uc.Create(ctx, &dto.CreateAvailabilityRequest{DayOfWeek: 1, StartTime: "13:00", EndTime: "22:00"})
	if !errors.Is(err, ErrWorkingHoursExceeded) {
		t.Errorf("budget: got %v, want ErrWorkingHoursExceeded", err)
	}

	// A second weekday has its own budget.
	if _, err := uc.Create(ctx, &dto.CreateAvailabilityRequest{DayOfWeek: 2, StartTime: "13:00", EndTime: "22:00"}); err != nil {
		t.Errorf("other weekday rejected: %v", err)
	}
}

func TestUpdateAvailability_Ownership(t *testing.T) {
	uc, _, _ := newAvailabilityFixture(t)
	doctorID := uuid.New()

	window, err := uc.Create(ctxForUser(doctorID, entity.RoleIDDoctor), &dto.CreateAvailabilityRequest{
		DayOfWeek: 1, StartTime: "09:00", EndTime: "13:00",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	req := &dto.UpdateAvailabilityRequest{DayOfWeek: 1, StartTime: "10:00", EndTime: "14:00"}

	_, err = uc.Update(ctxForUser(uuid.New(), entity.RoleIDDoctor), window.ID, req)
	if !errors.Is(err, ErrAvailabilityNotOwned) {
		t.Errorf("other doctor: got %v, want ErrAvailabilityNotOwned", err)
	}

	// The owner may move it; the window does not overlap itself.
	updated, err := uc.Update(ctxForUser(doctorID, entity.RoleIDDoctor), window.ID, req)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.StartTime != "10:00" || updated.EndTime != "14:00" {
		t.Errorf("window = %s-%s, want 10:00-14:00", updated.StartTime, updated.EndTime)
	}

	// Admins may too.
	if _, err := uc.Update(ctxForUser(uuid.New(), entity.RoleIDAdmin), window.ID, req); err != nil {
		t.Errorf("admin update failed: %v", err)
	}
}

func TestGetDaySlots_CutsWindowsAndMarksTaken(t *testing.T) {
	uc, _, appts := newAvailabilityFixture(t)
	doctorID := uuid.New()
	ctx := ctxForUser(doctorID, entity.RoleIDDoctor)

	// Pick a date a week out so every slot is in the future.
	day := time.Now().UTC().AddDate(0, 0, 7)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	if _, err := uc.Create(ctx, &dto.CreateAvailabilityRequest{
		DayOfWeek: int(day.Weekday()), StartTime: "09:00", EndTime: "11:00",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 09:30-10:00 is already booked.
	appts.booked = append(appts.booked, entity.Appointment{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		StartTime: day.Add(9*time.Hour + 30*time.Minute),
		EndTime:   day.Add(10 * time.Hour),
		Status:    entity.AppointmentStatusScheduled,
	})

	resp, err := uc.GetDaySlots(ctx, doctorID, day.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("get slots failed: %v", err)
	}
	if len(resp.Slots) != 4 {
		t.Fatalf("slots = %d, want 4", len(resp.Slots))
	}

	available := 0
	for _, slot := range resp.Slots {
		if slot.Available {
			available++
		} else if !slot.StartTime.Equal(day.Add(9*time.Hour + 30*time.Minute)) {
			t.Errorf("unexpected unavailable slot at %s", slot.StartTime)
		}
	}
	if available != 3 {
		t.Errorf("available slots = %d, want 3", available)
	}
}

func TestGetDaySlots_InvalidDate(t *testing.T) {
	uc, _, _ := newAvailabilityFixture(t)
	_, err := uc.GetDaySlots(ctxForUser(uuid.New(), entity.RoleIDPatient), uuid.New(), "26-08-2026")
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("got %v, want ErrInvalidDate", err)
	}
}
