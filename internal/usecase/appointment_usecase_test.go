package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/event"
	"go-clinic-scheduling/internal/rules"
	"go-clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ---------- Fakes ----------

type fakeAdmitter struct {
	admitErr      error
	rescheduleErr error
	lastParams    service.AdmitParams
}

func (f *fakeAdmitter) Admit(_ context.Context, params service.AdmitParams) (*entity.Appointment, error) {
	f.lastParams = params
	if f.admitErr != nil {
		return nil, f.admitErr
	}
	return &entity.Appointment{
		ID:          uuid.New(),
		PatientID:   params.PatientID,
		DoctorID:    params.DoctorID,
		StartTime:   params.Start,
		EndTime:     params.End,
		Type:        params.Type,
		Status:      entity.AppointmentStatusScheduled,
		QueueNumber: 1,
		Priority:    1,
		Notes:       params.Notes,
	}, nil
}

func (f *fakeAdmitter) Reschedule(_ context.Context, appointment *entity.Appointment, newStart, newEnd time.Time) error {
	if f.rescheduleErr != nil {
		return f.rescheduleErr
	}
	appointment.StartTime = newStart
	appointment.EndTime = newEnd
	appointment.Status = entity.AppointmentStatusRescheduled
	appointment.RescheduleCount++
	return nil
}

type stubAppointmentRepo struct {
	byID      map[uuid.UUID]*entity.Appointment
	updated   []*entity.Appointment
	updateErr error
}

func newStubAppointmentRepo() *stubAppointmentRepo {
	return &stubAppointmentRepo{byID: map[uuid.UUID]*entity.Appointment{}}
}

func (s *stubAppointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	s.byID[a.ID] = a
	return nil
}

func (s *stubAppointmentRepo) Update(_ context.Context, a *entity.Appointment) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.byID[a.ID] = a
	s.updated = append(s.updated, a)
	return nil
}

func (s *stubAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return s.byID[id], nil
}

func (s *stubAppointmentRepo) FindByPatientID(_ context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range s.byID {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubAppointmentRepo) FindByDoctorID(_ context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range s.byID {
		if a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubAppointmentRepo) CountForPatientBetween(context.Context, uuid.UUID, time.Time, time.Time) (int64, error) {
	return 0, nil
}

func (s *stubAppointmentRepo) CountForDoctorBetween(context.Context, uuid.UUID, time.Time, time.Time) (int64, error) {
	return 0, nil
}

func (s *stubAppointmentRepo) FindOverlapping(context.Context, uuid.UUID, time.Time, time.Time, uuid.UUID) (*entity.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) MaxQueueNumber(context.Context, uuid.UUID, time.Time, time.Time) (int, error) {
	return 0, nil
}

func (s *stubAppointmentRepo) FindDueForReminder(context.Context, time.Time, time.Time) ([]entity.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) MarkReminderSent(context.Context, uuid.UUID) error { return nil }

type stubDoctorRepo struct {
	profiles map[uuid.UUID]*entity.DoctorProfile
}

func (s *stubDoctorRepo) Create(_ context.Context, p *entity.DoctorProfile) error {
	s.profiles[p.UserID] = p
	return nil
}

func (s *stubDoctorRepo) FindByUserID(_ context.Context, id uuid.UUID) (*entity.DoctorProfile, error) {
	return s.profiles[id], nil
}

type stubPatientRepo struct {
	profiles map[uuid.UUID]*entity.PatientProfile
}

func (s *stubPatientRepo) Create(_ context.Context, p *entity.PatientProfile) error {
	s.profiles[p.UserID] = p
	return nil
}

func (s *stubPatientRepo) FindByUserID(_ context.Context, id uuid.UUID) (*entity.PatientProfile, error) {
	return s.profiles[id], nil
}

type stubBillingRepo struct {
	created []*entity.Billing
}

func (s *stubBillingRepo) Create(_ context.Context, b *entity.Billing) error {
	s.created = append(s.created, b)
	return nil
}

type capturingPublisher struct {
	events []event.AppointmentEvent
}

func (c *capturingPublisher) Publish(_ context.Context, evt event.AppointmentEvent) error {
	c.events = append(c.events, evt)
	return nil
}

type capturingAudit struct {
	actions []string
}

func (c *capturingAudit) Log(_ context.Context, _ *uuid.UUID, action string, _ entity.JSON) {
	c.actions = append(c.actions, action)
}

// ---------- Fixture ----------

type usecaseFixture struct {
	uc        AppointmentUsecase
	admitter  *fakeAdmitter
	appts     *stubAppointmentRepo
	doctors   *stubDoctorRepo
	patients  *stubPatientRepo
	billings  *stubBillingRepo
	publisher *capturingPublisher
	audit     *capturingAudit
	rules     *rules.Store
}

func newUsecaseFixture(t *testing.T) *usecaseFixture {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	f := &usecaseFixture{
		admitter:  &fakeAdmitter{},
		appts:     newStubAppointmentRepo(),
		doctors:   &stubDoctorRepo{profiles: map[uuid.UUID]*entity.DoctorProfile{}},
		patients:  &stubPatientRepo{profiles: map[uuid.UUID]*entity.PatientProfile{}},
		billings:  &stubBillingRepo{},
		publisher: &capturingPublisher{},
		audit:     &capturingAudit{},
		rules:     rules.NewStore(),
	}
	f.uc = NewAppointmentUsecase(log, f.rules, f.admitter, f.appts, f.doctors, f.patients, f.billings, f.publisher, f.audit)
	return f
}

func (f *usecaseFixture) addVerifiedDoctor(fee string) uuid.UUID {
	id := uuid.New()
	amount, _ := decimal.NewFromString(fee)
	f.doctors.profiles[id] = &entity.DoctorProfile{
		UserID:          id,
		FullName:        "Dr. Siregar",
		Specialization:  "General",
		ConsultationFee: amount,
		IsVerified:      true,
	}
	return id
}

func ctxForUser(userID uuid.UUID, roleID int) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.RoleIDKey, roleID)
}

func futureSlot() (time.Time, time.Time) {
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	return start, start.Add(30 * time.Minute)
}

// ---------- Book ----------

func TestBook_Success(t *testing.T) {
	f := newUsecaseFixture(t)
	doctorID := f.addVerifiedDoctor("150.00")
	patientID := uuid.New()
	start, end := futureSlot()

	resp, err := f.uc.Book(ctxForUser(patientID, entity.RoleIDPatient), &dto.BookAppointmentRequest{
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   end,
		Type:      "consultation",
	})
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if resp.QueueNumber != 1 {
		t.Errorf("queue number = %d, want 1", resp.QueueNumber)
	}
	if f.admitter.lastParams.PatientID != patientID {
		t.Errorf("admitted patient = %s, want %s", f.admitter.lastParams.PatientID, patientID)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != event.TypeBooked {
		t.Errorf("events = %+v, want one appointment.booked", f.publisher.events)
	}
	if len(f.audit.actions) != 1 || f.audit.actions[0] != service.AuditActionAppointmentBooked {
		t.Errorf("audit actions = %v", f.audit.actions)
	}
}

func TestBook_DoctorChecks(t *testing.T) {
	f := newUsecaseFixture(t)
	patientID := uuid.New()
	start, end := futureSlot()

	// Unknown doctor.
	_, err := f.uc.Book(ctxForUser(patientID, entity.RoleIDPatient), &dto.BookAppointmentRequest{
		DoctorID: uuid.New(), StartTime: start, EndTime: end, Type: "consultation",
	})
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("got %v, want ErrDoctorNotFound", err)
	}

	// Unverified doctor.
	doctorID := uuid.New()
	f.doctors.profiles[doctorID] = &entity.DoctorProfile{UserID: doctorID, FullName: "Dr. Baru"}
	_, err = f.uc.Book(ctxForUser(patientID, entity.RoleIDPatient), &dto.BookAppointmentRequest{
		DoctorID: doctorID, StartTime: start, EndTime: end, Type: "consultation",
	})
	if !errors.Is(err, ErrDoctorNotVerified) {
		t.Errorf("got %v, want ErrDoctorNotVerified", err)
	}
}

func TestBook_AdmissionErrorPassedThrough(t *testing.T) {
	f := newUsecaseFixture(t)
	doctorID := f.addVerifiedDoctor("100.00")
	f.admitter.admitErr = service.ErrSchedulingConflict
	start, end := futureSlot()

	_, err := f.uc.Book(ctxForUser(uuid.New(), entity.RoleIDPatient), &dto.BookAppointmentRequest{
		DoctorID: doctorID, StartTime: start, EndTime: end, Type: "consultation",
	})
	if !errors.Is(err, service.ErrSchedulingConflict) {
		t.Errorf("got %v, want ErrSchedulingConflict", err)
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("no event expected on rejection, got %+v", f.publisher.events)
	}
}

// ---------- Cancel ----------

func seedAppointment(f *usecaseFixture, patientID, doctorID uuid.UUID, start time.Time) *entity.Appointment {
	appt := &entity.Appointment{
		ID:          uuid.New(),
		PatientID:   patientID,
		DoctorID:    doctorID,
		StartTime:   start,
		EndTime:     start.Add(30 * time.Minute),
		Type:        entity.AppointmentTypeConsultation,
		Status:      entity.AppointmentStatusScheduled,
		QueueNumber: 1,
	}
	f.appts.byID[appt.ID] = appt
	return appt
}

func TestCancel_SetsMetadataAndLateFlag(t *testing.T) {
	f := newUsecaseFixture(t)
	patientID := uuid.New()
	// 3 hours out: under the 24 hour courtesy window, so flagged late.
	appt := seedAppointment(f, patientID, uuid.New(), time.Now().UTC().Add(3*time.Hour))

	resp, err := f.uc.Cancel(ctxForUser(patientID, entity.RoleIDPatient), appt.ID, &dto.CancelAppointmentRequest{Reason: "conflict at work"})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if !resp.LateCancellation {
		t.Error("expected late_cancellation flag")
	}
	if resp.Appointment.Status != string(entity.AppointmentStatusCancelled) {
		t.Errorf("status = %s, want cancelled", resp.Appointment.Status)
	}
	if resp.Appointment.CancellationReason == nil || *resp.Appointment.CancellationReason != "conflict at work" {
		t.Errorf("cancellation reason not recorded: %+v", resp.Appointment.CancellationReason)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != event.TypeCancelled {
		t.Errorf("events = %+v, want one appointment.cancelled", f.publisher.events)
	}
}

func TestCancel_NotLateWhenFarOut(t *testing.T) {
	f := newUsecaseFixture(t)
	patientID := uuid.New()
	appt := seedAppointment(f, patientID, uuid.New(), time.Now().UTC().Add(72*time.Hour))

	resp, err := f.uc.Cancel(ctxForUser(patientID, entity.RoleIDPatient), appt.ID, &dto.CancelAppointmentRequest{})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if resp.LateCancellation {
		t.Error("cancellation 72h out must not be flagged late")
	}
}

func TestCancel_OwnershipAndTerminalStates(t *testing.T) {
	f := newUsecaseFixture(t)
	patientID := uuid.New()
	appt := seedAppointment(f, patientID, uuid.New(), time.Now().UTC().Add(72*time.Hour))

	// Someone else's appointment.
	_, err := f.uc.Cancel(ctxForUser(uuid.New(), entity.RoleIDPatient), appt.ID, &dto.CancelAppointmentRequest{})
	if !errors.Is(err, ErrAppointmentNotOwned) {
		t.Errorf("got %v, want ErrAppointmentNotOwned", err)
	}

	// Unknown ID.
	_, err = f.uc.Cancel(ctxForUser(patientID, entity.RoleIDPatient), uuid.New(), &dto.CancelAppointmentRequest{})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("got %v, want ErrAppointmentNotFound", err)
	}

	// Already cancelled.
	appt.Status = entity.AppointmentStatusCancelled
	_, err = f.uc.Cancel(ctxForUser(patientID, entity.RoleIDPatient), appt.ID, &dto.CancelAppointmentRequest{})
	if !errors.Is(err, ErrAppointmentCancelled) {
		t.Errorf("got %v, want ErrAppointmentCancelled", err)
	}

	// Completed.
	appt.Status = entity.AppointmentStatusCompleted
	_, err = f.uc.Cancel(ctxForUser(patientID, entity.RoleIDPatient), appt.ID, &dto.CancelAppointmentRequest{})
	if !errors.Is(err, ErrAppointmentCompleted) {
		t.Errorf("got %v, want ErrAppointmentCompleted", err)
	}
}

func TestCancel_AdminMayCancelAnyAppointment(t *testing.T) {
	f := newUsecaseFixture(t)
	appt := seedAppointment(f, uuid.New(), uuid.New(), time.Now().UTC().Add(72*time.Hour))

	if _, err := f.uc.Cancel(ctxForUser(uuid.New(), entity.RoleIDAdmin), appt.ID, &dto.CancelAppointmentRequest{Reason: "doctor unavailable"}); err != nil {
		t.Errorf("admin cancel failed: %v", err)
	}
}

// ---------- Reschedule ----------

func TestReschedule_LimitEnforced(t *testing.T) {
	f := newUsecaseFixture(t)
	patientID := uuid.New()
	appt := seedAppointment(f, patientID, uuid.New(), time.Now().UTC().Add(72*time.Hour))
	appt.RescheduleCount = 2 // at the default cap

	start, end := futureSlot()
	_, err := f.uc.Reschedule(ctxForUser(patientID, entity.RoleIDPatient), appt.ID, &dto.RescheduleAppointmentRequest{StartTime: start, EndTime: end})
	if !errors.Is(err, ErrRescheduleLimit) {
		t.Errorf("got %v, want ErrRescheduleLimit", err)
	}
}

func TestReschedule_Success(t *testing.T) {
	f := newUsecaseFixture(t)
	patientID := uuid.New()
	appt := seedAppointment(f, patientID, uuid.New(), time.Now().UTC().Add(72*time.Hour))

	start, end := futureSlot()
	resp, err := f.uc.Reschedule(ctxForUser(patientID, entity.RoleIDPatient), appt.ID, &dto.RescheduleAppointmentRequest{StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if resp.Status != string(entity.AppointmentStatusRescheduled) {
		t.Errorf("status = %s, want rescheduled", resp.Status)
	}
	if resp.RescheduleCount != 1 {
		t.Errorf("reschedule count = %d, want 1", resp.RescheduleCount)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != event.TypeRescheduled {
		t.Errorf("events = %+v, want one appointment.rescheduled", f.publisher.events)
	}
}

// ---------- Complete ----------

func TestComplete_CreatesBillingAtConsultationFee(t *testing.T) {
	f := newUsecaseFixture(t)
	doctorID := f.addVerifiedDoctor("250.00")
	appt := seedAppointment(f, uuid.New(), doctorID, time.Now().UTC().Add(-time.Hour))

	resp, err := f.uc.Complete(ctxForUser(doctorID, entity.RoleIDDoctor), appt.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if resp.Appointment.Status != string(entity.AppointmentStatusCompleted) {
		t.Errorf("status = %s, want completed", resp.Appointment.Status)
	}
	if resp.Billing == nil {
		t.Fatal("expected billing in response")
	}
	if resp.Billing.Amount != "250.00" {
		t.Errorf("billing amount = %s, want 250.00", resp.Billing.Amount)
	}
	if len(f.billings.created) != 1 {
		t.Fatalf("billings created = %d, want 1", len(f.billings.created))
	}
	if f.billings.created[0].Status != entity.BillingStatusPending {
		t.Errorf("billing status = %s, want pending", f.billings.created[0].Status)
	}
}

func TestComplete_OnlyAttendingDoctor(t *testing.T) {
	f := newUsecaseFixture(t)
	doctorID := f.addVerifiedDoctor("100.00")
	appt := seedAppointment(f, uuid.New(), doctorID, time.Now().UTC().Add(-time.Hour))

	_, err := f.uc.Complete(ctxForUser(uuid.New(), entity.RoleIDDoctor), appt.ID)
	if !errors.Is(err, ErrNotAppointmentDoctor) {
		t.Errorf("got %v, want ErrNotAppointmentDoctor", err)
	}

	appt.Status = entity.AppointmentStatusCancelled
	_, err = f.uc.Complete(ctxForUser(doctorID, entity.RoleIDDoctor), appt.ID)
	if !errors.Is(err, ErrAppointmentCancelled) {
		t.Errorf("got %v, want ErrAppointmentCancelled", err)
	}
}

// ---------- Listing ----------

func TestGetMyAppointments_ByRole(t *testing.T) {
	f := newUsecaseFixture(t)
	patientID := uuid.New()
	doctorID := uuid.New()
	seedAppointment(f, patientID, doctorID, time.Now().UTC().Add(24*time.Hour))
	seedAppointment(f, patientID, uuid.New(), time.Now().UTC().Add(48*time.Hour))

	asPatient, err := f.uc.GetMyAppointments(ctxForUser(patientID, entity.RoleIDPatient))
	if err != nil {
		t.Fatalf("patient list failed: %v", err)
	}
	if asPatient.Total != 2 {
		t.Errorf("patient total = %d, want 2", asPatient.Total)
	}

	asDoctor, err := f.uc.GetMyAppointments(ctxForUser(doctorID, entity.RoleIDDoctor))
	if err != nil {
		t.Fatalf("doctor list failed: %v", err)
	}
	if asDoctor.Total != 1 {
		t.Errorf("doctor total = %d, want 1", asDoctor.Total)
	}
}
