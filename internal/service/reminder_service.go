package service

import (
	"context"
	"time"

	"go-clinic-scheduling/internal/domain/event"
	domainRepo "go-clinic-scheduling/internal/domain/repository"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	// How far ahead the sweep looks for appointments needing a reminder.
	reminderWindow = 24 * time.Hour

	reminderSweepSchedule = "@every 15m"

	reminderSweepTimeout = 30 * time.Second
)

// ReminderService periodically emits reminder-due events for upcoming
// appointments. It only produces the event payload; rendering and delivery
// belong to the notification collaborator.
type ReminderService struct {
	log             *logrus.Logger
	appointmentRepo domainRepo.AppointmentRepository
	publisher       event.Publisher
	cron            *cron.Cron
}

func NewReminderService(log *logrus.Logger, appointmentRepo domainRepo.AppointmentRepository, publisher event.Publisher) *ReminderService {
	return &ReminderService{
		log:             log,
		appointmentRepo: appointmentRepo,
		publisher:       publisher,
		cron:            cron.New(),
	}
}

// Start schedules the periodic sweep. Call Stop during graceful shutdown.
func (s *ReminderService) Start() error {
	if _, err := s.cron.AddFunc(reminderSweepSchedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Reminder sweep scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("ReminderService stopped")
}

// Sweep finds active appointments starting within the reminder window that
// have not been reminded yet, publishes a reminder-due event for each, and
// marks them so the next sweep skips them.
func (s *ReminderService) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), reminderSweepTimeout)
	defer cancel()

	now := time.Now().UTC()
	appointments, err := s.appointmentRepo.FindDueForReminder(ctx, now, now.Add(reminderWindow))
	if err != nil {
		s.log.Errorf("Reminder sweep query failed: %+v", err)
		return
	}

	for _, appointment := range appointments {
		evt := event.AppointmentEvent{
			Type:          event.TypeReminderDue,
			AppointmentID: appointment.ID,
			PatientName:   appointment.Patient.FullName,
			DoctorName:    appointment.Doctor.FullName,
			Date:          appointment.StartTime.UTC().Format("2006-01-02"),
			Time:          appointment.StartTime.UTC().Format("15:04"),
			QueueNumber:   appointment.QueueNumber,
		}

		if err := s.publisher.Publish(ctx, evt); err != nil {
			// Not marked as sent; the next sweep retries.
			s.log.Warnf("Failed to publish reminder for appointment %s: %+v", appointment.ID, err)
			continue
		}

		if err := s.appointmentRepo.MarkReminderSent(ctx, appointment.ID); err != nil {
			s.log.Warnf("Failed to mark reminder sent for appointment %s: %+v", appointment.ID, err)
		}
	}

	if len(appointments) > 0 {
		s.log.Infof("Reminder sweep emitted %d events", len(appointments))
	}
}
