package http

import (
	"net/http"

	"go-clinic-scheduling/internal/delivery/http/handler"
	"go-clinic-scheduling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	appointmentHandler  *handler.AppointmentHandler
	availabilityHandler *handler.AvailabilityHandler
	businessRuleHandler *handler.BusinessRuleHandler
	prescriptionHandler *handler.PrescriptionHandler
	profileHandler      *handler.ProfileHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	appointmentHandler *handler.AppointmentHandler,
	availabilityHandler *handler.AvailabilityHandler,
	businessRuleHandler *handler.BusinessRuleHandler,
	prescriptionHandler *handler.PrescriptionHandler,
	profileHandler *handler.ProfileHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		appointmentHandler:  appointmentHandler,
		availabilityHandler: availabilityHandler,
		businessRuleHandler: businessRuleHandler,
		prescriptionHandler: prescriptionHandler,
		profileHandler:      profileHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Everything below requires a valid token.
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Doctor discovery (any authenticated user)
	protected.HandleFunc("/doctors/{doctorId}", r.profileHandler.GetDoctor).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/availability", r.availabilityHandler.ListForDoctor).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/slots", r.availabilityHandler.GetDaySlots).Methods(http.MethodGet)

	// Profile registration
	doctorProfile := protected.NewRoute().Subrouter()
	doctorProfile.Use(middleware.RequireDoctor)
	doctorProfile.HandleFunc("/profiles/doctor", r.profileHandler.CreateDoctorProfile).Methods(http.MethodPost)

	patientProfile := protected.NewRoute().Subrouter()
	patientProfile.Use(middleware.RequirePatient)
	patientProfile.HandleFunc("/profiles/patient", r.profileHandler.CreatePatientProfile).Methods(http.MethodPost)

	// Appointments
	protected.HandleFunc("/appointments", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/prescription", r.prescriptionHandler.GetByAppointment).Methods(http.MethodGet)

	patient := protected.NewRoute().Subrouter()
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/appointments", r.appointmentHandler.Book).Methods(http.MethodPost)
	patient.HandleFunc("/appointments/{id}/reschedule", r.appointmentHandler.Reschedule).Methods(http.MethodPost)

	doctor := protected.NewRoute().Subrouter()
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/appointments/{id}/complete", r.appointmentHandler.Complete).Methods(http.MethodPost)
	doctor.HandleFunc("/appointments/{id}/prescription", r.prescriptionHandler.Create).Methods(http.MethodPost)

	// Availability management (doctor manages own windows, admin manages any)
	schedule := protected.NewRoute().Subrouter()
	schedule.Use(middleware.RequireAdminOrDoctor)
	schedule.HandleFunc("/availability", r.availabilityHandler.Create).Methods(http.MethodPost)
	schedule.HandleFunc("/availability/{id}", r.availabilityHandler.Update).Methods(http.MethodPut)
	schedule.HandleFunc("/availability/{id}", r.availabilityHandler.Delete).Methods(http.MethodDelete)

	// Business rules (admin)
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/rules", r.businessRuleHandler.GetAll).Methods(http.MethodGet)
	admin.HandleFunc("/rules", r.businessRuleHandler.Update).Methods(http.MethodPut)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
