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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrProfileExists = errors.New("profile already exists for this user")

type ProfileUsecase interface {
	CreateDoctorProfile(ctx context.Context, req *dto.CreateDoctorProfileRequest) (*dto.DoctorProfileResponse, error)
	CreatePatientProfile(ctx context.Context, req *dto.CreatePatientProfileRequest) (*dto.PatientProfileResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorProfileResponse, error)
}

type profileUsecase struct {
	log         *logrus.Logger
	doctorRepo  repository.DoctorProfileRepository
	patientRepo repository.PatientProfileRepository
}

func NewProfileUsecase(
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	patientRepo repository.PatientProfileRepository,
) ProfileUsecase {
	return &profileUsecase{
		log:         log,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
	}
}

// CreateDoctorProfile registers scheduling data for the logged-in doctor.
// Profiles start unverified; an admin flips is_verified out of band before
// the doctor becomes bookable.
func (u *profileUsecase) CreateDoctorProfile(ctx context.Context, req *dto.CreateDoctorProfileRequest) (*dto.DoctorProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	existing, err := u.doctorRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProfileExists
	}

	fee := decimal.Zero
	if req.ConsultationFee != "" {
		fee, err = decimal.NewFromString(req.ConsultationFee)
		if err != nil {
			return nil, err
		}
	}

	profile := &entity.DoctorProfile{
		UserID:                userID,
		FullName:              req.FullName,
		Specialization:        req.Specialization,
		ConsultationFee:       fee,
		MaxAppointmentsPerDay: req.MaxAppointmentsPerDay,
	}
	if err := u.doctorRepo.Create(ctx, profile); err != nil {
		u.log.Warnf("Failed to create doctor profile %s: %+v", userID, err)
		return nil, err
	}

	u.log.Infof("Doctor profile created: %s", userID)
	return converter.DoctorProfileToResponse(profile), nil
}

func (u *profileUsecase) CreatePatientProfile(ctx context.Context, req *dto.CreatePatientProfileRequest) (*dto.PatientProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	existing, err := u.patientRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProfileExists
	}

	profile := &entity.PatientProfile{
		UserID:      userID,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	}
	if req.DateOfBirth != "" {
		dob, err := time.ParseInLocation("2006-01-02", req.DateOfBirth, time.UTC)
		if err != nil {
			return nil, err
		}
		profile.DateOfBirth = dob
	}

	if err := u.patientRepo.Create(ctx, profile); err != nil {
		u.log.Warnf("Failed to create patient profile %s: %+v", userID, err)
		return nil, err
	}

	u.log.Infof("Patient profile created: %s", userID)
	return converter.PatientProfileToResponse(profile), nil
}

func (u *profileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorProfileResponse, error) {
	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorProfileToResponse(profile), nil
}
