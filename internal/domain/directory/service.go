package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a patient or doctor does not exist.
var ErrNotFound = errors.New("not found")

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository) *Service {
	return &Service{patients: patients, doctors: doctors}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	p.Active = true
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetPatientByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return s.patients.GetByMRN(ctx, mrn)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" || d.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if d.Department == "" {
		return fmt.Errorf("department is required")
	}
	d.Active = true
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" || d.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return s.doctors.Update(ctx, d)
}

// SetDoctorActive flips the doctor's availability for new bookings.
func (s *Service) SetDoctorActive(ctx context.Context, id uuid.UUID, active bool) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Active = active
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDoctors(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	if department != "" {
		return s.doctors.ListByDepartment(ctx, department, limit, offset)
	}
	return s.doctors.List(ctx, limit, offset)
}
