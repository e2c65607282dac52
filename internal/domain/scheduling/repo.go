package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchParams filters appointment listings. Nil fields are ignored.
type SearchParams struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Update persists the mutable display fields only (denormalized names,
	// department, reason, notes, updated-by). Status, scheduling and queue
	// fields are written through Create and UpdateStatus, never here.
	Update(ctx context.Context, a *Appointment) error
	// UpdateStatus persists a's status and lifecycle stamps only if the stored
	// row still holds the expected status. It returns false when the guard
	// fails, leaving the row untouched.
	UpdateStatus(ctx context.Context, a *Appointment, expected Status) (bool, error)
	// ListByDoctorAndDate returns every appointment for the doctor on the
	// calendar day containing day, regardless of status.
	ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error)
	// ListWaiting returns the doctor's queue-eligible appointments
	// (pending/confirmed/scheduled) for the given calendar day.
	ListWaiting(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error)
	// FindInProgress returns the doctor's current in-progress appointment, or
	// nil when the doctor is free.
	FindInProgress(ctx context.Context, doctorID uuid.UUID) (*Appointment, error)
	// MaxQueueNumber returns the highest queue number assigned for the
	// doctor on the given day, 0 when none.
	MaxQueueNumber(ctx context.Context, doctorID uuid.UUID, day time.Time) (int, error)
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error)
}

// PatientRef and DoctorRef carry the directory fields the scheduler
// denormalizes onto appointments. The directory stays authoritative.
type PatientRef struct {
	Name  string
	Phone string
}

type DoctorRef struct {
	Name       string
	Department string
	Active     bool
}

// Directory is the scheduler's view of the patient/doctor registry. Lookups
// return ErrNotFound for unknown identifiers.
type Directory interface {
	PatientRef(ctx context.Context, id uuid.UUID) (*PatientRef, error)
	DoctorRef(ctx context.Context, id uuid.UUID) (*DoctorRef, error)
}
