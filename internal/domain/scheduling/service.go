package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service owns appointment lifecycle and queue ordering. Call-next and
// walk-in registration are serialized per doctor; everything else relies on
// conditional status writes for safety under concurrent staff actions.
type Service struct {
	appts AppointmentRepository
	dir   Directory
	locks *lockRegistry
	now   func() time.Time
}

func NewService(appts AppointmentRepository, dir Directory) *Service {
	return &Service{
		appts: appts,
		dir:   dir,
		locks: newLockRegistry(),
		now:   time.Now,
	}
}

// CreateRequest carries the fields accepted when booking an appointment or
// registering a walk-in.
type CreateRequest struct {
	PatientID      uuid.UUID        `json:"patient_id"`
	DoctorID       uuid.UUID        `json:"doctor_id"`
	Type           AppointmentType  `json:"type"`
	ScheduledTime  time.Time        `json:"scheduled_time"`
	TriageReasons  []PriorityReason `json:"triage_reasons,omitempty"`
	Reason         *string          `json:"reason,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	Actor          string           `json:"-"`
}

// Create books a scheduled appointment, or registers a walk-in when the
// request type is walk-in. Priority is derived from the triage reasons once,
// here, and is immutable afterwards.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if req.Type == "" {
		req.Type = TypeConsultation
	}
	if !req.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown appointment type %q", req.Type)}
	}
	if req.Type == TypeWalkIn {
		return s.RegisterWalkIn(ctx, req)
	}
	if req.ScheduledTime.IsZero() {
		return nil, &ValidationError{Field: "scheduled_time", Reason: "required for booked appointments"}
	}

	a, err := s.newAppointment(ctx, req)
	if err != nil {
		return nil, err
	}
	a.Status = StatusPending
	a.ScheduledTime = req.ScheduledTime

	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RegisterWalkIn creates a same-day queued appointment. The next queue
// number for (doctor, today) is computed as max+1 inside the doctor's
// exclusive section so two simultaneous registrations can never share a
// number; a unique index backs this up and triggers one in-lock retry.
func (s *Service) RegisterWalkIn(ctx context.Context, req CreateRequest) (*Appointment, error) {
	req.Type = TypeWalkIn
	a, err := s.newAppointment(ctx, req)
	if err != nil {
		return nil, err
	}
	a.Status = StatusScheduled
	a.ScheduledTime = s.now()

	lock := s.locks.forDoctor(req.DoctorID)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		max, err := s.appts.MaxQueueNumber(ctx, req.DoctorID, a.ScheduledTime)
		if err != nil {
			return nil, err
		}
		n := max + 1
		a.QueueNumber = &n

		err = s.appts.Create(ctx, a)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
	}
	return nil, ErrConflict
}

// newAppointment validates references against the directory and fills the
// fields shared by bookings and walk-ins.
func (s *Service) newAppointment(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if req.PatientID == uuid.Nil {
		return nil, &ValidationError{Field: "patient_id", Reason: "required"}
	}
	if req.DoctorID == uuid.Nil {
		return nil, &ValidationError{Field: "doctor_id", Reason: "required"}
	}

	patient, err := s.dir.PatientRef(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("patient %s: %w", req.PatientID, ErrNotFound)
		}
		return nil, err
	}
	doctor, err := s.dir.DoctorRef(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("doctor %s: %w", req.DoctorID, ErrNotFound)
		}
		return nil, err
	}
	if !doctor.Active {
		return nil, &ValidationError{Field: "doctor_id", Reason: "doctor is not active"}
	}

	reasons := req.TriageReasons
	if req.Type == TypeEmergency {
		reasons = append(reasons, ReasonEmergency)
	}
	for _, r := range req.TriageReasons {
		if !r.Valid() {
			return nil, &ValidationError{Field: "triage_reasons", Reason: fmt.Sprintf("unknown reason %q", r)}
		}
	}
	priority, reason := ResolvePriority(reasons)

	a := &Appointment{
		PatientID:      req.PatientID,
		DoctorID:       req.DoctorID,
		Type:           req.Type,
		Priority:       priority,
		PriorityReason: reason,
		Reason:         req.Reason,
		Notes:          req.Notes,
	}
	if patient.Name != "" {
		a.PatientName = &patient.Name
	}
	if patient.Phone != "" {
		a.PatientPhone = &patient.Phone
	}
	if doctor.Name != "" {
		a.DoctorName = &doctor.Name
	}
	if doctor.Department != "" {
		a.Department = &doctor.Department
	}
	if req.Actor != "" {
		a.CreatedBy = &req.Actor
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.Search(ctx, params, limit, offset)
}

// Queue returns today's ranked waiting list for the doctor. Ranking is pure,
// so this is also exactly the order CallNext will drain.
func (s *Service) Queue(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	waiting, err := s.appts.ListWaiting(ctx, doctorID, s.now())
	if err != nil {
		return nil, err
	}
	return Rank(waiting), nil
}

// CallNext advances the highest-ranked waiting appointment to in-progress.
// It returns (nil, nil) when nobody is waiting and ErrDoctorBusy while an
// earlier visit is still in progress. If the selected head is lost to a
// concurrent cancellation, the fresh waiting set is re-ranked and retried
// once instead of surfacing a transient error.
func (s *Service) CallNext(ctx context.Context, doctorID uuid.UUID, actor string) (*Appointment, error) {
	lock := s.locks.forDoctor(doctorID)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		current, err := s.appts.FindInProgress(ctx, doctorID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			return nil, ErrDoctorBusy
		}

		waiting, err := s.appts.ListWaiting(ctx, doctorID, s.now())
		if err != nil {
			return nil, err
		}
		if len(waiting) == 0 {
			return nil, nil
		}

		head := Rank(waiting)[0]
		from := head.Status
		target, apply, err := Transition(from, TriggerStart)
		if err != nil || !apply {
			// The listed record changed under us; take a fresh look.
			continue
		}

		head.Status = target
		started := s.now()
		head.StartedAt = &started
		if actor != "" {
			head.UpdatedBy = &actor
		}
		ok, err := s.appts.UpdateStatus(ctx, head, from)
		if err != nil {
			return nil, err
		}
		if ok {
			return head, nil
		}
	}
	return nil, ErrConflict
}

// Confirm moves a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, actor string) (*Appointment, error) {
	return s.apply(ctx, id, TriggerConfirm, actor, nil)
}

// Cancel terminates a waiting appointment. A reason is required; repeating a
// cancel returns the already-cancelled record without error.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason, actor string) (*Appointment, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "cancel_reason", Reason: "required"}
	}
	return s.apply(ctx, id, TriggerCancel, actor, func(a *Appointment) {
		a.CancelReason = &reason
		cancelled := s.now()
		a.CancelledAt = &cancelled
	})
}

// Complete finishes the doctor's in-progress visit, freeing the queue for
// the next call.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, actor string) (*Appointment, error) {
	return s.apply(ctx, id, TriggerComplete, actor, func(a *Appointment) {
		done := s.now()
		a.CompletedAt = &done
	})
}

// MarkNoShow records that the patient did not appear. Guarded on the
// appointment time having elapsed.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID, actor string) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ScheduledTime.After(s.now()) {
		return nil, &InvalidTransitionError{From: a.Status, Trigger: TriggerNoShow, Reason: "appointment time has not elapsed"}
	}
	return s.apply(ctx, id, TriggerNoShow, actor, nil)
}

// apply runs a trigger through the transition table and persists it with a
// conditional write. A lost race reloads the record once: if someone else
// already applied the same transition the result is returned idempotently,
// otherwise the conflict propagates.
func (s *Service) apply(ctx context.Context, id uuid.UUID, tr Trigger, actor string, mutate func(*Appointment)) (*Appointment, error) {
	for attempt := 0; attempt < 2; attempt++ {
		a, err := s.appts.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		from := a.Status
		target, doApply, err := Transition(from, tr)
		if err != nil {
			return nil, err
		}
		if !doApply {
			return a, nil
		}

		a.Status = target
		if mutate != nil {
			mutate(a)
		}
		if actor != "" {
			a.UpdatedBy = &actor
		}

		ok, err := s.appts.UpdateStatus(ctx, a, from)
		if err != nil {
			return nil, err
		}
		if ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("appointment %s: %w", id, ErrConflict)
}
