package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// mockApptRepo is an in-memory AppointmentRepository. It stores copies so the
// conditional status guard observes committed state, not the caller's working
// pointer, matching the database behaviour.
type mockApptRepo struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*Appointment
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func cloneAppt(a *Appointment) *Appointment {
	c := *a
	return &c
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (m *mockApptRepo) Create(ctx context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.QueueNumber != nil {
		for _, existing := range m.appts {
			if existing.DoctorID == a.DoctorID &&
				existing.QueueNumber != nil && *existing.QueueNumber == *a.QueueNumber &&
				sameDay(existing.ScheduledTime, a.ScheduledTime) {
				return fmt.Errorf("duplicate queue number %d: %w", *a.QueueNumber, ErrConflict)
			}
		}
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appts[a.ID] = cloneAppt(a)
	return nil
}

func (m *mockApptRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAppt(a), nil
}

func (m *mockApptRepo) Update(ctx context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.appts[a.ID]
	if !ok {
		return ErrNotFound
	}
	stored.PatientName = a.PatientName
	stored.PatientPhone = a.PatientPhone
	stored.DoctorName = a.DoctorName
	stored.Department = a.Department
	stored.Reason = a.Reason
	stored.Notes = a.Notes
	stored.UpdatedBy = a.UpdatedBy
	stored.UpdatedAt = time.Now()
	return nil
}

// setScheduledTime rewrites a stored slot directly. Tests use it to move a
// record relative to the service clock; the Update contract deliberately
// cannot touch scheduling fields.
func (m *mockApptRepo) setScheduledTime(id uuid.UUID, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appts[id]; ok {
		a.ScheduledTime = ts
	}
}

func (m *mockApptRepo) UpdateStatus(ctx context.Context, a *Appointment, expected Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.appts[a.ID]
	if !ok {
		return false, ErrNotFound
	}
	if stored.Status != expected {
		return false, nil
	}
	m.appts[a.ID] = cloneAppt(a)
	return true, nil
}

func (m *mockApptRepo) ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID && sameDay(a.ScheduledTime, day) {
			out = append(out, cloneAppt(a))
		}
	}
	sortByScheduledTime(out)
	return out, nil
}

func (m *mockApptRepo) ListWaiting(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.Status.Waiting() && sameDay(a.ScheduledTime, day) {
			out = append(out, cloneAppt(a))
		}
	}
	sortByScheduledTime(out)
	return out, nil
}

func (m *mockApptRepo) FindInProgress(ctx context.Context, doctorID uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.Status == StatusInProgress {
			return cloneAppt(a), nil
		}
	}
	return nil, nil
}

func (m *mockApptRepo) MaxQueueNumber(ctx context.Context, doctorID uuid.UUID, day time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.QueueNumber != nil && sameDay(a.ScheduledTime, day) {
			if *a.QueueNumber > max {
				max = *a.QueueNumber
			}
		}
	}
	return max, nil
}

func (m *mockApptRepo) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*Appointment
	for _, a := range m.appts {
		if params.DoctorID != nil && a.DoctorID != *params.DoctorID {
			continue
		}
		if params.PatientID != nil && a.PatientID != *params.PatientID {
			continue
		}
		if params.Status != nil && a.Status != *params.Status {
			continue
		}
		if params.StartDate != nil && a.ScheduledTime.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && !a.ScheduledTime.Before(*params.EndDate) {
			continue
		}
		matched = append(matched, cloneAppt(a))
	}
	sortByScheduledTime(matched)
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func sortByScheduledTime(appts []*Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].ScheduledTime.Before(appts[j].ScheduledTime)
	})
}

// mockDirectory is a map-backed Directory for tests.
type mockDirectory struct {
	patients map[uuid.UUID]*PatientRef
	doctors  map[uuid.UUID]*DoctorRef
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		patients: make(map[uuid.UUID]*PatientRef),
		doctors:  make(map[uuid.UUID]*DoctorRef),
	}
}

func (m *mockDirectory) PatientRef(ctx context.Context, id uuid.UUID) (*PatientRef, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockDirectory) DoctorRef(ctx context.Context, id uuid.UUID) (*DoctorRef, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// newTestService wires a service against the in-memory repo with one active
// doctor and one patient registered.
func newTestService() (*Service, *mockApptRepo, uuid.UUID, uuid.UUID) {
	repo := newMockApptRepo()
	dir := newMockDirectory()

	patientID := uuid.New()
	doctorID := uuid.New()
	dir.patients[patientID] = &PatientRef{Name: "Jane Dough", Phone: "555-0101"}
	dir.doctors[doctorID] = &DoctorRef{Name: "Gregory House", Department: "General Medicine", Active: true}

	return NewService(repo, dir), repo, patientID, doctorID
}
