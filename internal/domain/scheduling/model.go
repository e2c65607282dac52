package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of appointment lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no-show"
)

var validStatuses = map[Status]bool{
	StatusPending: true, StatusConfirmed: true, StatusScheduled: true,
	StatusInProgress: true, StatusCompleted: true, StatusCancelled: true,
	StatusNoShow: true,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return validStatuses[s] }

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Waiting reports whether an appointment in this status is eligible for the
// doctor's ranked queue.
func (s Status) Waiting() bool {
	return s == StatusPending || s == StatusScheduled || s == StatusConfirmed
}

// AppointmentType classifies how the visit was initiated.
type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeFollowUp     AppointmentType = "follow-up"
	TypeEmergency    AppointmentType = "emergency"
	TypeWalkIn       AppointmentType = "walk-in"
)

var validTypes = map[AppointmentType]bool{
	TypeConsultation: true, TypeFollowUp: true, TypeEmergency: true, TypeWalkIn: true,
}

func (t AppointmentType) Valid() bool { return validTypes[t] }

// PriorityReason is the clinical triage justification attached at creation.
type PriorityReason string

const (
	ReasonEmergency  PriorityReason = "emergency"
	ReasonPregnant   PriorityReason = "pregnant"
	ReasonDisability PriorityReason = "disability"
	ReasonElderly    PriorityReason = "elderly"
	ReasonChild      PriorityReason = "child"
	ReasonVIP        PriorityReason = "vip"
)

// DefaultPriority is the weight assigned to ordinary bookings with no triage
// reason. Lower values sort earlier in the queue.
const DefaultPriority = 50

// priorityWeights is the fixed triage lookup table. Priorities are derived
// here once at creation time and never re-interpreted afterwards.
var priorityWeights = map[PriorityReason]int{
	ReasonEmergency:  10,
	ReasonPregnant:   15,
	ReasonDisability: 20,
	ReasonElderly:    25,
	ReasonChild:      30,
	ReasonVIP:        40,
}

func (r PriorityReason) Valid() bool {
	_, ok := priorityWeights[r]
	return ok
}

// Weight returns the queue weight for the reason, or DefaultPriority for an
// empty/unknown reason.
func (r PriorityReason) Weight() int {
	if w, ok := priorityWeights[r]; ok {
		return w
	}
	return DefaultPriority
}

// ResolvePriority picks the effective weight and reason from a set of triage
// flags. When a patient qualifies under several reasons the minimum weight
// (highest clinical precedence) wins.
func ResolvePriority(reasons []PriorityReason) (int, *PriorityReason) {
	weight := DefaultPriority
	var chosen *PriorityReason
	for _, r := range reasons {
		w, ok := priorityWeights[r]
		if !ok {
			continue
		}
		if w < weight {
			weight = w
			rr := r
			chosen = &rr
		}
	}
	return weight, chosen
}

// Appointment maps to the appointment table. Patient and doctor identity is
// owned by the directory; the name/phone/department columns are denormalized
// display copies only.
type Appointment struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	PatientName   *string         `db:"patient_name" json:"patient_name,omitempty"`
	PatientPhone  *string         `db:"patient_phone" json:"patient_phone,omitempty"`
	DoctorName    *string         `db:"doctor_name" json:"doctor_name,omitempty"`
	Department    *string         `db:"department" json:"department,omitempty"`
	ScheduledTime time.Time       `db:"scheduled_time" json:"scheduled_time"`
	Status        Status          `db:"status" json:"status"`
	Type          AppointmentType `db:"type" json:"type"`
	QueueNumber   *int            `db:"queue_number" json:"queue_number,omitempty"`
	Priority      int             `db:"priority" json:"priority"`
	PriorityReason *PriorityReason `db:"priority_reason" json:"priority_reason,omitempty"`
	Reason        *string         `db:"reason" json:"reason,omitempty"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	CancelReason  *string         `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CancelledAt   *time.Time      `db:"cancelled_at" json:"cancelled_at,omitempty"`
	StartedAt     *time.Time      `db:"started_at" json:"started_at,omitempty"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	CreatedBy     *string         `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy     *string         `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
