package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, patient_id, doctor_id, patient_name, patient_phone, doctor_name, department,
	scheduled_time, status, type, queue_number, priority, priority_reason, reason, notes,
	cancel_reason, cancelled_at, started_at, completed_at, created_by, updated_by, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.PatientName, &a.PatientPhone, &a.DoctorName, &a.Department,
		&a.ScheduledTime, &a.Status, &a.Type, &a.QueueNumber, &a.Priority, &a.PriorityReason, &a.Reason, &a.Notes,
		&a.CancelReason, &a.CancelledAt, &a.StartedAt, &a.CompletedAt, &a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// dayRange returns the half-open [start, end) window of the calendar day
// containing t, in t's location.
func dayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, patient_name, patient_phone, doctor_name, department,
			scheduled_time, status, type, queue_number, priority, priority_reason, reason, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		a.ID, a.PatientID, a.DoctorID, a.PatientName, a.PatientPhone, a.DoctorName, a.Department,
		a.ScheduledTime, a.Status, a.Type, a.QueueNumber, a.Priority, a.PriorityReason, a.Reason, a.Notes, a.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("queue number assignment: %w", ErrConflict)
		}
		return err
	}
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment SET patient_name=$2, patient_phone=$3, doctor_name=$4, department=$5,
			reason=$6, notes=$7, updated_by=$8, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.PatientName, a.PatientPhone, a.DoctorName, a.Department, a.Reason, a.Notes, a.UpdatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, a *Appointment, expected Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment SET status=$2, cancel_reason=$3, cancelled_at=$4, started_at=$5,
			completed_at=$6, updated_by=$7, updated_at=NOW()
		WHERE id = $1 AND status = $8`,
		a.ID, a.Status, a.CancelReason, a.CancelledAt, a.StartedAt, a.CompletedAt, a.UpdatedBy, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *appointmentRepoPG) ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error) {
	start, end := dayRange(day)
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND scheduled_time >= $2 AND scheduled_time < $3
		ORDER BY scheduled_time`, doctorID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *appointmentRepoPG) ListWaiting(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error) {
	start, end := dayRange(day)
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND scheduled_time >= $2 AND scheduled_time < $3
		  AND status IN ($4, $5, $6)
		ORDER BY scheduled_time`, doctorID, start, end, StatusPending, StatusConfirmed, StatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *appointmentRepoPG) FindInProgress(ctx context.Context, doctorID uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment WHERE doctor_id = $1 AND status = $2 LIMIT 1`,
		doctorID, StatusInProgress))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return a, err
}

func (r *appointmentRepoPG) MaxQueueNumber(ctx context.Context, doctorID uuid.UUID, day time.Time) (int, error) {
	start, end := dayRange(day)
	var max int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(queue_number), 0) FROM appointment
		WHERE doctor_id = $1 AND scheduled_time >= $2 AND scheduled_time < $3`,
		doctorID, start, end).Scan(&max)
	return max, err
}

func (r *appointmentRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error) {
	where := ` FROM appointment WHERE 1=1`
	var args []interface{}
	idx := 1

	add := func(clause string, arg interface{}) {
		where += fmt.Sprintf(clause, idx)
		args = append(args, arg)
		idx++
	}
	if params.DoctorID != nil {
		add(` AND doctor_id = $%d`, *params.DoctorID)
	}
	if params.PatientID != nil {
		add(` AND patient_id = $%d`, *params.PatientID)
	}
	if params.Status != nil {
		add(` AND status = $%d`, *params.Status)
	}
	if params.StartDate != nil {
		add(` AND scheduled_time >= $%d`, *params.StartDate)
	}
	if params.EndDate != nil {
		add(` AND scheduled_time < $%d`, *params.EndDate)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptCols + where + fmt.Sprintf(` ORDER BY scheduled_time DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
