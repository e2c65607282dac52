package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, mrn, first_name, last_name, birth_date, gender, phone, email, active, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.MRN, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender,
		&p.Phone, &p.Email, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, mrn, first_name, last_name, birth_date, gender, phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Phone, p.Email, p.Active)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE mrn = $1`, mrn))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, birth_date=$4, gender=$5,
			phone=$6, email=$7, active=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Phone, p.Email, p.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `id, first_name, last_name, department, specialty, phone, email, active, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Department, &d.Specialty,
		&d.Phone, &d.Email, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor (id, first_name, last_name, department, specialty, phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.FirstName, d.LastName, d.Department, d.Specialty, d.Phone, d.Email, d.Active)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctor SET first_name=$2, last_name=$3, department=$4, specialty=$5,
			phone=$6, email=$7, active=$8, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.Department, d.Specialty, d.Phone, d.Email, d.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *doctorRepoPG) ListByDepartment(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctor WHERE department = $1`, department).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctor WHERE department = $1 ORDER BY last_name LIMIT $2 OFFSET $3`,
		department, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectDoctors(rows, total)
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY last_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectDoctors(rows, total)
}

func collectDoctors(rows pgx.Rows, total int) ([]*Doctor, int, error) {
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
