package directory

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	ListByDepartment(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error)
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
}
