package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hospitalms/scheduler/internal/domain/scheduling"
)

// RefSource adapts the directory service to the scheduler's Directory
// interface so appointment creation can validate references and denormalize
// display fields without depending on this package's types.
type RefSource struct {
	svc *Service
}

func NewRefSource(svc *Service) *RefSource {
	return &RefSource{svc: svc}
}

func (r *RefSource) PatientRef(ctx context.Context, id uuid.UUID) (*scheduling.PatientRef, error) {
	p, err := r.svc.GetPatient(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, scheduling.ErrNotFound
		}
		return nil, fmt.Errorf("patient lookup: %w", err)
	}
	ref := &scheduling.PatientRef{Name: p.FullName()}
	if p.Phone != nil {
		ref.Phone = *p.Phone
	}
	return ref, nil
}

func (r *RefSource) DoctorRef(ctx context.Context, id uuid.UUID) (*scheduling.DoctorRef, error) {
	d, err := r.svc.GetDoctor(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, scheduling.ErrNotFound
		}
		return nil, fmt.Errorf("doctor lookup: %w", err)
	}
	return &scheduling.DoctorRef{
		Name:       d.FullName(),
		Department: d.Department,
		Active:     d.Active,
	}, nil
}
