package directory

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	MRN       string     `db:"mrn" json:"mrn"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Department string    `db:"department" json:"department"`
	Specialty  *string   `db:"specialty" json:"specialty,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}
