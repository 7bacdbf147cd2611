package identity

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. One account per person; Role decides which
// profile table the account links to.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	FullName     string    `db:"full_name" json:"full_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patients table. Age is a demographic attribute consumed
// directly by the risk scorer.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FullName   string     `db:"full_name" json:"full_name"`
	Age        int        `db:"age" json:"age"`
	Gender     *string    `db:"gender" json:"gender,omitempty"`
	BloodGroup *string    `db:"blood_group" json:"blood_group,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Doctor maps to the doctors table.
type Doctor struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FullName  string     `db:"full_name" json:"full_name"`
	Specialty *string    `db:"specialty" json:"specialty,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
