package entities

import (
	"fmt"
	"time"
)

// Role is the registered capacity of a participant.
type Role string

const (
	RoleUnregistered Role = ""
	RoleDoctor       Role = "doctor"
	RolePatient      Role = "patient"
)

// Valid reports whether r is a role a participant can register with.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// ParseRole accepts the lower-case role names used by callers.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return RoleUnregistered, fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Participant is a registered identity. IDs are unique within a role, the
// address is unique across roles.
type Participant struct {
	ID        int64     `json:"id" db:"id" gorm:"primaryKey;autoIncrement:false"`
	Role      Role      `json:"role" db:"role" gorm:"primaryKey;type:varchar(16)"`
	Address   string    `json:"address" db:"address" gorm:"type:varchar(128);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null"`
}

// Registered is false for the zero participant returned when an address is unknown.
func (p Participant) Registered() bool {
	return p.Role.Valid() && p.ID > 0
}

func (p Participant) IsDoctor(id int64) bool {
	return p.Role == RoleDoctor && p.ID == id
}

func (p Participant) IsPatient(id int64) bool {
	return p.Role == RolePatient && p.ID == id
}
