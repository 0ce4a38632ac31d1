// Package models holds the entities exchanged between the API, the
// service layer, and storage.
package models

import (
	"encoding/json"
	"time"

	"github.com/hollmark/staffd/internal/validation"
)

// Employee is a persisted employee row. ID is assigned by the database
// and immutable afterwards.
type Employee struct {
	ID        int32     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MarshalBinary lets go-redis store Employee values directly.
func (e Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalBinary restores an Employee cached by MarshalBinary.
func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// NewEmployee is the creation/update payload. CreatedAt is optional;
// when absent the database fills in the current time on insert and the
// stored value is preserved on update.
type NewEmployee struct {
	Name      string     `json:"name" validate:"required"`
	CreatedAt *time.Time `json:"created_at"`
}

// Validate implements validation.Validatable.
func (e *NewEmployee) Validate() error {
	return validation.Struct(e)
}
