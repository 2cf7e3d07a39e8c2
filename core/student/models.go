package student

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Student struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	IsAvailable bool        `json:"is_available"`
	IsAdmin     bool        `json:"is_admin"`
	Roles       []Role      `json:"roles"`
	BoardID     null.String `json:"board_id"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// RoleName returns the student's primary (first assigned) role name;
// empty when the student has no role.
func (s Student) RoleName() string {
	if len(s.Roles) == 0 {
		return ""
	}
	return s.Roles[0].Name
}
