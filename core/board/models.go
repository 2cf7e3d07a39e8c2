package board

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// Board statuses
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

type (
	Task struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Role        string `json:"role"`
		Priority    string `json:"priority"`
	}

	Sprint struct {
		Name    string    `json:"name"`
		Number  int       `json:"number"`
		EndDate time.Time `json:"end_date"`
		Tasks   []Task    `json:"tasks"`
	}

	// SprintPlan is the ordered decomposition of a project into time-boxed
	// sprints as produced by the planning service. It is only persisted as
	// an opaque document on the Board once a creation run commits.
	SprintPlan struct {
		ProjectID int       `json:"project_id"`
		StartDate time.Time `json:"start_date"`
		Sprints   []Sprint  `json:"sprints"`
	}

	// Board is the durable record of a created external project-management
	// workspace. ID is the identifier issued by the board provider.
	Board struct {
		ID        string          `json:"id"`
		ProjectID int             `json:"project_id"`
		StartDate time.Time       `json:"start_date"`
		DueDate   time.Time       `json:"due_date"`
		Status    string          `json:"status"`
		Plan      json.RawMessage `json:"plan,omitempty"`
		URL       string          `json:"url"`
		AdminID   null.Int        `json:"admin_id"`
		CreatedAt time.Time       `json:"created_at"` // UTC
		UpdatedAt time.Time       `json:"updated_at"` // UTC
	}

	Stats struct {
		Lists   int `json:"lists"`
		Cards   int `json:"cards"`
		Members int `json:"members"`
	}
)

// NewBoard contains information needed to run a board creation.
type NewBoard struct {
	ProjectID  int   `json:"project_id" validate:"required"`
	StudentIDs []int `json:"student_ids" validate:"required,min=1,unique"`
}

func (nb *NewBoard) Validate(validate *validator.Validate) error {
	return validate.Struct(nb)
}

// Result is returned to the caller of a committed board creation.
type Result struct {
	BoardID        string   `json:"board_id"`
	BoardURL       string   `json:"board_url"`
	StudentCount   int      `json:"student_count"`
	InvitedMembers []string `json:"invited_members"`
}

type SetAdmin struct {
	StudentID int `json:"student_id" validate:"required"`
}

func (sa *SetAdmin) Validate(validate *validator.Validate) error {
	return validate.Struct(sa)
}
