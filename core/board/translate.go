package board

import (
	"time"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/student"
)

// DefaultRoleLabel is rendered for team members with no assigned role.
const DefaultRoleLabel = "Team Member"

type (
	// List is a named board column; one per sprint, positioned by sprint ordinal.
	List struct {
		Name     string
		Position int
	}

	// Card is a single board card; one per task, referencing its owning
	// list by name.
	Card struct {
		ListName    string
		Title       string
		Description string
		Due         time.Time
		Role        string
		Priority    string
	}

	TeamMember struct {
		Name  string
		Email string
		Role  string
	}
)

// TranslatePlan maps a sprint plan into the board provider's list/card
// shape. It cannot fail for well-formed planning output; sprints with no
// tasks simply yield empty lists.
func TranslatePlan(plan SprintPlan) ([]List, []Card) {
	lists := make([]List, 0, len(plan.Sprints))
	var cards []Card
	for _, sprint := range plan.Sprints {
		lists = append(lists, List{Name: sprint.Name, Position: sprint.Number})
		for _, task := range sprint.Tasks {
			role := core.CleanString(task.Role)
			if role == "" {
				role = DefaultRoleLabel
			}
			cards = append(cards, Card{
				ListName:    sprint.Name,
				Title:       task.Title,
				Description: task.Description,
				Due:         sprint.EndDate,
				Role:        role,
				Priority:    task.Priority,
			})
		}
	}
	return lists, cards
}

// TranslateTeam maps students to board team members, rendering a sentinel
// role label for students with no assigned role.
func TranslateTeam(students []student.Student) []TeamMember {
	members := make([]TeamMember, 0, len(students))
	for _, s := range students {
		role := s.RoleName()
		if role == "" {
			role = DefaultRoleLabel
		}
		members = append(members, TeamMember{Name: s.Name, Email: s.Email, Role: role})
	}
	return members
}
