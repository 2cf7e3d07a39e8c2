package dummyplanning

import (
	"context"
	"fmt"

	"github.com/trezcool/miradi/core/board"
)

// Service produces a deterministic sprint plan without calling the real
// planning service; used in DEV mode when no planning URL is configured.
type Service struct{}

var _ board.PlanningService = (*Service)(nil)

func NewService() *Service {
	return &Service{}
}

func (svc *Service) GenerateSprintPlan(_ context.Context, req board.PlanRequest) (board.SprintPlan, error) {
	if req.SprintWeeks <= 0 {
		req.SprintWeeks = 1
	}
	nSprints := req.ProjectWeeks / req.SprintWeeks
	plan := board.SprintPlan{
		ProjectID: req.ProjectID,
		StartDate: req.StartDate,
		Sprints:   make([]board.Sprint, 0, nSprints),
	}
	for i := 1; i <= nSprints; i++ {
		sp := board.Sprint{
			Name:    fmt.Sprintf("Sprint %d", i),
			Number:  i,
			EndDate: req.StartDate.AddDate(0, 0, i*req.SprintWeeks*7),
		}
		for j, m := range req.Team {
			sp.Tasks = append(sp.Tasks, board.Task{
				Title:       fmt.Sprintf("Sprint %d task %d", i, j+1),
				Description: fmt.Sprintf("Placeholder task for %s", m.Name),
				Role:        m.Role,
				Priority:    "medium",
			})
		}
		plan.Sprints = append(plan.Sprints, sp)
	}
	return plan, nil
}
