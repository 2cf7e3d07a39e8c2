package dummyplanning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/miradi/core/board"
)

func TestService_GenerateSprintPlan(t *testing.T) {
	start := time.Date(2021, time.February, 1, 0, 0, 0, 0, time.UTC)
	req := board.PlanRequest{
		ProjectID:    10,
		ProjectWeeks: 12,
		SprintWeeks:  2,
		StartDate:    start,
		Team: []board.TeamMember{
			{Name: "Amani", Role: "Backend Developer"},
			{Name: "Zawadi", Role: "QA Engineer"},
		},
	}
	svc := NewService()

	plan, err := svc.GenerateSprintPlan(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, 10, plan.ProjectID)
	assert.Len(t, plan.Sprints, 6)
	assert.Equal(t, "Sprint 1", plan.Sprints[0].Name)
	assert.Equal(t, start.AddDate(0, 0, 14), plan.Sprints[0].EndDate)
	assert.Equal(t, start.AddDate(0, 0, 84), plan.Sprints[5].EndDate)
	assert.Len(t, plan.Sprints[0].Tasks, 2)
	assert.Equal(t, "Backend Developer", plan.Sprints[0].Tasks[0].Role)

	// same input, same plan
	again, err := svc.GenerateSprintPlan(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, plan, again)
}

func TestService_GenerateSprintPlan_zeroSprintWeeks(t *testing.T) {
	svc := NewService()

	plan, err := svc.GenerateSprintPlan(context.Background(), board.PlanRequest{ProjectWeeks: 2})
	assert.NoError(t, err)
	assert.Len(t, plan.Sprints, 2) // falls back to 1-week sprints
}
