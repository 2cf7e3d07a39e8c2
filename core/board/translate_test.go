package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/miradi/core/student"
)

func TestTranslatePlan(t *testing.T) {
	end1 := time.Date(2021, time.March, 14, 0, 0, 0, 0, time.UTC)
	end2 := end1.AddDate(0, 0, 14)
	plan := SprintPlan{
		ProjectID: 10,
		Sprints: []Sprint{
			{
				Name:    "Sprint 1",
				Number:  1,
				EndDate: end1,
				Tasks: []Task{
					{Title: "Set up repo", Description: "init", Role: "Backend Developer", Priority: "high"},
					{Title: "Design mockups", Role: "", Priority: "medium"},
				},
			},
			{Name: "Sprint 2", Number: 2, EndDate: end2}, // no tasks
		},
	}

	lists, cards := TranslatePlan(plan)

	assert.Equal(t, []List{{Name: "Sprint 1", Position: 1}, {Name: "Sprint 2", Position: 2}}, lists)
	assert.Len(t, cards, 2)
	assert.Equal(t, "Sprint 1", cards[0].ListName)
	assert.Equal(t, end1, cards[0].Due)
	assert.Equal(t, "Backend Developer", cards[0].Role)
	// a task with no role renders the sentinel label
	assert.Equal(t, DefaultRoleLabel, cards[1].Role)
}

func TestTranslatePlan_empty(t *testing.T) {
	lists, cards := TranslatePlan(SprintPlan{ProjectID: 10})
	assert.Empty(t, lists)
	assert.Empty(t, cards)
}

func TestTranslateTeam(t *testing.T) {
	students := []student.Student{
		{ID: 1, Name: "Jane", Email: "jane@school.io", Roles: []student.Role{{ID: 1, Name: "Backend Developer"}}},
		{ID: 2, Name: "Joe", Email: "joe@school.io"},
	}

	team := TranslateTeam(students)

	assert.Equal(t, []TeamMember{
		{Name: "Jane", Email: "jane@school.io", Role: "Backend Developer"},
		{Name: "Joe", Email: "joe@school.io", Role: DefaultRoleLabel},
	}, team)
}
