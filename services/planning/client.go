package planningsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/board"
)

const serviceName = "planning"

type (
	planRequest struct {
		ProjectID    int          `json:"project_id"`
		ProjectWeeks int          `json:"project_weeks"`
		SprintWeeks  int          `json:"sprint_weeks"`
		StartDate    time.Time    `json:"start_date"`
		Team         []teamMember `json:"team"`
	}

	teamMember struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	planResponse struct {
		Sprints []sprint `json:"sprints"`
	}

	sprint struct {
		Name    string    `json:"name"`
		Number  int       `json:"number"`
		EndDate time.Time `json:"end_date"`
		Tasks   []task    `json:"tasks"`
	}

	task struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Role        string `json:"role"`
		Priority    string `json:"priority"`
	}
)

// Client calls the external AI sprint-planning service.
type Client struct {
	url    string
	client *http.Client
	logger core.Logger
}

var _ board.PlanningService = (*Client)(nil)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		url:    conf.Planning.URL,
		client: &http.Client{Timeout: conf.Planning.Timeout},
		logger: logger,
	}
}

// GenerateSprintPlan posts the project context to the planning service and
// maps the response back to a SprintPlan. Any transport failure, timeout,
// non-2xx status or unusable payload aborts with an UpstreamError; an empty
// sprint list is a valid (if degenerate) plan.
func (c *Client) GenerateSprintPlan(ctx context.Context, req board.PlanRequest) (board.SprintPlan, error) {
	payload := planRequest{
		ProjectID:    req.ProjectID,
		ProjectWeeks: req.ProjectWeeks,
		SprintWeeks:  req.SprintWeeks,
		StartDate:    req.StartDate,
		Team:         make([]teamMember, 0, len(req.Team)),
	}
	for _, m := range req.Team {
		payload.Team = append(payload.Team, teamMember{Name: m.Name, Email: m.Email, Role: m.Role})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return board.SprintPlan{}, errors.Wrap(err, "marshalling plan request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/plans", bytes.NewReader(body))
	if err != nil {
		return board.SprintPlan{}, errors.Wrap(err, "building plan request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return board.SprintPlan{}, core.NewUpstreamError(serviceName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return board.SprintPlan{}, core.NewUpstreamError(
			serviceName, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var data *planResponse
	if err = json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return board.SprintPlan{}, core.NewUpstreamError(serviceName, errors.Wrap(err, "decoding plan"))
	}
	if data == nil {
		return board.SprintPlan{}, core.NewUpstreamError(serviceName, errors.New("null plan payload"))
	}

	plan := board.SprintPlan{
		ProjectID: req.ProjectID,
		StartDate: req.StartDate,
		Sprints:   make([]board.Sprint, 0, len(data.Sprints)),
	}
	for _, s := range data.Sprints {
		sp := board.Sprint{
			Name:    s.Name,
			Number:  s.Number,
			EndDate: s.EndDate,
			Tasks:   make([]board.Task, 0, len(s.Tasks)),
		}
		for _, t := range s.Tasks {
			sp.Tasks = append(sp.Tasks, board.Task{
				Title:       t.Title,
				Description: t.Description,
				Role:        t.Role,
				Priority:    t.Priority,
			})
		}
		plan.Sprints = append(plan.Sprints, sp)
	}
	return plan, nil
}
