package board_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/board"
	"github.com/trezcool/miradi/core/project"
	"github.com/trezcool/miradi/core/student"
	emailsvc "github.com/trezcool/miradi/services/email"
	logsvc "github.com/trezcool/miradi/services/logger"
	inmemdb "github.com/trezcool/miradi/storage/database/inmem"
)

var refTime = time.Date(2021, time.February, 1, 9, 0, 0, 0, time.UTC)

type plannerStub struct {
	plan   board.SprintPlan
	err    error
	gotReq *board.PlanRequest
}

func (p *plannerStub) GenerateSprintPlan(_ context.Context, req board.PlanRequest) (board.SprintPlan, error) {
	p.gotReq = &req
	if p.err != nil {
		return board.SprintPlan{}, p.err
	}
	return p.plan, nil
}

type providerStub struct {
	res    board.ProviderResult
	err    error
	stats  board.Stats
	gotReq *board.ProviderBoard
	calls  int
}

func (p *providerStub) CreateBoard(_ context.Context, req board.ProviderBoard) (board.ProviderResult, error) {
	p.calls++
	p.gotReq = &req
	if p.err != nil {
		return board.ProviderResult{}, p.err
	}
	return p.res, nil
}

func (p *providerStub) GetBoardStats(context.Context, string) (board.Stats, error) {
	return p.stats, p.err
}

// failingRepo fails every write; reads delegate to the wrapped repository.
type failingRepo struct {
	board.Repository
	err error
}

func (r failingRepo) SaveBoardAndAssignStudents(context.Context, board.Board, []int) (board.Board, error) {
	return board.Board{}, r.err
}

type testEnv struct {
	db       *inmemdb.DB
	planner  *plannerStub
	provider *providerStub
	conf     *core.Config
	repoErr  error // forces SaveBoardAndAssignStudents to fail
}

func setup(t *testing.T, env *testEnv) *board.Service {
	t.Helper()

	if env.db == nil {
		env.db = inmemdb.Open()
	}
	if env.planner == nil {
		env.planner = &plannerStub{}
	}
	if env.provider == nil {
		env.provider = &providerStub{res: board.ProviderResult{ID: "B1", URL: "https://x/B1"}}
	}
	if env.conf == nil {
		env.conf = core.NewConfig()
	}

	var repo board.Repository = inmemdb.NewBoardRepository(env.db)
	if env.repoErr != nil {
		repo = failingRepo{Repository: repo, err: env.repoErr}
	}

	board.NowFunc = func() time.Time { return refTime }
	t.Cleanup(func() { board.NowFunc = time.Now })
	emailsvc.ClearSentMessages()

	return board.NewService(
		repo,
		inmemdb.NewProjectRepository(env.db),
		inmemdb.NewStudentRepository(env.db),
		env.planner,
		env.provider,
		emailsvc.NewConsoleServiceMock(env.conf),
		logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
		env.conf,
	)
}

func seedTeam(db *inmemdb.DB, available ...bool) {
	db.AddProject(project.Project{ID: 10, Title: "Attendance App", Description: "Track class attendance", IsAvailable: true})
	for i := 1; i <= 3; i++ {
		avail := true
		if len(available) >= i {
			avail = available[i-1]
		}
		db.AddStudent(student.Student{
			ID:          i,
			Name:        fmt.Sprintf("Student %d", i),
			Email:       fmt.Sprintf("student%d@school.io", i),
			IsAvailable: avail,
			Roles:       []student.Role{{ID: i, Name: "Backend Developer"}},
		})
	}
}

func twoSprintPlan() board.SprintPlan {
	return board.SprintPlan{
		Sprints: []board.Sprint{
			{
				Name:    "Sprint 1",
				Number:  1,
				EndDate: refTime.AddDate(0, 0, 14),
				Tasks: []board.Task{
					{Title: "T1", Role: "Backend Developer", Priority: "high"},
					{Title: "T2", Role: "Backend Developer", Priority: "medium"},
					{Title: "T3", Priority: "low"},
				},
			},
			{
				Name:    "Sprint 2",
				Number:  2,
				EndDate: refTime.AddDate(0, 0, 28),
				Tasks: []board.Task{
					{Title: "T4", Role: "QA Engineer", Priority: "high"},
					{Title: "T5", Role: "QA Engineer", Priority: "low"},
				},
			},
		},
	}
}

func TestService_Create(t *testing.T) {
	env := &testEnv{
		db:      inmemdb.Open(),
		planner: &plannerStub{plan: twoSprintPlan()},
		provider: &providerStub{res: board.ProviderResult{
			ID:             "B1",
			URL:            "https://x/B1",
			InvitedMembers: []string{"student1@school.io", "student2@school.io", "student3@school.io"},
		}},
	}
	seedTeam(env.db)
	svc := setup(t, env)

	res, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: []int{1, 2, 3}})

	assert.NoError(t, err)
	assert.Equal(t, "B1", res.BoardID)
	assert.Equal(t, "https://x/B1", res.BoardURL)
	assert.Equal(t, 3, res.StudentCount)
	assert.Len(t, res.InvitedMembers, 3)

	// board row persisted with the serialized plan and derived due date
	brd, err := svc.GetByID(context.Background(), "B1")
	assert.NoError(t, err)
	assert.Equal(t, 10, brd.ProjectID)
	assert.Equal(t, board.StatusActive, brd.Status)
	assert.Equal(t, refTime, brd.StartDate)
	assert.Equal(t, refTime.AddDate(0, 0, env.conf.Planning.ProjectWeeks*7), brd.DueDate)
	var plan board.SprintPlan
	assert.NoError(t, json.Unmarshal(brd.Plan, &plan))
	assert.Len(t, plan.Sprints, 2)
	assert.Equal(t, 10, plan.ProjectID)

	// every student now carries the board id
	students, _ := inmemdb.NewStudentRepository(env.db).QueryAllStudents(context.Background())
	for _, s := range students {
		assert.Equal(t, null.StringFrom("B1"), s.BoardID)
	}

	// provider received the translated structure
	assert.Len(t, env.provider.gotReq.Lists, 2)
	assert.Len(t, env.provider.gotReq.Cards, 5)
	assert.Equal(t, "Attendance App", env.provider.gotReq.Name)

	// the team was notified once the run committed
	assert.Len(t, emailsvc.SentMessages, 3)
}

func TestService_Create_projectNotFound(t *testing.T) {
	env := &testEnv{db: inmemdb.Open()}
	seedTeam(env.db)
	svc := setup(t, env)

	_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 99, StudentIDs: []int{1}})
	assert.Equal(t, project.ErrNotFound, errors.Cause(err))
}

// any missing or unavailable student invalidates the whole batch
func TestService_Create_allOrNothingMembership(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
	}{
		{name: "unavailable student", ids: []int{1, 2, 3}},
		{name: "missing student", ids: []int{1, 3, 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &testEnv{db: inmemdb.Open(), planner: &plannerStub{plan: twoSprintPlan()}}
			seedTeam(env.db, true, false, true) // student 2 unavailable
			svc := setup(t, env)

			_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: tt.ids})

			var vErr *core.ValidationError
			assert.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)

			// no board created, no student mutated, no upstream call made
			assert.Equal(t, 0, env.provider.calls)
			assert.Nil(t, env.planner.gotReq)
			students, _ := inmemdb.NewStudentRepository(env.db).QueryAllStudents(context.Background())
			for _, s := range students {
				assert.False(t, s.BoardID.Valid)
			}
		})
	}
}

func TestService_Create_planningFails(t *testing.T) {
	env := &testEnv{
		db:      inmemdb.Open(),
		planner: &plannerStub{err: core.NewUpstreamError("planning", errors.New("timeout"))},
	}
	seedTeam(env.db)
	svc := setup(t, env)

	_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: []int{1, 2, 3}})

	assert.True(t, core.IsUpstream(err), "want UpstreamError, got %v", err)
	assert.Equal(t, 0, env.provider.calls)
	students, _ := inmemdb.NewStudentRepository(env.db).QueryAllStudents(context.Background())
	for _, s := range students {
		assert.False(t, s.BoardID.Valid)
	}
	assert.Empty(t, emailsvc.SentMessages)
}

func TestService_Create_boardProviderFails(t *testing.T) {
	env := &testEnv{
		db:       inmemdb.Open(),
		planner:  &plannerStub{plan: twoSprintPlan()},
		provider: &providerStub{err: core.NewUpstreamError("trello", errors.New("board creation returned no id"))},
	}
	seedTeam(env.db)
	svc := setup(t, env)

	_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: []int{1, 2, 3}})

	assert.True(t, core.IsUpstream(err), "want UpstreamError, got %v", err)
	students, _ := inmemdb.NewStudentRepository(env.db).QueryAllStudents(context.Background())
	for _, s := range students {
		assert.False(t, s.BoardID.Valid)
	}
}

// persistence failure after successful upstream calls retains nothing
func TestService_Create_persistenceFails(t *testing.T) {
	env := &testEnv{
		db:      inmemdb.Open(),
		planner: &plannerStub{plan: twoSprintPlan()},
		repoErr: errors.New("connection reset"),
	}
	seedTeam(env.db)
	svc := setup(t, env)

	_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: []int{1, 2, 3}})

	assert.Error(t, err)
	assert.False(t, core.IsUpstream(err))
	_, err = inmemdb.NewBoardRepository(env.db).GetBoardByID(context.Background(), "B1")
	assert.Equal(t, board.ErrNotFound, err)
	students, _ := inmemdb.NewStudentRepository(env.db).QueryAllStudents(context.Background())
	for _, s := range students {
		assert.False(t, s.BoardID.Valid)
	}
	assert.Empty(t, emailsvc.SentMessages)
}

// an empty sprint list is a valid degenerate plan
func TestService_Create_emptyPlan(t *testing.T) {
	env := &testEnv{db: inmemdb.Open(), planner: &plannerStub{}}
	seedTeam(env.db)
	svc := setup(t, env)

	res, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: []int{1, 2, 3}})
	assert.NoError(t, err)
	assert.Equal(t, "B1", res.BoardID)
	assert.Empty(t, env.provider.gotReq.Lists)
	assert.Empty(t, env.provider.gotReq.Cards)
}

// the first admin-flagged student in input order becomes board admin
func TestService_Create_adminTieBreak(t *testing.T) {
	tests := []struct {
		name      string
		ids       []int
		admins    []int
		wantAdmin null.Int
	}{
		{name: "no admin", ids: []int{1, 2, 3}, wantAdmin: null.Int{}},
		{name: "single admin", ids: []int{1, 2, 3}, admins: []int{2}, wantAdmin: null.IntFrom(2)},
		{name: "first of several wins", ids: []int{1, 2, 3}, admins: []int{2, 3}, wantAdmin: null.IntFrom(2)},
		{name: "input order decides", ids: []int{3, 2, 1}, admins: []int{2, 3}, wantAdmin: null.IntFrom(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// repeated runs stay deterministic
			for i := 0; i < 3; i++ {
				env := &testEnv{db: inmemdb.Open(), planner: &plannerStub{plan: twoSprintPlan()}}
				seedTeam(env.db)
				for _, id := range tt.admins {
					st, _ := inmemdb.NewStudentRepository(env.db).GetStudentByID(context.Background(), id)
					st.IsAdmin = true
					env.db.AddStudent(st)
				}
				svc := setup(t, env)

				_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: tt.ids})
				assert.NoError(t, err)

				brd, err := svc.GetByID(context.Background(), "B1")
				assert.NoError(t, err)
				assert.Equal(t, tt.wantAdmin, brd.AdminID)
			}
		})
	}
}

// board.DueDate == board.StartDate + projectLengthWeeks*7 days, exactly
func TestService_Create_dueDateDerivation(t *testing.T) {
	for weeks := 1; weeks <= 52; weeks++ {
		env := &testEnv{db: inmemdb.Open(), planner: &plannerStub{plan: twoSprintPlan()}, conf: core.NewConfig()}
		env.conf.Planning.ProjectWeeks = weeks
		env.conf.Planning.SprintWeeks = 1
		seedTeam(env.db)
		svc := setup(t, env)

		_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: []int{1, 2, 3}})
		assert.NoError(t, err)

		brd, _ := svc.GetByID(context.Background(), "B1")
		assert.Equal(t, refTime.AddDate(0, 0, weeks*7), brd.DueDate, "weeks=%d", weeks)
		assert.Equal(t, weeks, env.planner.gotReq.ProjectWeeks)
	}
}

func TestService_SetAdmin(t *testing.T) {
	env := &testEnv{db: inmemdb.Open(), planner: &plannerStub{plan: twoSprintPlan()}}
	seedTeam(env.db)
	// a 4th student outside the original team; membership is not cross-checked
	env.db.AddStudent(student.Student{ID: 4, Name: "Student 4", Email: "student4@school.io", IsAvailable: true})
	env.db.AddStudent(student.Student{ID: 5, Name: "Student 5", Email: "student5@school.io", IsAvailable: false})
	svc := setup(t, env)

	_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: []int{1, 2, 3}})
	assert.NoError(t, err)

	t.Run("board not found", func(t *testing.T) {
		_, err := svc.SetAdmin(context.Background(), "nope", 1)
		assert.Equal(t, board.ErrNotFound, errors.Cause(err))
	})
	t.Run("student not found", func(t *testing.T) {
		_, err := svc.SetAdmin(context.Background(), "B1", 99)
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
	})
	t.Run("unavailable student", func(t *testing.T) {
		_, err := svc.SetAdmin(context.Background(), "B1", 5)
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
	})
	t.Run("outside original team is allowed", func(t *testing.T) {
		brd, err := svc.SetAdmin(context.Background(), "B1", 4)
		assert.NoError(t, err)
		assert.Equal(t, null.IntFrom(4), brd.AdminID)
	})
	t.Run("idempotent", func(t *testing.T) {
		first, err := svc.SetAdmin(context.Background(), "B1", 1)
		assert.NoError(t, err)
		second, err := svc.SetAdmin(context.Background(), "B1", 1)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, null.IntFrom(1), second.AdminID)
	})
}

func TestService_Stats(t *testing.T) {
	env := &testEnv{
		db:       inmemdb.Open(),
		planner:  &plannerStub{plan: twoSprintPlan()},
		provider: &providerStub{res: board.ProviderResult{ID: "B1", URL: "https://x/B1"}, stats: board.Stats{Lists: 2, Cards: 5, Members: 3}},
	}
	seedTeam(env.db)
	svc := setup(t, env)

	_, err := svc.Create(context.Background(), board.NewBoard{ProjectID: 10, StudentIDs: []int{1, 2, 3}})
	assert.NoError(t, err)

	stats, err := svc.Stats(context.Background(), "B1")
	assert.NoError(t, err)
	assert.Equal(t, board.Stats{Lists: 2, Cards: 5, Members: 3}, stats)

	_, err = svc.Stats(context.Background(), "nope")
	assert.Equal(t, board.ErrNotFound, errors.Cause(err))
}
