package board

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/project"
	"github.com/trezcool/miradi/core/student"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("board not found")

	errStudentsUnavailable = "one or more students do not exist or are unavailable"
	errStudentUnavailable  = "student is unavailable"
)

type (
	// PlanRequest is the input to the planning service.
	PlanRequest struct {
		ProjectID    int
		ProjectWeeks int
		SprintWeeks  int
		StartDate    time.Time
		Team         []TeamMember
	}

	// PlanningService generates a sprint plan for a project team.
	PlanningService interface {
		GenerateSprintPlan(ctx context.Context, req PlanRequest) (SprintPlan, error)
	}

	// ProviderBoard is the translated board structure sent to the provider.
	ProviderBoard struct {
		Name        string
		Description string
		Team        []TeamMember
		Lists       []List
		Cards       []Card
	}

	// ProviderResult identifies the created external board. InvitedMembers
	// may be a subset of the requested team when some invitations failed
	// upstream; this is reported, not treated as a hard failure.
	ProviderResult struct {
		ID             string
		URL            string
		InvitedMembers []string
	}

	// Provider creates and inspects boards on the external
	// project-management service.
	Provider interface {
		CreateBoard(ctx context.Context, req ProviderBoard) (ProviderResult, error)
		GetBoardStats(ctx context.Context, boardID string) (Stats, error)
	}

	Repository interface {
		GetBoardByID(ctx context.Context, id string) (Board, error)
		// SaveBoardAndAssignStudents atomically creates the board row and
		// sets BoardID on every given student; on error nothing is retained.
		SaveBoardAndAssignStudents(ctx context.Context, brd Board, studentIDs []int) (Board, error)
		SetBoardAdmin(ctx context.Context, boardID string, studentID int, updatedAt time.Time) (Board, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nb NewBoard) (Result, error)
		SetAdmin(ctx context.Context, boardID string, studentID int) (Board, error)
		GetByID(ctx context.Context, id string) (Board, error)
		Stats(ctx context.Context, id string) (Stats, error)
	}

	Service struct {
		repo     Repository
		projects project.Repository
		students student.Repository
		planner  PlanningService
		provider Provider
		mailSvc  core.EmailService
		logger   core.Logger
		conf     *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	projects project.Repository,
	students student.Repository,
	planner PlanningService,
	provider Provider,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		students: students,
		planner:  planner,
		provider: provider,
		mailSvc:  mailSvc,
		logger:   logger,
		conf:     conf,
	}
}

// Create runs the board creation sequence:
// validate -> plan -> translate -> create board -> persist.
// Each step fails fast; no durable write happens before the final step and
// that step is atomic. A failure after the external board was created leaves
// an orphaned board upstream; it is logged and not compensated.
func (svc *Service) Create(ctx context.Context, nb NewBoard) (Result, error) {
	// Validating
	proj, err := svc.projects.GetProjectByID(ctx, nb.ProjectID)
	if err != nil {
		return Result{}, err
	}
	students, err := svc.students.GetAvailableStudentsByID(ctx, nb.StudentIDs)
	if err != nil {
		return Result{}, errors.Wrap(err, "resolving students")
	}
	if len(students) != len(nb.StudentIDs) {
		return Result{}, core.NewValidationError(
			errors.New(errStudentsUnavailable),
			core.FieldError{Field: "student_ids", Error: errStudentsUnavailable},
		)
	}
	team := TranslateTeam(students)

	// Planning
	start := NowFunc().UTC()
	plan, err := svc.planner.GenerateSprintPlan(ctx, PlanRequest{
		ProjectID:    proj.ID,
		ProjectWeeks: svc.conf.Planning.ProjectWeeks,
		SprintWeeks:  svc.conf.Planning.SprintWeeks,
		StartDate:    start,
		Team:         team,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "generating sprint plan")
	}
	plan.ProjectID = proj.ID
	plan.StartDate = start

	// TranslatingPlan
	lists, cards := TranslatePlan(plan)

	// CreatingBoard
	res, err := svc.provider.CreateBoard(ctx, ProviderBoard{
		Name:        proj.Title,
		Description: proj.Description,
		Team:        team,
		Lists:       lists,
		Cards:       cards,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "creating external board")
	}

	// Persisting
	doc, err := json.Marshal(plan)
	if err != nil {
		return Result{}, errors.Wrap(err, "serializing sprint plan")
	}
	brd := Board{
		ID:        res.ID,
		ProjectID: proj.ID,
		StartDate: start,
		DueDate:   start.AddDate(0, 0, svc.conf.Planning.ProjectWeeks*7),
		Status:    StatusActive,
		Plan:      doc,
		URL:       res.URL,
		AdminID:   pickAdmin(students),
		CreatedAt: start,
		UpdatedAt: start,
	}
	if _, err = svc.repo.SaveBoardAndAssignStudents(ctx, brd, nb.StudentIDs); err != nil {
		// the external board now exists with no local record; known
		// inconsistency window, logged for manual reconciliation
		svc.logger.Error(
			fmt.Sprintf("board %s created upstream but not persisted: %v", res.ID, err), err)
		return Result{}, errors.Wrap(err, "persisting board")
	}

	// Committed
	svc.notifyTeam(proj, brd, students)
	return Result{
		BoardID:        brd.ID,
		BoardURL:       brd.URL,
		StudentCount:   len(students),
		InvitedMembers: res.InvitedMembers,
	}, nil
}

// SetAdmin overwrites the board's admin reference. Idempotent; the student
// is not required to belong to the board's original team.
func (svc *Service) SetAdmin(ctx context.Context, boardID string, studentID int) (Board, error) {
	if _, err := svc.repo.GetBoardByID(ctx, boardID); err != nil {
		return Board{}, err
	}
	st, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return Board{}, err
	}
	if !st.IsAvailable {
		return Board{}, core.NewValidationError(
			errors.New(errStudentUnavailable),
			core.FieldError{Field: "student_id", Error: errStudentUnavailable},
		)
	}
	return svc.repo.SetBoardAdmin(ctx, boardID, studentID, NowFunc().UTC())
}

func (svc *Service) GetByID(ctx context.Context, id string) (Board, error) {
	return svc.repo.GetBoardByID(ctx, id)
}

func (svc *Service) Stats(ctx context.Context, id string) (Stats, error) {
	brd, err := svc.repo.GetBoardByID(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	return svc.provider.GetBoardStats(ctx, brd.ID)
}

// pickAdmin returns the first admin-flagged student in input order;
// no admin-flagged student means no admin.
func pickAdmin(students []student.Student) null.Int {
	for _, s := range students {
		if s.IsAdmin {
			return null.IntFrom(s.ID)
		}
	}
	return null.Int{}
}

// notifyTeam emails each team member their new board URL. Delivery is
// best-effort and never fails a committed run.
func (svc *Service) notifyTeam(proj project.Project, brd Board, students []student.Student) {
	if svc.mailSvc == nil {
		return
	}
	messages := make([]*core.EmailMessage, 0, len(students))
	for _, s := range students {
		messages = append(messages, &core.EmailMessage{
			To:      []mail.Address{{Name: s.Name, Address: s.Email}},
			Subject: fmt.Sprintf("You joined the %q project board", proj.Title),
			BodyStr: fmt.Sprintf(
				"Hi %s,\n\nA project board was created for %q and you are on the team.\n"+
					"Board: %s\nDue date: %s\n", s.Name, proj.Title, brd.URL,
				brd.DueDate.Format("2006-01-02")),
		})
	}
	svc.mailSvc.SendMessages(messages...)
}
