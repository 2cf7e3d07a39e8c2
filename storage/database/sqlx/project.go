package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/project"
)

type projectRow struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	IsAvailable bool      `db:"is_available"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r projectRow) toProject() project.Project {
	return project.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IsAvailable: r.IsAvailable,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{db: db}
}

var projectOrderFields = map[string]bool{
	"id": true, "title": true, "is_available": true, "created_at": true, "updated_at": true,
}

func (repo projectRepository) QueryAllProjects(ctx context.Context, ordering ...core.DBOrdering) ([]project.Project, error) {
	query := "SELECT * FROM project" + orderByClause(projectOrderFields, ordering)

	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}

	projects := make([]project.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, r.toProject())
	}
	return projects, nil
}

func (repo projectRepository) GetProjectByID(ctx context.Context, id int) (project.Project, error) {
	var row projectRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM project WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project by ID")
	}
	return row.toProject(), nil
}

// orderByClause renders a safe ORDER BY from the requested orderings,
// dropping fields outside the whitelist.
func orderByClause(allowed map[string]bool, ordering []core.DBOrdering) string {
	clause := ""
	for _, ord := range ordering {
		if !allowed[ord.Field] {
			continue
		}
		if clause == "" {
			clause = " ORDER BY " + ord.String()
		} else {
			clause += ", " + ord.String()
		}
	}
	return clause
}
