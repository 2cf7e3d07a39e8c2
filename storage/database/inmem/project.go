package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/project"
)

type projectRepository struct {
	db *DB
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) QueryAllProjects(_ context.Context, _ ...core.DBOrdering) ([]project.Project, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	projects := make([]project.Project, 0, len(repo.db.projects))
	for _, p := range repo.db.projects {
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (repo *projectRepository) GetProjectByID(_ context.Context, id int) (project.Project, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.projects[id]; ok {
		return *p, nil
	}
	return project.Project{}, project.ErrNotFound
}
