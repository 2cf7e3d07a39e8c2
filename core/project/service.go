package project

import (
	"context"
	"errors"

	"github.com/trezcool/miradi/core"
)

var ErrNotFound = errors.New("project not found")

type (
	Repository interface {
		QueryAllProjects(ctx context.Context, ordering ...core.DBOrdering) ([]Project, error)
		GetProjectByID(ctx context.Context, id int) (Project, error)
	}

	ServiceInterface interface {
		QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Project, error)
		GetByID(ctx context.Context, id int) (Project, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Project, error) {
	return svc.repo.QueryAllProjects(ctx, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Project, error) {
	return svc.repo.GetProjectByID(ctx, id)
}
