package student

import (
	"context"
	"errors"

	"github.com/trezcool/miradi/core"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		QueryAllStudents(ctx context.Context, ordering ...core.DBOrdering) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		// GetAvailableStudentsByID returns only the requested students that
		// exist and are available, preserving the order of ids; the caller
		// compares the count against the request.
		GetAvailableStudentsByID(ctx context.Context, ids []int) ([]Student, error)
	}

	ServiceInterface interface {
		QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Student, error)
		GetByID(ctx context.Context, id int) (Student, error)
		GetAvailableByID(ctx context.Context, ids []int) ([]Student, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetAvailableByID(ctx context.Context, ids []int) ([]Student, error) {
	return svc.repo.GetAvailableStudentsByID(ctx, ids)
}
