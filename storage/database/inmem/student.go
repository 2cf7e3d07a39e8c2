package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryAllStudents(_ context.Context, _ ...core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetAvailableStudentsByID(_ context.Context, ids []int) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		if s, ok := repo.db.students[id]; ok && s.IsAvailable {
			students = append(students, *s)
		}
	}
	return students, nil
}
