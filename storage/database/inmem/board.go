package inmemdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/miradi/core/board"
)

type boardRepository struct {
	db *DB
}

var _ board.Repository = (*boardRepository)(nil)

func NewBoardRepository(db *DB) *boardRepository {
	return &boardRepository{db: db}
}

func (repo *boardRepository) GetBoardByID(_ context.Context, id string) (board.Board, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if b, ok := repo.db.boards[id]; ok {
		return *b, nil
	}
	return board.Board{}, board.ErrNotFound
}

func (repo *boardRepository) SaveBoardAndAssignStudents(_ context.Context, brd board.Board, studentIDs []int) (board.Board, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// simulate FK checks before mutating anything so the save stays atomic
	if _, ok := repo.db.boards[brd.ID]; ok {
		return board.Board{}, errors.Errorf("board %s already exists", brd.ID)
	}
	for _, id := range studentIDs {
		if _, ok := repo.db.students[id]; !ok {
			return board.Board{}, errors.Errorf("student %d does not exist", id)
		}
	}

	repo.db.boards[brd.ID] = &brd
	for _, id := range studentIDs {
		s := repo.db.students[id]
		s.BoardID = null.StringFrom(brd.ID)
		s.UpdatedAt = brd.UpdatedAt
	}
	return brd, nil
}

func (repo *boardRepository) SetBoardAdmin(_ context.Context, boardID string, studentID int, updatedAt time.Time) (board.Board, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	b, ok := repo.db.boards[boardID]
	if !ok {
		return board.Board{}, board.ErrNotFound
	}
	b.AdminID = null.IntFrom(studentID)
	b.UpdatedAt = updatedAt
	return *b, nil
}
