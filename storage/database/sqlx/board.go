package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/board"
)

type boardRow struct {
	ID        string          `db:"id"`
	ProjectID int             `db:"project_id"`
	StartDate time.Time       `db:"start_date"`
	DueDate   time.Time       `db:"due_date"`
	Status    string          `db:"status"`
	Plan      json.RawMessage `db:"plan"`
	URL       string          `db:"url"`
	AdminID   null.Int        `db:"admin_id"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r boardRow) toBoard() board.Board {
	return board.Board{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		StartDate: r.StartDate,
		DueDate:   r.DueDate,
		Status:    r.Status,
		Plan:      r.Plan,
		URL:       r.URL,
		AdminID:   r.AdminID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type boardRepository struct {
	db *sqlx.DB
}

var _ board.Repository = (*boardRepository)(nil)

func NewBoardRepository(db *sqlx.DB) *boardRepository {
	return &boardRepository{db: db}
}

func (repo boardRepository) GetBoardByID(ctx context.Context, id string) (board.Board, error) {
	var row boardRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM board WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return board.Board{}, board.ErrNotFound
		}
		return board.Board{}, errors.Wrap(err, "getting board by ID")
	}
	return row.toBoard(), nil
}

func (repo boardRepository) SaveBoardAndAssignStudents(ctx context.Context, brd board.Board, studentIDs []int) (board.Board, error) {
	err := core.AtomicFn(ctx, repo.db, func(tx core.DBTransactor) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO board (id, project_id, start_date, due_date, status, plan, url, admin_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			brd.ID, brd.ProjectID, brd.StartDate, brd.DueDate, brd.Status,
			[]byte(brd.Plan), brd.URL, brd.AdminID, brd.CreatedAt, brd.UpdatedAt)
		if err != nil {
			return errors.Wrap(err, "inserting board")
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE student SET board_id = $1, updated_at = $2 WHERE id = ANY($3)",
			brd.ID, brd.UpdatedAt, pq.Array(studentIDs))
		if err != nil {
			return errors.Wrap(err, "assigning students to board")
		}
		if n, err := res.RowsAffected(); err == nil && n != int64(len(studentIDs)) {
			return errors.Errorf("assigned %d of %d students", n, len(studentIDs))
		}
		return nil
	})
	if err != nil {
		return board.Board{}, err
	}
	return brd, nil
}

func (repo boardRepository) SetBoardAdmin(ctx context.Context, boardID string, studentID int, updatedAt time.Time) (board.Board, error) {
	res, err := repo.db.ExecContext(ctx,
		"UPDATE board SET admin_id = $1, updated_at = $2 WHERE id = $3",
		studentID, updatedAt, boardID)
	if err != nil {
		return board.Board{}, errors.Wrap(err, "setting board admin")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return board.Board{}, board.ErrNotFound
	}
	return repo.GetBoardByID(ctx, boardID)
}
