package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/student"
)

type (
	studentRow struct {
		ID          int         `db:"id"`
		Name        string      `db:"name"`
		Email       string      `db:"email"`
		IsAvailable bool        `db:"is_available"`
		IsAdmin     bool        `db:"is_admin"`
		BoardID     null.String `db:"board_id"`
		CreatedAt   time.Time   `db:"created_at"`
		UpdatedAt   time.Time   `db:"updated_at"`
	}

	roleRow struct {
		StudentID int    `db:"student_id"`
		RoleID    int    `db:"role_id"`
		Name      string `db:"name"`
	}
)

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		IsAvailable: r.IsAvailable,
		IsAdmin:     r.IsAdmin,
		BoardID:     r.BoardID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

var studentOrderFields = map[string]bool{
	"id": true, "name": true, "email": true, "is_available": true, "created_at": true, "updated_at": true,
}

func (repo studentRepository) QueryAllStudents(ctx context.Context, ordering ...core.DBOrdering) ([]student.Student, error) {
	query := "SELECT * FROM student" + orderByClause(studentOrderFields, ordering)

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return repo.withRoles(ctx, rows)
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM student WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by ID")
	}

	students, err := repo.withRoles(ctx, []studentRow{row})
	if err != nil {
		return student.Student{}, err
	}
	return students[0], nil
}

func (repo studentRepository) GetAvailableStudentsByID(ctx context.Context, ids []int) ([]student.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM student WHERE id = ANY($1) AND is_available", pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "querying available students")
	}

	students, err := repo.withRoles(ctx, rows)
	if err != nil {
		return nil, err
	}

	// preserve caller order; the admin tie-break depends on it
	byID := make(map[int]student.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	ordered := make([]student.Student, 0, len(students))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

// withRoles attaches assigned roles to each student row.
func (repo studentRepository) withRoles(ctx context.Context, rows []studentRow) ([]student.Student, error) {
	if len(rows) == 0 {
		return []student.Student{}, nil
	}

	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	var assignments []roleRow
	err := repo.db.SelectContext(ctx, &assignments,
		`SELECT ra.student_id, r.id AS role_id, r.name
		 FROM role_assignment ra
		 JOIN role r ON r.id = ra.role_id
		 WHERE ra.student_id = ANY($1)
		 ORDER BY ra.student_id, ra.position`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "querying student roles")
	}

	rolesByStudent := make(map[int][]student.Role, len(rows))
	for _, a := range assignments {
		rolesByStudent[a.StudentID] = append(rolesByStudent[a.StudentID], student.Role{ID: a.RoleID, Name: a.Name})
	}

	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		s := r.toStudent()
		s.Roles = rolesByStudent[r.ID]
		students = append(students, s)
	}
	return students, nil
}
