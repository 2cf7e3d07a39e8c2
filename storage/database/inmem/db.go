package inmemdb

import (
	"sync"

	"github.com/trezcool/miradi/core/board"
	"github.com/trezcool/miradi/core/project"
	"github.com/trezcool/miradi/core/student"
)

// DB is a mutex-guarded in-memory store backing all repositories; for tests
// and local development.
type DB struct {
	mutex    sync.RWMutex
	projects map[int]*project.Project
	students map[int]*student.Student
	boards   map[string]*board.Board

	projectPK int
	studentPK int
}

func Open() *DB {
	return &DB{
		projects: make(map[int]*project.Project),
		students: make(map[int]*student.Student),
		boards:   make(map[string]*board.Board),
	}
}

// AddProject inserts a project directly; test seeding helper.
func (db *DB) AddProject(p project.Project) project.Project {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if p.ID == 0 {
		db.projectPK++
		p.ID = db.projectPK
	} else if p.ID > db.projectPK {
		db.projectPK = p.ID
	}
	db.projects[p.ID] = &p
	return p
}

// AddStudent inserts a student directly; test seeding helper.
func (db *DB) AddStudent(s student.Student) student.Student {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if s.ID == 0 {
		db.studentPK++
		s.ID = db.studentPK
	} else if s.ID > db.studentPK {
		db.studentPK = s.ID
	}
	db.students[s.ID] = &s
	return s
}
