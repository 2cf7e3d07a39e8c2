package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/miradi/core/project"
	"github.com/trezcool/miradi/core/student"
	inmemdb "github.com/trezcool/miradi/storage/database/inmem"
)

func Test_projectApi_query(t *testing.T) {
	env := &testEnv{db: inmemdb.Open()}
	p1 := env.db.AddProject(project.Project{Title: "Attendance App", IsAvailable: true})
	p2 := env.db.AddProject(project.Project{Title: "Library Catalog", IsAvailable: false})
	app := setup(t, env)

	tests := []httpTest{
		{name: "Get all", path: "/v1/projects", wantData: marchallList(t, p1, p2)},
		{name: "Trailing slash", path: "/v1/projects/", wantData: marchallList(t, p1, p2)},
		{name: "Get one", path: "/v1/projects/1", wantData: marchallObj(t, p1)},
		{name: "Not found", path: "/v1/projects/99", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "project not found"})},
		{name: "Bad id", path: "/v1/projects/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "project not found"})},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_projectApi_query_empty(t *testing.T) {
	app := setup(t, &testEnv{})

	tt := httpTest{
		method: http.MethodGet, path: "/v1/projects",
		wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...),
	}
	req, rec := newRequest(tt.method, tt.path)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_studentApi_query(t *testing.T) {
	env := &testEnv{db: inmemdb.Open()}
	s1 := env.db.AddStudent(student.Student{
		Name: "Amani", Email: "amani@school.io", IsAvailable: true,
		Roles: []student.Role{{ID: 1, Name: "Backend Developer"}},
	})
	s2 := env.db.AddStudent(student.Student{Name: "Zawadi", Email: "zawadi@school.io"})
	app := setup(t, env)

	tests := []httpTest{
		{name: "Get all", path: "/v1/students", wantData: marchallList(t, s1, s2)},
		{name: "Get one", path: "/v1/students/2", wantData: marchallObj(t, s2)},
		{name: "Not found", path: "/v1/students/99", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"})},
		{name: "Bad id", path: "/v1/students/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"})},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
