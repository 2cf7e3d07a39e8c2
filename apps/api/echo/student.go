package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/miradi/core/student"
)

type studentApi struct {
	svc student.ServiceInterface
}

func registerStudentAPI(g *echo.Group, deps *ServerDeps) {
	api := studentApi{svc: deps.StudentSvc}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
}

func (api *studentApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.QueryAll(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return student.ErrNotFound
	}
	st, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}
