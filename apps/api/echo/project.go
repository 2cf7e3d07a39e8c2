package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/miradi/core/project"
)

type projectApi struct {
	svc project.ServiceInterface
}

func registerProjectAPI(g *echo.Group, deps *ServerDeps) {
	api := projectApi{svc: deps.ProjectSvc}

	pg := g.Group("/projects")
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
}

func (api *projectApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	projects, err := api.svc.QueryAll(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return project.ErrNotFound
	}
	proj, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, proj)
}
