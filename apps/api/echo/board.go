package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/miradi/core/board"
)

type boardApi struct {
	svc        board.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerBoardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := boardApi{
		svc:        deps.BoardSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	bg := g.Group("/boards", jwt)
	bg.POST("", api.create, adminMiddleware())
	bg.GET("/:id", api.retrieve)
	bg.GET("/:id/stats", api.stats)
	bg.POST("/:id/admin", api.setAdmin, adminMiddleware())
}

// Handlers

func (api *boardApi) create(ctx echo.Context) error {
	var data board.NewBoard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBoard")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *boardApi) retrieve(ctx echo.Context) error {
	brd, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, brd)
}

func (api *boardApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *boardApi) setAdmin(ctx echo.Context) error {
	var data board.SetAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetAdmin")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	brd, err := api.svc.SetAdmin(ctx.Request().Context(), ctx.Param("id"), data.StudentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SetAdminResponse{BoardID: brd.ID, StudentID: data.StudentID})
}

type SetAdminResponse struct {
	BoardID   string `json:"board_id"`
	StudentID int    `json:"student_id"`
}
