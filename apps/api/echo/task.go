package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/task"
)

type taskApi struct {
	svc      *task.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerTaskAPI(g *echo.Group, deps ServerDeps) {
	api := taskApi{
		svc:      deps.TaskSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	tg := g.Group("/tasks")
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/filter/overdue", api.overdue)
	tg.GET("/filter/upcoming", api.upcoming)
	tg.GET("/stats/overview", api.stats)
	tg.GET("/status/:status", api.byStatus)
	tg.GET("/class/:className", api.byClass)
	tg.GET("/range/:start/:end", api.inRange)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.PATCH("/:id/status", api.updateStatus)
	tg.DELETE("/:id", api.destroy)
}

func (api *taskApi) now() time.Time {
	return time.Now().In(api.conf.Timezone)
}

// bindSort maps the first "ordering" query entry onto the task sort.
func (api *taskApi) bindSort(ctx echo.Context) task.Sort {
	var ord Ordering
	ord.Bind(ctx)
	if len(ord.Orderings) == 0 {
		return task.Sort{}
	}
	first := ord.Orderings[0]
	return task.Sort{By: first.Field, Desc: !first.Ascending}
}

// Handlers

func (api *taskApi) query(ctx echo.Context) error {
	var filter task.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPagination(ctx)

	items, total, err := api.svc.Filter(ctx.Request().Context(), filter, api.bindSort(ctx), page)
	if err != nil {
		return errors.Wrap(err, "filtering tasks")
	}

	rendered := task.RenderAll(items, api.now())
	return ctx.JSON(http.StatusOK, newPagedResponse(rendered, len(rendered), page.Info(total)))
}

func (api *taskApi) create(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	now := api.now()
	t, err := api.svc.Create(ctx.Request().Context(), data, now)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}

	return ctx.JSON(http.StatusCreated, newItemResponse(task.Render(t, now)))
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(task.Render(t, api.now())))
}

func (api *taskApi) update(ctx echo.Context) error {
	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	now := api.now()
	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, now)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(task.Render(t, now)))
}

func (api *taskApi) updateStatus(ctx echo.Context) error {
	var data struct {
		Status task.Status `json:"status"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding status")
	}
	if data.Status == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "is required"})
	}

	now := api.now()
	t, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data.Status, now)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(task.Render(t, now)))
}

func (api *taskApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) byStatus(ctx echo.Context) error {
	status := task.Status(ctx.Param("status"))
	switch status {
	case task.StatusPending, task.StatusInProgress, task.StatusCompleted, task.StatusOverdue, task.StatusCancelled:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
	}

	now := api.now()
	items, err := api.svc.ByStatus(ctx.Request().Context(), status, now)
	if err != nil {
		return errors.Wrap(err, "fetching tasks by status")
	}
	rendered := task.RenderAll(items, now)
	return ctx.JSON(http.StatusOK, newListResponse(rendered, len(rendered)))
}

func (api *taskApi) overdue(ctx echo.Context) error {
	now := api.now()
	items, err := api.svc.Overdue(ctx.Request().Context(), now)
	if err != nil {
		return errors.Wrap(err, "fetching overdue tasks")
	}
	rendered := task.RenderAll(items, now)
	return ctx.JSON(http.StatusOK, newListResponse(rendered, len(rendered)))
}

func (api *taskApi) upcoming(ctx echo.Context) error {
	days, _ := strconv.Atoi(ctx.QueryParam("days"))

	now := api.now()
	items, err := api.svc.Upcoming(ctx.Request().Context(), now, days)
	if err != nil {
		return errors.Wrap(err, "fetching upcoming tasks")
	}
	rendered := task.RenderAll(items, now)
	return ctx.JSON(http.StatusOK, newListResponse(rendered, len(rendered)))
}

func (api *taskApi) byClass(ctx echo.Context) error {
	items, err := api.svc.ByClass(ctx.Request().Context(), ctx.Param("className"))
	if err != nil {
		return errors.Wrap(err, "fetching tasks by class")
	}
	rendered := task.RenderAll(items, api.now())
	return ctx.JSON(http.StatusOK, newListResponse(rendered, len(rendered)))
}

func (api *taskApi) inRange(ctx echo.Context) error {
	page := bindPagination(ctx)
	items, total, err := api.svc.InRange(ctx.Request().Context(), ctx.Param("start"), ctx.Param("end"), api.conf.Timezone, page)
	if err != nil {
		return err
	}
	rendered := task.RenderAll(items, api.now())
	return ctx.JSON(http.StatusOK, newRangeResponse(rendered, len(rendered), page.Info(total)))
}

func (api *taskApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context(), api.now())
	if err != nil {
		return errors.Wrap(err, "computing task stats")
	}
	return ctx.JSON(http.StatusOK, newItemResponse(stats))
}
