package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, deps ServerDeps) {
	api := scheduleApi{
		svc:      deps.ScheduleSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	sg := g.Group("/schedules")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/filter/today", api.today)
	sg.GET("/filter/week", api.week)
	sg.GET("/range/:start/:end", api.inRange)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func (api *scheduleApi) now() time.Time {
	return time.Now().In(api.conf.Timezone)
}

// Handlers

func (api *scheduleApi) query(ctx echo.Context) error {
	var filter schedule.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPagination(ctx)

	items, total, err := api.svc.Filter(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "filtering schedules")
	}

	rendered := schedule.RenderAll(items, api.now())
	return ctx.JSON(http.StatusOK, newPagedResponse(rendered, len(rendered), page.Info(total)))
}

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule")
	}

	return ctx.JSON(http.StatusCreated, newItemResponse(schedule.Render(s, api.now())))
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(schedule.Render(s, api.now())))
}

func (api *scheduleApi) update(ctx echo.Context) error {
	var data schedule.UpdateSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchedule")
	}

	s, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(schedule.Render(s, api.now())))
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) today(ctx echo.Context) error {
	now := api.now()
	items, err := api.svc.Today(ctx.Request().Context(), now)
	if err != nil {
		return errors.Wrap(err, "fetching today's schedules")
	}
	rendered := schedule.RenderAll(items, now)
	return ctx.JSON(http.StatusOK, newListResponse(rendered, len(rendered)))
}

// week returns the current week's schedules grouped per calendar day,
// Monday through Sunday.
func (api *scheduleApi) week(ctx echo.Context) error {
	now := api.now()
	items, err := api.svc.Week(ctx.Request().Context(), now)
	if err != nil {
		return errors.Wrap(err, "fetching week's schedules")
	}

	type weekDay struct {
		Date      core.CalendarDate   `json:"date"`
		Day       string              `json:"day"`
		Schedules []schedule.Rendered `json:"schedules"`
	}

	byDate := make(map[core.CalendarDate][]schedule.Rendered)
	for _, s := range items {
		byDate[s.Date] = append(byDate[s.Date], schedule.Render(s, now))
	}

	monday := core.CalendarDateOf(now, now.Location()).AddDays(-((int(now.Weekday()) + 6) % 7))
	days := make([]weekDay, 0, 7)
	count := 0
	for i := 0; i < 7; i++ {
		date := monday.AddDays(i)
		scheds := byDate[date]
		if scheds == nil {
			scheds = []schedule.Rendered{}
		}
		count += len(scheds)
		days = append(days, weekDay{
			Date:      date,
			Day:       date.Midnight(now.Location()).Weekday().String(),
			Schedules: scheds,
		})
	}

	return ctx.JSON(http.StatusOK, newListResponse(days, count))
}

func (api *scheduleApi) inRange(ctx echo.Context) error {
	page := bindPagination(ctx)
	items, total, err := api.svc.InRange(ctx.Request().Context(), ctx.Param("start"), ctx.Param("end"), page)
	if err != nil {
		return err
	}
	rendered := schedule.RenderAll(items, api.now())
	return ctx.JSON(http.StatusOK, newRangeResponse(rendered, len(rendered), page.Info(total)))
}
